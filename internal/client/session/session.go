// Package session mirrors the server's view of the signed-in user on the
// client. Every flow (sign-in, registration code, logout code) moves through
// idle, loading and success or error; entering the signed-in state persists
// the user/token pair and leaving it erases the pair.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/shandysiswandi/otpgate/internal/client/api"
	"github.com/shandysiswandi/otpgate/internal/client/dialog"
	"go.uber.org/atomic"
)

var (
	// ErrBusy is returned when a request for the same flow is still loading.
	ErrBusy = errors.New("session: a request for this flow is already in flight")
	// ErrStale is returned when a response arrived after the flow was cleared
	// or superseded; it was not applied.
	ErrStale = errors.New("session: response superseded")
	// ErrNotAuthenticated is returned by calls that need a session.
	ErrNotAuthenticated = errors.New("session: not signed in")
)

// API is the server surface the store drives.
type API interface {
	Register(ctx context.Context, in api.RegisterRequest) (*api.ChallengeSent, error)
	VerifyRegistration(ctx context.Context, email, code string) (*api.AuthResult, error)
	ResendRegistration(ctx context.Context, email string) (*api.ChallengeSent, error)
	Login(ctx context.Context, email, password string) (*api.AuthResult, error)
	UpdateProfile(ctx context.Context, token string, in api.Profile) (*api.ProfileResult, error)
	RequestLogout(ctx context.Context, email string) (*api.ChallengeSent, error)
	VerifyLogout(ctx context.Context, token, email, code string) (*api.LogoutResult, error)
}

// Persistence keeps the user/token pair across restarts. Save and Clear
// write both entries or neither.
type Persistence interface {
	Load(ctx context.Context) (user []byte, token string, err error)
	Save(ctx context.Context, user []byte, token string) error
	Clear(ctx context.Context) error
}

// ChallengeState is the state of one code flow.
type ChallengeState struct {
	Loading      bool
	Error        string
	Success      bool
	PendingEmail string
}

// State is a snapshot of the store. IsAuthenticated is true exactly when
// both User and Token are set.
type State struct {
	User            *api.User
	Token           string
	IsAuthenticated bool
	Loading         bool
	Error           string
	Registration    ChallengeState
	Logout          ChallengeState
}

type flow int

const (
	flowAuth flow = iota
	flowRegistration
	flowLogout
	flowCount
)

// FlowError is a failed request; Message is what the user should see.
type FlowError struct {
	Message string
	cause   error
}

func (e *FlowError) Error() string { return e.Message }
func (e *FlowError) Unwrap() error { return e.cause }

// Store is safe for concurrent use.
type Store struct {
	api     API
	persist Persistence

	mu    sync.Mutex
	state State
	seq   [flowCount]*atomic.Uint64

	listeners []func(State)
}

func NewStore(a API, p Persistence) *Store {
	s := &Store{api: a, persist: p}
	for i := range s.seq {
		s.seq[i] = atomic.NewUint64(0)
	}
	return s
}

// Subscribe registers fn to receive every new snapshot.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// update applies fn and notifies listeners outside the lock.
func (s *Store) update(fn func(st *State)) State {
	s.mu.Lock()
	fn(&s.state)
	s.state.IsAuthenticated = s.state.User != nil && s.state.Token != ""
	snap := s.snapshotLocked()
	listeners := append([]func(State){}, s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
	return snap
}

func (s *Store) challenge(st *State, f flow) *ChallengeState {
	if f == flowLogout {
		return &st.Logout
	}
	return &st.Registration
}

// begin marks f loading and returns the request id, or ErrBusy.
func (s *Store) begin(f flow) (uint64, error) {
	var id uint64
	busy := false

	s.update(func(st *State) {
		loading, msg := &st.Loading, &st.Error
		if f != flowAuth {
			c := s.challenge(st, f)
			loading, msg = &c.Loading, &c.Error
		}
		if *loading {
			busy = true
			return
		}

		id = s.seq[f].Inc()
		*loading = true
		*msg = ""
	})

	if busy {
		return 0, ErrBusy
	}
	return id, nil
}

func (s *Store) current(f flow, id uint64) bool {
	return s.seq[f].Load() == id
}

// fail records err as the flow's error unless the request is stale.
func (s *Store) fail(f flow, id uint64, err error) error {
	if !s.current(f, id) {
		return ErrStale
	}

	ferr := &FlowError{Message: err.Error(), cause: err}
	s.update(func(st *State) {
		if f == flowAuth {
			st.Loading = false
			st.Error = ferr.Message
			return
		}
		c := s.challenge(st, f)
		c.Loading = false
		c.Error = ferr.Message
	})
	return ferr
}

// RestoreAuth loads the persisted pair. A pair that cannot be decoded is
// erased and the store stays signed out.
func (s *Store) RestoreAuth(ctx context.Context) error {
	raw, token, err := s.persist.Load(ctx)
	if err != nil {
		return err
	}
	if len(raw) == 0 || token == "" {
		return nil
	}

	var user api.User
	if err := json.Unmarshal(raw, &user); err != nil {
		slog.WarnContext(ctx, "persisted session is corrupt, clearing it", "error", err)
		s.update(func(st *State) {
			st.User = nil
			st.Token = ""
		})
		return s.persist.Clear(ctx)
	}

	s.update(func(st *State) {
		st.User = &user
		st.Token = token
	})
	return nil
}

func (s *Store) signIn(ctx context.Context, user api.User, token string, extra func(st *State)) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}

	s.update(func(st *State) {
		st.User = &user
		st.Token = token
		extra(st)
	})

	if err := s.persist.Save(ctx, raw, token); err != nil {
		slog.ErrorContext(ctx, "failed to persist session", "error", err)
		return err
	}
	return nil
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	id, err := s.begin(flowAuth)
	if err != nil {
		return err
	}

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return s.fail(flowAuth, id, err)
	}
	if !s.current(flowAuth, id) {
		return ErrStale
	}

	return s.signIn(ctx, res.User, res.Token, func(st *State) {
		st.Loading = false
	})
}

// Register requests a registration code; on success the flow waits for the
// code sent to the returned email.
func (s *Store) Register(ctx context.Context, in api.RegisterRequest) error {
	return s.requestChallenge(ctx, flowRegistration, func() (*api.ChallengeSent, error) {
		return s.api.Register(ctx, in)
	})
}

func (s *Store) ResendRegistration(ctx context.Context, email string) error {
	return s.requestChallenge(ctx, flowRegistration, func() (*api.ChallengeSent, error) {
		return s.api.ResendRegistration(ctx, email)
	})
}

func (s *Store) RequestLogout(ctx context.Context, email string) error {
	return s.requestChallenge(ctx, flowLogout, func() (*api.ChallengeSent, error) {
		return s.api.RequestLogout(ctx, email)
	})
}

func (s *Store) requestChallenge(ctx context.Context, f flow, call func() (*api.ChallengeSent, error)) error {
	id, err := s.begin(f)
	if err != nil {
		return err
	}

	res, err := call()
	if err != nil {
		return s.fail(f, id, err)
	}
	if !s.current(f, id) {
		return ErrStale
	}

	s.update(func(st *State) {
		c := s.challenge(st, f)
		c.Loading = false
		c.Success = true
		c.PendingEmail = res.Email
	})
	slog.DebugContext(ctx, "code requested", "email", res.Email)
	return nil
}

// VerifyRegistration completes registration and signs in.
func (s *Store) VerifyRegistration(ctx context.Context, email, code string) error {
	id, err := s.begin(flowRegistration)
	if err != nil {
		return err
	}

	res, err := s.api.VerifyRegistration(ctx, email, code)
	if err != nil {
		return s.fail(flowRegistration, id, err)
	}
	if !s.current(flowRegistration, id) {
		return ErrStale
	}

	return s.signIn(ctx, res.User, res.Token, func(st *State) {
		st.Registration = ChallengeState{}
	})
}

// VerifyLogout confirms the logout code, then signs out. The current token
// is sent along so the server can revoke it.
func (s *Store) VerifyLogout(ctx context.Context, email, code string) error {
	id, err := s.begin(flowLogout)
	if err != nil {
		return err
	}

	res, err := s.api.VerifyLogout(ctx, s.State().Token, email, code)
	if err != nil {
		return s.fail(flowLogout, id, err)
	}
	if !s.current(flowLogout, id) {
		return ErrStale
	}
	if !res.Success {
		return s.fail(flowLogout, id, errors.New(res.Message))
	}

	return s.Logout(ctx)
}

// UpdateProfile replaces the profile and re-persists the pair.
func (s *Store) UpdateProfile(ctx context.Context, in api.Profile) error {
	token := s.State().Token
	if token == "" {
		return ErrNotAuthenticated
	}

	id, err := s.begin(flowAuth)
	if err != nil {
		return err
	}

	res, err := s.api.UpdateProfile(ctx, token, in)
	if err != nil {
		return s.fail(flowAuth, id, err)
	}
	if !s.current(flowAuth, id) {
		return ErrStale
	}

	return s.signIn(ctx, res.User, token, func(st *State) {
		st.Loading = false
	})
}

// Logout signs out locally: state and persisted pair are cleared and every
// in-flight response becomes stale.
func (s *Store) Logout(ctx context.Context) error {
	s.seq[flowAuth].Inc()
	s.seq[flowLogout].Inc()

	s.update(func(st *State) {
		st.User = nil
		st.Token = ""
		st.Loading = false
		st.Logout = ChallengeState{}
	})

	return s.persist.Clear(ctx)
}

// SetUser replaces the user without touching the token.
func (s *Store) SetUser(user *api.User) {
	s.update(func(st *State) {
		st.User = user
	})
}

func (s *Store) ClearError() {
	s.update(func(st *State) {
		st.Error = ""
		st.Registration.Error = ""
		st.Logout.Error = ""
	})
}

// ClearRegistration resets the registration flow; a pending response for
// it will be dropped.
func (s *Store) ClearRegistration() {
	s.seq[flowRegistration].Inc()
	s.update(func(st *State) {
		st.Registration = ChallengeState{}
	})
}

// ClearLogout resets the logout flow; a pending response for it will be
// dropped.
func (s *Store) ClearLogout() {
	s.seq[flowLogout].Inc()
	s.update(func(st *State) {
		st.Logout = ChallengeState{}
	})
}

// VerifyChallenge implements dialog.Flow.
func (s *Store) VerifyChallenge(ctx context.Context, kind dialog.Kind, email, code string) error {
	if kind == dialog.KindLogout {
		return s.VerifyLogout(ctx, email, code)
	}
	return s.VerifyRegistration(ctx, email, code)
}

// ResendChallenge implements dialog.Flow. A logout code is re-requested.
func (s *Store) ResendChallenge(ctx context.Context, kind dialog.Kind, email string) error {
	if kind == dialog.KindLogout {
		return s.RequestLogout(ctx, email)
	}
	return s.ResendRegistration(ctx, email)
}
