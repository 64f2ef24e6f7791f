package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/client/api"
	"github.com/shandysiswandi/otpgate/internal/client/dialog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jane = api.User{ID: "1", Name: "Jane", Email: "jane@x.io"}

type fakeAPI struct {
	mu          sync.Mutex
	err         error
	gate        chan struct{}
	logoutToken string
}

func (f *fakeAPI) wait() error {
	f.mu.Lock()
	gate, err := f.gate, f.err
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeAPI) Register(_ context.Context, in api.RegisterRequest) (*api.ChallengeSent, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	return &api.ChallengeSent{Email: in.Email}, nil
}

func (f *fakeAPI) VerifyRegistration(context.Context, string, string) (*api.AuthResult, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	return &api.AuthResult{Token: "tok", User: jane}, nil
}

func (f *fakeAPI) ResendRegistration(_ context.Context, email string) (*api.ChallengeSent, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	return &api.ChallengeSent{Email: email}, nil
}

func (f *fakeAPI) Login(context.Context, string, string) (*api.AuthResult, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	return &api.AuthResult{Token: "tok", User: jane}, nil
}

func (f *fakeAPI) UpdateProfile(_ context.Context, _ string, in api.Profile) (*api.ProfileResult, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	return &api.ProfileResult{User: api.User{ID: "1", Name: in.Name, Email: in.Email}}, nil
}

func (f *fakeAPI) RequestLogout(_ context.Context, email string) (*api.ChallengeSent, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	return &api.ChallengeSent{Email: email}, nil
}

func (f *fakeAPI) VerifyLogout(_ context.Context, token, _, _ string) (*api.LogoutResult, error) {
	f.mu.Lock()
	f.logoutToken = token
	f.mu.Unlock()
	if err := f.wait(); err != nil {
		return nil, err
	}
	return &api.LogoutResult{Success: true}, nil
}

type memPersist struct {
	user  []byte
	token string
	saves int
}

func (m *memPersist) Load(context.Context) ([]byte, string, error) { return m.user, m.token, nil }

func (m *memPersist) Save(_ context.Context, user []byte, token string) error {
	m.user, m.token = user, token
	m.saves++
	return nil
}

func (m *memPersist) Clear(context.Context) error {
	m.user, m.token = nil, ""
	return nil
}

func TestLogin_PersistsPair(t *testing.T) {
	// Arrange
	p := &memPersist{}
	s := NewStore(&fakeAPI{}, p)

	// Act
	err := s.Login(context.Background(), "jane@x.io", "secret1")

	// Assert
	require.NoError(t, err)
	st := s.State()
	assert.True(t, st.IsAuthenticated)
	assert.False(t, st.Loading)
	assert.Equal(t, "tok", p.token)
	assert.JSONEq(t, `{"id":"1","name":"Jane","email":"jane@x.io","phone":"","address":""}`, string(p.user))
}

func TestLogin_FailureSetsError(t *testing.T) {
	s := NewStore(&fakeAPI{err: errors.New("Invalid email or password")}, &memPersist{})

	err := s.Login(context.Background(), "jane@x.io", "nope")

	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	st := s.State()
	assert.Equal(t, "Invalid email or password", st.Error)
	assert.False(t, st.IsAuthenticated)
	assert.False(t, st.Loading)
}

func TestRegistrationFlow(t *testing.T) {
	// Arrange
	ctx := context.Background()
	fa := &fakeAPI{}
	p := &memPersist{}
	s := NewStore(fa, p)

	// Act & Assert: request
	require.NoError(t, s.Register(ctx, api.RegisterRequest{Email: "jane@x.io"}))
	st := s.State()
	assert.Equal(t, ChallengeState{Success: true, PendingEmail: "jane@x.io"}, st.Registration)
	assert.False(t, st.IsAuthenticated)

	// Act & Assert: wrong code keeps the flow waiting
	fa.err = errors.New("Invalid OTP")
	require.Error(t, s.VerifyRegistration(ctx, "jane@x.io", "000000"))
	st = s.State()
	assert.Equal(t, "Invalid OTP", st.Registration.Error)
	assert.Equal(t, "jane@x.io", st.Registration.PendingEmail)

	// Act & Assert: correct code signs in
	fa.err = nil
	require.NoError(t, s.VerifyRegistration(ctx, "jane@x.io", "123456"))
	st = s.State()
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, ChallengeState{}, st.Registration)
	assert.Equal(t, "tok", p.token)
}

func TestBusyAndStale(t *testing.T) {
	// Arrange
	ctx := context.Background()
	gate := make(chan struct{})
	s := NewStore(&fakeAPI{gate: gate}, &memPersist{})

	done := make(chan error, 1)
	go func() { done <- s.Register(ctx, api.RegisterRequest{Email: "old@x.io"}) }()
	require.Eventually(t, func() bool { return s.State().Registration.Loading }, time.Second, time.Millisecond)

	// Act & Assert: a second request while loading is refused
	assert.ErrorIs(t, s.ResendRegistration(ctx, "old@x.io"), ErrBusy)

	// Act & Assert: clearing makes the in-flight response stale
	s.ClearRegistration()
	close(gate)

	assert.ErrorIs(t, <-done, ErrStale)
	assert.Equal(t, ChallengeState{}, s.State().Registration)
}

func TestRestoreAuth(t *testing.T) {
	t.Run("valid pair", func(t *testing.T) {
		raw, _ := json.Marshal(jane)
		s := NewStore(&fakeAPI{}, &memPersist{user: raw, token: "tok"})

		require.NoError(t, s.RestoreAuth(context.Background()))

		st := s.State()
		assert.True(t, st.IsAuthenticated)
		assert.Equal(t, "Jane", st.User.Name)
	})

	t.Run("corrupt pair is cleared", func(t *testing.T) {
		p := &memPersist{user: []byte("{not json"), token: "tok"}
		s := NewStore(&fakeAPI{}, p)

		require.NoError(t, s.RestoreAuth(context.Background()))

		assert.False(t, s.State().IsAuthenticated)
		assert.Nil(t, p.user)
		assert.Empty(t, p.token)
	})

	t.Run("half pair stays signed out", func(t *testing.T) {
		s := NewStore(&fakeAPI{}, &memPersist{token: "tok"})

		require.NoError(t, s.RestoreAuth(context.Background()))

		assert.False(t, s.State().IsAuthenticated)
	})
}

func TestLogoutFlow(t *testing.T) {
	// Arrange
	ctx := context.Background()
	fa := &fakeAPI{}
	p := &memPersist{}
	s := NewStore(fa, p)
	require.NoError(t, s.Login(ctx, "jane@x.io", "secret1"))

	// Act
	require.NoError(t, s.ResendChallenge(ctx, dialog.KindLogout, "jane@x.io"))
	require.Equal(t, "jane@x.io", s.State().Logout.PendingEmail)
	err := s.VerifyChallenge(ctx, dialog.KindLogout, "jane@x.io", "123456")

	// Assert
	require.NoError(t, err)
	st := s.State()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.Equal(t, ChallengeState{}, st.Logout)
	assert.Equal(t, "tok", fa.logoutToken)
	assert.Nil(t, p.user)
}

func TestUpdateProfile(t *testing.T) {
	// Arrange
	ctx := context.Background()
	p := &memPersist{}
	s := NewStore(&fakeAPI{}, p)
	assert.ErrorIs(t, s.UpdateProfile(ctx, api.Profile{Name: "X"}), ErrNotAuthenticated)
	require.NoError(t, s.Login(ctx, "jane@x.io", "secret1"))

	// Act
	err := s.UpdateProfile(ctx, api.Profile{Name: "Jane Doe", Email: "jane@x.io"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", s.State().User.Name)
	assert.Equal(t, 2, p.saves)
	assert.Contains(t, string(p.user), "Jane Doe")
	assert.Equal(t, "tok", p.token)
}

func TestSetUser_KeepsInvariant(t *testing.T) {
	ctx := context.Background()
	s := NewStore(&fakeAPI{}, &memPersist{})
	require.NoError(t, s.Login(ctx, "jane@x.io", "secret1"))

	s.SetUser(nil)
	assert.False(t, s.State().IsAuthenticated)

	s.SetUser(&jane)
	assert.True(t, s.State().IsAuthenticated)
}

func TestSubscribe(t *testing.T) {
	s := NewStore(&fakeAPI{}, &memPersist{})
	var seen []bool
	s.Subscribe(func(st State) { seen = append(seen, st.Loading) })

	require.NoError(t, s.Login(context.Background(), "jane@x.io", "secret1"))

	assert.Equal(t, []bool{true, false}, seen)
}
