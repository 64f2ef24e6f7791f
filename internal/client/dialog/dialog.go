// Package dialog holds the state of a one-time code prompt: a row of digit
// slots, a focus position and a resend cooldown.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode"

	"github.com/samber/lo"
	"go.uber.org/atomic"
)

// DefaultLength and DefaultCooldown apply when Options leaves them zero.
const (
	DefaultLength   = 6
	DefaultCooldown = 60 * time.Second
)

var (
	// ErrNotOpen is returned by actions on a closed dialog.
	ErrNotOpen = errors.New("dialog: not open")
	// ErrBusy is returned while a submit or resend is in flight.
	ErrBusy = errors.New("dialog: request in flight")
	// ErrCooldown is returned by Resend before the cooldown reaches zero.
	ErrCooldown = errors.New("dialog: resend is not available yet")
	// ErrIncomplete is returned by Submit when some slot is empty.
	ErrIncomplete = errors.New("dialog: code is incomplete")
)

// Kind is the flow a code belongs to.
type Kind string

const (
	KindRegistration Kind = "registration"
	KindLogout       Kind = "logout"
)

// Key is a navigation key.
type Key int

const (
	KeyBackspace Key = iota
	KeyLeft
	KeyRight
)

// Flow performs the server calls for the active kind. Error messages are
// shown to the user as they are.
type Flow interface {
	VerifyChallenge(ctx context.Context, kind Kind, email, code string) error
	ResendChallenge(ctx context.Context, kind Kind, email string) error
}

// Ticker delivers one value per period until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

type Options struct {
	Length   int
	Cooldown time.Duration
	// OnVerified runs after a successful submit, before the dialog closes.
	OnVerified func()
	// OnTick receives the remaining cooldown in seconds after every tick. It
	// runs on the countdown goroutine and must not call locking Dialog
	// methods; Remaining is safe.
	OnTick func(remaining int)
	// NewTicker overrides the one-second ticker.
	NewTicker func(d time.Duration) Ticker
}

// Dialog is safe for concurrent use.
type Dialog struct {
	flow Flow
	opts Options

	mu      sync.Mutex
	open    bool
	kind    Kind
	email   string
	slots   []rune
	focus   int
	err     string
	loading bool

	remaining *atomic.Int64
	stop      context.CancelFunc
	done      chan struct{}
}

func New(flow Flow, opts Options) *Dialog {
	if opts.Length <= 0 {
		opts.Length = DefaultLength
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.NewTicker == nil {
		opts.NewTicker = newTimeTicker
	}

	return &Dialog{
		flow:      flow,
		opts:      opts,
		slots:     make([]rune, opts.Length),
		remaining: atomic.NewInt64(0),
	}
}

// Open shows the dialog for email, clearing the slots and restarting the
// cooldown. Opening an open dialog resets it.
func (d *Dialog) Open(kind Kind, email string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopCountdownLocked()

	d.open = true
	d.kind = kind
	d.email = email
	d.resetSlotsLocked()
	d.err = ""
	d.loading = false

	d.startCountdownLocked()
}

// Close hides the dialog and discards the digits. The countdown goroutine
// has exited when Close returns.
func (d *Dialog) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopCountdownLocked()
	d.open = false
	d.resetSlotsLocked()
	d.err = ""
	d.loading = false
}

// Input sets slot idx to s, which must be empty or a single digit. A digit
// moves focus to the next slot. It reports whether s was accepted.
func (d *Dialog) Input(idx int, s string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open || idx < 0 || idx >= len(d.slots) {
		return false
	}

	r := []rune(s)
	switch {
	case len(r) == 0:
		d.slots[idx] = 0
	case len(r) == 1 && isDigit(r[0]):
		d.slots[idx] = r[0]
		if idx < len(d.slots)-1 {
			d.focus = idx + 1
		} else {
			d.focus = idx
		}
	default:
		return false
	}

	return true
}

// Press applies a navigation key to the focused slot.
func (d *Dialog) Press(k Key) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return
	}

	switch k {
	case KeyBackspace:
		if d.slots[d.focus] != 0 {
			d.slots[d.focus] = 0
		} else if d.focus > 0 {
			d.focus--
		}
	case KeyLeft:
		if d.focus > 0 {
			d.focus--
		}
	case KeyRight:
		if d.focus < len(d.slots)-1 {
			d.focus++
		}
	}
}

// Paste fills the slots from the first one with the digits of text,
// ignoring everything else and anything past the last slot. It reports
// whether text held any digit.
func (d *Dialog) Paste(text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return false
	}

	digits := lo.Filter([]rune(text), func(r rune, _ int) bool { return isDigit(r) })
	if len(digits) == 0 {
		return false
	}
	if len(digits) > len(d.slots) {
		digits = digits[:len(d.slots)]
	}

	d.resetSlotsLocked()
	copy(d.slots, digits)
	d.focus = min(len(digits), len(d.slots)-1)

	return true
}

// Submit verifies the entered code. On failure the message is kept in
// Error; on success OnVerified runs and the dialog closes.
func (d *Dialog) Submit(ctx context.Context) error {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return ErrNotOpen
	}
	if d.loading {
		d.mu.Unlock()
		return ErrBusy
	}

	code := d.valueLocked()
	if len(code) != len(d.slots) {
		d.err = fmt.Sprintf("Please enter all %d digits.", len(d.slots))
		d.mu.Unlock()
		return ErrIncomplete
	}

	d.err = ""
	d.loading = true
	kind, email := d.kind, d.email
	d.mu.Unlock()

	err := d.flow.VerifyChallenge(ctx, kind, email, code)

	d.mu.Lock()
	d.loading = false
	if err != nil {
		d.err = err.Error()
		d.mu.Unlock()
		return err
	}
	d.mu.Unlock()

	if d.opts.OnVerified != nil {
		d.opts.OnVerified()
	}
	d.Close()

	return nil
}

// Resend asks for a new code once the cooldown is over and restarts it.
func (d *Dialog) Resend(ctx context.Context) error {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return ErrNotOpen
	}
	if d.remaining.Load() > 0 {
		d.mu.Unlock()
		return ErrCooldown
	}
	if d.loading {
		d.mu.Unlock()
		return ErrBusy
	}

	d.err = ""
	d.loading = true
	kind, email := d.kind, d.email
	d.mu.Unlock()

	err := d.flow.ResendChallenge(ctx, kind, email)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.loading = false
	if err != nil {
		d.err = err.Error()
		return err
	}
	if d.open {
		d.stopCountdownLocked()
		d.startCountdownLocked()
	}

	return nil
}

func (d *Dialog) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *Dialog) Kind() Kind {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.kind
}

func (d *Dialog) Email() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.email
}

// Value returns the digits entered so far, in slot order.
func (d *Dialog) Value() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.valueLocked()
}

// Slots returns one string per slot, empty for unfilled ones.
func (d *Dialog) Slots() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return lo.Map(d.slots, func(r rune, _ int) string {
		if r == 0 {
			return ""
		}
		return string(r)
	})
}

func (d *Dialog) Focus() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focus
}

func (d *Dialog) Error() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *Dialog) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

// CanSubmit reports whether every slot holds a digit and nothing is in flight.
func (d *Dialog) CanSubmit() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open && !d.loading && len(d.valueLocked()) == len(d.slots)
}

// Remaining is the resend cooldown left, in whole seconds.
func (d *Dialog) Remaining() int {
	return int(d.remaining.Load())
}

func (d *Dialog) CanResend() bool {
	return d.IsOpen() && d.Remaining() == 0 && !d.Loading()
}

func (d *Dialog) valueLocked() string {
	out := make([]rune, 0, len(d.slots))
	for _, r := range d.slots {
		if r != 0 {
			out = append(out, r)
		}
	}
	return string(out)
}

func (d *Dialog) resetSlotsLocked() {
	for i := range d.slots {
		d.slots[i] = 0
	}
	d.focus = 0
}

func (d *Dialog) startCountdownLocked() {
	seconds := int64(d.opts.Cooldown / time.Second)
	d.remaining.Store(seconds)
	if seconds <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	d.stop = cancel
	d.done = done

	ticker := d.opts.NewTicker(time.Second)
	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				left := d.remaining.Dec()
				if left < 0 {
					d.remaining.Store(0)
					left = 0
				}
				if d.opts.OnTick != nil {
					d.opts.OnTick(int(left))
				}
				if left == 0 {
					return
				}
			}
		}
	}()
}

func (d *Dialog) stopCountdownLocked() {
	if d.stop == nil {
		return
	}

	d.stop()
	<-d.done
	d.stop = nil
	d.done = nil
	d.remaining.Store(0)
}

func isDigit(r rune) bool {
	return r <= unicode.MaxASCII && unicode.IsDigit(r)
}
