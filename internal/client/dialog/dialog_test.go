package dialog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeTicker) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type tickers struct {
	mu  sync.Mutex
	all []*fakeTicker
}

func (t *tickers) New(time.Duration) Ticker {
	t.mu.Lock()
	defer t.mu.Unlock()
	ft := &fakeTicker{c: make(chan time.Time)}
	t.all = append(t.all, ft)
	return ft
}

func (t *tickers) last() *fakeTicker {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.all[len(t.all)-1]
}

type fakeFlow struct {
	mu        sync.Mutex
	verifyErr error
	resendErr error
	verified  []string
	resent    []Kind
}

func (f *fakeFlow) VerifyChallenge(_ context.Context, kind Kind, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified = append(f.verified, string(kind)+"|"+email+"|"+code)
	return f.verifyErr
}

func (f *fakeFlow) ResendChallenge(_ context.Context, kind Kind, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resent = append(f.resent, kind)
	return f.resendErr
}

func newDialog(t *testing.T, flow Flow, cooldown time.Duration) (*Dialog, *tickers) {
	t.Helper()
	tk := &tickers{}
	d := New(flow, Options{Cooldown: cooldown, NewTicker: tk.New})
	t.Cleanup(d.Close)
	return d, tk
}

func TestPaste_LongStringFillsAllSlots(t *testing.T) {
	// Arrange
	d, _ := newDialog(t, &fakeFlow{}, time.Second)
	d.Open(KindRegistration, "a@x.com")

	// Act
	ok := d.Paste("12345678")

	// Assert
	assert.True(t, ok)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, d.Slots())
	assert.Equal(t, 5, d.Focus())
}

func TestPaste_ShortAndNoisy(t *testing.T) {
	d, _ := newDialog(t, &fakeFlow{}, time.Second)
	d.Open(KindRegistration, "a@x.com")
	d.Input(5, "9")

	assert.True(t, d.Paste("1-2 3"))
	assert.Equal(t, []string{"1", "2", "3", "", "", ""}, d.Slots())
	assert.Equal(t, 3, d.Focus())

	assert.False(t, d.Paste("abc"))
	assert.Equal(t, "123", d.Value())
}

func TestInput_DigitsOnlyAndFocus(t *testing.T) {
	d, _ := newDialog(t, &fakeFlow{}, time.Second)
	d.Open(KindRegistration, "a@x.com")

	assert.False(t, d.Input(0, "a"))
	assert.False(t, d.Input(0, "12"))
	assert.True(t, d.Input(0, "4"))
	assert.Equal(t, 1, d.Focus())

	assert.True(t, d.Input(5, "7"))
	assert.Equal(t, 5, d.Focus())
}

func TestPress_Navigation(t *testing.T) {
	d, _ := newDialog(t, &fakeFlow{}, time.Second)
	d.Open(KindRegistration, "a@x.com")
	d.Input(0, "1")
	d.Input(1, "2")
	require.Equal(t, 2, d.Focus())

	d.Press(KeyBackspace)
	assert.Equal(t, 1, d.Focus(), "empty slot moves left")

	d.Press(KeyBackspace)
	assert.Equal(t, 1, d.Focus(), "filled slot is cleared in place")
	assert.Equal(t, "1", d.Value())

	d.Press(KeyLeft)
	d.Press(KeyLeft)
	assert.Equal(t, 0, d.Focus())

	for range 10 {
		d.Press(KeyRight)
	}
	assert.Equal(t, 5, d.Focus())
}

func TestSubmit_Incomplete(t *testing.T) {
	// Arrange
	flow := &fakeFlow{}
	d, _ := newDialog(t, flow, time.Second)
	d.Open(KindRegistration, "a@x.com")
	d.Paste("123")

	// Act
	err := d.Submit(context.Background())

	// Assert
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, "Please enter all 6 digits.", d.Error())
	assert.Empty(t, flow.verified)
	assert.False(t, d.CanSubmit())
}

func TestSubmit_FailureKeepsDialogOpen(t *testing.T) {
	// Arrange
	flow := &fakeFlow{verifyErr: errors.New("Invalid OTP")}
	d, _ := newDialog(t, flow, time.Second)
	d.Open(KindLogout, "a@x.com")
	d.Paste("123456")

	// Act
	err := d.Submit(context.Background())

	// Assert
	require.Error(t, err)
	assert.True(t, d.IsOpen())
	assert.Equal(t, "Invalid OTP", d.Error())
	assert.Equal(t, "123456", d.Value())
	assert.Equal(t, []string{"logout|a@x.com|123456"}, flow.verified)
}

func TestSubmit_SuccessRunsCallbackAndCloses(t *testing.T) {
	// Arrange
	flow := &fakeFlow{}
	verified := false
	tk := &tickers{}
	d := New(flow, Options{Cooldown: time.Second, NewTicker: tk.New, OnVerified: func() { verified = true }})
	d.Open(KindRegistration, "a@x.com")
	d.Paste("654321")

	// Act
	err := d.Submit(context.Background())

	// Assert
	require.NoError(t, err)
	assert.True(t, verified)
	assert.False(t, d.IsOpen())
	assert.Equal(t, "", d.Value())
	assert.True(t, tk.last().isStopped())
}

func TestCooldown_TicksDownAndUnlocksResend(t *testing.T) {
	// Arrange
	flow := &fakeFlow{}
	d, tk := newDialog(t, flow, 2*time.Second)
	d.Open(KindRegistration, "a@x.com")
	require.Equal(t, 2, d.Remaining())

	// Act & Assert
	assert.ErrorIs(t, d.Resend(context.Background()), ErrCooldown)

	tk.last().c <- time.Now()
	assert.Eventually(t, func() bool { return d.Remaining() == 1 }, time.Second, time.Millisecond)
	tk.last().c <- time.Now()
	assert.Eventually(t, func() bool { return d.CanResend() }, time.Second, time.Millisecond)

	require.NoError(t, d.Resend(context.Background()))
	assert.Equal(t, []Kind{KindRegistration}, flow.resent)
	assert.Equal(t, 2, d.Remaining(), "resend restarts the cooldown")
	assert.Len(t, tk.all, 2)
}

func TestResend_FailureSurfacesMessage(t *testing.T) {
	flow := &fakeFlow{resendErr: errors.New("Failed to send verification email. Please try again later.")}
	d, tk := newDialog(t, flow, time.Second)
	d.Open(KindLogout, "a@x.com")
	tk.last().c <- time.Now()
	require.Eventually(t, func() bool { return d.Remaining() == 0 }, time.Second, time.Millisecond)

	err := d.Resend(context.Background())

	require.Error(t, err)
	assert.Equal(t, "Failed to send verification email. Please try again later.", d.Error())
	assert.Equal(t, 0, d.Remaining())
}

func TestClose_StopsTimerAndReopenResets(t *testing.T) {
	// Arrange
	d, tk := newDialog(t, &fakeFlow{}, 3*time.Second)
	d.Open(KindRegistration, "a@x.com")
	first := tk.last()
	first.c <- time.Now()
	require.Eventually(t, func() bool { return d.Remaining() == 2 }, time.Second, time.Millisecond)
	d.Paste("12")

	// Act
	d.Close()

	// Assert
	assert.True(t, first.isStopped())
	assert.Equal(t, 0, d.Remaining())
	assert.False(t, d.Paste("34"), "closed dialog ignores input")

	d.Open(KindRegistration, "a@x.com")
	assert.Equal(t, 3, d.Remaining())
	assert.Equal(t, "", d.Value())
	assert.ErrorIs(t, New(&fakeFlow{}, Options{}).Submit(context.Background()), ErrNotOpen)
}
