package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/client/api"
	"github.com/shandysiswandi/otpgate/internal/client/dialog"
	"github.com/shandysiswandi/otpgate/internal/client/session"
)

// App drives a session store and a code dialog from a line-based terminal.
type App struct {
	store *session.Store
	dlg   *dialog.Dialog
	in    *bufio.Reader
	out   io.Writer

	// fd is the terminal behind in; valid only when tty is set.
	fd  int
	tty bool
}

func New(store *session.Store, dlg *dialog.Dialog, in io.Reader, out io.Writer) *App {
	fd, tty := terminalFD(in)
	return &App{store: store, dlg: dlg, in: bufio.NewReader(in), out: out, fd: fd, tty: tty}
}

// password reads without echo on a terminal. Piped input, or input already
// typed ahead into the buffer, is read as a plain line.
func (a *App) password(label string) (string, error) {
	if !a.tty || a.in.Buffered() > 0 {
		return prompt(a.in, a.out, label)
	}
	return promptPassword(a.out, a.fd, label)
}

// Run reads commands until exit, EOF or ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.println("otpgate client, type 'help' for commands")

	for {
		if ctx.Err() != nil {
			return nil
		}

		cmd, err := prompt(a.in, a.out, a.status())
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(cmd) {
		case "":
		case "help":
			a.help()
		case "exit", "quit":
			return nil
		default:
			if err := a.dispatch(ctx, strings.ToLower(cmd)); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
		}
	}
}

func (a *App) dispatch(ctx context.Context, cmd string) error {
	signedIn := a.store.State().IsAuthenticated

	switch {
	case cmd == "register" && !signedIn:
		return a.register(ctx)
	case cmd == "login" && !signedIn:
		return a.login(ctx)
	case cmd == "whoami" && signedIn:
		a.whoami()
	case cmd == "profile" && signedIn:
		return a.profile(ctx)
	case cmd == "logout" && signedIn:
		return a.logout(ctx)
	default:
		a.println("unknown command, type 'help'")
	}
	return nil
}

func (a *App) status() string {
	st := a.store.State()
	if st.IsAuthenticated {
		return fmt.Sprintf("[%s]", st.User.Email)
	}
	return "[signed out]"
}

func (a *App) help() {
	if a.store.State().IsAuthenticated {
		a.println("whoami   show the signed-in user")
		a.println("profile  edit your profile")
		a.println("logout   sign out after confirming a code sent by email")
	} else {
		a.println("register create an account, confirmed by a code sent by email")
		a.println("login    sign in with email and password")
	}
	a.println("exit     leave")
}

func (a *App) register(ctx context.Context) error {
	var in api.RegisterRequest
	var err error

	if in.Name, err = prompt(a.in, a.out, "Name"); err != nil {
		return err
	}
	if in.Email, err = prompt(a.in, a.out, "Email"); err != nil {
		return err
	}
	if in.Password, err = a.password("Password"); err != nil {
		return err
	}
	if in.Phone, err = prompt(a.in, a.out, "Phone"); err != nil {
		return err
	}
	if in.Address, err = prompt(a.in, a.out, "Address"); err != nil {
		return err
	}

	if err := a.store.Register(ctx, in); err != nil {
		a.println(a.store.State().Registration.Error)
		return nil
	}

	email := a.store.State().Registration.PendingEmail
	if err := a.enterCode(ctx, dialog.KindRegistration, email); err != nil {
		return err
	}
	if a.store.State().IsAuthenticated {
		a.println("Registration successful, you are signed in.")
	}
	return nil
}

func (a *App) login(ctx context.Context) error {
	email, err := prompt(a.in, a.out, "Email")
	if err != nil {
		return err
	}
	password, err := a.password("Password")
	if err != nil {
		return err
	}

	if err := a.store.Login(ctx, email, password); err != nil {
		a.println(a.store.State().Error)
		a.store.ClearError()
		return nil
	}

	a.println("Login successful.")
	return nil
}

func (a *App) whoami() {
	u := a.store.State().User
	a.println(fmt.Sprintf("id: %s\nname: %s\nemail: %s\nphone: %s\naddress: %s", u.ID, u.Name, u.Email, u.Phone, u.Address))
}

func (a *App) profile(ctx context.Context) error {
	u := a.store.State().User
	var in api.Profile
	var err error

	if in.Name, err = promptDefault(a.in, a.out, "Name", u.Name); err != nil {
		return err
	}
	if in.Email, err = promptDefault(a.in, a.out, "Email", u.Email); err != nil {
		return err
	}
	if in.Phone, err = promptDefault(a.in, a.out, "Phone", u.Phone); err != nil {
		return err
	}
	if in.Address, err = promptDefault(a.in, a.out, "Address", u.Address); err != nil {
		return err
	}

	if err := a.store.UpdateProfile(ctx, in); err != nil {
		a.println(a.store.State().Error)
		a.store.ClearError()
		return nil
	}

	a.println("Profile updated successfully.")
	return nil
}

func (a *App) logout(ctx context.Context) error {
	email := a.store.State().User.Email

	if err := a.store.RequestLogout(ctx, email); err != nil {
		a.println(a.store.State().Logout.Error)
		a.store.ClearLogout()
		return nil
	}

	if err := a.enterCode(ctx, dialog.KindLogout, email); err != nil {
		return err
	}
	if !a.store.State().IsAuthenticated {
		a.println("You have been logged out.")
	}
	return nil
}

// enterCode runs the code dialog until the code is accepted or the user
// cancels.
func (a *App) enterCode(ctx context.Context, kind dialog.Kind, email string) error {
	a.dlg.Open(kind, email)
	defer a.dlg.Close()

	a.println(fmt.Sprintf("We have sent a verification code to %s.", email))
	a.println("Type the code, 'resend' for a new one or 'cancel'.")

	for a.dlg.IsOpen() {
		line, err := prompt(a.in, a.out, "Code")
		if err != nil {
			a.cancel(kind)
			return err
		}

		switch strings.ToLower(line) {
		case "cancel":
			a.cancel(kind)
			return nil
		case "resend":
			a.resend(ctx)
			continue
		}

		if !a.dlg.Paste(line) {
			a.println("Please type digits only.")
			continue
		}
		if err := a.dlg.Submit(ctx); err != nil {
			a.println(a.dlg.Error())
		}
	}

	return nil
}

func (a *App) resend(ctx context.Context) {
	err := a.dlg.Resend(ctx)
	switch {
	case errors.Is(err, dialog.ErrCooldown):
		a.println(fmt.Sprintf("You can request a new code in %ds.", a.dlg.Remaining()))
	case err != nil:
		a.println(a.dlg.Error())
	default:
		a.println("A new code is on its way.")
	}
}

func (a *App) cancel(kind dialog.Kind) {
	a.dlg.Close()
	if kind == dialog.KindLogout {
		a.store.ClearLogout()
		return
	}
	a.store.ClearRegistration()
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}
