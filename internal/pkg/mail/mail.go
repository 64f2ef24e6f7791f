package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// DriverSMTP delivers over an SMTP relay.
	DriverSMTP = "smtp"
	// DriverLog writes messages to the logger instead of sending them.
	DriverLog = "log"
)

var (
	// ErrUnknownDriver indicates an unsupported mail driver.
	ErrUnknownDriver = errors.New("mail: unknown driver")
	// ErrNoRecipients is returned when To and Cc are both empty.
	ErrNoRecipients = errors.New("mail: no recipients provided")
	// ErrHeaderInjection is returned when an address or subject contains CR or LF.
	ErrHeaderInjection = errors.New("mail: header value contains a line break")
)

// Message represents an email payload.
type Message struct {
	// From is an optional explicit sender; the driver default is used when empty.
	From string
	// To lists required recipients.
	To []string
	// Cc lists carbon copy recipients.
	Cc []string
	// Subject is the email subject line.
	Subject string
	// TextBody is the plain-text body.
	TextBody string
	// HTMLBody is the optional HTML body.
	HTMLBody string
}

// Recipients returns To and Cc combined.
func (m Message) Recipients() []string {
	return append(append([]string{}, m.To...), m.Cc...)
}

func (m Message) validate() error {
	if len(m.To)+len(m.Cc) == 0 {
		return ErrNoRecipients
	}

	values := append(m.Recipients(), m.From, m.Subject)
	for _, v := range values {
		if strings.ContainsAny(v, "\r\n") {
			return ErrHeaderInjection
		}
	}

	return nil
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	// Send dispatches the given message using the underlying provider.
	Send(ctx context.Context, msg Message) error
}

// NewFromDriver constructs a Mail by driver name. An empty name means DriverLog.
func NewFromDriver(driver string, smtpCfg SMTPConfig) (Mail, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverLog:
		return NewLog(), nil
	case DriverSMTP:
		return NewSMTP(smtpCfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
