package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strconv"
	texttemplate "text/template"

	"github.com/shandysiswandi/otpgate/internal/auth/entity"
	"github.com/shandysiswandi/otpgate/internal/auth/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

//go:embed templates/*.tmpl
var templates embed.FS

type copyText struct {
	subject string
	action  string
	purpose string
}

var copies = map[entity.ChallengeKind]copyText{
	entity.ChallengeKindRegistration: {
		subject: "Your registration code",
		action:  "complete your registration",
		purpose: "to finish creating your account",
	},
	entity.ChallengeKindLogout: {
		subject: "Confirm your logout",
		action:  "confirm a logout",
		purpose: "to confirm signing out of your account",
	},
}

type templateData struct {
	AppName string
	Name    string
	Code    string
	Minutes int
	Action  string
	Purpose string
	Year    string
}

// Mail renders challenge codes into emails and sends them through mail.Mail.
type Mail struct {
	client  mail.Mail
	appName string
	clock   clock.Clocker
	ins     instrument.Instrumentation
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

func New(client mail.Mail, appName string, clk clock.Clocker, ins instrument.Instrumentation) (*Mail, error) {
	html, err := htmltemplate.ParseFS(templates, "templates/challenge.html.tmpl")
	if err != nil {
		return nil, err
	}

	text, err := texttemplate.ParseFS(templates, "templates/challenge.txt.tmpl")
	if err != nil {
		return nil, err
	}

	return &Mail{client: client, appName: appName, clock: clk, ins: ins, html: html, text: text}, nil
}

func (m *Mail) SendChallenge(ctx context.Context, msg usecase.ChallengeNotification) error {
	ctx, span := m.ins.Tracer("auth.outbound.email").Start(ctx, "SendChallenge")
	defer span.End()

	email, err := m.render(msg)
	if err == nil {
		err = m.client.Send(ctx, email)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Mail) render(msg usecase.ChallengeNotification) (mail.Message, error) {
	txt, ok := copies[msg.Kind]
	if !ok {
		return mail.Message{}, fmt.Errorf("email: no template for challenge kind %q", msg.Kind)
	}

	data := templateData{
		AppName: m.appName,
		Name:    msg.Name,
		Code:    msg.Code,
		Minutes: int(msg.TTL.Minutes()),
		Action:  txt.action,
		Purpose: txt.purpose,
		Year:    strconv.Itoa(m.clock.Now().Year()),
	}

	var html, text bytes.Buffer
	if err := m.html.Execute(&html, data); err != nil {
		return mail.Message{}, err
	}
	if err := m.text.Execute(&text, data); err != nil {
		return mail.Message{}, err
	}

	return mail.Message{
		To:       []string{msg.Email},
		Subject:  txt.subject + " - " + m.appName,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
