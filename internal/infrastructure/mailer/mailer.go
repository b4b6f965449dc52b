package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	texttemplate "text/template"

	"github.com/wneessen/go-mail"
	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/delivery"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

var htmlBody = template.Must(template.New("delivery").Parse(`<p>Hello,</p>
<p>A secure vault named <strong>{{.VaultName}}</strong> has been delivered to you{{if .OwnerName}} by {{.OwnerName}}{{end}}.</p>
<p>You can access the stored content using the following link:</p>
<p><a href="{{.GatewayURL}}">{{.GatewayURL}}</a></p>
{{if .AppURL}}<p>To unlock the content, sign in at <a href="{{.AppURL}}">{{.AppURL}}</a> with this email address.</p>
{{end}}<p>Please keep this information safe and secure.</p>
`))

var textBody = texttemplate.Must(texttemplate.New("delivery").Parse(`Hello,

A secure vault named "{{.VaultName}}" has been delivered to you{{if .OwnerName}} by {{.OwnerName}}{{end}}.

Content: {{.GatewayURL}}
{{if .AppURL}}Sign in at {{.AppURL}} with this email address to unlock it.
{{end}}`))

// Subject returns the subject line of a delivery email.
func Subject(n delivery.Notice) string {
	return fmt.Sprintf("A secure vault named %q has been delivered to you", n.VaultName)
}

// Render returns the HTML and plain text bodies of a delivery email.
func Render(n delivery.Notice) (htmlPart, textPart string, err error) {
	var h, t bytes.Buffer
	if err := htmlBody.Execute(&h, n); err != nil {
		return "", "", fmt.Errorf("render html body: %w", err)
	}
	if err := textBody.Execute(&t, n); err != nil {
		return "", "", fmt.Errorf("render text body: %w", err)
	}
	return h.String(), t.String(), nil
}

// BuildMessage assembles the message for n.
func BuildMessage(from string, n delivery.Notice) (*mail.Msg, error) {
	if len(n.To) == 0 {
		return nil, fmt.Errorf("build message: no recipients")
	}

	htmlPart, textPart, err := Render(n)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(n.To...); err != nil {
		return nil, fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(Subject(n))
	msg.SetBodyString(mail.TypeTextPlain, textPart)
	msg.AddAlternativeString(mail.TypeTextHTML, htmlPart)

	return msg, nil
}

// SMTP sends delivery emails through an SMTP relay.
type SMTP struct {
	cfg Config
	log *slog.Logger
}

func NewSMTP(cfg Config, log *slog.Logger) *SMTP {
	return &SMTP{cfg: cfg, log: log.With("component", "mailer")}
}

func (m *SMTP) SendDelivery(ctx context.Context, n delivery.Notice) error {
	msg, err := BuildMessage(m.cfg.From, n)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	m.log.Info("delivery email sent", "vault_id", n.VaultID, "recipients", len(n.To))

	return nil
}

// Log only logs what would have been sent. Used when SMTP is not configured.
type Log struct {
	log *slog.Logger
}

func NewLog(log *slog.Logger) *Log {
	return &Log{log: log.With("component", "mailer")}
}

func (m *Log) SendDelivery(_ context.Context, n delivery.Notice) error {
	if len(n.To) == 0 {
		return fmt.Errorf("build message: no recipients")
	}
	m.log.Warn("smtp not configured, delivery email not sent",
		"vault_id", n.VaultID,
		"recipients", n.To,
		"subject", Subject(n),
		"link", n.GatewayURL,
	)
	return nil
}

// New picks the SMTP mailer when a host is configured.
func New(cfg Config, log *slog.Logger) delivery.Mailer {
	if cfg.Host == "" {
		return NewLog(log)
	}
	return NewSMTP(cfg, log)
}
