package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"workshops/internal/config"
	"workshops/internal/metrics"
)

// Mailer delivers messages over SMTP.
type Mailer struct {
	cfg config.MailConfig
}

func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	out := mail.NewMsg()
	if err := out.From(m.cfg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)

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
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		metrics.Notifications.WithLabelValues(string(msg.Kind), "failed").Inc()
		return fmt.Errorf("send %s mail to %s: %w", msg.Kind, msg.To, err)
	}

	metrics.Notifications.WithLabelValues(string(msg.Kind), "sent").Inc()
	return nil
}
