package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"paperdigest/internal/config"
	"paperdigest/internal/ports"
)

// Notifier emails the rendered digest to one fixed recipient over SMTP.
type Notifier struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier keeps the SMTP settings; credentials are checked per send.
func NewNotifier(cfg config.SMTPConfig, logger *slog.Logger) *Notifier {
	return &Notifier{cfg: cfg, logger: logger}
}

// Send delivers the digest. Incomplete credentials make this a logged
// no-op rather than an error, so an unconfigured deployment still
// completes its runs.
func (n *Notifier) Send(ctx context.Context, subject, htmlBody string) error {
	if !n.cfg.Configured() {
		if n.logger != nil {
			n.logger.Info("smtp credentials unset, skipping delivery", "recipient", n.cfg.Recipient)
		}
		return nil
	}

	msg := gomail.NewMsg()
	if err := msg.From(n.cfg.Username); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(n.cfg.Recipient); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	client, err := gomail.NewClient(n.cfg.Host,
		gomail.WithPort(n.cfg.Port),
		gomail.WithSSL(),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(n.cfg.Username),
		gomail.WithPassword(n.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	return nil
}
