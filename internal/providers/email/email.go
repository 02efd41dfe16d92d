package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/nightmarket/aestore/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Provider sends transactional mail. Delivery is best effort everywhere it
// is used; callers log failures and move on.
type Provider interface {
	Send(ctx context.Context, msg Message) error
}

type smtpProvider struct {
	cfg config.SMTPConfig
	log *zap.Logger
}

func NewSMTP(cfg *config.Config, log *zap.Logger) Provider {
	if strings.TrimSpace(cfg.SMTP.Host) == "" {
		return NewNoop(log)
	}
	return &smtpProvider{cfg: cfg.SMTP, log: log.Named("providers.email")}
}

func (p *smtpProvider) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", p.cfg.From)
	fmt.Fprintf(&sb, "To: %s\r\n", msg.To)
	fmt.Fprintf(&sb, "Subject: %s\r\n", msg.Subject)
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(msg.HTML)

	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)
	var auth smtp.Auth
	if p.cfg.Username != "" {
		auth = smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	}
	return smtp.SendMail(addr, auth, p.cfg.From, []string{msg.To}, []byte(sb.String()))
}

type noopProvider struct {
	log *zap.Logger
}

// NewNoop is the provider when SMTP is not configured; it logs instead of
// sending so local runs still show what would have gone out.
func NewNoop(log *zap.Logger) Provider {
	return &noopProvider{log: log.Named("providers.email")}
}

func (p *noopProvider) Send(ctx context.Context, msg Message) error {
	p.log.Info("email suppressed, smtp not configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

var Module = fx.Module("providers.email",
	fx.Provide(NewSMTP),
)
