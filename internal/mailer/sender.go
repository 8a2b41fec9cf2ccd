package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitva-auth/internal/config"
	"bitva-auth/internal/models"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Message is one rendered email.
type Message struct {
	To      models.Recipient
	Subject string
	HTML    string
}

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msgs []Message) error
}

// SMTPConfig holds the outbound mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseSSL   bool
	Timeout  time.Duration
}

// SMTPConfigFrom extracts the SMTP settings from the service config.
func SMTPConfigFrom(cfg *config.Config) SMTPConfig {
	return SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
		UseSSL:   cfg.SMTPUseSSL,
		Timeout:  cfg.SMTPTimeout,
	}
}

// SMTPSender sends all messages of one call over a single SMTP session.
type SMTPSender struct {
	client *mail.Client
	cfg    SMTPConfig
	logger *zap.Logger
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(cfg SMTPConfig, logger *zap.Logger) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
	}
	if cfg.UseSSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTPSender{client: client, cfg: cfg, logger: logger.Named("SMTPSender")}, nil
}

func (s *SMTPSender) buildMsg(m Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.AddToFormat(m.To.Name, m.To.Email); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetMessageID()
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)
	return msg, nil
}

// Send delivers msgs in one SMTP session bounded by ctx and the configured timeout.
func (s *SMTPSender) Send(ctx context.Context, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]*mail.Msg, 0, len(msgs))
	for _, m := range msgs {
		msg, err := s.buildMsg(m)
		if err != nil {
			return err
		}
		out = append(out, msg)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout*time.Duration(len(msgs)))
	defer cancel()
	if err := s.client.DialAndSendWithContext(ctx, out...); err != nil {
		return fmt.Errorf("smtp delivery failed: %w", err)
	}
	s.logger.Debug("SMTP session completed", zap.Int("messages", len(out)))
	return nil
}
