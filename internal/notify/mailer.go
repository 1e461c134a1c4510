package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const (
	DefaultHost    = "smtp.gmail.com"
	DefaultPort    = 465
	DefaultTimeout = 30 * time.Second

	Subject = "Congratulations! Your resume passed the ATS screening"
)

// ErrDisabled is returned by a Mailer that has no SMTP credentials.
var ErrDisabled = errors.New("notifications are disabled")

// Config holds the SMTP settings. Empty Host, Port or Timeout fall back to the defaults.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// From defaults to Username.
	From    string
	Timeout time.Duration
}

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer sends pass notifications to candidates over implicit TLS.
type Mailer struct {
	sender  sender
	from    string
	timeout time.Duration
	logger  *zap.Logger
}

// New builds a Mailer. Missing credentials produce a disabled Mailer rather than an error.
func New(cfg Config, logger *zap.Logger) (*Mailer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg = withDefaults(cfg)
	m := &Mailer{from: cfg.From, timeout: cfg.Timeout, logger: logger}

	if cfg.Username == "" || cfg.Password == "" {
		return m, nil
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	m.sender = client
	return m, nil
}

func withDefaults(cfg Config) Config {
	cfg.Host = strings.TrimSpace(cfg.Host)
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port <= 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.Username = strings.TrimSpace(cfg.Username)
	if cfg.From = strings.TrimSpace(cfg.From); cfg.From == "" {
		cfg.From = cfg.Username
	}
	return cfg
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.sender != nil
}

// Notify tells the candidate at address to that their resume scored score.
func (m *Mailer) Notify(ctx context.Context, to string, score int) error {
	if !m.Enabled() {
		return ErrDisabled
	}

	msg, err := m.message(to, score)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send notification to %s: %w", to, err)
	}

	m.logger.Info("notification sent", zap.String("to", to), zap.Int("score", score))
	return nil
}

func (m *Mailer) message(to string, score int) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("set sender %q: %w", m.from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set recipient %q: %w", to, err)
	}
	msg.Subject(Subject)
	msg.SetBodyString(mail.TypeTextPlain, Body(score))
	return msg, nil
}

// Body renders the plain-text notification.
func Body(score int) string {
	return fmt.Sprintf("Hey there,\n\nYour resume passed the ATS screening with a score of %d.\nWe'll be in touch soon!\n\nCheers!", score)
}
