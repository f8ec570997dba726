package mailer

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Mailer sends the welcome email issued after a successful signup or login.
// When SMTP is not configured the mailer is a no-op: sends are skipped and
// that fact is logged once at startup. A send failure must never fail the
// auth operation that triggered it; callers log and swallow the error.
type Mailer struct {
	config *mailerConfig
	dialer *gomail.Dialer
	logger *zerolog.Logger
}

func NewMailer(logger *zerolog.Logger) (*Mailer, error) {
	cfg, err := env.ParseAs[mailerConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse mailer environment variables: %w", err)
	}

	m := &Mailer{config: &cfg, logger: logger}

	if !cfg.configured() {
		logger.Warn().Msg("SMTP is not fully configured; welcome emails will be skipped")
		return m, nil
	}

	m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return m, nil
}

// SendWelcome sends the plain-text welcome mail to a freshly authenticated
// user. Returns nil when SMTP is unconfigured.
func (m *Mailer) SendWelcome(to, name string) error {
	if m.dialer == nil {
		return nil
	}

	safeName := strings.TrimSpace(name)
	if safeName == "" {
		if at := strings.Index(to, "@"); at > 0 {
			safeName = to[:at]
		} else {
			safeName = "there"
		}
	}

	body := fmt.Sprintf(`Hi %s,

Thank you so much for logging in to Omaju!

Feel free to explore and have a fabulous experience with Omaju!

Cheers,
The Omaju Team`, safeName)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.from())
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Welcome to Omaju")
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}

type mailerConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

func (c *mailerConfig) configured() bool {
	return c.Host != "" && c.Port != 0 && c.Username != "" && c.Password != ""
}

func (c *mailerConfig) from() string {
	if c.From != "" {
		return c.From
	}
	return fmt.Sprintf("Omaju Team <%s>", c.Username)
}
