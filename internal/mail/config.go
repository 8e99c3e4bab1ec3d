package mail

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Providers accepted in FOLIO_MAIL_PROVIDER.
const (
	ProviderResend = "resend"
	ProviderSMTP   = "smtp"
	ProviderLog    = "log"
)

// Config holds mail settings. They come from the environment only so secrets
// never land in config.toml.
type Config struct {
	Provider  string        `env:"FOLIO_MAIL_PROVIDER" envDefault:"resend"`
	Recipient string        `env:"RECIPIENT_EMAIL"`
	From      string        `env:"FOLIO_MAIL_FROM" envDefault:"Portfolio Contact Form <onboarding@resend.dev>"`
	Timeout   time.Duration `env:"FOLIO_MAIL_TIMEOUT" envDefault:"10s"`

	ResendAPIKey  string `env:"RESEND_API_KEY"`
	ResendBaseURL string `env:"RESEND_BASE_URL" envDefault:"https://api.resend.com"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
}

// LoadConfig reads Config from the environment after loading envFiles. With
// no envFiles, ./.env is loaded when present. Variables already set in the
// environment win over file values.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) provider() string {
	return strings.ToLower(strings.TrimSpace(c.Provider))
}

// Validate reports why the config cannot deliver mail, or nil.
func (c Config) Validate() error {
	switch c.provider() {
	case ProviderLog:
		return nil
	case ProviderResend, "":
		if c.Recipient == "" {
			return errors.New("RECIPIENT_EMAIL is not set")
		}
		if c.ResendAPIKey == "" {
			return errors.New("RESEND_API_KEY is not set")
		}
	case ProviderSMTP:
		if c.Recipient == "" {
			return errors.New("RECIPIENT_EMAIL is not set")
		}
		if c.SMTPHost == "" || c.SMTPUser == "" || c.SMTPPass == "" {
			return errors.New("SMTP_HOST, SMTP_USER and SMTP_PASS must be set")
		}
	default:
		return fmt.Errorf("unknown mail provider %q", c.Provider)
	}
	return nil
}
