package smtp

import (
	"strings"
	"time"
)

// TLS modes.
const (
	ModeTLS      = "tls"      // implicit TLS, usually port 465
	ModeSTARTTLS = "starttls" // upgrade after EHLO, usually port 587
	ModePlain    = "plain"    // no encryption, local relays only
)

// Config describes one SMTP server.
type Config struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Secure   bool   `env:"SMTP_SECURE" envDefault:"false"`
	TLSMode  string `env:"SMTP_TLS_MODE"`
	Username string `env:"EMAIL_USER"`
	Password string `env:"EMAIL_PASS"`
	// SenderEmail defaults to Username.
	SenderEmail  string `env:"EMAIL_FROM"`
	SenderName   string `env:"EMAIL_SENDER_NAME" envDefault:"Crave Corner"`
	SupportEmail string `env:"SUPPORT_EMAIL"`
	LocalName    string `env:"SMTP_LOCAL_NAME" envDefault:"localhost"`
	// InsecureSkipVerify disables certificate checks. Off unless a relay
	// presents a self-signed certificate.
	InsecureSkipVerify bool `env:"SMTP_TLS_INSECURE" envDefault:"false"`

	ConnectTimeout  time.Duration
	GreetingTimeout time.Duration
	SocketTimeout   time.Duration
	IdleTimeout     time.Duration
}

// Mode resolves the TLS mode: an explicit TLSMode wins, otherwise Secure
// selects implicit TLS and everything else STARTTLS.
func (c Config) Mode() string {
	if m := strings.ToLower(strings.TrimSpace(c.TLSMode)); m != "" {
		return m
	}
	if c.Secure {
		return ModeTLS
	}
	return ModeSTARTTLS
}

// Sender returns the envelope sender address.
func (c Config) Sender() string {
	if c.SenderEmail != "" {
		return c.SenderEmail
	}
	return c.Username
}

const (
	DefaultConnectTimeout  = 30 * time.Second
	DefaultGreetingTimeout = 15 * time.Second
	DefaultSocketTimeout   = 30 * time.Second
	DefaultIdleTimeout     = 30 * time.Second
)

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.GreetingTimeout <= 0 {
		c.GreetingTimeout = DefaultGreetingTimeout
	}
	if c.SocketTimeout <= 0 {
		c.SocketTimeout = DefaultSocketTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.LocalName == "" {
		c.LocalName = "localhost"
	}
	return c
}
