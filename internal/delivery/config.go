package delivery

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/cravecorner/integration/email/smtp"
	"github.com/dmitrymomot/cravecorner/pkg/ratelimiter"
)

// Tier bounds the phases of one SMTP attempt.
type Tier struct {
	Connect  time.Duration
	Greeting time.Duration
	Socket   time.Duration
}

// Total is the deadline of one attempt on a transport with this tier.
func (t Tier) Total() time.Duration {
	return t.Connect + t.Greeting + t.Socket
}

// Endpoint is one entry of the fallback chain.
type Endpoint struct {
	Name string
	Host string
	Port int
	Mode string
	Tier Tier
}

func (e Endpoint) addr() string {
	return net.JoinHostPort(strings.ToLower(e.Host), strconv.Itoa(e.Port))
}

// Config holds the SMTP chain settings. Credentials and the operator relay
// come from the embedded smtp.Config (SMTP_HOST, EMAIL_USER, ...).
type Config struct {
	SMTP smtp.Config

	SubmissionHost string `env:"EMAIL_SUBMISSION_HOST" envDefault:"smtp.gmail.com"`

	StandardConnect  time.Duration `env:"EMAIL_STANDARD_CONNECT_TIMEOUT" envDefault:"30s"`
	StandardGreeting time.Duration `env:"EMAIL_STANDARD_GREETING_TIMEOUT" envDefault:"15s"`
	StandardSocket   time.Duration `env:"EMAIL_STANDARD_SOCKET_TIMEOUT" envDefault:"30s"`
	FastConnect      time.Duration `env:"EMAIL_FAST_CONNECT_TIMEOUT" envDefault:"5s"`
	FastGreeting     time.Duration `env:"EMAIL_FAST_GREETING_TIMEOUT" envDefault:"5s"`
	FastSocket       time.Duration `env:"EMAIL_FAST_SOCKET_TIMEOUT" envDefault:"10s"`
	LongConnect      time.Duration `env:"EMAIL_LONG_CONNECT_TIMEOUT" envDefault:"60s"`
	LongGreeting     time.Duration `env:"EMAIL_LONG_GREETING_TIMEOUT" envDefault:"30s"`
	LongSocket       time.Duration `env:"EMAIL_LONG_SOCKET_TIMEOUT" envDefault:"60s"`

	IdleTimeout time.Duration `env:"EMAIL_POOL_IDLE_TIMEOUT" envDefault:"30s"`
	APITimeout  time.Duration `env:"EMAIL_API_TIMEOUT" envDefault:"30s"`

	RateLimit ratelimiter.Config `envPrefix:"EMAIL_RATE_"`
}

// DefaultConfig mirrors the env defaults for callers that build Config in code.
func DefaultConfig() Config {
	return Config{
		SMTP: smtp.Config{
			Port:       587,
			SenderName: "Crave Corner",
			LocalName:  "localhost",
		},
		SubmissionHost:   "smtp.gmail.com",
		StandardConnect:  30 * time.Second,
		StandardGreeting: 15 * time.Second,
		StandardSocket:   30 * time.Second,
		FastConnect:      5 * time.Second,
		FastGreeting:     5 * time.Second,
		FastSocket:       10 * time.Second,
		LongConnect:      60 * time.Second,
		LongGreeting:     30 * time.Second,
		LongSocket:       60 * time.Second,
		IdleTimeout:      30 * time.Second,
		APITimeout:       30 * time.Second,
		RateLimit: ratelimiter.Config{
			Capacity:       5,
			RefillRate:     5,
			RefillInterval: time.Second,
		},
	}
}

func (c Config) Standard() Tier { return Tier{c.StandardConnect, c.StandardGreeting, c.StandardSocket} }
func (c Config) Fast() Tier { return Tier{c.FastConnect, c.FastGreeting, c.FastSocket} }
func (c Config) Long() Tier { return Tier{c.LongConnect, c.LongGreeting, c.LongSocket} }

// Chain returns the ordered fallback chain: implicit TLS submission,
// STARTTLS on the same host, then the operator relay when SMTP_HOST is
// set. A built-in entry at the relay's address is dropped so the relay
// keeps its place at the end. The last entry always runs on the long tier.
func (c Config) Chain() []Endpoint {
	chain := []Endpoint{
		{Name: "submission", Host: c.SubmissionHost, Port: 465, Mode: smtp.ModeTLS, Tier: c.Standard()},
		{Name: "starttls", Host: c.SubmissionHost, Port: 587, Mode: smtp.ModeSTARTTLS, Tier: c.Fast()},
	}

	if strings.TrimSpace(c.SMTP.Host) != "" {
		relay := Endpoint{Name: "relay", Host: c.SMTP.Host, Port: c.SMTP.Port, Mode: c.SMTP.Mode()}
		kept := chain[:0]
		for _, e := range chain {
			if e.addr() != relay.addr() {
				kept = append(kept, e)
			}
		}
		chain = append(kept, relay)
	}

	chain[len(chain)-1].Tier = c.Long()
	return chain
}

// endpointConfig derives the smtp.Config for one endpoint.
func (c Config) endpointConfig(e Endpoint) smtp.Config {
	sc := c.SMTP
	sc.Host = e.Host
	sc.Port = e.Port
	sc.TLSMode = e.Mode
	sc.ConnectTimeout = e.Tier.Connect
	sc.GreetingTimeout = e.Tier.Greeting
	sc.SocketTimeout = e.Tier.Socket
	sc.IdleTimeout = c.IdleTimeout
	return sc
}
