package delivery

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/cravecorner/core/email"
	"github.com/dmitrymomot/cravecorner/core/logger"
)

// Message is a rendered email addressed to one recipient.
type Message struct {
	To      string
	Subject string
	HTML    string
	Tag     string
}

func (m Message) params() email.SendEmailParams {
	return email.SendEmailParams{
		SendTo:   m.To,
		Subject:  m.Subject,
		BodyHTML: m.HTML,
		Tag:      m.Tag,
	}
}

// Outcome of a single attempt.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeFailed    Outcome = "failed"
)

// Attempt records one provider or transport try.
type Attempt struct {
	Provider string
	Outcome  Outcome
	Err      error
	Elapsed  time.Duration
}

// Report lists every attempt of one Send in order.
type Report struct {
	Attempts []Attempt
}

// DeliveredBy names the provider that accepted the message, or "".
func (r Report) DeliveredBy() string {
	for _, a := range r.Attempts {
		if a.Outcome == OutcomeDelivered {
			return a.Provider
		}
	}
	return ""
}

// Provider is an API-based sender tried before the SMTP chain.
type Provider interface {
	Name() string
	SendEmail(ctx context.Context, params email.SendEmailParams) error
}

// Dispatcher delivers a message through the API provider, then each pool
// transport in order, stopping at the first success.
type Dispatcher struct {
	pool       *Pool
	provider   Provider
	apiTimeout time.Duration
	log        *slog.Logger
}

// DispatcherOption configures NewDispatcher.
type DispatcherOption func(*Dispatcher)

// WithProvider puts p in front of the SMTP chain. Each call is bounded by
// timeout.
func WithProvider(p Provider, timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.provider = p
		if timeout > 0 {
			d.apiTimeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// NewDispatcher creates a Dispatcher. pool may be nil when only the API
// provider is used.
func NewDispatcher(pool *Pool, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		pool:       pool,
		apiTimeout: 30 * time.Second,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With(logger.Component("delivery"))
	return d
}

// Send delivers msg. Cancelling ctx does not abort delivery; every attempt
// runs under its own deadline. When all attempts fail the error wraps
// ErrDeliveryExhausted and the last attempt's error.
func (d *Dispatcher) Send(ctx context.Context, msg Message) (Report, error) {
	var report Report

	params := msg.params()
	if err := params.Validate(); err != nil {
		return report, err
	}

	ctx = context.WithoutCancel(ctx)
	var last error

	if d.provider != nil {
		err := d.attempt(ctx, &report, msg, d.provider.Name(), d.apiTimeout, d.provider.SendEmail)
		if err == nil {
			return report, nil
		}
		last = err
	}

	if d.pool != nil {
		for _, t := range d.pool.Transports() {
			// Transport.SendEmail applies the tier deadline itself.
			err := d.attempt(ctx, &report, msg, t.Name(), 0, t.SendEmail)
			if err == nil {
				return report, nil
			}
			last = err
		}
	}

	if last == nil {
		last = ErrNoTransports
	}
	d.log.ErrorContext(ctx, "email delivery exhausted",
		logger.Recipient(msg.To),
		slog.String("tag", msg.Tag),
		logger.Count("attempts", len(report.Attempts)),
		logger.Error(last),
	)
	return report, errors.Join(ErrDeliveryExhausted, last)
}

type sendFunc func(context.Context, email.SendEmailParams) error

func (d *Dispatcher) attempt(ctx context.Context, report *Report, msg Message, name string, timeout time.Duration, send sendFunc) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := send(ctx, msg.params())
	a := Attempt{Provider: name, Outcome: OutcomeDelivered, Err: err, Elapsed: time.Since(start)}

	attrs := []any{
		logger.Provider(name),
		logger.Recipient(msg.To),
		slog.String("tag", msg.Tag),
		logger.Duration(a.Elapsed),
	}
	if err != nil {
		a.Outcome = OutcomeFailed
		d.log.WarnContext(ctx, "email attempt failed", append(attrs, logger.Result(string(a.Outcome)), logger.Error(err))...)
	} else {
		d.log.InfoContext(ctx, "email delivered", append(attrs, logger.Result(string(a.Outcome)))...)
	}

	report.Attempts = append(report.Attempts, a)
	return err
}
