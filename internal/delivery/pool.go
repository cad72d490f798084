package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/cravecorner/core/email"
	"github.com/dmitrymomot/cravecorner/core/logger"
	"github.com/dmitrymomot/cravecorner/integration/email/smtp"
	"github.com/dmitrymomot/cravecorner/pkg/ratelimiter"
)

// Transport is one long-lived SMTP connection with its timeout tier and
// send budget.
type Transport struct {
	name   string
	tier   Tier
	client *smtp.Client
	bucket *ratelimiter.Bucket
}

// Name identifies the transport in reports and logs.
func (t *Transport) Name() string { return t.name }

// Tier returns the transport's timeout tier.
func (t *Transport) Tier() Tier { return t.tier }

// SendEmail waits for a send token and delivers params. The attempt is
// bounded by the tier total, including the time spent waiting.
func (t *Transport) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	ctx, cancel := context.WithTimeout(ctx, t.tier.Total())
	defer cancel()

	if err := t.bucket.Wait(ctx, "smtp:"+t.name); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return t.client.SendEmail(ctx, params)
}

// Pool owns the transports of the fallback chain. Build it once at startup
// and Close it on shutdown.
type Pool struct {
	transports []*Transport
	log        *slog.Logger
}

type poolOptions struct {
	endpoints []Endpoint
	store     ratelimiter.Store
	log       *slog.Logger
}

// PoolOption configures NewPool.
type PoolOption func(*poolOptions)

// WithEndpoints replaces the chain derived from Config.
func WithEndpoints(endpoints ...Endpoint) PoolOption {
	return func(o *poolOptions) { o.endpoints = endpoints }
}

// WithRateLimitStore shares the send budget through store, e.g. a Redis
// store used by several replicas. Defaults to an in-memory store.
func WithRateLimitStore(store ratelimiter.Store) PoolOption {
	return func(o *poolOptions) { o.store = store }
}

// WithPoolLogger sets the logger.
func WithPoolLogger(log *slog.Logger) PoolOption {
	return func(o *poolOptions) { o.log = log }
}

// NewPool creates one transport per chain endpoint. No connection is opened
// until the first send.
func NewPool(cfg Config, opts ...PoolOption) (*Pool, error) {
	o := poolOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.endpoints == nil {
		o.endpoints = cfg.Chain()
	}
	if o.store == nil {
		o.store = ratelimiter.NewMemoryStore()
	}
	if o.log == nil {
		o.log = slog.New(slog.DiscardHandler)
	}

	bucket, err := ratelimiter.NewBucket(o.store, cfg.RateLimit)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	p := &Pool{log: o.log.With(logger.Component("delivery.pool"))}
	seen := make(map[string]bool, len(o.endpoints))
	for _, e := range o.endpoints {
		if seen[e.Name] {
			_ = p.Close()
			return nil, fmt.Errorf("%w: duplicate transport %q", ErrInvalidConfig, e.Name)
		}
		seen[e.Name] = true

		client, err := smtp.New(cfg.endpointConfig(e))
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("%w: transport %s: %w", ErrInvalidConfig, e.Name, err)
		}
		p.transports = append(p.transports, &Transport{
			name:   e.Name,
			tier:   e.Tier,
			client: client,
			bucket: bucket,
		})
	}
	return p, nil
}

// Transports returns the chain in fallback order.
func (p *Pool) Transports() []*Transport {
	return p.transports
}

// Close sends QUIT on every open connection.
func (p *Pool) Close() error {
	var errs []error
	for _, t := range p.transports {
		if err := t.client.Close(); err != nil {
			p.log.Warn("close transport", logger.Provider(t.name), logger.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
		}
	}
	return errors.Join(errs...)
}
