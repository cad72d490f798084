package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/cravecorner/core/email"
)

// Client implements email.EmailSender over one pooled SMTP connection.
// Safe for concurrent use; sends are serialized.
type Client struct {
	cfg    Config
	addr   string
	from   string
	auth   smtp.Auth
	sem    chan struct{}
	conn   *session
	dialer *net.Dialer
	now    func() time.Time
}

type session struct {
	raw      net.Conn
	client   *smtp.Client
	lastUsed time.Time
}

// New validates cfg and returns a Client. No connection is opened until
// the first send.
func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: host is required", email.ErrInvalidConfig)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: port must be between 1 and 65535", email.ErrInvalidConfig)
	}
	switch cfg.Mode() {
	case ModeTLS, ModeSTARTTLS, ModePlain:
	default:
		return nil, fmt.Errorf("%w: tls mode must be tls, starttls or plain", email.ErrInvalidConfig)
	}
	if cfg.Username != "" && cfg.Password == "" {
		return nil, fmt.Errorf("%w: password is required with a username", email.ErrInvalidConfig)
	}
	sender, err := mail.ParseAddress(cfg.Sender())
	if err != nil {
		return nil, fmt.Errorf("%w: sender must be a valid email address", email.ErrInvalidConfig)
	}
	if cfg.SupportEmail != "" {
		if _, err := mail.ParseAddress(cfg.SupportEmail); err != nil {
			return nil, fmt.Errorf("%w: support email must be a valid email address", email.ErrInvalidConfig)
		}
	}

	c := &Client{
		cfg:    cfg,
		addr:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from:   (&mail.Address{Name: cfg.SenderName, Address: sender.Address}).String(),
		sem:    make(chan struct{}, 1),
		dialer: &net.Dialer{Timeout: cfg.ConnectTimeout},
		now:    time.Now,
	}
	if cfg.Username != "" {
		c.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return c, nil
}

// MustNewClient is New that panics on invalid config.
func MustNewClient(cfg Config) *Client {
	client, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// Addr returns host:port of the server.
func (c *Client) Addr() string {
	return c.addr
}

// SendEmail implements email.EmailSender.
func (c *Client) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	rcpt, _ := mail.ParseAddress(params.SendTo)

	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return errors.Join(email.ErrFailedToSendEmail, ctx.Err())
	}
	defer func() { <-c.sem }()

	msg, err := c.buildMessage(params)
	if err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}

	s, err := c.session(ctx)
	if err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}

	if err := c.transact(ctx, s, rcpt.Address, msg); err != nil {
		c.drop()
		return errors.Join(email.ErrFailedToSendEmail, err)
	}
	s.lastUsed = c.now()
	return nil
}

// Close ends the pooled connection with QUIT.
func (c *Client) Close() error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	if c.conn == nil {
		return nil
	}
	s := c.conn
	c.conn = nil

	stop := guard(context.Background(), s.raw, c.cfg.SocketTimeout)
	defer stop()
	if err := s.client.Quit(); err != nil {
		return s.client.Close()
	}
	return nil
}

// session returns the pooled connection, re-dialing when it is idle
// past IdleTimeout or fails RSET.
func (c *Client) session(ctx context.Context) (*session, error) {
	if c.conn != nil {
		if c.now().Sub(c.conn.lastUsed) < c.cfg.IdleTimeout {
			stop := guard(ctx, c.conn.raw, c.cfg.SocketTimeout)
			err := c.conn.client.Reset()
			stop()
			if err == nil {
				return c.conn, nil
			}
		}
		c.drop()
	}

	s, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	c.conn = s
	return s, nil
}

func (c *Client) dial(ctx context.Context) (*session, error) {
	raw, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", c.addr, err)
	}

	conn := raw
	if c.cfg.Mode() == ModeTLS {
		tc := tls.Client(raw, c.tlsConfig())
		hsCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		err := tc.HandshakeContext(hsCtx)
		cancel()
		if err != nil {
			_ = raw.Close()
			return nil, fmt.Errorf("tls handshake %s: %w", c.addr, err)
		}
		conn = tc
	}

	stop := guard(ctx, raw, c.cfg.GreetingTimeout)
	client, err := smtp.NewClient(conn, c.cfg.Host)
	stop()
	if err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("greeting %s: %w", c.addr, err)
	}

	stop = guard(ctx, raw, c.cfg.SocketTimeout)
	defer stop()

	if err := client.Hello(c.cfg.LocalName); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ehlo: %w", err)
	}

	if c.cfg.Mode() == ModeSTARTTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			_ = client.Close()
			return nil, errors.New("server does not support STARTTLS")
		}
		if err := client.StartTLS(c.tlsConfig()); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("starttls: %w", err)
		}
	}

	if c.auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(c.auth); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("authentication failed: %w", err)
			}
		}
	}

	return &session{raw: raw, client: client, lastUsed: c.now()}, nil
}

func (c *Client) transact(ctx context.Context, s *session, rcpt string, msg []byte) error {
	stop := guard(ctx, s.raw, c.cfg.SocketTimeout)
	defer stop()

	if err := s.client.Mail(c.cfg.Sender()); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := s.client.Rcpt(rcpt); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := s.client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("end data: %w", err)
	}
	return nil
}

func (c *Client) drop() {
	if c.conn == nil {
		return
	}
	_ = c.conn.client.Close()
	c.conn = nil
}

func (c *Client) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName:         c.cfg.Host,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: c.cfg.InsecureSkipVerify, //nolint:gosec // opt-in via SMTP_TLS_INSECURE
	}
}

func (c *Client) buildMessage(params email.SendEmailParams) ([]byte, error) {
	domain := "localhost"
	if _, d, ok := strings.Cut(c.cfg.Sender(), "@"); ok {
		domain = d
	}

	var buf bytes.Buffer
	header := func(k, v string) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString("\r\n")
	}
	header("From", c.from)
	header("To", params.SendTo)
	if c.cfg.SupportEmail != "" {
		header("Reply-To", c.cfg.SupportEmail)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", params.Subject))
	header("Date", c.now().Format(time.RFC1123Z))
	header("Message-ID", "<"+uuid.NewString()+"@"+domain+">")
	if params.Tag != "" {
		header("X-Tag", params.Tag)
	}
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="UTF-8"`)
	header("Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(params.BodyHTML)); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// guard bounds I/O on conn by timeout and by ctx, whichever ends first.
// The returned func clears both.
func guard(ctx context.Context, conn net.Conn, timeout time.Duration) func() {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)
	stopAfter := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	return func() {
		stopAfter()
		_ = conn.SetDeadline(time.Time{})
	}
}
