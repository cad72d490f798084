// Package smtptest provides an in-process SMTP server for tests.
package smtptest

import (
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// Message is one accepted DATA transaction.
type Message struct {
	From string
	To   []string
	Data string
}

// Server speaks enough ESMTP for net/smtp: EHLO, AUTH PLAIN, MAIL, RCPT,
// DATA, RSET, NOOP and QUIT.
type Server struct {
	Host string
	Port int

	ln            net.Listener
	greetingDelay time.Duration
	silent        bool
	replies       map[string]string

	mu       sync.Mutex
	messages []Message
	conns    int
	resets   int
	active   map[net.Conn]struct{}
	done     chan struct{}
	wg       sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithGreetingDelay delays the 220 banner.
func WithGreetingDelay(d time.Duration) Option {
	return func(s *Server) { s.greetingDelay = d }
}

// WithSilentGreeting accepts connections but never sends the banner.
func WithSilentGreeting() Option {
	return func(s *Server) { s.silent = true }
}

// WithReply answers verb (e.g. "DATA") with a fixed reply line.
func WithReply(verb, reply string) Option {
	return func(s *Server) { s.replies[strings.ToUpper(verb)] = reply }
}

// NewServer starts a server on 127.0.0.1 and stops it on test cleanup.
func NewServer(tb testing.TB, opts ...Option) *Server {
	tb.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("smtptest: listen: %v", err)
	}

	s := &Server{
		Host:    "127.0.0.1",
		Port:    ln.Addr().(*net.TCPAddr).Port,
		ln:      ln,
		replies: map[string]string{},
		active:  map[net.Conn]struct{}{},
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.serve()
	tb.Cleanup(s.Close)
	return s
}

// Addr returns host:port.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Messages returns a copy of the accepted messages.
func (s *Server) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Connections counts accepted TCP connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns
}

// Resets counts RSET commands.
func (s *Server) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}

// DropConnections closes every open client connection from the server side.
func (s *Server) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.active {
		_ = c.Close()
	}
}

// Close stops the listener and all connections.
func (s *Server) Close() {
	select {
	case <-s.done:
		return
	default:
	}
	close(s.done)
	_ = s.ln.Close()
	s.DropConnections()
	s.wg.Wait()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns++
		s.active[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				s.mu.Lock()
				delete(s.active, conn)
				s.mu.Unlock()
				_ = conn.Close()
			}()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	if s.silent {
		<-s.done
		return
	}
	if s.greetingDelay > 0 {
		select {
		case <-time.After(s.greetingDelay):
		case <-s.done:
			return
		}
	}

	tp := textproto.NewConn(conn)
	if err := tp.PrintfLine("220 %s ESMTP smtptest", s.Host); err != nil {
		return
	}

	var cur Message
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb, arg, _ := strings.Cut(line, " ")
		verb = strings.ToUpper(verb)

		if reply, ok := s.replies[verb]; ok {
			_ = tp.PrintfLine("%s", reply)
			if strings.HasPrefix(reply, "421") {
				return
			}
			continue
		}

		switch verb {
		case "EHLO":
			_ = tp.PrintfLine("250-%s greets %s", s.Host, arg)
			_ = tp.PrintfLine("250-AUTH PLAIN")
			_ = tp.PrintfLine("250 HELP")
		case "HELO":
			_ = tp.PrintfLine("250 %s", s.Host)
		case "AUTH":
			_ = tp.PrintfLine("235 2.7.0 Authentication successful")
		case "MAIL":
			cur = Message{From: addr(arg)}
			_ = tp.PrintfLine("250 2.1.0 OK")
		case "RCPT":
			cur.To = append(cur.To, addr(arg))
			_ = tp.PrintfLine("250 2.1.5 OK")
		case "DATA":
			_ = tp.PrintfLine("354 End data with <CR><LF>.<CR><LF>")
			lines, err := tp.ReadDotLines()
			if err != nil {
				return
			}
			cur.Data = strings.Join(lines, "\n")
			s.mu.Lock()
			s.messages = append(s.messages, cur)
			s.mu.Unlock()
			cur = Message{}
			_ = tp.PrintfLine("250 2.0.0 queued")
		case "RSET":
			s.mu.Lock()
			s.resets++
			s.mu.Unlock()
			cur = Message{}
			_ = tp.PrintfLine("250 2.0.0 OK")
		case "NOOP":
			_ = tp.PrintfLine("250 2.0.0 OK")
		case "QUIT":
			_ = tp.PrintfLine("221 2.0.0 Bye")
			return
		default:
			_ = tp.PrintfLine("502 5.5.2 command not recognized")
		}
	}
}

// addr extracts the address from "FROM:<a@b> BODY=8BITMIME".
func addr(arg string) string {
	start := strings.Index(arg, "<")
	end := strings.Index(arg, ">")
	if start < 0 || end < start {
		return ""
	}
	return arg[start+1 : end]
}
