package auth

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrymomot/cravecorner/core/logger"
	"github.com/dmitrymomot/cravecorner/internal/delivery"
	"github.com/dmitrymomot/cravecorner/internal/message"
	"github.com/dmitrymomot/cravecorner/pkg/async"
)

type notification struct {
	to     string
	kind   message.Kind
	params message.Params
}

// notify renders and delivers synchronously. Failures are ErrNotificationFailed.
func (s *Service) notify(ctx context.Context, to string, kind message.Kind, p message.Params) error {
	if err := s.send(ctx, notification{to: to, kind: kind, params: p}); err != nil {
		return fmt.Errorf("%w: %w", ErrNotificationFailed, err)
	}
	return nil
}

// notifyLater delivers in the background. Failures are logged only. Drain
// waits for outstanding sends.
func (s *Service) notifyLater(ctx context.Context, to string, kind message.Kind, p message.Params) {
	f := async.Exec(context.WithoutCancel(ctx), notification{to: to, kind: kind, params: p},
		func(ctx context.Context, n notification) error {
			if err := s.send(ctx, n); err != nil {
				s.log.WarnContext(ctx, "best-effort email not delivered",
					logger.Recipient(n.to), logger.Event(string(n.kind)), logger.Error(err))
			}
			return nil
		})

	s.mu.Lock()
	s.pending = slices.DeleteFunc(s.pending, (*async.ExecFuture).IsComplete)
	s.pending = append(s.pending, f)
	s.mu.Unlock()
}

func (s *Service) send(ctx context.Context, n notification) error {
	msg, err := message.Render(ctx, n.kind, n.params)
	if err != nil {
		return err
	}
	_, err = s.sender.Send(ctx, delivery.Message{
		To:      n.to,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Tag:     msg.Tag,
	})
	return err
}

// Drain waits for background emails started before the call, or until ctx
// is done.
func (s *Service) Drain(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = async.ExecAll(pending...)
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
