package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/cravecorner/core/handler"
	"github.com/dmitrymomot/cravecorner/core/logger"
)

// LoggingConfig configures the access log.
type LoggingConfig struct {
	// Skip excludes requests such as health probes.
	Skip func(r *http.Request) bool
	// SlowRequestThreshold raises slow successful requests to warn (default: 5s).
	SlowRequestThreshold time.Duration
}

// Logging writes one access log entry per request. Errors returned by the
// response are passed through untouched to the router's error handler.
func Logging[C handler.Context](log *slog.Logger) handler.Middleware[C] {
	return LoggingWithConfig[C](log, LoggingConfig{})
}

// LoggingWithConfig is Logging with custom settings.
func LoggingWithConfig[C handler.Context](log *slog.Logger, cfg LoggingConfig) handler.Middleware[C] {
	if log == nil {
		log = slog.Default()
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}
	log = log.With(logger.Component("http"))

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			req := ctx.Request()
			if cfg.Skip != nil && cfg.Skip(req) {
				return next(ctx)
			}

			start := time.Now()
			requestID, _ := GetRequestID(ctx)
			resp := next(ctx)

			return func(w http.ResponseWriter, r *http.Request) error {
				ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
				err := resp(ww, r)
				elapsed := time.Since(start)

				level := slog.LevelInfo
				switch {
				case err != nil, ww.status >= http.StatusBadRequest:
					level = slog.LevelWarn
				case elapsed > cfg.SlowRequestThreshold:
					level = slog.LevelWarn
				}

				attrs := []slog.Attr{
					logger.Method(req.Method),
					logger.Path(req.URL.Path),
					logger.RequestID(requestID),
					logger.Latency(elapsed),
				}
				if err == nil {
					attrs = append(attrs, logger.StatusCode(ww.status), logger.BytesOut(ww.size))
				} else {
					attrs = append(attrs, logger.Error(err))
				}
				log.LogAttrs(req.Context(), level, "request handled", attrs...)
				return err
			}
		}
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	size        int64
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}
