package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/cravecorner/core/handler"
)

// CORSConfig lists the browser origins allowed to call the API with
// credentials. A wildcard is not accepted because session cookies are sent
// cross-origin.
type CORSConfig struct {
	AllowOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
	MaxAge       int      `env:"CORS_MAX_AGE" envDefault:"600"`
}

var (
	corsMethods = strings.Join([]string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
	}, ",")
	corsHeaders = "Accept,Authorization,Content-Type,Origin,X-Request-ID"
)

// CORS answers preflight requests from allowed origins and adds the
// credentialed CORS headers to their actual requests. Other origins get
// no CORS headers and a 403 on preflight.
func CORS[C handler.Context](cfg CORSConfig) handler.Middleware[C] {
	origins := make([]string, 0, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" && o != "*" {
			origins = append(origins, o)
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			req := ctx.Request()
			origin := req.Header.Get("Origin")
			allowed := origin != "" && slices.Contains(origins, origin)

			if req.Method == http.MethodOptions && req.Header.Get("Access-Control-Request-Method") != "" {
				return func(w http.ResponseWriter, r *http.Request) error {
					h := w.Header()
					h.Add("Vary", "Origin")
					if !allowed {
						w.WriteHeader(http.StatusForbidden)
						return nil
					}
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Access-Control-Allow-Credentials", "true")
					h.Set("Access-Control-Allow-Methods", corsMethods)
					h.Set("Access-Control-Allow-Headers", corsHeaders)
					if cfg.MaxAge > 0 {
						h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
					}
					w.WriteHeader(http.StatusNoContent)
					return nil
				}
			}

			resp := next(ctx)
			return func(w http.ResponseWriter, r *http.Request) error {
				h := w.Header()
				h.Add("Vary", "Origin")
				if allowed {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Access-Control-Allow-Credentials", "true")
					h.Set("Access-Control-Expose-Headers", RequestIDHeader)
				}
				return resp(w, r)
			}
		}
	}
}
