package response

import (
	"net/http"

	"github.com/dmitrymomot/cravecorner/core/handler"
)

// Render executes resp against the context's writer. A rendering error
// becomes a bare 500 since the error handler may itself have failed.
func Render(ctx handler.Context, resp handler.Response) {
	if err := resp(ctx.ResponseWriter(), ctx.Request()); err != nil {
		http.Error(ctx.ResponseWriter(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// String creates a text/plain response with 200 OK status.
func String(content string) handler.Response {
	return StringWithStatus(content, http.StatusOK)
}

// StringWithStatus creates a text/plain response with custom status code.
func StringWithStatus(content string, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if content != "" {
			_, err := w.Write([]byte(content))
			return err
		}
		return nil
	}
}

// NoContent creates a 204 No Content response.
func NoContent() handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
}

// WithCookies decorates resp so the given cookies are set before it renders.
func WithCookies(resp handler.Response, cookies ...*http.Cookie) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		for _, c := range cookies {
			if c != nil {
				http.SetCookie(w, c)
			}
		}
		return resp(w, r)
	}
}
