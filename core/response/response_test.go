package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cravecorner/core/handler"
	"github.com/dmitrymomot/cravecorner/core/response"
	"github.com/dmitrymomot/cravecorner/core/router"
)

type customStatusError struct {
	message string
	status  int
}

func (e customStatusError) Error() string   { return e.message }
func (e customStatusError) StatusCode() int { return e.status }

func serve(t *testing.T, eh handler.ErrorHandler[*router.Context], h handler.HandlerFunc[*router.Context]) *httptest.ResponseRecorder {
	t.Helper()
	r := router.New[*router.Context](router.WithErrorHandler(eh))
	r.Get("/", h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		resp   handler.Response
		status int
		body   string
	}{
		{"default status", response.JSON(map[string]bool{"success": true}), http.StatusOK, "{\"success\":true}\n"},
		{"custom status", response.JSONWithStatus(map[string]int{"n": 1}, http.StatusCreated), http.StatusCreated, "{\"n\":1}\n"},
		{"nil value", response.JSONWithStatus(nil, 0), http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(t, response.JSONErrorHandler[*router.Context], func(*router.Context) handler.Response { return tt.resp })
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestWithCookies(t *testing.T) {
	t.Parallel()

	rec := serve(t, response.JSONErrorHandler[*router.Context], func(*router.Context) handler.Response {
		return response.WithCookies(response.NoContent(), &http.Cookie{Name: "token", Value: "v"}, nil)
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, "token", rec.Result().Cookies()[0].Name)
}

func TestJSONErrorHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "http error keeps message",
			err:     response.ErrConflict.WithMessage("User already exist with this email"),
			status:  http.StatusConflict,
			code:    "conflict",
			message: "User already exist with this email",
		},
		{
			name:    "wrapped http error",
			err:     fmt.Errorf("signup: %w", response.ErrBadRequest),
			status:  http.StatusBadRequest,
			code:    "bad_request",
			message: "Bad Request",
		},
		{
			name:    "status coder hides message",
			err:     customStatusError{message: "internal detail", status: http.StatusTooManyRequests},
			status:  http.StatusTooManyRequests,
			code:    "too_many_requests",
			message: "Too Many Requests",
		},
		{
			name:    "plain error is internal",
			err:     errors.New("connection refused"),
			status:  http.StatusInternalServerError,
			code:    "internal_server_error",
			message: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(t, response.JSONErrorHandler[*router.Context], func(*router.Context) handler.Response {
				return response.Error(tt.err)
			})
			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestJSONErrorHandlerWith(t *testing.T) {
	t.Parallel()

	errDomain := errors.New("domain")
	errOutage := errors.New("outage")
	mapper := func(err error) (response.HTTPError, bool) {
		switch {
		case errors.Is(err, errDomain):
			return response.ErrUnauthorized.WithMessage("mapped"), true
		case errors.Is(err, errOutage):
			return response.ErrServiceUnavailable, true
		}
		return response.HTTPError{}, false
	}

	tests := []struct {
		name     string
		err      error
		status   int
		reported bool
	}{
		{"mapped client error", errDomain, http.StatusUnauthorized, false},
		{"mapped server error", errOutage, http.StatusServiceUnavailable, true},
		{"unmapped", errors.New("x"), http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var reported bool
			eh := response.JSONErrorHandlerWith(func(*router.Context, error) { reported = true }, mapper)
			rec := serve(t, eh, func(*router.Context) handler.Response { return response.Error(tt.err) })
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.reported, reported)
		})
	}
}

func TestErrorHandler_PlainText(t *testing.T) {
	t.Parallel()

	rec := serve(t, response.ErrorHandler[*router.Context], func(*router.Context) handler.Response {
		return response.Error(response.ErrNotFound.WithMessage("User doesn't exist"))
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User doesn't exist", rec.Body.String())
}
