package binder_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cravecorner/core/binder"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func request(body, contentType string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}

func TestJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		contentType string
		want        loginRequest
		wantErr     error
	}{
		{
			name:        "valid",
			body:        `{"email":"jane@example.com","password":"secret"}`,
			contentType: "application/json",
			want:        loginRequest{Email: "jane@example.com", Password: "secret"},
		},
		{
			name:        "charset and unknown fields",
			body:        `{"email":"a@b.co","password":"p","remember":true}`,
			contentType: "application/json; charset=utf-8",
			want:        loginRequest{Email: "a@b.co", Password: "p"},
		},
		{
			name:        "control characters stripped",
			body:        `{"email":"a@b.co\r\n","password":"p\u0000w\td"}`,
			contentType: "application/json",
			want:        loginRequest{Email: "a@b.co", Password: "pw\td"},
		},
		{name: "missing content type", body: `{}`, wantErr: binder.ErrMissingContentType},
		{name: "form body", body: `email=x`, contentType: "application/x-www-form-urlencoded", wantErr: binder.ErrUnsupportedMediaType},
		{name: "empty body", body: ``, contentType: "application/json", wantErr: binder.ErrFailedToParseJSON},
		{name: "malformed", body: `{"email":`, contentType: "application/json", wantErr: binder.ErrFailedToParseJSON},
		{name: "trailing data", body: `{"email":"x"}{"email":"y"}`, contentType: "application/json", wantErr: binder.ErrFailedToParseJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got loginRequest
			err := binder.JSON()(request(tt.body, tt.contentType), &got)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONWithLimit(t *testing.T) {
	t.Parallel()

	var got loginRequest
	err := binder.JSONWithLimit(16)(request(`{"email":"someone@example.com"}`, "application/json"), &got)
	assert.ErrorIs(t, err, binder.ErrBodyTooLarge)
}
