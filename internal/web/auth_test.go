package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnerToken(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{"none", "/", "", ""},
		{"bearer", "/", "Bearer abc", "abc"},
		{"bearer lowercase scheme", "/", "bearer abc", "abc"},
		{"basic ignored", "/", "Basic abc", ""},
		{"query", "/?token=q", "", "q"},
		{"header wins", "/?token=q", "Bearer h", "h"},
		{"empty bearer falls back", "/?token=q", "Bearer  ", "q"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, ownerToken(r))
		})
	}
}

func TestAuthorizeRequestWithoutToken(t *testing.T) {
	srv := NewServer(Config{ListenAddr: "127.0.0.1:0"})
	r := httptest.NewRequest(http.MethodGet, "/?token=", nil)
	assert.False(t, srv.authorizeRequest(r))

	rr := httptest.NewRecorder()
	assert.False(t, srv.requireOwner(rr, r))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
