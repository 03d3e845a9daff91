package ws

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginPolicy(t *testing.T) {
	p := newOriginPolicy([]string{"http://localhost:8080", " HTTPS://Chat.Example.com ", "not a url", ""})

	tests := []struct {
		name   string
		origin string
		host   string
		want   bool
	}{
		{name: "no origin header", origin: "", host: "api.test", want: true},
		{name: "configured origin", origin: "http://localhost:8080", host: "api.test", want: true},
		{name: "case insensitive", origin: "https://chat.example.COM", host: "api.test", want: true},
		{name: "same host", origin: "http://api.test", host: "api.test", want: true},
		{name: "disallowed", origin: "http://evil.test", host: "api.test", want: false},
		{name: "malformed", origin: "::::", host: "api.test", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://"+tt.host+"/ws/a", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, p.check(req))
		})
	}
}

func TestOriginPolicyAllowAll(t *testing.T) {
	p := newOriginPolicy([]string{"*"})
	req := httptest.NewRequest("GET", "/ws/a", nil)
	req.Header.Set("Origin", "http://anything.test")
	assert.True(t, p.check(req))
}
