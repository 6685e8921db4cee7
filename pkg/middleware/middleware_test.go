package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chernandez90/InsurancePortal/pkg/jwt"
)

func newManager(t *testing.T) *jwt.Manager {
	t.Helper()
	m, err := jwt.NewManager(jwt.Config{Secret: "mw-secret", AccessDuration: time.Minute, RefreshDuration: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := newManager(t)
	pair, _ := tokens.GenerateTokenPair("u1", "u1@example.com", "ana", []string{"adjuster"})

	r := gin.New()
	r.Use(NewAuthMiddleware(tokens).RequireAuth())
	r.GET("/me", func(c *gin.Context) {
		if GetUserID(c) != "u1" || GetUsername(c) != "ana" || GetEmail(c) != "u1@example.com" {
			t.Errorf("unexpected identity %s %s %s", GetUserID(c), GetUsername(c), GetEmail(c))
		}
		if roles := GetRoles(c); len(roles) != 1 || roles[0] != "adjuster" {
			t.Errorf("unexpected roles %v", roles)
		}
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + pair.AccessToken, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + pair.AccessToken, http.StatusUnauthorized},
		{"refresh token", "Bearer " + pair.RefreshToken, http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestAuthenticate_QueryToken(t *testing.T) {
	tokens := newManager(t)
	pair, _ := tokens.GenerateTokenPair("u1", "", "ana", nil)
	m := NewAuthMiddleware(tokens)

	req := httptest.NewRequest(http.MethodGet, "/claimHub?access_token="+pair.AccessToken, nil)
	claims, err := m.Authenticate(req)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "u1" {
		t.Errorf("unexpected claims %+v", claims)
	}

	if _, err := m.Authenticate(httptest.NewRequest(http.MethodGet, "/claimHub", nil)); err == nil {
		t.Error("expected error without token")
	}
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s: expected %q, got %q", header, want, got)
		}
	}
}
