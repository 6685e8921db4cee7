package handler

import (
	"net/http"
	"testing"

	"github.com/chernandez90/InsurancePortal/internal/domain"
	"github.com/chernandez90/InsurancePortal/pkg/response"
)

func TestAuth_Flow(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	var reg domain.AuthResponse
	decode(t, env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    "adjuster@example.com",
		"username": "adjuster",
		"password": "correct-horse",
	}, ""), http.StatusCreated, &reg)
	if reg.AccessToken == "" || reg.RefreshToken == "" || reg.User == nil || reg.User.Username != "adjuster" {
		t.Fatalf("unexpected register response %+v", reg)
	}

	expectError(t, env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    "adjuster@example.com",
		"username": "other",
		"password": "correct-horse",
	}, ""), http.StatusConflict, response.CodeConflict)

	var login domain.AuthResponse
	decode(t, env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "adjuster@example.com",
		"password": "correct-horse",
	}, ""), http.StatusOK, &login)

	expectError(t, env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "adjuster@example.com",
		"password": "wrong-horse",
	}, ""), http.StatusUnauthorized, response.CodeUnauthorized)

	var me domain.UserResponse
	decode(t, env.do(t, http.MethodGet, "/api/v1/auth/me", nil, login.AccessToken), http.StatusOK, &me)
	if me.ID != reg.User.ID || me.Email != "adjuster@example.com" {
		t.Errorf("unexpected user %+v", me)
	}

	var refreshed domain.AuthResponse
	decode(t, env.do(t, http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refreshToken": login.RefreshToken,
	}, ""), http.StatusOK, &refreshed)
	if refreshed.AccessToken == "" {
		t.Fatal("expected a new access token")
	}

	decode(t, env.do(t, http.MethodPost, "/api/v1/auth/logout", nil, refreshed.AccessToken), http.StatusOK, nil)
	expectError(t, env.do(t, http.MethodGet, "/api/v1/auth/me", nil, refreshed.AccessToken), http.StatusUnauthorized, response.CodeUnauthorized)
}

func TestAuth_InvalidRequests(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	expectError(t, env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    "not-an-email",
		"username": "ab",
		"password": "short",
	}, ""), http.StatusBadRequest, response.CodeBadRequest)

	expectError(t, env.do(t, http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refreshToken": "garbage",
	}, ""), http.StatusUnauthorized, response.CodeUnauthorized)

	expectError(t, env.do(t, http.MethodPost, "/api/v1/auth/logout", nil, ""), http.StatusUnauthorized, response.CodeUnauthorized)

	// Tokens for users that no longer exist still authenticate but have no profile.
	expectError(t, env.do(t, http.MethodGet, "/api/v1/auth/me", nil, env.token(t, "ghost")), http.StatusNotFound, response.CodeNotFound)
}
