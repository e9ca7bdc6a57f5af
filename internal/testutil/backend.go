// Package testutil provides an in-process marketplace backend and token
// helpers shared by package tests.
package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const BaseURL = "http://backend.test"

// FiberTransport serves requests from a Fiber app without opening a socket.
type FiberTransport struct {
	App *fiber.App
}

func (t FiberTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.App.Test(req, -1)
}

// NewBackend returns an empty Fiber app for a test to register routes on.
func NewBackend() *fiber.App {
	return fiber.New(fiber.Config{DisableStartupMessage: true})
}

// SignToken mints an HS256 token with the given claims.
func SignToken(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("SignToken() error = %v", err)
	}
	return token
}

// TokenExpiringAt mints a token whose exp claim is at.
func TokenExpiringAt(t testing.TB, at time.Time) string {
	t.Helper()
	return SignToken(t, jwt.MapClaims{
		"sub":   "admin-1",
		"email": "ops@estate.test",
		"exp":   at.Unix(),
	})
}
