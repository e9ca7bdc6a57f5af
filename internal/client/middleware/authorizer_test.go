package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/andressep95/estate-admin/internal/domain"
	"github.com/andressep95/estate-admin/internal/navigation"
	"github.com/andressep95/estate-admin/internal/repository"
	"github.com/andressep95/estate-admin/internal/repository/memory"
	"github.com/andressep95/estate-admin/internal/testutil"
)

func newAuthorizedClient(app *fiber.App, store repository.KeyValueStore, nav navigation.Navigator) *http.Client {
	transport := Chain(testutil.FiberTransport{App: app},
		RecoveryMiddleware(),
		LoggerMiddleware(),
		AuthorizerMiddleware(store, nav, AuthorizerConfig{}),
	)
	return &http.Client{Transport: transport}
}

func echoAuthorization(app *fiber.App, path string) {
	app.Get(path, func(c *fiber.Ctx) error {
		return c.SendString(c.Get("Authorization"))
	})
}

func get(t *testing.T, client *http.Client, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, testutil.BaseURL+path, nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func authorizationSent(t *testing.T, client *http.Client) string {
	t.Helper()
	resp := get(t, client, "/api/admin/whoami")
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return string(body)
}

func TestAuthorizer_TokenPreference(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewBackend()
	echoAuthorization(app, "/api/admin/whoami")

	tests := []struct {
		name   string
		stored map[string]string
		want   string
	}{
		{"no token", nil, ""},
		{"user token only", map[string]string{domain.KeyUserToken: "U"}, "Bearer U"},
		{"admin token only", map[string]string{domain.KeyAdminToken: "A"}, "Bearer A"},
		{"admin preferred", map[string]string{domain.KeyAdminToken: "A", domain.KeyUserToken: "U"}, "Bearer A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			for k, v := range tt.stored {
				_ = store.Set(ctx, k, v)
			}
			client := newAuthorizedClient(app, store, &navigation.Recorder{})

			if got := authorizationSent(t, client); got != tt.want {
				t.Errorf("Authorization = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthorizer_DoesNotMutateCallerRequest(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewBackend()
	echoAuthorization(app, "/api/admin/whoami")

	store := memory.NewStore()
	_ = store.Set(ctx, domain.KeyAdminToken, "A")
	client := newAuthorizedClient(app, store, &navigation.Recorder{})

	req, _ := http.NewRequest(http.MethodGet, testutil.BaseURL+"/api/admin/whoami", nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()

	if req.Header.Get("Authorization") != "" {
		t.Error("caller's request was modified")
	}
}

func TestAuthorizer_Unauthorized(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewBackend()
	unauthorized := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}
	app.Get("/api/admin/properties", unauthorized)
	app.Get("/api/properties/favourites", unauthorized)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"admin path", "/api/admin/properties", navigation.AdminLoginPath},
		{"public path", "/api/properties/favourites", navigation.LoginPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			for _, key := range domain.AllAuthKeys {
				_ = store.Set(ctx, key, "value-"+key)
			}
			nav := &navigation.Recorder{}
			client := newAuthorizedClient(app, store, nav)

			resp := get(t, client, tt.path)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("StatusCode = %d, want 401", resp.StatusCode)
			}

			for _, key := range domain.AllAuthKeys {
				if _, ok, _ := store.Get(ctx, key); ok {
					t.Errorf("key %s still stored after 401", key)
				}
			}
			if got := nav.Paths(); len(got) != 1 || got[0] != tt.want {
				t.Errorf("navigations = %v, want [%s]", got, tt.want)
			}
		})
	}
}

func TestAuthorizer_OtherErrorsKeepSession(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewBackend()
	app.Get("/api/admin/properties", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	})

	store := memory.NewStore()
	_ = store.Set(ctx, domain.KeyAdminToken, "A")
	nav := &navigation.Recorder{}

	get(t, newAuthorizedClient(app, store, nav), "/api/admin/properties")

	if _, ok, _ := store.Get(ctx, domain.KeyAdminToken); !ok {
		t.Error("403 cleared the session")
	}
	if len(nav.Paths()) != 0 {
		t.Errorf("navigations = %v, want none", nav.Paths())
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	panicking := RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		panic("boom")
	})
	client := &http.Client{Transport: Chain(panicking, RecoveryMiddleware())}

	req, _ := http.NewRequest(http.MethodGet, testutil.BaseURL+"/", nil)
	_, err := client.Do(req)
	if err == nil {
		t.Fatal("Do() expected error from a panicking transport")
	}
}

func TestLoggerMiddleware_SetsRequestID(t *testing.T) {
	var seen string
	capture := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		seen = req.Header.Get(RequestIDHeader)
		return nil, errors.New("stop")
	})
	client := &http.Client{Transport: Chain(capture, LoggerMiddleware())}

	req, _ := http.NewRequest(http.MethodGet, testutil.BaseURL+"/", nil)
	_, _ = client.Do(req)

	if seen == "" {
		t.Error("X-Request-ID was not set")
	}
}
