package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/andressep95/estate-admin/internal/config"
	"github.com/andressep95/estate-admin/internal/domain"
	"github.com/andressep95/estate-admin/internal/repository"
	"github.com/andressep95/estate-admin/internal/repository/memory"
	"github.com/andressep95/estate-admin/internal/testutil"
)

type cli struct {
	app    *app
	store  repository.KeyValueStore
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newCLI(t *testing.T, backend *fiber.App) *cli {
	t.Helper()
	cfg := &config.Config{
		Backend: config.BackendConfig{URL: testutil.BaseURL, Timeout: 5 * time.Second},
		Session: config.SessionConfig{
			ExpirySkew:     time.Minute,
			CheckInterval:  time.Minute,
			AdminLoginPath: "/admin/login",
			LoginPath:      "/login",
		},
	}
	store := memory.NewStore()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &cli{
		app:    newApp(cfg, store, testutil.FiberTransport{App: backend}, out, errOut),
		store:  store,
		out:    out,
		errOut: errOut,
	}
}

func (c *cli) run(args ...string) int {
	c.out.Reset()
	c.errOut.Reset()
	return c.app.run(context.Background(), args)
}

func adminBackend(t *testing.T) *fiber.App {
	t.Helper()
	token := testutil.TokenExpiringAt(t, time.Now().Add(time.Hour))

	app := testutil.NewBackend()
	app.Post("/api/auth/admin/login", func(c *fiber.Ctx) error {
		var req domain.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad body"})
		}
		if req.Password != "s3cret" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Invalid credentials"})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Login successful",
			"token":   token,
			"admin":   fiber.Map{"name": "Ops", "email": req.Email},
		})
	})
	app.Put("/api/admin/properties/:id/approve", func(c *fiber.Ctx) error {
		if c.Get("Authorization") != "Bearer "+token {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		return c.JSON(fiber.Map{"success": true, "message": "Property approved"})
	})
	app.Patch("/api/admin/properties/bulk-categorize", func(c *fiber.Ctx) error {
		var update domain.BulkCategoryUpdate
		if err := c.BodyParser(&update); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad body"})
		}
		if update.IsFeatured == nil || !*update.IsFeatured || update.IsTopPick != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unexpected categories"})
		}
		return c.JSON(fiber.Map{"success": true, "message": "Updated " + strings.Join(update.PropertyIDs, "+")})
	})
	app.Post("/api/admin/", func(c *fiber.Ctx) error {
		var p domain.Property
		if err := c.BodyParser(&p); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad body"})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Created in " + p.City})
	})
	return app
}

func TestCLI_LoginStatusLogout(t *testing.T) {
	c := newCLI(t, adminBackend(t))

	if code := c.run("login", "-email", "ops@estate.test", "-password", "s3cret"); code != exitOK {
		t.Fatalf("login exit = %d, stderr = %s", code, c.errOut)
	}
	if got := c.out.String(); !strings.Contains(got, "Login successful as ops@estate.test") {
		t.Errorf("login output = %q", got)
	}

	if code := c.run("status"); code != exitOK {
		t.Fatalf("status exit = %d", code)
	}
	for _, want := range []string{"State: authenticated", "Admin: Ops <ops@estate.test>", "Expires: "} {
		if !strings.Contains(c.out.String(), want) {
			t.Errorf("status output %q missing %q", c.out.String(), want)
		}
	}

	if code := c.run("token"); code != exitOK || strings.Count(c.out.String(), ".") != 2 {
		t.Errorf("token exit = %d, output = %q", code, c.out.String())
	}

	if code := c.run("logout"); code != exitOK {
		t.Fatalf("logout exit = %d", code)
	}
	if _, ok, _ := c.store.Get(context.Background(), domain.KeyAdminToken); ok {
		t.Error("admin token still stored after logout")
	}
	if code := c.run("token"); code != exitFailure {
		t.Errorf("token after logout exit = %d, want %d", code, exitFailure)
	}
}

func TestCLI_LoginFailure(t *testing.T) {
	c := newCLI(t, adminBackend(t))

	if code := c.run("login", "-email", "ops@estate.test", "-password", "wrong"); code != exitFailure {
		t.Fatalf("login exit = %d, want %d", code, exitFailure)
	}
	if got := c.errOut.String(); !strings.Contains(got, "Invalid credentials") {
		t.Errorf("stderr = %q, want backend error", got)
	}
	// A failed login is not a forced logout.
	if strings.Contains(c.out.String(), "Sign in again") {
		t.Errorf("stdout = %q, want no redirect", c.out.String())
	}
}

func TestCLI_LoginValidation(t *testing.T) {
	c := newCLI(t, adminBackend(t))

	if code := c.run("login", "-email", "not-an-email", "-password", "x"); code != exitFailure {
		t.Fatalf("login exit = %d, want %d", code, exitFailure)
	}
	if !strings.Contains(c.errOut.String(), "email") {
		t.Errorf("stderr = %q, want email validation error", c.errOut.String())
	}
}

func TestCLI_PropertyModeration(t *testing.T) {
	c := newCLI(t, adminBackend(t))
	if code := c.run("login", "-email", "ops@estate.test", "-password", "s3cret"); code != exitOK {
		t.Fatalf("login exit = %d, stderr = %s", code, c.errOut)
	}

	if code := c.run("properties", "approve", "p-1"); code != exitOK {
		t.Fatalf("approve exit = %d, stderr = %s", code, c.errOut)
	}
	if got := strings.TrimSpace(c.out.String()); got != "Property approved" {
		t.Errorf("approve output = %q", got)
	}

	if code := c.run("properties", "bulk-categorize", "-ids", "p-1, p-2", "-featured"); code != exitOK {
		t.Fatalf("bulk-categorize exit = %d, stderr = %s", code, c.errOut)
	}
	if got := strings.TrimSpace(c.out.String()); got != "Updated p-1+p-2" {
		t.Errorf("bulk-categorize output = %q", got)
	}
}

func TestCLI_CreateFromFile(t *testing.T) {
	c := newCLI(t, adminBackend(t))
	if code := c.run("login", "-email", "ops@estate.test", "-password", "s3cret"); code != exitOK {
		t.Fatalf("login exit = %d, stderr = %s", code, c.errOut)
	}

	path := filepath.Join(t.TempDir(), "listing.json")
	listing := `{"city":"Pune","plotArea":"1200","expectedPrice":"9500000","purpose":"sell"}`
	if err := os.WriteFile(path, []byte(listing), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if code := c.run("properties", "create", "-file", path); code != exitOK {
		t.Fatalf("create exit = %d, stderr = %s", code, c.errOut)
	}
	if got := strings.TrimSpace(c.out.String()); got != "Created in Pune" {
		t.Errorf("create output = %q", got)
	}
}

func TestCLI_RevokedTokenRedirects(t *testing.T) {
	c := newCLI(t, adminBackend(t))
	ctx := context.Background()

	// A token the backend does not recognise, still valid locally.
	stale := testutil.TokenExpiringAt(t, time.Now().Add(2*time.Hour))
	if err := c.store.Set(ctx, domain.KeyAdminToken, stale); err != nil {
		t.Fatal(err)
	}
	if err := c.store.Set(ctx, domain.KeyAdminData, `{"email":"ops@estate.test"}`); err != nil {
		t.Fatal(err)
	}

	if code := c.run("properties", "approve", "p-1"); code != exitFailure {
		t.Fatalf("approve exit = %d, want %d", code, exitFailure)
	}
	if !strings.Contains(c.out.String(), "Sign in again with: estate-admin login") {
		t.Errorf("stdout = %q, want redirect notice", c.out.String())
	}
	for _, key := range domain.AllAuthKeys {
		if _, ok, _ := c.store.Get(ctx, key); ok {
			t.Errorf("%s still stored after a 401", key)
		}
	}
}

func TestCLI_Usage(t *testing.T) {
	c := newCLI(t, testutil.NewBackend())

	tests := []struct {
		args []string
		want int
	}{
		{args: nil, want: exitUsage},
		{args: []string{"frobnicate"}, want: exitUsage},
		{args: []string{"properties"}, want: exitUsage},
		{args: []string{"properties", "approve"}, want: exitUsage},
		{args: []string{"properties", "categorize", "-featured"}, want: exitUsage},
		{args: []string{"help"}, want: exitOK},
	}
	for _, tt := range tests {
		if got := c.run(tt.args...); got != tt.want {
			t.Errorf("run(%q) = %d, want %d", tt.args, got, tt.want)
		}
	}
}

func TestCLI_LogoutAllNeedsClearableStore(t *testing.T) {
	c := newCLI(t, testutil.NewBackend())

	if code := c.run("logout", "-all"); code != exitFailure {
		t.Errorf("logout -all exit = %d, want %d for the memory store", code, exitFailure)
	}
}
