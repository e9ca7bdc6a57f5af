package client

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/andressep95/estate-admin/internal/domain"
	"github.com/andressep95/estate-admin/internal/testutil"
)

func newTestClient(app *fiber.App) *Client {
	return New(testutil.BaseURL+"/", &http.Client{Transport: testutil.FiberTransport{App: app}})
}

func TestClient_AdminLogin(t *testing.T) {
	app := testutil.NewBackend()
	app.Post("/api/auth/admin/login", func(c *fiber.Ctx) error {
		var req domain.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.Email != "ops@estate.test" || req.Password != "hunter22" {
			return c.JSON(fiber.Map{"success": false, "error": "Invalid credentials"})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Welcome back",
			"token":   "T",
			"admin":   fiber.Map{"name": "Ops", "email": "ops@estate.test"},
		})
	})

	c := newTestClient(app)

	resp, err := c.AdminLogin(context.Background(), domain.LoginRequest{Email: "ops@estate.test", Password: "hunter22"})
	if err != nil {
		t.Fatalf("AdminLogin() error = %v", err)
	}
	if !resp.Success || resp.Token != "T" || resp.Message != "Welcome back" {
		t.Errorf("AdminLogin() = %+v", resp)
	}
	if len(resp.Admin) == 0 {
		t.Error("AdminLogin() returned no admin object")
	}

	resp, err = c.AdminLogin(context.Background(), domain.LoginRequest{Email: "ops@estate.test", Password: "wrong"})
	if err != nil {
		t.Fatalf("AdminLogin() error = %v", err)
	}
	if resp.Success || resp.Error != "Invalid credentials" {
		t.Errorf("AdminLogin() = %+v, want failure", resp)
	}
}

func TestClient_APIError(t *testing.T) {
	app := testutil.NewBackend()
	app.Get("/api/admin/properties", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "token expired"})
	})
	app.Put("/api/admin/properties/:id/approve", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": true, "message": "Property not found"})
	})
	app.Delete("/api/admin/properties/:id", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusBadGateway).SendString("<html>bad gateway</html>")
	})

	props := NewPropertyClient(newTestClient(app), newTestClient(app))
	ctx := context.Background()

	_, err := props.ListProperties(ctx, domain.PropertyFilter{})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("ListProperties() error = %v, want ErrUnauthorized", err)
	}

	_, err = props.ApproveProperty(ctx, "p-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ApproveProperty() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != fiber.StatusNotFound || apiErr.Text() != "Property not found" {
		t.Errorf("APIError = %+v", apiErr)
	}

	_, err = props.DeleteProperty(ctx, "p-1")
	if !errors.As(err, &apiErr) || apiErr.Text() != "" {
		t.Fatalf("DeleteProperty() error = %v, want *APIError without text", err)
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	app := testutil.NewBackend()
	app.Post("/api/auth/admin/login", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	_, err := newTestClient(app).AdminLogin(context.Background(), domain.LoginRequest{})
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("AdminLogin() error = %v, want ErrInvalidResponse", err)
	}
}

func TestPropertyClient_ListProperties(t *testing.T) {
	app := testutil.NewBackend()
	var gotQuery map[string]string
	app.Get("/api/admin/properties", func(c *fiber.Ctx) error {
		gotQuery = c.Queries()
		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"properties": []fiber.Map{{"id": "p-1", "city": "Kolkata", "status": "pending"}},
				"totalPages": 3,
				"total":      41,
			},
		})
	})

	props := NewPropertyClient(newTestClient(app), newTestClient(app))
	page, err := props.ListProperties(context.Background(), domain.PropertyFilter{
		Page: 2, Limit: 20, Status: "pending", Purpose: "all", City: "Kolkata",
	})
	if err != nil {
		t.Fatalf("ListProperties() error = %v", err)
	}

	if page.Total != 41 || page.TotalPages != 3 || len(page.Properties) != 1 {
		t.Fatalf("ListProperties() = %+v", page)
	}
	if page.Properties[0].Status != domain.PropertyStatusPending {
		t.Errorf("Status = %q, want pending", page.Properties[0].Status)
	}

	want := map[string]string{"page": "2", "limit": "20", "status": "pending", "purpose": "all", "city": "Kolkata"}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query[%s] = %q, want %q", k, gotQuery[k], v)
		}
	}
	if _, ok := gotQuery["search"]; ok {
		t.Error("empty search filter was sent")
	}
}

func TestPropertyClient_CategorizeAndSearch(t *testing.T) {
	app := testutil.NewBackend()
	var categorized domain.CategoryUpdate
	var bulk domain.BulkCategoryUpdate
	var searched string

	app.Patch("/api/admin/properties/bulk-categorize", func(c *fiber.Ctx) error {
		if err := c.BodyParser(&bulk); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	})
	app.Patch("/api/admin/properties/:id/categorize", func(c *fiber.Ctx) error {
		if err := c.BodyParser(&categorized); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "message": "updated " + c.Params("id")})
	})
	app.Get("/api/properties/search", func(c *fiber.Ctx) error {
		searched = c.Query("query")
		return c.JSON(fiber.Map{"success": true, "data": []fiber.Map{}})
	})

	props := NewPropertyClient(newTestClient(app), newTestClient(app))
	ctx := context.Background()
	featured := true

	resp, err := props.CategorizeProperty(ctx, "p-7", domain.CategoryUpdate{IsFeatured: &featured})
	if err != nil {
		t.Fatalf("CategorizeProperty() error = %v", err)
	}
	if resp.Message != "updated p-7" {
		t.Errorf("Message = %q", resp.Message)
	}
	if categorized.IsFeatured == nil || !*categorized.IsFeatured || categorized.IsTopPick != nil {
		t.Errorf("backend received %+v", categorized)
	}

	_, err = props.BulkCategorize(ctx, domain.BulkCategoryUpdate{
		PropertyIDs:    []string{"p-1", "p-2"},
		CategoryUpdate: domain.CategoryUpdate{IsFeatured: &featured},
	})
	if err != nil {
		t.Fatalf("BulkCategorize() error = %v", err)
	}
	if len(bulk.PropertyIDs) != 2 || bulk.IsFeatured == nil {
		t.Errorf("backend received %+v", bulk)
	}

	if _, err := props.Search(ctx, "3 BHK & garden"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if searched != "3 BHK & garden" {
		t.Errorf("query = %q", searched)
	}
}
