package certificates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	certsvc "gemlab-backend/internal/application/certificates"
	"gemlab-backend/internal/domain"
	"gemlab-backend/internal/middleware"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCertTest(t *testing.T) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Certificate{}))
	svc := &certsvc.Service{DB: db}
	return &Handlers{Service: svc}, db
}

// newApp mounts routes the way the router does: verify public, the rest
// behind the admin gate. loggedIn simulates an admin session.
func newApp(h *Handlers, loggedIn bool) *fiber.App {
	app := fiber.New()
	if loggedIn {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user", map[string]interface{}{
				"admin_id": "1",
				"username": "labadmin",
				"role":     "admin",
			})
			return c.Next()
		})
	}
	app.Get("/api/v1/certificates/verify/:reference_number", h.Verify)
	grp := app.Group("/api/v1/certificates", middleware.RequireAdmin())
	grp.Get("/", h.List)
	grp.Post("/", h.Create)
	grp.Get("/:id", h.GetByID)
	grp.Patch("/:id", h.Update)
	grp.Patch("/:id/status", h.SetStatus)
	grp.Delete("/:id", h.Delete)
	return app
}

func postJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) (map[string]interface{}, int) {
	t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	return result, resp.StatusCode
}

func createPayload(ref string) map[string]interface{} {
	return map[string]interface{}{
		"reference_number": ref,
		"carat_weight":     "1.25",
		"color_grade":      "H",
		"clarity_grade":    "VS1",
		"cut_grade":        "Excellent",
	}
}

func TestCreate_Then_Verify(t *testing.T) {
	h, _ := setupCertTest(t)
	app := newApp(h, true)

	result, code := postJSON(t, app, "POST", "/api/v1/certificates/", createPayload("GIL-2024-001234"))
	assert.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, "success", result["status"])

	req := httptest.NewRequest("GET", "/api/v1/certificates/verify/GIL-2024-001234", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var verify map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&verify))
	data := verify["data"].(map[string]interface{})
	assert.Equal(t, true, data["is_valid"])
	cert := data["certificate"].(map[string]interface{})
	assert.Equal(t, "GIL-2024-001234", cert["reference_number"])
	assert.Equal(t, "1.25", cert["carat_weight"])
	assert.Equal(t, "H", cert["color_grade"])
	assert.Equal(t, "VS1", cert["clarity_grade"])
	assert.Equal(t, "Excellent", cert["cut_grade"])
}

func TestVerify_Unknown(t *testing.T) {
	h, _ := setupCertTest(t)
	app := newApp(h, false)

	req := httptest.NewRequest("GET", "/api/v1/certificates/verify/GIL-NONEXISTENT", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var verify map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&verify))
	data := verify["data"].(map[string]interface{})
	assert.Equal(t, false, data["is_valid"])
	assert.Equal(t, "Certificate not found", data["message"])
}

func TestCreate_Duplicate(t *testing.T) {
	h, _ := setupCertTest(t)
	app := newApp(h, true)

	_, code := postJSON(t, app, "POST", "/api/v1/certificates/", createPayload("GIL-2024-000100"))
	require.Equal(t, fiber.StatusCreated, code)

	result, code := postJSON(t, app, "POST", "/api/v1/certificates/", createPayload("GIL-2024-000100"))
	assert.Equal(t, fiber.StatusConflict, code)
	errObj := result["error"].(map[string]interface{})
	assert.Equal(t, "Reference number already exists", errObj["message"])
}

func TestCreate_MissingField(t *testing.T) {
	h, _ := setupCertTest(t)
	app := newApp(h, true)

	payload := createPayload("GIL-2024-000101")
	delete(payload, "clarity_grade")
	result, code := postJSON(t, app, "POST", "/api/v1/certificates/", payload)
	assert.Equal(t, fiber.StatusBadRequest, code)
	errObj := result["error"].(map[string]interface{})
	details := errObj["details"].(map[string]interface{})
	assert.Equal(t, "clarity_grade", details["field"])
}

func TestMutations_RequireAuth(t *testing.T) {
	h, _ := setupCertTest(t)
	app := newApp(h, false)

	cases := []struct {
		method, path string
		payload      interface{}
	}{
		{"GET", "/api/v1/certificates/", nil},
		{"POST", "/api/v1/certificates/", createPayload("GIL-2024-000102")},
		{"PATCH", "/api/v1/certificates/1", map[string]interface{}{"color_grade": "G"}},
		{"PATCH", "/api/v1/certificates/1/status", map[string]interface{}{"is_active": false}},
		{"DELETE", "/api/v1/certificates/1", nil},
	}
	for _, tc := range cases {
		result, code := postJSON(t, app, tc.method, tc.path, tc.payload)
		assert.Equal(t, fiber.StatusUnauthorized, code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "error", result["status"])
	}
}

func TestUpdate_RoundTrip(t *testing.T) {
	h, _ := setupCertTest(t)
	app := newApp(h, true)

	created, code := postJSON(t, app, "POST", "/api/v1/certificates/", createPayload("GIL-2024-000103"))
	require.Equal(t, fiber.StatusCreated, code)
	id := created["data"].(map[string]interface{})["id"].(float64)

	result, code := postJSON(t, app, "PATCH", fmt.Sprintf("/api/v1/certificates/%d", int(id)), map[string]interface{}{"color_grade": "G"})
	assert.Equal(t, fiber.StatusOK, code)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, "G", data["color_grade"])
	assert.Equal(t, "1.25", data["carat_weight"])
}

func TestSetStatus_ThenVerifyInvalid(t *testing.T) {
	h, _ := setupCertTest(t)
	app := newApp(h, true)

	created, code := postJSON(t, app, "POST", "/api/v1/certificates/", createPayload("GIL-2024-000104"))
	require.Equal(t, fiber.StatusCreated, code)
	id := int(created["data"].(map[string]interface{})["id"].(float64))

	result, code := postJSON(t, app, "PATCH", fmt.Sprintf("/api/v1/certificates/%d/status", id), map[string]interface{}{"is_active": false})
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, false, result["data"].(map[string]interface{})["is_active"])

	req := httptest.NewRequest("GET", "/api/v1/certificates/verify/GIL-2024-000104", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	var verify map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&verify))
	data := verify["data"].(map[string]interface{})
	assert.Equal(t, false, data["is_valid"])
	assert.Equal(t, "Certificate not found or inactive", data["message"])

	// Admin still sees the full record.
	result, code = postJSON(t, app, "GET", fmt.Sprintf("/api/v1/certificates/%d", id), nil)
	assert.Equal(t, fiber.StatusOK, code)
	record := result["data"].(map[string]interface{})
	assert.Equal(t, false, record["is_active"])
	assert.Equal(t, "GIL-2024-000104", record["reference_number"])
}

func TestDelete_Idempotent(t *testing.T) {
	h, _ := setupCertTest(t)
	app := newApp(h, true)

	created, code := postJSON(t, app, "POST", "/api/v1/certificates/", createPayload("GIL-2024-000105"))
	require.Equal(t, fiber.StatusCreated, code)
	id := int(created["data"].(map[string]interface{})["id"].(float64))

	result, code := postJSON(t, app, "DELETE", fmt.Sprintf("/api/v1/certificates/%d", id), nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, result["data"].(map[string]interface{})["deleted"])

	result, code = postJSON(t, app, "DELETE", fmt.Sprintf("/api/v1/certificates/%d", id), nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "error", result["status"])
}

func TestGetByID_InvalidID(t *testing.T) {
	h, _ := setupCertTest(t)
	app := newApp(h, true)

	_, code := postJSON(t, app, "GET", "/api/v1/certificates/not-a-number", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
}
