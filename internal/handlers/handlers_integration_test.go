package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"flowershop/internal/models"
	"flowershop/internal/repositories"
	"flowershop/internal/server"
	"flowershop/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const description = "Bright petals that open wide in the morning sun."

// setupApp sets up a Fiber app for testing with in-memory SQLite.
func setupApp(t *testing.T, withAuth bool) (*fiber.App, repositories.ProductRepository) {
	t.Helper()

	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to connect to in-memory database")
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.User{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	productRepo := repositories.NewGORMProductRepository(db)
	opts := server.Options{
		Products: services.NewProductService(productRepo, nil),
		Quiet:    true,
	}
	if withAuth {
		opts.Auth = services.NewAuthService(repositories.NewGORMUserRepository(db), "test_jwt_secret")
	}
	return server.NewApp(opts), productRepo
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}, headers ...string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func newFlower(title string, price float64) map[string]interface{} {
	return map[string]interface{}{
		"title":       title,
		"price":       price,
		"description": description,
		"cover":       "https://example.com/" + strings.ReplaceAll(title, " ", "-") + ".webp",
	}
}

func createFlower(t *testing.T, app *fiber.App, title string, price float64) models.Product {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/flowers/", newFlower(title, price))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	decode(t, resp, &created)
	return created
}

func TestFlowerAPI_Lifecycle(t *testing.T) {
	app, _ := setupApp(t, false)

	// --- Create ---
	created := createFlower(t, app, "Sunflower", 45.5)
	assert.Len(t, created.ID, 32)
	assert.Equal(t, "Sunflower", created.Title)
	assert.Equal(t, 45.5, created.Price)
	assert.Equal(t, description, created.Description)

	// --- Get by ID ---
	resp := doJSON(t, app, http.MethodGet, "/flowers/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Product
	decode(t, resp, &fetched)
	assert.Equal(t, created, fetched)

	// --- Patch ---
	resp = doJSON(t, app, http.MethodPatch, "/flowers/"+created.ID, map[string]interface{}{
		"title": "Giant sunflower",
		"price": 50,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var patched models.Product
	decode(t, resp, &patched)
	assert.Equal(t, created.ID, patched.ID)
	assert.Equal(t, "Giant sunflower", patched.Title)
	assert.Equal(t, 50.0, patched.Price)
	assert.Equal(t, created.Description, patched.Description)
	assert.Equal(t, created.Cover, patched.Cover)

	// --- Delete ---
	resp = doJSON(t, app, http.MethodDelete, "/flowers/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{}`, readBody(t, resp))

	// Verify deletion
	resp = doJSON(t, app, http.MethodGet, "/flowers/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Deleting again still succeeds
	resp = doJSON(t, app, http.MethodDelete, "/flowers/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{}`, readBody(t, resp))
}

func TestFlowerAPI_CreateValidation(t *testing.T) {
	app, repo := setupApp(t, false)

	tests := []struct {
		name   string
		body   interface{}
		status int
		field  string
	}{
		{name: "price zero", body: newFlower("Rose", 0), status: http.StatusUnprocessableEntity, field: "price"},
		{name: "price at upper bound", body: newFlower("Rose", 10000), status: http.StatusUnprocessableEntity, field: "price"},
		{name: "price at lower bound", body: newFlower("Rose", 0.01), status: http.StatusCreated},
		{name: "price below upper bound", body: newFlower("Rose", 9999.99), status: http.StatusCreated},
		{name: "short title", body: newFlower("Ro", 10), status: http.StatusUnprocessableEntity, field: "title"},
		{name: "short description", body: map[string]interface{}{
			"title": "Rose", "price": 10, "description": strings.Repeat("x", 19), "cover": "c",
		}, status: http.StatusUnprocessableEntity, field: "description"},
		{name: "long description", body: map[string]interface{}{
			"title": "Rose", "price": 10, "description": strings.Repeat("x", 1025), "cover": "c",
		}, status: http.StatusUnprocessableEntity, field: "description"},
		{name: "missing cover", body: map[string]interface{}{
			"title": "Rose", "price": 10, "description": description,
		}, status: http.StatusUnprocessableEntity, field: "cover"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/flowers/", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.field == "" {
				return
			}
			var body struct {
				Message string            `json:"message"`
				Errors  map[string]string `json:"errors"`
			}
			decode(t, resp, &body)
			assert.Equal(t, "Validation failed", body.Message)
			assert.Contains(t, body.Errors, tt.field)
		})
	}

	// Only the two valid flowers were stored
	stored, err := repo.Search(context.Background(), "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestFlowerAPI_MalformedBody(t *testing.T) {
	app, _ := setupApp(t, false)

	req := httptest.NewRequest(http.MethodPost, "/flowers/", strings.NewReader(`{"title": "Rose", "price": "cheap"`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestFlowerAPI_Search(t *testing.T) {
	app, _ := setupApp(t, false)

	createFlower(t, app, "A rose garden", 30)
	createFlower(t, app, "Tulip", 10)
	createFlower(t, app, "Lily", 20)

	var flowers []models.Product

	resp := doJSON(t, app, http.MethodGet, "/flowers/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &flowers)
	assert.Len(t, flowers, 3)

	resp = doJSON(t, app, http.MethodGet, "/flowers/?query=ROSE", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &flowers)
	require.Len(t, flowers, 1)
	assert.Equal(t, "A rose garden", flowers[0].Title)

	resp = doJSON(t, app, http.MethodGet, "/flowers?skip=1&limit=1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &flowers)
	require.Len(t, flowers, 1)
	assert.Equal(t, "Tulip", flowers[0].Title)

	resp = doJSON(t, app, http.MethodGet, "/flowers/?query=cactus", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, readBody(t, resp))

	resp = doJSON(t, app, http.MethodGet, "/flowers/?limit=-1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/flowers/?skip=abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestFlowerAPI_PatchErrors(t *testing.T) {
	app, _ := setupApp(t, false)
	created := createFlower(t, app, "Daisy", 3)

	resp := doJSON(t, app, http.MethodPatch, "/flowers/missing", map[string]interface{}{"title": "Daisy", "price": 4})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Unchanged values are reported as not found
	resp = doJSON(t, app, http.MethodPatch, "/flowers/"+created.ID, map[string]interface{}{"title": "Daisy", "price": 3})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Both fields are required
	resp = doJSON(t, app, http.MethodPatch, "/flowers/"+created.ID, map[string]interface{}{"title": "Oxeye daisy"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestPages(t *testing.T) {
	app, _ := setupApp(t, false)
	created := createFlower(t, app, "A rose garden", 30)
	createFlower(t, app, "Tulip", 10)

	t.Run("index lists flowers", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		body := readBody(t, resp)
		assert.Contains(t, body, "A rose garden")
		assert.Contains(t, body, "Tulip")
	})

	t.Run("index search by form", func(t *testing.T) {
		form := url.Values{"q": {"rose"}}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := readBody(t, resp)
		assert.Contains(t, body, "A rose garden")
		assert.NotContains(t, body, "Tulip")
	})

	t.Run("index search by query string", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/?q=TULIP", nil)
		body := readBody(t, resp)
		assert.Contains(t, body, "Tulip")
		assert.NotContains(t, body, "A rose garden")
	})

	t.Run("static pages win over the detail route", func(t *testing.T) {
		for path, heading := range map[string]string{"/map_route": "How to find us", "/video": "Our flowers on video"} {
			resp := doJSON(t, app, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode, path)
			assert.Contains(t, readBody(t, resp), heading, path)
		}
	})

	t.Run("details", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/"+created.ID, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := readBody(t, resp)
		assert.Contains(t, body, "A rose garden")
		assert.Contains(t, body, description)
		assert.Contains(t, body, "30.00")
	})

	t.Run("unknown flower renders not found page", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/does-not-exist", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		assert.Contains(t, readBody(t, resp), "Flower not found")
	})

	t.Run("deleted flower renders not found page", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, "/flowers/"+created.ID, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = doJSON(t, app, http.MethodGet, "/"+created.ID, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), "Flower not found")
	})
}

func TestHealthCheck(t *testing.T) {
	app, _ := setupApp(t, false)

	resp := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"status":"healthy"`)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, _ := setupApp(t, true)

	// Test Registration
	user := map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	}
	resp := doJSON(t, app, http.MethodPost, "/auth/register", user)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var registerResp map[string]interface{}
	decode(t, resp, &registerResp)
	assert.Equal(t, "User registered successfully", registerResp["message"])
	assert.NotContains(t, registerResp["user"], "password")

	// Test Duplicate Registration (username)
	resp = doJSON(t, app, http.MethodPost, "/auth/register", user)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Test invalid registration
	resp = doJSON(t, app, http.MethodPost, "/auth/register", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// Test Login
	resp = doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{"username": "testuser", "password": "password123"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]string
	decode(t, resp, &loginResp)
	assert.NotEmpty(t, loginResp["token"])

	// Test wrong password
	resp = doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{"username": "testuser", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFlowerAPI_WritesRequireTokenWhenAuthEnabled(t *testing.T) {
	app, _ := setupApp(t, true)

	// Reads stay public
	resp := doJSON(t, app, http.MethodGet, "/flowers/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Writes without a token are rejected
	resp = doJSON(t, app, http.MethodPost, "/flowers/", newFlower("Rose", 10))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/flowers/anything", nil, "Authorization", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Register and log in to get a token
	creds := map[string]string{"username": "authuser", "email": "auth@example.com", "password": "securepassword"}
	resp = doJSON(t, app, http.MethodPost, "/auth/register", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, app, http.MethodPost, "/auth/login", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]string
	decode(t, resp, &loginResp)
	bearer := fmt.Sprintf("Bearer %s", loginResp["token"])

	resp = doJSON(t, app, http.MethodPost, "/flowers/", newFlower("Rose", 10), "Authorization", bearer)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	decode(t, resp, &created)

	resp = doJSON(t, app, http.MethodPatch, "/flowers/"+created.ID, map[string]interface{}{"title": "Red rose", "price": 12}, "Authorization", bearer)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/flowers/"+created.ID, nil, "Authorization", bearer)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
