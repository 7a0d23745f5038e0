package router

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samhans17/delivery-tracker/internal/auth"
	"github.com/samhans17/delivery-tracker/internal/config"
	"github.com/samhans17/delivery-tracker/internal/database"
	"github.com/samhans17/delivery-tracker/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, opts ...func(*config.Config)) *fiber.App {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.UseDB(t, db)
	_, err := database.SeedAdmin(db, "admin", "secret-pass")
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:   "0123456789abcdef0123456789abcdef",
		JWTTTL:      time.Hour,
		CORSOrigins: "http://localhost:5173",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return New(cfg, auth.NewMemoryStore())
}

func call(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestHealthz(t *testing.T) {
	app := newApp(t)
	status, body := call(t, app, httptest.NewRequest("GET", "/api/healthz", nil))
	assert.Equal(t, 200, status)
	assert.JSONEq(t, `{"status": "ok"}`, body)
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	app := newApp(t)
	for _, path := range []string{"/api/routes", "/api/entries", "/api/stats/monthly", "/api/export/entries.xlsx"} {
		status, _ := call(t, app, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, 401, status, path)
	}
}

func loginToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"username": "admin", "password": "secret-pass"}`))
	req.Header.Set("Content-Type", "application/json")
	status, body := call(t, app, req)
	require.Equal(t, 200, status, body)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &login))
	require.NotEmpty(t, login.Token)
	return login.Token
}

func TestMetricsNeedSessionByDefault(t *testing.T) {
	app := newApp(t)
	status, _ := call(t, app, httptest.NewRequest("GET", "/api/metrics", nil))
	assert.Equal(t, 401, status)

	req := httptest.NewRequest("GET", "/api/metrics", nil)
	req.Header.Set("Authorization", "Bearer "+loginToken(t, app))
	status, _ = call(t, app, req)
	assert.Equal(t, 200, status)
}

func TestMetricsPublicWhenEnabled(t *testing.T) {
	app := newApp(t, func(cfg *config.Config) { cfg.MetricsPublic = true })
	status, _ := call(t, app, httptest.NewRequest("GET", "/api/metrics", nil))
	assert.Equal(t, 200, status)
}

func TestLoginThenCreateEntry(t *testing.T) {
	app := newApp(t)
	token := loginToken(t, app)

	send := func(method, path, payload string) (int, string) {
		var r *http.Request
		if payload == "" {
			r = httptest.NewRequest(method, path, nil)
		} else {
			r = httptest.NewRequest(method, path, strings.NewReader(payload))
			r.Header.Set("Content-Type", "application/json")
		}
		r.Header.Set("Authorization", "Bearer "+token)
		return call(t, app, r)
	}

	status, body := send("POST", "/api/routes", `{"name": "North"}`)
	require.Equal(t, 201, status, body)
	status, body = send("POST", "/api/products", `{"name": "Gravel", "price_per_ton": 500}`)
	require.Equal(t, 201, status, body)
	status, body = send("POST", "/api/cars", `{"car_number": "CAR-1"}`)
	require.Equal(t, 201, status, body)

	status, body = send("PUT", "/api/route-product-pricing/1/1", `{"price_per_ton": 600, "is_available": true}`)
	require.Equal(t, 200, status, body)

	status, body = send("POST", "/api/entries", `{"car_id": 1, "route_id": 1, "product_id": 1, "quantity_tons": 2, "entry_date": "2024-03-05"}`)
	require.Equal(t, 201, status, body)
	var created struct {
		UnitPrice      float64 `json:"unit_price"`
		CalculatedRate float64 `json:"calculated_rate"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	assert.Equal(t, 600.0, created.UnitPrice)
	assert.Equal(t, 1200.0, created.CalculatedRate)

	status, body = send("GET", fmt.Sprintf("/api/stats/monthly?month=%d&year=%d", 3, 2024), "")
	require.Equal(t, 200, status, body)
	assert.Contains(t, body, "Gravel")
}
