package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samhans17/delivery-tracker/internal/httpx"
	"github.com/samhans17/delivery-tracker/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})
	app.Get("/routes", ListRoutesHandler())
	app.Post("/routes", CreateRouteHandler())
	app.Get("/routes/:id", GetRouteHandler())
	app.Put("/routes/:id", UpdateRouteHandler())
	app.Delete("/routes/:id", DeleteRouteHandler())
	app.Get("/products", ListProductsHandler())
	app.Post("/products", CreateProductHandler())
	app.Get("/cars", ListCarsHandler())
	app.Post("/cars", CreateCarHandler())
	app.Delete("/cars/:id", DeleteCarHandler())
	app.Get("/expense-types", ListExpenseTypesHandler())
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string, out interface{}) int {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

func TestRegistryHandlers(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.UseDB(t, db)
	app := newTestApp()

	var route map[string]interface{}
	status := send(t, app, "POST", "/routes", `{"name": "North", "description": "coast"}`, &route)
	require.Equal(t, 201, status, route)
	assert.Equal(t, "North", route["name"])

	var errBody map[string]interface{}
	status = send(t, app, "POST", "/routes", `{"name": "North"}`, &errBody)
	assert.Equal(t, 400, status)
	assert.Equal(t, "conflict", errBody["code"])

	var product map[string]interface{}
	status = send(t, app, "POST", "/products", `{"name": "Sand", "price_per_ton": 500}`, &product)
	require.Equal(t, 201, status, product)
	assert.EqualValues(t, 500, product["price_per_ton"])

	var car map[string]interface{}
	status = send(t, app, "POST", "/cars", `{"car_number": "TRK-1"}`, &car)
	require.Equal(t, 201, status, car)

	routeID := uint(route["id"].(float64))
	productID := uint(product["id"].(float64))
	carID := uint(car["id"].(float64))
	addEntry(t, db, carID, routeID, productID)

	status = send(t, app, "DELETE", fmt.Sprintf("/routes/%d", routeID), "", &errBody)
	assert.Equal(t, 400, status)
	assert.Equal(t, "Route is in use and cannot be deleted", errBody["error"])
	assert.Equal(t, map[string]interface{}{"entries": float64(1)}, errBody["blocked_by"])

	status = send(t, app, "GET", "/routes/abc", "", &errBody)
	assert.Equal(t, 400, status)
	assert.Equal(t, "id is invalid", errBody["error"])

	var types []map[string]interface{}
	status = send(t, app, "GET", "/expense-types", "", &types)
	require.Equal(t, 200, status)
	assert.Len(t, types, 4)
}
