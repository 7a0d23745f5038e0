package expense

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

func TestExpenseHandlers(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.UseDB(t, db)
	car := testutil.Car(t, db, "CAR-1")
	petrol := testutil.ExpenseType(t, db, "Petrol")

	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})
	app.Get("/expenses", ListHandler())
	app.Post("/expenses", CreateHandler())
	app.Get("/expenses/:id", GetHandler())
	app.Put("/expenses/:id", UpdateHandler())
	app.Delete("/expenses/:id", DeleteHandler())

	var created map[string]interface{}
	body := fmt.Sprintf(`{"car_id": %d, "expense_type_id": %d, "amount": 45.5, "description": "diesel", "expense_date": "2024-05-02"}`, car.ID, petrol.ID)
	status := send(t, app, "POST", "/expenses", body, &created)
	require.Equal(t, 201, status, created)
	assert.Equal(t, "CAR-1", created["car_number"])
	assert.Equal(t, "Petrol", created["expense_type_name"])
	assert.EqualValues(t, 45.5, created["amount"])
	assert.Equal(t, "2024-05-02", created["expense_date"])

	var list []map[string]interface{}
	status = send(t, app, "GET", fmt.Sprintf("/expenses?car_id=%d&month=5&year=2024", car.ID), "", &list)
	require.Equal(t, 200, status)
	assert.Len(t, list, 1)

	var errBody map[string]interface{}
	status = send(t, app, "POST", "/expenses", fmt.Sprintf(`{"car_id": %d, "expense_type_id": %d, "expense_date": "2024-05-02"}`, car.ID, petrol.ID), &errBody)
	assert.Equal(t, 400, status)
	assert.Equal(t, "amount is required", errBody["error"])

	id := uint(created["id"].(float64))
	status = send(t, app, "DELETE", fmt.Sprintf("/expenses/%d", id), "", nil)
	assert.Equal(t, 200, status)
	status = send(t, app, "GET", fmt.Sprintf("/expenses/%d", id), "", nil)
	assert.Equal(t, 404, status)
}
