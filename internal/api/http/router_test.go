package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/user-orders-service/internal/api/http/handlers"
	"github.com/spec-kit/user-orders-service/internal/config"
	"github.com/spec-kit/user-orders-service/internal/events"
	"github.com/spec-kit/user-orders-service/internal/observability"
	"github.com/spec-kit/user-orders-service/internal/repository"
	"github.com/spec-kit/user-orders-service/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestAppWithLogger(t, zap.NewNop())
}

func newTestAppWithLogger(t *testing.T, logger *zap.Logger) *fiber.App {
	t.Helper()

	store := repository.NewMemoryUserStore()
	svc := service.NewUserService(
		config.Config{Hash: config.HashConfig{BcryptCost: 4}},
		service.UserDependencies{Store: store, Dispatcher: events.NewInMemoryDispatcher()},
	)
	metrics := observability.NewMetrics("test")

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:  handlers.NewHealthHandler("test", "dev", nil, nil),
		Users:   handlers.NewUsersHandler(svc),
		Orders:  handlers.NewOrdersHandler(svc),
		Metrics: metrics,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func createUserBody(userID int64, username string) map[string]any {
	return map[string]any{
		"userId":   userID,
		"username": username,
		"fullName": map[string]any{"firstName": "Ada", "lastName": "Lovelace"},
		"age":      30,
		"email":    username + "@example.com",
		"password": "s3cret-pass",
		"address":  map[string]any{"street": "1 Main St", "city": "London", "country": "UK"},
	}
}

func errorBody(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	body, ok := envelope["error"].(map[string]any)
	require.True(t, ok)
	return body
}

func TestCreateUserStripsSensitiveFields(t *testing.T) {
	app := newTestApp(t)

	status, envelope := doJSON(t, app, http.MethodPost, "/", createUserBody(1, "ada"))
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, envelope["success"])
	require.Equal(t, "Successfully created user", envelope["message"])

	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 1, data["userId"])
	require.NotContains(t, data, "password")
	require.NotContains(t, data, "orders")
}

func TestCreateUserDuplicateUserID(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, http.MethodPost, "/", createUserBody(1, "ada"))

	status, envelope := doJSON(t, app, http.MethodPost, "/", createUserBody(1, "grace"))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, false, envelope["success"])
	require.Equal(t, "DUPLICATE_IDENTIFIER", errorBody(t, envelope)["code"])
}

func TestCreateUserValidationFailureListsEveryField(t *testing.T) {
	app := newTestApp(t)

	status, envelope := doJSON(t, app, http.MethodPost, "/", map[string]any{})
	require.Equal(t, http.StatusBadRequest, status)

	body := errorBody(t, envelope)
	require.Equal(t, "VALIDATION_FAILED", body["code"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, details, "userId")
	require.Contains(t, details, "username")
	require.Contains(t, details, "password")
	require.Contains(t, details, "email")
}

func TestListUsersProjection(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, http.MethodPost, "/", createUserBody(1, "ada"))
	doJSON(t, app, http.MethodPost, "/", createUserBody(2, "grace"))

	status, envelope := doJSON(t, app, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, status)

	data, ok := envelope["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 2)
	for _, item := range data {
		record, ok := item.(map[string]any)
		require.True(t, ok)
		require.NotContains(t, record, "password")
		require.NotContains(t, record, "orders")
		require.NotContains(t, record, "userId")
		require.Contains(t, record, "username")
	}
}

func TestGetUser(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, http.MethodPost, "/", createUserBody(1, "ada"))

	status, envelope := doJSON(t, app, http.MethodGet, "/1", nil)
	require.Equal(t, http.StatusOK, status)
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 1, data["userId"])
	require.NotContains(t, data, "password")

	status, envelope = doJSON(t, app, http.MethodGet, "/999", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", errorBody(t, envelope)["code"])
}

func TestNonNumericUserIDIsRejected(t *testing.T) {
	app := newTestApp(t)

	status, envelope := doJSON(t, app, http.MethodGet, "/abc", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_FAILED", errorBody(t, envelope)["code"])
}

func TestUpdateUserPartialMerge(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, http.MethodPost, "/", createUserBody(1, "ada"))

	status, envelope := doJSON(t, app, http.MethodPut, "/1", map[string]any{"age": 31})
	require.Equal(t, http.StatusOK, status)
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 31, data["age"])
	require.Equal(t, "ada", data["username"])
}

func TestUpdateUserIDToOwnedIdentifier(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, http.MethodPost, "/", createUserBody(1, "ada"))
	doJSON(t, app, http.MethodPost, "/", createUserBody(2, "grace"))

	status, envelope := doJSON(t, app, http.MethodPut, "/1", map[string]any{"userId": 2})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "DUPLICATE_IDENTIFIER", errorBody(t, envelope)["code"])
}

func TestDeleteUser(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, http.MethodPost, "/", createUserBody(1, "ada"))

	status, envelope := doJSON(t, app, http.MethodDelete, "/1", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "User deleted successfully!", envelope["message"])
	require.Nil(t, envelope["data"])

	status, _ = doJSON(t, app, http.MethodDelete, "/999", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestOrderFlow(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, http.MethodPost, "/", createUserBody(1, "ada"))
	order := map[string]any{"productName": "widget", "quantity": 2, "price": 3}

	status, envelope := doJSON(t, app, http.MethodPut, "/1/orders", order)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Order created successfully!", envelope["message"])

	// a structurally identical append modifies nothing and maps to 500
	status, envelope = doJSON(t, app, http.MethodPut, "/1/orders", order)
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "PERSISTENCE_FAILED", errorBody(t, envelope)["code"])

	status, envelope = doJSON(t, app, http.MethodPut, "/1/orders", map[string]any{"productName": "gadget", "quantity": 1, "price": 5})
	require.Equal(t, http.StatusOK, status)

	status, envelope = doJSON(t, app, http.MethodGet, "/1/orders", nil)
	require.Equal(t, http.StatusOK, status)
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	orders, ok := data["orders"].([]any)
	require.True(t, ok)
	require.Len(t, orders, 2)

	status, envelope = doJSON(t, app, http.MethodGet, "/1/orders/total-price", nil)
	require.Equal(t, http.StatusOK, status)
	data, ok = envelope["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "11", data["totalPrice"])
}

func TestOrderTotalWithoutOrdersIsNull(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, http.MethodPost, "/", createUserBody(1, "ada"))

	status, envelope := doJSON(t, app, http.MethodGet, "/1/orders/total-price", nil)
	require.Equal(t, http.StatusOK, status)
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	require.Nil(t, data["totalPrice"])
}

func TestOrderAppendToMissingUserIsNotFound(t *testing.T) {
	app := newTestApp(t)

	status, envelope := doJSON(t, app, http.MethodPut, "/999/orders", map[string]any{"productName": "widget", "quantity": 1, "price": 2})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", errorBody(t, envelope)["code"])
}

func TestFailedRequestLoggedWithFinalStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := newTestAppWithLogger(t, zap.New(core))

	status, _ := doJSON(t, app, http.MethodGet, "/999", nil)
	require.Equal(t, http.StatusNotFound, status)

	entries := logs.FilterMessage("request completed").All()
	require.NotEmpty(t, entries)
	require.EqualValues(t, http.StatusNotFound, entries[len(entries)-1].ContextMap()["status"])
}

func TestSuccessfulRequestLoggedWithFinalStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := newTestAppWithLogger(t, zap.New(core))

	status, _ := doJSON(t, app, http.MethodPost, "/", createUserBody(1, "ada"))
	require.Equal(t, http.StatusOK, status)

	entries := logs.FilterMessage("request completed").All()
	require.NotEmpty(t, entries)
	require.EqualValues(t, http.StatusOK, entries[len(entries)-1].ContextMap()["status"])
}

func TestOrderValidationFailure(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, http.MethodPost, "/", createUserBody(1, "ada"))

	status, envelope := doJSON(t, app, http.MethodPut, "/1/orders", map[string]any{"productName": "widget", "quantity": -1, "price": 2})
	require.Equal(t, http.StatusBadRequest, status)
	body := errorBody(t, envelope)
	require.Equal(t, "VALIDATION_FAILED", body["code"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, details, "quantity")
}
