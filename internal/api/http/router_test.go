package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/travel-desk/itinerary-service/internal/api/http/handlers"
	"github.com/travel-desk/itinerary-service/internal/auth"
	"github.com/travel-desk/itinerary-service/internal/events"
	"github.com/travel-desk/itinerary-service/internal/observability"
	"github.com/travel-desk/itinerary-service/internal/repository/memory"
	"github.com/travel-desk/itinerary-service/internal/service"
)

type testServer struct {
	app     *fiber.App
	store   *memory.Store
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	tokens := auth.NewTokenManager("test-secret", "test", 5*time.Minute, time.Hour)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(service.AuthDependencies{
		IdentityRepo: store.Identities(),
		EmployeeRepo: store.Employees(),
		Tokens:       tokens,
		Blacklist:    auth.NewMemoryBlacklist(),
		Dispatcher:   dispatcher,
		BcryptCost:   bcrypt.MinCost,
	})
	itineraryService := service.NewItineraryService(service.ItineraryDependencies{
		ItineraryRepo: store.Itineraries(),
		EmployeeRepo:  store.Employees(),
		TxRunner:      store.TxRunner(),
		Dispatcher:    dispatcher,
	})

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("itinerary-service", "test", nil, nil, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Itineraries:    handlers.NewItineraryHandler(itineraryService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Identities()),
	})
	return &testServer{app: app, store: store, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	decoded := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func (s *testServer) register(t *testing.T, username string) (access, refresh string) {
	t.Helper()
	status, body := s.do(t, fiber.MethodPost, "/auth/register/", "", map[string]any{
		"username":         username,
		"email":            username + "@example.com",
		"first_name":       "Test",
		"last_name":        "User",
		"password":         "password123",
		"password_confirm": "password123",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	return body["access_token"].(string), body["refresh_token"].(string)
}

func errorCode(body map[string]any) string {
	envelope, _ := body["error"].(map[string]any)
	code, _ := envelope["code"].(string)
	return code
}

var puneDelhi = map[string]any{
	"from_city":  "Pune",
	"to_city":    "Delhi",
	"start_date": "2025-01-01",
	"end_date":   "2025-01-05",
	"purpose":    "Client visit",
	"status":     "Approved",
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	access, refresh := s.register(t, "priya")

	status, body := s.do(t, fiber.MethodGet, "/auth/profile/", access, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "priya", body["username"])
	assert.Equal(t, true, body["is_active"])

	status, body = s.do(t, fiber.MethodPost, "/auth/login/", "", map[string]any{"username": "priya", "password": "password123"})
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["access_token"])
	assert.Equal(t, "priya", body["user"].(map[string]any)["username"])

	status, body = s.do(t, fiber.MethodPost, "/auth/login/", "", map[string]any{"username": "priya", "password": "nope-nope"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(body))

	status, body = s.do(t, fiber.MethodPost, "/auth/token/refresh/", "", map[string]any{"refresh": refresh})
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["access"])

	status, _ = s.do(t, fiber.MethodPost, "/auth/logout/", "", map[string]any{"refresh_token": refresh})
	assert.Equal(t, fiber.StatusOK, status)

	status, body = s.do(t, fiber.MethodPost, "/auth/logout/", "", map[string]any{"refresh_token": refresh})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_TOKEN", errorCode(body))

	status, body = s.do(t, fiber.MethodPost, "/auth/logout/", "", "{not json")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_TOKEN", errorCode(body))

	status, body = s.do(t, fiber.MethodGet, "/auth/employee-profile/", access, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestRegister_ValidationEnvelope(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, fiber.MethodPost, "/auth/register/", "", map[string]any{
		"username":         "priya",
		"password":         "password123",
		"password_confirm": "password456",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Contains(t, details, "password")
}

func TestInactiveAccountIsRejected(t *testing.T) {
	s := newTestServer(t)
	access, _ := s.register(t, "ravi")
	s.store.SetActive(1, false)

	status, body := s.do(t, fiber.MethodPost, "/auth/login/", "", map[string]any{"username": "ravi", "password": "password123"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "ACCOUNT_DISABLED", errorCode(body))
	assert.NotContains(t, body, "access_token")

	status, body = s.do(t, fiber.MethodGet, "/itineraries/", access, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func TestItineraryLifecycle(t *testing.T) {
	s := newTestServer(t)
	owner, _ := s.register(t, "owner")
	other, _ := s.register(t, "other")

	status, body := s.do(t, fiber.MethodGet, "/itineraries/", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, created := s.do(t, fiber.MethodPost, "/itineraries/", owner, puneDelhi)
	require.Equal(t, fiber.StatusCreated, status, created)
	assert.Equal(t, "Pending", created["status"])
	assert.Equal(t, "Domestic", created["type"])
	assert.Equal(t, "Flight", created["mode"])
	assert.Equal(t, "2025-01-01", created["start_date"])
	assert.Nil(t, created["employee"])
	assert.Equal(t, "owner", created["user"].(map[string]any)["username"])
	path := "/itineraries/" + jsonID(created) + "/"

	status, foreign := s.do(t, fiber.MethodGet, path, other, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, missing := s.do(t, fiber.MethodGet, "/itineraries/9999/", other, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, missing, foreign)

	status, body = s.do(t, fiber.MethodPut, path, other, map[string]any{"purpose": ""})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, missing, body)

	status, body = s.do(t, fiber.MethodGet, "/itineraries/abc/", owner, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = s.do(t, fiber.MethodPut, path, owner, map[string]any{"purpose": "Board meeting", "status": "Approved"})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "Board meeting", body["purpose"])
	assert.Equal(t, "Pune", body["from_city"])
	assert.Equal(t, "Pending", body["status"])

	status, body = s.do(t, fiber.MethodPatch, strings.TrimSuffix(path, "/"), owner, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "Withdrawn", body["status"])

	status, body = s.do(t, fiber.MethodPatch, path, owner, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(body))

	status, _ = s.do(t, fiber.MethodDelete, path, other, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = s.do(t, fiber.MethodDelete, path, owner, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = s.do(t, fiber.MethodGet, path, owner, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestItineraryList_Pagination(t *testing.T) {
	s := newTestServer(t)
	owner, _ := s.register(t, "owner")
	for i := 0; i < 12; i++ {
		status, _ := s.do(t, fiber.MethodPost, "/itineraries/", owner, puneDelhi)
		require.Equal(t, fiber.StatusCreated, status)
	}

	status, body := s.do(t, fiber.MethodGet, "/itineraries/", owner, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(12), body["count"])
	assert.Equal(t, float64(10), body["page_size"])
	assert.Len(t, body["results"], 10)
	assert.Contains(t, body["next"], "page=2")
	assert.Nil(t, body["previous"])

	status, body = s.do(t, fiber.MethodGet, "/itineraries/?page_size=1000", owner, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(100), body["page_size"])
	assert.Len(t, body["results"], 12)

	status, body = s.do(t, fiber.MethodGet, "/itineraries/?page_size=abc", owner, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(10), body["page_size"])

	for _, query := range []string{"page=abc", "page=0", "page=3"} {
		status, body = s.do(t, fiber.MethodGet, "/itineraries/?"+query, owner, nil)
		assert.Equal(t, fiber.StatusNotFound, status, query)
		assert.Equal(t, "Invalid page.", body["error"].(map[string]any)["message"], query)
	}
}

func TestItineraryCreate_Validation(t *testing.T) {
	s := newTestServer(t)
	owner, _ := s.register(t, "owner")

	status, body := s.do(t, fiber.MethodPost, "/itineraries/", owner, map[string]any{"from_city": "Pune", "type": "Orbital"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	for _, field := range []string{"to_city", "start_date", "end_date", "purpose", "type"} {
		assert.Contains(t, details, field)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.do(t, fiber.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "disabled", body["dependencies"].(map[string]any)["postgres"])

	status, body = s.do(t, fiber.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = s.do(t, fiber.MethodGet, "/metrics", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["requests"])
	assert.NotEmpty(t, body["errors"])
}

func jsonID(body map[string]any) string {
	raw, _ := json.Marshal(body["id"])
	return string(raw)
}

func TestMetricsKeyedByRouteTemplate(t *testing.T) {
	s := newTestServer(t)
	owner, _ := s.register(t, "owner")

	for i := 0; i < 50; i++ {
		id := strconv.Itoa(i + 1000)
		s.do(t, fiber.MethodGet, "/itineraries/"+id+"/", "", nil)
		s.do(t, fiber.MethodGet, "/itineraries/"+id+"/", owner, nil)
		s.do(t, fiber.MethodGet, "/nowhere/"+id, "", nil)
	}

	snap := s.metrics.Snapshot()
	assert.LessOrEqual(t, len(snap.Errors), 4, snap.Errors)
	assert.LessOrEqual(t, len(snap.Requests), 5, snap.Requests)
	for key := range snap.Errors {
		assert.NotContains(t, key, "1000")
	}
	var notFound int64
	for key, count := range snap.Errors {
		if strings.HasPrefix(key, "/itineraries/:id") && strings.HasSuffix(key, "|GET|NOT_FOUND") {
			notFound += count
		}
	}
	assert.Equal(t, int64(50), notFound)
}
