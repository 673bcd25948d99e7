package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/shopfloor/api/internal/config"
	"github.com/shopfloor/api/internal/handler"
	"github.com/shopfloor/api/internal/ledger"
	"github.com/shopfloor/api/internal/middleware"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopfloor/api/internal/seed"
	"github.com/shopfloor/api/internal/service"
)

const testJWTSecret = "test-secret-for-handlers"

// testApp holds all components needed for testing
type testApp struct {
	app   *fiber.App
	store *ledger.Store
	auth  *middleware.AuthMiddleware
}

// setupApp creates a Fiber app wired like main.go over the seeded ledger,
// without Redis. A QUALITY user QC-01 is added to the seed.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	store := ledger.NewStore()
	data := seed.Default()
	data.Users = append(data.Users, model.User{ID: "QC-01", Name: "Meera Iyer", Role: model.RoleQuality})
	if err := seed.Load(store, data); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}

	validate := validator.New()

	jobService := service.NewJobService(store)
	userService := service.NewUserService(store)
	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret, 0)

	h := &handler.Handlers{
		Jobs:      handler.NewJobHandler(jobService, validate),
		Machines:  handler.NewMachineHandler(service.NewMachineService(store), validate),
		Materials: handler.NewMaterialHandler(service.NewStockService(store), validate),
		Users:     handler.NewUserHandler(userService, validate),
		Reports:   handler.NewReportHandler(service.NewReportService(store)),
		Auth:      handler.NewAuthHandler(userService, authMiddleware, validate),
	}

	app := fiber.New()
	// Limits are irrelevant without Redis
	h.Register(app, authMiddleware.Authenticate(), middleware.NewRateLimiter(nil), config.RateLimitConfig{})

	return &testApp{app: app, store: store, auth: authMiddleware}
}

// tokenFor signs a token for a seeded user.
func (ta *testApp) tokenFor(t *testing.T, userID string) string {
	t.Helper()
	u, ok := ta.store.GetUser(userID)
	if !ok {
		t.Fatalf("unknown test user %s", userID)
	}
	token, err := ta.auth.GenerateToken(u)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return token
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs a request as the given user.
func (ta *testApp) doAuthRequest(t *testing.T, userID, method, path, body string) *http.Response {
	t.Helper()
	resp, err := doRequest(ta.app, method, path, body, map[string]string{
		"Authorization": "Bearer " + ta.tokenFor(t, userID),
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// parseJSONArray parses response body into a slice of maps.
func parseJSONArray(t *testing.T, resp *http.Response) []map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result []map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON array: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// errorCode extracts error.code from an error envelope.
func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got %v", result)
	}
	code, _ := errObj["code"].(string)
	return code
}
