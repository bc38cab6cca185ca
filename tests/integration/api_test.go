package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "credentialing-crm/internal/adapter/http/handler"
	"credentialing-crm/internal/adapter/http/middleware"
	"credentialing-crm/internal/adapter/storage/memory"
	redisStorage "credentialing-crm/internal/adapter/storage/redis"
	"credentialing-crm/internal/core/domain"
	"credentialing-crm/internal/service"
	"credentialing-crm/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds a full application stack on in-memory storage: miniredis
// for rate limiting, map-backed repos for postgres, and a ring-buffer audit
// store. This exercises the real HTTP layer, middleware, handlers, and
// services end-to-end.

type testApp struct {
	server       *httptest.Server
	redis        *miniredis.Miniredis
	providerRepo *inMemoryProviderRepo
	tokenSvc     *service.JWTTokenService
}

func newTestApp(t *testing.T, opts ...func(*httpHandler.RouterDeps)) *testApp {
	t.Helper()

	// Start miniredis
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	// Core services with real implementations
	encSvc, err := service.NewAESEncryptionService("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")

	// In-memory repos
	enrollmentRepo := newInMemoryEnrollmentRepo()
	providerRepo := newInMemoryProviderRepo()

	// Business services
	log := logger.New("debug", false)
	auditSvc := service.NewAuditService(memory.NewAuditStore(1000), nil, log)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, providerRepo, nil, log)
	bankingSvc := service.NewBankingService(providerRepo, encSvc, log)

	deps := httpHandler.RouterDeps{
		EnrollmentSvc:  enrollmentSvc,
		BankingSvc:     bankingSvc,
		AuditRecorder:  auditSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: redisStorage.NewRateLimitStore(rdb),
		Logger:         log,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	router := httpHandler.SetupRouter(deps)

	server := httptest.NewServer(router)

	return &testApp{
		server:       server,
		redis:        mr,
		providerRepo: providerRepo,
		tokenSvc:     tokenSvc,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

func (a *testApp) seedProvider(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	a.providerRepo.addProvider(&domain.Provider{
		ID:        id,
		Name:      "Dr. Sarah Chen",
		NPI:       "1234567893",
		Status:    domain.ProviderStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return id
}

func (a *testApp) token(t *testing.T, role string) string {
	t.Helper()
	token, _, err := a.tokenSvc.Generate(uuid.New(), role+"@clinic.example", role)
	require.NoError(t, err)
	return token
}

// do sends an authenticated JSON request and returns the decoded envelope.
func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func (a *testApp) createEnrollment(t *testing.T, token string, providerID uuid.UUID) string {
	t.Helper()
	code, resp := a.do(t, http.MethodPost, "/api/v1/enrollments", token, map[string]string{
		"provider_id": providerID.String(),
		"payer_name":  "Aetna",
	})
	require.Equal(t, http.StatusCreated, code)
	return resp["data"].(map[string]interface{})["id"].(string)
}

// advance walks an enrollment through a sequence of legal transitions.
func (a *testApp) advance(t *testing.T, token, enrollmentID string, statuses ...map[string]string) {
	t.Helper()
	for _, change := range statuses {
		code, resp := a.do(t, http.MethodPatch, "/api/v1/enrollments/"+enrollmentID+"/status", token, change)
		require.Equal(t, http.StatusOK, code, "transition to %s: %v", change["status"], resp)
	}
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_RequiresAuth(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	code, resp := app.do(t, http.MethodGet, "/api/v1/enrollments/"+uuid.New().String(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_001", resp["error_code"])
}

func TestIntegration_CreateAndGetEnrollment(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, "staff")
	providerID := app.seedProvider(t)
	enrollmentID := app.createEnrollment(t, token, providerID)

	code, resp := app.do(t, http.MethodGet, "/api/v1/enrollments/"+enrollmentID, token, nil)
	require.Equal(t, http.StatusOK, code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "discovery", data["status"])
	assert.Equal(t, "Aetna", data["payer_name"])
	assert.Equal(t, float64(0), data["progress"])
}

func TestIntegration_FullLifecycleToActive(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, "staff")
	providerID := app.seedProvider(t)
	enrollmentID := app.createEnrollment(t, token, providerID)

	app.advance(t, token, enrollmentID,
		map[string]string{"status": "data_complete"},
		map[string]string{"status": "submitted"},
		map[string]string{"status": "payer_processing"},
		map[string]string{"status": "approved", "provider_id": providerID.String()},
		map[string]string{"status": "active", "provider_id": providerID.String()},
	)

	code, resp := app.do(t, http.MethodGet, "/api/v1/enrollments/"+enrollmentID, token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "active", resp["data"].(map[string]interface{})["status"])
}

func TestIntegration_DeniedToActiveRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, "staff")
	providerID := app.seedProvider(t)
	enrollmentID := app.createEnrollment(t, token, providerID)

	app.advance(t, token, enrollmentID,
		map[string]string{"status": "data_complete"},
		map[string]string{"status": "submitted"},
		map[string]string{"status": "payer_processing"},
		map[string]string{"status": "denied"},
	)

	code, resp := app.do(t, http.MethodPatch, "/api/v1/enrollments/"+enrollmentID+"/status", token, map[string]string{
		"status":      "active",
		"provider_id": providerID.String(),
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ENR_001", resp["error_code"])
	// Rejection names the only legal exit from denied.
	assert.Contains(t, resp["error"], "discovery")

	// Status is unchanged.
	code, resp = app.do(t, http.MethodGet, "/api/v1/enrollments/"+enrollmentID, token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "denied", resp["data"].(map[string]interface{})["status"])
}

func TestIntegration_StoppedRequiresReason(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, "staff")
	providerID := app.seedProvider(t)
	enrollmentID := app.createEnrollment(t, token, providerID)

	code, resp := app.do(t, http.MethodPatch, "/api/v1/enrollments/"+enrollmentID+"/status", token, map[string]string{
		"status": "stopped",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ENR_002", resp["error_code"])

	code, resp = app.do(t, http.MethodPatch, "/api/v1/enrollments/"+enrollmentID+"/status", token, map[string]string{
		"status":         "stopped",
		"stopped_reason": "provider withdrew from network",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "provider withdrew from network", resp["data"].(map[string]interface{})["stopped_reason"])
}

func TestIntegration_UnknownStatusRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, "staff")
	providerID := app.seedProvider(t)
	enrollmentID := app.createEnrollment(t, token, providerID)

	code, resp := app.do(t, http.MethodPatch, "/api/v1/enrollments/"+enrollmentID+"/status", token, map[string]string{
		"status": "pending",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ENR_003", resp["error_code"])
}

func TestIntegration_ProgressValidation(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, "staff")
	providerID := app.seedProvider(t)
	enrollmentID := app.createEnrollment(t, token, providerID)
	path := "/api/v1/enrollments/" + enrollmentID + "/progress"

	// Missing
	code, resp := app.do(t, http.MethodPatch, path, token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VAL_002", resp["error_code"])

	// Not a number
	code, resp = app.do(t, http.MethodPatch, path, token, map[string]interface{}{"progress": "sixty"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VAL_003", resp["error_code"])

	// Fractional
	code, resp = app.do(t, http.MethodPatch, path, token, map[string]interface{}{"progress": 60.5})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VAL_001", resp["error_code"])

	// Out of range
	code, resp = app.do(t, http.MethodPatch, path, token, map[string]interface{}{"progress": 101})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VAL_001", resp["error_code"])

	// Valid boundary
	code, resp = app.do(t, http.MethodPatch, path, token, map[string]interface{}{"progress": 100})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(100), resp["data"].(map[string]interface{})["progress"])
}

func TestIntegration_BankingMaskedAndDecrypted(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.token(t, "admin")
	staffToken := app.token(t, "staff")
	providerID := app.seedProvider(t)
	path := "/api/v1/providers/" + providerID.String() + "/banking"

	// Store banking details
	code, _ := app.do(t, http.MethodPut, path, adminToken, map[string]string{
		"account_name":   "Dr. Chen PLLC",
		"account_number": "123456789",
		"routing_number": "021000021",
	})
	require.Equal(t, http.StatusOK, code)

	// Default read is masked
	code, resp := app.do(t, http.MethodGet, path, staffToken, nil)
	require.Equal(t, http.StatusOK, code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "****6789", data["account_number_masked"])
	_, hasPlaintext := data["account_number"]
	assert.False(t, hasPlaintext)

	// Staff cannot request decrypted values
	code, resp = app.do(t, http.MethodGet, path+"?include_decrypted=true", staffToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "AUTH_002", resp["error_code"])

	// Admin gets the decrypted round trip
	code, resp = app.do(t, http.MethodGet, path+"?include_decrypted=true", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	data = resp["data"].(map[string]interface{})
	assert.Equal(t, "123456789", data["account_number"])
	assert.Equal(t, "021000021", data["routing_number"])
}

func TestIntegration_AuditTrail(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.token(t, "admin")
	staffToken := app.token(t, "staff")
	providerID := app.seedProvider(t)

	enrollmentID := app.createEnrollment(t, staffToken, providerID)
	app.advance(t, staffToken, enrollmentID, map[string]string{"status": "data_complete"})

	bankingPath := "/api/v1/providers/" + providerID.String() + "/banking"
	code, _ := app.do(t, http.MethodPut, bankingPath, adminToken, map[string]string{
		"account_name":   "Dr. Chen PLLC",
		"account_number": "123456789",
		"routing_number": "021000021",
	})
	require.Equal(t, http.StatusOK, code)
	code, _ = app.do(t, http.MethodGet, bankingPath, staffToken, nil)
	require.Equal(t, http.StatusOK, code)

	// Staff cannot read the audit trail.
	code, resp := app.do(t, http.MethodGet, "/api/v1/audit-logs", staffToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "AUTH_002", resp["error_code"])

	// Admin sees all four operations, newest first.
	code, resp = app.do(t, http.MethodGet, "/api/v1/audit-logs", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	data := resp["data"].(map[string]interface{})
	require.Equal(t, float64(4), data["count"])
	items := data["items"].([]interface{})
	first := items[0].(map[string]interface{})
	assert.Equal(t, "view_banking_data", first["action"])
	last := items[3].(map[string]interface{})
	assert.Equal(t, "create_enrollment", last["action"])

	// Exact-match filtering by action.
	code, resp = app.do(t, http.MethodGet, "/api/v1/audit-logs?action=update_status", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	data = resp["data"].(map[string]interface{})
	require.Equal(t, float64(1), data["count"])
	entry := data["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, enrollmentID, entry["resource_id"])
	assert.Equal(t, true, entry["success"])
	actor := entry["actor"].(map[string]interface{})
	assert.Equal(t, "staff", actor["role"])
}

func TestIntegration_FailedOperationIsAudited(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.token(t, "admin")
	staffToken := app.token(t, "staff")
	providerID := app.seedProvider(t)
	enrollmentID := app.createEnrollment(t, staffToken, providerID)

	// Illegal jump straight to approved.
	code, _ := app.do(t, http.MethodPatch, "/api/v1/enrollments/"+enrollmentID+"/status", staffToken, map[string]string{
		"status":      "approved",
		"provider_id": providerID.String(),
	})
	require.Equal(t, http.StatusBadRequest, code)

	code, resp := app.do(t, http.MethodGet, "/api/v1/audit-logs?action=update_status&success=false", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	data := resp["data"].(map[string]interface{})
	require.Equal(t, float64(1), data["count"])
	entry := data["items"].([]interface{})[0].(map[string]interface{})
	assert.Contains(t, entry["error"], "ENR_001")
}

func TestIntegration_RateLimitHeaders(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.token(t, "staff")
	providerID := app.seedProvider(t)
	enrollmentID := app.createEnrollment(t, token, providerID)

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/v1/enrollments/%s", app.server.URL, enrollmentID), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "300", resp.Header.Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Remaining"))
}

func TestIntegration_ConfiguredRateLimitEnforced(t *testing.T) {
	// A deployer-tuned limit must reach the router, not the built-in rules.
	app := newTestApp(t, func(deps *httpHandler.RouterDeps) {
		deps.RateLimitRules = middleware.NewRateLimitRules(2, time.Minute, 0, 0)
	})
	defer app.close()

	token := app.token(t, "staff")
	providerID := app.seedProvider(t)
	enrollmentID := app.createEnrollment(t, token, providerID)

	path := "/api/v1/enrollments/" + enrollmentID

	// The create above consumed one request from the window of 2.
	req, err := http.NewRequest(http.MethodGet, app.server.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))

	code, body := app.do(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "RATE_001", body["error_code"])
	assert.Equal(t, float64(60), body["retry_after"])
}
