package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"credentialing-crm/internal/core/domain"
	"credentialing-crm/internal/core/ports/mocks"
	"credentialing-crm/pkg/apperror"
	"credentialing-crm/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuditTrail_RecordsSuccessfulStatusUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecorder := mocks.NewMockAuditRecorder(ctrl)
	userID := uuid.New()

	var captured *domain.AuditLogEntry
	mockRecorder.EXPECT().Record(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, entry *domain.AuditLogEntry) {
			captured = entry
		},
	)

	r := gin.New()
	r.Use(AuditTrail(mockRecorder))
	r.PATCH("/api/v1/enrollments/:id/status", func(c *gin.Context) {
		c.Set(CtxUserID, userID)
		c.Set(CtxEmail, "staff@clinic.example")
		c.Set(CtxRole, "staff")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/enrollments/abc-123/status", nil)
	req.Header.Set("User-Agent", "crm-ui/2.1")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, domain.AuditActionUpdateStatus, captured.Action)
	assert.Equal(t, "enrollment", captured.ResourceType)
	assert.Equal(t, "abc-123", captured.ResourceID)
	assert.Equal(t, "/api/v1/enrollments/:id/status", captured.Route)
	assert.Equal(t, http.MethodPatch, captured.Method)
	assert.Equal(t, "crm-ui/2.1", captured.UserAgent)
	assert.True(t, captured.Success)
	assert.Empty(t, captured.Error)
	require.NotNil(t, captured.Actor)
	assert.Equal(t, userID.String(), captured.Actor.UserID)
	assert.Equal(t, "staff@clinic.example", captured.Actor.Email)
}

func TestAuditTrail_RecordsFailureWithError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecorder := mocks.NewMockAuditRecorder(ctrl)

	var captured *domain.AuditLogEntry
	mockRecorder.EXPECT().Record(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, entry *domain.AuditLogEntry) {
			captured = entry
		},
	)

	r := gin.New()
	r.Use(AuditTrail(mockRecorder))
	r.PATCH("/api/v1/enrollments/:id/status", func(c *gin.Context) {
		response.Error(c, apperror.ErrInvalidTransition("invalid status transition"))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/enrollments/abc-123/status", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, captured)
	assert.False(t, captured.Success)
	assert.Contains(t, captured.Error, "invalid status transition")
	assert.Nil(t, captured.Actor)
}

func TestAuditTrail_RecordsAnonymousActor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecorder := mocks.NewMockAuditRecorder(ctrl)

	var captured *domain.AuditLogEntry
	mockRecorder.EXPECT().Record(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, entry *domain.AuditLogEntry) {
			captured = entry
		},
	)

	r := gin.New()
	r.Use(AuditTrail(mockRecorder))
	r.POST("/api/v1/enrollments", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments", nil)
	r.ServeHTTP(w, req)

	require.NotNil(t, captured)
	assert.Nil(t, captured.Actor)
	assert.True(t, captured.Success)
}

func TestAuditTrail_SkipsUnmappedRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecorder := mocks.NewMockAuditRecorder(ctrl)
	// No expectations: reads of enrollments are not audited.

	r := gin.New()
	r.Use(AuditTrail(mockRecorder))
	r.GET("/api/v1/enrollments/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/enrollments/abc-123", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuditTrail_IncludesHandlerMetadata(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecorder := mocks.NewMockAuditRecorder(ctrl)

	var captured *domain.AuditLogEntry
	mockRecorder.EXPECT().Record(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, entry *domain.AuditLogEntry) {
			captured = entry
		},
	)

	r := gin.New()
	r.Use(AuditTrail(mockRecorder))
	r.GET("/api/v1/providers/:id/banking", func(c *gin.Context) {
		SetAuditMetadata(c, "include_decrypted", true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers/p-1/banking", nil)
	r.ServeHTTP(w, req)

	require.NotNil(t, captured)
	assert.Equal(t, domain.AuditActionViewBankingData, captured.Action)
	require.NotNil(t, captured.Metadata)
	assert.Equal(t, true, captured.Metadata["include_decrypted"])
}

func TestSetAuditMetadata_Accumulates(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SetAuditMetadata(c, "a", 1)
	SetAuditMetadata(c, "b", "two")

	v, exists := c.Get(CtxAuditMetadata)
	require.True(t, exists)
	m := v.(map[string]interface{})
	assert.Equal(t, 1, m["a"])
	assert.Equal(t, "two", m["b"])
}
