package handler

import (
	"credentialing-crm/internal/adapter/http/dto"
	"credentialing-crm/internal/core/domain"
	"credentialing-crm/internal/core/ports"
	"credentialing-crm/pkg/apperror"
	"credentialing-crm/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EnrollmentHandler handles enrollment lifecycle endpoints.
type EnrollmentHandler struct {
	enrollmentSvc ports.EnrollmentService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentSvc ports.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// Create handles POST /api/v1/enrollments.
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req dto.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if dto.IsEnrollmentStatusError(err) {
			response.Error(c, apperror.ErrInvalidStatus(req.Status))
			return
		}
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		response.Error(c, apperror.Validation("provider_id must be a valid UUID"))
		return
	}

	enrollment, err := h.enrollmentSvc.Create(c.Request.Context(), ports.CreateEnrollmentRequest{
		ProviderID: providerID,
		PayerName:  req.PayerName,
		Status:     domain.EnrollmentStatus(req.Status),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewEnrollmentResponse(enrollment))
}

// GetByID handles GET /api/v1/enrollments/:id.
func (h *EnrollmentHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a valid UUID"))
		return
	}

	enrollment, err := h.enrollmentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewEnrollmentResponse(enrollment))
}

// UpdateStatus handles PATCH /api/v1/enrollments/:id/status.
func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a valid UUID"))
		return
	}

	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	enrollment, err := h.enrollmentSvc.UpdateStatus(c.Request.Context(), id, domain.StatusChange{
		Status:        domain.EnrollmentStatus(req.Status),
		StoppedReason: req.StoppedReason,
		ProviderID:    req.ProviderID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewEnrollmentResponse(enrollment))
}

// UpdateProgress handles PATCH /api/v1/enrollments/:id/progress.
// A missing progress field, a non-numeric value, a fractional value and
// an out-of-range value each get their own rejection.
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a valid UUID"))
		return
	}

	var req dto.ProgressUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrProgressNotANumber())
		return
	}
	if req.Progress == nil {
		response.Error(c, apperror.ErrProgressRequired())
		return
	}

	value, err := req.Progress.Float64()
	if err != nil {
		response.Error(c, apperror.ErrProgressNotANumber())
		return
	}
	if err := domain.ValidateProgress(value); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	enrollment, err := h.enrollmentSvc.UpdateProgress(c.Request.Context(), id, int(value))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewEnrollmentResponse(enrollment))
}
