package handler

import (
	"credentialing-crm/internal/adapter/http/dto"
	"credentialing-crm/internal/adapter/http/middleware"
	"credentialing-crm/internal/core/ports"
	"credentialing-crm/pkg/apperror"
	"credentialing-crm/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProviderHandler handles provider banking endpoints.
type ProviderHandler struct {
	bankingSvc ports.BankingService
}

// NewProviderHandler creates a new ProviderHandler.
func NewProviderHandler(bankingSvc ports.BankingService) *ProviderHandler {
	return &ProviderHandler{bankingSvc: bankingSvc}
}

// GetBankingDetails handles GET /api/v1/providers/:id/banking.
// Decrypted values are returned only to admins asking for them with
// ?include_decrypted=true; the request is always flagged in the audit
// entry either way.
func (h *ProviderHandler) GetBankingDetails(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a valid UUID"))
		return
	}

	includeDecrypted := c.Query("include_decrypted") == "true"
	middleware.SetAuditMetadata(c, "include_decrypted", includeDecrypted)

	if includeDecrypted && c.GetString(middleware.CtxRole) != middleware.RoleAdmin {
		response.Error(c, apperror.ErrForbidden())
		return
	}

	result, err := h.bankingSvc.GetBankingDetails(c.Request.Context(), providerID, includeDecrypted)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BankingDetailsResponse{
		ProviderID:          result.ProviderID.String(),
		AccountName:         result.AccountName,
		AccountNumberMasked: result.AccountNumberMasked,
		AccountNumber:       result.AccountNumber,
		RoutingNumber:       result.RoutingNumber,
		UpdatedAt:           result.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}

// UpdateBankingDetails handles PUT /api/v1/providers/:id/banking.
func (h *ProviderHandler) UpdateBankingDetails(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a valid UUID"))
		return
	}

	var req dto.BankingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	err = h.bankingSvc.UpdateBankingDetails(c.Request.Context(), providerID, ports.BankingUpdateRequest{
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		RoutingNumber: req.RoutingNumber,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "banking details updated"})
}
