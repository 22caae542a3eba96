package handler

import (
	"context"

	"merchant-wallet-service/internal/adapter/http/dto"
	"merchant-wallet-service/internal/core/domain"
	"merchant-wallet-service/internal/core/ports"
	"merchant-wallet-service/pkg/apperror"
	"merchant-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentMethodHandler handles payout channel endpoints. Routes are nested
// under the owning wallet so ownership is checked once, against the wallet.
type PaymentMethodHandler struct {
	pmSvc     ports.PaymentMethodService
	walletSvc ports.WalletService
}

// NewPaymentMethodHandler creates a new PaymentMethodHandler.
func NewPaymentMethodHandler(pmSvc ports.PaymentMethodService, walletSvc ports.WalletService) *PaymentMethodHandler {
	return &PaymentMethodHandler{pmSvc: pmSvc, walletSvc: walletSvc}
}

// resolveWallet enforces the same ownership rule as the wallet endpoints.
func (h *PaymentMethodHandler) resolveWallet(c *gin.Context, walletID uuid.UUID) bool {
	merchantID, role, ok := principal(c)
	if !ok {
		return false
	}
	wallet, err := h.walletSvc.GetWallet(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return false
	}
	if role != domain.RoleAdmin && wallet.MerchantID != merchantID {
		response.Error(c, apperror.ErrNotFound("Wallet"))
		return false
	}
	return true
}

// methodIDParam parses the :pmID path parameter and confirms the method
// belongs to the wallet in the path.
func (h *PaymentMethodHandler) methodIDParam(c *gin.Context, walletID uuid.UUID) (uuid.UUID, bool) {
	pmID, err := uuid.Parse(c.Param("pmID"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid payment method id"))
		return uuid.Nil, false
	}

	methods, err := h.pmSvc.GetWalletPaymentMethods(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return uuid.Nil, false
	}
	for _, m := range methods {
		if m.ID == pmID {
			return pmID, true
		}
	}
	response.Error(c, apperror.ErrNotFound("Payment method"))
	return uuid.Nil, false
}

// Add handles POST /api/v1/wallets/:id/payment-methods.
func (h *PaymentMethodHandler) Add(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}
	if !h.resolveWallet(c, walletID) {
		return
	}

	var req dto.AddPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	pmType, err := req.ValidatePaymentMethod()
	if err != nil {
		response.Error(c, err)
		return
	}

	method, err := h.pmSvc.AddPaymentMethod(c.Request.Context(), ports.AddPaymentMethodRequest{
		WalletID:    walletID,
		Type:        pmType,
		Details:     req.Details,
		DisplayName: req.DisplayName,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToPaymentMethodResponse(method))
}

// List handles GET /api/v1/wallets/:id/payment-methods.
func (h *PaymentMethodHandler) List(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}
	if !h.resolveWallet(c, walletID) {
		return
	}

	methods, err := h.pmSvc.GetWalletPaymentMethods(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToPaymentMethodListResponse(methods))
}

// GetDefault handles GET /api/v1/wallets/:id/payment-methods/default.
func (h *PaymentMethodHandler) GetDefault(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}
	if !h.resolveWallet(c, walletID) {
		return
	}

	method, err := h.pmSvc.GetDefaultPaymentMethod(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if method == nil {
		response.Error(c, apperror.ErrNotFound("Default payment method"))
		return
	}

	response.OK(c, dto.ToPaymentMethodResponse(method))
}

// SetDefault handles POST /api/v1/wallets/:id/payment-methods/:pmID/default.
func (h *PaymentMethodHandler) SetDefault(c *gin.Context) {
	h.methodOp(c, h.pmSvc.SetDefaultPaymentMethod)
}

// Deactivate handles POST /api/v1/wallets/:id/payment-methods/:pmID/deactivate.
func (h *PaymentMethodHandler) Deactivate(c *gin.Context) {
	h.methodOp(c, h.pmSvc.DeactivatePaymentMethod)
}

// Verify handles POST /api/v1/wallets/:id/payment-methods/:pmID/verify.
// Admin only.
func (h *PaymentMethodHandler) Verify(c *gin.Context) {
	h.methodOp(c, h.pmSvc.VerifyPaymentMethod)
}

func (h *PaymentMethodHandler) methodOp(
	c *gin.Context,
	op func(ctx context.Context, paymentMethodID uuid.UUID) (*domain.PaymentMethod, error),
) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}
	if !h.resolveWallet(c, walletID) {
		return
	}
	pmID, ok := h.methodIDParam(c, walletID)
	if !ok {
		return
	}

	method, err := op(c.Request.Context(), pmID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToPaymentMethodResponse(method))
}
