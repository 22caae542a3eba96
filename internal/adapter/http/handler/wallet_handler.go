package handler

import (
	"context"

	"merchant-wallet-service/internal/adapter/http/dto"
	"merchant-wallet-service/internal/adapter/http/middleware"
	"merchant-wallet-service/internal/core/domain"
	"merchant-wallet-service/internal/core/ports"
	"merchant-wallet-service/pkg/apperror"
	"merchant-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet and ledger endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// principal extracts the authenticated merchant id and role set by JWTAuth.
func principal(c *gin.Context) (uuid.UUID, domain.MerchantRole, bool) {
	midVal, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, "", false
	}
	roleVal, _ := c.Get(middleware.CtxRole)
	role, _ := roleVal.(domain.MerchantRole)
	return midVal.(uuid.UUID), role, true
}

// walletIDParam parses the :id path parameter.
func walletIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return uuid.Nil, false
	}
	return id, true
}

// resolveWallet fetches the wallet and enforces ownership: merchants see
// only their own wallet, admins see any.
func (h *WalletHandler) resolveWallet(c *gin.Context, walletID uuid.UUID) (*domain.Wallet, bool) {
	merchantID, role, ok := principal(c)
	if !ok {
		return nil, false
	}

	wallet, err := h.walletSvc.GetWallet(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if role != domain.RoleAdmin && wallet.MerchantID != merchantID {
		// Hide other merchants' wallets rather than confirming they exist.
		response.Error(c, apperror.ErrNotFound("Wallet"))
		return nil, false
	}
	return wallet, true
}

// GetMyWallet handles GET /api/v1/wallets/me. The wallet is created on
// first access.
func (h *WalletHandler) GetMyWallet(c *gin.Context) {
	merchantID, _, ok := principal(c)
	if !ok {
		return
	}

	wallet, err := h.walletSvc.CreateWallet(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToWalletResponse(wallet))
}

// GetWallet handles GET /api/v1/wallets/:id.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}
	wallet, ok := h.resolveWallet(c, walletID)
	if !ok {
		return
	}
	response.OK(c, dto.ToWalletResponse(wallet))
}

// GetBalance handles GET /api/v1/wallets/:id/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}
	if _, ok := h.resolveWallet(c, walletID); !ok {
		return
	}

	balance, err := h.walletSvc.GetWalletBalance(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		WalletID: walletID.String(),
		Balance:  balance.StringFixed(2),
	})
}

// ListTransactions handles GET /api/v1/wallets/:id/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}
	if _, ok := h.resolveWallet(c, walletID); !ok {
		return
	}

	var query dto.TransactionHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	params := ports.TransactionListParams{WalletID: walletID, Limit: query.Limit}
	if query.Type != "" {
		t := domain.TransactionType(query.Type)
		params.Type = &t
	}
	if query.Status != "" {
		s := domain.TransactionStatus(query.Status)
		params.Status = &s
	}

	txns, err := h.walletSvc.GetTransactionHistory(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToTransactionListResponse(txns))
}

// ProcessTransaction handles POST /api/v1/wallets/:id/transactions.
// Admin only: ledger postings originate from order settlement and back
// office flows, never from merchants directly.
func (h *WalletHandler) ProcessTransaction(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}
	merchantID, _, ok := principal(c)
	if !ok {
		return
	}

	var req dto.ProcessTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, txType, err := req.ValidateTransaction()
	if err != nil {
		response.Error(c, err)
		return
	}

	txn, err := h.walletSvc.ProcessTransaction(c.Request.Context(), ports.ProcessTransactionRequest{
		WalletID:       walletID,
		Amount:         amount,
		Type:           txType,
		Description:    req.Description,
		ReferenceID:    req.ReferenceID,
		RelatedOrderID: req.RelatedOrderUUID(),
		ProcessedBy:    &merchantID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTransactionResponse(txn))
}

// Transfer handles POST /api/v1/wallets/:id/transfer. The path wallet is
// the source; the caller must own it (or be admin).
func (h *WalletHandler) Transfer(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}
	merchantID, _, ok := principal(c)
	if !ok {
		return
	}
	if _, ok := h.resolveWallet(c, walletID); !ok {
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	toWalletID, err := uuid.Parse(req.ToWalletID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid destination wallet id"))
		return
	}
	amount, err := req.ValidateAmount()
	if err != nil {
		response.Error(c, err)
		return
	}

	debit, credit, err := h.walletSvc.TransferFunds(c.Request.Context(), ports.TransferRequest{
		FromWalletID: walletID,
		ToWalletID:   toWalletID,
		Amount:       amount,
		Description:  req.Description,
		ReferenceID:  req.ReferenceID,
		ProcessedBy:  &merchantID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.TransferResponse{
		Debit:  dto.ToTransactionResponse(debit),
		Credit: dto.ToTransactionResponse(credit),
	})
}

// Suspend handles POST /api/v1/wallets/:id/suspend. Admin only.
func (h *WalletHandler) Suspend(c *gin.Context) {
	h.changeStatus(c, h.walletSvc.SuspendWallet)
}

// Reactivate handles POST /api/v1/wallets/:id/reactivate. Admin only.
func (h *WalletHandler) Reactivate(c *gin.Context) {
	h.changeStatus(c, h.walletSvc.ReactivateWallet)
}

func (h *WalletHandler) changeStatus(
	c *gin.Context,
	op func(ctx context.Context, walletID uuid.UUID, reason string, processedBy *uuid.UUID) (*domain.Wallet, error),
) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}
	merchantID, _, ok := principal(c)
	if !ok {
		return
	}

	var req dto.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	wallet, err := op(c.Request.Context(), walletID, req.Reason, &merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToWalletResponse(wallet))
}
