package dto

import (
	"time"

	"merchant-wallet-service/internal/core/domain"

	"github.com/google/uuid"
)

// RegisterRequest is the request body for merchant registration.
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email,max=254"`
	Password     string `json:"password" binding:"required,min=8,max=128"`
	BusinessName string `json:"business_name" binding:"required,min=1,max=100"`
}

// LoginRequest is the request body for merchant login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// MerchantResponse is the public view of a merchant account.
type MerchantResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	BusinessName string `json:"business_name"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token    string           `json:"token"`
	Expiry   int64            `json:"expiry"` // Unix timestamp
	Merchant MerchantResponse `json:"merchant"`
}

// ProcessTransactionRequest is the request body for posting a ledger entry.
// Amount is a decimal string; its sign must match the transaction type.
type ProcessTransactionRequest struct {
	Amount         string  `json:"amount" binding:"required"`
	Type           string  `json:"transaction_type" binding:"required"`
	Description    string  `json:"description" binding:"max=500"`
	ReferenceID    *string `json:"reference_id,omitempty" binding:"omitempty,max=100"`
	RelatedOrderID *string `json:"related_order_id,omitempty" binding:"omitempty,uuid"`
}

// TransferRequest is the request body for a wallet-to-wallet transfer.
type TransferRequest struct {
	ToWalletID  string  `json:"to_wallet_id" binding:"required,uuid"`
	Amount      string  `json:"amount" binding:"required"`
	Description string  `json:"description" binding:"max=500"`
	ReferenceID *string `json:"reference_id,omitempty" binding:"omitempty,max=100"`
}

// StatusChangeRequest is the request body for suspend/reactivate.
type StatusChangeRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// TransactionHistoryQuery holds the query parameters for history listing.
type TransactionHistoryQuery struct {
	Type   string `form:"transaction_type"`
	Status string `form:"transaction_status"`
	Limit  int    `form:"limit,default=0"`
}

// AddPaymentMethodRequest is the request body for registering a payout channel.
type AddPaymentMethodRequest struct {
	Type        string            `json:"payment_method_type" binding:"required"`
	Details     map[string]string `json:"payment_details" binding:"required"`
	DisplayName string            `json:"display_name" binding:"max=100"`
	IsDefault   bool              `json:"is_default"`
}

// WalletResponse is the public view of a wallet.
type WalletResponse struct {
	ID         string `json:"id"`
	MerchantID string `json:"merchant_id"`
	Balance    string `json:"balance"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// BalanceResponse is the response for balance query.
type BalanceResponse struct {
	WalletID string `json:"wallet_id"`
	Balance  string `json:"balance"`
}

// TransactionResponse is the public view of a ledger entry.
type TransactionResponse struct {
	ID             string  `json:"id"`
	WalletID       string  `json:"wallet_id"`
	Amount         string  `json:"amount"`
	Type           string  `json:"transaction_type"`
	Status         string  `json:"transaction_status"`
	Description    string  `json:"description"`
	ReferenceID    *string `json:"reference_id,omitempty"`
	RelatedOrderID *string `json:"related_order_id,omitempty"`
	Timestamp      string  `json:"timestamp"`
}

// TransferResponse pairs the two entries a transfer produces.
type TransferResponse struct {
	Debit  TransactionResponse `json:"debit"`
	Credit TransactionResponse `json:"credit"`
}

// TransactionListResponse wraps a transaction history page.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Count int                   `json:"count"`
}

// PaymentMethodResponse is the public view of a payment method. Details
// are masked; raw payment details never leave the service.
type PaymentMethodResponse struct {
	ID            string            `json:"id"`
	WalletID      string            `json:"wallet_id"`
	Type          string            `json:"payment_method_type"`
	MaskedDetails map[string]string `json:"masked_payment_details"`
	DisplayName   string            `json:"display_name"`
	Status        string            `json:"status"`
	IsVerified    bool              `json:"is_verified"`
	VerifiedAt    *string           `json:"verified_at,omitempty"`
	IsDefault     bool              `json:"is_default"`
	CreatedAt     string            `json:"created_at"`
}

// PaymentMethodListResponse wraps a wallet's payment methods.
type PaymentMethodListResponse struct {
	Items []PaymentMethodResponse `json:"items"`
	Count int                     `json:"count"`
}

// ToMerchantResponse converts a domain merchant.
func ToMerchantResponse(m *domain.Merchant) MerchantResponse {
	return MerchantResponse{
		ID:           m.ID.String(),
		Email:        m.Email,
		BusinessName: m.BusinessName,
		Role:         string(m.Role),
		Status:       string(m.Status),
		CreatedAt:    m.CreatedAt.Format(time.RFC3339),
	}
}

// ToWalletResponse converts a domain wallet.
func ToWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:         w.ID.String(),
		MerchantID: w.MerchantID.String(),
		Balance:    w.Balance.StringFixed(2),
		Status:     string(w.Status),
		CreatedAt:  w.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  w.UpdatedAt.Format(time.RFC3339),
	}
}

// ToTransactionResponse converts a domain ledger entry.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID.String(),
		WalletID:    t.WalletID.String(),
		Amount:      t.Amount.StringFixed(2),
		Type:        string(t.Type),
		Status:      string(t.Status),
		Description: t.Description,
		ReferenceID: t.ReferenceID,
		Timestamp:   t.Timestamp.Format(time.RFC3339),
	}
	if t.RelatedOrderID != nil {
		s := t.RelatedOrderID.String()
		resp.RelatedOrderID = &s
	}
	return resp
}

// ToTransactionListResponse converts a history page.
func ToTransactionListResponse(txns []domain.Transaction) TransactionListResponse {
	items := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, ToTransactionResponse(&txns[i]))
	}
	return TransactionListResponse{Items: items, Count: len(items)}
}

// ToPaymentMethodResponse converts a domain payment method, masking its
// details.
func ToPaymentMethodResponse(p *domain.PaymentMethod) PaymentMethodResponse {
	resp := PaymentMethodResponse{
		ID:            p.ID.String(),
		WalletID:      p.WalletID.String(),
		Type:          string(p.Type),
		MaskedDetails: MaskPaymentDetails(p.Details),
		DisplayName:   p.DisplayName,
		Status:        string(p.Status),
		IsVerified:    p.IsVerified,
		IsDefault:     p.IsDefault,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
	if p.VerifiedAt != nil {
		s := p.VerifiedAt.Format(time.RFC3339)
		resp.VerifiedAt = &s
	}
	return resp
}

// ToPaymentMethodListResponse converts a wallet's payment methods.
func ToPaymentMethodListResponse(methods []domain.PaymentMethod) PaymentMethodListResponse {
	items := make([]PaymentMethodResponse, 0, len(methods))
	for i := range methods {
		items = append(items, ToPaymentMethodResponse(&methods[i]))
	}
	return PaymentMethodListResponse{Items: items, Count: len(items)}
}

// parseUUIDPtr is shared by handlers converting optional UUID strings.
func parseUUIDPtr(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

// RelatedOrderUUID parses the optional related_order_id field.
func (r *ProcessTransactionRequest) RelatedOrderUUID() *uuid.UUID {
	return parseUUIDPtr(r.RelatedOrderID)
}
