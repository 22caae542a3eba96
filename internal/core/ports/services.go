package ports

import (
	"context"
	"time"

	"merchant-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/services.go -package=mocks

// --- Ledger ---

// ProcessTransactionRequest holds validated input for a ledger entry.
// Amount is signed: callers pass negative amounts for debits. Sign-to-type
// correspondence is the caller's policy, enforced at the DTO layer.
type ProcessTransactionRequest struct {
	WalletID       uuid.UUID
	Amount         decimal.Decimal
	Type           domain.TransactionType
	Description    string
	ReferenceID    *string
	RelatedOrderID *uuid.UUID
	ProcessedBy    *uuid.UUID
}

// TransferRequest holds validated input for a two-wallet transfer.
type TransferRequest struct {
	FromWalletID uuid.UUID
	ToWalletID   uuid.UUID
	Amount       decimal.Decimal
	Description  string
	ReferenceID  *string
	ProcessedBy  *uuid.UUID
}

// WalletService is the ledger: the only code path that mutates balances.
type WalletService interface {
	// CreateWallet is idempotent: it returns the merchant's existing
	// wallet or creates one with zero balance and active status.
	CreateWallet(ctx context.Context, merchantID uuid.UUID) (*domain.Wallet, error)
	GetWallet(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error)
	GetMerchantWallet(ctx context.Context, merchantID uuid.UUID) (*domain.Wallet, error)
	GetWalletBalance(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error)
	ProcessTransaction(ctx context.Context, req ProcessTransactionRequest) (*domain.Transaction, error)
	// TransferFunds debits the source and credits the destination in one
	// atomic unit; returns the debit entry first.
	TransferFunds(ctx context.Context, req TransferRequest) (*domain.Transaction, *domain.Transaction, error)
	GetTransactionHistory(ctx context.Context, params TransactionListParams) ([]domain.Transaction, error)
	SuspendWallet(ctx context.Context, walletID uuid.UUID, reason string, processedBy *uuid.UUID) (*domain.Wallet, error)
	ReactivateWallet(ctx context.Context, walletID uuid.UUID, reason string, processedBy *uuid.UUID) (*domain.Wallet, error)
}

// --- Payment methods ---

// AddPaymentMethodRequest holds validated input for registering a payout channel.
type AddPaymentMethodRequest struct {
	WalletID    uuid.UUID
	Type        domain.PaymentMethodType
	Details     map[string]string
	DisplayName string
	IsDefault   bool
}

// PaymentMethodService manages payout channels attached to wallets.
type PaymentMethodService interface {
	AddPaymentMethod(ctx context.Context, req AddPaymentMethodRequest) (*domain.PaymentMethod, error)
	GetWalletPaymentMethods(ctx context.Context, walletID uuid.UUID) ([]domain.PaymentMethod, error)
	// GetDefaultPaymentMethod returns nil, nil when no default exists.
	GetDefaultPaymentMethod(ctx context.Context, walletID uuid.UUID) (*domain.PaymentMethod, error)
	SetDefaultPaymentMethod(ctx context.Context, paymentMethodID uuid.UUID) (*domain.PaymentMethod, error)
	DeactivatePaymentMethod(ctx context.Context, paymentMethodID uuid.UUID) (*domain.PaymentMethod, error)
	VerifyPaymentMethod(ctx context.Context, paymentMethodID uuid.UUID) (*domain.PaymentMethod, error)
}

// --- Auth (collaborator for the HTTP surface) ---

// RegisterRequest holds validated input for merchant registration.
type RegisterRequest struct {
	Email        string
	Password     string
	BusinessName string
}

// AuthService registers merchants and issues bearer tokens.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Merchant, error)
	Login(ctx context.Context, email, password string) (token string, expiry time.Time, merchant *domain.Merchant, err error)
}

// TokenClaims holds the parsed bearer token claims: the opaque principal
// id handed to the ledger as processed_by, plus the capability tag.
type TokenClaims struct {
	MerchantID uuid.UUID
	Role       domain.MerchantRole
}

// TokenService handles JWT operations.
type TokenService interface {
	Generate(merchantID uuid.UUID, role domain.MerchantRole) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// --- Cache ---

// BalanceCache is a best-effort read cache for wallet balances. Writers
// invalidate after commit; a miss or error always falls through to the
// database, never to a stale answer older than the TTL.
type BalanceCache interface {
	Get(ctx context.Context, walletID uuid.UUID) (*decimal.Decimal, error)
	Set(ctx context.Context, walletID uuid.UUID, balance decimal.Decimal, ttl time.Duration) error
	Invalidate(ctx context.Context, walletIDs ...uuid.UUID) error
}
