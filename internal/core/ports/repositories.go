package ports

import (
	"context"
	"time"

	"merchant-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories.go -package=mocks

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside transaction blocks; GetByIDForUpdate
// takes the row lock that serializes concurrent mutations per wallet.
type WalletRepository interface {
	// Create inserts the wallet, doing nothing if the merchant already has
	// one. Callers re-read by merchant id to obtain the canonical row.
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByMerchantID(ctx context.Context, merchantID uuid.UUID) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, status domain.WalletStatus) error
}

// TransactionListParams holds optional filters for transaction history.
type TransactionListParams struct {
	WalletID uuid.UUID
	Type     *domain.TransactionType
	Status   *domain.TransactionStatus
	Limit    int
}

// TransactionRepository defines persistence operations for ledger entries.
// Entries are append-only; there is no update or delete.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListByWallet(ctx context.Context, params TransactionListParams) ([]domain.Transaction, error)
}

// PaymentMethodRepository defines persistence operations for payment methods.
type PaymentMethodRepository interface {
	Create(ctx context.Context, tx pgx.Tx, method *domain.PaymentMethod) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error)
	// ListByWallet orders defaults first, then by type, then creation time.
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.PaymentMethod, error)
	// GetDefault returns the active default method, or nil if none exists.
	GetDefault(ctx context.Context, walletID uuid.UUID) (*domain.PaymentMethod, error)
	// ClearDefault unsets is_default on every method of the wallet except
	// the given one (pass uuid.Nil to clear all).
	ClearDefault(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, except uuid.UUID) error
	SetDefault(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	MarkVerified(ctx context.Context, id uuid.UUID, verifiedAt time.Time) error
}

// MerchantRepository defines persistence operations for merchant accounts.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *domain.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	GetByEmail(ctx context.Context, email string) (*domain.Merchant, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
