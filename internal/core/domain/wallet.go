package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletStatus represents the state of a merchant wallet.
type WalletStatus string

const (
	WalletStatusActive    WalletStatus = "active"
	WalletStatusSuspended WalletStatus = "suspended"
	WalletStatusFrozen    WalletStatus = "frozen"
	WalletStatusClosed    WalletStatus = "closed"
)

// Wallet represents a merchant's monetary account. Each merchant owns at
// most one wallet; the balance is only ever mutated together with a
// ledger entry inside the same database transaction.
type Wallet struct {
	ID         uuid.UUID       `json:"wallet_id"`
	MerchantID uuid.UUID       `json:"merchant_id"`
	Balance    decimal.Decimal `json:"balance"`
	Status     WalletStatus    `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// IsActive returns true if the wallet accepts balance-mutating transactions.
func (w *Wallet) IsActive() bool {
	return w.Status == WalletStatusActive
}

// CanReactivate returns true if the wallet may transition back to active.
// Closed wallets stay closed.
func (w *Wallet) CanReactivate() bool {
	return w.Status == WalletStatusSuspended || w.Status == WalletStatusFrozen
}
