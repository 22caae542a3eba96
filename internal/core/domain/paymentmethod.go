package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethodType enumerates supported payout channels.
type PaymentMethodType string

const (
	PaymentMethodBankAccount PaymentMethodType = "bank_account"
	PaymentMethodCreditCard  PaymentMethodType = "credit_card"
	PaymentMethodDebitCard   PaymentMethodType = "debit_card"
	PaymentMethodEWallet     PaymentMethodType = "e_wallet"
	PaymentMethodGCash       PaymentMethodType = "gcash"
	PaymentMethodPayMaya     PaymentMethodType = "paymaya"
	PaymentMethodPayPal      PaymentMethodType = "paypal"
	PaymentMethodCrypto      PaymentMethodType = "crypto"
)

// PaymentMethodStatus represents the state of a payment method.
type PaymentMethodStatus string

const (
	PaymentMethodStatusActive   PaymentMethodStatus = "active"
	PaymentMethodStatusInactive PaymentMethodStatus = "inactive"
	PaymentMethodStatusExpired  PaymentMethodStatus = "expired"
	PaymentMethodStatusBlocked  PaymentMethodStatus = "blocked"
)

// PaymentMethod is a payout channel registered against a wallet. Details
// hold tokenized credentials whose shape depends on the type; they are
// stored as-is and masked only at the presentation layer. At most one
// method per wallet has IsDefault set.
type PaymentMethod struct {
	ID          uuid.UUID           `json:"payment_method_id"`
	WalletID    uuid.UUID           `json:"wallet_id"`
	Type        PaymentMethodType   `json:"payment_method_type"`
	Details     map[string]string   `json:"-"` // masked before serialization
	DisplayName string              `json:"display_name,omitempty"`
	Status      PaymentMethodStatus `json:"status"`
	IsVerified  bool                `json:"is_verified"`
	VerifiedAt  *time.Time          `json:"verified_at,omitempty"`
	IsDefault   bool                `json:"is_default"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// IsUsable returns true if the method can serve as a payout target.
func (p *PaymentMethod) IsUsable() bool {
	return p.Status == PaymentMethodStatusActive
}
