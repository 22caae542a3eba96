package domain

import (
	"time"

	"github.com/google/uuid"
)

// MerchantRole tags the authenticated principal's capabilities.
type MerchantRole string

const (
	RoleMerchant MerchantRole = "merchant"
	RoleAdmin    MerchantRole = "admin"
)

// MerchantStatus represents the state of a merchant account.
type MerchantStatus string

const (
	MerchantStatusActive      MerchantStatus = "active"
	MerchantStatusSuspended   MerchantStatus = "suspended"
	MerchantStatusDeactivated MerchantStatus = "deactivated"
)

// Merchant represents a registered marketplace merchant. The ledger never
// inspects merchants beyond their id; this type exists for the HTTP
// surface that authenticates callers and supplies processed_by ids.
type Merchant struct {
	ID           uuid.UUID      `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"` // never expose
	BusinessName string         `json:"business_name"`
	Role         MerchantRole   `json:"role"`
	Status       MerchantStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IsActive returns true if the merchant account is active.
func (m *Merchant) IsActive() bool {
	return m.Status == MerchantStatusActive
}

// IsAdmin returns true if the principal carries the admin capability.
func (m *Merchant) IsAdmin() bool {
	return m.Role == RoleAdmin
}
