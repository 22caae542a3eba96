package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdrawal  TransactionType = "withdrawal"
	TransactionTypeRefund      TransactionType = "refund"
	TransactionTypeCommission  TransactionType = "commission"
	TransactionTypePenalty     TransactionType = "penalty"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"
	TransactionTypeAdjustment  TransactionType = "adjustment"
)

// TransactionStatus represents the lifecycle state of a ledger entry.
// Entries are written as completed at insert time; the remaining states
// exist for asynchronous settlement, which is not wired up yet.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
	TransactionStatusReversed   TransactionStatus = "reversed"
)

// Transaction is an immutable, append-only ledger entry. Amount is signed:
// positive entries credit the wallet, negative entries debit it. The sum
// of all completed amounts for a wallet equals its current balance.
type Transaction struct {
	ID             uuid.UUID         `json:"transaction_id"`
	WalletID       uuid.UUID         `json:"wallet_id"`
	Amount         decimal.Decimal   `json:"amount"`
	Type           TransactionType   `json:"transaction_type"`
	Status         TransactionStatus `json:"transaction_status"`
	Description    string            `json:"description,omitempty"`
	ReferenceID    *string           `json:"reference_id,omitempty"`
	RelatedOrderID *uuid.UUID        `json:"related_order_id,omitempty"`
	ProcessedBy    *uuid.UUID        `json:"processed_by,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
}

// IsCredit returns true if the entry increases the wallet balance.
func (t *Transaction) IsCredit() bool {
	return t.Amount.IsPositive()
}

// CreditTypes lists the transaction types whose amounts must be positive.
func CreditTypes() []TransactionType {
	return []TransactionType{
		TransactionTypeDeposit,
		TransactionTypeRefund,
		TransactionTypeTransferIn,
		TransactionTypeCommission,
	}
}

// DebitTypes lists the transaction types whose amounts must be negative.
func DebitTypes() []TransactionType {
	return []TransactionType{
		TransactionTypeWithdrawal,
		TransactionTypePenalty,
		TransactionTypeTransferOut,
	}
}
