package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"merchant-wallet-service/internal/core/domain"
	"merchant-wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const defaultHistoryLimit = 100

// TransactionRepo implements ports.TransactionRepository. The table is
// append-only; entries are never updated or deleted.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new ledger entry within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO wallet_transactions (id, wallet_id, amount, transaction_type, transaction_status,
		description, reference_id, related_order_id, processed_by, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.WalletID, t.Amount, t.Type, t.Status,
		t.Description, t.ReferenceID, t.RelatedOrderID, t.ProcessedBy, t.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert wallet transaction: %w", err)
	}
	return nil
}

// GetByID fetches a ledger entry by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT id, wallet_id, amount, transaction_type, transaction_status,
		description, reference_id, related_order_id, processed_by, timestamp
		FROM wallet_transactions WHERE id = $1`

	t := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.WalletID, &t.Amount, &t.Type, &t.Status,
		&t.Description, &t.ReferenceID, &t.RelatedOrderID, &t.ProcessedBy, &t.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet transaction by id: %w", err)
	}
	return t, nil
}

// ListByWallet fetches ledger entries for a wallet, newest first, with
// optional equality filters on type and status.
func (r *TransactionRepo) ListByWallet(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("wallet_id = $%d", argIdx))
	args = append(args, params.WalletID)
	argIdx++

	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("transaction_type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("transaction_status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	query := fmt.Sprintf(`SELECT id, wallet_id, amount, transaction_type, transaction_status,
		description, reference_id, related_order_id, processed_by, timestamp
		FROM wallet_transactions WHERE %s ORDER BY timestamp DESC, id DESC LIMIT $%d`,
		strings.Join(conditions, " AND "), argIdx)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list wallet transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.WalletID, &t.Amount, &t.Type, &t.Status,
			&t.Description, &t.ReferenceID, &t.RelatedOrderID, &t.ProcessedBy, &t.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet transactions: %w", err)
	}
	return txns, nil
}
