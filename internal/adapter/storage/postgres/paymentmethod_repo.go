package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"merchant-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentMethodRepo implements ports.PaymentMethodRepository.
type PaymentMethodRepo struct {
	pool Pool
}

// NewPaymentMethodRepo creates a new PaymentMethodRepo.
func NewPaymentMethodRepo(pool Pool) *PaymentMethodRepo {
	return &PaymentMethodRepo{pool: pool}
}

const paymentMethodColumns = `id, wallet_id, payment_method_type, payment_details, display_name,
		status, is_verified, verified_at, is_default, created_at, updated_at`

func scanPaymentMethod(row pgx.Row) (*domain.PaymentMethod, error) {
	p := &domain.PaymentMethod{}
	err := row.Scan(
		&p.ID, &p.WalletID, &p.Type, &p.Details, &p.DisplayName,
		&p.Status, &p.IsVerified, &p.VerifiedAt, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new payment method within a database transaction.
func (r *PaymentMethodRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.PaymentMethod) error {
	query := `INSERT INTO payment_methods (id, wallet_id, payment_method_type, payment_details, display_name,
		status, is_verified, verified_at, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		p.ID, p.WalletID, p.Type, p.Details, p.DisplayName,
		p.Status, p.IsVerified, p.VerifiedAt, p.IsDefault, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment method: %w", err)
	}
	return nil
}

// GetByID fetches a payment method by UUID.
func (r *PaymentMethodRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_methods WHERE id = $1`, paymentMethodColumns)

	p, err := scanPaymentMethod(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment method by id: %w", err)
	}
	return p, nil
}

// ListByWallet fetches all payment methods for a wallet: defaults first,
// then grouped by type, then by creation time.
func (r *PaymentMethodRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.PaymentMethod, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_methods WHERE wallet_id = $1
		ORDER BY is_default DESC, payment_method_type, created_at`, paymentMethodColumns)

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []domain.PaymentMethod
	for rows.Next() {
		p := domain.PaymentMethod{}
		err := rows.Scan(
			&p.ID, &p.WalletID, &p.Type, &p.Details, &p.DisplayName,
			&p.Status, &p.IsVerified, &p.VerifiedAt, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		methods = append(methods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment methods: %w", err)
	}
	return methods, nil
}

// GetDefault fetches the active default payment method, or nil if none.
func (r *PaymentMethodRepo) GetDefault(ctx context.Context, walletID uuid.UUID) (*domain.PaymentMethod, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_methods
		WHERE wallet_id = $1 AND is_default = TRUE AND status = 'active'`, paymentMethodColumns)

	p, err := scanPaymentMethod(r.pool.QueryRow(ctx, query, walletID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get default payment method: %w", err)
	}
	return p, nil
}

// ClearDefault unsets is_default on every method of the wallet except the
// given one. Pass uuid.Nil to clear all. Runs within a transaction so the
// single-default invariant holds at commit.
func (r *PaymentMethodRepo) ClearDefault(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, except uuid.UUID) error {
	query := `UPDATE payment_methods SET is_default = FALSE, updated_at = NOW()
		WHERE wallet_id = $1 AND is_default = TRUE AND id != $2`

	if _, err := tx.Exec(ctx, query, walletID, except); err != nil {
		return fmt.Errorf("clear default payment method: %w", err)
	}
	return nil
}

// SetDefault marks a payment method as the wallet's default within a transaction.
func (r *PaymentMethodRepo) SetDefault(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `UPDATE payment_methods SET is_default = TRUE, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("set default payment method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment method not found: %s", id)
	}
	return nil
}

// Deactivate sets status to inactive and drops the default flag in one write.
func (r *PaymentMethodRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE payment_methods SET status = 'inactive', is_default = FALSE, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate payment method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment method not found: %s", id)
	}
	return nil
}

// MarkVerified records a successful verification.
func (r *PaymentMethodRepo) MarkVerified(ctx context.Context, id uuid.UUID, verifiedAt time.Time) error {
	query := `UPDATE payment_methods SET is_verified = TRUE, verified_at = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, verifiedAt, id)
	if err != nil {
		return fmt.Errorf("mark payment method verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment method not found: %s", id)
	}
	return nil
}
