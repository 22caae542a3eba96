package service

import (
	"context"
	"fmt"
	"time"

	"merchant-wallet-service/internal/core/domain"
	"merchant-wallet-service/internal/core/ports"
	"merchant-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentMethodServiceImpl implements ports.PaymentMethodService. The
// single-default invariant is maintained by clearing and setting the flag
// inside one database transaction.
type PaymentMethodServiceImpl struct {
	pmRepo     ports.PaymentMethodRepository
	walletRepo ports.WalletRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewPaymentMethodService creates a new PaymentMethodServiceImpl.
func NewPaymentMethodService(
	pmRepo ports.PaymentMethodRepository,
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *PaymentMethodServiceImpl {
	return &PaymentMethodServiceImpl{
		pmRepo:     pmRepo,
		walletRepo: walletRepo,
		transactor: transactor,
		log:        log,
	}
}

// AddPaymentMethod registers a payout channel. When the new method is to
// be the default, existing defaults are cleared in the same transaction.
func (s *PaymentMethodServiceImpl) AddPaymentMethod(ctx context.Context, req ports.AddPaymentMethodRequest) (*domain.PaymentMethod, error) {
	wallet, err := s.walletRepo.GetByID(ctx, req.WalletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if req.IsDefault {
		if err := s.pmRepo.ClearDefault(ctx, dbTx, req.WalletID, uuid.Nil); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("clear defaults: %w", err))
		}
	}

	now := time.Now().UTC()
	method := &domain.PaymentMethod{
		ID:          uuid.New(),
		WalletID:    req.WalletID,
		Type:        req.Type,
		Details:     req.Details,
		DisplayName: req.DisplayName,
		Status:      domain.PaymentMethodStatusActive,
		IsDefault:   req.IsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.pmRepo.Create(ctx, dbTx, method); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payment method: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("payment_method_id", method.ID.String()).
		Str("wallet_id", req.WalletID.String()).
		Str("type", string(req.Type)).
		Bool("is_default", req.IsDefault).
		Msg("payment method added")

	return method, nil
}

// GetWalletPaymentMethods lists a wallet's payout channels, defaults first.
func (s *PaymentMethodServiceImpl) GetWalletPaymentMethods(ctx context.Context, walletID uuid.UUID) ([]domain.PaymentMethod, error) {
	methods, err := s.pmRepo.ListByWallet(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list payment methods: %w", err))
	}
	return methods, nil
}

// GetDefaultPaymentMethod returns the active default, or nil if none.
func (s *PaymentMethodServiceImpl) GetDefaultPaymentMethod(ctx context.Context, walletID uuid.UUID) (*domain.PaymentMethod, error) {
	method, err := s.pmRepo.GetDefault(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get default payment method: %w", err))
	}
	return method, nil
}

// SetDefaultPaymentMethod makes the given method its wallet's default,
// clearing every other default in the same transaction.
func (s *PaymentMethodServiceImpl) SetDefaultPaymentMethod(ctx context.Context, paymentMethodID uuid.UUID) (*domain.PaymentMethod, error) {
	method, err := s.pmRepo.GetByID(ctx, paymentMethodID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get payment method: %w", err))
	}
	if method == nil {
		return nil, apperror.ErrNotFound("Payment method")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.pmRepo.ClearDefault(ctx, dbTx, method.WalletID, method.ID); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("clear defaults: %w", err))
	}
	if err := s.pmRepo.SetDefault(ctx, dbTx, method.ID); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("set default: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	method.IsDefault = true

	s.log.Info().
		Str("payment_method_id", method.ID.String()).
		Str("wallet_id", method.WalletID.String()).
		Msg("default payment method changed")

	return method, nil
}

// DeactivatePaymentMethod sets the method inactive and drops its default
// flag. No preconditions beyond existence.
func (s *PaymentMethodServiceImpl) DeactivatePaymentMethod(ctx context.Context, paymentMethodID uuid.UUID) (*domain.PaymentMethod, error) {
	method, err := s.pmRepo.GetByID(ctx, paymentMethodID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get payment method: %w", err))
	}
	if method == nil {
		return nil, apperror.ErrNotFound("Payment method")
	}

	if err := s.pmRepo.Deactivate(ctx, paymentMethodID); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("deactivate payment method: %w", err))
	}

	method.Status = domain.PaymentMethodStatusInactive
	method.IsDefault = false

	s.log.Info().
		Str("payment_method_id", method.ID.String()).
		Msg("payment method deactivated")

	return method, nil
}

// VerifyPaymentMethod marks a method verified. Admin-only at the HTTP layer.
func (s *PaymentMethodServiceImpl) VerifyPaymentMethod(ctx context.Context, paymentMethodID uuid.UUID) (*domain.PaymentMethod, error) {
	method, err := s.pmRepo.GetByID(ctx, paymentMethodID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get payment method: %w", err))
	}
	if method == nil {
		return nil, apperror.ErrNotFound("Payment method")
	}

	now := time.Now().UTC()
	if err := s.pmRepo.MarkVerified(ctx, paymentMethodID, now); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify payment method: %w", err))
	}

	method.IsVerified = true
	method.VerifiedAt = &now

	s.log.Info().
		Str("payment_method_id", method.ID.String()).
		Msg("payment method verified")

	return method, nil
}
