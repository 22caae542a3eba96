package service

import (
	"context"
	"fmt"
	"time"

	"merchant-wallet-service/internal/core/domain"
	"merchant-wallet-service/internal/core/ports"
	"merchant-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService. It is the only code
// path that mutates wallet balances: every mutation locks the wallet row,
// appends a ledger entry and writes the new balance inside one database
// transaction, so the sum of completed entry amounts always equals the
// stored balance.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	transactor ports.DBTransactor
	balCache   ports.BalanceCache
	balanceTTL time.Duration
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	balCache ports.BalanceCache,
	balanceTTL time.Duration,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		transactor: transactor,
		balCache:   balCache,
		balanceTTL: balanceTTL,
		log:        log,
	}
}

// CreateWallet returns the merchant's wallet, creating it with zero
// balance and active status on first call. The insert is a no-op when a
// wallet already exists, so two concurrent first calls converge on the
// same row.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, merchantID uuid.UUID) (*domain.Wallet, error) {
	existing, err := s.walletRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup wallet: %w", err))
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Balance:    decimal.Zero,
		Status:     domain.WalletStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	// Re-read: if a concurrent create won, this returns its row.
	created, err := s.walletRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reload wallet: %w", err))
	}
	if created == nil {
		return nil, apperror.InternalError(fmt.Errorf("wallet vanished after create: merchant %s", merchantID))
	}

	s.log.Info().
		Str("wallet_id", created.ID.String()).
		Str("merchant_id", merchantID.String()).
		Msg("wallet created")

	return created, nil
}

// GetWallet fetches a wallet by id.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}
	return wallet, nil
}

// GetMerchantWallet fetches a wallet by its owning merchant.
func (s *WalletServiceImpl) GetMerchantWallet(ctx context.Context, merchantID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get merchant wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}
	return wallet, nil
}

// GetWalletBalance returns the current balance, serving from the cache
// when possible. Cache errors degrade to a database read.
func (s *WalletServiceImpl) GetWalletBalance(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	if s.balCache != nil {
		cached, err := s.balCache.Get(ctx, walletID)
		if err != nil {
			s.log.Warn().Err(err).Str("wallet_id", walletID.String()).Msg("balance cache read failed")
		} else if cached != nil {
			return *cached, nil
		}
	}

	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return decimal.Zero, err
	}

	if s.balCache != nil {
		if err := s.balCache.Set(ctx, walletID, wallet.Balance, s.balanceTTL); err != nil {
			s.log.Warn().Err(err).Str("wallet_id", walletID.String()).Msg("balance cache write failed")
		}
	}
	return wallet.Balance, nil
}

// ProcessTransaction applies one signed amount to a wallet: lock the row,
// validate status and resulting balance, append the ledger entry, write
// the balance. Either all of it persists or none of it does.
func (s *WalletServiceImpl) ProcessTransaction(ctx context.Context, req ports.ProcessTransactionRequest) (*domain.Transaction, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.applyTransaction(ctx, dbTx, req)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.invalidateBalances(ctx, req.WalletID)

	s.log.Info().
		Str("transaction_id", txn.ID.String()).
		Str("wallet_id", req.WalletID.String()).
		Str("type", string(req.Type)).
		Str("amount", req.Amount.StringFixed(2)).
		Msg("transaction processed")

	return txn, nil
}

// TransferFunds moves amount from one wallet to another as a debit entry
// plus a credit entry inside a single database transaction. The source
// row is locked first, then the destination; both locks are held until
// commit, so the pair is never observable half-applied. If the debit
// fails nothing changes on either side.
func (s *WalletServiceImpl) TransferFunds(ctx context.Context, req ports.TransferRequest) (*domain.Transaction, *domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, nil, apperror.ErrInvalidAmount("Transfer amount must be positive")
	}
	if req.FromWalletID == req.ToWalletID {
		return nil, nil, apperror.ErrInvalidAmount("Cannot transfer to the same wallet")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	debit, err := s.applyTransaction(ctx, dbTx, ports.ProcessTransactionRequest{
		WalletID:    req.FromWalletID,
		Amount:      req.Amount.Neg(),
		Type:        domain.TransactionTypeTransferOut,
		Description: fmt.Sprintf("Transfer to wallet %s: %s", req.ToWalletID, req.Description),
		ReferenceID: req.ReferenceID,
		ProcessedBy: req.ProcessedBy,
	})
	if err != nil {
		return nil, nil, err
	}

	credit, err := s.applyTransaction(ctx, dbTx, ports.ProcessTransactionRequest{
		WalletID:    req.ToWalletID,
		Amount:      req.Amount,
		Type:        domain.TransactionTypeTransferIn,
		Description: fmt.Sprintf("Transfer from wallet %s: %s", req.FromWalletID, req.Description),
		ReferenceID: req.ReferenceID,
		ProcessedBy: req.ProcessedBy,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.invalidateBalances(ctx, req.FromWalletID, req.ToWalletID)

	s.log.Info().
		Str("from_wallet_id", req.FromWalletID.String()).
		Str("to_wallet_id", req.ToWalletID.String()).
		Str("amount", req.Amount.StringFixed(2)).
		Msg("transfer completed")

	return debit, credit, nil
}

// GetTransactionHistory returns ledger entries newest first.
func (s *WalletServiceImpl) GetTransactionHistory(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
	txns, err := s.txRepo.ListByWallet(ctx, params)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// SuspendWallet sets the wallet to suspended, recording the reason as a
// zero-amount adjustment entry in the same transaction.
func (s *WalletServiceImpl) SuspendWallet(ctx context.Context, walletID uuid.UUID, reason string, processedBy *uuid.UUID) (*domain.Wallet, error) {
	return s.changeStatus(ctx, walletID, processedBy,
		fmt.Sprintf("Wallet suspended: %s", reason),
		domain.WalletStatusSuspended,
		func(w *domain.Wallet) error {
			if w.Status == domain.WalletStatusSuspended {
				return apperror.ErrInvalidState("Wallet is already suspended")
			}
			return nil
		},
	)
}

// ReactivateWallet sets a suspended or frozen wallet back to active,
// recording the reason as a zero-amount adjustment entry.
func (s *WalletServiceImpl) ReactivateWallet(ctx context.Context, walletID uuid.UUID, reason string, processedBy *uuid.UUID) (*domain.Wallet, error) {
	return s.changeStatus(ctx, walletID, processedBy,
		fmt.Sprintf("Wallet reactivated: %s", reason),
		domain.WalletStatusActive,
		func(w *domain.Wallet) error {
			if w.Status == domain.WalletStatusActive {
				return apperror.ErrInvalidState("Wallet is already active")
			}
			if !w.CanReactivate() {
				return apperror.ErrInvalidState(fmt.Sprintf("Cannot reactivate wallet with status: %s", w.Status))
			}
			return nil
		},
	)
}

// applyTransaction performs the ledger mutation inside an open database
// transaction. Shared by ProcessTransaction and TransferFunds so both
// enforce the same status and non-negativity invariants.
func (s *WalletServiceImpl) applyTransaction(ctx context.Context, dbTx pgx.Tx, req ports.ProcessTransactionRequest) (*domain.Transaction, error) {
	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, req.WalletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}
	if !wallet.IsActive() {
		return nil, apperror.ErrWalletNotActive(string(wallet.Status))
	}

	newBalance := wallet.Balance.Add(req.Amount)
	if newBalance.IsNegative() {
		return nil, apperror.ErrInsufficientFunds(wallet.Balance, req.Amount, newBalance)
	}

	txn := &domain.Transaction{
		ID:             uuid.New(),
		WalletID:       wallet.ID,
		Amount:         req.Amount,
		Type:           req.Type,
		Status:         domain.TransactionStatusCompleted,
		Description:    req.Description,
		ReferenceID:    req.ReferenceID,
		RelatedOrderID: req.RelatedOrderID,
		ProcessedBy:    req.ProcessedBy,
		Timestamp:      time.Now().UTC(),
	}

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	return txn, nil
}

// changeStatus locks the wallet, runs the precondition check, appends the
// audit adjustment entry and writes the new status atomically.
func (s *WalletServiceImpl) changeStatus(
	ctx context.Context,
	walletID uuid.UUID,
	processedBy *uuid.UUID,
	description string,
	newStatus domain.WalletStatus,
	check func(*domain.Wallet) error,
) (*domain.Wallet, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}
	if err := check(wallet); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	audit := &domain.Transaction{
		ID:          uuid.New(),
		WalletID:    wallet.ID,
		Amount:      decimal.Zero,
		Type:        domain.TransactionTypeAdjustment,
		Status:      domain.TransactionStatusCompleted,
		Description: description,
		ProcessedBy: processedBy,
		Timestamp:   now,
	}
	if err := s.txRepo.Create(ctx, dbTx, audit); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create audit entry: %w", err))
	}
	if err := s.walletRepo.UpdateStatus(ctx, dbTx, wallet.ID, newStatus); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update status: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	wallet.Status = newStatus
	wallet.UpdatedAt = now

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("status", string(newStatus)).
		Msg("wallet status changed")

	return wallet, nil
}

// invalidateBalances drops cached balances after a committed mutation.
// Best-effort: a failure here only shortens cache freshness, the TTL
// still bounds staleness.
func (s *WalletServiceImpl) invalidateBalances(ctx context.Context, walletIDs ...uuid.UUID) {
	if s.balCache == nil {
		return
	}
	if err := s.balCache.Invalidate(ctx, walletIDs...); err != nil {
		s.log.Warn().Err(err).Msg("balance cache invalidation failed")
	}
}
