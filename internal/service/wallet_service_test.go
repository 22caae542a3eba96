package service

import (
	"context"
	"testing"
	"time"

	"merchant-wallet-service/internal/core/domain"
	"merchant-wallet-service/internal/core/ports"
	"merchant-wallet-service/internal/core/ports/mocks"
	"merchant-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type walletTestDeps struct {
	svc        *WalletServiceImpl
	walletRepo *mocks.MockWalletRepository
	txRepo     *mocks.MockTransactionRepository
	transactor *mocks.MockDBTransactor
	balCache   *mocks.MockBalanceCache
	ctrl       *gomock.Controller
}

func setupWalletService(t *testing.T) *walletTestDeps {
	ctrl := gomock.NewController(t)
	d := &walletTestDeps{
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		txRepo:     mocks.NewMockTransactionRepository(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		balCache:   mocks.NewMockBalanceCache(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewWalletService(
		d.walletRepo, d.txRepo, d.transactor, d.balCache,
		30*time.Second, zerolog.Nop(),
	)
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func activeWallet(balance string) *domain.Wallet {
	return &domain.Wallet{
		ID:         uuid.New(),
		MerchantID: uuid.New(),
		Balance:    decimal.RequireFromString(balance),
		Status:     domain.WalletStatusActive,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
}

// ==================== CreateWallet Tests ====================

func TestWalletService_CreateWallet_ReturnsExisting(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()
	existing := activeWallet("150.00")
	existing.MerchantID = merchantID

	d.walletRepo.EXPECT().GetByMerchantID(ctx, merchantID).Return(existing, nil)

	wallet, err := d.svc.CreateWallet(ctx, merchantID)

	require.NoError(t, err)
	assert.Equal(t, existing.ID, wallet.ID)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("150.00")))
}

func TestWalletService_CreateWallet_CreatesNew(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()

	d.walletRepo.EXPECT().GetByMerchantID(ctx, merchantID).Return(nil, nil)
	d.walletRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, w *domain.Wallet) error {
			assert.Equal(t, merchantID, w.MerchantID)
			assert.True(t, w.Balance.IsZero())
			assert.Equal(t, domain.WalletStatusActive, w.Status)
			return nil
		})
	created := activeWallet("0.00")
	created.MerchantID = merchantID
	d.walletRepo.EXPECT().GetByMerchantID(ctx, merchantID).Return(created, nil)

	wallet, err := d.svc.CreateWallet(ctx, merchantID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, wallet.ID)
	assert.True(t, wallet.Balance.IsZero())
}

func TestWalletService_CreateWallet_ConcurrentCreateWins(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()

	// The insert is a no-op because another request created the wallet
	// between our lookup and insert; the re-read returns the winner's row.
	winner := activeWallet("0.00")
	winner.MerchantID = merchantID

	d.walletRepo.EXPECT().GetByMerchantID(ctx, merchantID).Return(nil, nil)
	d.walletRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.walletRepo.EXPECT().GetByMerchantID(ctx, merchantID).Return(winner, nil)

	wallet, err := d.svc.CreateWallet(ctx, merchantID)

	require.NoError(t, err)
	assert.Equal(t, winner.ID, wallet.ID)
}

// ==================== GetWalletBalance Tests ====================

func TestWalletService_GetWalletBalance_CacheHit(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	cached := decimal.RequireFromString("42.50")

	d.balCache.EXPECT().Get(ctx, walletID).Return(&cached, nil)

	balance, err := d.svc.GetWalletBalance(ctx, walletID)

	require.NoError(t, err)
	assert.True(t, balance.Equal(cached))
}

func TestWalletService_GetWalletBalance_CacheMissFallsThrough(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := activeWallet("99.99")

	d.balCache.EXPECT().Get(ctx, wallet.ID).Return(nil, nil)
	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)
	d.balCache.EXPECT().Set(ctx, wallet.ID, gomock.Any(), 30*time.Second).Return(nil)

	balance, err := d.svc.GetWalletBalance(ctx, wallet.ID)

	require.NoError(t, err)
	assert.True(t, balance.Equal(wallet.Balance))
}

func TestWalletService_GetWalletBalance_CacheErrorDegradesToDB(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := activeWallet("10.00")

	d.balCache.EXPECT().Get(ctx, wallet.ID).Return(nil, assert.AnError)
	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)
	d.balCache.EXPECT().Set(ctx, wallet.ID, gomock.Any(), gomock.Any()).Return(nil)

	balance, err := d.svc.GetWalletBalance(ctx, wallet.ID)

	require.NoError(t, err)
	assert.True(t, balance.Equal(wallet.Balance))
}

// ==================== ProcessTransaction Tests ====================

func TestWalletService_ProcessTransaction_Credit(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := activeWallet("100.00")
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			assert.Equal(t, domain.TransactionTypeDeposit, txn.Type)
			assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
			assert.True(t, txn.Amount.Equal(decimal.RequireFromString("50.00")))
			return nil
		})
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, wallet.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, _ uuid.UUID, balance decimal.Decimal) error {
			assert.True(t, balance.Equal(decimal.RequireFromString("150.00")))
			return nil
		})
	d.balCache.EXPECT().Invalidate(ctx, wallet.ID).Return(nil)

	txn, err := d.svc.ProcessTransaction(ctx, ports.ProcessTransactionRequest{
		WalletID:    wallet.ID,
		Amount:      decimal.RequireFromString("50.00"),
		Type:        domain.TransactionTypeDeposit,
		Description: "Top-up",
	})

	require.NoError(t, err)
	assert.Equal(t, wallet.ID, txn.WalletID)
	assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
}

func TestWalletService_ProcessTransaction_InsufficientFunds(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := activeWallet("30.00")
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)

	_, err := d.svc.ProcessTransaction(ctx, ports.ProcessTransactionRequest{
		WalletID: wallet.ID,
		Amount:   decimal.RequireFromString("-50.00"),
		Type:     domain.TransactionTypeWithdrawal,
	})

	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WLT_001", appErr.Code)
	assert.Contains(t, appErr.Message, "Current balance: 30")
}

func TestWalletService_ProcessTransaction_WalletNotFound(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(nil, nil)

	_, err := d.svc.ProcessTransaction(ctx, ports.ProcessTransactionRequest{
		WalletID: walletID,
		Amount:   decimal.RequireFromString("10.00"),
		Type:     domain.TransactionTypeDeposit,
	})

	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WLT_003", appErr.Code)
}

func TestWalletService_ProcessTransaction_SuspendedWalletRejected(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := activeWallet("100.00")
	wallet.Status = domain.WalletStatusSuspended
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)

	_, err := d.svc.ProcessTransaction(ctx, ports.ProcessTransactionRequest{
		WalletID: wallet.ID,
		Amount:   decimal.RequireFromString("10.00"),
		Type:     domain.TransactionTypeDeposit,
	})

	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WLT_004", appErr.Code)
	assert.Contains(t, appErr.Message, "suspended")
}

func TestWalletService_ProcessTransaction_ExactBalanceWithdrawal(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	// Draining the wallet to exactly zero is allowed.
	ctx := context.Background()
	wallet := activeWallet("75.00")
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, wallet.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, _ uuid.UUID, balance decimal.Decimal) error {
			assert.True(t, balance.IsZero())
			return nil
		})
	d.balCache.EXPECT().Invalidate(ctx, wallet.ID).Return(nil)

	_, err := d.svc.ProcessTransaction(ctx, ports.ProcessTransactionRequest{
		WalletID: wallet.ID,
		Amount:   decimal.RequireFromString("-75.00"),
		Type:     domain.TransactionTypeWithdrawal,
	})

	require.NoError(t, err)
}

// ==================== TransferFunds Tests ====================

func TestWalletService_TransferFunds_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	from := activeWallet("200.00")
	to := activeWallet("10.00")
	tx := &mockTx{}
	amount := decimal.RequireFromString("80.00")

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)

	gomock.InOrder(
		d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, from.ID).Return(from, nil),
		d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, to.ID).Return(to, nil),
	)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil).Times(2)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, from.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, _ uuid.UUID, balance decimal.Decimal) error {
			assert.True(t, balance.Equal(decimal.RequireFromString("120.00")))
			return nil
		})
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, to.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, _ uuid.UUID, balance decimal.Decimal) error {
			assert.True(t, balance.Equal(decimal.RequireFromString("90.00")))
			return nil
		})
	d.balCache.EXPECT().Invalidate(ctx, from.ID, to.ID).Return(nil)

	debit, credit, err := d.svc.TransferFunds(ctx, ports.TransferRequest{
		FromWalletID: from.ID,
		ToWalletID:   to.ID,
		Amount:       amount,
		Description:  "Settlement",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeTransferOut, debit.Type)
	assert.True(t, debit.Amount.Equal(amount.Neg()))
	assert.Equal(t, domain.TransactionTypeTransferIn, credit.Type)
	assert.True(t, credit.Amount.Equal(amount))
}

func TestWalletService_TransferFunds_InsufficientFundsNoCredit(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	// When the debit fails the destination must never be touched.
	ctx := context.Background()
	from := activeWallet("5.00")
	toID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, from.ID).Return(from, nil)

	_, _, err := d.svc.TransferFunds(ctx, ports.TransferRequest{
		FromWalletID: from.ID,
		ToWalletID:   toID,
		Amount:       decimal.RequireFromString("50.00"),
	})

	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WLT_001", appErr.Code)
}

func TestWalletService_TransferFunds_SameWallet(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	id := uuid.New()
	_, _, err := d.svc.TransferFunds(context.Background(), ports.TransferRequest{
		FromWalletID: id,
		ToWalletID:   id,
		Amount:       decimal.RequireFromString("10.00"),
	})

	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WLT_002", appErr.Code)
}

func TestWalletService_TransferFunds_NonPositiveAmount(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	for _, amount := range []string{"0.00", "-25.00"} {
		_, _, err := d.svc.TransferFunds(context.Background(), ports.TransferRequest{
			FromWalletID: uuid.New(),
			ToWalletID:   uuid.New(),
			Amount:       decimal.RequireFromString(amount),
		})

		require.Error(t, err)
		appErr, ok := err.(*apperror.AppError)
		require.True(t, ok)
		assert.Equal(t, "WLT_002", appErr.Code)
	}
}

func TestWalletService_TransferFunds_InactiveDestination(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	from := activeWallet("100.00")
	to := activeWallet("0.00")
	to.Status = domain.WalletStatusFrozen
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	gomock.InOrder(
		d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, from.ID).Return(from, nil),
		d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, to.ID).Return(to, nil),
	)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, from.ID, gomock.Any()).Return(nil)

	_, _, err := d.svc.TransferFunds(ctx, ports.TransferRequest{
		FromWalletID: from.ID,
		ToWalletID:   to.ID,
		Amount:       decimal.RequireFromString("10.00"),
	})

	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WLT_004", appErr.Code)
}

// ==================== Status Change Tests ====================

func TestWalletService_SuspendWallet_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := activeWallet("100.00")
	adminID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			assert.Equal(t, domain.TransactionTypeAdjustment, txn.Type)
			assert.True(t, txn.Amount.IsZero())
			assert.Contains(t, txn.Description, "chargeback review")
			assert.Equal(t, &adminID, txn.ProcessedBy)
			return nil
		})
	d.walletRepo.EXPECT().UpdateStatus(ctx, tx, wallet.ID, domain.WalletStatusSuspended).Return(nil)

	updated, err := d.svc.SuspendWallet(ctx, wallet.ID, "chargeback review", &adminID)

	require.NoError(t, err)
	assert.Equal(t, domain.WalletStatusSuspended, updated.Status)
}

func TestWalletService_SuspendWallet_AlreadySuspended(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := activeWallet("100.00")
	wallet.Status = domain.WalletStatusSuspended
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)

	_, err := d.svc.SuspendWallet(ctx, wallet.ID, "again", nil)

	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WLT_004", appErr.Code)
}

func TestWalletService_ReactivateWallet_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := activeWallet("55.00")
	wallet.Status = domain.WalletStatusSuspended
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.walletRepo.EXPECT().UpdateStatus(ctx, tx, wallet.ID, domain.WalletStatusActive).Return(nil)

	updated, err := d.svc.ReactivateWallet(ctx, wallet.ID, "review cleared", nil)

	require.NoError(t, err)
	assert.Equal(t, domain.WalletStatusActive, updated.Status)
}

func TestWalletService_ReactivateWallet_ClosedWallet(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := activeWallet("0.00")
	wallet.Status = domain.WalletStatusClosed
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)

	_, err := d.svc.ReactivateWallet(ctx, wallet.ID, "attempt", nil)

	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WLT_004", appErr.Code)
	assert.Contains(t, appErr.Message, "closed")
}

// ==================== History Tests ====================

func TestWalletService_GetTransactionHistory(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	txType := domain.TransactionTypeDeposit
	params := ports.TransactionListParams{WalletID: walletID, Type: &txType, Limit: 10}

	entries := []domain.Transaction{
		{ID: uuid.New(), WalletID: walletID, Type: txType},
		{ID: uuid.New(), WalletID: walletID, Type: txType},
	}
	d.txRepo.EXPECT().ListByWallet(ctx, params).Return(entries, nil)

	got, err := d.svc.GetTransactionHistory(ctx, params)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}
