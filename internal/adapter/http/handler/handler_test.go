package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"merchant-wallet-service/internal/adapter/http/dto"
	"merchant-wallet-service/internal/adapter/http/middleware"
	"merchant-wallet-service/internal/core/domain"
	"merchant-wallet-service/internal/core/ports"
	"merchant-wallet-service/internal/core/ports/mocks"
	"merchant-wallet-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// authedContext builds a test context carrying the values JWTAuth would set.
func authedContext(w *httptest.ResponseRecorder, method string, body []byte, merchantID uuid.UUID, role domain.MerchantRole) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	if body != nil {
		c.Request = httptest.NewRequest(method, "/", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
	} else {
		c.Request = httptest.NewRequest(method, "/", nil)
	}
	c.Set(middleware.CtxMerchantID, merchantID)
	c.Set(middleware.CtxRole, role)
	return c
}

func testMerchant(id uuid.UUID) *domain.Merchant {
	return &domain.Merchant{
		ID:           id,
		Email:        "shop@example.com",
		BusinessName: "Test Shop",
		Role:         domain.RoleMerchant,
		Status:       domain.MerchantStatusActive,
		CreatedAt:    time.Now(),
	}
}

func testWallet(walletID, merchantID uuid.UUID, balance string) *domain.Wallet {
	bal, _ := decimal.NewFromString(balance)
	return &domain.Wallet{
		ID:         walletID,
		MerchantID: merchantID,
		Balance:    bal,
		Status:     domain.WalletStatusActive,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	merchantID := uuid.New()
	mockAuth.EXPECT().Register(gomock.Any(), ports.RegisterRequest{
		Email:        "shop@example.com",
		Password:     "password123",
		BusinessName: "Test Shop",
	}).Return(testMerchant(merchantID), nil)

	body, _ := json.Marshal(dto.RegisterRequest{
		Email:        "shop@example.com",
		Password:     "password123",
		BusinessName: "Test Shop",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, merchantID.String(), data["id"])
	assert.Equal(t, "shop@example.com", data["email"])
	assert.Equal(t, "merchant", data["role"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	// Empty body => binding error
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrEmailExists())

	body, _ := json.Marshal(dto.RegisterRequest{
		Email:        "taken@example.com",
		Password:     "password123",
		BusinessName: "Shop",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	merchantID := uuid.New()
	expiry := time.Now().Add(24 * time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "shop@example.com", "password123").
		Return("jwt-token-123", expiry, testMerchant(merchantID), nil)

	body, _ := json.Marshal(dto.LoginRequest{
		Email:    "shop@example.com",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "jwt-token-123", data["token"])
	assert.Equal(t, float64(expiry.Unix()), data["expiry"])
	merchant := data["merchant"].(map[string]interface{})
	assert.Equal(t, merchantID.String(), merchant["id"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "bad@example.com", "bad-password").
		Return("", time.Time{}, nil, apperror.ErrInvalidCredentials())

	body, _ := json.Marshal(dto.LoginRequest{
		Email:    "bad@example.com",
		Password: "bad-password",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Wallet Handler Tests ---

func TestGetMyWallet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	merchantID := uuid.New()
	walletID := uuid.New()
	mockWallet.EXPECT().CreateWallet(gomock.Any(), merchantID).
		Return(testWallet(walletID, merchantID, "150.00"), nil)

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodGet, nil, merchantID, domain.RoleMerchant)

	h.GetMyWallet(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, walletID.String(), data["id"])
	assert.Equal(t, "150.00", data["balance"])
}

func TestGetMyWallet_MissingPrincipal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.GetMyWallet(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetWallet_OtherMerchantHidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	walletID := uuid.New()
	owner := uuid.New()
	caller := uuid.New()
	mockWallet.EXPECT().GetWallet(gomock.Any(), walletID).
		Return(testWallet(walletID, owner, "10.00"), nil)

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodGet, nil, caller, domain.RoleMerchant)
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.GetWallet(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetWallet_AdminSeesAny(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	walletID := uuid.New()
	owner := uuid.New()
	admin := uuid.New()
	mockWallet.EXPECT().GetWallet(gomock.Any(), walletID).
		Return(testWallet(walletID, owner, "10.00"), nil)

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodGet, nil, admin, domain.RoleAdmin)
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.GetWallet(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetWallet_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodGet, nil, uuid.New(), domain.RoleMerchant)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetWallet(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBalance_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	merchantID := uuid.New()
	walletID := uuid.New()
	mockWallet.EXPECT().GetWallet(gomock.Any(), walletID).
		Return(testWallet(walletID, merchantID, "250.50"), nil)
	mockWallet.EXPECT().GetWalletBalance(gomock.Any(), walletID).
		Return(decimal.RequireFromString("250.50"), nil)

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodGet, nil, merchantID, domain.RoleMerchant)
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.GetBalance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "250.50", data["balance"])
	assert.Equal(t, walletID.String(), data["wallet_id"])
}

func TestProcessTransaction_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	adminID := uuid.New()
	walletID := uuid.New()
	txID := uuid.New()

	mockWallet.EXPECT().ProcessTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, req ports.ProcessTransactionRequest) (*domain.Transaction, error) {
			assert.Equal(t, walletID, req.WalletID)
			assert.True(t, req.Amount.Equal(decimal.RequireFromString("75.00")))
			assert.Equal(t, domain.TransactionTypeDeposit, req.Type)
			require.NotNil(t, req.ProcessedBy)
			assert.Equal(t, adminID, *req.ProcessedBy)
			return &domain.Transaction{
				ID:          txID,
				WalletID:    walletID,
				Amount:      req.Amount,
				Type:        req.Type,
				Status:      domain.TransactionStatusCompleted,
				Description: req.Description,
				ProcessedBy: req.ProcessedBy,
				Timestamp:   time.Now(),
			}, nil
		})

	body, _ := json.Marshal(dto.ProcessTransactionRequest{
		Amount:      "75.00",
		Type:        "deposit",
		Description: "Order settlement",
	})

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodPost, body, adminID, domain.RoleAdmin)
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.ProcessTransaction(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, txID.String(), data["id"])
	assert.Equal(t, "deposit", data["transaction_type"])
	assert.Equal(t, "75.00", data["amount"])
}

func TestProcessTransaction_SignMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	// Negative amount on a credit type is rejected before the service.
	body, _ := json.Marshal(dto.ProcessTransactionRequest{
		Amount: "-75.00",
		Type:   "deposit",
	})

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodPost, body, uuid.New(), domain.RoleAdmin)
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

	h.ProcessTransaction(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "WLT_002", resp["error_code"])
}

func TestTransfer_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	merchantID := uuid.New()
	fromID := uuid.New()
	toID := uuid.New()

	mockWallet.EXPECT().GetWallet(gomock.Any(), fromID).
		Return(testWallet(fromID, merchantID, "100.00"), nil)
	mockWallet.EXPECT().TransferFunds(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, req ports.TransferRequest) (*domain.Transaction, *domain.Transaction, error) {
			assert.Equal(t, fromID, req.FromWalletID)
			assert.Equal(t, toID, req.ToWalletID)
			assert.True(t, req.Amount.Equal(decimal.RequireFromString("30.00")))
			debit := &domain.Transaction{
				ID:       uuid.New(),
				WalletID: fromID,
				Amount:   req.Amount.Neg(),
				Type:     domain.TransactionTypeTransferOut,
				Status:   domain.TransactionStatusCompleted,
			}
			credit := &domain.Transaction{
				ID:       uuid.New(),
				WalletID: toID,
				Amount:   req.Amount,
				Type:     domain.TransactionTypeTransferIn,
				Status:   domain.TransactionStatusCompleted,
			}
			return debit, credit, nil
		})

	body, _ := json.Marshal(dto.TransferRequest{
		ToWalletID:  toID.String(),
		Amount:      "30.00",
		Description: "Settlement split",
	})

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodPost, body, merchantID, domain.RoleMerchant)
	c.Params = gin.Params{{Key: "id", Value: fromID.String()}}

	h.Transfer(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	debit := data["debit"].(map[string]interface{})
	credit := data["credit"].(map[string]interface{})
	assert.Equal(t, "-30.00", debit["amount"])
	assert.Equal(t, "30.00", credit["amount"])
	assert.Equal(t, "transfer_out", debit["transaction_type"])
	assert.Equal(t, "transfer_in", credit["transaction_type"])
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	merchantID := uuid.New()
	fromID := uuid.New()

	mockWallet.EXPECT().GetWallet(gomock.Any(), fromID).
		Return(testWallet(fromID, merchantID, "10.00"), nil)
	mockWallet.EXPECT().TransferFunds(gomock.Any(), gomock.Any()).
		Return(nil, nil, apperror.ErrInsufficientFunds(
			decimal.RequireFromString("10.00"),
			decimal.RequireFromString("-500.00"),
			decimal.RequireFromString("-490.00"),
		))

	body, _ := json.Marshal(dto.TransferRequest{
		ToWalletID: uuid.New().String(),
		Amount:     "500.00",
	})

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodPost, body, merchantID, domain.RoleMerchant)
	c.Params = gin.Params{{Key: "id", Value: fromID.String()}}

	h.Transfer(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestTransfer_NonPositiveAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	merchantID := uuid.New()
	fromID := uuid.New()

	mockWallet.EXPECT().GetWallet(gomock.Any(), fromID).
		Return(testWallet(fromID, merchantID, "100.00"), nil)

	body, _ := json.Marshal(dto.TransferRequest{
		ToWalletID: uuid.New().String(),
		Amount:     "-30.00",
	})

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodPost, body, merchantID, domain.RoleMerchant)
	c.Params = gin.Params{{Key: "id", Value: fromID.String()}}

	h.Transfer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTransactions_WithFilters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	merchantID := uuid.New()
	walletID := uuid.New()

	mockWallet.EXPECT().GetWallet(gomock.Any(), walletID).
		Return(testWallet(walletID, merchantID, "0.00"), nil)
	mockWallet.EXPECT().GetTransactionHistory(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, params ports.TransactionListParams) ([]domain.Transaction, error) {
			assert.Equal(t, walletID, params.WalletID)
			require.NotNil(t, params.Type)
			assert.Equal(t, domain.TransactionTypeDeposit, *params.Type)
			require.NotNil(t, params.Status)
			assert.Equal(t, domain.TransactionStatusCompleted, *params.Status)
			assert.Equal(t, 25, params.Limit)
			return []domain.Transaction{
				{ID: uuid.New(), WalletID: walletID, Amount: decimal.RequireFromString("50.00"),
					Type: domain.TransactionTypeDeposit, Status: domain.TransactionStatusCompleted},
			}, nil
		})

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodGet, nil, merchantID, domain.RoleMerchant)
	c.Request = httptest.NewRequest(http.MethodGet,
		"/?transaction_type=deposit&transaction_status=completed&limit=25", nil)
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.ListTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])
}

func TestSuspendWallet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	adminID := uuid.New()
	walletID := uuid.New()

	suspended := testWallet(walletID, uuid.New(), "40.00")
	suspended.Status = domain.WalletStatusSuspended
	mockWallet.EXPECT().SuspendWallet(gomock.Any(), walletID, "fraud review", gomock.Any()).
		Return(suspended, nil)

	body, _ := json.Marshal(dto.StatusChangeRequest{Reason: "fraud review"})

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodPost, body, adminID, domain.RoleAdmin)
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.Suspend(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "suspended", data["status"])
}

func TestReactivateWallet_MissingReason(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodPost, []byte("{}"), uuid.New(), domain.RoleAdmin)
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

	h.Reactivate(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Payment Method Handler Tests ---

func TestAddPaymentMethod_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPM := mocks.NewMockPaymentMethodService(ctrl)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewPaymentMethodHandler(mockPM, mockWallet)

	merchantID := uuid.New()
	walletID := uuid.New()
	pmID := uuid.New()

	mockWallet.EXPECT().GetWallet(gomock.Any(), walletID).
		Return(testWallet(walletID, merchantID, "0.00"), nil)
	mockPM.EXPECT().AddPaymentMethod(gomock.Any(), ports.AddPaymentMethodRequest{
		WalletID: walletID,
		Type:     domain.PaymentMethodBankAccount,
		Details: map[string]string{
			"bank_name":           "BDO",
			"account_number":      "0012345678",
			"account_holder_name": "Test Shop Inc",
		},
		DisplayName: "Main payout account",
		IsDefault:   true,
	}).Return(&domain.PaymentMethod{
		ID:       pmID,
		WalletID: walletID,
		Type:     domain.PaymentMethodBankAccount,
		Details: map[string]string{
			"bank_name":           "BDO",
			"account_number":      "0012345678",
			"account_holder_name": "Test Shop Inc",
		},
		DisplayName: "Main payout account",
		Status:      domain.PaymentMethodStatusActive,
		IsDefault:   true,
		CreatedAt:   time.Now(),
	}, nil)

	body, _ := json.Marshal(dto.AddPaymentMethodRequest{
		Type: "bank_account",
		Details: map[string]string{
			"bank_name":           "BDO",
			"account_number":      "0012345678",
			"account_holder_name": "Test Shop Inc",
		},
		DisplayName: "Main payout account",
		IsDefault:   true,
	})

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodPost, body, merchantID, domain.RoleMerchant)
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.Add(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, pmID.String(), data["id"])
	masked := data["masked_payment_details"].(map[string]interface{})
	assert.Equal(t, "******5678", masked["account_number"])
	assert.Equal(t, "BDO", masked["bank_name"])
}

func TestAddPaymentMethod_MissingRequiredField(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPM := mocks.NewMockPaymentMethodService(ctrl)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewPaymentMethodHandler(mockPM, mockWallet)

	merchantID := uuid.New()
	walletID := uuid.New()

	mockWallet.EXPECT().GetWallet(gomock.Any(), walletID).
		Return(testWallet(walletID, merchantID, "0.00"), nil)

	body, _ := json.Marshal(dto.AddPaymentMethodRequest{
		Type:    "gcash",
		Details: map[string]string{},
	})

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodPost, body, merchantID, domain.RoleMerchant)
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.Add(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPaymentMethods_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPM := mocks.NewMockPaymentMethodService(ctrl)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewPaymentMethodHandler(mockPM, mockWallet)

	merchantID := uuid.New()
	walletID := uuid.New()

	mockWallet.EXPECT().GetWallet(gomock.Any(), walletID).
		Return(testWallet(walletID, merchantID, "0.00"), nil)
	mockPM.EXPECT().GetWalletPaymentMethods(gomock.Any(), walletID).
		Return([]domain.PaymentMethod{
			{ID: uuid.New(), WalletID: walletID, Type: domain.PaymentMethodGCash,
				Details: map[string]string{"phone_number": "09171234567"},
				Status:  domain.PaymentMethodStatusActive, IsDefault: true},
		}, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodGet, nil, merchantID, domain.RoleMerchant)
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])
	items := data["items"].([]interface{})
	masked := items[0].(map[string]interface{})["masked_payment_details"].(map[string]interface{})
	assert.Equal(t, "09*****4567", masked["phone_number"])
}

func TestGetDefaultPaymentMethod_NoneExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPM := mocks.NewMockPaymentMethodService(ctrl)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewPaymentMethodHandler(mockPM, mockWallet)

	merchantID := uuid.New()
	walletID := uuid.New()

	mockWallet.EXPECT().GetWallet(gomock.Any(), walletID).
		Return(testWallet(walletID, merchantID, "0.00"), nil)
	mockPM.EXPECT().GetDefaultPaymentMethod(gomock.Any(), walletID).Return(nil, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodGet, nil, merchantID, domain.RoleMerchant)
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.GetDefault(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetDefaultPaymentMethod_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPM := mocks.NewMockPaymentMethodService(ctrl)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewPaymentMethodHandler(mockPM, mockWallet)

	merchantID := uuid.New()
	walletID := uuid.New()
	pmID := uuid.New()

	mockWallet.EXPECT().GetWallet(gomock.Any(), walletID).
		Return(testWallet(walletID, merchantID, "0.00"), nil)
	mockPM.EXPECT().GetWalletPaymentMethods(gomock.Any(), walletID).
		Return([]domain.PaymentMethod{
			{ID: pmID, WalletID: walletID, Type: domain.PaymentMethodPayPal,
				Details: map[string]string{"email": "shop@example.com"},
				Status:  domain.PaymentMethodStatusActive},
		}, nil)
	mockPM.EXPECT().SetDefaultPaymentMethod(gomock.Any(), pmID).
		Return(&domain.PaymentMethod{
			ID: pmID, WalletID: walletID, Type: domain.PaymentMethodPayPal,
			Details:   map[string]string{"email": "shop@example.com"},
			Status:    domain.PaymentMethodStatusActive,
			IsDefault: true,
		}, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodPost, nil, merchantID, domain.RoleMerchant)
	c.Params = gin.Params{
		{Key: "id", Value: walletID.String()},
		{Key: "pmID", Value: pmID.String()},
	}

	h.SetDefault(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["is_default"])
}

func TestSetDefaultPaymentMethod_NotInWallet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPM := mocks.NewMockPaymentMethodService(ctrl)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewPaymentMethodHandler(mockPM, mockWallet)

	merchantID := uuid.New()
	walletID := uuid.New()

	mockWallet.EXPECT().GetWallet(gomock.Any(), walletID).
		Return(testWallet(walletID, merchantID, "0.00"), nil)
	// A method id from some other wallet is not in the list.
	mockPM.EXPECT().GetWalletPaymentMethods(gomock.Any(), walletID).
		Return([]domain.PaymentMethod{}, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, http.MethodPost, nil, merchantID, domain.RoleMerchant)
	c.Params = gin.Params{
		{Key: "id", Value: walletID.String()},
		{Key: "pmID", Value: uuid.New().String()},
	}

	h.SetDefault(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
