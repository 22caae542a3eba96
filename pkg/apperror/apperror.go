package apperror

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet Ledger (WLT) ----

// ErrInsufficientFunds reports a debit that would drive the balance
// negative. The message carries the diagnostics the ledger guarantees:
// current balance, attempted amount and the would-be resulting balance.
func ErrInsufficientFunds(current, amount, resulting decimal.Decimal) *AppError {
	return New(
		"WLT_001",
		fmt.Sprintf("Insufficient funds. Current balance: %s, Transaction amount: %s, Would result in: %s",
			current.StringFixed(2), amount.StringFixed(2), resulting.StringFixed(2)),
		http.StatusPaymentRequired,
	)
}

func ErrInvalidAmount(message string) *AppError {
	return New("WLT_002", message, http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("WLT_003", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ErrInvalidState reports an operation attempted against a wallet or
// payment method whose status forbids it.
func ErrInvalidState(message string) *AppError {
	return New("WLT_004", message, http.StatusConflict)
}

func ErrWalletNotActive(status string) *AppError {
	return ErrInvalidState(fmt.Sprintf("Wallet is not active. Current status: %s", status))
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New("AUTH_002", "Email already registered", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrMerchantSuspended() *AppError {
	return New("AUTH_004", "Merchant account is suspended", http.StatusForbidden)
}

func ErrForbidden() *AppError {
	return New("AUTH_005", "Operation requires administrator privileges", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

// Validation returns a WLT_002-style validation error.
func Validation(message string) *AppError {
	return New("WLT_002", message, http.StatusBadRequest)
}
