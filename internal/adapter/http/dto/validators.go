package dto

import (
	"fmt"
	"html"
	"reflect"
	"strings"

	"merchant-wallet-service/internal/core/domain"
	"merchant-wallet-service/pkg/apperror"

	"github.com/shopspring/decimal"
)

// creditTypes and debitTypes drive the sign policy: credits must carry a
// positive amount, debits a negative one. Adjustments are service-issued
// and not accepted over the API.
var (
	creditTypes = map[domain.TransactionType]bool{
		domain.TransactionTypeDeposit:    true,
		domain.TransactionTypeRefund:     true,
		domain.TransactionTypeTransferIn: true,
		domain.TransactionTypeCommission: true,
	}
	debitTypes = map[domain.TransactionType]bool{
		domain.TransactionTypeWithdrawal:  true,
		domain.TransactionTypePenalty:     true,
		domain.TransactionTypeTransferOut: true,
	}
)

// requiredDetailFields maps each payment method type to the detail keys
// it must carry.
var requiredDetailFields = map[domain.PaymentMethodType][]string{
	domain.PaymentMethodBankAccount: {"bank_name", "account_number", "account_holder_name"},
	domain.PaymentMethodGCash:       {"phone_number"},
	domain.PaymentMethodPayMaya:     {"phone_number"},
	domain.PaymentMethodPayPal:      {"email"},
	domain.PaymentMethodCreditCard:  {"card_token"},
	domain.PaymentMethodDebitCard:   {"card_token"},
}

// ValidateTransaction parses the amount and enforces the sign policy for
// the declared type. Returns the parsed amount and type on success.
func (r *ProcessTransactionRequest) ValidateTransaction() (decimal.Decimal, domain.TransactionType, error) {
	txType := domain.TransactionType(r.Type)

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return decimal.Zero, "", apperror.ErrInvalidAmount("Amount must be a decimal number")
	}

	switch {
	case creditTypes[txType]:
		if !amount.IsPositive() {
			return decimal.Zero, "", apperror.ErrInvalidAmount(
				fmt.Sprintf("Amount must be positive for %s transactions", txType))
		}
	case debitTypes[txType]:
		if !amount.IsNegative() {
			return decimal.Zero, "", apperror.ErrInvalidAmount(
				fmt.Sprintf("Amount must be negative for %s transactions", txType))
		}
	default:
		return decimal.Zero, "", apperror.Validation(
			fmt.Sprintf("Unsupported transaction type: %s", r.Type))
	}

	return amount, txType, nil
}

// ValidateAmount parses the transfer amount, which must be strictly positive.
func (r *TransferRequest) ValidateAmount() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return decimal.Zero, apperror.ErrInvalidAmount("Amount must be a decimal number")
	}
	if !amount.IsPositive() {
		return decimal.Zero, apperror.ErrInvalidAmount("Transfer amount must be positive")
	}
	return amount, nil
}

// ValidatePaymentMethod checks the type and its required detail fields.
func (r *AddPaymentMethodRequest) ValidatePaymentMethod() (domain.PaymentMethodType, error) {
	pmType := domain.PaymentMethodType(r.Type)

	required, known := requiredDetailFields[pmType]
	if !known {
		switch pmType {
		case domain.PaymentMethodEWallet, domain.PaymentMethodCrypto:
			// No structural requirements beyond a non-empty details map.
		default:
			return "", apperror.Validation(fmt.Sprintf("Unsupported payment method type: %s", r.Type))
		}
	}

	var missing []string
	for _, field := range required {
		if r.Details[field] == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return "", apperror.Validation(
			fmt.Sprintf("Missing required payment details for %s: %s", r.Type, strings.Join(missing, ", ")))
	}

	return pmType, nil
}

// MaskPaymentDetails returns a copy of the details with sensitive values
// masked: account and card numbers keep their last 4 characters, phone
// numbers keep the first 2 and last 4.
func MaskPaymentDetails(details map[string]string) map[string]string {
	masked := make(map[string]string, len(details))
	for k, v := range details {
		masked[k] = v
	}

	if account, ok := masked["account_number"]; ok && len(account) > 4 {
		masked["account_number"] = strings.Repeat("*", len(account)-4) + account[len(account)-4:]
	}
	if card, ok := masked["card_number"]; ok && len(card) > 4 {
		masked["card_number"] = strings.Repeat("*", len(card)-4) + card[len(card)-4:]
	}
	if phone, ok := masked["phone_number"]; ok && len(phone) > 6 {
		masked["phone_number"] = phone[:2] + strings.Repeat("*", len(phone)-6) + phone[len(phone)-4:]
	}

	return masked
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				s := sanitize(elem.String())
				elem.SetString(s)
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
