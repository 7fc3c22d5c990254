package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound            = errors.New("loan not found")
	ErrClientNotFound          = errors.New("client not found")
	ErrProductNotFound         = errors.New("loan product not found")
	ErrApplicationNotFound     = errors.New("loan application not found")
	ErrInvalidLoanState        = errors.New("loan is not active")
	ErrInvalidInput            = errors.New("invalid input")
	ErrDuplicateNationalID     = errors.New("client with this national ID already exists")
	ErrClientHasActiveLoans    = errors.New("client has active loans")
	ErrApplicationNotDeletable = errors.New("only draft or rejected applications can be deleted")
	ErrTermOutOfRange          = errors.New("requested term is outside product limits")
	ErrApplicationNotApproved  = errors.New("application is not approved")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeLoanNotFound            = "LOAN_NOT_FOUND"
	ErrCodeClientNotFound          = "CLIENT_NOT_FOUND"
	ErrCodeProductNotFound         = "PRODUCT_NOT_FOUND"
	ErrCodeApplicationNotFound     = "APPLICATION_NOT_FOUND"
	ErrCodeInvalidLoanState        = "INVALID_LOAN_STATE"
	ErrCodeInvalidInput            = "INVALID_INPUT"
	ErrCodeDuplicateNationalID     = "DUPLICATE_NATIONAL_ID"
	ErrCodeClientHasActiveLoans    = "CLIENT_HAS_ACTIVE_LOANS"
	ErrCodeApplicationNotDeletable = "APPLICATION_NOT_DELETABLE"
	ErrCodeTermOutOfRange          = "TERM_OUT_OF_RANGE"
	ErrCodeApplicationNotApproved  = "APPLICATION_NOT_APPROVED"
	ErrCodeDatabaseError           = "DATABASE_ERROR"
	ErrCodeCacheError              = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapLoanNotFound(loanID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %d not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapClientNotFound(clientID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeClientNotFound,
		fmt.Sprintf("Client with ID %d not found", clientID),
		ErrClientNotFound,
	)
}

func WrapProductNotFound(productID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeProductNotFound,
		fmt.Sprintf("Loan product with ID %d not found", productID),
		ErrProductNotFound,
	)
}

func WrapApplicationNotFound(appID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeApplicationNotFound,
		fmt.Sprintf("Loan application with ID %d not found", appID),
		ErrApplicationNotFound,
	)
}

func WrapInvalidLoanState(loanID int64, state string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoanState,
		fmt.Sprintf("Loan with ID %d is %s, payments are only accepted on active loans", loanID, state),
		ErrInvalidLoanState,
	)
}

func WrapInvalidInput(message string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidInput,
		message,
		ErrInvalidInput,
	)
}

func WrapDuplicateNationalID(nationalID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateNationalID,
		fmt.Sprintf("Client with national ID %s already exists", nationalID),
		ErrDuplicateNationalID,
	)
}

func WrapClientHasActiveLoans(clientID int64, count int) *BusinessError {
	return NewBusinessError(
		ErrCodeClientHasActiveLoans,
		fmt.Sprintf("Client with ID %d has %d active loans and cannot be deleted", clientID, count),
		ErrClientHasActiveLoans,
	)
}

func WrapTermOutOfRange(minTerm, maxTerm int) *BusinessError {
	return NewBusinessError(
		ErrCodeTermOutOfRange,
		fmt.Sprintf("Term must be between %d and %d months", minTerm, maxTerm),
		ErrTermOutOfRange,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
