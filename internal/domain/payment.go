package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentTransaction is an immutable ledger record of an applied payment.
// Invariant: AmountPaid = PrincipalPaid + InterestPaid + FeePaid.
type PaymentTransaction struct {
	TransactionID uuid.UUID       `json:"transaction_id" db:"transaction_id"`
	LoanID        int64           `json:"loan_id" db:"loan_id"`
	PaymentDate   time.Time       `json:"payment_date" db:"payment_date"`
	AmountPaid    decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	PrincipalPaid decimal.Decimal `json:"principal_paid" db:"principal_paid"`
	InterestPaid  decimal.Decimal `json:"interest_paid" db:"interest_paid"`
	FeePaid       decimal.Decimal `json:"fee_paid" db:"fee_paid"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	ReferenceNo   string          `json:"reference_no" db:"reference_no"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

type PaymentRequest struct {
	LoanID        int64           `json:"loan_id" validate:"required,gt=0"`
	AmountPaid    decimal.Decimal `json:"amount_paid" validate:"required"`
	PrincipalPaid decimal.Decimal `json:"principal_paid"`
	InterestPaid  decimal.Decimal `json:"interest_paid"`
	FeePaid       decimal.Decimal `json:"fee_paid"`
	PaymentDate   string          `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string          `json:"payment_method"`
	ReferenceNo   string          `json:"reference_no"`
}

type PaymentResponse struct {
	Transaction          *PaymentTransaction `json:"transaction"`
	PrincipalOutstanding decimal.Decimal     `json:"principal_outstanding"`
	InterestAccrued      decimal.Decimal     `json:"interest_accrued"`
	PaidInstallments     []int               `json:"paid_installments"`
}

// PaymentRecordedEvent is published to the ledger topic after a payment has
// been committed.
type PaymentRecordedEvent struct {
	TransactionID        uuid.UUID       `json:"transaction_id"`
	LoanID               int64           `json:"loan_id"`
	BranchID             string          `json:"branch_id"`
	AmountPaid           decimal.Decimal `json:"amount_paid"`
	PrincipalPaid        decimal.Decimal `json:"principal_paid"`
	InterestPaid         decimal.Decimal `json:"interest_paid"`
	FeePaid              decimal.Decimal `json:"fee_paid"`
	PrincipalOutstanding decimal.Decimal `json:"principal_outstanding"`
	PaidInstallments     []int           `json:"paid_installments"`
	PaymentDate          time.Time       `json:"payment_date"`
}
