package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ApplicationStatusDraft     = "draft"
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusApproved  = "approved"
	ApplicationStatusRejected  = "rejected"
)

// LoanApplication is a client's request for a loan under a product.
type LoanApplication struct {
	AppID              int64           `json:"app_id" db:"app_id"`
	BranchID           string          `json:"branch_id" db:"branch_id"`
	ClientID           int64           `json:"client_id" db:"client_id"`
	ProductID          int64           `json:"product_id" db:"product_id"`
	RequestedAmount    decimal.Decimal `json:"requested_amount" db:"requested_amount"`
	PurposeCode        string          `json:"purpose_code" db:"purpose_code"`
	RequestedTermMonth int             `json:"requested_term_months" db:"requested_term_months"`
	RepaymentFrequency string          `json:"repayment_frequency" db:"repayment_frequency"`
	ApplicationStatus  string          `json:"application_status" db:"application_status"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// ApplicationDetail joins client and product context for listings.
type ApplicationDetail struct {
	LoanApplication
	FirstName     string          `json:"first_name" db:"first_name"`
	KhmerLastName string          `json:"khmer_last_name" db:"khmer_last_name"`
	LatinLastName string          `json:"latin_last_name" db:"latin_last_name"`
	NationalID    string          `json:"national_id" db:"national_id"`
	ProductName   string          `json:"product_name" db:"product_name"`
	Currency      string          `json:"currency" db:"currency"`
	InterestRate  decimal.Decimal `json:"interest_rate_pa" db:"interest_rate_pa"`
}

type CreateApplicationRequest struct {
	BranchID           string          `json:"branch_id" validate:"required"`
	ClientID           int64           `json:"client_id" validate:"required,gt=0"`
	ProductID          int64           `json:"product_id" validate:"required,gt=0"`
	RequestedAmount    decimal.Decimal `json:"requested_amount" validate:"required"`
	PurposeCode        string          `json:"purpose_code"`
	RequestedTermMonth int             `json:"requested_term_months" validate:"required,gt=0"`
	RepaymentFrequency string          `json:"repayment_frequency" validate:"omitempty,oneof=weekly monthly"`
	ApplicationStatus  string          `json:"application_status" validate:"omitempty,oneof=draft submitted approved rejected"`
}

type UpdateApplicationRequest struct {
	RequestedAmount    *decimal.Decimal `json:"requested_amount"`
	PurposeCode        *string          `json:"purpose_code"`
	RequestedTermMonth *int             `json:"requested_term_months" validate:"omitempty,gt=0"`
	RepaymentFrequency *string          `json:"repayment_frequency" validate:"omitempty,oneof=weekly monthly"`
	ApplicationStatus  *string          `json:"application_status" validate:"omitempty,oneof=draft submitted approved rejected"`
}
