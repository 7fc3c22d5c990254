package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountStateActive     = "active"
	AccountStateClosed     = "closed"
	AccountStateWrittenOff = "written_off"
)

// LoanAccount is a disbursed loan with running balances. Balances only ever
// decrease under payment application and are never allowed below zero.
type LoanAccount struct {
	LoanID               int64           `json:"loan_id" db:"loan_id"`
	AppID                int64           `json:"app_id" db:"app_id"`
	BranchID             string          `json:"branch_id" db:"branch_id"`
	PrincipalAmount      decimal.Decimal `json:"principal_amount" db:"principal_amount"`
	PrincipalOutstanding decimal.Decimal `json:"principal_outstanding" db:"principal_outstanding"`
	InterestAccrued      decimal.Decimal `json:"interest_accrued" db:"interest_accrued"`
	InterestRatePA       decimal.Decimal `json:"interest_rate_pa" db:"interest_rate_pa"`
	InstallmentAmount    decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	TotalInstallments    int             `json:"total_installments" db:"total_installments"`
	AccountState         string          `json:"account_state" db:"account_state"`
	GracePeriodDays      int             `json:"grace_period_days" db:"grace_period_days"`
	DisbursementDate     time.Time       `json:"disbursement_date" db:"disbursement_date"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// AccountDetail joins client and product context for account listings.
type AccountDetail struct {
	LoanAccount
	ClientID      int64  `json:"client_id" db:"client_id"`
	ProductID     int64  `json:"product_id" db:"product_id"`
	FirstName     string `json:"first_name" db:"first_name"`
	KhmerLastName string `json:"khmer_last_name" db:"khmer_last_name"`
	LatinLastName string `json:"latin_last_name" db:"latin_last_name"`
	NationalID    string `json:"national_id" db:"national_id"`
	ProductName   string `json:"product_name" db:"product_name"`
	Currency      string `json:"currency" db:"currency"`
}

type DisburseRequest struct {
	BranchID         string `json:"branch_id"`
	DisbursementDate string `json:"disbursement_date" validate:"omitempty,datetime=2006-01-02"`
}

type DisburseResponse struct {
	Account  *LoanAccount   `json:"account"`
	Schedule []*Installment `json:"schedule"`
}
