package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amortization methods supported by the schedule generator.
const (
	MethodFlat      = "flat"
	MethodDeclining = "declining"
)

// LoanProduct describes a loan offering from the catalog. Grace period and
// interest rate flow from here to the accounts opened under the product.
type LoanProduct struct {
	ProductID       int64           `json:"product_id" db:"product_id"`
	ProductName     string          `json:"product_name" db:"product_name"`
	Currency        string          `json:"currency" db:"currency"`
	InterestRatePA  decimal.Decimal `json:"interest_rate_pa" db:"interest_rate_pa"`
	MinTerm         int             `json:"min_term" db:"min_term"`
	MaxTerm         int             `json:"max_term" db:"max_term"`
	GracePeriodDays int             `json:"grace_period_days" db:"grace_period_days"`
	Method          string          `json:"method" db:"method"`
	FeePerPeriod    decimal.Decimal `json:"fee_per_period" db:"fee_per_period"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}
