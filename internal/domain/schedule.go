package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Persisted installment states. The base state is only ever mutated by the
// payment allocator; lateness for display is derived, not stored.
const (
	InstallmentStatusDue  = "due"
	InstallmentStatusPaid = "paid"
	InstallmentStatusLate = "late"
)

// Effective statuses reported by the status deriver. Grace-period membership
// is a subcategory of due, not a status of its own.
const (
	PaymentStatusDue  = "due"
	PaymentStatusPaid = "paid"
	PaymentStatusLate = "late"
)

// Installment is one row of a loan's repayment schedule.
// Invariant: TotalDue = PrincipalDue + InterestDue + FeeDue.
type Installment struct {
	ScheduleID    int64           `json:"schedule_id" db:"schedule_id"`
	LoanID        int64           `json:"loan_id" db:"loan_id"`
	InstallmentNo int             `json:"installment_no" db:"installment_no"`
	DueDate       time.Time       `json:"due_date" db:"due_date"`
	PrincipalDue  decimal.Decimal `json:"principal_due" db:"principal_due"`
	InterestDue   decimal.Decimal `json:"interest_due" db:"interest_due"`
	FeeDue        decimal.Decimal `json:"fee_due" db:"fee_due"`
	TotalDue      decimal.Decimal `json:"total_due" db:"total_due"`
	Status        string          `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// ScheduleStatus is the derived view of an installment relative to a
// reference date.
type ScheduleStatus struct {
	DaysOverdue          int    `json:"days_overdue"`
	IsInGracePeriod      bool   `json:"is_in_grace_period"`
	EffectiveStatus      string `json:"payment_status"`
	GracePeriodRemaining int    `json:"grace_period_remaining"`
}

// ScheduleEntry pairs a persisted installment with its derived view for
// schedule listings.
type ScheduleEntry struct {
	Installment
	ScheduleStatus
}

// BoardEntry is one card on the collections kanban board: an installment
// joined with its loan, client and product, plus the derived status fields.
type BoardEntry struct {
	Installment
	ClientID             int64           `json:"client_id" db:"client_id"`
	FirstName            string          `json:"first_name" db:"first_name"`
	KhmerLastName        string          `json:"khmer_last_name" db:"khmer_last_name"`
	LatinLastName        string          `json:"latin_last_name" db:"latin_last_name"`
	NationalID           string          `json:"national_id" db:"national_id"`
	PrimaryPhone         string          `json:"primary_phone" db:"primary_phone"`
	BranchID             string          `json:"branch_id" db:"branch_id"`
	PrincipalOutstanding decimal.Decimal `json:"principal_outstanding" db:"principal_outstanding"`
	InterestAccrued      decimal.Decimal `json:"interest_accrued" db:"interest_accrued"`
	AccountState         string          `json:"account_state" db:"account_state"`
	InstallmentAmount    decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	ProductName          string          `json:"product_name" db:"product_name"`
	GracePeriodDays      int             `json:"grace_period_days" db:"grace_period_days"`

	ClientName           string `json:"client_name" db:"-"`
	DaysOverdue          int    `json:"days_overdue" db:"-"`
	IsInGracePeriod      bool   `json:"is_in_grace_period" db:"-"`
	GracePeriodRemaining int    `json:"grace_period_remaining" db:"-"`
	PaymentStatus        string `json:"payment_status" db:"-"`
}

// Kanban date filters.
const (
	DateFilterToday    = "today"
	DateFilterOverdue  = "overdue"
	DateFilterUpcoming = "upcoming"
)

// BoardFilter selects which installments appear on the board.
type BoardFilter struct {
	BranchID   string
	Status     string
	DateFilter string
}
