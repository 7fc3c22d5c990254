package allocation

import (
	"time"

	"github.com/sovannra/microfin/internal/domain"
)

// DeriveStatus computes the overdue and grace-period view of an installment
// relative to a reference date. It is a pure function: callers pass the
// reference date explicitly so bulk board listings and tests stay
// deterministic.
//
// A paid installment reports zeroed overdue fields. An unpaid installment is
// late once its days overdue exceed the grace period; inside the grace period
// it still reports as due, since grace membership is advisory for collections
// prioritization rather than a status of its own. A negative grace period is
// treated as zero.
func DeriveStatus(inst *domain.Installment, gracePeriodDays int, referenceDate time.Time) domain.ScheduleStatus {
	if inst.Status == domain.InstallmentStatusPaid {
		return domain.ScheduleStatus{EffectiveStatus: domain.PaymentStatusPaid}
	}

	if gracePeriodDays < 0 {
		gracePeriodDays = 0
	}

	daysOverdue := daysBetween(inst.DueDate, referenceDate)
	if daysOverdue < 0 {
		daysOverdue = 0
	}

	status := domain.ScheduleStatus{
		DaysOverdue:     daysOverdue,
		IsInGracePeriod: daysOverdue > 0 && daysOverdue <= gracePeriodDays,
		EffectiveStatus: domain.PaymentStatusDue,
	}

	if remaining := gracePeriodDays - daysOverdue; remaining > 0 {
		status.GracePeriodRemaining = remaining
	}

	if daysOverdue > gracePeriodDays {
		status.EffectiveStatus = domain.PaymentStatusLate
	}

	return status
}

// daysBetween counts whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
