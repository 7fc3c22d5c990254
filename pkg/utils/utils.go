package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleLine is one generated repayment period. The sum invariant
// Total = Principal + Interest + Fee holds by construction.
type ScheduleLine struct {
	InstallmentNo int
	DueDate       time.Time
	Principal     decimal.Decimal
	Interest      decimal.Decimal
	Fee           decimal.Decimal
	Total         decimal.Decimal
}

var twelve = decimal.NewFromInt(12)

// GenerateFlatSchedule splits the principal evenly across the term and
// charges the same interest every period, computed on the original principal.
// Due dates fall monthly starting one month after disbursement.
func GenerateFlatSchedule(principal, annualRate, feePerPeriod decimal.Decimal, termMonths int, disbursed time.Time) []ScheduleLine {
	if termMonths <= 0 || principal.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	term := decimal.NewFromInt(int64(termMonths))
	monthlyPrincipal := principal.Div(term).Round(2)
	monthlyInterest := principal.Mul(annualRate).Div(twelve).Round(2)

	lines := make([]ScheduleLine, 0, termMonths)
	allocated := decimal.Zero
	for no := 1; no <= termMonths; no++ {
		p := monthlyPrincipal
		if no == termMonths {
			// Absorb rounding drift so the principal column sums exactly.
			p = principal.Sub(allocated)
		}
		allocated = allocated.Add(p)

		lines = append(lines, ScheduleLine{
			InstallmentNo: no,
			DueDate:       disbursed.AddDate(0, no, 0),
			Principal:     p,
			Interest:      monthlyInterest,
			Fee:           feePerPeriod,
			Total:         p.Add(monthlyInterest).Add(feePerPeriod),
		})
	}

	return lines
}

// GenerateDecliningSchedule splits the principal evenly across the term and
// charges interest each period on the remaining balance, so the interest
// component declines over the life of the loan.
func GenerateDecliningSchedule(principal, annualRate, feePerPeriod decimal.Decimal, termMonths int, disbursed time.Time) []ScheduleLine {
	if termMonths <= 0 || principal.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	term := decimal.NewFromInt(int64(termMonths))
	monthlyPrincipal := principal.Div(term).Round(2)
	monthlyRate := annualRate.Div(twelve)

	lines := make([]ScheduleLine, 0, termMonths)
	remaining := principal
	for no := 1; no <= termMonths; no++ {
		p := monthlyPrincipal
		if no == termMonths {
			p = remaining
		}

		interest := remaining.Mul(monthlyRate).Round(2)
		remaining = remaining.Sub(p)

		lines = append(lines, ScheduleLine{
			InstallmentNo: no,
			DueDate:       disbursed.AddDate(0, no, 0),
			Principal:     p,
			Interest:      interest,
			Fee:           feePerPeriod,
			Total:         p.Add(interest).Add(feePerPeriod),
		})
	}

	return lines
}

// TruncateToDay drops the time-of-day component in UTC.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SumInterest totals the interest column of a generated schedule. Used to
// seed interest_accrued when an account is opened.
func SumInterest(lines []ScheduleLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Interest)
	}
	return total
}
