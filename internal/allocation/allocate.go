package allocation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sovannra/microfin/internal/domain"
	"github.com/sovannra/microfin/pkg/errors"
)

// Result carries everything the persistence layer must commit atomically
// after a payment has been allocated: the ledger record, the clamped loan
// balances and the installments that became fully paid.
type Result struct {
	Transaction          *domain.PaymentTransaction
	PrincipalOutstanding decimal.Decimal
	InterestAccrued      decimal.Decimal
	PaidInstallments     []int
	Remaining            decimal.Decimal
}

// Apply allocates a single incoming payment against a loan's outstanding
// installments, oldest first, all-or-nothing per installment. An installment
// is only marked paid when the remaining funds cover its full total_due; a
// shortfall halts the walk and leaves that installment and all later ones
// untouched. Partial payments are visible only through the transaction
// ledger.
//
// Apply never mutates its inputs and performs no I/O; the caller persists
// the returned Result under a transaction keyed by the loan.
func Apply(loan *domain.LoanAccount, req *domain.PaymentRequest, dueInstallments []*domain.Installment, now time.Time) (*Result, error) {
	if loan.AccountState != domain.AccountStateActive {
		return nil, errors.WrapInvalidLoanState(loan.LoanID, loan.AccountState)
	}
	if err := validate(req, dueInstallments); err != nil {
		return nil, err
	}

	paymentDate := now
	if req.PaymentDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			return nil, errors.WrapInvalidInput("payment_date must be formatted as YYYY-MM-DD")
		}
		paymentDate = parsed
	}

	tx := &domain.PaymentTransaction{
		TransactionID: uuid.New(),
		LoanID:        loan.LoanID,
		PaymentDate:   paymentDate,
		AmountPaid:    req.AmountPaid,
		PrincipalPaid: req.PrincipalPaid,
		InterestPaid:  req.InterestPaid,
		FeePaid:       req.FeePaid,
		PaymentMethod: req.PaymentMethod,
		ReferenceNo:   req.ReferenceNo,
		CreatedAt:     now,
	}

	result := &Result{
		Transaction:          tx,
		PrincipalOutstanding: clampZero(loan.PrincipalOutstanding.Sub(req.PrincipalPaid)),
		InterestAccrued:      clampZero(loan.InterestAccrued.Sub(req.InterestPaid)),
		Remaining:            req.AmountPaid,
	}

	for _, inst := range dueInstallments {
		if result.Remaining.LessThan(inst.TotalDue) {
			break
		}
		result.Remaining = result.Remaining.Sub(inst.TotalDue)
		result.PaidInstallments = append(result.PaidInstallments, inst.InstallmentNo)
	}

	return result, nil
}

func validate(req *domain.PaymentRequest, dueInstallments []*domain.Installment) error {
	for name, amount := range map[string]decimal.Decimal{
		"amount_paid":    req.AmountPaid,
		"principal_paid": req.PrincipalPaid,
		"interest_paid":  req.InterestPaid,
		"fee_paid":       req.FeePaid,
	} {
		if amount.IsNegative() {
			return errors.WrapInvalidInput(name + " must not be negative")
		}
	}

	components := req.PrincipalPaid.Add(req.InterestPaid).Add(req.FeePaid)
	if !req.AmountPaid.Equal(components) {
		return errors.WrapInvalidInput("amount_paid must equal principal_paid + interest_paid + fee_paid")
	}

	// Allocation order is an explicit contract, not an assumption: the caller
	// supplies due installments in ascending installment_no order.
	for i := 1; i < len(dueInstallments); i++ {
		if dueInstallments[i].InstallmentNo <= dueInstallments[i-1].InstallmentNo {
			return errors.WrapInvalidInput("due installments must be ordered by ascending installment_no")
		}
	}

	return nil
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
