package allocation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sovannra/microfin/internal/domain"
	"github.com/sovannra/microfin/pkg/errors"
)

func activeLoan() *domain.LoanAccount {
	return &domain.LoanAccount{
		LoanID:               100,
		BranchID:             "BR-001",
		PrincipalAmount:      decimal.NewFromInt(1000),
		PrincipalOutstanding: decimal.NewFromInt(800),
		InterestAccrued:      decimal.NewFromInt(120),
		AccountState:         domain.AccountStateActive,
		GracePeriodDays:      7,
	}
}

func dueInstallment(no int, total int64) *domain.Installment {
	t := decimal.NewFromInt(total)
	return &domain.Installment{
		ScheduleID:    int64(no),
		LoanID:        100,
		InstallmentNo: no,
		DueDate:       time.Date(2026, time.Month(no), 1, 0, 0, 0, 0, time.UTC),
		PrincipalDue:  t,
		InterestDue:   decimal.Zero,
		FeeDue:        decimal.Zero,
		TotalDue:      t,
		Status:        domain.InstallmentStatusDue,
	}
}

func paymentOf(amount int64) *domain.PaymentRequest {
	return &domain.PaymentRequest{
		LoanID:        100,
		AmountPaid:    decimal.NewFromInt(amount),
		PrincipalPaid: decimal.NewFromInt(amount),
		InterestPaid:  decimal.Zero,
		FeePaid:       decimal.Zero,
		PaymentMethod: "cash",
	}
}

func TestApplyCoversOldestInstallmentsFirst(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	due := []*domain.Installment{
		dueInstallment(1, 100),
		dueInstallment(2, 150),
	}

	result, err := Apply(activeLoan(), paymentOf(100), due, now)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, result.PaidInstallments)
	assert.True(t, result.Remaining.IsZero(), "remaining = %s", result.Remaining)
}

func TestApplyLeavesShortfallUnallocated(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	due := []*domain.Installment{
		dueInstallment(1, 100),
		dueInstallment(2, 150),
	}

	result, err := Apply(activeLoan(), paymentOf(120), due, now)
	require.NoError(t, err)

	// 120 covers the first installment in full; the 20 left cannot cover the
	// second, so it stays due and the surplus is reported back.
	assert.Equal(t, []int{1}, result.PaidInstallments)
	assert.True(t, result.Remaining.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, domain.InstallmentStatusDue, due[1].Status)
}

func TestApplyCoversMultipleInstallments(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	due := []*domain.Installment{
		dueInstallment(1, 100),
		dueInstallment(2, 150),
		dueInstallment(3, 150),
	}

	result, err := Apply(activeLoan(), paymentOf(260), due, now)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, result.PaidInstallments)
	assert.True(t, result.Remaining.Equal(decimal.NewFromInt(10)))
}

func TestApplyShortfallOnFirstInstallmentPaysNothing(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	due := []*domain.Installment{
		dueInstallment(1, 100),
		dueInstallment(2, 150),
	}

	result, err := Apply(activeLoan(), paymentOf(99), due, now)
	require.NoError(t, err)

	assert.Empty(t, result.PaidInstallments)
	assert.True(t, result.Remaining.Equal(decimal.NewFromInt(99)))
}

func TestApplyReducesBalances(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	loan := activeLoan()
	req := &domain.PaymentRequest{
		LoanID:        100,
		AmountPaid:    decimal.NewFromInt(100),
		PrincipalPaid: decimal.NewFromInt(80),
		InterestPaid:  decimal.NewFromInt(15),
		FeePaid:       decimal.NewFromInt(5),
	}

	result, err := Apply(loan, req, []*domain.Installment{dueInstallment(1, 100)}, now)
	require.NoError(t, err)

	assert.True(t, result.PrincipalOutstanding.Equal(decimal.NewFromInt(720)))
	assert.True(t, result.InterestAccrued.Equal(decimal.NewFromInt(105)))
	// Inputs stay untouched; the caller persists the result.
	assert.True(t, loan.PrincipalOutstanding.Equal(decimal.NewFromInt(800)))
}

func TestApplyClampsBalancesAtZero(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	loan := activeLoan()
	loan.PrincipalOutstanding = decimal.NewFromInt(50)
	loan.InterestAccrued = decimal.NewFromInt(10)

	req := &domain.PaymentRequest{
		LoanID:        100,
		AmountPaid:    decimal.NewFromInt(100),
		PrincipalPaid: decimal.NewFromInt(80),
		InterestPaid:  decimal.NewFromInt(20),
		FeePaid:       decimal.Zero,
	}

	result, err := Apply(loan, req, []*domain.Installment{dueInstallment(1, 100)}, now)
	require.NoError(t, err)

	assert.True(t, result.PrincipalOutstanding.IsZero())
	assert.True(t, result.InterestAccrued.IsZero())
}

func TestApplyRejectsInactiveLoan(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	for _, state := range []string{domain.AccountStateClosed, domain.AccountStateWrittenOff} {
		t.Run(state, func(t *testing.T) {
			loan := activeLoan()
			loan.AccountState = state
			due := []*domain.Installment{dueInstallment(1, 100)}

			result, err := Apply(loan, paymentOf(100), due, now)

			assert.Nil(t, result)
			require.Error(t, err)
			businessErr, ok := err.(*errors.BusinessError)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeInvalidLoanState, businessErr.Code)
			assert.Equal(t, domain.InstallmentStatusDue, due[0].Status)
		})
	}
}

func TestApplyValidation(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  *domain.PaymentRequest
		due  []*domain.Installment
	}{
		{
			name: "negative amount",
			req: &domain.PaymentRequest{
				LoanID:        100,
				AmountPaid:    decimal.NewFromInt(-50),
				PrincipalPaid: decimal.NewFromInt(-50),
			},
			due: []*domain.Installment{dueInstallment(1, 100)},
		},
		{
			name: "negative fee component",
			req: &domain.PaymentRequest{
				LoanID:        100,
				AmountPaid:    decimal.NewFromInt(100),
				PrincipalPaid: decimal.NewFromInt(110),
				FeePaid:       decimal.NewFromInt(-10),
			},
			due: []*domain.Installment{dueInstallment(1, 100)},
		},
		{
			name: "components do not sum to amount",
			req: &domain.PaymentRequest{
				LoanID:        100,
				AmountPaid:    decimal.NewFromInt(100),
				PrincipalPaid: decimal.NewFromInt(80),
				InterestPaid:  decimal.NewFromInt(15),
				FeePaid:       decimal.NewFromInt(10),
			},
			due: []*domain.Installment{dueInstallment(1, 100)},
		},
		{
			name: "installments out of order",
			req:  paymentOf(100),
			due: []*domain.Installment{
				dueInstallment(2, 150),
				dueInstallment(1, 100),
			},
		},
		{
			name: "duplicate installment number",
			req:  paymentOf(100),
			due: []*domain.Installment{
				dueInstallment(1, 100),
				dueInstallment(1, 100),
			},
		},
		{
			name: "malformed payment date",
			req: func() *domain.PaymentRequest {
				r := paymentOf(100)
				r.PaymentDate = "15-03-2026"
				return r
			}(),
			due: []*domain.Installment{dueInstallment(1, 100)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Apply(activeLoan(), tt.req, tt.due, now)

			assert.Nil(t, result)
			require.Error(t, err)
			businessErr, ok := err.(*errors.BusinessError)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeInvalidInput, businessErr.Code)
		})
	}
}

func TestApplyUsesExplicitPaymentDate(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	req := paymentOf(100)
	req.PaymentDate = "2026-03-10"

	result, err := Apply(activeLoan(), req, []*domain.Installment{dueInstallment(1, 100)}, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), result.Transaction.PaymentDate)
	assert.Equal(t, now, result.Transaction.CreatedAt)
}

func TestApplyWithNoDueInstallments(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	result, err := Apply(activeLoan(), paymentOf(100), nil, now)
	require.NoError(t, err)

	assert.Empty(t, result.PaidInstallments)
	assert.True(t, result.Remaining.Equal(decimal.NewFromInt(100)))
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", result.Transaction.TransactionID.String())
}
