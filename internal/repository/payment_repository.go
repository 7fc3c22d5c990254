package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sovannra/microfin/internal/allocation"
	"github.com/sovannra/microfin/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Apply serializes payment application per loan: the loan row is locked FOR
// UPDATE for the duration of the transaction, so concurrent payments against
// the same loan queue behind each other while other loans are unaffected.
// Nothing is persisted unless the allocator succeeds and the commit goes
// through.
func (r *paymentRepository) Apply(ctx context.Context, loanID int64, allocate AllocatorFunc) (*allocation.Result, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	loanQuery := `
		SELECT loan_id, app_id, branch_id, principal_amount,
			principal_outstanding, interest_accrued, interest_rate_pa,
			installment_amount, total_installments, account_state,
			grace_period_days, disbursement_date, created_at, updated_at
		FROM loan_account
		WHERE loan_id = $1
		FOR UPDATE
	`

	var loan domain.LoanAccount
	if err = tx.GetContext(ctx, &loan, loanQuery, loanID); err != nil {
		return nil, err
	}

	dueQuery := `
		SELECT schedule_id, loan_id, installment_no, due_date, principal_due,
			interest_due, fee_due, total_due, status, created_at
		FROM repayment_schedule
		WHERE loan_id = $1 AND status = 'due'
		ORDER BY installment_no ASC
		FOR UPDATE
	`

	var due []*domain.Installment
	if err = tx.SelectContext(ctx, &due, dueQuery, loanID); err != nil {
		return nil, err
	}

	result, err := allocate(&loan, due)
	if err != nil {
		return nil, err
	}

	txnQuery := `
		INSERT INTO payment_transactions (
			transaction_id, loan_id, payment_date, amount_paid, principal_paid,
			interest_paid, fee_paid, payment_method, reference_no, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	txn := result.Transaction
	_, err = tx.ExecContext(ctx, txnQuery,
		txn.TransactionID,
		txn.LoanID,
		txn.PaymentDate,
		txn.AmountPaid,
		txn.PrincipalPaid,
		txn.InterestPaid,
		txn.FeePaid,
		txn.PaymentMethod,
		txn.ReferenceNo,
		txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	balanceQuery := `
		UPDATE loan_account
		SET principal_outstanding = $2, interest_accrued = $3, updated_at = $4
		WHERE loan_id = $1
	`

	_, err = tx.ExecContext(ctx, balanceQuery,
		loanID,
		result.PrincipalOutstanding,
		result.InterestAccrued,
		time.Now(),
	)
	if err != nil {
		return nil, err
	}

	if len(result.PaidInstallments) > 0 {
		markQuery, args, buildErr := sqlx.In(`
			UPDATE repayment_schedule
			SET status = 'paid'
			WHERE loan_id = ? AND installment_no IN (?)
		`, loanID, result.PaidInstallments)
		if buildErr != nil {
			return nil, buildErr
		}

		if _, err = tx.ExecContext(ctx, tx.Rebind(markQuery), args...); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *paymentRepository) ListByLoanID(ctx context.Context, loanID int64) ([]*domain.PaymentTransaction, error) {
	query := `
		SELECT transaction_id, loan_id, payment_date, amount_paid,
			principal_paid, interest_paid, fee_paid, payment_method,
			reference_no, created_at
		FROM payment_transactions
		WHERE loan_id = $1
		ORDER BY payment_date DESC
	`

	var payments []*domain.PaymentTransaction
	if err := r.db.SelectContext(ctx, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) TotalPaid(ctx context.Context, loanID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount_paid), 0)
		FROM payment_transactions
		WHERE loan_id = $1
	`

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, loanID); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
