package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sovannra/microfin/internal/domain"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

const accountColumns = `
	la.loan_id, la.app_id, la.branch_id, la.principal_amount,
	la.principal_outstanding, la.interest_accrued, la.interest_rate_pa,
	la.installment_amount, la.total_installments, la.account_state,
	la.grace_period_days, la.disbursement_date, la.created_at, la.updated_at
`

func (r *loanRepository) CreateAccountWithSchedule(ctx context.Context, account *domain.LoanAccount, schedule []*domain.Installment) (*domain.LoanAccount, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	accountQuery := `
		INSERT INTO loan_account (
			app_id, branch_id, principal_amount, principal_outstanding,
			interest_accrued, interest_rate_pa, installment_amount,
			total_installments, account_state, grace_period_days,
			disbursement_date, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING loan_id, app_id, branch_id, principal_amount,
			principal_outstanding, interest_accrued, interest_rate_pa,
			installment_amount, total_installments, account_state,
			grace_period_days, disbursement_date, created_at, updated_at
	`

	now := time.Now()
	var created domain.LoanAccount
	err = tx.GetContext(ctx, &created, accountQuery,
		account.AppID,
		account.BranchID,
		account.PrincipalAmount,
		account.PrincipalOutstanding,
		account.InterestAccrued,
		account.InterestRatePA,
		account.InstallmentAmount,
		account.TotalInstallments,
		account.AccountState,
		account.GracePeriodDays,
		account.DisbursementDate,
		now,
		now,
	)
	if err != nil {
		return nil, err
	}

	scheduleQuery := `
		INSERT INTO repayment_schedule (
			loan_id, installment_no, due_date, principal_due, interest_due,
			fee_due, total_due, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, inst := range schedule {
		_, err = tx.ExecContext(ctx, scheduleQuery,
			created.LoanID,
			inst.InstallmentNo,
			inst.DueDate,
			inst.PrincipalDue,
			inst.InterestDue,
			inst.FeeDue,
			inst.TotalDue,
			inst.Status,
			now,
		)
		if err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *loanRepository) GetAccountByID(ctx context.Context, loanID int64) (*domain.LoanAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM loan_account la WHERE la.loan_id = $1`

	var account domain.LoanAccount
	if err := r.db.GetContext(ctx, &account, query, loanID); err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *loanRepository) ListActiveAccounts(ctx context.Context, branchID string) ([]*domain.AccountDetail, error) {
	query := `
		SELECT ` + accountColumns + `,
			lapp.client_id, lapp.product_id,
			ck.first_name, ck.khmer_last_name, ck.latin_last_name, ck.national_id,
			lp.product_name, lp.currency
		FROM loan_account la
		JOIN loan_application lapp ON la.app_id = lapp.app_id
		JOIN client_kyc ck ON lapp.client_id = ck.client_id
		JOIN loan_products lp ON lapp.product_id = lp.product_id
		WHERE la.account_state = 'active'
	`

	args := []interface{}{}
	if branchID != "" {
		args = append(args, branchID)
		query += ` AND la.branch_id = $1`
	}

	query += ` ORDER BY la.created_at DESC`

	var accounts []*domain.AccountDetail
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, err
	}

	return accounts, nil
}

func (r *loanRepository) GetScheduleByLoanID(ctx context.Context, loanID int64) ([]*domain.Installment, error) {
	query := `
		SELECT schedule_id, loan_id, installment_no, due_date, principal_due,
			interest_due, fee_due, total_due, status, created_at
		FROM repayment_schedule
		WHERE loan_id = $1
		ORDER BY installment_no
	`

	var schedule []*domain.Installment
	if err := r.db.SelectContext(ctx, &schedule, query, loanID); err != nil {
		return nil, err
	}

	return schedule, nil
}

func (r *loanRepository) ListBoard(ctx context.Context, filter domain.BoardFilter, referenceDate time.Time) ([]*domain.BoardEntry, error) {
	query := `
		SELECT rs.schedule_id, rs.loan_id, rs.installment_no, rs.due_date,
			rs.principal_due, rs.interest_due, rs.fee_due, rs.total_due,
			rs.status, rs.created_at,
			ck.client_id, ck.first_name, ck.khmer_last_name, ck.latin_last_name,
			ck.national_id, ck.primary_phone,
			la.branch_id, la.principal_outstanding, la.interest_accrued,
			la.account_state, la.installment_amount, la.grace_period_days,
			lp.product_name
		FROM repayment_schedule rs
		JOIN loan_account la ON rs.loan_id = la.loan_id
		JOIN loan_application lapp ON la.app_id = lapp.app_id
		JOIN client_kyc ck ON lapp.client_id = ck.client_id
		JOIN loan_products lp ON lapp.product_id = lp.product_id
		WHERE la.account_state = 'active'
	`

	args := []interface{}{}
	next := func() string {
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.BranchID != "" {
		args = append(args, filter.BranchID)
		query += ` AND la.branch_id = ` + next()
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND rs.status = ` + next()
	}

	switch filter.DateFilter {
	case domain.DateFilterToday:
		args = append(args, referenceDate)
		query += ` AND rs.due_date::date = ` + next() + `::date AND rs.status = 'due'`
	case domain.DateFilterOverdue:
		args = append(args, referenceDate)
		query += ` AND rs.due_date::date < ` + next() + `::date AND rs.status = 'due'`
	case domain.DateFilterUpcoming:
		args = append(args, referenceDate)
		query += ` AND rs.due_date::date > ` + next() + `::date AND rs.status = 'due'`
	}

	query += ` ORDER BY rs.due_date ASC, ck.first_name ASC`

	var entries []*domain.BoardEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, err
	}

	return entries, nil
}
