package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sovannra/microfin/internal/domain"
)

type applicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

const applicationColumns = `
	app_id, branch_id, client_id, product_id, requested_amount, purpose_code,
	requested_term_months, repayment_frequency, application_status,
	created_at, updated_at
`

func (r *applicationRepository) Create(ctx context.Context, app *domain.LoanApplication) (*domain.LoanApplication, error) {
	query := `
		INSERT INTO loan_application (
			branch_id, client_id, product_id, requested_amount, purpose_code,
			requested_term_months, repayment_frequency, application_status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + applicationColumns

	now := time.Now()
	var created domain.LoanApplication
	err := r.db.GetContext(ctx, &created, query,
		app.BranchID,
		app.ClientID,
		app.ProductID,
		app.RequestedAmount,
		app.PurposeCode,
		app.RequestedTermMonth,
		app.RepaymentFrequency,
		app.ApplicationStatus,
		now,
		now,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *applicationRepository) GetByID(ctx context.Context, appID int64) (*domain.LoanApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM loan_application WHERE app_id = $1`

	var app domain.LoanApplication
	if err := r.db.GetContext(ctx, &app, query, appID); err != nil {
		return nil, err
	}

	return &app, nil
}

func (r *applicationRepository) GetDetail(ctx context.Context, appID int64) (*domain.ApplicationDetail, error) {
	query := `
		SELECT la.*, ck.first_name, ck.khmer_last_name, ck.latin_last_name,
			ck.national_id, lp.product_name, lp.currency, lp.interest_rate_pa
		FROM loan_application la
		JOIN client_kyc ck ON la.client_id = ck.client_id
		JOIN loan_products lp ON la.product_id = lp.product_id
		WHERE la.app_id = $1
	`

	var detail domain.ApplicationDetail
	if err := r.db.GetContext(ctx, &detail, query, appID); err != nil {
		return nil, err
	}

	return &detail, nil
}

func (r *applicationRepository) List(ctx context.Context, branchID, status string) ([]*domain.ApplicationDetail, error) {
	query := `
		SELECT la.*, ck.first_name, ck.khmer_last_name, ck.latin_last_name,
			ck.national_id, lp.product_name, lp.currency, lp.interest_rate_pa
		FROM loan_application la
		JOIN client_kyc ck ON la.client_id = ck.client_id
		JOIN loan_products lp ON la.product_id = lp.product_id
		WHERE 1=1
	`

	args := []interface{}{}
	if branchID != "" {
		args = append(args, branchID)
		query += ` AND la.branch_id = $1`
	}
	if status != "" {
		args = append(args, status)
		if len(args) == 1 {
			query += ` AND la.application_status = $1`
		} else {
			query += ` AND la.application_status = $2`
		}
	}

	query += ` ORDER BY la.created_at DESC`

	var apps []*domain.ApplicationDetail
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *applicationRepository) Update(ctx context.Context, app *domain.LoanApplication) error {
	query := `
		UPDATE loan_application
		SET requested_amount = $2, purpose_code = $3, requested_term_months = $4,
			repayment_frequency = $5, application_status = $6, updated_at = $7
		WHERE app_id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		app.AppID,
		app.RequestedAmount,
		app.PurposeCode,
		app.RequestedTermMonth,
		app.RepaymentFrequency,
		app.ApplicationStatus,
		time.Now(),
	)

	return err
}

func (r *applicationRepository) Delete(ctx context.Context, appID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM loan_application WHERE app_id = $1`, appID)
	return err
}
