package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sovannra/microfin/internal/domain"
)

type clientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = `
	client_id, branch_id, national_id, first_name, khmer_last_name,
	latin_last_name, sex, date_of_birth, primary_phone, alt_phone, email,
	village_commune_district_province, created_at, updated_at
`

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	query := `
		INSERT INTO client_kyc (
			branch_id, national_id, first_name, khmer_last_name, latin_last_name,
			sex, date_of_birth, primary_phone, alt_phone, email,
			village_commune_district_province, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + clientColumns

	now := time.Now()
	var created domain.Client
	err := r.db.GetContext(ctx, &created, query,
		client.BranchID,
		client.NationalID,
		client.FirstName,
		client.KhmerLastName,
		client.LatinLastName,
		client.Sex,
		client.DateOfBirth,
		client.PrimaryPhone,
		client.AltPhone,
		client.Email,
		client.VillageAddress,
		now,
		now,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *clientRepository) GetByID(ctx context.Context, clientID int64) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM client_kyc WHERE client_id = $1`

	var client domain.Client
	if err := r.db.GetContext(ctx, &client, query, clientID); err != nil {
		return nil, err
	}

	return &client, nil
}

func (r *clientRepository) GetByNationalID(ctx context.Context, nationalID string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM client_kyc WHERE national_id = $1`

	var client domain.Client
	if err := r.db.GetContext(ctx, &client, query, nationalID); err != nil {
		return nil, err
	}

	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, branchID string) ([]*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM client_kyc`
	args := []interface{}{}

	if branchID != "" {
		query += ` WHERE branch_id = $1`
		args = append(args, branchID)
	}

	query += ` ORDER BY created_at DESC`

	var clients []*domain.Client
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, err
	}

	return clients, nil
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE client_kyc
		SET first_name = $2, khmer_last_name = $3, latin_last_name = $4,
			sex = $5, date_of_birth = $6, primary_phone = $7, alt_phone = $8,
			email = $9, village_commune_district_province = $10, updated_at = $11
		WHERE client_id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		client.ClientID,
		client.FirstName,
		client.KhmerLastName,
		client.LatinLastName,
		client.Sex,
		client.DateOfBirth,
		client.PrimaryPhone,
		client.AltPhone,
		client.Email,
		client.VillageAddress,
		time.Now(),
	)

	return err
}

func (r *clientRepository) Delete(ctx context.Context, clientID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM client_kyc WHERE client_id = $1`, clientID)
	return err
}

func (r *clientRepository) CountActiveLoans(ctx context.Context, clientID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM loan_account la
		JOIN loan_application lapp ON la.app_id = lapp.app_id
		WHERE lapp.client_id = $1 AND la.account_state = 'active'
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, clientID); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *clientRepository) GetSocioEco(ctx context.Context, clientID int64) (*domain.SocioEco, error) {
	query := `
		SELECT client_id, occupation, employer_name, monthly_income_usd,
			household_size, education_level, cbc_score
		FROM client_socio_eco
		WHERE client_id = $1
	`

	var socio domain.SocioEco
	if err := r.db.GetContext(ctx, &socio, query, clientID); err != nil {
		return nil, err
	}

	return &socio, nil
}

func (r *clientRepository) UpsertSocioEco(ctx context.Context, socio *domain.SocioEco) error {
	query := `
		INSERT INTO client_socio_eco (
			client_id, occupation, employer_name, monthly_income_usd,
			household_size, education_level, cbc_score
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (client_id) DO UPDATE SET
			occupation = EXCLUDED.occupation,
			employer_name = EXCLUDED.employer_name,
			monthly_income_usd = EXCLUDED.monthly_income_usd,
			household_size = EXCLUDED.household_size,
			education_level = EXCLUDED.education_level,
			cbc_score = EXCLUDED.cbc_score
	`

	_, err := r.db.ExecContext(ctx, query,
		socio.ClientID,
		socio.Occupation,
		socio.EmployerName,
		socio.MonthlyIncomeUSD,
		socio.HouseholdSize,
		socio.EducationLevel,
		socio.CBCScore,
	)

	return err
}
