package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/sovannra/microfin/internal/domain"
)

type productRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `
	product_id, product_name, currency, interest_rate_pa, min_term, max_term,
	grace_period_days, method, fee_per_period, created_at
`

func (r *productRepository) List(ctx context.Context) ([]*domain.LoanProduct, error) {
	query := `SELECT ` + productColumns + ` FROM loan_products ORDER BY product_name`

	var products []*domain.LoanProduct
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepository) GetByID(ctx context.Context, productID int64) (*domain.LoanProduct, error) {
	query := `SELECT ` + productColumns + ` FROM loan_products WHERE product_id = $1`

	var product domain.LoanProduct
	if err := r.db.GetContext(ctx, &product, query, productID); err != nil {
		return nil, err
	}

	return &product, nil
}
