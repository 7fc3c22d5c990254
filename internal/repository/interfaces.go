package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sovannra/microfin/internal/allocation"
	"github.com/sovannra/microfin/internal/domain"
)

// AllocatorFunc runs the pure payment allocation against rows loaded under
// the repository's transaction. The repository persists the returned result
// before committing; any error rolls the whole operation back.
type AllocatorFunc func(loan *domain.LoanAccount, due []*domain.Installment) (*allocation.Result, error)

// ClientRepository defines the interface for client KYC data operations
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (*domain.Client, error)

	GetByID(ctx context.Context, clientID int64) (*domain.Client, error)

	GetByNationalID(ctx context.Context, nationalID string) (*domain.Client, error)

	List(ctx context.Context, branchID string) ([]*domain.Client, error)

	Update(ctx context.Context, client *domain.Client) error

	Delete(ctx context.Context, clientID int64) error

	// CountActiveLoans counts active loan accounts held by the client
	CountActiveLoans(ctx context.Context, clientID int64) (int, error)

	GetSocioEco(ctx context.Context, clientID int64) (*domain.SocioEco, error)

	UpsertSocioEco(ctx context.Context, socio *domain.SocioEco) error
}

// ProductRepository defines the interface for loan product catalog reads
type ProductRepository interface {
	List(ctx context.Context) ([]*domain.LoanProduct, error)

	GetByID(ctx context.Context, productID int64) (*domain.LoanProduct, error)
}

// ApplicationRepository defines the interface for loan application operations
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.LoanApplication) (*domain.LoanApplication, error)

	GetByID(ctx context.Context, appID int64) (*domain.LoanApplication, error)

	GetDetail(ctx context.Context, appID int64) (*domain.ApplicationDetail, error)

	List(ctx context.Context, branchID, status string) ([]*domain.ApplicationDetail, error)

	Update(ctx context.Context, app *domain.LoanApplication) error

	Delete(ctx context.Context, appID int64) error
}

// LoanRepository defines the interface for loan account and schedule operations
type LoanRepository interface {
	// CreateAccountWithSchedule opens the account and inserts the full
	// repayment schedule in one transaction
	CreateAccountWithSchedule(ctx context.Context, account *domain.LoanAccount, schedule []*domain.Installment) (*domain.LoanAccount, error)

	GetAccountByID(ctx context.Context, loanID int64) (*domain.LoanAccount, error)

	ListActiveAccounts(ctx context.Context, branchID string) ([]*domain.AccountDetail, error)

	GetScheduleByLoanID(ctx context.Context, loanID int64) ([]*domain.Installment, error)

	// ListBoard loads installments joined with client, account and product
	// for the collections board, filtered per the kanban columns
	ListBoard(ctx context.Context, filter domain.BoardFilter, referenceDate time.Time) ([]*domain.BoardEntry, error)
}

// PaymentRepository defines the interface for payment application and history
type PaymentRepository interface {
	// Apply loads the loan and its due installments under a row lock, runs
	// the allocator and persists transaction, balances and installment
	// statuses atomically. Concurrent payments against the same loan
	// serialize on the lock; different loans proceed in parallel.
	Apply(ctx context.Context, loanID int64, allocate AllocatorFunc) (*allocation.Result, error)

	ListByLoanID(ctx context.Context, loanID int64) ([]*domain.PaymentTransaction, error)

	// TotalPaid sums the ledger for a loan
	TotalPaid(ctx context.Context, loanID int64) (decimal.Decimal, error)
}
