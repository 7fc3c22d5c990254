package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/sovannra/microfin/internal/allocation"
	"github.com/sovannra/microfin/internal/domain"
	"github.com/sovannra/microfin/internal/repository"
)

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	args := m.Called(ctx, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) GetByID(ctx context.Context, clientID int64) (*domain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) GetByNationalID(ctx context.Context, nationalID string) (*domain.Client, error) {
	args := m.Called(ctx, nationalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) List(ctx context.Context, branchID string) ([]*domain.Client, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Client), args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, client *domain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, clientID int64) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

func (m *MockClientRepository) CountActiveLoans(ctx context.Context, clientID int64) (int, error) {
	args := m.Called(ctx, clientID)
	return args.Int(0), args.Error(1)
}

func (m *MockClientRepository) GetSocioEco(ctx context.Context, clientID int64) (*domain.SocioEco, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SocioEco), args.Error(1)
}

func (m *MockClientRepository) UpsertSocioEco(ctx context.Context, socio *domain.SocioEco) error {
	args := m.Called(ctx, socio)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context) ([]*domain.LoanProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanProduct), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, productID int64) (*domain.LoanProduct, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanProduct), args.Error(1)
}

type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *domain.LoanApplication) (*domain.LoanApplication, error) {
	args := m.Called(ctx, app)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationRepository) GetByID(ctx context.Context, appID int64) (*domain.LoanApplication, error) {
	args := m.Called(ctx, appID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationRepository) GetDetail(ctx context.Context, appID int64) (*domain.ApplicationDetail, error) {
	args := m.Called(ctx, appID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApplicationDetail), args.Error(1)
}

func (m *MockApplicationRepository) List(ctx context.Context, branchID, status string) ([]*domain.ApplicationDetail, error) {
	args := m.Called(ctx, branchID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ApplicationDetail), args.Error(1)
}

func (m *MockApplicationRepository) Update(ctx context.Context, app *domain.LoanApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) Delete(ctx context.Context, appID int64) error {
	args := m.Called(ctx, appID)
	return args.Error(0)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) CreateAccountWithSchedule(ctx context.Context, account *domain.LoanAccount, schedule []*domain.Installment) (*domain.LoanAccount, error) {
	args := m.Called(ctx, account, schedule)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanAccount), args.Error(1)
}

func (m *MockLoanRepository) GetAccountByID(ctx context.Context, loanID int64) (*domain.LoanAccount, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanAccount), args.Error(1)
}

func (m *MockLoanRepository) ListActiveAccounts(ctx context.Context, branchID string) ([]*domain.AccountDetail, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AccountDetail), args.Error(1)
}

func (m *MockLoanRepository) GetScheduleByLoanID(ctx context.Context, loanID int64) ([]*domain.Installment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockLoanRepository) ListBoard(ctx context.Context, filter domain.BoardFilter, referenceDate time.Time) ([]*domain.BoardEntry, error) {
	args := m.Called(ctx, filter, referenceDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BoardEntry), args.Error(1)
}

// MockPaymentRepository runs the allocator callback against fixture rows so
// service tests exercise the real allocation logic without a database.
type MockPaymentRepository struct {
	mock.Mock

	Loan *domain.LoanAccount
	Due  []*domain.Installment
}

func (m *MockPaymentRepository) Apply(ctx context.Context, loanID int64, allocate repository.AllocatorFunc) (*allocation.Result, error) {
	args := m.Called(ctx, loanID)
	if args.Error(0) != nil {
		return nil, args.Error(0)
	}
	return allocate(m.Loan, m.Due)
}

func (m *MockPaymentRepository) ListByLoanID(ctx context.Context, loanID int64) ([]*domain.PaymentTransaction, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentTransaction), args.Error(1)
}

func (m *MockPaymentRepository) TotalPaid(ctx context.Context, loanID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishPaymentRecorded(ctx context.Context, event *domain.PaymentRecordedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
