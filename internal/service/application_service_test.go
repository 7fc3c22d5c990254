package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sovannra/microfin/internal/domain"
	customError "github.com/sovannra/microfin/pkg/errors"
)

func newApplicationFixture() (*MockApplicationRepository, *MockProductRepository, *MockClientRepository, *ApplicationService) {
	appRepo := new(MockApplicationRepository)
	productRepo := new(MockProductRepository)
	clientRepo := new(MockClientRepository)
	svc := NewApplicationService(appRepo, productRepo, clientRepo, zap.NewNop())
	return appRepo, productRepo, clientRepo, svc
}

func testProduct() *domain.LoanProduct {
	return &domain.LoanProduct{
		ProductID:       5,
		ProductName:     "Group Loan",
		InterestRatePA:  decimal.NewFromFloat(0.18),
		MinTerm:         3,
		MaxTerm:         24,
		GracePeriodDays: 7,
		Method:          domain.MethodDeclining,
	}
}

func TestCreateApplication(t *testing.T) {
	ctx := context.Background()

	validRequest := func() *domain.CreateApplicationRequest {
		return &domain.CreateApplicationRequest{
			BranchID:           "BR-001",
			ClientID:           1,
			ProductID:          5,
			RequestedAmount:    decimal.NewFromInt(1000),
			RequestedTermMonth: 12,
		}
	}

	t.Run("creates with defaults", func(t *testing.T) {
		appRepo, productRepo, clientRepo, svc := newApplicationFixture()

		clientRepo.On("GetByID", ctx, int64(1)).Return(testClient(), nil)
		productRepo.On("GetByID", ctx, int64(5)).Return(testProduct(), nil)
		appRepo.On("Create", ctx, mock.AnythingOfType("*domain.LoanApplication")).
			Return(&domain.LoanApplication{AppID: 10}, nil)

		created, err := svc.CreateApplication(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(10), created.AppID)

		app := appRepo.Calls[0].Arguments.Get(1).(*domain.LoanApplication)
		assert.Equal(t, "monthly", app.RepaymentFrequency)
		assert.Equal(t, domain.ApplicationStatusDraft, app.ApplicationStatus)
	})

	t.Run("rejects term outside product limits", func(t *testing.T) {
		_, productRepo, clientRepo, svc := newApplicationFixture()

		clientRepo.On("GetByID", ctx, int64(1)).Return(testClient(), nil)
		productRepo.On("GetByID", ctx, int64(5)).Return(testProduct(), nil)

		request := validRequest()
		request.RequestedTermMonth = 36

		created, err := svc.CreateApplication(ctx, request)

		assert.Nil(t, created)
		require.Error(t, err)
		businessErr, ok := err.(*customError.BusinessError)
		require.True(t, ok)
		assert.Equal(t, customError.ErrCodeTermOutOfRange, businessErr.Code)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, productRepo, clientRepo, svc := newApplicationFixture()

		clientRepo.On("GetByID", ctx, int64(1)).Return(testClient(), nil)
		productRepo.On("GetByID", ctx, int64(5)).Return(testProduct(), nil)

		request := validRequest()
		request.RequestedAmount = decimal.Zero

		_, err := svc.CreateApplication(ctx, request)

		require.Error(t, err)
		businessErr, ok := err.(*customError.BusinessError)
		require.True(t, ok)
		assert.Equal(t, customError.ErrCodeInvalidInput, businessErr.Code)
	})

	t.Run("unknown client maps to not found", func(t *testing.T) {
		_, _, clientRepo, svc := newApplicationFixture()

		clientRepo.On("GetByID", ctx, int64(1)).Return(nil, sql.ErrNoRows)

		_, err := svc.CreateApplication(ctx, validRequest())

		require.Error(t, err)
		businessErr, ok := err.(*customError.BusinessError)
		require.True(t, ok)
		assert.Equal(t, customError.ErrCodeClientNotFound, businessErr.Code)
	})

	t.Run("unknown product maps to not found", func(t *testing.T) {
		_, productRepo, clientRepo, svc := newApplicationFixture()

		clientRepo.On("GetByID", ctx, int64(1)).Return(testClient(), nil)
		productRepo.On("GetByID", ctx, int64(5)).Return(nil, sql.ErrNoRows)

		_, err := svc.CreateApplication(ctx, validRequest())

		require.Error(t, err)
		businessErr, ok := err.(*customError.BusinessError)
		require.True(t, ok)
		assert.Equal(t, customError.ErrCodeProductNotFound, businessErr.Code)
	})
}

func TestUpdateApplicationRevalidatesTerm(t *testing.T) {
	ctx := context.Background()
	appRepo, productRepo, _, svc := newApplicationFixture()

	existing := &domain.LoanApplication{
		AppID:              10,
		ProductID:          5,
		RequestedAmount:    decimal.NewFromInt(1000),
		RequestedTermMonth: 12,
		ApplicationStatus:  domain.ApplicationStatusDraft,
	}

	appRepo.On("GetByID", ctx, int64(10)).Return(existing, nil)
	productRepo.On("GetByID", ctx, int64(5)).Return(testProduct(), nil)

	badTerm := 48
	_, err := svc.UpdateApplication(ctx, 10, &domain.UpdateApplicationRequest{RequestedTermMonth: &badTerm})

	require.Error(t, err)
	businessErr, ok := err.(*customError.BusinessError)
	require.True(t, ok)
	assert.Equal(t, customError.ErrCodeTermOutOfRange, businessErr.Code)
	appRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteApplication(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		status    string
		deletable bool
	}{
		{domain.ApplicationStatusDraft, true},
		{domain.ApplicationStatusRejected, true},
		{domain.ApplicationStatusSubmitted, false},
		{domain.ApplicationStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			appRepo, _, _, svc := newApplicationFixture()

			appRepo.On("GetByID", ctx, int64(10)).Return(&domain.LoanApplication{
				AppID:             10,
				ApplicationStatus: tt.status,
			}, nil)
			if tt.deletable {
				appRepo.On("Delete", ctx, int64(10)).Return(nil)
			}

			err := svc.DeleteApplication(ctx, 10)

			if tt.deletable {
				require.NoError(t, err)
				appRepo.AssertExpectations(t)
			} else {
				require.Error(t, err)
				businessErr, ok := err.(*customError.BusinessError)
				require.True(t, ok)
				assert.Equal(t, customError.ErrCodeApplicationNotDeletable, businessErr.Code)
				appRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			}
		})
	}
}
