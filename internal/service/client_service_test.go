package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sovannra/microfin/internal/domain"
	customError "github.com/sovannra/microfin/pkg/errors"
)

func testClient() *domain.Client {
	return &domain.Client{
		ClientID:      1,
		BranchID:      "BR-001",
		NationalID:    "N123456789",
		FirstName:     "Sok",
		LatinLastName: "Chan",
		PrimaryPhone:  "012345678",
	}
}

func TestCreateClient(t *testing.T) {
	ctx := context.Background()

	t.Run("registers new client", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, zap.NewNop())

		repo.On("GetByNationalID", ctx, "N123456789").Return(nil, sql.ErrNoRows)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Client")).Return(testClient(), nil)

		client, err := svc.CreateClient(ctx, &domain.CreateClientRequest{
			BranchID:   "BR-001",
			NationalID: "N123456789",
			FirstName:  "Sok",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), client.ClientID)
		repo.AssertExpectations(t)
	})

	t.Run("rejects duplicate national id", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, zap.NewNop())

		repo.On("GetByNationalID", ctx, "N123456789").Return(testClient(), nil)

		client, err := svc.CreateClient(ctx, &domain.CreateClientRequest{
			BranchID:   "BR-001",
			NationalID: "N123456789",
		})

		assert.Nil(t, client)
		require.Error(t, err)
		businessErr, ok := err.(*customError.BusinessError)
		require.True(t, ok)
		assert.Equal(t, customError.ErrCodeDuplicateNationalID, businessErr.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUpdateClientAppliesOnlyProvidedFields(t *testing.T) {
	ctx := context.Background()
	repo := new(MockClientRepository)
	svc := NewClientService(repo, zap.NewNop())

	repo.On("GetByID", ctx, int64(1)).Return(testClient(), nil)
	repo.On("Update", ctx, mock.AnythingOfType("*domain.Client")).Return(nil)

	newPhone := "098765432"
	_, err := svc.UpdateClient(ctx, 1, &domain.UpdateClientRequest{PrimaryPhone: &newPhone})
	require.NoError(t, err)

	updated := repo.Calls[1].Arguments.Get(1).(*domain.Client)
	assert.Equal(t, "098765432", updated.PrimaryPhone)
	assert.Equal(t, "Sok", updated.FirstName)
}

func TestDeleteClient(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes client without active loans", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, zap.NewNop())

		repo.On("GetByID", ctx, int64(1)).Return(testClient(), nil)
		repo.On("CountActiveLoans", ctx, int64(1)).Return(0, nil)
		repo.On("Delete", ctx, int64(1)).Return(nil)

		require.NoError(t, svc.DeleteClient(ctx, 1))
		repo.AssertExpectations(t)
	})

	t.Run("refuses client with active loans", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, zap.NewNop())

		repo.On("GetByID", ctx, int64(1)).Return(testClient(), nil)
		repo.On("CountActiveLoans", ctx, int64(1)).Return(2, nil)

		err := svc.DeleteClient(ctx, 1)

		require.Error(t, err)
		businessErr, ok := err.(*customError.BusinessError)
		require.True(t, ok)
		assert.Equal(t, customError.ErrCodeClientHasActiveLoans, businessErr.Code)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("unknown client maps to not found", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, zap.NewNop())

		repo.On("GetByID", ctx, int64(99)).Return(nil, sql.ErrNoRows)

		err := svc.DeleteClient(ctx, 99)

		require.Error(t, err)
		businessErr, ok := err.(*customError.BusinessError)
		require.True(t, ok)
		assert.Equal(t, customError.ErrCodeClientNotFound, businessErr.Code)
	})
}

func TestUpsertSocioEco(t *testing.T) {
	ctx := context.Background()

	t.Run("creates profile when none exists", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, zap.NewNop())

		occupation := "farmer"
		income := 320.0
		saved := &domain.SocioEco{ClientID: 1, Occupation: occupation, MonthlyIncomeUSD: income}

		repo.On("GetByID", ctx, int64(1)).Return(testClient(), nil)
		repo.On("GetSocioEco", ctx, int64(1)).Return(nil, sql.ErrNoRows).Once()
		repo.On("UpsertSocioEco", ctx, mock.AnythingOfType("*domain.SocioEco")).Return(nil)
		repo.On("GetSocioEco", ctx, int64(1)).Return(saved, nil)

		socio, err := svc.UpsertSocioEco(ctx, 1, &domain.UpsertSocioEcoRequest{
			Occupation:       &occupation,
			MonthlyIncomeUSD: &income,
		})

		require.NoError(t, err)
		assert.Equal(t, "farmer", socio.Occupation)
		assert.Equal(t, 320.0, socio.MonthlyIncomeUSD)
	})

	t.Run("merges into existing profile", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, zap.NewNop())

		existing := &domain.SocioEco{ClientID: 1, Occupation: "farmer", HouseholdSize: 4}

		repo.On("GetByID", ctx, int64(1)).Return(testClient(), nil)
		repo.On("GetSocioEco", ctx, int64(1)).Return(existing, nil)
		repo.On("UpsertSocioEco", ctx, mock.AnythingOfType("*domain.SocioEco")).Return(nil)

		size := 5
		_, err := svc.UpsertSocioEco(ctx, 1, &domain.UpsertSocioEcoRequest{HouseholdSize: &size})
		require.NoError(t, err)

		upserted := repo.Calls[2].Arguments.Get(1).(*domain.SocioEco)
		assert.Equal(t, 5, upserted.HouseholdSize)
		assert.Equal(t, "farmer", upserted.Occupation)
	})
}

func TestClientFullName(t *testing.T) {
	tests := []struct {
		name   string
		client domain.Client
		want   string
	}{
		{"all parts", domain.Client{FirstName: "Sok", KhmerLastName: "សុខ", LatinLastName: "Chan"}, "Sok សុខ Chan"},
		{"first only", domain.Client{FirstName: "Sok"}, "Sok"},
		{"empty", domain.Client{}, "Unknown Client"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.client.FullName())
		})
	}
}
