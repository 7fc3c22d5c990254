package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/sovannra/microfin/internal/domain"
	"github.com/sovannra/microfin/internal/repository"
	customError "github.com/sovannra/microfin/pkg/errors"
)

// ClientService owns borrower registration: KYC records and the attached
// socio-economic profile.
type ClientService struct {
	ClientRepo repository.ClientRepository
	logger     *zap.Logger
}

func NewClientService(clientRepo repository.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{ClientRepo: clientRepo, logger: logger}
}

func (s *ClientService) CreateClient(ctx context.Context, request *domain.CreateClientRequest) (*domain.Client, error) {
	existing, err := s.ClientRepo.GetByNationalID(ctx, request.NationalID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}
	if existing != nil {
		return nil, customError.WrapDuplicateNationalID(request.NationalID)
	}

	client := &domain.Client{
		BranchID:       request.BranchID,
		NationalID:     request.NationalID,
		FirstName:      request.FirstName,
		KhmerLastName:  request.KhmerLastName,
		LatinLastName:  request.LatinLastName,
		Sex:            request.Sex,
		DateOfBirth:    request.DateOfBirth,
		PrimaryPhone:   request.PrimaryPhone,
		AltPhone:       request.AltPhone,
		Email:          request.Email,
		VillageAddress: request.VillageAddress,
	}

	created, err := s.ClientRepo.Create(ctx, client)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("client registered",
		zap.Int64("client_id", created.ClientID),
		zap.String("branch_id", created.BranchID),
	)

	return created, nil
}

func (s *ClientService) GetClient(ctx context.Context, clientID int64) (*domain.Client, error) {
	client, err := s.ClientRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapClientNotFound(clientID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return client, nil
}

func (s *ClientService) ListClients(ctx context.Context, branchID string) ([]*domain.Client, error) {
	clients, err := s.ClientRepo.List(ctx, branchID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return clients, nil
}

func (s *ClientService) UpdateClient(ctx context.Context, clientID int64, request *domain.UpdateClientRequest) (*domain.Client, error) {
	client, err := s.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	applyIfSet(&client.FirstName, request.FirstName)
	applyIfSet(&client.KhmerLastName, request.KhmerLastName)
	applyIfSet(&client.LatinLastName, request.LatinLastName)
	applyIfSet(&client.Sex, request.Sex)
	applyIfSet(&client.DateOfBirth, request.DateOfBirth)
	applyIfSet(&client.PrimaryPhone, request.PrimaryPhone)
	applyIfSet(&client.AltPhone, request.AltPhone)
	applyIfSet(&client.Email, request.Email)
	applyIfSet(&client.VillageAddress, request.VillageAddress)

	if err := s.ClientRepo.Update(ctx, client); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return s.GetClient(ctx, clientID)
}

// DeleteClient refuses to remove a borrower who still holds active loans.
func (s *ClientService) DeleteClient(ctx context.Context, clientID int64) error {
	if _, err := s.GetClient(ctx, clientID); err != nil {
		return err
	}

	active, err := s.ClientRepo.CountActiveLoans(ctx, clientID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if active > 0 {
		return customError.WrapClientHasActiveLoans(clientID, active)
	}

	if err := s.ClientRepo.Delete(ctx, clientID); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.logger.Info("client deleted", zap.Int64("client_id", clientID))
	return nil
}

func (s *ClientService) GetSocioEco(ctx context.Context, clientID int64) (*domain.SocioEco, error) {
	socio, err := s.ClientRepo.GetSocioEco(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapClientNotFound(clientID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return socio, nil
}

func (s *ClientService) UpsertSocioEco(ctx context.Context, clientID int64, request *domain.UpsertSocioEcoRequest) (*domain.SocioEco, error) {
	if _, err := s.GetClient(ctx, clientID); err != nil {
		return nil, err
	}

	socio, err := s.ClientRepo.GetSocioEco(ctx, clientID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapDatabaseError(err)
		}
		socio = &domain.SocioEco{ClientID: clientID}
	}

	applyIfSet(&socio.Occupation, request.Occupation)
	applyIfSet(&socio.EmployerName, request.EmployerName)
	applyIfSet(&socio.EducationLevel, request.EducationLevel)
	if request.MonthlyIncomeUSD != nil {
		socio.MonthlyIncomeUSD = *request.MonthlyIncomeUSD
	}
	if request.HouseholdSize != nil {
		socio.HouseholdSize = *request.HouseholdSize
	}
	if request.CBCScore != nil {
		socio.CBCScore = *request.CBCScore
	}

	if err := s.ClientRepo.UpsertSocioEco(ctx, socio); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return s.ClientRepo.GetSocioEco(ctx, clientID)
}

func applyIfSet(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
