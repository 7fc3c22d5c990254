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

// ApplicationService owns the product catalog and the loan application
// workflow up to approval. Disbursement is BillingService territory.
type ApplicationService struct {
	AppRepo     repository.ApplicationRepository
	ProductRepo repository.ProductRepository
	ClientRepo  repository.ClientRepository
	logger      *zap.Logger
}

func NewApplicationService(
	appRepo repository.ApplicationRepository,
	productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository,
	logger *zap.Logger,
) *ApplicationService {
	return &ApplicationService{
		AppRepo:     appRepo,
		ProductRepo: productRepo,
		ClientRepo:  clientRepo,
		logger:      logger,
	}
}

func (s *ApplicationService) ListProducts(ctx context.Context) ([]*domain.LoanProduct, error) {
	products, err := s.ProductRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return products, nil
}

func (s *ApplicationService) CreateApplication(ctx context.Context, request *domain.CreateApplicationRequest) (*domain.LoanApplication, error) {
	if _, err := s.ClientRepo.GetByID(ctx, request.ClientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapClientNotFound(request.ClientID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	product, err := s.ProductRepo.GetByID(ctx, request.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapProductNotFound(request.ProductID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if request.RequestedTermMonth < product.MinTerm || request.RequestedTermMonth > product.MaxTerm {
		return nil, customError.WrapTermOutOfRange(product.MinTerm, product.MaxTerm)
	}

	if !request.RequestedAmount.IsPositive() {
		return nil, customError.WrapInvalidInput("requested_amount must be greater than zero")
	}

	app := &domain.LoanApplication{
		BranchID:           request.BranchID,
		ClientID:           request.ClientID,
		ProductID:          request.ProductID,
		RequestedAmount:    request.RequestedAmount,
		PurposeCode:        request.PurposeCode,
		RequestedTermMonth: request.RequestedTermMonth,
		RepaymentFrequency: request.RepaymentFrequency,
		ApplicationStatus:  request.ApplicationStatus,
	}
	if app.RepaymentFrequency == "" {
		app.RepaymentFrequency = "monthly"
	}
	if app.ApplicationStatus == "" {
		app.ApplicationStatus = domain.ApplicationStatusDraft
	}

	created, err := s.AppRepo.Create(ctx, app)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("loan application created",
		zap.Int64("app_id", created.AppID),
		zap.Int64("client_id", created.ClientID),
		zap.Int64("product_id", created.ProductID),
	)

	return created, nil
}

func (s *ApplicationService) GetApplication(ctx context.Context, appID int64) (*domain.ApplicationDetail, error) {
	detail, err := s.AppRepo.GetDetail(ctx, appID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapApplicationNotFound(appID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return detail, nil
}

func (s *ApplicationService) ListApplications(ctx context.Context, branchID, status string) ([]*domain.ApplicationDetail, error) {
	apps, err := s.AppRepo.List(ctx, branchID, status)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return apps, nil
}

func (s *ApplicationService) UpdateApplication(ctx context.Context, appID int64, request *domain.UpdateApplicationRequest) (*domain.ApplicationDetail, error) {
	app, err := s.AppRepo.GetByID(ctx, appID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapApplicationNotFound(appID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if request.RequestedAmount != nil {
		if !request.RequestedAmount.IsPositive() {
			return nil, customError.WrapInvalidInput("requested_amount must be greater than zero")
		}
		app.RequestedAmount = *request.RequestedAmount
	}
	applyIfSet(&app.PurposeCode, request.PurposeCode)
	applyIfSet(&app.RepaymentFrequency, request.RepaymentFrequency)
	applyIfSet(&app.ApplicationStatus, request.ApplicationStatus)

	if request.RequestedTermMonth != nil {
		product, err := s.ProductRepo.GetByID(ctx, app.ProductID)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		if *request.RequestedTermMonth < product.MinTerm || *request.RequestedTermMonth > product.MaxTerm {
			return nil, customError.WrapTermOutOfRange(product.MinTerm, product.MaxTerm)
		}
		app.RequestedTermMonth = *request.RequestedTermMonth
	}

	if err := s.AppRepo.Update(ctx, app); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return s.GetApplication(ctx, appID)
}

// DeleteApplication only removes applications still in draft or already
// rejected; anything further along the workflow stays on record.
func (s *ApplicationService) DeleteApplication(ctx context.Context, appID int64) error {
	app, err := s.AppRepo.GetByID(ctx, appID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapApplicationNotFound(appID)
		}
		return customError.WrapDatabaseError(err)
	}

	if app.ApplicationStatus != domain.ApplicationStatusDraft && app.ApplicationStatus != domain.ApplicationStatusRejected {
		return customError.NewBusinessError(
			customError.ErrCodeApplicationNotDeletable,
			"Cannot delete approved or pending applications",
			customError.ErrApplicationNotDeletable,
		)
	}

	if err := s.AppRepo.Delete(ctx, appID); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.logger.Info("loan application deleted", zap.Int64("app_id", appID))
	return nil
}
