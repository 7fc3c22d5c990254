package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sovannra/microfin/internal/allocation"
	"github.com/sovannra/microfin/internal/config"
	"github.com/sovannra/microfin/internal/domain"
	"github.com/sovannra/microfin/internal/repository"
	customError "github.com/sovannra/microfin/pkg/errors"
	"github.com/sovannra/microfin/pkg/utils"
)

// EventPublisher pushes committed payment events to the ledger stream.
type EventPublisher interface {
	PublishPaymentRecorded(ctx context.Context, event *domain.PaymentRecordedEvent) error
}

// BillingService owns account opening, the collections board and payment
// application. Redis and the event publisher are optional: a nil client
// disables caching, a nil publisher disables event publication.
type BillingService struct {
	LoanRepo    repository.LoanRepository
	PaymentRepo repository.PaymentRepository
	AppRepo     repository.ApplicationRepository
	ProductRepo repository.ProductRepository

	redis     *redis.Client
	publisher EventPublisher
	config    *config.Config
	logger    *zap.Logger
}

func NewBillingService(
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	appRepo repository.ApplicationRepository,
	productRepo repository.ProductRepository,
	redisClient *redis.Client,
	publisher EventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		LoanRepo:    loanRepo,
		PaymentRepo: paymentRepo,
		AppRepo:     appRepo,
		ProductRepo: productRepo,
		redis:       redisClient,
		publisher:   publisher,
		config:      cfg,
		logger:      logger,
	}
}

// Disburse opens a loan account for an approved application and generates
// its full repayment schedule in one transaction.
func (s *BillingService) Disburse(ctx context.Context, appID int64, request *domain.DisburseRequest) (*domain.DisburseResponse, error) {
	app, err := s.AppRepo.GetByID(ctx, appID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapApplicationNotFound(appID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if app.ApplicationStatus != domain.ApplicationStatusApproved {
		return nil, customError.NewBusinessError(
			customError.ErrCodeApplicationNotApproved,
			fmt.Sprintf("Application %d is %s, only approved applications can be disbursed", appID, app.ApplicationStatus),
			customError.ErrApplicationNotApproved,
		)
	}

	product, err := s.ProductRepo.GetByID(ctx, app.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapProductNotFound(app.ProductID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	disbursed := utils.TruncateToDay(time.Now())
	if request.DisbursementDate != "" {
		parsed, err := time.Parse("2006-01-02", request.DisbursementDate)
		if err != nil {
			return nil, customError.WrapInvalidInput("disbursement_date must be formatted as YYYY-MM-DD")
		}
		disbursed = parsed
	}

	var lines []utils.ScheduleLine
	switch product.Method {
	case domain.MethodFlat:
		lines = utils.GenerateFlatSchedule(app.RequestedAmount, product.InterestRatePA, product.FeePerPeriod, app.RequestedTermMonth, disbursed)
	default:
		lines = utils.GenerateDecliningSchedule(app.RequestedAmount, product.InterestRatePA, product.FeePerPeriod, app.RequestedTermMonth, disbursed)
	}
	if len(lines) == 0 {
		return nil, customError.WrapInvalidInput("application amount and term do not produce a schedule")
	}

	branchID := app.BranchID
	if request.BranchID != "" {
		branchID = request.BranchID
	}

	account := &domain.LoanAccount{
		AppID:                appID,
		BranchID:             branchID,
		PrincipalAmount:      app.RequestedAmount,
		PrincipalOutstanding: app.RequestedAmount,
		InterestAccrued:      utils.SumInterest(lines),
		InterestRatePA:       product.InterestRatePA,
		InstallmentAmount:    lines[0].Total,
		TotalInstallments:    len(lines),
		AccountState:         domain.AccountStateActive,
		GracePeriodDays:      product.GracePeriodDays,
		DisbursementDate:     disbursed,
	}

	schedule := make([]*domain.Installment, 0, len(lines))
	for _, line := range lines {
		schedule = append(schedule, &domain.Installment{
			InstallmentNo: line.InstallmentNo,
			DueDate:       line.DueDate,
			PrincipalDue:  line.Principal,
			InterestDue:   line.Interest,
			FeeDue:        line.Fee,
			TotalDue:      line.Total,
			Status:        domain.InstallmentStatusDue,
		})
	}

	created, err := s.LoanRepo.CreateAccountWithSchedule(ctx, account, schedule)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	for _, inst := range schedule {
		inst.LoanID = created.LoanID
	}

	s.logger.Info("loan disbursed",
		zap.Int64("loan_id", created.LoanID),
		zap.Int64("app_id", appID),
		zap.Int("installments", len(schedule)),
	)

	return &domain.DisburseResponse{Account: created, Schedule: schedule}, nil
}

// ApplyPayment applies one incoming payment against the loan's outstanding
// installments. Balance updates, the ledger record and installment statuses
// commit together or not at all.
func (s *BillingService) ApplyPayment(ctx context.Context, request *domain.PaymentRequest) (*domain.PaymentResponse, error) {
	now := time.Now()

	var branchID string
	result, err := s.PaymentRepo.Apply(ctx, request.LoanID, func(loan *domain.LoanAccount, due []*domain.Installment) (*allocation.Result, error) {
		branchID = loan.BranchID
		return allocation.Apply(loan, request, due, now)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(request.LoanID)
		}
		var be *customError.BusinessError
		if errors.As(err, &be) {
			return nil, err
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("payment applied",
		zap.Int64("loan_id", request.LoanID),
		zap.String("transaction_id", result.Transaction.TransactionID.String()),
		zap.String("amount", request.AmountPaid.String()),
		zap.Ints("paid_installments", result.PaidInstallments),
	)

	s.publishPaymentRecorded(ctx, branchID, result)

	return &domain.PaymentResponse{
		Transaction:          result.Transaction,
		PrincipalOutstanding: result.PrincipalOutstanding,
		InterestAccrued:      result.InterestAccrued,
		PaidInstallments:     result.PaidInstallments,
	}, nil
}

// publishPaymentRecorded is best-effort: the payment is already committed,
// a publish failure is logged and not surfaced to the caller.
func (s *BillingService) publishPaymentRecorded(ctx context.Context, branchID string, result *allocation.Result) {
	if s.publisher == nil {
		return
	}

	txn := result.Transaction
	event := &domain.PaymentRecordedEvent{
		TransactionID:        txn.TransactionID,
		LoanID:               txn.LoanID,
		BranchID:             branchID,
		AmountPaid:           txn.AmountPaid,
		PrincipalPaid:        txn.PrincipalPaid,
		InterestPaid:         txn.InterestPaid,
		FeePaid:              txn.FeePaid,
		PrincipalOutstanding: result.PrincipalOutstanding,
		PaidInstallments:     result.PaidInstallments,
		PaymentDate:          txn.PaymentDate,
	}

	if err := s.publisher.PublishPaymentRecorded(ctx, event); err != nil {
		s.logger.Warn("failed to publish payment event",
			zap.Int64("loan_id", txn.LoanID),
			zap.Error(err),
		)
	}
}

// GetBoard returns the collections board: due installments joined with
// client and loan context, decorated with the derived overdue and grace
// fields. Results are cached briefly per filter tuple.
func (s *BillingService) GetBoard(ctx context.Context, filter domain.BoardFilter, referenceDate time.Time) ([]*domain.BoardEntry, error) {
	cacheKey := fmt.Sprintf("board:%s:%s:%s:%s",
		filter.BranchID, filter.Status, filter.DateFilter,
		utils.TruncateToDay(referenceDate).Format("2006-01-02"),
	)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var entries []*domain.BoardEntry
			if err := json.Unmarshal(cached, &entries); err == nil {
				return entries, nil
			}
		}
	}

	entries, err := s.LoanRepo.ListBoard(ctx, filter, referenceDate)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	for _, entry := range entries {
		derived := allocation.DeriveStatus(&entry.Installment, entry.GracePeriodDays, referenceDate)
		entry.DaysOverdue = derived.DaysOverdue
		entry.IsInGracePeriod = derived.IsInGracePeriod
		entry.GracePeriodRemaining = derived.GracePeriodRemaining
		entry.PaymentStatus = derived.EffectiveStatus
		entry.ClientName = boardClientName(entry)
	}

	if s.redis != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, s.config.Business.BoardCacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache board", zap.Error(err))
			}
		}
	}

	return entries, nil
}

func boardClientName(entry *domain.BoardEntry) string {
	client := domain.Client{
		FirstName:     entry.FirstName,
		KhmerLastName: entry.KhmerLastName,
		LatinLastName: entry.LatinLastName,
	}
	return client.FullName()
}

// GetSchedule returns a loan's repayment schedule with derived statuses.
func (s *BillingService) GetSchedule(ctx context.Context, loanID int64, referenceDate time.Time) ([]*domain.ScheduleEntry, error) {
	account, err := s.LoanRepo.GetAccountByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	schedule, err := s.LoanRepo.GetScheduleByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	entries := make([]*domain.ScheduleEntry, 0, len(schedule))
	for _, inst := range schedule {
		entries = append(entries, &domain.ScheduleEntry{
			Installment:    *inst,
			ScheduleStatus: allocation.DeriveStatus(inst, account.GracePeriodDays, referenceDate),
		})
	}

	return entries, nil
}

// ListAccounts lists active loan accounts with client and product context.
func (s *BillingService) ListAccounts(ctx context.Context, branchID string) ([]*domain.AccountDetail, error) {
	accounts, err := s.LoanRepo.ListActiveAccounts(ctx, branchID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return accounts, nil
}

// PaymentHistory returns the append-only payment ledger for a loan, most
// recent first.
func (s *BillingService) PaymentHistory(ctx context.Context, loanID int64) ([]*domain.PaymentTransaction, error) {
	if _, err := s.LoanRepo.GetAccountByID(ctx, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	payments, err := s.PaymentRepo.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return payments, nil
}

// OutstandingResponse summarizes a loan's balances against its ledger.
type OutstandingResponse struct {
	LoanID               int64           `json:"loan_id"`
	PrincipalOutstanding decimal.Decimal `json:"principal_outstanding"`
	InterestAccrued      decimal.Decimal `json:"interest_accrued"`
	TotalOutstanding     decimal.Decimal `json:"total_outstanding"`
	TotalPaid            decimal.Decimal `json:"total_paid"`
}

// GetOutstanding reports the running balances and the total repaid to date.
func (s *BillingService) GetOutstanding(ctx context.Context, loanID int64) (*OutstandingResponse, error) {
	account, err := s.LoanRepo.GetAccountByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	totalPaid, err := s.PaymentRepo.TotalPaid(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &OutstandingResponse{
		LoanID:               loanID,
		PrincipalOutstanding: account.PrincipalOutstanding,
		InterestAccrued:      account.InterestAccrued,
		TotalOutstanding:     account.PrincipalOutstanding.Add(account.InterestAccrued),
		TotalPaid:            totalPaid,
	}, nil
}

// BranchDigest summarizes the collections position of one branch.
type BranchDigest struct {
	BranchID  string `json:"branch_id"`
	DueToday  int    `json:"due_today"`
	InGrace   int    `json:"in_grace"`
	Late      int    `json:"late"`
	TotalOpen int    `json:"total_open"`
}

const digestCacheKey = "collections:digest"

// CollectionsDigest walks all open installments, derives their status and
// caches per-branch counts for the dashboard. Installment base state is not
// touched; lateness stays a derived property.
func (s *BillingService) CollectionsDigest(ctx context.Context, referenceDate time.Time) ([]*BranchDigest, error) {
	entries, err := s.LoanRepo.ListBoard(ctx, domain.BoardFilter{Status: domain.InstallmentStatusDue}, referenceDate)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	byBranch := make(map[string]*BranchDigest)
	order := []string{}
	for _, entry := range entries {
		digest, ok := byBranch[entry.BranchID]
		if !ok {
			digest = &BranchDigest{BranchID: entry.BranchID}
			byBranch[entry.BranchID] = digest
			order = append(order, entry.BranchID)
		}

		digest.TotalOpen++
		derived := allocation.DeriveStatus(&entry.Installment, entry.GracePeriodDays, referenceDate)
		switch {
		case derived.EffectiveStatus == domain.PaymentStatusLate:
			digest.Late++
		case derived.IsInGracePeriod:
			digest.InGrace++
		case derived.DaysOverdue == 0 && utils.TruncateToDay(entry.DueDate).Equal(utils.TruncateToDay(referenceDate)):
			digest.DueToday++
		}
	}

	digests := make([]*BranchDigest, 0, len(order))
	for _, branch := range order {
		digests = append(digests, byBranch[branch])
	}

	if s.redis != nil {
		if data, err := json.Marshal(digests); err == nil {
			if err := s.redis.Set(ctx, digestCacheKey, data, 24*time.Hour).Err(); err != nil {
				s.logger.Warn("failed to cache collections digest", zap.Error(err))
			}
		}
	}

	return digests, nil
}
