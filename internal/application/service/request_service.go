package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mbet-dev/fund-tracker/internal/application/port"
	"github.com/mbet-dev/fund-tracker/internal/domain/entity"
	"github.com/mbet-dev/fund-tracker/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// SubmitInput carries the fields of a new fund request. AmountRequired is
// a pointer so a missing amount is distinguishable from zero.
type SubmitInput struct {
	Subject         string
	CaseDescription string
	AmountRequired  *decimal.Decimal
	Currency        entity.Currency
	UrgencyLevel    entity.Level
	ImportanceLevel entity.Level
	UserID          *uuid.UUID
}

// RequestService owns the fund-request workflow: submission plus the three
// admin transitions. Each admin operation performs one guarded write and,
// on success, returns a refreshed pending listing for the approval view.
type RequestService interface {
	Submit(ctx context.Context, input SubmitInput) (*entity.FundRequest, error)
	Approve(ctx context.Context, id int64, remark string) ([]*entity.FundRequest, error)
	PartiallyApprove(ctx context.Context, id int64, remark string, amount *decimal.Decimal) ([]*entity.FundRequest, error)
	Decline(ctx context.Context, id int64, remark string) ([]*entity.FundRequest, error)
	ListPending(ctx context.Context) ([]*entity.FundRequest, error)
	ListPage(ctx context.Context, page, perPage int) ([]*entity.FundRequest, int, error)
}

type requestServiceImpl struct {
	requestRepo port.RequestRepository
	lifecycle   *workflow.Lifecycle
	logger      Logger
}

// NewRequestService creates a new RequestService
func NewRequestService(requestRepo port.RequestRepository, logger Logger) RequestService {
	return &requestServiceImpl{
		requestRepo: requestRepo,
		lifecycle:   workflow.NewLifecycle(),
		logger:      logger,
	}
}

// Submit validates the input and inserts a new pending request.
func (s *requestServiceImpl) Submit(ctx context.Context, input SubmitInput) (*entity.FundRequest, error) {
	if input.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", entity.ErrValidation)
	}
	if input.AmountRequired == nil {
		return nil, fmt.Errorf("%w: amount_required is required", entity.ErrValidation)
	}
	if input.AmountRequired.IsNegative() {
		return nil, fmt.Errorf("%w: amount_required must not be negative", entity.ErrValidation)
	}
	if !input.Currency.IsValid() {
		return nil, fmt.Errorf("%w: unsupported currency %q", entity.ErrValidation, input.Currency)
	}
	if !input.UrgencyLevel.IsValid() {
		return nil, fmt.Errorf("%w: invalid urgency level %q", entity.ErrValidation, input.UrgencyLevel)
	}
	if !input.ImportanceLevel.IsValid() {
		return nil, fmt.Errorf("%w: invalid importance level %q", entity.ErrValidation, input.ImportanceLevel)
	}

	request := &entity.FundRequest{
		Subject:         input.Subject,
		CaseDescription: input.CaseDescription,
		AmountRequired:  *input.AmountRequired,
		Currency:        input.Currency,
		UrgencyLevel:    input.UrgencyLevel,
		ImportanceLevel: input.ImportanceLevel,
		Status:          workflow.StatusPending,
		UserID:          input.UserID,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		s.logger.Error("Failed to create fund request", "error", err)
		return nil, err
	}

	s.logger.Info("Fund request submitted",
		"id", request.ID,
		"subject", request.Subject,
		"currency", request.Currency)
	return request, nil
}

// Approve moves a pending request to approved. The store copies
// amount_required into amount_approved in the same statement, so a stale
// in-memory amount can never be written.
func (s *requestServiceImpl) Approve(ctx context.Context, id int64, remark string) ([]*entity.FundRequest, error) {
	return s.transition(ctx, id, workflow.TriggerApprove, port.RequestTransition{
		ID:                 id,
		Remark:             remark,
		CopyRequiredAmount: true,
	})
}

// PartiallyApprove moves a pending request to partially_approved with a
// caller-supplied amount. An absent amount defaults to zero; no bound
// against amount_required is enforced.
func (s *requestServiceImpl) PartiallyApprove(ctx context.Context, id int64, remark string, amount *decimal.Decimal) ([]*entity.FundRequest, error) {
	granted := decimal.Zero
	if amount != nil {
		granted = *amount
	}
	return s.transition(ctx, id, workflow.TriggerPartiallyApprove, port.RequestTransition{
		ID:             id,
		Remark:         remark,
		AmountApproved: &granted,
	})
}

// Decline moves a pending request to declined, leaving amount_approved untouched.
func (s *requestServiceImpl) Decline(ctx context.Context, id int64, remark string) ([]*entity.FundRequest, error) {
	return s.transition(ctx, id, workflow.TriggerDecline, port.RequestTransition{
		ID:     id,
		Remark: remark,
	})
}

func (s *requestServiceImpl) transition(ctx context.Context, id int64, trigger workflow.Trigger, t port.RequestTransition) ([]*entity.FundRequest, error) {
	to, err := s.lifecycle.Fire(workflow.StatusPending, trigger)
	if err != nil {
		return nil, err
	}
	t.From = workflow.StatusPending
	t.To = to

	updated, err := s.requestRepo.Transition(ctx, t)
	if err != nil {
		s.logger.Error("Failed to apply transition", "error", err, "id", id, "trigger", trigger)
		return nil, err
	}

	if !updated {
		// The guarded update missed: either no such row, or the row
		// already left pending.
		current, err := s.requestRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, fmt.Errorf("%w: fund request %d", entity.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: fund request %d is already %s", entity.ErrConflict, id, current.Status)
	}

	s.logger.Info("Fund request transitioned", "id", id, "trigger", trigger, "status", to)

	// Read-after-write refresh of the pending queue for the approval view.
	return s.ListPending(ctx)
}

// ListPending returns the admin approval queue.
func (s *requestServiceImpl) ListPending(ctx context.Context) ([]*entity.FundRequest, error) {
	requests, err := s.requestRepo.ListByStatus(ctx, workflow.StatusPending)
	if err != nil {
		s.logger.Error("Failed to list pending requests", "error", err)
		return nil, err
	}
	return requests, nil
}

// ListPage returns one offset/limit page of requests for the notifications
// view. The page is clamped to 1 and the clamped value is returned. No
// cursor stability is guaranteed across concurrent inserts.
func (s *requestServiceImpl) ListPage(ctx context.Context, page, perPage int) ([]*entity.FundRequest, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 5
	}

	offset := (page - 1) * perPage
	requests, err := s.requestRepo.List(ctx, perPage, offset)
	if err != nil {
		s.logger.Error("Failed to list requests page", "error", err, "page", page)
		return nil, page, err
	}
	return requests, page, nil
}
