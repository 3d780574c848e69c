package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mbet-dev/fund-tracker/internal/domain/entity"
	"github.com/mbet-dev/fund-tracker/internal/domain/workflow"
)

// ChartFilter narrows the rows scanned for the chart series. Since is
// always applied; at most one of the remaining fields is set.
type ChartFilter struct {
	Since      time.Time
	UserID     *uuid.UUID
	Urgency    entity.Level
	Importance entity.Level
}

// RequestTransition is one guarded status update. The write only lands
// when the row still holds the From status, which makes double-approval
// race-free at the store.
type RequestTransition struct {
	ID     int64
	From   workflow.Status
	To     workflow.Status
	Remark string

	// AmountApproved is written when set (partial approval).
	AmountApproved *decimal.Decimal

	// CopyRequiredAmount makes the store compute
	// amount_approved = amount_required atomically (full approval).
	CopyRequiredAmount bool
}

// RequestRepository defines persistence operations for FundRequest
type RequestRepository interface {
	Create(ctx context.Context, request *entity.FundRequest) error
	GetByID(ctx context.Context, id int64) (*entity.FundRequest, error)
	Transition(ctx context.Context, t RequestTransition) (bool, error)
	ListByStatus(ctx context.Context, status workflow.Status) ([]*entity.FundRequest, error)
	List(ctx context.Context, limit, offset int) ([]*entity.FundRequest, error)
	ListAll(ctx context.Context) ([]*entity.FundRequest, error)
	ListForChart(ctx context.Context, filter ChartFilter) ([]*entity.FundRequest, error)
	DistinctUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// UserRepository defines persistence operations for User
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// SessionRepository defines persistence operations for Session
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	GetByTokenID(ctx context.Context, tokenID string) (*entity.Session, error)
	Revoke(ctx context.Context, tokenID string, at time.Time) error
}

// AppointmentRepository defines persistence operations for Appointment
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	List(ctx context.Context) ([]*entity.Appointment, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
