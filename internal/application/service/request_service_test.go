package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mbet-dev/fund-tracker/internal/application/port"
	"github.com/mbet-dev/fund-tracker/internal/domain/entity"
	"github.com/mbet-dev/fund-tracker/internal/domain/workflow"
)

// Mock repositories
type mockRequestRepo struct {
	createFunc          func(ctx context.Context, request *entity.FundRequest) error
	getByIDFunc         func(ctx context.Context, id int64) (*entity.FundRequest, error)
	transitionFunc      func(ctx context.Context, t port.RequestTransition) (bool, error)
	listByStatusFunc    func(ctx context.Context, status workflow.Status) ([]*entity.FundRequest, error)
	listFunc            func(ctx context.Context, limit, offset int) ([]*entity.FundRequest, error)
	listAllFunc         func(ctx context.Context) ([]*entity.FundRequest, error)
	listForChartFunc    func(ctx context.Context, filter port.ChartFilter) ([]*entity.FundRequest, error)
	distinctUserIDsFunc func(ctx context.Context) ([]uuid.UUID, error)
}

func (m *mockRequestRepo) Create(ctx context.Context, request *entity.FundRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, request)
	}
	request.ID = 1
	request.CreatedAt = time.Now()
	return nil
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id int64) (*entity.FundRequest, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockRequestRepo) Transition(ctx context.Context, t port.RequestTransition) (bool, error) {
	if m.transitionFunc != nil {
		return m.transitionFunc(ctx, t)
	}
	return true, nil
}

func (m *mockRequestRepo) ListByStatus(ctx context.Context, status workflow.Status) ([]*entity.FundRequest, error) {
	if m.listByStatusFunc != nil {
		return m.listByStatusFunc(ctx, status)
	}
	return []*entity.FundRequest{}, nil
}

func (m *mockRequestRepo) List(ctx context.Context, limit, offset int) ([]*entity.FundRequest, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return []*entity.FundRequest{}, nil
}

func (m *mockRequestRepo) ListAll(ctx context.Context) ([]*entity.FundRequest, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx)
	}
	return []*entity.FundRequest{}, nil
}

func (m *mockRequestRepo) ListForChart(ctx context.Context, filter port.ChartFilter) ([]*entity.FundRequest, error) {
	if m.listForChartFunc != nil {
		return m.listForChartFunc(ctx, filter)
	}
	return []*entity.FundRequest{}, nil
}

func (m *mockRequestRepo) DistinctUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	if m.distinctUserIDsFunc != nil {
		return m.distinctUserIDsFunc(ctx)
	}
	return nil, nil
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestRequestService_Submit(t *testing.T) {
	tests := []struct {
		name    string
		input   SubmitInput
		wantErr error
	}{
		{
			name: "valid request",
			input: SubmitInput{
				Subject:        "Travel",
				AmountRequired: dec("500"),
				Currency:       entity.CurrencyUSD,
			},
			wantErr: nil,
		},
		{
			name: "missing subject",
			input: SubmitInput{
				AmountRequired: dec("500"),
				Currency:       entity.CurrencyUSD,
			},
			wantErr: entity.ErrValidation,
		},
		{
			name: "missing amount",
			input: SubmitInput{
				Subject:  "Travel",
				Currency: entity.CurrencyUSD,
			},
			wantErr: entity.ErrValidation,
		},
		{
			name: "negative amount",
			input: SubmitInput{
				Subject:        "Travel",
				AmountRequired: dec("-1"),
				Currency:       entity.CurrencyUSD,
			},
			wantErr: entity.ErrValidation,
		},
		{
			name: "unsupported currency",
			input: SubmitInput{
				Subject:        "Travel",
				AmountRequired: dec("500"),
				Currency:       entity.Currency("GBP"),
			},
			wantErr: entity.ErrValidation,
		},
		{
			name: "invalid urgency level",
			input: SubmitInput{
				Subject:        "Travel",
				AmountRequired: dec("500"),
				Currency:       entity.CurrencyUSD,
				UrgencyLevel:   entity.Level("Critical"),
			},
			wantErr: entity.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewRequestService(&mockRequestRepo{}, &mockLogger{})

			request, err := svc.Submit(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Submit() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Submit() unexpected error: %v", err)
			}
			if request.Status != workflow.StatusPending {
				t.Errorf("Submit() status = %s, want pending", request.Status)
			}
			if request.AmountApproved != nil {
				t.Errorf("Submit() amount_approved should be unset")
			}
		})
	}
}

func TestRequestService_Approve(t *testing.T) {
	var applied port.RequestTransition
	repo := &mockRequestRepo{
		transitionFunc: func(ctx context.Context, tr port.RequestTransition) (bool, error) {
			applied = tr
			return true, nil
		},
		listByStatusFunc: func(ctx context.Context, status workflow.Status) ([]*entity.FundRequest, error) {
			if status != workflow.StatusPending {
				t.Errorf("refresh queried status %s, want pending", status)
			}
			return []*entity.FundRequest{}, nil
		},
	}
	svc := NewRequestService(repo, &mockLogger{})

	pending, err := svc.Approve(context.Background(), 7, "ok")
	if err != nil {
		t.Fatalf("Approve() error: %v", err)
	}
	if pending == nil {
		t.Fatal("Approve() should return the refreshed pending list")
	}
	if applied.From != workflow.StatusPending || applied.To != workflow.StatusApproved {
		t.Errorf("transition %s -> %s, want pending -> approved", applied.From, applied.To)
	}
	if !applied.CopyRequiredAmount {
		t.Error("approval must copy amount_required into amount_approved at the store")
	}
	if applied.AmountApproved != nil {
		t.Error("approval must not carry a caller-supplied amount")
	}
	if applied.Remark != "ok" {
		t.Errorf("remark = %q, want %q", applied.Remark, "ok")
	}
}

func TestRequestService_PartiallyApprove(t *testing.T) {
	tests := []struct {
		name   string
		amount *decimal.Decimal
		want   string
	}{
		{"explicit amount", dec("250.50"), "250.5"},
		{"absent amount defaults to zero", nil, "0"},
		{"amount above required is not bounded", dec("9999"), "9999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var applied port.RequestTransition
			repo := &mockRequestRepo{
				transitionFunc: func(ctx context.Context, tr port.RequestTransition) (bool, error) {
					applied = tr
					return true, nil
				},
			}
			svc := NewRequestService(repo, &mockLogger{})

			_, err := svc.PartiallyApprove(context.Background(), 7, "partial", tt.amount)
			if err != nil {
				t.Fatalf("PartiallyApprove() error: %v", err)
			}
			if applied.To != workflow.StatusPartiallyApproved {
				t.Errorf("target status = %s, want partially_approved", applied.To)
			}
			if applied.AmountApproved == nil {
				t.Fatal("partial approval must carry an amount")
			}
			if applied.AmountApproved.String() != tt.want {
				t.Errorf("amount = %s, want %s", applied.AmountApproved, tt.want)
			}
		})
	}
}

func TestRequestService_Decline(t *testing.T) {
	var applied port.RequestTransition
	repo := &mockRequestRepo{
		transitionFunc: func(ctx context.Context, tr port.RequestTransition) (bool, error) {
			applied = tr
			return true, nil
		},
	}
	svc := NewRequestService(repo, &mockLogger{})

	if _, err := svc.Decline(context.Background(), 7, "no budget"); err != nil {
		t.Fatalf("Decline() error: %v", err)
	}
	if applied.To != workflow.StatusDeclined {
		t.Errorf("target status = %s, want declined", applied.To)
	}
	if applied.AmountApproved != nil || applied.CopyRequiredAmount {
		t.Error("decline must leave amount_approved untouched")
	}
}

func TestRequestService_TransitionMisses(t *testing.T) {
	tests := []struct {
		name    string
		current *entity.FundRequest
		wantErr error
	}{
		{
			name:    "missing row",
			current: nil,
			wantErr: entity.ErrNotFound,
		},
		{
			name:    "already terminal",
			current: &entity.FundRequest{ID: 7, Status: workflow.StatusDeclined},
			wantErr: entity.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRequestRepo{
				transitionFunc: func(ctx context.Context, tr port.RequestTransition) (bool, error) {
					return false, nil
				},
				getByIDFunc: func(ctx context.Context, id int64) (*entity.FundRequest, error) {
					return tt.current, nil
				},
			}
			svc := NewRequestService(repo, &mockLogger{})

			_, err := svc.Approve(context.Background(), 7, "ok")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Approve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequestService_ListPage(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		perPage    int
		wantLimit  int
		wantOffset int
		wantPage   int
	}{
		{"first page", 1, 5, 5, 0, 1},
		{"second page", 2, 5, 5, 5, 2},
		{"page below one clamps", 0, 5, 5, 0, 1},
		{"negative page clamps", -3, 5, 5, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit, gotOffset int
			repo := &mockRequestRepo{
				listFunc: func(ctx context.Context, limit, offset int) ([]*entity.FundRequest, error) {
					gotLimit, gotOffset = limit, offset
					return []*entity.FundRequest{}, nil
				},
			}
			svc := NewRequestService(repo, &mockLogger{})

			_, page, err := svc.ListPage(context.Background(), tt.page, tt.perPage)
			if err != nil {
				t.Fatalf("ListPage() error: %v", err)
			}
			if page != tt.wantPage {
				t.Errorf("page = %d, want %d", page, tt.wantPage)
			}
			if gotLimit != tt.wantLimit || gotOffset != tt.wantOffset {
				t.Errorf("query limit/offset = %d/%d, want %d/%d", gotLimit, gotOffset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
