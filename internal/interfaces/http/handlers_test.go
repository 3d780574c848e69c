package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mbet-dev/fund-tracker/internal/application/service"
	"github.com/mbet-dev/fund-tracker/internal/domain/entity"
	"github.com/mbet-dev/fund-tracker/internal/domain/workflow"
	"github.com/mbet-dev/fund-tracker/internal/export"
	"github.com/mbet-dev/fund-tracker/pkg/utils"
)

type mockAuthService struct {
	signUpFunc     func(ctx context.Context, email, password string) (*entity.User, error)
	signInFunc     func(ctx context.Context, email, password string) (*service.SignInResult, error)
	getSessionFunc func(ctx context.Context, token string) (*entity.Principal, error)
	signOutFunc    func(ctx context.Context, token string) error
}

func (m *mockAuthService) SignUp(ctx context.Context, email, password string) (*entity.User, error) {
	return m.signUpFunc(ctx, email, password)
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*service.SignInResult, error) {
	return m.signInFunc(ctx, email, password)
}

func (m *mockAuthService) GetSession(ctx context.Context, token string) (*entity.Principal, error) {
	return m.getSessionFunc(ctx, token)
}

func (m *mockAuthService) SignOut(ctx context.Context, token string) error {
	return m.signOutFunc(ctx, token)
}

type mockRequestService struct {
	submitFunc           func(ctx context.Context, input service.SubmitInput) (*entity.FundRequest, error)
	approveFunc          func(ctx context.Context, id int64, remark string) ([]*entity.FundRequest, error)
	partiallyApproveFunc func(ctx context.Context, id int64, remark string, amount *decimal.Decimal) ([]*entity.FundRequest, error)
	declineFunc          func(ctx context.Context, id int64, remark string) ([]*entity.FundRequest, error)
	listPendingFunc      func(ctx context.Context) ([]*entity.FundRequest, error)
	listPageFunc         func(ctx context.Context, page, perPage int) ([]*entity.FundRequest, int, error)
}

func (m *mockRequestService) Submit(ctx context.Context, input service.SubmitInput) (*entity.FundRequest, error) {
	return m.submitFunc(ctx, input)
}

func (m *mockRequestService) Approve(ctx context.Context, id int64, remark string) ([]*entity.FundRequest, error) {
	return m.approveFunc(ctx, id, remark)
}

func (m *mockRequestService) PartiallyApprove(ctx context.Context, id int64, remark string, amount *decimal.Decimal) ([]*entity.FundRequest, error) {
	return m.partiallyApproveFunc(ctx, id, remark, amount)
}

func (m *mockRequestService) Decline(ctx context.Context, id int64, remark string) ([]*entity.FundRequest, error) {
	return m.declineFunc(ctx, id, remark)
}

func (m *mockRequestService) ListPending(ctx context.Context) ([]*entity.FundRequest, error) {
	return m.listPendingFunc(ctx)
}

func (m *mockRequestService) ListPage(ctx context.Context, page, perPage int) ([]*entity.FundRequest, int, error) {
	return m.listPageFunc(ctx, page, perPage)
}

type mockReportService struct {
	buildChartSeriesFunc  func(ctx context.Context, filterType, filterValue, timePeriod string) (*entity.ChartSeries, error)
	buildSummaryTableFunc func(ctx context.Context) ([]entity.ReportRow, error)
	listUsersFunc         func(ctx context.Context) (*entity.UserListing, error)
}

func (m *mockReportService) BuildChartSeries(ctx context.Context, filterType, filterValue, timePeriod string) (*entity.ChartSeries, error) {
	return m.buildChartSeriesFunc(ctx, filterType, filterValue, timePeriod)
}

func (m *mockReportService) BuildSummaryTable(ctx context.Context) ([]entity.ReportRow, error) {
	return m.buildSummaryTableFunc(ctx)
}

func (m *mockReportService) ListUsers(ctx context.Context) (*entity.UserListing, error) {
	return m.listUsersFunc(ctx)
}

type mockAppointmentService struct {
	scheduleFunc func(ctx context.Context, input service.ScheduleInput) (*entity.Appointment, error)
	listFunc     func(ctx context.Context) ([]*entity.Appointment, error)
}

func (m *mockAppointmentService) Schedule(ctx context.Context, input service.ScheduleInput) (*entity.Appointment, error) {
	return m.scheduleFunc(ctx, input)
}

func (m *mockAppointmentService) List(ctx context.Context) ([]*entity.Appointment, error) {
	return m.listFunc(ctx)
}

var (
	adminID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	userID  = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

// sessionByToken maps the test bearer tokens to principals.
func sessionByToken(_ context.Context, token string) (*entity.Principal, error) {
	switch token {
	case "admin-token":
		return &entity.Principal{UserID: adminID, Email: "admin@example.com", IsAdmin: true}, nil
	case "user-token":
		return &entity.Principal{UserID: userID, Email: "user@example.com"}, nil
	default:
		return nil, entity.ErrUnauthorized
	}
}

func newTestServer(t *testing.T, requests *mockRequestService, reports *mockReportService) *Server {
	t.Helper()

	auth := &mockAuthService{getSessionFunc: sessionByToken}
	appointments := &mockAppointmentService{
		listFunc: func(ctx context.Context) ([]*entity.Appointment, error) { return nil, nil },
	}

	return NewServer(
		DefaultServerConfig(),
		auth,
		requests,
		reports,
		appointments,
		export.NewReportExporter(zap.NewNop()),
		utils.NewKVLogger(zap.NewNop()),
	)
}

func doRequest(server *Server, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t, &mockRequestService{}, &mockReportService{})

	w := doRequest(server, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	server := newTestServer(t, &mockRequestService{}, &mockReportService{})

	w := doRequest(server, http.MethodGet, "/api/v1/requests", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(server, http.MethodGet, "/api/v1/requests", "bogus-token", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRequired(t *testing.T) {
	server := newTestServer(t, &mockRequestService{}, &mockReportService{})

	w := doRequest(server, http.MethodGet, "/api/v1/requests/pending", "user-token", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(server, http.MethodGet, "/api/v1/reports/summary", "user-token", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubmitRequest(t *testing.T) {
	var captured service.SubmitInput
	requests := &mockRequestService{
		submitFunc: func(ctx context.Context, input service.SubmitInput) (*entity.FundRequest, error) {
			captured = input
			return &entity.FundRequest{
				ID:             7,
				Subject:        input.Subject,
				AmountRequired: *input.AmountRequired,
				Currency:       input.Currency,
				Status:         workflow.StatusPending,
				UserID:         input.UserID,
			}, nil
		},
	}
	server := newTestServer(t, requests, &mockReportService{})

	body := `{"subject":"Laptop","amount_required":"1200.50","currency":"USD"}`
	w := doRequest(server, http.MethodPost, "/api/v1/requests", "user-token", body)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Laptop", captured.Subject)
	assert.Equal(t, "1200.5", captured.AmountRequired.String())
	require.NotNil(t, captured.UserID)
	assert.Equal(t, userID, *captured.UserID)

	var resp struct {
		Success bool                `json:"success"`
		Data    FundRequestResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(7), resp.Data.ID)
	assert.Equal(t, "pending", resp.Data.Status)
	assert.Equal(t, "Pending", resp.Data.StatusDisplay)
}

func TestSubmitRequest_ValidationError(t *testing.T) {
	requests := &mockRequestService{
		submitFunc: func(ctx context.Context, input service.SubmitInput) (*entity.FundRequest, error) {
			return nil, fmt.Errorf("%w: subject is required", entity.ErrValidation)
		},
	}
	server := newTestServer(t, requests, &mockReportService{})

	w := doRequest(server, http.MethodPost, "/api/v1/requests", "user-token", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApproveRequest(t *testing.T) {
	requests := &mockRequestService{
		approveFunc: func(ctx context.Context, id int64, remark string) ([]*entity.FundRequest, error) {
			assert.Equal(t, int64(42), id)
			assert.Equal(t, "looks good", remark)
			return []*entity.FundRequest{}, nil
		},
	}
	server := newTestServer(t, requests, &mockReportService{})

	w := doRequest(server, http.MethodPost, "/api/v1/requests/42/approve", "admin-token", `{"remark":"looks good"}`)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApproveRequest_Conflict(t *testing.T) {
	requests := &mockRequestService{
		approveFunc: func(ctx context.Context, id int64, remark string) ([]*entity.FundRequest, error) {
			return nil, fmt.Errorf("%w: fund request 42 is already approved", entity.ErrConflict)
		},
	}
	server := newTestServer(t, requests, &mockReportService{})

	w := doRequest(server, http.MethodPost, "/api/v1/requests/42/approve", "admin-token", "")

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestApproveRequest_NotFound(t *testing.T) {
	requests := &mockRequestService{
		approveFunc: func(ctx context.Context, id int64, remark string) ([]*entity.FundRequest, error) {
			return nil, fmt.Errorf("%w: fund request 99", entity.ErrNotFound)
		},
	}
	server := newTestServer(t, requests, &mockReportService{})

	w := doRequest(server, http.MethodPost, "/api/v1/requests/99/approve", "admin-token", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPartiallyApproveRequest_PassesAmount(t *testing.T) {
	requests := &mockRequestService{
		partiallyApproveFunc: func(ctx context.Context, id int64, remark string, amount *decimal.Decimal) ([]*entity.FundRequest, error) {
			require.NotNil(t, amount)
			assert.Equal(t, "250.5", amount.String())
			return []*entity.FundRequest{}, nil
		},
	}
	server := newTestServer(t, requests, &mockReportService{})

	w := doRequest(server, http.MethodPost, "/api/v1/requests/1/partially-approve", "admin-token", `{"amount":"250.50"}`)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetChartReport(t *testing.T) {
	reports := &mockReportService{
		buildChartSeriesFunc: func(ctx context.Context, filterType, filterValue, timePeriod string) (*entity.ChartSeries, error) {
			assert.Equal(t, "urgency", filterType)
			assert.Equal(t, "High", filterValue)
			assert.Equal(t, "weekly", timePeriod)
			return entity.NewChartSeries(
				[]string{"pending (USD)"},
				[]decimal.Decimal{decimal.NewFromInt(100)},
			), nil
		},
	}
	server := newTestServer(t, &mockRequestService{}, reports)

	w := doRequest(server, http.MethodGet,
		"/api/v1/reports/chart?filter_type=urgency&filter_value=High&time_period=weekly",
		"admin-token", "")

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data entity.ChartSeries `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"pending (USD)"}, resp.Data.Labels)
	require.Len(t, resp.Data.Datasets, 1)
	assert.Equal(t, []float64{100}, resp.Data.Datasets[0].Data)
}

func TestExportReport(t *testing.T) {
	reports := &mockReportService{
		buildChartSeriesFunc: func(ctx context.Context, filterType, filterValue, timePeriod string) (*entity.ChartSeries, error) {
			return entity.NewChartSeries(nil, nil), nil
		},
		buildSummaryTableFunc: func(ctx context.Context) ([]entity.ReportRow, error) {
			return []entity.ReportRow{{Category: "Pending", Count: 1}}, nil
		},
	}
	server := newTestServer(t, &mockRequestService{}, reports)

	w := doRequest(server, http.MethodGet, "/api/v1/reports/export", "admin-token", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.NotZero(t, w.Body.Len())
}
