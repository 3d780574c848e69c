package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mbet-dev/fund-tracker/internal/application/port"
	"github.com/mbet-dev/fund-tracker/internal/domain/entity"
	"github.com/mbet-dev/fund-tracker/internal/domain/workflow"
)

// Filter types accepted by BuildChartSeries.
const (
	FilterAll        = "all"
	FilterUser       = "user"
	FilterUrgency    = "urgency"
	FilterImportance = "importance"
)

// Time periods accepted by BuildChartSeries. Anything else means "since epoch".
const (
	PeriodWeekly    = "weekly"
	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
)

// ReportService folds fund requests into chart and summary form.
type ReportService interface {
	BuildChartSeries(ctx context.Context, filterType, filterValue, timePeriod string) (*entity.ChartSeries, error)
	BuildSummaryTable(ctx context.Context) ([]entity.ReportRow, error)
	ListUsers(ctx context.Context) (*entity.UserListing, error)
}

type reportServiceImpl struct {
	requestRepo port.RequestRepository
	userRepo    port.UserRepository
	logger      Logger
	now         func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(requestRepo port.RequestRepository, userRepo port.UserRepository, logger Logger) ReportService {
	return &reportServiceImpl{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// BuildChartSeries scans the time-windowed, optionally filtered requests
// and groups amounts by "status (currency)" in first-seen order.
func (s *reportServiceImpl) BuildChartSeries(ctx context.Context, filterType, filterValue, timePeriod string) (*entity.ChartSeries, error) {
	filter := port.ChartFilter{Since: startDate(timePeriod, s.now())}

	switch filterType {
	case FilterAll, "":
		// no extra restriction
	case FilterUser:
		if filterValue != "" {
			userID, err := uuid.Parse(filterValue)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid user id %q", entity.ErrValidation, filterValue)
			}
			filter.UserID = &userID
		}
	case FilterUrgency:
		filter.Urgency = entity.Level(filterValue)
	case FilterImportance:
		filter.Importance = entity.Level(filterValue)
	default:
		return nil, fmt.Errorf("%w: unknown filter type %q", entity.ErrValidation, filterType)
	}

	requests, err := s.requestRepo.ListForChart(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to scan requests for chart", "error", err)
		return nil, err
	}

	labels, amounts := foldChart(requests)
	return entity.NewChartSeries(labels, amounts), nil
}

// foldChart groups requests by "{status} ({currency})" and sums their
// chart amounts. Key order is the first-seen order of the scan. The fold
// is pure: folding the concatenation of two row sets equals merging their
// separate folds by summing shared keys.
func foldChart(requests []*entity.FundRequest) ([]string, []decimal.Decimal) {
	var labels []string
	totals := make(map[string]decimal.Decimal)

	for _, request := range requests {
		key := fmt.Sprintf("%s (%s)", request.Status, request.Currency)
		if _, seen := totals[key]; !seen {
			labels = append(labels, key)
		}
		totals[key] = totals[key].Add(request.ChartAmount())
	}

	amounts := make([]decimal.Decimal, len(labels))
	for i, label := range labels {
		amounts[i] = totals[label]
	}
	return labels, amounts
}

// BuildSummaryTable folds every request, unfiltered, into the three fixed
// report rows. Approved and partially approved requests share one row
// whose amount combines all per-currency totals.
func (s *reportServiceImpl) BuildSummaryTable(ctx context.Context) ([]entity.ReportRow, error) {
	requests, err := s.requestRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to scan requests for summary", "error", err)
		return nil, err
	}
	return foldSummary(requests), nil
}

func foldSummary(requests []*entity.FundRequest) []entity.ReportRow {
	approvedByCurrency := make(map[entity.Currency]decimal.Decimal)
	var approvedCount, declinedCount, pendingCount int

	for _, request := range requests {
		switch request.Status {
		case workflow.StatusApproved, workflow.StatusPartiallyApproved:
			approvedCount++
			if request.AmountApproved != nil {
				approvedByCurrency[request.Currency] = approvedByCurrency[request.Currency].Add(*request.AmountApproved)
			}
		case workflow.StatusDeclined:
			declinedCount++
		case workflow.StatusPending:
			pendingCount++
		}
	}

	// Currency distinction is lost here on purpose: the report combines
	// every approved total into a single figure.
	approvedTotal := decimal.Zero
	for _, total := range approvedByCurrency {
		approvedTotal = approvedTotal.Add(total)
	}

	return []entity.ReportRow{
		{Category: workflow.StatusApproved.Display(), Amount: &approvedTotal, Count: approvedCount},
		{Category: workflow.StatusDeclined.Display(), Count: declinedCount},
		{Category: workflow.StatusPending.Display(), Count: pendingCount},
	}
}

// ListUsers resolves the distinct submitters of all requests to their
// display identities. Individual lookup failures are logged and collected
// instead of aborting the listing.
func (s *reportServiceImpl) ListUsers(ctx context.Context) (*entity.UserListing, error) {
	ids, err := s.requestRepo.DistinctUserIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to list distinct submitters", "error", err)
		return nil, err
	}

	listing := &entity.UserListing{}
	for _, id := range ids {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil || user == nil {
			s.logger.Error("Failed to resolve submitter", "error", err, "user_id", id)
			listing.FailedIDs = append(listing.FailedIDs, id)
			continue
		}
		listing.Resolved = append(listing.Resolved, entity.UserRef{ID: user.ID, Email: user.Email})
	}
	return listing, nil
}

// startDate maps a time period to the lower bound of the chart scan.
func startDate(period string, now time.Time) time.Time {
	switch period {
	case PeriodWeekly:
		return now.AddDate(0, 0, -7)
	case PeriodMonthly:
		return now.AddDate(0, -1, 0)
	case PeriodQuarterly:
		return now.AddDate(0, -3, 0)
	default:
		return time.Unix(0, 0).UTC()
	}
}
