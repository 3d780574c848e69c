package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mbet-dev/fund-tracker/internal/application/port"
	"github.com/mbet-dev/fund-tracker/internal/domain/entity"
	"github.com/mbet-dev/fund-tracker/internal/domain/workflow"
	"github.com/mbet-dev/fund-tracker/internal/infrastructure/persistence/sqlite"
)

const requestColumns = `id, subject, case_description, amount_required, amount_approved,
		currency, urgency_level, importance_level, status, remark, user_id,
		created_at, updated_at`

// RequestRepository implements port.RequestRepository
type RequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sql.DB, logger *zap.Logger) port.RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new fund request.
func (r *RequestRepository) Create(ctx context.Context, request *entity.FundRequest) error {
	query := `
		INSERT INTO fund_requests (
			subject, case_description, amount_required, currency,
			urgency_level, importance_level, status, user_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		request.Subject,
		request.CaseDescription,
		request.AmountRequired.String(),
		string(request.Currency),
		nullLevel(request.UrgencyLevel),
		nullLevel(request.ImportanceLevel),
		string(request.Status),
		nullUUID(request.UserID),
	)
	if err != nil {
		r.logger.Error("Failed to create fund request", zap.Error(err))
		return fmt.Errorf("failed to create fund request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	request.ID = id
	return nil
}

// GetByID retrieves a fund request by ID. A missing row returns (nil, nil).
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*entity.FundRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM fund_requests WHERE id = ?`

	row := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id)
	request, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get fund request", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get fund request: %w", err)
	}
	return request, nil
}

// Transition applies a guarded status update. The WHERE clause pins the
// current status, so the write misses (false, nil) when the row is absent
// or has already left the source status.
func (r *RequestRepository) Transition(ctx context.Context, t port.RequestTransition) (bool, error) {
	var query string
	var args []interface{}

	switch {
	case t.CopyRequiredAmount:
		// The store computes amount_approved from the authoritative row,
		// never from a value read earlier.
		query = `
			UPDATE fund_requests
			SET status = ?, remark = ?, amount_approved = amount_required,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND status = ?
		`
		args = []interface{}{string(t.To), t.Remark, t.ID, string(t.From)}
	case t.AmountApproved != nil:
		query = `
			UPDATE fund_requests
			SET status = ?, remark = ?, amount_approved = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND status = ?
		`
		args = []interface{}{string(t.To), t.Remark, t.AmountApproved.String(), t.ID, string(t.From)}
	default:
		query = `
			UPDATE fund_requests
			SET status = ?, remark = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND status = ?
		`
		args = []interface{}{string(t.To), t.Remark, t.ID, string(t.From)}
	}

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to transition fund request",
			zap.Int64("id", t.ID),
			zap.String("to", t.To.String()),
			zap.Error(err))
		return false, fmt.Errorf("failed to transition fund request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListByStatus retrieves all requests holding the given status, oldest first.
func (r *RequestRepository) ListByStatus(ctx context.Context, status workflow.Status) ([]*entity.FundRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM fund_requests WHERE status = ? ORDER BY created_at ASC, id ASC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, string(status))
	if err != nil {
		r.logger.Error("Failed to list requests by status", zap.String("status", status.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list fund requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// List retrieves one offset/limit page in insertion order.
func (r *RequestRepository) List(ctx context.Context, limit, offset int) ([]*entity.FundRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM fund_requests ORDER BY id ASC LIMIT ? OFFSET ?`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list fund requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list fund requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ListAll retrieves every fund request in insertion order.
func (r *RequestRepository) ListAll(ctx context.Context) ([]*entity.FundRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM fund_requests ORDER BY id ASC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to scan fund requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list fund requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ListForChart retrieves the requests inside the chart's time window,
// optionally restricted to one submitter, urgency, or importance.
func (r *RequestRepository) ListForChart(ctx context.Context, filter port.ChartFilter) ([]*entity.FundRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM fund_requests WHERE created_at >= ?`
	args := []interface{}{filter.Since.UTC()}

	switch {
	case filter.UserID != nil:
		query += ` AND user_id = ?`
		args = append(args, filter.UserID.String())
	case filter.Urgency != "":
		query += ` AND urgency_level = ?`
		args = append(args, string(filter.Urgency))
	case filter.Importance != "":
		query += ` AND importance_level = ?`
		args = append(args, string(filter.Importance))
	}

	query += ` ORDER BY id ASC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to scan fund requests for chart", zap.Error(err))
		return nil, fmt.Errorf("failed to list fund requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// DistinctUserIDs returns the distinct non-null submitter ids.
func (r *RequestRepository) DistinctUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT user_id FROM fund_requests WHERE user_id IS NOT NULL`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list distinct submitters", zap.Error(err))
		return nil, fmt.Errorf("failed to list distinct submitters: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan submitter id: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			// Malformed ids are skipped rather than failing the listing.
			r.logger.Error("Skipping malformed submitter id", zap.String("user_id", raw), zap.Error(err))
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*entity.FundRequest, error) {
	var request entity.FundRequest
	var amountRequired string
	var amountApproved, urgency, importance, remark, userID sql.NullString
	var status, currency string

	err := row.Scan(
		&request.ID,
		&request.Subject,
		&request.CaseDescription,
		&amountRequired,
		&amountApproved,
		&currency,
		&urgency,
		&importance,
		&status,
		&remark,
		&userID,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	required, err := decimal.NewFromString(amountRequired)
	if err != nil {
		return nil, fmt.Errorf("malformed amount_required %q: %w", amountRequired, err)
	}
	request.AmountRequired = required

	if amountApproved.Valid {
		approved, err := decimal.NewFromString(amountApproved.String)
		if err != nil {
			return nil, fmt.Errorf("malformed amount_approved %q: %w", amountApproved.String, err)
		}
		request.AmountApproved = &approved
	}

	request.Currency = entity.Currency(currency)
	request.Status = workflow.Status(status)
	request.UrgencyLevel = entity.Level(urgency.String)
	request.ImportanceLevel = entity.Level(importance.String)
	request.Remark = remark.String

	if userID.Valid {
		parsed, err := uuid.Parse(userID.String)
		if err != nil {
			return nil, fmt.Errorf("malformed user_id %q: %w", userID.String, err)
		}
		request.UserID = &parsed
	}

	return &request, nil
}

func collectRequests(rows *sql.Rows) ([]*entity.FundRequest, error) {
	var requests []*entity.FundRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund request: %w", err)
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

func nullLevel(level entity.Level) interface{} {
	if level == "" {
		return nil
	}
	return string(level)
}

func nullUUID(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}

// Verify interface compliance
var _ port.RequestRepository = (*RequestRepository)(nil)
