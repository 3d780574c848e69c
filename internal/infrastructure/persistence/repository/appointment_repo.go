package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mbet-dev/fund-tracker/internal/application/port"
	"github.com/mbet-dev/fund-tracker/internal/domain/entity"
	"github.com/mbet-dev/fund-tracker/internal/infrastructure/persistence/sqlite"
)

// AppointmentRepository implements port.AppointmentRepository
type AppointmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *sql.DB, logger *zap.Logger) port.AppointmentRepository {
	return &AppointmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a scheduled appointment.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	query := `
		INSERT INTO appointments (scheduled_on, scheduled_at, location_type, description, created_by)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		appointment.ScheduledOn,
		appointment.ScheduledAt,
		string(appointment.LocationType),
		appointment.Description,
		nullUUID(appointment.CreatedBy),
	)
	if err != nil {
		r.logger.Error("Failed to create appointment", zap.Error(err))
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	appointment.ID = id
	return nil
}

// List retrieves all appointments, newest first.
func (r *AppointmentRepository) List(ctx context.Context) ([]*entity.Appointment, error) {
	query := `
		SELECT id, scheduled_on, scheduled_at, location_type, description, created_by, created_at
		FROM appointments
		ORDER BY created_at DESC, id DESC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list appointments", zap.Error(err))
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*entity.Appointment
	for rows.Next() {
		var appointment entity.Appointment
		var locationType string
		var createdBy sql.NullString

		err := rows.Scan(
			&appointment.ID,
			&appointment.ScheduledOn,
			&appointment.ScheduledAt,
			&locationType,
			&appointment.Description,
			&createdBy,
			&appointment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}

		appointment.LocationType = entity.LocationType(locationType)

		if createdBy.Valid {
			id, err := uuid.Parse(createdBy.String)
			if err != nil {
				return nil, fmt.Errorf("malformed created_by %q: %w", createdBy.String, err)
			}
			appointment.CreatedBy = &id
		}

		appointments = append(appointments, &appointment)
	}
	return appointments, rows.Err()
}

// Verify interface compliance
var _ port.AppointmentRepository = (*AppointmentRepository)(nil)
