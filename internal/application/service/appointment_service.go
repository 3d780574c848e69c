package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mbet-dev/fund-tracker/internal/application/port"
	"github.com/mbet-dev/fund-tracker/internal/domain/entity"
)

// ScheduleInput carries the fields of a new appointment.
type ScheduleInput struct {
	Date         string // YYYY-MM-DD
	Time         string // HH:MM
	LocationType entity.LocationType
	Description  string
	CreatedBy    *uuid.UUID
}

// AppointmentService records follow-up appointments for fund requests.
type AppointmentService interface {
	Schedule(ctx context.Context, input ScheduleInput) (*entity.Appointment, error)
	List(ctx context.Context) ([]*entity.Appointment, error)
}

type appointmentServiceImpl struct {
	appointmentRepo port.AppointmentRepository
	logger          Logger
}

// NewAppointmentService creates a new AppointmentService
func NewAppointmentService(appointmentRepo port.AppointmentRepository, logger Logger) AppointmentService {
	return &appointmentServiceImpl{
		appointmentRepo: appointmentRepo,
		logger:          logger,
	}
}

// Schedule persists a new appointment record.
func (s *appointmentServiceImpl) Schedule(ctx context.Context, input ScheduleInput) (*entity.Appointment, error) {
	if input.Date == "" {
		return nil, fmt.Errorf("%w: date is required", entity.ErrValidation)
	}
	if input.Time == "" {
		return nil, fmt.Errorf("%w: time is required", entity.ErrValidation)
	}
	if !input.LocationType.IsValid() {
		return nil, fmt.Errorf("%w: invalid location type %q", entity.ErrValidation, input.LocationType)
	}

	appointment := &entity.Appointment{
		ScheduledOn:  input.Date,
		ScheduledAt:  input.Time,
		LocationType: input.LocationType,
		Description:  input.Description,
		CreatedBy:    input.CreatedBy,
	}

	if err := s.appointmentRepo.Create(ctx, appointment); err != nil {
		s.logger.Error("Failed to create appointment", "error", err)
		return nil, err
	}

	s.logger.Info("Appointment scheduled", "id", appointment.ID, "on", appointment.ScheduledOn)
	return appointment, nil
}

// List returns all appointments, newest first.
func (s *appointmentServiceImpl) List(ctx context.Context) ([]*entity.Appointment, error) {
	appointments, err := s.appointmentRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list appointments", "error", err)
		return nil, err
	}
	return appointments, nil
}
