package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stomadent/clinic-api/internal/model"
	"github.com/stomadent/clinic-api/internal/repository"
)

type appointmentActionRepository struct {
	db *sqlx.DB
}

func NewAppointmentActionRepository(db *sqlx.DB) repository.AppointmentActionRepository {
	return &appointmentActionRepository{db: db}
}

const appointmentActionColumns = `
	id, appointment_date, patient_id, patient_name, patient_phone,
	doctor_name, status, attendance_confirmed, attendance_confirmed_at,
	reschedule_requested_at, created_at, updated_at
`

func (r *appointmentActionRepository) Get(ctx context.Context, id string) (*model.AppointmentAction, error) {
	query := `
		SELECT ` + appointmentActionColumns + `
		FROM appointment_actions
		WHERE id = $1
	`
	var action model.AppointmentAction
	err := r.db.GetContext(ctx, &action, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment action: %w", err)
	}
	return &action, nil
}

func (r *appointmentActionRepository) GetForPatient(ctx context.Context, id, prodentisID string) (*model.AppointmentAction, error) {
	query := `
		SELECT ` + appointmentActionColumns + `
		FROM appointment_actions
		WHERE id = $1 AND patient_id = $2
	`
	var action model.AppointmentAction
	err := r.db.GetContext(ctx, &action, query, id, prodentisID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment action for patient: %w", err)
	}
	return &action, nil
}

func (r *appointmentActionRepository) ListForPatient(ctx context.Context, prodentisID string) ([]*model.AppointmentAction, error) {
	query := `
		SELECT ` + appointmentActionColumns + `
		FROM appointment_actions
		WHERE patient_id = $1
		ORDER BY appointment_date DESC
	`
	var actions []*model.AppointmentAction
	err := r.db.SelectContext(ctx, &actions, query, prodentisID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointment actions: %w", err)
	}
	return actions, nil
}

// MarkCancelled flips the record to reschedule_requested. The status filter
// keeps a lost race with a concurrent cancel harmless: the second UPDATE
// matches zero rows and is treated as applied.
func (r *appointmentActionRepository) MarkCancelled(ctx context.Context, id string, now time.Time) error {
	query := `
		UPDATE appointment_actions
		SET status = $1, reschedule_requested_at = $2, updated_at = $2
		WHERE id = $3 AND status NOT IN ($4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		model.AppointmentStatusRescheduleRequested,
		now,
		id,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusRescheduleRequested,
	)
	if err != nil {
		return fmt.Errorf("failed to mark appointment cancelled: %w", err)
	}
	return nil
}

func (r *appointmentActionRepository) MarkAttendanceConfirmed(ctx context.Context, id string, now time.Time) error {
	query := `
		UPDATE appointment_actions
		SET attendance_confirmed = TRUE, attendance_confirmed_at = $1,
		    status = $2, updated_at = $1
		WHERE id = $3 AND attendance_confirmed = FALSE
	`
	_, err := r.db.ExecContext(ctx, query,
		now,
		model.AppointmentStatusAttendanceConfirmed,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark attendance confirmed: %w", err)
	}
	return nil
}
