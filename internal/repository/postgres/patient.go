package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stomadent/clinic-api/internal/model"
	"github.com/stomadent/clinic-api/internal/repository"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, prodentis_id, name, email, phone, address,
			password_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.ProdentisID,
		patient.Name,
		patient.Email,
		patient.Phone,
		patient.Address,
		patient.PasswordHash,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

const patientColumns = `
	id, prodentis_id, name, email, phone, address,
	password_hash, created_at, updated_at
`

func (r *patientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return r.getBy(ctx, "id", id)
}

func (r *patientRepository) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	return r.getBy(ctx, "email", email)
}

func (r *patientRepository) GetByProdentisID(ctx context.Context, prodentisID string) (*model.Patient, error) {
	return r.getBy(ctx, "prodentis_id", prodentisID)
}

func (r *patientRepository) getBy(ctx context.Context, column string, value interface{}) (*model.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM patients WHERE %s = $1`, patientColumns, column)

	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient by %s: %w", column, err)
	}
	return &patient, nil
}

func (r *patientRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE patients
		SET password_hash = $1, updated_at = NOW()
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *patientRepository) GetRoles(ctx context.Context, id uuid.UUID) ([]string, error) {
	query := `
		SELECT role FROM patient_roles
		WHERE patient_id = $1
		ORDER BY role
	`
	var roles []string
	if err := r.db.SelectContext(ctx, &roles, query, id); err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}
	return roles, nil
}

func (r *patientRepository) GrantRole(ctx context.Context, id uuid.UUID, role string) error {
	query := `
		INSERT INTO patient_roles (patient_id, role, granted_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (patient_id, role) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, id, role)
	if err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}
	return nil
}
