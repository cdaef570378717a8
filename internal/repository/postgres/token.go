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

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) CreateVerificationToken(ctx context.Context, token *model.EmailVerificationToken) error {
	query := `
		INSERT INTO email_verification_tokens (
			token, prodentis_id, email, phone, password_hash, expires_at, used, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		token.Token,
		token.ProdentisID,
		token.Email,
		token.Phone,
		token.PasswordHash,
		token.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}
	return nil
}

func (r *tokenRepository) ConsumeVerificationToken(ctx context.Context, token string) (*model.EmailVerificationToken, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT token, prodentis_id, email, phone, password_hash, expires_at, used, created_at
		FROM email_verification_tokens
		WHERE token = $1 AND used = FALSE AND expires_at > NOW()
		FOR UPDATE
	`
	var staged model.EmailVerificationToken
	err = tx.GetContext(ctx, &staged, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load verification token: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE email_verification_tokens SET used = TRUE WHERE token = $1`, token); err != nil {
		return nil, fmt.Errorf("failed to mark verification token used: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return &staged, nil
}

func (r *tokenRepository) StoreResetToken(ctx context.Context, patientID uuid.UUID, token string, expiry time.Time) error {
	query := `
		INSERT INTO password_reset_tokens (patient_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (patient_id) DO UPDATE
		SET token = $2, expires_at = $3, used_at = NULL
	`
	_, err := r.db.ExecContext(ctx, query, patientID, token, expiry)
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func (r *tokenRepository) ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	query := `
		UPDATE password_reset_tokens
		SET used_at = NOW()
		WHERE token = $1 AND expires_at > NOW() AND used_at IS NULL
		RETURNING patient_id
	`
	var patientID uuid.UUID
	err := r.db.GetContext(ctx, &patientID, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, repository.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to consume reset token: %w", err)
	}
	return patientID, nil
}
