package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stomadent/clinic-api/internal/model"
	"github.com/stomadent/clinic-api/internal/ratelimit"
	"github.com/stomadent/clinic-api/internal/repository"
	"github.com/stomadent/clinic-api/pkg/auth"
	apperrors "github.com/stomadent/clinic-api/pkg/errors"
	"github.com/stomadent/clinic-api/pkg/logger"
	"github.com/stomadent/clinic-api/pkg/security"
)

const resetTokenTTL = time.Hour

// EmailSender is the subset of the email service the auth flows need.
type EmailSender interface {
	SendPasswordReset(ctx context.Context, email string, token string) error
}

type Service struct {
	patients repository.PatientRepository
	tokens   repository.TokenRepository
	jwt      auth.JWTService
	hasher   security.PasswordHasher
	limiter  ratelimit.Limiter
	emails   EmailSender
	logger   *logger.Logger
}

func NewService(
	patients repository.PatientRepository,
	tokens repository.TokenRepository,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
	limiter ratelimit.Limiter,
	emails EmailSender,
	log *logger.Logger,
) *Service {
	return &Service{
		patients: patients,
		tokens:   tokens,
		jwt:      jwtSvc,
		hasher:   hasher,
		limiter:  limiter,
		emails:   emails,
		logger:   log,
	}
}

// Login verifies credentials by email or external patient id and issues an
// access token carrying the patient's roles.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (string, error) {
	var patient *model.Patient
	var err error
	switch {
	case req.Email != "":
		patient, err = s.patients.GetByEmail(ctx, req.Email)
	case req.ProdentisID != "":
		patient, err = s.patients.GetByProdentisID(ctx, req.ProdentisID)
	default:
		return "", apperrors.BadRequest("Podaj adres e-mail lub numer pacjenta.", nil)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperrors.Unauthorized("Nieprawidłowe dane logowania.", err)
	}
	if err != nil {
		return "", apperrors.Internal(err)
	}

	if err := s.hasher.Compare(patient.PasswordHash, req.Password); err != nil {
		return "", apperrors.Unauthorized("Nieprawidłowe dane logowania.", err)
	}

	roles, err := s.patients.GetRoles(ctx, patient.ID)
	if err != nil {
		return "", apperrors.Internal(err)
	}

	token, err := s.jwt.GenerateAccessToken(&auth.Claims{
		PatientID:   patient.ID.String(),
		ProdentisID: patient.ProdentisID,
		Email:       patient.Email,
		Roles:       roles,
	})
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return token, nil
}

// RequestPasswordReset is rate-limited per email and always reports generic
// success for unknown addresses so account existence does not leak.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	allowed, err := s.limiter.Allow(ctx, "pwreset:"+emailAddr)
	if err != nil {
		// A broken limiter backend must not open the endpoint up.
		s.logger.Error(err, "rate limiter check failed", "email", emailAddr)
		return apperrors.Internal(err)
	}
	if !allowed {
		return apperrors.TooManyRequests("Zbyt wiele prób. Spróbuj ponownie za kilka minut.", nil)
	}

	patient, err := s.patients.GetByEmail(ctx, emailAddr)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Internal(err)
	}

	token, err := security.GenerateToken(32)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to generate reset token: %w", err))
	}
	if err := s.tokens.StoreResetToken(ctx, patient.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return apperrors.Internal(err)
	}

	if err := s.emails.SendPasswordReset(ctx, emailAddr, token); err != nil {
		s.logger.Error(err, "failed to send password reset email", "email", emailAddr)
		return apperrors.Internal(err)
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token and stores the new hash.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	patientID, err := s.tokens.ConsumeResetToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.BadRequest("Link do zmiany hasła jest nieprawidłowy lub wygasł.", err)
	}
	if err != nil {
		return apperrors.Internal(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperrors.BadRequest("Hasło musi mieć co najmniej 8 znaków.", err)
	}
	if err := s.patients.UpdatePassword(ctx, patientID, hash); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
