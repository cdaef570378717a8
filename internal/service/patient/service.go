package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stomadent/clinic-api/internal/email"
	"github.com/stomadent/clinic-api/internal/model"
	"github.com/stomadent/clinic-api/internal/repository"
	apperrors "github.com/stomadent/clinic-api/pkg/errors"
	"github.com/stomadent/clinic-api/pkg/logger"
	"github.com/stomadent/clinic-api/pkg/security"
)

const verificationTokenTTL = 24 * time.Hour

type Service struct {
	patients repository.PatientRepository
	tokens   repository.TokenRepository
	emailSvc email.Service
	hasher   security.PasswordHasher
	logger   *logger.Logger
}

func NewService(
	patients repository.PatientRepository,
	tokens repository.TokenRepository,
	emailSvc email.Service,
	hasher security.PasswordHasher,
	log *logger.Logger,
) *Service {
	return &Service{
		patients: patients,
		tokens:   tokens,
		emailSvc: emailSvc,
		hasher:   hasher,
		logger:   log,
	}
}

// Register stages a two-phase registration: the patient row is created only
// after the emailed verification link is exchanged, so accounts can never
// exist for unverified addresses.
func (s *Service) Register(ctx context.Context, req *model.RegisterPatientRequest) error {
	_, err := s.patients.GetByProdentisID(ctx, req.ProdentisID)
	if err == nil {
		return apperrors.Conflict("Konto dla tego pacjenta już istnieje.", nil)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return apperrors.Internal(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return apperrors.BadRequest("Hasło musi mieć co najmniej 8 znaków.", err)
	}

	token, err := security.GenerateToken(32)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to generate verification token: %w", err))
	}

	staged := &model.EmailVerificationToken{
		Token:        token,
		ProdentisID:  req.ProdentisID,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		ExpiresAt:    time.Now().Add(verificationTokenTTL),
	}
	if err := s.tokens.CreateVerificationToken(ctx, staged); err != nil {
		return apperrors.Internal(err)
	}

	if err := s.emailSvc.SendVerification(ctx, req.Email, token); err != nil {
		s.logger.Error(err, "failed to send verification email", "email", req.Email)
		return apperrors.Internal(err)
	}
	return nil
}

// VerifyEmail exchanges an unused, unexpired token for a real patient account.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*model.Patient, error) {
	staged, err := s.tokens.ConsumeVerificationToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.BadRequest("Link aktywacyjny jest nieprawidłowy lub wygasł.", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	patient := &model.Patient{
		ProdentisID:  staged.ProdentisID,
		Email:        staged.Email,
		Phone:        staged.Phone,
		PasswordHash: staged.PasswordHash,
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, apperrors.Internal(err)
	}

	// Welcome mail is advisory; the account exists either way.
	if err := s.emailSvc.SendWelcome(ctx, patient.Email, patient.Name); err != nil {
		s.logger.Error(err, "failed to send welcome email", "email", patient.Email)
	}

	return patient, nil
}
