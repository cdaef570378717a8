package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/stomadent/clinic-api/internal/model"
	"github.com/stomadent/clinic-api/internal/repository"
	"github.com/stomadent/clinic-api/internal/service/auth"
	apperrors "github.com/stomadent/clinic-api/pkg/errors"
	"github.com/stomadent/clinic-api/pkg/logger"
	"github.com/stomadent/clinic-api/pkg/security"
)

// Roles that can be granted through the promote endpoint.
var validRoles = map[string]bool{
	"admin":  true,
	"editor": true,
	"staff":  true,
}

type Service struct {
	patients repository.PatientRepository
	authSvc  *auth.Service
	hasher   security.PasswordHasher
	logger   *logger.Logger
}

func NewService(patients repository.PatientRepository, authSvc *auth.Service, hasher security.PasswordHasher, log *logger.Logger) *Service {
	return &Service{
		patients: patients,
		authSvc:  authSvc,
		hasher:   hasher,
		logger:   log,
	}
}

// PromoteRoles grants roles to the account behind patientEmail, creating the
// account with a random password when it does not exist yet. Each role is
// granted independently; one failing grant does not abort the rest.
func (s *Service) PromoteRoles(ctx context.Context, req *model.PromoteRolesRequest) (*model.PromoteRolesResponse, error) {
	for _, role := range req.Roles {
		if !validRoles[role] {
			return nil, apperrors.BadRequest(fmt.Sprintf("Nieprawidłowa rola: %s", role), nil)
		}
	}

	patient, err := s.patients.GetByEmail(ctx, req.PatientEmail)
	isNew := false
	if errors.Is(err, repository.ErrNotFound) {
		patient, err = s.createAccount(ctx, req.PatientEmail)
		if err != nil {
			return nil, err
		}
		isNew = true
	} else if err != nil {
		return nil, apperrors.Internal(err)
	}

	var granted, failed []string
	for _, role := range req.Roles {
		if err := s.patients.GrantRole(ctx, patient.ID, role); err != nil {
			s.logger.Error(err, "failed to grant role",
				"email", req.PatientEmail, "role", role)
			failed = append(failed, role)
			continue
		}
		granted = append(granted, role)
	}

	if req.SendPasswordReset {
		// Advisory: the grants stand whether or not the mail goes out.
		if err := s.authSvc.RequestPasswordReset(ctx, req.PatientEmail); err != nil {
			s.logger.Error(err, "failed to send promote reset email", "email", req.PatientEmail)
		}
	}

	return &model.PromoteRolesResponse{
		Success:      true,
		UserID:       patient.ID.String(),
		Email:        patient.Email,
		GrantedRoles: granted,
		FailedRoles:  failed,
		IsNewAccount: isNew,
		Message:      "Role zostały nadane.",
	}, nil
}

func (s *Service) createAccount(ctx context.Context, email string) (*model.Patient, error) {
	// Random password; the owner sets a real one through the reset flow.
	random, err := security.GenerateToken(16)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	hash, err := s.hasher.Hash(random)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	patient := &model.Patient{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}
