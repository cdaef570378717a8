package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a self-registered portal account keyed by the external
// practice-management identifier.
type Patient struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ProdentisID  string    `db:"prodentis_id" json:"prodentisId"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	Address      string    `db:"address" json:"address,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// EmailVerificationToken stages a registration until the patient clicks the
// emailed link. The patient row is created only on exchange, so accounts can
// never exist for unverified addresses.
type EmailVerificationToken struct {
	Token        string    `db:"token"`
	ProdentisID  string    `db:"prodentis_id"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	PasswordHash string    `db:"password_hash"`
	ExpiresAt    time.Time `db:"expires_at"`
	Used         bool      `db:"used"`
	CreatedAt    time.Time `db:"created_at"`
}

type RegisterPatientRequest struct {
	ProdentisID string `json:"prodentisId" binding:"required"`
	Phone       string `json:"phone" binding:"required,phone"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

type LoginRequest struct {
	Email       string `json:"email" binding:"omitempty,email"`
	ProdentisID string `json:"prodentisId"`
	Password    string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"accessToken"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ConfirmResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type PromoteRolesRequest struct {
	PatientEmail      string   `json:"patientEmail" binding:"required,email"`
	Roles             []string `json:"roles" binding:"required,min=1"`
	SendPasswordReset bool     `json:"sendPasswordReset"`
}

type PromoteRolesResponse struct {
	Success      bool     `json:"success"`
	UserID       string   `json:"userId"`
	Email        string   `json:"email"`
	GrantedRoles []string `json:"grantedRoles"`
	FailedRoles  []string `json:"failedRoles"`
	IsNewAccount bool     `json:"isNewAccount"`
	Message      string   `json:"message"`
}
