package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/stomadent/clinic-api/internal/model"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

type AppointmentActionRepository interface {
	Get(ctx context.Context, id string) (*model.AppointmentAction, error)
	// GetForPatient scopes the lookup by the authenticated patient's external
	// id so a credential for patient A can never load patient B's record.
	GetForPatient(ctx context.Context, id, prodentisID string) (*model.AppointmentAction, error)
	ListForPatient(ctx context.Context, prodentisID string) ([]*model.AppointmentAction, error)
	MarkCancelled(ctx context.Context, id string, now time.Time) error
	MarkAttendanceConfirmed(ctx context.Context, id string, now time.Time) error
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	GetByEmail(ctx context.Context, email string) (*model.Patient, error)
	GetByProdentisID(ctx context.Context, prodentisID string) (*model.Patient, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	GetRoles(ctx context.Context, id uuid.UUID) ([]string, error)
	GrantRole(ctx context.Context, id uuid.UUID, role string) error
}

type TokenRepository interface {
	CreateVerificationToken(ctx context.Context, token *model.EmailVerificationToken) error
	// ConsumeVerificationToken returns the staged registration and marks the
	// token used in the same transaction. Expired or used tokens are ErrNotFound.
	ConsumeVerificationToken(ctx context.Context, token string) (*model.EmailVerificationToken, error)
	StoreResetToken(ctx context.Context, patientID uuid.UUID, token string, expiry time.Time) error
	ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error)
}

type ShopRepository interface {
	ListProducts(ctx context.Context) ([]*model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	CreateOrder(ctx context.Context, order *model.Order, items []*model.OrderItem) error
	SetStripeSession(ctx context.Context, orderID uuid.UUID, sessionID string) error
	MarkOrderPaidBySession(ctx context.Context, sessionID string) error
}
