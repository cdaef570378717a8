package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stomadent/clinic-api/internal/model"
	"github.com/stomadent/clinic-api/internal/notification"
	"github.com/stomadent/clinic-api/internal/repository"
	apperrors "github.com/stomadent/clinic-api/pkg/errors"
	"github.com/stomadent/clinic-api/pkg/logger"
)

// User-facing messages are Polish by product requirement.
const (
	msgCancelled        = "Prośba o zmianę terminu wizyty została przyjęta."
	msgConfirmed        = "Obecność na wizycie została potwierdzona."
	msgAlreadyCancelled = "Wizyta została już wcześniej odwołana."
	msgAlreadyConfirmed = "Obecność została już wcześniej potwierdzona."
	msgAlreadyPassed    = "Ta wizyta już się odbyła."
	msgCancelTooLate    = "Wizytę można odwołać najpóźniej 2 godziny przed terminem."
	msgConfirmTooEarly  = "Wizytę można potwierdzić najwcześniej 7 dni przed terminem."
	msgPortalTooEarly   = "Wizytę można potwierdzić najwcześniej 24 godziny przed terminem."
)

// Result of one appointment action pass.
type Result struct {
	Action   *model.AppointmentAction
	Message  string
	Already  bool
	Channels map[string]bool
}

// Notifier is the fan-out boundary; satisfied by notification.Notifier.
type Notifier interface {
	Notify(ctx context.Context, msg notification.Message) map[string]bool
}

type Service struct {
	repo     repository.AppointmentActionRepository
	notifier Notifier
	logger   *logger.Logger
	now      func() time.Time
}

func NewService(repo repository.AppointmentActionRepository, notifier Notifier, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   log,
		now:      time.Now,
	}
}

// ApplyAction runs the whole confirm/cancel pass for one request:
// load, idempotency short-circuit, timing policy, conditional write, fan-out.
// patientScope is empty for the public link variants; for the authenticated
// variant it carries the caller's external patient id and the lookup is
// restricted to it.
func (s *Service) ApplyAction(ctx context.Context, kind model.ActionKind, id, patientScope string) (*Result, error) {
	action, err := s.load(ctx, kind, id, patientScope)
	if err != nil {
		return nil, err
	}

	// Duplicate SMS-link clicks are success, not error.
	if already, msg := s.alreadyApplied(kind, action); already {
		return &Result{Action: action, Message: msg, Already: true}, nil
	}

	now := s.now()
	if decision := CheckWindow(kind, action.AppointmentDate, now); !decision.Allowed {
		return nil, apperrors.BadRequest(rejectionMessage(kind, decision.Reason), nil)
	}

	if err := s.write(ctx, kind, id, now); err != nil {
		s.logger.Error(err, "appointment action write failed",
			"appointment_id", id, "kind", string(kind))
		return nil, apperrors.Internal(err)
	}

	channels := s.notifier.Notify(ctx, s.renderEvent(kind, action))

	return &Result{
		Action:   action,
		Message:  successMessage(kind),
		Channels: channels,
	}, nil
}

// ListForPatient returns the visit history for the authenticated patient.
func (s *Service) ListForPatient(ctx context.Context, prodentisID string) ([]*model.AppointmentAction, error) {
	actions, err := s.repo.ListForPatient(ctx, prodentisID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list appointments: %w", err))
	}
	return actions, nil
}

func (s *Service) load(ctx context.Context, kind model.ActionKind, id, patientScope string) (*model.AppointmentAction, error) {
	var action *model.AppointmentAction
	var err error
	if kind == model.ActionConfirmAuth {
		action, err = s.repo.GetForPatient(ctx, id, patientScope)
	} else {
		action, err = s.repo.Get(ctx, id)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Nie znaleziono wizyty.", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return action, nil
}

func (s *Service) alreadyApplied(kind model.ActionKind, action *model.AppointmentAction) (bool, string) {
	switch kind {
	case model.ActionCancel:
		if action.IsCancelled() {
			return true, msgAlreadyCancelled
		}
	case model.ActionConfirm, model.ActionConfirmAuth:
		if action.AttendanceConfirmed {
			return true, msgAlreadyConfirmed
		}
	}
	return false, ""
}

func (s *Service) write(ctx context.Context, kind model.ActionKind, id string, now time.Time) error {
	if kind == model.ActionCancel {
		return s.repo.MarkCancelled(ctx, id, now)
	}
	return s.repo.MarkAttendanceConfirmed(ctx, id, now)
}

func (s *Service) renderEvent(kind model.ActionKind, action *model.AppointmentAction) notification.Message {
	date := action.AppointmentDate.Format("02.01.2006 15:04")

	var header, subject string
	if kind == model.ActionCancel {
		header = "❗ Pacjent prosi o zmianę terminu wizyty"
		subject = fmt.Sprintf("Zmiana terminu: %s, %s", action.PatientName, date)
	} else {
		header = "✅ Pacjent potwierdził obecność na wizycie"
		subject = fmt.Sprintf("Potwierdzenie wizyty: %s, %s", action.PatientName, date)
	}

	text := fmt.Sprintf("%s\nPacjent: %s\nTelefon: %s\nLekarz: %s\nTermin: %s",
		header, action.PatientName, action.PatientPhone, action.DoctorName, date)

	html := fmt.Sprintf(
		"<p><strong>%s</strong></p><ul><li>Pacjent: %s</li><li>Telefon: %s</li><li>Lekarz: %s</li><li>Termin: %s</li></ul>",
		header, action.PatientName, action.PatientPhone, action.DoctorName, date)

	return notification.Message{Subject: subject, Text: text, HTML: html}
}

func successMessage(kind model.ActionKind) string {
	if kind == model.ActionCancel {
		return msgCancelled
	}
	return msgConfirmed
}

func rejectionMessage(kind model.ActionKind, reason RejectionReason) string {
	switch reason {
	case ReasonAlreadyPassed:
		return msgAlreadyPassed
	case ReasonTooLate:
		return msgCancelTooLate
	case ReasonTooEarly:
		if kind == model.ActionConfirmAuth {
			return msgPortalTooEarly
		}
		return msgConfirmTooEarly
	}
	return msgAlreadyPassed
}
