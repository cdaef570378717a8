package appointment

import (
	"time"

	"github.com/stomadent/clinic-api/internal/model"
)

// RejectionReason explains why the timing policy denied an action.
type RejectionReason string

const (
	ReasonAlreadyPassed RejectionReason = "already_passed"
	ReasonTooEarly      RejectionReason = "too_early"
	ReasonTooLate       RejectionReason = "too_late"
)

// Per-action windows, in hours. The three values are intentionally distinct:
// they reproduce observed product behavior that was never unified (the public
// SMS link confirms up to 7 days out, the portal only 24h). Do not merge them
// without a product decision.
const (
	cancelMinLeadHours    = 2
	publicConfirmMaxHours = 7 * 24
	portalConfirmMaxHours = 24
)

// Decision is the outcome of a timing policy check.
type Decision struct {
	Allowed bool
	Reason  RejectionReason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason RejectionReason) Decision {
	return Decision{Reason: reason}
}

// CheckWindow decides whether an appointment-status-changing action is
// permitted at the given moment. Pure and synchronous.
func CheckWindow(kind model.ActionKind, appointmentDate, now time.Time) Decision {
	hoursUntil := appointmentDate.Sub(now).Hours()

	switch kind {
	case model.ActionCancel:
		if hoursUntil < 0 {
			return deny(ReasonAlreadyPassed)
		}
		if hoursUntil < cancelMinLeadHours {
			return deny(ReasonTooLate)
		}
		return allow()

	case model.ActionConfirm:
		if hoursUntil < 0 {
			return deny(ReasonAlreadyPassed)
		}
		if hoursUntil > publicConfirmMaxHours {
			return deny(ReasonTooEarly)
		}
		return allow()

	case model.ActionConfirmAuth:
		if hoursUntil <= 0 {
			return deny(ReasonAlreadyPassed)
		}
		if hoursUntil > portalConfirmMaxHours {
			return deny(ReasonTooEarly)
		}
		return allow()
	}

	return deny(ReasonAlreadyPassed)
}
