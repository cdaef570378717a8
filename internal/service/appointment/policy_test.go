package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stomadent/clinic-api/internal/model"
)

func TestCheckWindowCancel(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		date    time.Time
		allowed bool
		reason  RejectionReason
	}{
		{"well before", now.Add(48 * time.Hour), true, ""},
		{"exactly at lead boundary", now.Add(2 * time.Hour), true, ""},
		{"just inside lead time", now.Add(2*time.Hour - time.Second), false, ReasonTooLate},
		{"one hour before", now.Add(time.Hour), false, ReasonTooLate},
		{"already passed", now.Add(-time.Hour), false, ReasonAlreadyPassed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CheckWindow(model.ActionCancel, tt.date, now)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestCheckWindowPublicConfirm(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		date    time.Time
		allowed bool
		reason  RejectionReason
	}{
		{"same moment", now, true, ""},
		{"six days out", now.Add(6 * 24 * time.Hour), true, ""},
		{"exactly seven days out", now.Add(7 * 24 * time.Hour), true, ""},
		{"eight days out", now.Add(8 * 24 * time.Hour), false, ReasonTooEarly},
		{"already passed", now.Add(-time.Minute), false, ReasonAlreadyPassed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CheckWindow(model.ActionConfirm, tt.date, now)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestCheckWindowPortalConfirm(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		date    time.Time
		allowed bool
		reason  RejectionReason
	}{
		{"an hour out", now.Add(time.Hour), true, ""},
		{"exactly a day out", now.Add(24 * time.Hour), true, ""},
		{"two days out", now.Add(48 * time.Hour), false, ReasonTooEarly},
		{"same moment", now, false, ReasonAlreadyPassed},
		{"already passed", now.Add(-time.Hour), false, ReasonAlreadyPassed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CheckWindow(model.ActionConfirmAuth, tt.date, now)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestCheckWindowUnknownKind(t *testing.T) {
	now := time.Now()
	d := CheckWindow(model.ActionKind("bogus"), now.Add(time.Hour), now)
	assert.False(t, d.Allowed)
}
