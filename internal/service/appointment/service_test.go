package appointment

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stomadent/clinic-api/internal/model"
	"github.com/stomadent/clinic-api/internal/notification"
	"github.com/stomadent/clinic-api/internal/repository"
	apperrors "github.com/stomadent/clinic-api/pkg/errors"
	"github.com/stomadent/clinic-api/pkg/logger"
)

type fakeRepo struct {
	actions map[string]*model.AppointmentAction

	cancelled []string
	confirmed []string
	writeErr  error
}

func newFakeRepo(actions ...*model.AppointmentAction) *fakeRepo {
	r := &fakeRepo{actions: make(map[string]*model.AppointmentAction)}
	for _, a := range actions {
		r.actions[a.ID] = a
	}
	return r
}

func (r *fakeRepo) Get(_ context.Context, id string) (*model.AppointmentAction, error) {
	a, ok := r.actions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (r *fakeRepo) GetForPatient(_ context.Context, id, prodentisID string) (*model.AppointmentAction, error) {
	a, ok := r.actions[id]
	if !ok || a.PatientID == nil || *a.PatientID != prodentisID {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (r *fakeRepo) ListForPatient(_ context.Context, prodentisID string) ([]*model.AppointmentAction, error) {
	var out []*model.AppointmentAction
	for _, a := range r.actions {
		if a.PatientID != nil && *a.PatientID == prodentisID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepo) MarkCancelled(_ context.Context, id string, _ time.Time) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.cancelled = append(r.cancelled, id)
	return nil
}

func (r *fakeRepo) MarkAttendanceConfirmed(_ context.Context, id string, _ time.Time) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.confirmed = append(r.confirmed, id)
	return nil
}

type fakeNotifier struct {
	calls   []notification.Message
	results map[string]bool
}

func (n *fakeNotifier) Notify(_ context.Context, msg notification.Message) map[string]bool {
	n.calls = append(n.calls, msg)
	return n.results
}

var _ Notifier = (*notification.Notifier)(nil)

func testService(repo *fakeRepo, notifier *fakeNotifier, now time.Time) *Service {
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	svc := NewService(repo, notifier, log)
	svc.now = func() time.Time { return now }
	return svc
}

func scheduledAction(id string, date time.Time) *model.AppointmentAction {
	return &model.AppointmentAction{
		ID:              id,
		AppointmentDate: date,
		PatientName:     "Jan Kowalski",
		PatientPhone:    "+48123456789",
		DoctorName:      "dr Nowak",
		Status:          model.AppointmentStatusScheduled,
	}
}

func TestApplyActionCancel(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo(scheduledAction("a1", now.Add(5*time.Hour)))
	notifier := &fakeNotifier{results: map[string]bool{
		notification.ChannelTelegram: true,
		notification.ChannelEmail:    false,
	}}
	svc := testService(repo, notifier, now)

	result, err := svc.ApplyAction(context.Background(), model.ActionCancel, "a1", "")
	require.NoError(t, err)

	assert.False(t, result.Already)
	assert.Equal(t, msgCancelled, result.Message)
	assert.Equal(t, []string{"a1"}, repo.cancelled)
	assert.True(t, result.Channels[notification.ChannelTelegram])
	assert.False(t, result.Channels[notification.ChannelEmail])

	require.Len(t, notifier.calls, 1)
	assert.Contains(t, notifier.calls[0].Text, "Jan Kowalski")
	assert.Contains(t, notifier.calls[0].Text, "dr Nowak")
}

func TestApplyActionCancelIdempotent(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	action := scheduledAction("a1", now.Add(5*time.Hour))
	action.Status = model.AppointmentStatusRescheduleRequested
	repo := newFakeRepo(action)
	notifier := &fakeNotifier{results: map[string]bool{}}
	svc := testService(repo, notifier, now)

	result, err := svc.ApplyAction(context.Background(), model.ActionCancel, "a1", "")
	require.NoError(t, err)

	assert.True(t, result.Already)
	assert.Equal(t, msgAlreadyCancelled, result.Message)
	assert.Empty(t, repo.cancelled, "duplicate request must not write")
	assert.Empty(t, notifier.calls, "duplicate request must not notify")
}

func TestApplyActionConfirmIdempotent(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	action := scheduledAction("a1", now.Add(5*time.Hour))
	action.AttendanceConfirmed = true
	repo := newFakeRepo(action)
	notifier := &fakeNotifier{results: map[string]bool{}}
	svc := testService(repo, notifier, now)

	result, err := svc.ApplyAction(context.Background(), model.ActionConfirm, "a1", "")
	require.NoError(t, err)

	assert.True(t, result.Already)
	assert.Equal(t, msgAlreadyConfirmed, result.Message)
	assert.Empty(t, repo.confirmed)
	assert.Empty(t, notifier.calls)
}

func TestApplyActionCancelTooLate(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo(scheduledAction("a1", now.Add(time.Hour)))
	notifier := &fakeNotifier{results: map[string]bool{}}
	svc := testService(repo, notifier, now)

	_, err := svc.ApplyAction(context.Background(), model.ActionCancel, "a1", "")
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPStatus())
	assert.Equal(t, msgCancelTooLate, appErr.Message)
	assert.Empty(t, repo.cancelled)
	assert.Empty(t, notifier.calls)
}

func TestApplyActionNotFound(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo()
	notifier := &fakeNotifier{results: map[string]bool{}}
	svc := testService(repo, notifier, now)

	_, err := svc.ApplyAction(context.Background(), model.ActionConfirm, "missing", "")
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.HTTPStatus())
}

func TestApplyActionPortalScopedToPatient(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	owner := "PD-100"
	action := scheduledAction("a1", now.Add(5*time.Hour))
	action.PatientID = &owner
	repo := newFakeRepo(action)
	notifier := &fakeNotifier{results: map[string]bool{notification.ChannelEmail: true}}
	svc := testService(repo, notifier, now)

	// Someone else's credential never sees the record.
	_, err := svc.ApplyAction(context.Background(), model.ActionConfirmAuth, "a1", "PD-200")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.HTTPStatus())
	assert.Empty(t, repo.confirmed)

	// The owner confirms fine.
	result, err := svc.ApplyAction(context.Background(), model.ActionConfirmAuth, "a1", "PD-100")
	require.NoError(t, err)
	assert.Equal(t, msgConfirmed, result.Message)
	assert.Equal(t, []string{"a1"}, repo.confirmed)
}

func TestApplyActionPortalConfirmTooEarly(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	owner := "PD-100"
	action := scheduledAction("a1", now.Add(72*time.Hour))
	action.PatientID = &owner
	repo := newFakeRepo(action)
	notifier := &fakeNotifier{results: map[string]bool{}}
	svc := testService(repo, notifier, now)

	_, err := svc.ApplyAction(context.Background(), model.ActionConfirmAuth, "a1", "PD-100")
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, msgPortalTooEarly, appErr.Message)
}

func TestApplyActionWriteFailure(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo(scheduledAction("a1", now.Add(5*time.Hour)))
	repo.writeErr = context.DeadlineExceeded
	notifier := &fakeNotifier{results: map[string]bool{}}
	svc := testService(repo, notifier, now)

	_, err := svc.ApplyAction(context.Background(), model.ActionCancel, "a1", "")
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.HTTPStatus())
	assert.Empty(t, notifier.calls, "failed write must not notify")
}
