package patient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stomadent/clinic-api/internal/middleware"
	"github.com/stomadent/clinic-api/internal/model"
	"github.com/stomadent/clinic-api/internal/notification"
	"github.com/stomadent/clinic-api/internal/repository"
	appointmentService "github.com/stomadent/clinic-api/internal/service/appointment"
	patientService "github.com/stomadent/clinic-api/internal/service/patient"
	pkgauth "github.com/stomadent/clinic-api/pkg/auth"
	"github.com/stomadent/clinic-api/pkg/logger"
	"github.com/stomadent/clinic-api/pkg/security"
)

type stubAppointmentRepo struct {
	actions map[string]*model.AppointmentAction
}

func (r *stubAppointmentRepo) Get(_ context.Context, id string) (*model.AppointmentAction, error) {
	a, ok := r.actions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (r *stubAppointmentRepo) GetForPatient(_ context.Context, id, prodentisID string) (*model.AppointmentAction, error) {
	a, ok := r.actions[id]
	if !ok || a.PatientID == nil || *a.PatientID != prodentisID {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (r *stubAppointmentRepo) ListForPatient(_ context.Context, prodentisID string) ([]*model.AppointmentAction, error) {
	var out []*model.AppointmentAction
	for _, a := range r.actions {
		if a.PatientID != nil && *a.PatientID == prodentisID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAppointmentRepo) MarkCancelled(_ context.Context, id string, _ time.Time) error {
	r.actions[id].Status = model.AppointmentStatusRescheduleRequested
	return nil
}

func (r *stubAppointmentRepo) MarkAttendanceConfirmed(_ context.Context, id string, _ time.Time) error {
	r.actions[id].AttendanceConfirmed = true
	return nil
}

type stubPatientRepo struct {
	byProdID map[string]*model.Patient
}

func (r *stubPatientRepo) Create(_ context.Context, p *model.Patient) error {
	r.byProdID[p.ProdentisID] = p
	return nil
}

func (r *stubPatientRepo) GetByID(_ context.Context, _ uuid.UUID) (*model.Patient, error) {
	return nil, repository.ErrNotFound
}

func (r *stubPatientRepo) GetByEmail(_ context.Context, _ string) (*model.Patient, error) {
	return nil, repository.ErrNotFound
}

func (r *stubPatientRepo) GetByProdentisID(_ context.Context, prodentisID string) (*model.Patient, error) {
	p, ok := r.byProdID[prodentisID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (r *stubPatientRepo) UpdatePassword(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

func (r *stubPatientRepo) GetRoles(_ context.Context, _ uuid.UUID) ([]string, error) {
	return nil, nil
}

func (r *stubPatientRepo) GrantRole(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

type stubTokenRepo struct{}

func (stubTokenRepo) CreateVerificationToken(_ context.Context, _ *model.EmailVerificationToken) error {
	return nil
}

func (stubTokenRepo) ConsumeVerificationToken(_ context.Context, _ string) (*model.EmailVerificationToken, error) {
	return nil, repository.ErrNotFound
}

func (stubTokenRepo) StoreResetToken(_ context.Context, _ uuid.UUID, _ string, _ time.Time) error {
	return nil
}

func (stubTokenRepo) ConsumeResetToken(_ context.Context, _ string) (uuid.UUID, error) {
	return uuid.Nil, repository.ErrNotFound
}

type stubEmailService struct{}

func (stubEmailService) SendVerification(_ context.Context, _, _ string) error { return nil }

func (stubEmailService) SendPasswordReset(_ context.Context, _, _ string) error { return nil }

func (stubEmailService) SendWelcome(_ context.Context, _, _ string) error { return nil }

type stubNotifier struct {
	results map[string]bool
}

func (n *stubNotifier) Notify(_ context.Context, _ notification.Message) map[string]bool {
	return n.results
}

const testJWTSecret = "test-secret"

func setupPortal(t *testing.T, appointments *stubAppointmentRepo, patients *stubPatientRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})

	jwtSvc := pkgauth.NewJWTService(testJWTSecret, time.Hour)
	appointmentSvc := appointmentService.NewService(appointments,
		&stubNotifier{results: map[string]bool{notification.ChannelEmail: true}}, log)
	patientSvc := patientService.NewService(patients, stubTokenRepo{}, stubEmailService{},
		security.NewBcryptHasher(4), log)

	h := NewHandler(patientSvc, appointmentSvc, patients, middleware.NewAuthMiddleware(jwtSvc))

	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return r
}

func tokenFor(t *testing.T, prodentisID string) string {
	t.Helper()
	token, err := pkgauth.NewJWTService(testJWTSecret, time.Hour).GenerateAccessToken(&pkgauth.Claims{
		PatientID:   uuid.NewString(),
		ProdentisID: prodentisID,
		Email:       "jan@example.com",
	})
	require.NoError(t, err)
	return token
}

func doRequest(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func portalFixtures() (*stubAppointmentRepo, *stubPatientRepo) {
	owner := "PD-1"
	appointments := &stubAppointmentRepo{actions: map[string]*model.AppointmentAction{
		"a1": {
			ID:              "a1",
			AppointmentDate: time.Now().Add(5 * time.Hour),
			PatientID:       &owner,
			PatientName:     "Jan Kowalski",
			Status:          model.AppointmentStatusScheduled,
		},
	}}
	patients := &stubPatientRepo{byProdID: map[string]*model.Patient{
		"PD-1": {ID: uuid.New(), ProdentisID: "PD-1", Email: "jan@example.com"},
		"PD-2": {ID: uuid.New(), ProdentisID: "PD-2", Email: "anna@example.com"},
	}}
	return appointments, patients
}

func TestConfirmAttendanceRequiresToken(t *testing.T) {
	appointments, patients := portalFixtures()
	r := setupPortal(t, appointments, patients)

	w := doRequest(r, http.MethodPost, "/api/patients/appointments/a1/confirm-attendance", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, appointments.actions["a1"].AttendanceConfirmed)
}

func TestConfirmAttendanceOwnAppointment(t *testing.T) {
	appointments, patients := portalFixtures()
	r := setupPortal(t, appointments, patients)

	w := doRequest(r, http.MethodPost, "/api/patients/appointments/a1/confirm-attendance",
		tokenFor(t, "PD-1"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["emailSent"])
	assert.True(t, appointments.actions["a1"].AttendanceConfirmed)
}

func TestConfirmAttendanceOtherPatientsAppointment(t *testing.T) {
	appointments, patients := portalFixtures()
	r := setupPortal(t, appointments, patients)

	// PD-2 holds a valid token but does not own appointment a1.
	w := doRequest(r, http.MethodPost, "/api/patients/appointments/a1/confirm-attendance",
		tokenFor(t, "PD-2"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, appointments.actions["a1"].AttendanceConfirmed)
}

func TestConfirmAttendanceUnknownPatient(t *testing.T) {
	appointments, patients := portalFixtures()
	r := setupPortal(t, appointments, patients)

	w := doRequest(r, http.MethodPost, "/api/patients/appointments/a1/confirm-attendance",
		tokenFor(t, "PD-99"), nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Nie znaleziono pacjenta.", body["error"])
}

func TestConfirmAttendanceAlreadyConfirmed(t *testing.T) {
	appointments, patients := portalFixtures()
	appointments.actions["a1"].AttendanceConfirmed = true
	r := setupPortal(t, appointments, patients)

	w := doRequest(r, http.MethodPost, "/api/patients/appointments/a1/confirm-attendance",
		tokenFor(t, "PD-1"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["alreadyConfirmed"])
	_, hasFlag := body["emailSent"]
	assert.False(t, hasFlag)
}

func TestListAppointmentsScopedToCaller(t *testing.T) {
	appointments, patients := portalFixtures()
	other := "PD-2"
	appointments.actions["a2"] = &model.AppointmentAction{
		ID:              "a2",
		AppointmentDate: time.Now().Add(24 * time.Hour),
		PatientID:       &other,
		Status:          model.AppointmentStatusScheduled,
	}
	r := setupPortal(t, appointments, patients)

	w := doRequest(r, http.MethodGet, "/api/patients/appointments", tokenFor(t, "PD-1"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success      bool                       `json:"success"`
		Appointments []*model.AppointmentAction `json:"appointments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Appointments, 1)
	assert.Equal(t, "a1", body.Appointments[0].ID)
}

func TestRegisterEndpointValidation(t *testing.T) {
	appointments, patients := portalFixtures()
	r := setupPortal(t, appointments, patients)

	w := doRequest(r, http.MethodPost, "/api/patients/register", "", gin.H{
		"prodentisId": "PD-3",
		"email":       "nie-email",
		"phone":       "+48123456789",
		"password":    "sekretne1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	appointments, patients := portalFixtures()
	r := setupPortal(t, appointments, patients)

	w := doRequest(r, http.MethodPost, "/api/patients/register", "", gin.H{
		"prodentisId": "PD-3",
		"email":       "nowy@example.com",
		"phone":       "+48123456789",
		"password":    "sekretne1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
}
