package patient

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stomadent/clinic-api/internal/handler"
	"github.com/stomadent/clinic-api/internal/middleware"
	"github.com/stomadent/clinic-api/internal/model"
	"github.com/stomadent/clinic-api/internal/notification"
	"github.com/stomadent/clinic-api/internal/repository"
	appointmentService "github.com/stomadent/clinic-api/internal/service/appointment"
	patientService "github.com/stomadent/clinic-api/internal/service/patient"
)

type Handler struct {
	patients     *patientService.Service
	appointments *appointmentService.Service
	patientRepo  repository.PatientRepository
	auth         *middleware.AuthMiddleware
}

func NewHandler(
	patients *patientService.Service,
	appointments *appointmentService.Service,
	patientRepo repository.PatientRepository,
	auth *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		patients:     patients,
		appointments: appointments,
		patientRepo:  patientRepo,
		auth:         auth,
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("Nieprawidłowe dane rejestracji."))
		return
	}

	if err := h.patients.Register(c.Request.Context(), &req); err != nil {
		handler.RespondError(c, err)
		return
	}

	// Generic on purpose: registration state must not leak beyond the
	// duplicate-account conflict.
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Sprawdź skrzynkę e-mail i kliknij w link aktywacyjny.",
	})
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	var req model.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("Brak tokenu aktywacyjnego."))
		return
	}

	if _, err := h.patients.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Konto zostało aktywowane. Możesz się zalogować.",
	})
}

// ConfirmAttendance is the authenticated portal variant of appointment
// confirmation. The lookup is re-scoped by the caller's own patient id, so a
// credential for one patient can never touch another patient's appointment.
func (h *Handler) ConfirmAttendance(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("Brak autoryzacji."))
		return
	}

	if _, err := h.patientRepo.GetByProdentisID(c.Request.Context(), claims.ProdentisID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("Nie znaleziono pacjenta."))
			return
		}
		handler.RespondError(c, err)
		return
	}

	appointmentID := c.Param("id")
	result, err := h.appointments.ApplyAction(
		c.Request.Context(), model.ActionConfirmAuth, appointmentID, claims.ProdentisID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	resp := gin.H{
		"success": true,
		"message": result.Message,
	}
	if result.Already {
		resp["alreadyConfirmed"] = true
	} else {
		resp["emailSent"] = result.Channels[notification.ChannelEmail]
		resp["telegramSent"] = result.Channels[notification.ChannelTelegram]
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("Brak autoryzacji."))
		return
	}

	actions, err := h.appointments.ListForPatient(c.Request.Context(), claims.ProdentisID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"appointments": actions,
	})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("/register", h.Register)
		patients.POST("/verify-email", h.VerifyEmail)

		authed := patients.Group("", h.auth.Authenticate())
		{
			authed.GET("/appointments", h.ListAppointments)
			authed.POST("/appointments/:id/confirm-attendance", h.ConfirmAttendance)
		}
	}
}
