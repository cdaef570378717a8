package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stomadent/clinic-api/internal/handler"
	"github.com/stomadent/clinic-api/internal/model"
	"github.com/stomadent/clinic-api/internal/notification"
	"github.com/stomadent/clinic-api/internal/service/appointment"
)

// Handler serves the public SMS-link confirm and cancel endpoints. There is no
// credential on these routes: the appointment id is only ever delivered via
// SMS to the patient's phone, so possession of the id is the authorization.
type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ConfirmAppointment(c *gin.Context) {
	h.apply(c, model.ActionConfirm)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	h.apply(c, model.ActionCancel)
}

func (h *Handler) apply(c *gin.Context, kind model.ActionKind) {
	var req model.AppointmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("Brak identyfikatora wizyty."))
		return
	}

	result, err := h.service.ApplyAction(c.Request.Context(), kind, req.AppointmentID, "")
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildResponse(kind, result))
}

func buildResponse(kind model.ActionKind, result *appointment.Result) model.AppointmentActionResponse {
	resp := model.AppointmentActionResponse{
		Success: true,
		Message: result.Message,
	}
	if result.Already {
		if kind == model.ActionCancel {
			resp.AlreadyCancelled = true
		} else {
			resp.AlreadyConfirmed = true
		}
		return resp
	}
	resp.TelegramSent = result.Channels[notification.ChannelTelegram]
	resp.WhatsappSent = result.Channels[notification.ChannelWhatsapp]
	resp.EmailSent = result.Channels[notification.ChannelEmail]
	return resp
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("/confirm", h.ConfirmAppointment)
		appointments.POST("/cancel", h.CancelAppointment)
	}
}
