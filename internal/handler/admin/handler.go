package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stomadent/clinic-api/internal/handler"
	"github.com/stomadent/clinic-api/internal/middleware"
	"github.com/stomadent/clinic-api/internal/model"
	adminService "github.com/stomadent/clinic-api/internal/service/admin"
)

type Handler struct {
	service *adminService.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service *adminService.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, auth: auth}
}

func (h *Handler) PromoteRoles(c *gin.Context) {
	var req model.PromoteRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("Nieprawidłowe dane."))
		return
	}

	resp, err := h.service.PromoteRoles(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin", h.auth.Authenticate(), h.auth.RequireRole("admin"))
	{
		admin.POST("/roles/promote", h.PromoteRoles)
	}
}
