package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stomadent/clinic-api/internal/handler"
	"github.com/stomadent/clinic-api/internal/model"
	authService "github.com/stomadent/clinic-api/internal/service/auth"
)

type Handler struct {
	service *authService.Service
}

func NewHandler(service *authService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("Nieprawidłowe dane logowania."))
		return
	}

	token, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		Success:     true,
		AccessToken: token,
	})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("Podaj prawidłowy adres e-mail."))
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		handler.RespondError(c, err)
		return
	}

	// Same body whether or not the address exists.
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Jeśli konto istnieje, wysłaliśmy link do zmiany hasła.",
	})
}

func (h *Handler) ConfirmResetPassword(c *gin.Context) {
	var req model.ConfirmResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("Nieprawidłowe dane."))
		return
	}

	if err := h.service.ConfirmPasswordReset(c.Request.Context(), req.Token, req.Password); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Hasło zostało zmienione.",
	})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/reset-password", h.ResetPassword)
		auth.POST("/reset-password/confirm", h.ConfirmResetPassword)
	}
}
