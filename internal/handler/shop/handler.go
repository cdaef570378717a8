package shop

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stomadent/clinic-api/internal/handler"
	"github.com/stomadent/clinic-api/internal/model"
	shopService "github.com/stomadent/clinic-api/internal/service/shop"
)

type Handler struct {
	service *shopService.Service
}

func NewHandler(service *shopService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": products,
	})
}

func (h *Handler) Checkout(c *gin.Context) {
	var req model.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("Nieprawidłowe dane zamówienia."))
		return
	}

	resp, err := h.service.Checkout(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid body"))
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.service.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	shop := r.Group("/shop")
	{
		shop.GET("/products", h.ListProducts)
		shop.POST("/checkout", h.Checkout)
		shop.POST("/webhook/stripe", h.StripeWebhook)
	}
}
