package model

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Product struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	PriceCents  int64     `db:"price_cents" json:"priceCents"`
	Currency    string    `db:"currency" json:"currency"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type Order struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	PatientEmail    string      `db:"patient_email" json:"patientEmail"`
	TotalCents      int64       `db:"total_cents" json:"totalCents"`
	Currency        string      `db:"currency" json:"currency"`
	Status          OrderStatus `db:"status" json:"status"`
	StripeSessionID string      `db:"stripe_session_id" json:"-"`
	CreatedAt       time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updatedAt"`
}

type OrderItem struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OrderID    uuid.UUID `db:"order_id" json:"orderId"`
	ProductID  uuid.UUID `db:"product_id" json:"productId"`
	Quantity   int       `db:"quantity" json:"quantity"`
	PriceCents int64     `db:"price_cents" json:"priceCents"`
}

type CheckoutItem struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type CheckoutRequest struct {
	Email string         `json:"email" binding:"required,email"`
	Items []CheckoutItem `json:"items" binding:"required,min=1,dive"`
}

type CheckoutResponse struct {
	Success     bool   `json:"success"`
	OrderID     string `json:"orderId"`
	RedirectURL string `json:"redirectUrl"`
}
