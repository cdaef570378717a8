package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/stomadent/clinic-api/internal/model"
	"github.com/stomadent/clinic-api/internal/repository"
	apperrors "github.com/stomadent/clinic-api/pkg/errors"
	"github.com/stomadent/clinic-api/pkg/logger"
)

type Service struct {
	repo          repository.ShopRepository
	stripe        *StripeClient
	webhookSecret string
	baseURL       string
	logger        *logger.Logger
}

func NewService(repo repository.ShopRepository, stripe *StripeClient, webhookSecret, baseURL string, log *logger.Logger) *Service {
	return &Service{
		repo:          repo,
		stripe:        stripe,
		webhookSecret: webhookSecret,
		baseURL:       baseURL,
		logger:        log,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]*model.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return products, nil
}

// Checkout creates a pending order and a Stripe Checkout Session for it.
func (s *Service) Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	var lines []sessionLine
	var items []*model.OrderItem
	var total int64
	currency := ""

	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apperrors.BadRequest("Nieprawidłowy identyfikator produktu.", err)
		}
		product, err := s.repo.GetProduct(ctx, productID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Nie znaleziono produktu.", err)
		}
		if err != nil {
			return nil, apperrors.Internal(err)
		}

		lines = append(lines, sessionLine{product: product, quantity: item.Quantity})
		items = append(items, &model.OrderItem{
			ProductID:  product.ID,
			Quantity:   item.Quantity,
			PriceCents: product.PriceCents,
		})
		total += product.PriceCents * int64(item.Quantity)
		currency = product.Currency
	}

	order := &model.Order{
		PatientEmail: req.Email,
		TotalCents:   total,
		Currency:     currency,
	}
	if err := s.repo.CreateOrder(ctx, order, items); err != nil {
		return nil, apperrors.Internal(err)
	}

	successURL := fmt.Sprintf("%s/sklep/platnosc/sukces?order=%s", s.baseURL, order.ID)
	cancelURL := fmt.Sprintf("%s/sklep/platnosc/anulowano?order=%s", s.baseURL, order.ID)

	session, err := s.stripe.CreateCheckoutSession(ctx, order.ID.String(), lines, successURL, cancelURL)
	if err != nil {
		s.logger.Error(err, "failed to create checkout session", "order_id", order.ID)
		return nil, apperrors.Internal(err)
	}

	if err := s.repo.SetStripeSession(ctx, order.ID, session.ID); err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.CheckoutResponse{
		Success:     true,
		OrderID:     order.ID.String(),
		RedirectURL: session.URL,
	}, nil
}

type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

// HandleWebhook verifies and applies a Stripe webhook payload. Replays and
// events other than checkout.session.completed are acknowledged without effect.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !VerifyWebhookSignature(s.webhookSecret, payload, signature) {
		return apperrors.Unauthorized("invalid webhook signature", nil)
	}

	var evt webhookEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return apperrors.BadRequest("invalid webhook payload", err)
	}
	if evt.Type != "checkout.session.completed" {
		return nil
	}

	if err := s.repo.MarkOrderPaidBySession(ctx, evt.Data.Object.ID); err != nil {
		return apperrors.Internal(err)
	}
	s.logger.Info("order paid", "session_id", evt.Data.Object.ID)
	return nil
}
