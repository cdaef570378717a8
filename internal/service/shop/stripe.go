package shop

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stomadent/clinic-api/internal/model"
)

// StripeClient creates Checkout Sessions against the Stripe REST API.
type StripeClient struct {
	secretKey  string
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

func NewStripeClient(secretKey string) *StripeClient {
	return &StripeClient{
		secretKey:  secretKey,
		baseURL:    "https://api.stripe.com",
		apiVersion: "2024-12-18.acacia",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL overrides the Stripe API base URL. Used by tests.
func (c *StripeClient) WithBaseURL(baseURL string) *StripeClient {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

type checkoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type sessionLine struct {
	product  *model.Product
	quantity int
}

// CreateCheckoutSession builds a payment-mode session from the order lines and
// returns the session id and the hosted checkout URL.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, orderID string, lines []sessionLine, successURL, cancelURL string) (*checkoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	form.Set("metadata[order_id]", orderID)

	for i, line := range lines {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", strings.ToLower(line.product.Currency))
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(line.product.PriceCents, 10))
		form.Set(prefix+"[price_data][product_data][name]", line.product.Name)
		form.Set(prefix+"[quantity]", strconv.Itoa(line.quantity))
	}

	apiURL := c.baseURL + "/v1/checkout/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Stripe-Version", c.apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stripe api status %d: %s", resp.StatusCode, string(body))
	}

	var parsed checkoutSession
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("stripe decode: %w", err)
	}
	if parsed.URL == "" {
		return nil, fmt.Errorf("stripe response missing checkout url")
	}
	return &parsed, nil
}

// VerifyWebhookSignature checks the Stripe-Signature header: HMAC-SHA256 over
// "timestamp.payload", with a 5 minute timestamp tolerance.
func VerifyWebhookSignature(secret string, payload []byte, header string) bool {
	if header == "" {
		return false
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	if diff := time.Now().Unix() - ts; diff > 300 || diff < -300 {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "." + string(payload)))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return true
		}
	}
	return false
}
