package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	rzp "github.com/razorpay/razorpay-go"

	"github.com/shopkart-labs/shopkart-backend/pkg/config"
	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
	"github.com/shopkart-labs/shopkart-backend/pkg/logger"
)

var (
	errKeyIDRequired     = errors.New("razorpay key id is required")
	errKeySecretRequired = errors.New("razorpay key secret is required")
	errLoggerRequired    = errors.New("razorpay logger is required")
)

// OrderCreateParams carries the inputs for a gateway order.
type OrderCreateParams struct {
	AmountPaise int64
	Currency    string
	Receipt     string
	Notes       map[string]any
}

// Order is the subset of the gateway order payload the service layer needs.
type Order struct {
	ID          string
	AmountPaise int64
	Currency    string
	Receipt     string
	Status      string
}

// Client wraps the Razorpay SDK with centralized logging and error mapping.
type Client struct {
	sdk       *rzp.Client
	keyID     string
	keySecret string
	currency  string
	logger    *logger.Logger
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}

	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "INR"
	}

	c := &Client{
		sdk:       rzp.NewClient(keyID, keySecret),
		keyID:     keyID,
		keySecret: keySecret,
		currency:  currency,
		logger:    logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// KeyID returns the public key the frontend hands to the checkout widget.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// Currency reports the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// CreateOrder registers a gateway order for the given amount.
func (c *Client) CreateOrder(ctx context.Context, params OrderCreateParams) (*Order, error) {
	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = c.currency
	}

	data := map[string]any{
		"amount":   params.AmountPaise,
		"currency": currency,
	}
	if receipt := strings.TrimSpace(params.Receipt); receipt != "" {
		data["receipt"] = receipt
	}
	if len(params.Notes) > 0 {
		data["notes"] = params.Notes
	}

	c.log(ctx, "request", "create_order", map[string]any{
		"amount":   params.AmountPaise,
		"currency": currency,
		"receipt":  params.Receipt,
	})

	resp, err := c.sdk.Order.Create(data, nil)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "razorpay create order failed")
	}

	order := orderFromPayload(resp)
	c.log(ctx, "response", "create_order", map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
	})
	return order, nil
}

// VerifySignature checks the checkout callback signature: HMAC-SHA256 of
// "<order_id>|<payment_id>" keyed with the secret, hex encoded.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	if c == nil || orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func orderFromPayload(payload map[string]any) *Order {
	order := &Order{}
	if v, ok := payload["id"].(string); ok {
		order.ID = v
	}
	if v, ok := payload["currency"].(string); ok {
		order.Currency = v
	}
	if v, ok := payload["receipt"].(string); ok {
		order.Receipt = v
	}
	if v, ok := payload["status"].(string); ok {
		order.Status = v
	}
	switch v := payload["amount"].(type) {
	case float64:
		order.AmountPaise = int64(v)
	case int64:
		order.AmountPaise = v
	}
	return order
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("razorpay %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("razorpay %s", phase))
	}
}
