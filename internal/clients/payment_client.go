package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// CheckoutRequest describes a payment to initiate. The rail (mobile money or
// stablecoin) is selected by Method; the provider redirects back to ReturnURL
// with the transaction code and order id once payment lands.
type CheckoutRequest struct {
	OrderID       string  `json:"orderId"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	CustomerEmail string  `json:"customerEmail"`
	Reference     string  `json:"reference"`
	ReturnURL     string  `json:"returnUrl"`
}

// CheckoutResponse carries the hosted payment page URL
type CheckoutResponse struct {
	PaymentURL string `json:"paymentUrl"`
}

// PaymentClient initiates checkouts against the payment provider
type PaymentClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewPaymentClient creates a payment client
func NewPaymentClient(baseURL string, logger *zap.Logger) *PaymentClient {
	return &PaymentClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// CreateCheckout asks the provider for a hosted payment URL. No retries: a
// failure surfaces to the caller and the pending invoice stays pending.
func (c *PaymentClient) CreateCheckout(ctx context.Context, checkout CheckoutRequest) (*CheckoutResponse, error) {
	jsonData, err := json.Marshal(checkout)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Failed to create checkout", zap.String("order_id", checkout.OrderID), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("Payment provider returned error",
			zap.String("order_id", checkout.OrderID),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("payment provider error: %d", resp.StatusCode)
	}

	var result CheckoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Error("Failed to decode checkout response", zap.Error(err))
		return nil, err
	}

	return &result, nil
}
