package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ExchangeClient fetches the reference-to-display currency rate. Different
// providers name the field differently, so both are accepted.
type ExchangeClient struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewExchangeClient creates an exchange-rate client
func NewExchangeClient(url string, logger *zap.Logger) *ExchangeClient {
	return &ExchangeClient{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// FetchRate returns the current selling rate
func (c *ExchangeClient) FetchRate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Failed to fetch exchange rate", zap.Error(err))
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Exchange rate provider returned error", zap.Int("status", resp.StatusCode))
		return 0, fmt.Errorf("exchange rate provider error: %d", resp.StatusCode)
	}

	var result struct {
		SellingRate float64 `json:"sellingRate"`
		Rate        float64 `json:"rate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Error("Failed to decode exchange rate response", zap.Error(err))
		return 0, err
	}

	rate := result.SellingRate
	if rate == 0 {
		rate = result.Rate
	}
	if rate == 0 {
		return 0, fmt.Errorf("exchange rate provider returned no rate")
	}

	return rate, nil
}
