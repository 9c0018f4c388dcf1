package rift

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client is the HTTP implementation of Provider against a hosted Rift
// deployment.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a Rift HTTP client
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Signup creates an account in Rift. The response carries no session token.
func (c *Client) Signup(ctx context.Context, params SignupParams) (*SignupResult, error) {
	var result SignupResult
	if err := c.post(ctx, "/auth/signup", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login authenticates against Rift and returns the session credential and
// wallet address.
func (c *Client) Login(ctx context.Context, params LoginParams) (*Session, error) {
	var session Session
	if err := c.post(ctx, "/auth/login", params, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetUser fetches the account behind an access token
func (c *Client) GetUser(ctx context.Context, accessToken string) (*Account, error) {
	url := fmt.Sprintf("%s/auth/user", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Failed to get user from Rift", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
		return nil, ErrAccountNotFound
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Rift returned error", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("rift error: %d", resp.StatusCode)
	}

	var result struct {
		User Account `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Error("Failed to decode Rift user response", zap.Error(err))
		return nil, err
	}

	return &result.User, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Rift request failed", zap.String("path", path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusUnauthorized:
		return ErrInvalidCredentials
	case http.StatusConflict:
		return ErrAccountExists
	default:
		c.logger.Error("Rift returned error", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("rift error: %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
