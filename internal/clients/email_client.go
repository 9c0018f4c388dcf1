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

// EmailClient delivers mail through the Cradle Voices HTTP API
type EmailClient struct {
	endpoint    string
	token       string
	senderName  string
	senderEmail string
	client      *http.Client
	logger      *zap.Logger
}

// NewEmailClient creates an email client
func NewEmailClient(endpoint, token, senderName, senderEmail string, logger *zap.Logger) *EmailClient {
	return &EmailClient{
		endpoint:    endpoint,
		token:       token,
		senderName:  senderName,
		senderEmail: senderEmail,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Send delivers a plain-text email to a single recipient
func (c *EmailClient) Send(ctx context.Context, to, subject, body string) error {
	payload := map[string]interface{}{
		"token":           c.token,
		"recipientEmails": []string{to},
		"emailBody":       body,
		"subject":         subject,
		"senderName":      c.senderName,
		"senderEmail":     c.senderEmail,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Failed to send email", zap.String("to", to), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Email API returned error", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("email API error: %d", resp.StatusCode)
	}

	return nil
}
