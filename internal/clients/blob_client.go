package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// BlobClient uploads files to the blob store. The store takes a PUT with the
// object name in the path and answers with the public URL.
type BlobClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

// NewBlobClient creates a blob storage client
func NewBlobClient(baseURL, token string, logger *zap.Logger) *BlobClient {
	return &BlobClient{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Upload stores the content under name and returns its public URL
func (c *BlobClient) Upload(ctx context.Context, name, contentType string, content io.Reader) (string, error) {
	uploadURL := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, content)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Failed to upload blob", zap.String("name", name), zap.Error(err))
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("Blob store returned error", zap.String("name", name), zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("blob store error: %d", resp.StatusCode)
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Error("Failed to decode blob store response", zap.Error(err))
		return "", err
	}

	return result.URL, nil
}
