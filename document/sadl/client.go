package sadl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client implements Decryptor against the SADL decrypt HTTP service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new instance of Client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Decrypt sends the hex payload to the decrypt service and returns its
// structured result. Cancellation comes from the context; there are no
// automatic retries.
func (c *Client) Decrypt(ctx context.Context, hexPayload string) (*DecodedLicencePayload, error) {
	url := fmt.Sprintf("%s/api/decode", c.baseURL)

	requestBody := map[string]string{
		"payload": hexPayload,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal decrypt request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create decrypt request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &DecryptionError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &DecryptionError{
			Message: fmt.Sprintf("service returned status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var payload DecodedLicencePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &DecryptionError{Message: fmt.Sprintf("unreadable service response: %v", err)}
	}

	slog.Info("Licence payload decrypted", "licence_number", payload.LicenceNumber)

	return &payload, nil
}

// HealthCheck verifies the decrypt service is available
func (c *Client) HealthCheck() error {
	url := fmt.Sprintf("%s/api/healthz", c.baseURL)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute health check request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health check failed with status %d: %s", resp.StatusCode, string(body))
	}

	slog.Info("SADL decrypt service health check passed")
	return nil
}
