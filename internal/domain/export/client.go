package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client delivers an approved transfer to the downstream FIFA registry.
// Delivery is at-least-once; the registry deduplicates on transfer id.
type Client interface {
	Export(ctx context.Context, rec *Record) error
}

// HTTPClient posts transfer records to the registry endpoint
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a registry client
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type exportPayload struct {
	TransferID string  `json:"transfer_id"`
	PlayerID   string  `json:"player_id"`
	FromClubID string  `json:"from_club_id"`
	ToClubID   string  `json:"to_club_id"`
	Amount     float64 `json:"amount"`
	Type       string  `json:"transfer_type"`
	ApprovedAt string  `json:"approved_at"`
}

func (c *HTTPClient) Export(ctx context.Context, rec *Record) error {
	payload := exportPayload{
		TransferID: rec.TransferID.String(),
		PlayerID:   rec.PlayerID.String(),
		FromClubID: rec.FromClubID.String(),
		ToClubID:   rec.ToClubID.String(),
		Amount:     rec.Amount,
		Type:       rec.Type,
		ApprovedAt: rec.ApprovedAt.Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal export payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transfers", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build export request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("registry request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	return nil
}
