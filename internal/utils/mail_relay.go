package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// RelayClient sends codes through an external HTTP mail service
// (POST <BaseURL>/api/send-otp {"email","codigo"}).
type RelayClient struct {
	BaseURL string
	DryRun  bool
	HTTP    *http.Client
}

type relayRequest struct {
	Email  string `json:"email"`
	Codigo string `json:"codigo"`
}

type relayResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func NewRelayClient(baseURL string, dryRun bool) *RelayClient {
	return &RelayClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		DryRun:  dryRun,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SendCode: only the HTTP status is checked, a 2xx means the relay accepted it.
func (c *RelayClient) SendCode(ctx context.Context, email, code string) error {
	if c.DryRun || c.BaseURL == "" {
		log.Printf("[relay][dry-run] to=%s code=%s", email, code)
		return nil
	}

	b, err := json.Marshal(relayRequest{Email: email, Codigo: code})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/send-otp", bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("relay request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var r relayResponse
		_ = json.Unmarshal(body, &r)
		return fmt.Errorf("relay returned status %d: %s", resp.StatusCode, r.Message)
	}
	log.Printf("[relay][send] to=%s status=%d", email, resp.StatusCode)
	return nil
}
