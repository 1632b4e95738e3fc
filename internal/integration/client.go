package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/nocodecorp/portal-api/internal/models"
)

// ============================================
// Integration Endpoint client
// ============================================
//
// The Integration Endpoint is the external automation backend that owns all
// durable data: one webhook accepts new tickets, another returns the full
// client payload (client + projects + tickets).

type Config struct {
	TicketURL     string
	ClientDataURL string
	Timeout       time.Duration
}

type Client struct {
	ticketURL     string
	clientDataURL string
	httpClient    *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		ticketURL:     cfg.TicketURL,
		clientDataURL: cfg.ClientDataURL,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

// SendTicket forwards a newly created ticket. Any 2xx status is success;
// everything else is an error the caller is expected to log, not surface.
func (c *Client) SendTicket(ctx context.Context, ticket *models.Ticket) error {
	if c.ticketURL == "" {
		log.Printf("[Integration] ⚠️ No ticket webhook configured, ticket %s not forwarded", ticket.ID)
		return nil
	}

	body, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("failed to encode ticket: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ticketURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ticket webhook call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ticket webhook returned HTTP %d", resp.StatusCode)
	}

	log.Printf("[Integration] ✅ Ticket %s forwarded", ticket.ID)
	return nil
}

// FetchParams identifies the client to look up, by email or by id.
type FetchParams struct {
	Email    string `json:"email,omitempty"`
	ClientID string `json:"clientId,omitempty"`
	// Timestamp defeats webhook-side response caching.
	Timestamp int64 `json:"_t"`
}

// FetchClientData calls the full-data webhook. A non-2xx status or a
// non-JSON body is an error; the caller falls back to the mock directory.
func (c *Client) FetchClientData(ctx context.Context, params FetchParams) (*Envelope, error) {
	if c.clientDataURL == "" {
		return nil, fmt.Errorf("no client-data webhook configured")
	}

	params.Timestamp = time.Now().UnixMilli()
	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.clientDataURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client-data webhook call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("client-data webhook returned HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("invalid JSON from client-data webhook: %w", err)
	}
	return &envelope, nil
}
