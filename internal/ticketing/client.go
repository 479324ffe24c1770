package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/compliance-tracker/internal/config"
	"github.com/spec-kit/compliance-tracker/internal/domain"
)

// ErrNotConfigured is returned when no ticketing endpoint is set.
var ErrNotConfigured = errors.New("ticketing integration not configured")

// CreateTicketInput carries the fields sent to the ticketing system.
type CreateTicketInput struct {
	Subject     string
	Description string
	Priority    domain.PriorityLevel
	AgentID     string
}

// Ticket is the reference returned by the ticketing system.
type Ticket struct {
	Number string
	URL    string
}

// Client talks to the external ticketing REST API. The API shape follows the
// common helpdesk convention: POST /api/v2/tickets with the key as basic auth
// username, ticket id in the response envelope.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a ticketing client from configuration.
func NewClient(cfg config.TicketingConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout()},
		logger:  logger,
	}
}

// Configured reports whether the client has an endpoint to talk to.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type createTicketRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Status      int    `json:"status"`
	ResponderID string `json:"responder_id,omitempty"`
}

type createTicketResponse struct {
	Ticket struct {
		ID int64 `json:"id"`
	} `json:"ticket"`
}

// CreateTicket raises a ticket and returns its number and browse URL.
func (c *Client) CreateTicket(ctx context.Context, input CreateTicketInput) (*Ticket, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload := createTicketRequest{
		Subject:     input.Subject,
		Description: input.Description,
		Priority:    priorityCode(input.Priority),
		Status:      2, // open
		ResponderID: input.AgentID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/tickets", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.apiKey, "X")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("ticketing api rejected request",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet))
		return nil, fmt.Errorf("ticketing api returned status %d", resp.StatusCode)
	}

	var decoded createTicketResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode ticketing response: %w", err)
	}
	if decoded.Ticket.ID == 0 {
		return nil, errors.New("ticketing response missing ticket id")
	}

	number := strconv.FormatInt(decoded.Ticket.ID, 10)
	return &Ticket{
		Number: number,
		URL:    fmt.Sprintf("%s/a/tickets/%s", c.baseURL, number),
	}, nil
}

// priorityCode maps dashboard priorities onto the ticketing system's 1-4 scale.
func priorityCode(p domain.PriorityLevel) int {
	switch p {
	case domain.PriorityCritical:
		return 4
	case domain.PriorityHigh:
		return 3
	case domain.PriorityMedium:
		return 2
	default:
		return 1
	}
}
