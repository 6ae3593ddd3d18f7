// Package checkout submits the shopper's cart to the checkout relay and
// returns the hosted payment page URL.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/orjumedia/storefront/pkg/errors"
	"github.com/orjumedia/storefront/pkg/validator"
	"github.com/orjumedia/storefront/services/cart/internal/domain"
	"github.com/orjumedia/storefront/services/cart/internal/store"
)

const (
	successPath = "/?checkout=success"
	cancelPath  = "/cart?canceled=true"

	maxResponseBytes = 1 << 20
)

// HTTPDoer is satisfied by *httpclient.Client.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config locates the relay.
type Config struct {
	RelayURL string
	// PlatformKey is sent as apikey and bearer token when set.
	PlatformKey string
	// SiteOrigin is the storefront origin used for redirect and image URLs.
	SiteOrigin string
}

// Customer is passed through to the relay as opaque metadata.
type Customer struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

func (c *Customer) empty() bool {
	return c == nil || (c.Name == "" && c.Email == "" && c.Address == "")
}

// Item is a cart line on the wire. Price is a JSON number.
type Item struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Price       json.Number `json:"price"`
	ImageURL    string      `json:"image_url,omitempty"`
	Sizes       []string    `json:"sizes,omitempty"`
	Size        string      `json:"size,omitempty"`
	Quantity    int         `json:"quantity"`
}

// Request is the body posted to the relay.
type Request struct {
	Cart       []Item    `json:"cart"`
	Currency   string    `json:"currency"`
	SuccessURL string    `json:"success_url"`
	CancelURL  string    `json:"cancel_url"`
	Customer   *Customer `json:"customer,omitempty"`
}

// RelayError is a non-2xx answer from the relay.
type RelayError struct {
	Status int
	// Message is the relay's error string, or the raw error JSON when the
	// relay passed a gateway payload through.
	Message string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("checkout relay returned %d: %s", e.Status, e.Message)
}

// Client posts carts to the relay.
type Client struct {
	cfg    Config
	http   HTTPDoer
	logger *slog.Logger
}

// NewClient creates a relay client.
func NewClient(cfg Config, doer HTTPDoer, logger *slog.Logger) *Client {
	cfg.SiteOrigin = strings.TrimRight(cfg.SiteOrigin, "/")
	return &Client{cfg: cfg, http: doer, logger: logger}
}

// BuildRequest turns a store snapshot into the relay request body.
func (c *Client) BuildRequest(snap store.Snapshot, customer *Customer) Request {
	req := Request{
		Cart:       make([]Item, 0, len(snap.Items)),
		Currency:   snap.Currency,
		SuccessURL: c.cfg.SiteOrigin + successPath,
		CancelURL:  c.cfg.SiteOrigin + cancelPath,
	}
	if !customer.empty() {
		req.Customer = customer
	}
	for _, li := range snap.Items {
		req.Cart = append(req.Cart, c.item(li))
	}
	return req
}

func (c *Client) item(li domain.LineItem) Item {
	return Item{
		ID:          li.ID,
		Name:        li.Name,
		Description: li.Description,
		Price:       json.Number(li.Price.String()),
		ImageURL:    c.absolute(li.ImageURL),
		Sizes:       li.Sizes,
		Size:        li.Size,
		Quantity:    li.Quantity,
	}
}

// absolute resolves a site-relative image path against the site origin; the
// payment page cannot load relative URLs.
func (c *Client) absolute(ref string) string {
	if ref == "" || c.cfg.SiteOrigin == "" {
		return ref
	}
	base, err := url.Parse(c.cfg.SiteOrigin + "/")
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// Submit posts the snapshot to the relay and returns the redirect URL.
func (c *Client) Submit(ctx context.Context, snap store.Snapshot, customer *Customer) (string, error) {
	if len(snap.Items) == 0 {
		return "", apperrors.InvalidInput("Cart is empty")
	}
	if customer != nil && customer.Email != "" {
		if err := validator.Var(customer.Email, "email"); err != nil {
			return "", apperrors.InvalidInput(fmt.Sprintf("Invalid email address %q", customer.Email))
		}
	}

	body, err := json.Marshal(c.BuildRequest(snap, customer))
	if err != nil {
		return "", fmt.Errorf("marshal checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RelayURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.PlatformKey != "" {
		httpReq.Header.Set("apikey", c.cfg.PlatformKey)
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.PlatformKey)
	}

	resp, err := c.http.Do(ctx, httpReq)
	if err != nil {
		return "", fmt.Errorf("post checkout request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read checkout response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		relayErr := &RelayError{Status: resp.StatusCode, Message: errorMessage(raw)}
		c.logger.WarnContext(ctx, "checkout relay rejected cart",
			slog.Int("status", resp.StatusCode),
			slog.String("error", relayErr.Message),
		)
		return "", relayErr
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode checkout response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("checkout response has no url")
	}

	c.logger.InfoContext(ctx, "checkout session created",
		slog.Int("lines", len(snap.Items)),
		slog.String("currency", snap.Currency),
	)
	return out.URL, nil
}

// errorMessage extracts the "error" field of a relay error body.
func errorMessage(raw []byte) string {
	var body struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Error) == 0 {
		return strings.TrimSpace(string(raw))
	}
	var msg string
	if err := json.Unmarshal(body.Error, &msg); err == nil {
		return msg
	}
	return string(body.Error)
}
