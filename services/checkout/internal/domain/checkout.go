package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// CheckoutRequest is the body a storefront posts to the relay. Cart and
// Customer are kept raw so shape errors can be reported per field instead of
// failing the whole decode.
type CheckoutRequest struct {
	Cart       json.RawMessage `json:"cart"`
	Currency   string          `json:"currency"`
	SuccessURL string          `json:"success_url"`
	CancelURL  string          `json:"cancel_url"`
	Customer   json.RawMessage `json:"customer,omitempty"`
}

// UnmarshalJSON reads the text fields leniently: numbers become their
// decimal text and other non-string values read as blank.
func (r *CheckoutRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Cart       json.RawMessage `json:"cart"`
		Currency   json.RawMessage `json:"currency"`
		SuccessURL json.RawMessage `json:"success_url"`
		CancelURL  json.RawMessage `json:"cancel_url"`
		Customer   json.RawMessage `json:"customer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = CheckoutRequest{
		Cart:       raw.Cart,
		Currency:   scalarText(raw.Currency),
		SuccessURL: scalarText(raw.SuccessURL),
		CancelURL:  scalarText(raw.CancelURL),
		Customer:   raw.Customer,
	}
	return nil
}

// CartItem is one entry of the submitted cart. Only Name, Price, ImageURL
// and Quantity are read by the relay.
type CartItem struct {
	ID       string
	Name     string
	Price    json.RawMessage
	ImageURL string
	Quantity json.RawMessage
}

// UnmarshalJSON accepts any JSON value. Non-objects decode to an empty item,
// which later fails price validation at its index.
func (c *CartItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		Name     json.RawMessage `json:"name"`
		Price    json.RawMessage `json:"price"`
		ImageURL json.RawMessage `json:"image_url"`
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*c = CartItem{}
		return nil
	}

	*c = CartItem{
		ID:       scalarText(raw.ID),
		Name:     scalarText(raw.Name),
		Price:    raw.Price,
		ImageURL: scalarText(raw.ImageURL),
		Quantity: raw.Quantity,
	}
	return nil
}

// scalarText renders a JSON string or number as text. Anything else is "".
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// Items decodes the cart. ok is false when the cart is missing or is not
// a JSON array.
func (r *CheckoutRequest) Items() (items []CartItem, ok bool) {
	raw := bytes.TrimSpace(r.Cart)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// CustomerMetadata returns the customer object as compact JSON, or "" when
// no customer was sent or the value is empty, null, false or zero.
func (r *CheckoutRequest) CustomerMetadata() string {
	raw := bytes.TrimSpace(r.Customer)
	switch string(raw) {
	case "", "null", "false", "0", `""`:
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return buf.String()
}

// RedirectURLs are the pages the gateway sends the shopper back to.
type RedirectURLs struct {
	Success string
	Cancel  string
}

// Resolve fills in any URL the request left blank from defaults.
func (r *CheckoutRequest) Resolve(defaults RedirectURLs) RedirectURLs {
	out := RedirectURLs{
		Success: strings.TrimSpace(r.SuccessURL),
		Cancel:  strings.TrimSpace(r.CancelURL),
	}
	if out.Success == "" {
		out.Success = defaults.Success
	}
	if out.Cancel == "" {
		out.Cancel = defaults.Cancel
	}
	return out
}

// SessionLine is a priced line ready for the gateway.
type SessionLine struct {
	Name       string
	ImageURL   string
	UnitAmount int64 // minor units of SessionRequest.Currency
	Quantity   int64
}

// SessionRequest is a validated request for a hosted checkout session.
type SessionRequest struct {
	Currency string // upper-case ISO 4217
	Lines    []SessionLine
	Redirect RedirectURLs
	Customer string // compact JSON, may be empty
}

// AmountTotal is the sum of unit amount times quantity over all lines.
func (s *SessionRequest) AmountTotal() int64 {
	var total int64
	for _, l := range s.Lines {
		total += l.UnitAmount * l.Quantity
	}
	return total
}

// Session is the gateway's answer to a SessionRequest.
type Session struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	AmountTotal int64  `json:"amount_total"`
	Currency    string `json:"currency"`
}
