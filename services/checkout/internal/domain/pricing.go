package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/orjumedia/storefront/pkg/currency"
	apperrors "github.com/orjumedia/storefront/pkg/errors"
)

// DefaultItemName labels a line whose name is blank.
const DefaultItemName = "Item"

// Validation messages returned to the caller.
const (
	MsgCartMissing    = "Cart is empty or missing"
	MsgCartTooLarge   = "Cart too large"
	MsgTotalTooLarge  = "Cart total too large"
	msgInvalidPrice   = "Invalid price at index %d"
	msgInvalidQty     = "Invalid quantity at index %d"
	msgAmountTooSmall = "Amount too small at index %d"
)

var maxInt64 = decimal.NewFromInt(math.MaxInt64)

// BuildSessionRequest validates a checkout request and prices every line in
// the requested currency. Nothing here talks to the network, so every
// rejection happens before the gateway is called.
func BuildSessionRequest(req *CheckoutRequest, maxItems int, defaults RedirectURLs) (*SessionRequest, error) {
	items, ok := req.Items()
	if !ok || len(items) == 0 {
		return nil, apperrors.InvalidInput(MsgCartMissing)
	}
	if maxItems > 0 && len(items) > maxItems {
		return nil, apperrors.InvalidInput(MsgCartTooLarge)
	}

	code := currency.Normalize(req.Currency)
	lines := make([]SessionLine, 0, len(items))
	total := decimal.Zero
	for i, item := range items {
		line, err := priceLine(i, item, code)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
		total = total.Add(decimal.NewFromInt(line.UnitAmount).Mul(decimal.NewFromInt(line.Quantity)))
	}
	// AmountTotal must fit in an int64.
	if total.GreaterThan(maxInt64) {
		return nil, apperrors.InvalidInput(MsgTotalTooLarge)
	}

	return &SessionRequest{
		Currency: code,
		Lines:    lines,
		Redirect: req.Resolve(defaults),
		Customer: req.CustomerMetadata(),
	}, nil
}

func priceLine(index int, item CartItem, code string) (SessionLine, error) {
	price, ok := ParsePrice(item.Price)
	if !ok || price.IsNegative() {
		return SessionLine{}, apperrors.InvalidInput(fmt.Sprintf(msgInvalidPrice, index))
	}

	unitAmount, err := currency.ToMinorUnits(price, code)
	if err != nil {
		return SessionLine{}, apperrors.InvalidInput(fmt.Sprintf(msgInvalidPrice, index))
	}
	if unitAmount < 1 {
		return SessionLine{}, apperrors.InvalidInput(fmt.Sprintf(msgAmountTooSmall, index))
	}

	quantity, ok := ParseQuantity(item.Quantity)
	if !ok {
		return SessionLine{}, apperrors.InvalidInput(fmt.Sprintf(msgInvalidQty, index))
	}

	name := strings.TrimSpace(item.Name)
	if name == "" {
		name = DefaultItemName
	}

	return SessionLine{
		Name:       name,
		ImageURL:   strings.TrimSpace(item.ImageURL),
		UnitAmount: unitAmount,
		Quantity:   quantity,
	}, nil
}

// ParsePrice reads a price sent as a JSON number or numeric string. A null
// or blank string reads as zero; a missing value, a boolean or any other
// shape is rejected.
func ParsePrice(raw json.RawMessage) (decimal.Decimal, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return decimal.Zero, false
	}
	if string(raw) == "null" {
		return decimal.Zero, true
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, false
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return decimal.Zero, true
		}
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseQuantity returns max(1, floor(q)). Missing or non-numeric quantities
// count as 1. ok is false when q does not fit in an int64.
func ParseQuantity(raw json.RawMessage) (n int64, ok bool) {
	q, parsed := ParsePrice(raw)
	if !parsed {
		return 1, true
	}
	q = q.Floor()
	if q.GreaterThan(maxInt64) {
		return 0, false
	}
	if q.LessThan(decimal.NewFromInt(1)) {
		return 1, true
	}
	return q.IntPart(), true
}
