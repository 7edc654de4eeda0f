// Package payment describes checkout preferences sent to an external payment
// provider and ships a stub provider for local runs and tests.
package payment

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one priced line of a checkout.
type Item struct {
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CurrencyID string          `json:"currency_id"`
}

// BackURLs are where the provider sends the buyer after checkout.
type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// Preference is a checkout request.
type Preference struct {
	Items             []Item   `json:"items"`
	BackURLs          BackURLs `json:"back_urls"`
	AutoReturn        string   `json:"auto_return,omitempty"`
	ExternalReference string   `json:"external_reference,omitempty"`
}

// Checkout is the provider's answer: a preference id and the page the buyer
// is redirected to.
type Checkout struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// Gateway creates checkout preferences with a payment provider.
type Gateway interface {
	CreatePreference(ctx context.Context, pref Preference) (*Checkout, error)
}

// StubGateway answers every request with a locally generated preference.
type StubGateway struct {
	checkoutURL string
}

// Ensure StubGateway implements Gateway
var _ Gateway = (*StubGateway)(nil)

// NewStubGateway creates a stub whose init points hang off checkoutURL.
func NewStubGateway(checkoutURL string) *StubGateway {
	return &StubGateway{checkoutURL: strings.TrimRight(checkoutURL, "/")}
}

func (g *StubGateway) CreatePreference(ctx context.Context, pref Preference) (*Checkout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(pref.Items) == 0 {
		return nil, fmt.Errorf("preference has no items")
	}
	id := uuid.NewString()
	return &Checkout{
		ID:        id,
		InitPoint: g.checkoutURL + "?pref_id=" + url.QueryEscape(id),
	}, nil
}
