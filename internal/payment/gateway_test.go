package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubGateway_CreatePreference(t *testing.T) {
	gw := NewStubGateway("http://localhost:8080/checkout/")
	pref := Preference{Items: []Item{{Title: "Flight booking 1", Quantity: 2, UnitPrice: decimal.NewFromInt(50), CurrencyID: "ARS"}}}

	checkout, err := gw.CreatePreference(context.Background(), pref)
	require.NoError(t, err)
	assert.NotEmpty(t, checkout.ID)
	assert.True(t, strings.HasPrefix(checkout.InitPoint, "http://localhost:8080/checkout?pref_id="))
	assert.True(t, strings.HasSuffix(checkout.InitPoint, checkout.ID))

	other, err := gw.CreatePreference(context.Background(), pref)
	require.NoError(t, err)
	assert.NotEqual(t, checkout.ID, other.ID)
}

func TestStubGateway_Rejects(t *testing.T) {
	gw := NewStubGateway("http://localhost:8080/checkout")

	_, err := gw.CreatePreference(context.Background(), Preference{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = gw.CreatePreference(ctx, Preference{Items: []Item{{Quantity: 1}}})
	assert.ErrorIs(t, err, context.Canceled)
}
