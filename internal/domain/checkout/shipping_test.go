// internal/domain/checkout/shipping_test.go
package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func methodIDs(methods []ShippingMethod) []string {
	ids := make([]string, len(methods))
	for i, m := range methods {
		ids[i] = m.ID
	}
	return ids
}

func TestQuoteShippingMethodsDomesticLightParcel(t *testing.T) {
	dest := usAddress()
	methods := QuoteShippingMethods(&dest, 15998, 1800, 20000)

	require.Equal(t, []string{"standard", "express", "overnight"}, methodIDs(methods))
	assert.Equal(t, int64(599), methods[0].Price)
	assert.Equal(t, int64(1499), methods[1].Price)
	assert.Equal(t, int64(2999), methods[2].Price)
	assert.Equal(t, "USPS", methods[0].Carrier)
	assert.Equal(t, "FedEx", methods[2].Carrier)
}

func TestQuoteShippingMethodsNoOvernightAbroad(t *testing.T) {
	dest := gbAddress()
	methods := QuoteShippingMethods(&dest, 15998, 1800, 20000)

	assert.Equal(t, []string{"standard", "express"}, methodIDs(methods))
}

func TestQuoteShippingMethodsNoOvernightForHeavyParcels(t *testing.T) {
	dest := usAddress()

	atLimit := QuoteShippingMethods(&dest, 10999, 20000, 20000)
	assert.Contains(t, methodIDs(atLimit), "overnight")

	overLimit := QuoteShippingMethods(&dest, 21998, 48000, 0)
	assert.NotContains(t, methodIDs(overLimit), "overnight")
}

func TestQuoteShippingMethodsFreeStandardOverThreshold(t *testing.T) {
	dest := usAddress()

	under := QuoteShippingMethods(&dest, 19999, 1000, 20000)
	assert.Equal(t, int64(599), under[0].Price)

	over := QuoteShippingMethods(&dest, 20000, 1000, 20000)
	require.Equal(t, "standard", over[0].ID)
	assert.Equal(t, int64(0), over[0].Price)
	// only the standard rate is waived
	assert.Equal(t, int64(1499), over[1].Price)

	// zero threshold disables the waiver
	disabled := QuoteShippingMethods(&dest, 100000, 1000, 0)
	assert.Equal(t, int64(599), disabled[0].Price)
}

func TestFindShippingMethod(t *testing.T) {
	dest := usAddress()
	methods := QuoteShippingMethods(&dest, 15998, 1800, 20000)

	found := findShippingMethod(methods, "express")
	require.NotNil(t, found)
	assert.Equal(t, int64(1499), found.Price)

	assert.Nil(t, findShippingMethod(methods, "drone"))
}
