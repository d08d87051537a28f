// internal/domain/checkout/address_test.go
package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressValidateRequiresCoreFields(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(*Address)
	}{
		{"missing first name", func(a *Address) { a.FirstName = "" }},
		{"missing last name", func(a *Address) { a.LastName = "  " }},
		{"missing line1", func(a *Address) { a.Line1 = "" }},
		{"missing city", func(a *Address) { a.City = "" }},
		{"missing postal code", func(a *Address) { a.PostalCode = "" }},
		{"missing country", func(a *Address) { a.Country = "" }},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			addr := usAddress()
			tt.mutate(&addr)
			err := addr.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAddress)
		})
	}
}

func TestAddressValidateChecksCountryCode(t *testing.T) {
	addr := usAddress()
	require.NoError(t, addr.Validate())

	for _, bad := range []string{"USA", "us", "U", "1A"} {
		addr := usAddress()
		addr.Country = bad
		assert.ErrorIs(t, addr.Validate(), ErrInvalidAddress, "country %q should be rejected", bad)
	}
}

func TestAddressValidateChecksPostalCodeByCountry(t *testing.T) {
	tests := []struct {
		name    string
		country string
		postal  string
		valid   bool
	}{
		{"US five digits", "US", "10006", true},
		{"US zip plus four", "US", "10006-1234", true},
		{"US letters rejected", "US", "ABCDE", false},
		{"US too short", "US", "1006", false},
		{"GB outcode incode", "GB", "NW1 6XE", true},
		{"GB compact", "GB", "NW16XE", true},
		{"GB digits only rejected", "GB", "123456", false},
		{"CA with space", "CA", "K1A 0B1", true},
		{"CA without space", "CA", "K1A0B1", true},
		{"CA rejected shape", "CA", "12345", false},
		{"IN six digits", "IN", "560001", true},
		{"IN five digits rejected", "IN", "56001", false},
		{"DE five digits", "DE", "10115", true},
		{"unlisted country accepts anything", "BR", "01310-100", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := usAddress()
			addr.Country = tt.country
			addr.PostalCode = tt.postal
			err := addr.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidAddress)
			}
		})
	}
}

func TestAddressValidateNilAddress(t *testing.T) {
	var addr *Address
	assert.ErrorIs(t, addr.Validate(), ErrInvalidAddress)
}
