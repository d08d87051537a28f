// internal/domain/checkout/address.go
package checkout

import (
	"fmt"
	"regexp"
	"strings"
)

var countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

// postalCodePatterns holds per-country postal code shapes. Countries
// without an entry only need a non-empty code.
var postalCodePatterns = map[string]*regexp.Regexp{
	"US": regexp.MustCompile(`^\d{5}(-\d{4})?$`),
	"CA": regexp.MustCompile(`^[A-Za-z]\d[A-Za-z] ?\d[A-Za-z]\d$`),
	"GB": regexp.MustCompile(`^[A-Za-z]{1,2}\d[A-Za-z\d]? ?\d[A-Za-z]{2}$`),
	"IN": regexp.MustCompile(`^\d{6}$`),
	"DE": regexp.MustCompile(`^\d{5}$`),
}

// Validate checks the address syntactically. It never consults external
// services; deliverability is the carrier's problem.
func (a *Address) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: address is required", ErrInvalidAddress)
	}

	required := []struct {
		value string
		field string
	}{
		{a.FirstName, "first_name"},
		{a.LastName, "last_name"},
		{a.Line1, "line1"},
		{a.City, "city"},
		{a.PostalCode, "postal_code"},
		{a.Country, "country"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidAddress, r.field)
		}
	}

	if !countryCodePattern.MatchString(a.Country) {
		return fmt.Errorf("%w: country must be an ISO 3166-1 alpha-2 code", ErrInvalidAddress)
	}

	if pattern, ok := postalCodePatterns[a.Country]; ok {
		if !pattern.MatchString(strings.TrimSpace(a.PostalCode)) {
			return fmt.Errorf("%w: postal code %q is not valid for %s", ErrInvalidAddress, a.PostalCode, a.Country)
		}
	}

	return nil
}
