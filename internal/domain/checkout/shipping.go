// internal/domain/checkout/shipping.go
package checkout

import "fmt"

// ShippingMethod represents a shipping option quoted for a destination
type ShippingMethod struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         int64  `json:"price"`
	EstimatedDays string `json:"estimated_days"`
	Carrier       string `json:"carrier"`
}

// Overnight is offered domestically only, and carriers refuse it for
// heavy parcels.
const maxOvernightWeightGrams = 20000

// QuoteShippingMethods computes the shipping options for a destination.
// It is a pure function of destination plus cart weight and value;
// quotes are never persisted, so re-quoting after an address change is
// always consistent. freeThreshold (cents) waives the standard rate for
// large orders; zero disables the waiver.
func QuoteShippingMethods(dest *Address, subtotal int64, weightGrams int64, freeThreshold int64) []ShippingMethod {
	methods := []ShippingMethod{
		{
			ID:            "standard",
			Name:          "Standard Shipping",
			Description:   "Regular delivery in 5-7 business days",
			Price:         599,
			EstimatedDays: "5-7 business days",
			Carrier:       "USPS",
		},
		{
			ID:            "express",
			Name:          "Express Shipping",
			Description:   "Fast delivery in 2-3 business days",
			Price:         1499,
			EstimatedDays: "2-3 business days",
			Carrier:       "UPS",
		},
	}

	if dest.Country == "US" && weightGrams <= maxOvernightWeightGrams {
		methods = append(methods, ShippingMethod{
			ID:            "overnight",
			Name:          "Overnight Shipping",
			Description:   "Next business day delivery",
			Price:         2999,
			EstimatedDays: "1 business day",
			Carrier:       "FedEx",
		})
	}

	if freeThreshold > 0 && subtotal >= freeThreshold {
		for i := range methods {
			if methods[i].ID == "standard" {
				methods[i].Price = 0
				methods[i].Description = fmt.Sprintf("Free standard shipping on orders over $%.2f", float64(freeThreshold)/100)
			}
		}
	}

	return methods
}

// findShippingMethod returns the quoted method with the given id, or nil
func findShippingMethod(methods []ShippingMethod, id string) *ShippingMethod {
	for i := range methods {
		if methods[i].ID == id {
			return &methods[i]
		}
	}
	return nil
}
