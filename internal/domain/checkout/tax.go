// internal/domain/checkout/tax.go
package checkout

// taxRates maps ISO country codes to rates in basis points. Destinations
// without an entry are taxed at zero; rates here are deliberately coarse
// (no regional splits) until a tax provider is wired in.
var taxRates = map[string]int64{
	"IN": 1800, // GST
	"DE": 1900, // VAT
	"GB": 2000, // VAT
	"FR": 2000, // VAT
}

// CalculateTax returns the tax due, in cents, on a taxable amount
// shipped to dest. Pure function of destination and amount.
func CalculateTax(taxable int64, dest *Address) int64 {
	if dest == nil || taxable <= 0 {
		return 0
	}
	rate, ok := taxRates[dest.Country]
	if !ok {
		return 0
	}
	return taxable * rate / 10000
}
