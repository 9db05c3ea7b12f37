// README: Per-city dispatch rates.
package pricing

// Rate is the per-kilometre dispatch price for one city, in naira.
type Rate struct {
	City     string
	PerKm    float64
	Currency string
}

// defaultRates back the store when a city has no row yet; they match the
// seeded city_rates table.
var defaultRates = map[string]float64{
	"uyo":           100,
	"port harcourt": 120,
}

// DefaultPerKm applies to cities outside the seeded set.
const DefaultPerKm = 100
