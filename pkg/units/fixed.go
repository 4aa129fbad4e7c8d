package units

import "github.com/shopspring/decimal"

// Display precision for battery figures
const (
	SocPlaces     int32 = 1
	VoltagePlaces int32 = 3
	RatePlaces    int32 = 3
)

// Fixed formats v with exactly places decimals. Rounding is half away
// from zero on the exact binary value of v, so 1.0005 (stored just below
// the tie) gives "1.000" at three places.
func Fixed(v float64, places int32) string {
	return decimal.NewFromFloatWithExponent(v, -places).StringFixed(places)
}

// Soc formats a state-of-charge percentage.
func Soc(v float64) string {
	return Fixed(v, SocPlaces)
}

// Voltage formats a battery voltage.
func Voltage(v float64) string {
	return Fixed(v, VoltagePlaces)
}

// Rate formats a rate of change in percent per hour.
func Rate(v float64) string {
	return Fixed(v, RatePlaces)
}
