package common

// All raw speeds are in m/s, as phones report them.
// Displayed and spoken speeds are in km/h.

// KmhPerMps converts m/s to km/h.
const KmhPerMps = 3.6

// MpsToKmh converts a speed in m/s to km/h, without rounding.
func MpsToKmh(mps float64) float64 {
	return mps * KmhPerMps
}
