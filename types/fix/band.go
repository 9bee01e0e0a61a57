package fix

// Band is a coarse speed category used for display colouring.
type Band string

const (
	BandSafe    Band = "safe"
	BandCaution Band = "caution"
	BandWarning Band = "warning"
	BandDanger  Band = "danger"
)

// BandOf buckets a speed: 120+ danger, 90+ warning, 60+ caution.
func BandOf(speed Kmh) Band {
	switch {
	case speed >= 120:
		return BandDanger
	case speed >= 90:
		return BandWarning
	case speed >= 60:
		return BandCaution
	}
	return BandSafe
}
