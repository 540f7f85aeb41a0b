package pricing

// ResolveChargeableWeight picks the billing weight: the greater of the
// declared actual weight and the volumetric weight equivalent, rounded to
// 2 decimal places. The second return reports whether the volumetric side
// won, which flips certain sea-mode freight lines from flat to per-weight
// computation. Callers are expected to have validated actual weight as
// positive before invoking this.
func ResolveChargeableWeight(actualWeight, volumetricWeight float64) (float64, bool) {
	if volumetricWeight > actualWeight {
		return roundWeight(volumetricWeight), true
	}
	return roundWeight(actualWeight), false
}
