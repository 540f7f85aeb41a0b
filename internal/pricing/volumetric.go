package pricing

// Package is one package row on a quotation request. Dimensions are in cm,
// SameSize is the number of identical pieces. All fields tolerate empty or
// non-numeric payload values, which count as zero.
type Package struct {
	Length   Flex `json:"length"`
	Width    Flex `json:"width"`
	Height   Flex `json:"height"`
	SameSize Flex `json:"same_size"`
}

// VolumetricUnits sums (L*W*H/divisor)*pieces over all packages. For courier
// and cargo the result is a volumetric weight in kg; for sea it is the cubic
// measurement (CBM). An empty package list yields 0, which callers treat as
// "actual weight governs".
func VolumetricUnits(packages []Package, mode Mode) float64 {
	divisor := mode.Divisor()
	if divisor <= 0 {
		return 0
	}
	var total float64
	for _, p := range packages {
		unit := p.Length.Float() * p.Width.Float() * p.Height.Float() / divisor
		total += unit * p.SameSize.Float()
	}
	return total
}

// VolumetricWeight converts the volumetric units of a package list into the
// weight equivalent used for the chargeable-weight comparison. For sea the
// CBM total is scaled to kg.
func VolumetricWeight(packages []Package, mode Mode) (weight, cbm float64) {
	units := VolumetricUnits(packages, mode)
	if mode == ModeSea {
		cbm = roundCBM(units)
		return roundWeight(units * cbmToKg), cbm
	}
	return roundWeight(units), 0
}
