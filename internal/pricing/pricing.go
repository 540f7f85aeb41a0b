package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// Mode selects the shipment mode a quotation is priced under.
type Mode string

const (
	ModeCourier Mode = "courier"
	ModeCargo   Mode = "cargo"
	ModeSea     Mode = "sea"
)

// Valid reports whether the mode is one of the supported shipment modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeCourier, ModeCargo, ModeSea:
		return true
	}
	return false
}

// Divisor returns the volumetric divisor for the mode. Sea divides down to
// CBM rather than a weight equivalent; see VolumetricWeight.
func (m Mode) Divisor() float64 {
	switch m {
	case ModeCourier:
		return 5000
	case ModeCargo:
		return 6000
	case ModeSea:
		return 1_000_000
	}
	return 0
}

// ChargeType buckets a charge line for aggregation.
type ChargeType string

const (
	ChargeFreight     ChargeType = "freight"
	ChargeOrigin      ChargeType = "origin"
	ChargeDestination ChargeType = "destination"
	ChargeClearance   ChargeType = "clearance"
)

// Valid reports whether the charge type is a known aggregation bucket.
func (t ChargeType) Valid() bool {
	switch t {
	case ChargeFreight, ChargeOrigin, ChargeDestination, ChargeClearance:
		return true
	}
	return false
}

// BaseCurrency is the currency every computed amount is denominated in.
const BaseCurrency = "INR"

// One CBM counts as 1000 kg when compared against actual weight.
const cbmToKg = 1000

var (
	ccfRate = decimal.NewFromFloat(0.02)
	gstRate = decimal.NewFromFloat(0.18)
)

// round2 rounds a monetary decimal to 2 places, half away from zero.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// roundWeight rounds a weight to 2 decimal places.
func roundWeight(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundCBM keeps volume at 4 decimal places.
func roundCBM(v float64) float64 {
	return math.Round(v*10000) / 10000
}
