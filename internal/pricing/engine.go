package pricing

import "errors"

var (
	// ErrUnknownMode is returned for a shipment mode outside courier/cargo/sea.
	ErrUnknownMode = errors.New("pricing: unknown shipment mode")
	// ErrExchangeRateRequired is returned when a foreign-currency charge is
	// present without a positive exchange rate.
	ErrExchangeRateRequired = errors.New("pricing: exchange rate required for foreign currency charges")
)

// Input is a full quotation calculation request. The caller validates that
// ActualWeight is positive before invoking Calculate; packages and charges
// are taken as the sole source of truth for every (re)calculation.
type Input struct {
	Mode         Mode      `json:"mode"`
	ActualWeight float64   `json:"actual_weight"`
	Packages     []Package `json:"packages"`
	Charges      []Charge  `json:"charges"`
	ExchangeRate Flex      `json:"exchange_rate"`
}

// Result carries every derived field of a priced quotation.
type Result struct {
	VolumeWeight      float64           `json:"volume_weight"`
	CBM               float64           `json:"cbm,omitempty"`
	ChargeableWeight  float64           `json:"chargeable_weight"`
	VolumetricGoverns bool              `json:"volumetric_governs"`
	Charges           []EvaluatedCharge `json:"charges"`
	Totals
}

// Calculate runs the full pricing pipeline: volumetric weight, chargeable
// weight, per-charge evaluation, surcharge and tax aggregation. It is a pure
// function of its input and safe to re-run; identical input always yields an
// identical result.
func Calculate(in Input) (Result, error) {
	if !in.Mode.Valid() {
		return Result{}, ErrUnknownMode
	}
	if hasForeignCharge(in.Charges) && !in.ExchangeRate.Positive() {
		return Result{}, ErrExchangeRateRequired
	}

	volumeWeight, cbm := VolumetricWeight(in.Packages, in.Mode)
	chargeable, volumetricGoverns := ResolveChargeableWeight(in.ActualWeight, volumeWeight)

	evaluated := EvaluateCharges(in.Charges, chargeContext{
		mode:              in.Mode,
		chargeableWeight:  chargeable,
		volumetricGoverns: volumetricGoverns,
		exchangeRate:      in.ExchangeRate.Decimal(),
	})
	evaluated, totals := Aggregate(in.Mode, evaluated)

	return Result{
		VolumeWeight:      volumeWeight,
		CBM:               cbm,
		ChargeableWeight:  chargeable,
		VolumetricGoverns: volumetricGoverns,
		Charges:           evaluated,
		Totals:            totals,
	}, nil
}

func hasForeignCharge(charges []Charge) bool {
	for _, c := range charges {
		if c.Foreign() {
			return true
		}
	}
	return false
}
