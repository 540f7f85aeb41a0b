package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Charge is one charge line on a quotation request.
type Charge struct {
	Name     string     `json:"charge_name" validate:"required"`
	Type     ChargeType `json:"type" validate:"required,oneof=freight origin destination clearance"`
	Rate     Flex       `json:"rate_per_weight"`
	Amount   Flex       `json:"amount"`
	Currency string     `json:"currency"`
}

// CurrencyOrBase returns the normalized charge currency, defaulting to INR.
func (c Charge) CurrencyOrBase() string {
	cur := strings.ToUpper(strings.TrimSpace(c.Currency))
	if cur == "" {
		return BaseCurrency
	}
	return cur
}

// Foreign reports whether the charge is denominated in a non-INR currency.
func (c Charge) Foreign() bool {
	return c.CurrencyOrBase() != BaseCurrency
}

// WeightScaledName reports whether the charge name identifies an ocean
// freight or terminal handling line, the sea-mode lines whose per-weight
// behaviour follows the volumetric-governs flag. Matching is a
// case-insensitive substring check for compatibility with legacy data.
func WeightScaledName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "ocean") || strings.Contains(lower, "thc")
}

// EvaluatedCharge is a charge line annotated with its computed INR amount
// and, when the amount was weight-scaled, the weight that was applied.
type EvaluatedCharge struct {
	Charge
	ComputedAmount decimal.Decimal `json:"computed_amount"`
	WeightUsed     *float64        `json:"weight_used"`
	Synthetic      bool            `json:"synthetic,omitempty"`
}

// chargeContext carries the weight and currency context a charge line is
// evaluated under.
type chargeContext struct {
	mode              Mode
	chargeableWeight  float64
	volumetricGoverns bool
	exchangeRate      decimal.Decimal
}

// evaluateCharge computes the INR amount for a single charge line.
//
// Non-freight lines (origin, destination, clearance) always carry their flat
// amount as supplied and are never weight-scaled. Freight lines depend on the
// mode: courier and cargo multiply rate by chargeable weight, falling back to
// the flat amount for legacy manual entries; sea distinguishes INR lines
// (per-weight only when volumetric governs, otherwise flat) from foreign
// currency lines, where only ocean/THC lines scale with weight and every
// result is converted at the supplied exchange rate.
func evaluateCharge(c Charge, cc chargeContext) EvaluatedCharge {
	out := EvaluatedCharge{Charge: c}

	if c.Type != ChargeFreight {
		out.ComputedAmount = round2(c.Amount.Decimal())
		return out
	}

	weight := decimal.NewFromFloat(cc.chargeableWeight)

	if cc.mode != ModeSea {
		if c.Rate.Valid {
			out.ComputedAmount = round2(c.Rate.Value.Mul(weight))
			out.WeightUsed = ptr(cc.chargeableWeight)
			return out
		}
		out.ComputedAmount = round2(c.Amount.Decimal())
		return out
	}

	if !c.Foreign() {
		if c.Rate.Valid {
			if cc.volumetricGoverns {
				out.ComputedAmount = round2(c.Rate.Value.Mul(weight))
				out.WeightUsed = ptr(cc.chargeableWeight)
			} else {
				out.ComputedAmount = round2(c.Rate.Value)
			}
			return out
		}
		out.ComputedAmount = round2(c.Amount.Decimal())
		return out
	}

	// Foreign currency: compute in the charge currency, then convert.
	var foreign decimal.Decimal
	switch {
	case c.Rate.Valid && WeightScaledName(c.Name):
		if cc.volumetricGoverns {
			foreign = c.Rate.Value.Mul(weight)
			out.WeightUsed = ptr(cc.chargeableWeight)
		} else {
			foreign = c.Rate.Value
		}
	case c.Rate.Valid:
		foreign = c.Rate.Value
	default:
		foreign = c.Amount.Decimal()
	}
	out.ComputedAmount = round2(foreign.Mul(cc.exchangeRate))
	return out
}

// EvaluateCharges computes the INR amount of every charge line against the
// given context. The input slice is not modified.
func EvaluateCharges(charges []Charge, cc chargeContext) []EvaluatedCharge {
	out := make([]EvaluatedCharge, 0, len(charges))
	for _, c := range charges {
		out = append(out, evaluateCharge(c, cc))
	}
	return out
}

func ptr(v float64) *float64 { return &v }
