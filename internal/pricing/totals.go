package pricing

import "github.com/shopspring/decimal"

// Totals holds the aggregated money columns of a priced quotation.
// All values are INR, rounded to 2 decimal places.
type Totals struct {
	FreightSubtotal     decimal.Decimal `json:"freight_subtotal"`
	CCFAmount           decimal.Decimal `json:"ccf_amount"`
	TotalFreight        decimal.Decimal `json:"total_freight_amount"`
	OriginSubtotal      decimal.Decimal `json:"origin_subtotal"`
	DestinationSubtotal decimal.Decimal `json:"destination_subtotal"`
	ClearanceSubtotal   decimal.Decimal `json:"clearance_subtotal"`
	Total               decimal.Decimal `json:"total"`
	GSTAmount           decimal.Decimal `json:"gst_amount"`
	FinalTotal          decimal.Decimal `json:"final_total"`
}

// Aggregate buckets evaluated charges by type, applies the cargo CCF
// surcharge and GST, and returns the charge list (with the synthetic CCF
// line appended for cargo) alongside the totals. Re-running it over the same
// evaluated set always yields the same result; every quotation edit rebuilds
// the totals from the full charge list.
func Aggregate(mode Mode, charges []EvaluatedCharge) ([]EvaluatedCharge, Totals) {
	var t Totals
	for _, c := range charges {
		if c.Synthetic {
			continue
		}
		switch c.Type {
		case ChargeFreight:
			t.FreightSubtotal = t.FreightSubtotal.Add(c.ComputedAmount)
		case ChargeOrigin:
			t.OriginSubtotal = t.OriginSubtotal.Add(c.ComputedAmount)
		case ChargeDestination:
			t.DestinationSubtotal = t.DestinationSubtotal.Add(c.ComputedAmount)
		case ChargeClearance:
			t.ClearanceSubtotal = t.ClearanceSubtotal.Add(c.ComputedAmount)
		}
	}
	t.FreightSubtotal = round2(t.FreightSubtotal)

	out := charges
	if mode == ModeCargo {
		t.CCFAmount = round2(t.FreightSubtotal.Mul(ccfRate))
		out = append(out, EvaluatedCharge{
			Charge:         Charge{Name: "CCF", Type: ChargeFreight, Currency: BaseCurrency},
			ComputedAmount: t.CCFAmount,
			Synthetic:      true,
		})
	}
	t.TotalFreight = t.FreightSubtotal.Add(t.CCFAmount)

	t.Total = round2(t.TotalFreight.
		Add(t.DestinationSubtotal).
		Add(t.ClearanceSubtotal).
		Add(t.OriginSubtotal))
	t.GSTAmount = round2(t.Total.Mul(gstRate))
	t.FinalTotal = t.Total.Add(t.GSTAmount)
	return out, t
}
