package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-freight/internal/pricing"
)

func freightRate(name string, rate float64) pricing.Charge {
	return pricing.Charge{Name: name, Type: pricing.ChargeFreight, Rate: pricing.FlexFrom(rate)}
}

func flat(name string, typ pricing.ChargeType, amount float64) pricing.Charge {
	return pricing.Charge{Name: name, Type: typ, Amount: pricing.FlexFrom(amount)}
}

func amountOf(t *testing.T, res pricing.Result, name string) decimal.Decimal {
	t.Helper()
	for _, c := range res.Charges {
		if c.Name == name {
			return c.ComputedAmount
		}
	}
	t.Fatalf("charge %q not found", name)
	return decimal.Zero
}

func TestCourierActualWeightGoverns(t *testing.T) {
	res, err := pricing.Calculate(pricing.Input{
		Mode:         pricing.ModeCourier,
		ActualWeight: 20,
		Packages:     []pricing.Package{pkg(50, 40, 30, 1)},
		Charges:      []pricing.Charge{freightRate("Courier Charges", 10)},
	})
	require.NoError(t, err)
	require.Equal(t, 12.0, res.VolumeWeight)
	require.Equal(t, 20.0, res.ChargeableWeight)
	require.False(t, res.VolumetricGoverns)
	require.Equal(t, "200", amountOf(t, res, "Courier Charges").String())
	require.Equal(t, "200", res.FreightSubtotal.String())
	wu := res.Charges[0].WeightUsed
	require.NotNil(t, wu)
	require.Equal(t, 20.0, *wu)
}

func TestCargoCCFSurcharge(t *testing.T) {
	res, err := pricing.Calculate(pricing.Input{
		Mode:         pricing.ModeCargo,
		ActualWeight: 100,
		Charges:      []pricing.Charge{freightRate("Air Freight", 5)},
	})
	require.NoError(t, err)
	// 5 * 100 = 500 freight, CCF = 2% = 10
	require.Equal(t, "500", res.FreightSubtotal.String())
	require.Equal(t, "10", res.CCFAmount.String())
	require.Equal(t, "510", res.TotalFreight.String())

	last := res.Charges[len(res.Charges)-1]
	require.Equal(t, "CCF", last.Name)
	require.True(t, last.Synthetic)
	require.Nil(t, last.WeightUsed)
	require.Equal(t, "10", last.ComputedAmount.String())
}

func TestGSTOnPreTaxTotal(t *testing.T) {
	res, err := pricing.Calculate(pricing.Input{
		Mode:         pricing.ModeCourier,
		ActualWeight: 1,
		Charges: []pricing.Charge{
			freightRate("Courier Charges", 700),
			flat("Delivery Order", pricing.ChargeDestination, 200),
			flat("Customs Clearance", pricing.ChargeClearance, 100),
		},
	})
	require.NoError(t, err)
	require.Equal(t, "1000", res.Total.String())
	require.Equal(t, "180", res.GSTAmount.String())
	require.Equal(t, "1180", res.FinalTotal.String())
}

func TestSeaVolumetricGovernsUSDOceanFreight(t *testing.T) {
	res, err := pricing.Calculate(pricing.Input{
		Mode:         pricing.ModeSea,
		ActualWeight: 500,
		Packages:     []pricing.Package{pkg(100, 100, 100, 2)},
		Charges: []pricing.Charge{
			{Name: "Ocean Freight", Type: pricing.ChargeFreight, Rate: pricing.FlexFrom(1), Currency: "USD"},
		},
		ExchangeRate: pricing.FlexFrom(83),
	})
	require.NoError(t, err)
	require.Equal(t, 2.0, res.CBM)
	require.Equal(t, 2000.0, res.VolumeWeight)
	require.Equal(t, 2000.0, res.ChargeableWeight)
	require.True(t, res.VolumetricGoverns)
	require.Equal(t, "166000", amountOf(t, res, "Ocean Freight").String())
}

func TestSeaActualGovernsOceanFreightIsFlat(t *testing.T) {
	res, err := pricing.Calculate(pricing.Input{
		Mode:         pricing.ModeSea,
		ActualWeight: 3000,
		Packages:     []pricing.Package{pkg(100, 100, 100, 2)},
		Charges: []pricing.Charge{
			{Name: "THC", Type: pricing.ChargeFreight, Rate: pricing.FlexFrom(150), Currency: "USD"},
		},
		ExchangeRate: pricing.FlexFrom(80),
	})
	require.NoError(t, err)
	require.False(t, res.VolumetricGoverns)
	// flat 150 USD * 80
	require.Equal(t, "12000", amountOf(t, res, "THC").String())
	require.Nil(t, res.Charges[0].WeightUsed)
}

func TestSeaForeignNonOceanIsFlatConverted(t *testing.T) {
	res, err := pricing.Calculate(pricing.Input{
		Mode:         pricing.ModeSea,
		ActualWeight: 500,
		Packages:     []pricing.Package{pkg(100, 100, 100, 2)},
		Charges: []pricing.Charge{
			{Name: "BL Fee", Type: pricing.ChargeFreight, Rate: pricing.FlexFrom(60), Currency: "USD"},
		},
		ExchangeRate: pricing.FlexFrom(83),
	})
	require.NoError(t, err)
	// volumetric governs, but BL Fee is not ocean/THC: flat 60 * 83
	require.True(t, res.VolumetricGoverns)
	require.Equal(t, "4980", amountOf(t, res, "BL Fee").String())
}

func TestSeaINRFreightFollowsVolumetricFlag(t *testing.T) {
	in := pricing.Input{
		Mode:         pricing.ModeSea,
		ActualWeight: 500,
		Packages:     []pricing.Package{pkg(100, 100, 100, 2)},
		Charges: []pricing.Charge{
			{Name: "Documentation", Type: pricing.ChargeFreight, Rate: pricing.FlexFrom(2)},
		},
	}
	res, err := pricing.Calculate(in)
	require.NoError(t, err)
	// volumetric governs: 2 * 2000
	require.Equal(t, "4000", amountOf(t, res, "Documentation").String())

	in.ActualWeight = 5000
	res, err = pricing.Calculate(in)
	require.NoError(t, err)
	// actual governs: flat rate, no weight multiplication
	require.Equal(t, "2", amountOf(t, res, "Documentation").String())
	require.Nil(t, res.Charges[0].WeightUsed)
}

func TestFlatAmountFallbackDoesNotNaN(t *testing.T) {
	var c pricing.Charge
	c.Name = "Courier Charges"
	c.Type = pricing.ChargeFreight
	c.Amount = pricing.FlexFrom(150)
	// Rate left unset, mirroring an empty-string payload field.
	res, err := pricing.Calculate(pricing.Input{
		Mode:         pricing.ModeCourier,
		ActualWeight: 10,
		Charges:      []pricing.Charge{c},
	})
	require.NoError(t, err)
	require.Equal(t, "150", amountOf(t, res, "Courier Charges").String())
	require.Nil(t, res.Charges[0].WeightUsed)
}

func TestNonFreightChargesNeverWeightScaled(t *testing.T) {
	res, err := pricing.Calculate(pricing.Input{
		Mode:         pricing.ModeCargo,
		ActualWeight: 250,
		Charges: []pricing.Charge{
			flat("Pickup", pricing.ChargeOrigin, 1200),
			flat("Delivery", pricing.ChargeDestination, 800),
		},
	})
	require.NoError(t, err)
	require.Equal(t, "1200", amountOf(t, res, "Pickup").String())
	require.Equal(t, "800", amountOf(t, res, "Delivery").String())
	for _, c := range res.Charges {
		require.Nil(t, c.WeightUsed)
	}
}

func TestExchangeRateRequiredForForeignCharges(t *testing.T) {
	_, err := pricing.Calculate(pricing.Input{
		Mode:         pricing.ModeSea,
		ActualWeight: 100,
		Charges: []pricing.Charge{
			{Name: "Ocean Freight", Type: pricing.ChargeFreight, Rate: pricing.FlexFrom(10), Currency: "USD"},
		},
	})
	require.ErrorIs(t, err, pricing.ErrExchangeRateRequired)

	_, err = pricing.Calculate(pricing.Input{
		Mode:         pricing.ModeSea,
		ActualWeight: 100,
		ExchangeRate: pricing.FlexFrom(0),
		Charges: []pricing.Charge{
			{Name: "Ocean Freight", Type: pricing.ChargeFreight, Rate: pricing.FlexFrom(10), Currency: "USD"},
		},
	})
	require.ErrorIs(t, err, pricing.ErrExchangeRateRequired)
}

func TestUnknownModeRejected(t *testing.T) {
	_, err := pricing.Calculate(pricing.Input{Mode: "rail", ActualWeight: 10})
	require.ErrorIs(t, err, pricing.ErrUnknownMode)
}

func TestCalculateIdempotent(t *testing.T) {
	in := pricing.Input{
		Mode:         pricing.ModeCargo,
		ActualWeight: 320,
		Packages:     []pricing.Package{pkg(120, 80, 60, 3), pkg(40, 40, 40, 2)},
		Charges: []pricing.Charge{
			freightRate("Air Freight", 92.5),
			flat("Pickup", pricing.ChargeOrigin, 1500),
			flat("AWB Fee", pricing.ChargeDestination, 350),
			flat("Customs", pricing.ChargeClearance, 2750),
		},
	}
	first, err := pricing.Calculate(in)
	require.NoError(t, err)
	second, err := pricing.Calculate(in)
	require.NoError(t, err)

	require.Equal(t, first.ChargeableWeight, second.ChargeableWeight)
	require.True(t, first.FinalTotal.Equal(second.FinalTotal))
	require.Len(t, second.Charges, len(first.Charges))
	for i := range first.Charges {
		require.True(t, first.Charges[i].ComputedAmount.Equal(second.Charges[i].ComputedAmount))
	}
}

func TestFinalTotalRoundTrip(t *testing.T) {
	res, err := pricing.Calculate(pricing.Input{
		Mode:         pricing.ModeCargo,
		ActualWeight: 137.5,
		Charges: []pricing.Charge{
			freightRate("Air Freight", 41.37),
			flat("Delivery", pricing.ChargeDestination, 466.99),
			flat("Customs", pricing.ChargeClearance, 123.45),
		},
	})
	require.NoError(t, err)

	// Reconstruct the base charge subtotal from the grand total.
	reconstructed := res.FinalTotal.Sub(res.GSTAmount).Sub(res.CCFAmount)
	base := res.FreightSubtotal.Add(res.DestinationSubtotal).Add(res.ClearanceSubtotal)
	diff := reconstructed.Sub(base).Abs()
	require.True(t, diff.LessThanOrEqual(decimal.NewFromFloat(0.01)),
		"round trip drift %s", diff.String())
}
