package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-freight/internal/pricing"
)

func pkg(l, w, h, qty float64) pricing.Package {
	return pricing.Package{
		Length:   pricing.FlexFrom(l),
		Width:    pricing.FlexFrom(w),
		Height:   pricing.FlexFrom(h),
		SameSize: pricing.FlexFrom(qty),
	}
}

func TestVolumetricWeightCourier(t *testing.T) {
	weight, cbm := pricing.VolumetricWeight([]pricing.Package{pkg(50, 40, 30, 1)}, pricing.ModeCourier)
	require.Equal(t, 12.0, weight)
	require.Zero(t, cbm)
}

func TestVolumetricWeightCargoDivisor(t *testing.T) {
	weight, _ := pricing.VolumetricWeight([]pricing.Package{pkg(60, 50, 40, 2)}, pricing.ModeCargo)
	// (60*50*40/6000)*2 = 40
	require.Equal(t, 40.0, weight)
}

func TestVolumetricWeightSeaCBM(t *testing.T) {
	weight, cbm := pricing.VolumetricWeight([]pricing.Package{pkg(100, 100, 100, 2)}, pricing.ModeSea)
	require.Equal(t, 2.0, cbm)
	require.Equal(t, 2000.0, weight)
}

func TestVolumetricWeightEmptyList(t *testing.T) {
	weight, cbm := pricing.VolumetricWeight(nil, pricing.ModeCourier)
	require.Zero(t, weight)
	require.Zero(t, cbm)
}

func TestZeroDimensionContributesNothing(t *testing.T) {
	for _, p := range []pricing.Package{
		pkg(0, 40, 30, 1),
		pkg(50, 0, 30, 1),
		pkg(50, 40, 0, 1),
	} {
		weight, _ := pricing.VolumetricWeight([]pricing.Package{p}, pricing.ModeCourier)
		require.Zero(t, weight)
	}
}

func TestMissingDimensionSanitizedToZero(t *testing.T) {
	p := pkg(50, 40, 30, 1)
	p.Height = pricing.Flex{}
	weight, _ := pricing.VolumetricWeight([]pricing.Package{p}, pricing.ModeCourier)
	require.Zero(t, weight)
}

func TestMissingQuantitySanitizedToZero(t *testing.T) {
	p := pkg(50, 40, 30, 1)
	p.SameSize = pricing.Flex{}
	weight, _ := pricing.VolumetricWeight([]pricing.Package{p}, pricing.ModeCourier)
	require.Zero(t, weight)
}

func TestChargeableWeightPicksGreater(t *testing.T) {
	w, governs := pricing.ResolveChargeableWeight(20, 12)
	require.Equal(t, 20.0, w)
	require.False(t, governs)

	w, governs = pricing.ResolveChargeableWeight(500, 2000)
	require.Equal(t, 2000.0, w)
	require.True(t, governs)
}

func TestChargeableWeightRounding(t *testing.T) {
	w, _ := pricing.ResolveChargeableWeight(10.456, 0)
	require.Equal(t, 10.46, w)
}
