package pricing_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-freight/internal/pricing"
)

func TestFlexUnmarshal(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		valid bool
		want  string
	}{
		{"number", `12.5`, true, "12.5"},
		{"integer", `40`, true, "40"},
		{"numeric string", `"150"`, true, "150"},
		{"numeric string with spaces", `" 83.2 "`, true, "83.2"},
		{"empty string", `""`, false, ""},
		{"null", `null`, false, ""},
		{"garbage string", `"abc"`, false, ""},
		{"negative", `-3`, true, "-3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f pricing.Flex
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &f))
			require.Equal(t, tc.valid, f.Valid)
			if tc.valid {
				require.Equal(t, tc.want, f.Value.String())
			}
		})
	}
}

func TestFlexZeroWhenUnset(t *testing.T) {
	var f pricing.Flex
	require.Zero(t, f.Float())
	require.True(t, f.Decimal().IsZero())
	require.False(t, f.Positive())
}

func TestFlexWithinStruct(t *testing.T) {
	var c pricing.Charge
	payload := `{"charge_name":"Courier Charges","type":"freight","rate_per_weight":"","amount":"150"}`
	require.NoError(t, json.Unmarshal([]byte(payload), &c))
	require.False(t, c.Rate.Valid)
	require.True(t, c.Amount.Valid)
	require.Equal(t, "150", c.Amount.Value.String())
}

func TestFlexMarshalRoundTrip(t *testing.T) {
	f := pricing.FlexFrom(83.25)
	b, err := json.Marshal(f)
	require.NoError(t, err)
	require.Equal(t, "83.25", string(b))

	b, err = json.Marshal(pricing.Flex{})
	require.NoError(t, err)
	require.Equal(t, "null", string(b))
}
