package pricing

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// Flex is a numeric field as it arrives from quotation payloads: the admin UI
// submits rates and amounts both as JSON numbers and as form strings, and
// leaves untouched inputs empty. Decoding never fails on junk; anything that
// is not a number becomes the null value so downstream arithmetic treats it
// as zero instead of propagating NaN.
type Flex struct {
	Valid bool
	Value decimal.Decimal
}

// FlexFrom builds a valid Flex from a float.
func FlexFrom(v float64) Flex {
	return Flex{Valid: true, Value: decimal.NewFromFloat(v)}
}

// FlexFromDecimal builds a valid Flex from a decimal.
func FlexFromDecimal(d decimal.Decimal) Flex {
	return Flex{Valid: true, Value: d}
}

// UnmarshalJSON accepts numbers, numeric strings, empty strings and null.
func (f *Flex) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*f = Flex{}
		return nil
	}
	s := string(raw)
	if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) && len(s) >= 2 {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		*f = Flex{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		*f = Flex{}
		return nil
	}
	*f = Flex{Valid: true, Value: d}
	return nil
}

// MarshalJSON renders the value as a JSON number, or null when unset.
func (f Flex) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(f.Value.String()), nil
}

// Decimal returns the value, or zero when unset.
func (f Flex) Decimal() decimal.Decimal {
	if !f.Valid {
		return decimal.Zero
	}
	return f.Value
}

// Float returns the value as a float64, or 0 when unset.
func (f Flex) Float() float64 {
	if !f.Valid {
		return 0
	}
	v, _ := f.Value.Float64()
	return v
}

// Positive reports whether the field holds a value greater than zero.
func (f Flex) Positive() bool {
	return f.Valid && f.Value.IsPositive()
}
