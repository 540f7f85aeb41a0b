package rates

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no rate is stored for a currency.
var ErrNotFound = errors.New("exchange rate not found")

// Rate is the INR value of one unit of a foreign currency. Rates prefill the
// quotation form; the exchange_rate submitted with a quotation stays
// authoritative for pricing.
type Rate struct {
	Currency  string    `json:"currency"`
	Rate      float64   `json:"rate"`
	FetchedAt time.Time `json:"fetched_at"`
}
