package quotation

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-freight/internal/pricing"
)

// Status is the lifecycle state of a quotation. Transitions never touch the
// pricing fields; only a full edit recomputes them.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusSent     Status = "sent"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether the status is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusSent, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// Draft quotations can be queued or sent directly; only sent quotations can
// be approved or rejected.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusPending || next == StatusSent
	case StatusPending:
		return next == StatusSent
	case StatusSent:
		return next == StatusApproved || next == StatusRejected
	}
	return false
}

// PackageRow is a persisted package line, keyed to its quotation.
type PackageRow struct {
	ID       uuid.UUID `json:"id"`
	Length   float64   `json:"length"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	SameSize float64   `json:"same_size"`
}

// ChargeRow is a persisted charge line with its computed amount.
type ChargeRow struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"charge_name"`
	Type           pricing.ChargeType `json:"type"`
	RatePerWeight  *float64           `json:"rate_per_weight"`
	FlatAmount     *float64           `json:"amount"`
	Currency       string             `json:"currency"`
	ComputedAmount float64            `json:"computed_amount"`
	WeightUsed     *float64           `json:"weight_used"`
	Synthetic      bool               `json:"synthetic,omitempty"`
}

// Quotation aggregates the declared shipment data and every derived pricing
// field. Derived fields are recomputed from scratch on every edit.
type Quotation struct {
	ID         uuid.UUID    `json:"id"`
	CustomerID *uuid.UUID   `json:"customer_id,omitempty"`
	Reference  string       `json:"reference,omitempty"`
	Mode       pricing.Mode `json:"mode"`
	Status     Status       `json:"status"`

	ActualWeight      float64  `json:"actual_weight"`
	VolumeWeight      float64  `json:"volume_weight"`
	CBM               float64  `json:"cbm,omitempty"`
	ChargeableWeight  float64  `json:"chargeable_weight"`
	VolumetricGoverns bool     `json:"volumetric_governs"`
	ExchangeRate      *float64 `json:"exchange_rate,omitempty"`

	FreightSubtotal     float64 `json:"freight_subtotal"`
	CCFAmount           float64 `json:"ccf_amount"`
	TotalFreight        float64 `json:"total_freight_amount"`
	OriginSubtotal      float64 `json:"origin_subtotal"`
	DestinationSubtotal float64 `json:"destination_subtotal"`
	ClearanceSubtotal   float64 `json:"clearance_subtotal"`
	Total               float64 `json:"total"`
	GSTAmount           float64 `json:"gst_amount"`
	FinalTotal          float64 `json:"final_total"`

	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Packages []PackageRow `json:"packages"`
	Charges  []ChargeRow  `json:"charges"`
}
