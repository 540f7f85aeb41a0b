package export

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by stores when a shipment does not exist.
	ErrNotFound = errors.New("export shipment not found")
)

// Shipment is one courier export consignment entered for the monthly
// export register.
type Shipment struct {
	ID            uuid.UUID  `json:"id"`
	QuotationID   *uuid.UUID `json:"quotation_id,omitempty"`
	InvoiceNo     string     `json:"invoice_no"`
	AWB           string     `json:"awb"`
	Consignee     string     `json:"consignee"`
	Destination   string     `json:"destination"`
	Pieces        int32      `json:"pieces"`
	Weight        float64    `json:"weight"`
	DeclaredValue float64    `json:"declared_value"`
	ShippedAt     time.Time  `json:"shipped_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// RegisterRow is one destination line of a monthly export register.
type RegisterRow struct {
	Period             string    `json:"period"`
	Destination        string    `json:"destination"`
	Shipments          int64     `json:"shipments"`
	TotalPieces        int64     `json:"total_pieces"`
	TotalWeight        float64   `json:"total_weight"`
	TotalDeclaredValue float64   `json:"total_declared_value"`
	BuiltAt            time.Time `json:"built_at"`
}
