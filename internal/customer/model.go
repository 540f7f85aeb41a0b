package customer

import (
	"time"

	"github.com/google/uuid"
)

// KYCStatus tracks the verification state of a customer's KYC documents.
// Document storage itself lives outside this service; only the state is kept.
type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCVerified KYCStatus = "verified"
	KYCRejected KYCStatus = "rejected"
)

// Valid reports whether the status is a known KYC state.
func (s KYCStatus) Valid() bool {
	switch s {
	case KYCPending, KYCVerified, KYCRejected:
		return true
	}
	return false
}

// Customer is a billing party for quotations and export shipments.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	GSTIN     string    `json:"gstin,omitempty"`
	Address   string    `json:"address,omitempty"`
	KYCStatus KYCStatus `json:"kyc_status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
