package quotation

import (
	"context"
	"errors"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-freight/internal/common"
	"github.com/noah-isme/backend-freight/internal/obs"
	"github.com/noah-isme/backend-freight/internal/pricing"
)

var (
	// ErrNotFound is returned by stores when a quotation does not exist.
	ErrNotFound = errors.New("quotation not found")
	// ErrInvalidTransition is returned for a lifecycle move the status model forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ListParams narrows and pages a quotation listing.
type ListParams struct {
	Status Status
	Mode   pricing.Mode
	Limit  int32
	Offset int32
}

// Store persists quotations. The Postgres implementation wraps every write in
// a single transaction so a failed recalculation never leaves partial rows.
type Store interface {
	Create(ctx context.Context, q *Quotation) error
	Update(ctx context.Context, q *Quotation) error
	Get(ctx context.Context, id uuid.UUID) (*Quotation, error)
	List(ctx context.Context, p ListParams) ([]Quotation, int64, error)
	Transition(ctx context.Context, id uuid.UUID, next Status) (*Quotation, error)
}

// Input is the create/update request payload. The package and charge lists
// are the sole source of truth for a (re)calculation; previously stored
// derived values are never merged in.
type Input struct {
	CustomerID   *uuid.UUID        `json:"customer_id"`
	Reference    string            `json:"reference"`
	Mode         pricing.Mode      `json:"mode" validate:"required,oneof=courier cargo sea"`
	ActualWeight float64           `json:"actual_weight" validate:"required,gt=0"`
	Packages     []pricing.Package `json:"packages"`
	Charges      []pricing.Charge  `json:"charges" validate:"required,min=1,dive"`
	ExchangeRate pricing.Flex      `json:"exchange_rate"`
	Notes        *string           `json:"notes"`
}

// Service orchestrates validation, pricing and persistence for quotations.
type Service struct {
	Store    Store
	Validate *validator.Validate
}

// Create validates and prices the input, then persists the quotation with
// status draft.
func (s *Service) Create(ctx context.Context, in Input) (*Quotation, error) {
	res, err := s.price(ctx, in)
	if err != nil {
		return nil, err
	}
	q := buildQuotation(in, res)
	q.ID = uuid.New()
	q.Status = StatusDraft
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now
	if err := s.Store.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Update reprices the quotation from the full request payload and replaces
// the stored derived data. The quotation status is left untouched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Quotation, error) {
	res, err := s.price(ctx, in)
	if err != nil {
		return nil, err
	}
	q := buildQuotation(in, res)
	q.ID = id
	q.UpdatedAt = time.Now().UTC()
	if err := s.Store.Update(ctx, q); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFound("quotation not found")
		}
		return nil, err
	}
	return s.Store.Get(ctx, id)
}

// Get loads one quotation with its packages and charges.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Quotation, error) {
	q, err := s.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFound("quotation not found")
		}
		return nil, err
	}
	return q, nil
}

// List returns a page of quotations plus the total row count.
func (s *Service) List(ctx context.Context, p ListParams) ([]Quotation, int64, error) {
	if p.Status != "" && !p.Status.Valid() {
		return nil, 0, common.NewValidationError("unknown status filter", nil)
	}
	if p.Mode != "" && !p.Mode.Valid() {
		return nil, 0, common.NewValidationError("unknown mode filter", nil)
	}
	return s.Store.List(ctx, p)
}

// Transition moves the quotation to the next lifecycle state without
// touching any pricing field.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, next Status) (*Quotation, error) {
	if !next.Valid() {
		return nil, common.NewValidationError("unknown status", nil)
	}
	q, err := s.Store.Transition(ctx, id, next)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, common.NewNotFound("quotation not found")
		case errors.Is(err, ErrInvalidTransition):
			return nil, common.NewConflict("INVALID_TRANSITION", "status transition not allowed")
		}
		return nil, err
	}
	return q, nil
}

func (s *Service) price(_ context.Context, in Input) (pricing.Result, error) {
	if s.Validate != nil {
		if err := s.Validate.Struct(in); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				details := make(map[string]string, len(verrs))
				for _, fe := range verrs {
					details[fe.Field()] = fe.Tag()
				}
				return pricing.Result{}, common.NewValidationError("invalid quotation payload", details)
			}
			return pricing.Result{}, err
		}
	}
	res, err := pricing.Calculate(pricing.Input{
		Mode:         in.Mode,
		ActualWeight: in.ActualWeight,
		Packages:     in.Packages,
		Charges:      in.Charges,
		ExchangeRate: in.ExchangeRate,
	})
	if err != nil {
		obs.ObserveQuotationPriced(string(in.Mode), "error")
		switch {
		case errors.Is(err, pricing.ErrExchangeRateRequired):
			return pricing.Result{}, common.NewAppError("EXCHANGE_RATE_REQUIRED", "exchange_rate is required for foreign currency charges", http.StatusBadRequest, err)
		case errors.Is(err, pricing.ErrUnknownMode):
			return pricing.Result{}, common.NewValidationError("unknown shipment mode", nil)
		}
		return pricing.Result{}, err
	}
	obs.ObserveQuotationPriced(string(in.Mode), "ok")
	return res, nil
}

// buildQuotation maps the request payload and pricing result onto the
// persistence model.
func buildQuotation(in Input, res pricing.Result) *Quotation {
	q := &Quotation{
		CustomerID: in.CustomerID,
		Reference:  in.Reference,
		Mode:       in.Mode,
		Notes:      in.Notes,

		ActualWeight:      in.ActualWeight,
		VolumeWeight:      res.VolumeWeight,
		CBM:               res.CBM,
		ChargeableWeight:  res.ChargeableWeight,
		VolumetricGoverns: res.VolumetricGoverns,

		FreightSubtotal:     res.FreightSubtotal.InexactFloat64(),
		CCFAmount:           res.CCFAmount.InexactFloat64(),
		TotalFreight:        res.TotalFreight.InexactFloat64(),
		OriginSubtotal:      res.OriginSubtotal.InexactFloat64(),
		DestinationSubtotal: res.DestinationSubtotal.InexactFloat64(),
		ClearanceSubtotal:   res.ClearanceSubtotal.InexactFloat64(),
		Total:               res.Total.InexactFloat64(),
		GSTAmount:           res.GSTAmount.InexactFloat64(),
		FinalTotal:          res.FinalTotal.InexactFloat64(),
	}
	if in.ExchangeRate.Valid {
		v := in.ExchangeRate.Float()
		q.ExchangeRate = &v
	}
	q.Packages = make([]PackageRow, 0, len(in.Packages))
	for _, p := range in.Packages {
		q.Packages = append(q.Packages, PackageRow{
			ID:       uuid.New(),
			Length:   p.Length.Float(),
			Width:    p.Width.Float(),
			Height:   p.Height.Float(),
			SameSize: p.SameSize.Float(),
		})
	}
	q.Charges = make([]ChargeRow, 0, len(res.Charges))
	for _, c := range res.Charges {
		row := ChargeRow{
			ID:             uuid.New(),
			Name:           c.Name,
			Type:           c.Type,
			Currency:       c.CurrencyOrBase(),
			ComputedAmount: c.ComputedAmount.InexactFloat64(),
			WeightUsed:     c.WeightUsed,
			Synthetic:      c.Synthetic,
		}
		if c.Rate.Valid {
			v := c.Rate.Float()
			row.RatePerWeight = &v
		}
		if c.Amount.Valid {
			v := c.Amount.Float()
			row.FlatAmount = &v
		}
		q.Charges = append(q.Charges, row)
	}
	return q
}
