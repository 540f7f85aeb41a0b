package export

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-freight/internal/common"
	"github.com/noah-isme/backend-freight/internal/lock"
	"github.com/noah-isme/backend-freight/internal/obs"
)

var periodRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidPeriod reports whether s is a YYYY-MM register period.
func ValidPeriod(s string) bool {
	return periodRe.MatchString(s)
}

// ListParams narrows and pages a shipment listing.
type ListParams struct {
	Destination string
	Period      string
	Limit       int32
	Offset      int32
}

// Input is the shipment create/update payload.
type Input struct {
	QuotationID   *uuid.UUID `json:"quotation_id"`
	InvoiceNo     string     `json:"invoice_no" validate:"required,max=50"`
	AWB           string     `json:"awb" validate:"required,max=50"`
	Consignee     string     `json:"consignee" validate:"required,max=200"`
	Destination   string     `json:"destination" validate:"required,len=2"`
	Pieces        int32      `json:"pieces" validate:"required,gt=0"`
	Weight        float64    `json:"weight" validate:"required,gt=0"`
	DeclaredValue float64    `json:"declared_value" validate:"required,gt=0"`
	ShippedAt     time.Time  `json:"shipped_at" validate:"required"`
}

// Service manages export shipments and the monthly register.
type Service struct {
	Store    Store
	Validate *validator.Validate
	Locker   lock.Locker
	LockTTL  time.Duration
	Log      zerolog.Logger
}

func (s *Service) CreateShipment(ctx context.Context, in Input) (*Shipment, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sh := buildShipment(in)
	sh.ID = uuid.New()
	sh.CreatedAt = now
	sh.UpdatedAt = now
	if err := s.Store.CreateShipment(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *Service) UpdateShipment(ctx context.Context, id uuid.UUID, in Input) (*Shipment, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	sh := buildShipment(in)
	sh.ID = id
	sh.UpdatedAt = time.Now().UTC()
	if err := s.Store.UpdateShipment(ctx, sh); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFound("export shipment not found")
		}
		return nil, err
	}
	return s.Store.GetShipment(ctx, id)
}

func (s *Service) GetShipment(ctx context.Context, id uuid.UUID) (*Shipment, error) {
	sh, err := s.Store.GetShipment(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFound("export shipment not found")
		}
		return nil, err
	}
	return sh, nil
}

func (s *Service) ListShipments(ctx context.Context, p ListParams) ([]Shipment, int64, error) {
	if p.Period != "" && !ValidPeriod(p.Period) {
		return nil, 0, common.NewValidationError("period must be YYYY-MM", nil)
	}
	return s.Store.ListShipments(ctx, p)
}

func (s *Service) DeleteShipment(ctx context.Context, id uuid.UUID) error {
	if err := s.Store.DeleteShipment(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return common.NewNotFound("export shipment not found")
		}
		return err
	}
	return nil
}

// BuildRegister rebuilds the register for a period under the distributed
// lock, so two worker replicas never aggregate the same period concurrently.
func (s *Service) BuildRegister(ctx context.Context, period string) error {
	if !ValidPeriod(period) {
		return common.NewValidationError("period must be YYYY-MM", nil)
	}
	err := s.Locker.WithLock(ctx, "lock:export:register:"+period, s.LockTTL, func(ctx context.Context) error {
		if err := s.Store.BuildRegister(ctx, period, time.Now().UTC()); err != nil {
			return fmt.Errorf("build export register %s: %w", period, err)
		}
		s.Log.Info().Str("period", period).Msg("export register built")
		return nil
	})
	if err != nil {
		obs.ObserveExportRegisterBuild("error")
		return err
	}
	obs.ObserveExportRegisterBuild("ok")
	return nil
}

func (s *Service) GetRegister(ctx context.Context, period string) ([]RegisterRow, error) {
	if !ValidPeriod(period) {
		return nil, common.NewValidationError("period must be YYYY-MM", nil)
	}
	return s.Store.GetRegister(ctx, period)
}

func (s *Service) validate(in Input) error {
	if s.Validate == nil {
		return nil
	}
	if err := s.Validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
			return common.NewValidationError("invalid shipment payload", details)
		}
		return err
	}
	return nil
}

func buildShipment(in Input) *Shipment {
	return &Shipment{
		QuotationID:   in.QuotationID,
		InvoiceNo:     in.InvoiceNo,
		AWB:           in.AWB,
		Consignee:     in.Consignee,
		Destination:   in.Destination,
		Pieces:        in.Pieces,
		Weight:        in.Weight,
		DeclaredValue: in.DeclaredValue,
		ShippedAt:     in.ShippedAt.UTC(),
	}
}
