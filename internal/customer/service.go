package customer

import (
	"context"
	"errors"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-freight/internal/common"
)

var (
	// ErrNotFound is returned by stores when a customer does not exist.
	ErrNotFound = errors.New("customer not found")
	// ErrEmailTaken is returned when the email unique constraint fires.
	ErrEmailTaken = errors.New("email already registered")
)

// ListParams pages a customer listing with an optional free-text search over
// name and email.
type ListParams struct {
	Search string
	Limit  int32
	Offset int32
}

// Store persists customers.
type Store interface {
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	Get(ctx context.Context, id uuid.UUID) (*Customer, error)
	List(ctx context.Context, p ListParams) ([]Customer, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Input is the create/update request payload.
type Input struct {
	Name      string    `json:"name" validate:"required,min=2,max=120"`
	Email     string    `json:"email" validate:"required,email"`
	Phone     string    `json:"phone" validate:"omitempty,max=20"`
	GSTIN     string    `json:"gstin" validate:"omitempty,len=15"`
	Address   string    `json:"address" validate:"omitempty,max=500"`
	KYCStatus KYCStatus `json:"kyc_status" validate:"omitempty,oneof=pending verified rejected"`
}

// Service wraps validation and persistence for customers.
type Service struct {
	Store    Store
	Validate *validator.Validate
}

func (s *Service) Create(ctx context.Context, in Input) (*Customer, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &Customer{
		ID:        uuid.New(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		GSTIN:     in.GSTIN,
		Address:   in.Address,
		KYCStatus: in.KYCStatus,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.KYCStatus == "" {
		c.KYCStatus = KYCPending
	}
	if err := s.Store.Create(ctx, c); err != nil {
		return nil, mapStoreErr(err)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Customer, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	c := &Customer{
		ID:        id,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		GSTIN:     in.GSTIN,
		Address:   in.Address,
		KYCStatus: in.KYCStatus,
		UpdatedAt: time.Now().UTC(),
	}
	if c.KYCStatus == "" {
		c.KYCStatus = KYCPending
	}
	if err := s.Store.Update(ctx, c); err != nil {
		return nil, mapStoreErr(err)
	}
	return s.Store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	c, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, p ListParams) ([]Customer, int64, error) {
	return s.Store.List(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	return nil
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
			return common.NewValidationError("invalid customer payload", details)
		}
		return err
	}
	return nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return common.NewNotFound("customer not found")
	case errors.Is(err, ErrEmailTaken):
		return common.NewConflict("EMAIL_EXISTS", "email already registered")
	}
	return err
}
