package agent

import (
	"context"
	"errors"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-freight/internal/common"
)

// ErrNotFound is returned by stores when an agent does not exist.
var ErrNotFound = errors.New("agent not found")

// Agent is an overseas or clearance partner handling shipments at one end.
type Agent struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Country     string    `json:"country"`
	ServiceMode string    `json:"service_mode"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListParams struct {
	Country string
	Limit   int32
	Offset  int32
}

type Store interface {
	Create(ctx context.Context, a *Agent) error
	Update(ctx context.Context, a *Agent) error
	Get(ctx context.Context, id uuid.UUID) (*Agent, error)
	List(ctx context.Context, p ListParams) ([]Agent, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Input struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
	Country     string `json:"country" validate:"required,len=2"`
	ServiceMode string `json:"service_mode" validate:"required,oneof=air sea both"`
}

type Service struct {
	Store    Store
	Validate *validator.Validate
}

func (s *Service) Create(ctx context.Context, in Input) (*Agent, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	a := &Agent{
		ID:          uuid.New(),
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Country:     in.Country,
		ServiceMode: in.ServiceMode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Agent, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	a := &Agent{
		ID:          id,
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Country:     in.Country,
		ServiceMode: in.ServiceMode,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.Store.Update(ctx, a); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFound("agent not found")
		}
		return nil, err
	}
	return s.Store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Agent, error) {
	a, err := s.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFound("agent not found")
		}
		return nil, err
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, p ListParams) ([]Agent, int64, error) {
	return s.Store.List(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return common.NewNotFound("agent not found")
		}
		return err
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
			return common.NewValidationError("invalid agent payload", details)
		}
		return err
	}
	return nil
}
