package customer_test

import (
	"context"
	"strings"
	"testing"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-freight/internal/common"
	"github.com/noah-isme/backend-freight/internal/customer"
)

type stubStore struct {
	items map[uuid.UUID]*customer.Customer
}

func newStubStore() *stubStore {
	return &stubStore{items: map[uuid.UUID]*customer.Customer{}}
}

func (s *stubStore) Create(_ context.Context, c *customer.Customer) error {
	for _, existing := range s.items {
		if existing.Email == c.Email {
			return customer.ErrEmailTaken
		}
	}
	cp := *c
	s.items[c.ID] = &cp
	return nil
}

func (s *stubStore) Update(_ context.Context, c *customer.Customer) error {
	if _, ok := s.items[c.ID]; !ok {
		return customer.ErrNotFound
	}
	cp := *c
	s.items[c.ID] = &cp
	return nil
}

func (s *stubStore) Get(_ context.Context, id uuid.UUID) (*customer.Customer, error) {
	c, ok := s.items[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *stubStore) List(_ context.Context, p customer.ListParams) ([]customer.Customer, int64, error) {
	out := make([]customer.Customer, 0, len(s.items))
	for _, c := range s.items {
		if p.Search != "" && !strings.Contains(c.Name, p.Search) && !strings.Contains(c.Email, p.Search) {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (s *stubStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.items[id]; !ok {
		return customer.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func newService() *customer.Service {
	return &customer.Service{Store: newStubStore(), Validate: validator.New()}
}

func TestCreateDefaultsKYCPending(t *testing.T) {
	svc := newService()
	c, err := svc.Create(context.Background(), customer.Input{
		Name:  "Acme Exports",
		Email: "billing@acme.example",
	})
	require.NoError(t, err)
	require.Equal(t, customer.KYCPending, c.KYCStatus)
	require.NotEqual(t, uuid.Nil, c.ID)
}

func TestCreateDuplicateEmailConflict(t *testing.T) {
	svc := newService()
	in := customer.Input{Name: "Acme Exports", Email: "billing@acme.example"}
	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), in)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "EMAIL_EXISTS", appErr.Code)
	require.Equal(t, 409, appErr.HTTPStatus)
}

func TestCreateValidation(t *testing.T) {
	svc := newService()
	_, err := svc.Create(context.Background(), customer.Input{Name: "A", Email: "not-an-email"})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestUpdateUnknownCustomer(t *testing.T) {
	svc := newService()
	_, err := svc.Update(context.Background(), uuid.New(), customer.Input{
		Name:  "Acme Exports",
		Email: "billing@acme.example",
	})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestDeleteThenGet(t *testing.T) {
	svc := newService()
	c, err := svc.Create(context.Background(), customer.Input{
		Name:  "Acme Exports",
		Email: "billing@acme.example",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), c.ID))

	_, err = svc.Get(context.Background(), c.ID)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "NOT_FOUND", appErr.Code)
}
