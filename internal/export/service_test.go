package export_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-freight/internal/common"
	"github.com/noah-isme/backend-freight/internal/export"
	"github.com/noah-isme/backend-freight/internal/lock"
)

type stubStore struct {
	shipments map[uuid.UUID]*export.Shipment
	registers map[string][]export.RegisterRow
	builds    []string
}

func newStubStore() *stubStore {
	return &stubStore{
		shipments: map[uuid.UUID]*export.Shipment{},
		registers: map[string][]export.RegisterRow{},
	}
}

func (s *stubStore) CreateShipment(_ context.Context, sh *export.Shipment) error {
	cp := *sh
	s.shipments[sh.ID] = &cp
	return nil
}

func (s *stubStore) UpdateShipment(_ context.Context, sh *export.Shipment) error {
	if _, ok := s.shipments[sh.ID]; !ok {
		return export.ErrNotFound
	}
	cp := *sh
	s.shipments[sh.ID] = &cp
	return nil
}

func (s *stubStore) GetShipment(_ context.Context, id uuid.UUID) (*export.Shipment, error) {
	sh, ok := s.shipments[id]
	if !ok {
		return nil, export.ErrNotFound
	}
	cp := *sh
	return &cp, nil
}

func (s *stubStore) ListShipments(_ context.Context, p export.ListParams) ([]export.Shipment, int64, error) {
	out := make([]export.Shipment, 0, len(s.shipments))
	for _, sh := range s.shipments {
		if p.Destination != "" && sh.Destination != p.Destination {
			continue
		}
		if p.Period != "" && sh.ShippedAt.Format("2006-01") != p.Period {
			continue
		}
		out = append(out, *sh)
	}
	return out, int64(len(out)), nil
}

func (s *stubStore) DeleteShipment(_ context.Context, id uuid.UUID) error {
	if _, ok := s.shipments[id]; !ok {
		return export.ErrNotFound
	}
	delete(s.shipments, id)
	return nil
}

func (s *stubStore) BuildRegister(_ context.Context, period string, builtAt time.Time) error {
	s.builds = append(s.builds, period)
	byDest := map[string]*export.RegisterRow{}
	for _, sh := range s.shipments {
		if sh.ShippedAt.Format("2006-01") != period {
			continue
		}
		row, ok := byDest[sh.Destination]
		if !ok {
			row = &export.RegisterRow{Period: period, Destination: sh.Destination, BuiltAt: builtAt}
			byDest[sh.Destination] = row
		}
		row.Shipments++
		row.TotalPieces += int64(sh.Pieces)
		row.TotalWeight += sh.Weight
		row.TotalDeclaredValue += sh.DeclaredValue
	}
	rows := make([]export.RegisterRow, 0, len(byDest))
	for _, row := range byDest {
		rows = append(rows, *row)
	}
	s.registers[period] = rows
	return nil
}

func (s *stubStore) GetRegister(_ context.Context, period string) ([]export.RegisterRow, error) {
	return s.registers[period], nil
}

func newTestService(t *testing.T) (*export.Service, *stubStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := newStubStore()
	return &export.Service{
		Store:    store,
		Validate: validator.New(),
		Locker:   lock.Locker{R: client},
		LockTTL:  time.Minute,
		Log:      zerolog.Nop(),
	}, store
}

func shipmentInput(dest string, shipped time.Time) export.Input {
	return export.Input{
		InvoiceNo:     "INV-1001",
		AWB:           "AWB-775533",
		Consignee:     "Globex LLC",
		Destination:   dest,
		Pieces:        3,
		Weight:        42.5,
		DeclaredValue: 1250,
		ShippedAt:     shipped,
	}
}

func TestCreateShipment(t *testing.T) {
	svc, store := newTestService(t)
	sh, err := svc.CreateShipment(context.Background(), shipmentInput("US", time.Now()))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, sh.ID)
	require.Contains(t, store.shipments, sh.ID)
}

func TestCreateShipmentValidation(t *testing.T) {
	svc, _ := newTestService(t)
	in := shipmentInput("USA", time.Now()) // destination must be a 2-letter code
	_, err := svc.CreateShipment(context.Background(), in)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestBuildRegisterAggregatesPerDestination(t *testing.T) {
	svc, _ := newTestService(t)
	shipped := time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC)
	for _, dest := range []string{"US", "US", "AE"} {
		_, err := svc.CreateShipment(context.Background(), shipmentInput(dest, shipped))
		require.NoError(t, err)
	}

	require.NoError(t, svc.BuildRegister(context.Background(), "2026-07"))

	rows, err := svc.GetRegister(context.Background(), "2026-07")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byDest := map[string]export.RegisterRow{}
	for _, row := range rows {
		byDest[row.Destination] = row
	}
	require.Equal(t, int64(2), byDest["US"].Shipments)
	require.Equal(t, int64(6), byDest["US"].TotalPieces)
	require.Equal(t, 85.0, byDest["US"].TotalWeight)
	require.Equal(t, int64(1), byDest["AE"].Shipments)
}

func TestBuildRegisterRejectsBadPeriod(t *testing.T) {
	svc, store := newTestService(t)
	for _, bad := range []string{"2026-13", "202607", "07-2026", "2026-7"} {
		err := svc.BuildRegister(context.Background(), bad)
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr, bad)
		require.Equal(t, "VALIDATION_ERROR", appErr.Code, bad)
	}
	require.Empty(t, store.builds)
}

func TestRegisterTaskRoundTrip(t *testing.T) {
	svc, store := newTestService(t)
	shipped := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	_, err := svc.CreateShipment(context.Background(), shipmentInput("GB", shipped))
	require.NoError(t, err)

	task, err := export.NewRegisterTask("2026-08")
	require.NoError(t, err)
	require.Equal(t, export.TaskRegister, task.Type())

	require.NoError(t, svc.HandleRegister(context.Background(), task))
	require.Equal(t, []string{"2026-08"}, store.builds)

	_, err = export.NewRegisterTask("august")
	require.Error(t, err)
}
