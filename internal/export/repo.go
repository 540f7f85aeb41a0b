package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists export shipments and register rows.
type Store interface {
	CreateShipment(ctx context.Context, sh *Shipment) error
	UpdateShipment(ctx context.Context, sh *Shipment) error
	GetShipment(ctx context.Context, id uuid.UUID) (*Shipment, error)
	ListShipments(ctx context.Context, p ListParams) ([]Shipment, int64, error)
	DeleteShipment(ctx context.Context, id uuid.UUID) error
	BuildRegister(ctx context.Context, period string, builtAt time.Time) error
	GetRegister(ctx context.Context, period string) ([]RegisterRow, error)
}

// Repo is the Postgres export store.
type Repo struct {
	Pool *pgxpool.Pool
}

const shipmentColumns = `id, quotation_id, invoice_no, awb, consignee, destination,
	pieces, weight, declared_value, shipped_at, created_at, updated_at`

func (r *Repo) CreateShipment(ctx context.Context, sh *Shipment) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO export_shipments
			(id, quotation_id, invoice_no, awb, consignee, destination,
			 pieces, weight, declared_value, shipped_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		sh.ID, sh.QuotationID, sh.InvoiceNo, sh.AWB, sh.Consignee, sh.Destination,
		sh.Pieces, sh.Weight, sh.DeclaredValue, sh.ShippedAt, sh.CreatedAt, sh.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert export shipment: %w", err)
	}
	return nil
}

func (r *Repo) UpdateShipment(ctx context.Context, sh *Shipment) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE export_shipments
		SET quotation_id = $2, invoice_no = $3, awb = $4, consignee = $5, destination = $6,
		    pieces = $7, weight = $8, declared_value = $9, shipped_at = $10, updated_at = $11
		WHERE id = $1`,
		sh.ID, sh.QuotationID, sh.InvoiceNo, sh.AWB, sh.Consignee, sh.Destination,
		sh.Pieces, sh.Weight, sh.DeclaredValue, sh.ShippedAt, sh.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update export shipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) GetShipment(ctx context.Context, id uuid.UUID) (*Shipment, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM export_shipments WHERE id = $1`, id)
	sh, err := scanShipment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get export shipment: %w", err)
	}
	return sh, nil
}

func (r *Repo) ListShipments(ctx context.Context, p ListParams) ([]Shipment, int64, error) {
	var total int64
	err := r.Pool.QueryRow(ctx, `
		SELECT count(*) FROM export_shipments
		WHERE ($1 = '' OR destination = $1)
		  AND ($2 = '' OR to_char(shipped_at, 'YYYY-MM') = $2)`,
		p.Destination, p.Period,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count export shipments: %w", err)
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT `+shipmentColumns+` FROM export_shipments
		WHERE ($1 = '' OR destination = $1)
		  AND ($2 = '' OR to_char(shipped_at, 'YYYY-MM') = $2)
		ORDER BY shipped_at DESC
		LIMIT $3 OFFSET $4`,
		p.Destination, p.Period, p.Limit, p.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list export shipments: %w", err)
	}
	defer rows.Close()

	out := make([]Shipment, 0, p.Limit)
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan export shipment: %w", err)
		}
		out = append(out, *sh)
	}
	return out, total, rows.Err()
}

func (r *Repo) DeleteShipment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM export_shipments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete export shipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// BuildRegister rebuilds the register rows for a period from the shipment
// table. Delete and re-aggregate run in one transaction so a concurrent read
// never sees a partially built register.
func (r *Repo) BuildRegister(ctx context.Context, period string, builtAt time.Time) error {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin register build: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM export_registers WHERE period = $1`, period); err != nil {
		return fmt.Errorf("clear register: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO export_registers
			(period, destination, shipments, total_pieces, total_weight, total_declared_value, built_at)
		SELECT $1, destination, count(*), sum(pieces), sum(weight), sum(declared_value), $2
		FROM export_shipments
		WHERE to_char(shipped_at, 'YYYY-MM') = $1
		GROUP BY destination`,
		period, builtAt,
	)
	if err != nil {
		return fmt.Errorf("aggregate register: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *Repo) GetRegister(ctx context.Context, period string) ([]RegisterRow, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT period, destination, shipments, total_pieces, total_weight, total_declared_value, built_at
		FROM export_registers
		WHERE period = $1
		ORDER BY destination`, period,
	)
	if err != nil {
		return nil, fmt.Errorf("get register: %w", err)
	}
	defer rows.Close()

	out := make([]RegisterRow, 0, 16)
	for rows.Next() {
		var row RegisterRow
		err := rows.Scan(
			&row.Period, &row.Destination, &row.Shipments,
			&row.TotalPieces, &row.TotalWeight, &row.TotalDeclaredValue, &row.BuiltAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan register row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func scanShipment(row pgx.Row) (*Shipment, error) {
	var sh Shipment
	err := row.Scan(
		&sh.ID, &sh.QuotationID, &sh.InvoiceNo, &sh.AWB, &sh.Consignee, &sh.Destination,
		&sh.Pieces, &sh.Weight, &sh.DeclaredValue, &sh.ShippedAt, &sh.CreatedAt, &sh.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}
