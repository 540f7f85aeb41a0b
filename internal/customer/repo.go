package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres customer store.
type Repo struct {
	Pool *pgxpool.Pool
}

const customerColumns = `id, name, email, phone, gstin, address, kyc_status, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, c *Customer) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO customers (id, name, email, phone, gstin, address, kyc_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Name, c.Email, c.Phone, c.GSTIN, c.Address, c.KYCStatus, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return mapPGError(err, "insert customer")
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, c *Customer) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE customers
		SET name = $2, email = $3, phone = $4, gstin = $5, address = $6, kyc_status = $7, updated_at = $8
		WHERE id = $1`,
		c.ID, c.Name, c.Email, c.Phone, c.GSTIN, c.Address, c.KYCStatus, c.UpdatedAt,
	)
	if err != nil {
		return mapPGError(err, "update customer")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r *Repo) List(ctx context.Context, p ListParams) ([]Customer, int64, error) {
	search := "%" + p.Search + "%"

	var total int64
	err := r.Pool.QueryRow(ctx, `
		SELECT count(*) FROM customers
		WHERE ($1 = '%%' OR name ILIKE $1 OR email ILIKE $1)`, search,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE ($1 = '%%' OR name ILIKE $1 OR email ILIKE $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, search, p.Limit, p.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	out := make([]Customer, 0, p.Limit)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.GSTIN,
		&c.Address, &c.KYCStatus, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func mapPGError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}
