package quotation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-freight/internal/pricing"
)

// Repo is the Postgres-backed Store. Every write runs inside a single
// transaction: the parent row and its package/charge child rows commit or
// roll back together, and updates take a row lock so concurrent edits to the
// same quotation serialize instead of interleaving.
type Repo struct {
	Pool *pgxpool.Pool
}

const quotationColumns = `id, customer_id, reference, mode, status,
	actual_weight, volume_weight, cbm, chargeable_weight, volumetric_governs, exchange_rate,
	freight_subtotal, ccf_amount, total_freight, origin_subtotal, destination_subtotal,
	clearance_subtotal, total, gst_amount, final_total, notes, created_at, updated_at`

// Create inserts the quotation and its children atomically.
func (r *Repo) Create(ctx context.Context, q *Quotation) error {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO quotations (`+quotationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`,
		q.ID, q.CustomerID, q.Reference, q.Mode, q.Status,
		q.ActualWeight, q.VolumeWeight, q.CBM, q.ChargeableWeight, q.VolumetricGoverns, q.ExchangeRate,
		q.FreightSubtotal, q.CCFAmount, q.TotalFreight, q.OriginSubtotal, q.DestinationSubtotal,
		q.ClearanceSubtotal, q.Total, q.GSTAmount, q.FinalTotal, q.Notes, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert quotation: %w", err)
	}
	if err := insertChildren(ctx, tx, q); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update replaces the quotation's pricing fields and children, leaving the
// status column untouched. Returns ErrNotFound when the row does not exist.
func (r *Repo) Update(ctx context.Context, q *Quotation) error {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var current Status
	err = tx.QueryRow(ctx, `SELECT status FROM quotations WHERE id = $1 FOR UPDATE`, q.ID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	_, err = tx.Exec(ctx, `UPDATE quotations SET
			customer_id = $2, reference = $3, mode = $4,
			actual_weight = $5, volume_weight = $6, cbm = $7, chargeable_weight = $8,
			volumetric_governs = $9, exchange_rate = $10,
			freight_subtotal = $11, ccf_amount = $12, total_freight = $13,
			origin_subtotal = $14, destination_subtotal = $15, clearance_subtotal = $16,
			total = $17, gst_amount = $18, final_total = $19, notes = $20, updated_at = $21
		WHERE id = $1`,
		q.ID, q.CustomerID, q.Reference, q.Mode,
		q.ActualWeight, q.VolumeWeight, q.CBM, q.ChargeableWeight,
		q.VolumetricGoverns, q.ExchangeRate,
		q.FreightSubtotal, q.CCFAmount, q.TotalFreight,
		q.OriginSubtotal, q.DestinationSubtotal, q.ClearanceSubtotal,
		q.Total, q.GSTAmount, q.FinalTotal, q.Notes, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update quotation: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM quotation_packages WHERE quotation_id = $1`, q.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM quotation_charges WHERE quotation_id = $1`, q.ID); err != nil {
		return err
	}
	if err := insertChildren(ctx, tx, q); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertChildren(ctx context.Context, tx pgx.Tx, q *Quotation) error {
	for i, p := range q.Packages {
		_, err := tx.Exec(ctx, `INSERT INTO quotation_packages
				(id, quotation_id, length, width, height, same_size, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			p.ID, q.ID, p.Length, p.Width, p.Height, p.SameSize, i)
		if err != nil {
			return fmt.Errorf("insert quotation package: %w", err)
		}
	}
	for i, c := range q.Charges {
		_, err := tx.Exec(ctx, `INSERT INTO quotation_charges
				(id, quotation_id, charge_name, charge_type, rate_per_weight, flat_amount,
				 currency, computed_amount, weight_used, synthetic, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			c.ID, q.ID, c.Name, c.Type, c.RatePerWeight, c.FlatAmount,
			c.Currency, c.ComputedAmount, c.WeightUsed, c.Synthetic, i)
		if err != nil {
			return fmt.Errorf("insert quotation charge: %w", err)
		}
	}
	return nil
}

// Get loads one quotation with children.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (*Quotation, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id)
	q, err := scanQuotation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadChildren(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *Repo) loadChildren(ctx context.Context, q *Quotation) error {
	rows, err := r.Pool.Query(ctx, `SELECT id, length, width, height, same_size
		FROM quotation_packages WHERE quotation_id = $1 ORDER BY position`, q.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p PackageRow
		if err := rows.Scan(&p.ID, &p.Length, &p.Width, &p.Height, &p.SameSize); err != nil {
			return err
		}
		q.Packages = append(q.Packages, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.Pool.Query(ctx, `SELECT id, charge_name, charge_type, rate_per_weight, flat_amount,
			currency, computed_amount, weight_used, synthetic
		FROM quotation_charges WHERE quotation_id = $1 ORDER BY position`, q.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var c ChargeRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.RatePerWeight, &c.FlatAmount,
			&c.Currency, &c.ComputedAmount, &c.WeightUsed, &c.Synthetic); err != nil {
			return err
		}
		q.Charges = append(q.Charges, c)
	}
	return rows.Err()
}

// List returns a filtered page of quotations without children, plus the
// total row count for the filter.
func (r *Repo) List(ctx context.Context, p ListParams) ([]Quotation, int64, error) {
	where := ` WHERE ($1 = '' OR status = $1) AND ($2 = '' OR mode = $2)`
	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM quotations`+where,
		string(p.Status), string(p.Mode)).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.Pool.Query(ctx, `SELECT `+quotationColumns+` FROM quotations`+where+`
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		string(p.Status), string(p.Mode), p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Quotation, 0, p.Limit)
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *q)
	}
	return out, total, rows.Err()
}

// Transition applies a lifecycle move under a row lock so concurrent
// transitions cannot race.
func (r *Repo) Transition(ctx context.Context, id uuid.UUID, next Status) (*Quotation, error) {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var current Status
	err = tx.QueryRow(ctx, `SELECT status FROM quotations WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !current.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}
	if _, err := tx.Exec(ctx, `UPDATE quotations SET status = $2, updated_at = now() WHERE id = $1`, id, next); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	var mode, status string
	err := row.Scan(&q.ID, &q.CustomerID, &q.Reference, &mode, &status,
		&q.ActualWeight, &q.VolumeWeight, &q.CBM, &q.ChargeableWeight, &q.VolumetricGoverns, &q.ExchangeRate,
		&q.FreightSubtotal, &q.CCFAmount, &q.TotalFreight, &q.OriginSubtotal, &q.DestinationSubtotal,
		&q.ClearanceSubtotal, &q.Total, &q.GSTAmount, &q.FinalTotal, &q.Notes, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	q.Mode = pricing.Mode(mode)
	q.Status = Status(status)
	return &q, nil
}
