package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres agent store.
type Repo struct {
	Pool *pgxpool.Pool
}

const agentColumns = `id, name, email, phone, country, service_mode, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, a *Agent) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO agents (id, name, email, phone, country, service_mode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Name, a.Email, a.Phone, a.Country, a.ServiceMode, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert agent: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, a *Agent) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE agents
		SET name = $2, email = $3, phone = $4, country = $5, service_mode = $6, updated_at = $7
		WHERE id = $1`,
		a.ID, a.Name, a.Email, a.Phone, a.Country, a.ServiceMode, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update agent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (*Agent, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = $1`, id)
	a, err := scanAgent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get agent: %w", err)
	}
	return a, nil
}

func (r *Repo) List(ctx context.Context, p ListParams) ([]Agent, int64, error) {
	var total int64
	err := r.Pool.QueryRow(ctx, `
		SELECT count(*) FROM agents WHERE ($1 = '' OR country = $1)`, p.Country,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count agents: %w", err)
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT `+agentColumns+` FROM agents
		WHERE ($1 = '' OR country = $1)
		ORDER BY name
		LIMIT $2 OFFSET $3`, p.Country, p.Limit, p.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	out := make([]Agent, 0, p.Limit)
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan agent: %w", err)
		}
		out = append(out, *a)
	}
	return out, total, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAgent(row pgx.Row) (*Agent, error) {
	var a Agent
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Country, &a.ServiceMode, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
