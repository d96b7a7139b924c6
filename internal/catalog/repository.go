package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("product not found")

type Repository interface {
	Get(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, req ListProductsRequest) ([]Product, int, error)
	Create(ctx context.Context, p Product) (int64, error)
	Update(ctx context.Context, id int64, p Product) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Variants are stored as a jsonb document: the ordered variant list is an
// atomic value of the product, not a join target.
func marshalVariants(variants []Variant) (string, error) {
	b, err := json.Marshal(variants)
	if err != nil {
		return "", fmt.Errorf("catalog: marshal variants: %w", err)
	}
	return string(b), nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var variants []byte
	if err := row.Scan(&p.ID, &p.Name, &variants, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(variants, &p.Variants); err != nil {
		return nil, fmt.Errorf("catalog: unmarshal variants: %w", err)
	}
	return &p, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Product, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT id, name, variants, created_at, updated_at FROM products WHERE id = $1", id)
	return scanProduct(row)
}

func (r *repository) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	where := ""
	var args []interface{}
	if req.Search != nil && *req.Search != "" {
		where = "WHERE name ILIKE $1"
		args = append(args, "%"+*req.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: count: %w", err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		"SELECT id, name, variants, created_at, updated_at FROM products %s ORDER BY name LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		var variants []byte
		if err := rows.Scan(&p.ID, &p.Name, &variants, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(variants, &p.Variants); err != nil {
			return nil, 0, fmt.Errorf("catalog: unmarshal variants: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Product) (int64, error) {
	variants, err := marshalVariants(p.Variants)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.pool.QueryRow(ctx, `
		INSERT INTO products (name, variants, created_at, updated_at)
		VALUES ($1, $2::jsonb, NOW(), NOW())
		RETURNING id
	`, p.Name, variants).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("catalog: create: %w", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, p Product) error {
	variants, err := marshalVariants(p.Variants)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET name = $1, variants = $2::jsonb, updated_at = NOW() WHERE id = $3
	`, p.Name, variants, id)
	if err != nil {
		return fmt.Errorf("catalog: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("catalog: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
