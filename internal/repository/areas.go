package repository

import (
	"context"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

func (r *Repository) GetAllAreas(ctx context.Context) ([]*domain.Area, error) {
	query := `
		SELECT id, parent_id, code, name, level, is_active, created_at, version FROM areas ORDER BY level, id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	areas := make([]*domain.Area, 0)
	for rows.Next() {
		a := &domain.Area{}
		dst := []any{&a.ID, &a.ParentID, &a.Code, &a.Name, &a.Level, &a.IsActive, &a.CreatedAt, &a.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return areas, nil
}

func (r *Repository) GetAreaByID(ctx context.Context, id int64) (*domain.Area, error) {
	query := `
		SELECT parent_id, code, name, level, is_active, created_at, version FROM areas WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	a := &domain.Area{
		ID: id,
	}

	dst := []any{&a.ParentID, &a.Code, &a.Name, &a.Level, &a.IsActive, &a.CreatedAt, &a.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return a, nil
}

func (r *Repository) CreateArea(ctx context.Context, a *domain.Area) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO areas (parent_id, code, name, level, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	args := []any{a.ParentID, a.Code, a.Name, a.Level, a.IsActive}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.CreatedAt, &a.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateArea(ctx context.Context, a *domain.Area) error {
	query := `
		UPDATE areas
		SET
			parent_id = $1,
			code = $2,
			name = $3,
			level = $4,
			is_active = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING created_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{a.ParentID, a.Code, a.Name, a.Level, a.IsActive, a.ID, a.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&a.CreatedAt, &a.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteArea(ctx context.Context, id int64) error {
	query := `
		DELETE FROM areas WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
