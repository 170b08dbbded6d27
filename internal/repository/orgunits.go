package repository

import (
	"context"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

func (r *Repository) GetAllOrgUnits(ctx context.Context) ([]*domain.OrgUnit, error) {
	query := `
		SELECT id, code, name, address, is_active, created_at, version FROM org_units ORDER BY id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := make([]*domain.OrgUnit, 0)
	for rows.Next() {
		unit := &domain.OrgUnit{}
		dst := []any{&unit.ID, &unit.Code, &unit.Name, &unit.Address, &unit.IsActive, &unit.CreatedAt, &unit.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return units, nil
}

func (r *Repository) GetOrgUnitByID(ctx context.Context, id int64) (*domain.OrgUnit, error) {
	query := `
		SELECT code, name, address, is_active, created_at, version FROM org_units WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	unit := &domain.OrgUnit{
		ID: id,
	}

	dst := []any{&unit.Code, &unit.Name, &unit.Address, &unit.IsActive, &unit.CreatedAt, &unit.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return unit, nil
}

func (r *Repository) CreateOrgUnit(ctx context.Context, unit *domain.OrgUnit) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO org_units (code, name, address, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	args := []any{unit.Code, unit.Name, unit.Address, unit.IsActive}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&unit.ID, &unit.CreatedAt, &unit.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateOrgUnit(ctx context.Context, unit *domain.OrgUnit) error {
	query := `
		UPDATE org_units
		SET
			code = $1,
			name = $2,
			address = $3,
			is_active = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING created_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{unit.Code, unit.Name, unit.Address, unit.IsActive, unit.ID, unit.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&unit.CreatedAt, &unit.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteOrgUnit(ctx context.Context, id int64) error {
	query := `
		DELETE FROM org_units WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
