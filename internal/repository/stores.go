package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

// StoreSelection là điều kiện lọc sổ đăng ký cơ sở kinh doanh. DepartmentIDs
// do resolver phạm vi cấp, rỗng nghĩa là không giới hạn (super admin).
type StoreSelection struct {
	Query         string
	AreaID        *int64
	DepartmentIDs []int64
	ActiveOnly    bool
	Offset        int
	Limit         int
}

const storeColumns = "id, code, name, owner_name, tax_code, phone, address, area_id, department_id, is_active, created_at, version"

func (r *Repository) SelectStores(ctx context.Context, sel StoreSelection) ([]*domain.Store, int64, error) {
	query := `
		SELECT ` + storeColumns + `, COUNT(*) OVER() AS total
		FROM stores
	`

	conds := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if sel.Query != "" {
		args = append(args, "%"+sel.Query+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR owner_name ILIKE $%d OR tax_code ILIKE $%d)", n, n, n))
	}
	if sel.AreaID != nil {
		args = append(args, *sel.AreaID)
		conds = append(conds, fmt.Sprintf("area_id = $%d", len(args)))
	}
	if len(sel.DepartmentIDs) > 0 {
		conds = append(conds, fmt.Sprintf("department_id IN (%s)", placeholders(len(args)+1, len(sel.DepartmentIDs))))
		args = append(args, int64Args(sel.DepartmentIDs)...)
	}
	if sel.ActiveOnly {
		conds = append(conds, "is_active = TRUE")
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC OFFSET $%d LIMIT $%d", len(args)+1, len(args)+2)
	args = append(args, sel.Offset, sel.Limit)

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	stores := make([]*domain.Store, 0)
	var total int64
	for rows.Next() {
		s := &domain.Store{}
		dst := []any{&s.ID, &s.Code, &s.Name, &s.OwnerName, &s.TaxCode, &s.Phone, &s.Address, &s.AreaID, &s.DepartmentID, &s.IsActive, &s.CreatedAt, &s.Version, &total}
		if err := rows.Scan(dst...); err != nil {
			return nil, 0, err
		}
		stores = append(stores, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return stores, total, nil
}

func (r *Repository) GetStoreByID(ctx context.Context, id int64) (*domain.Store, error) {
	query := `
		SELECT code, name, owner_name, tax_code, phone, address, area_id, department_id, is_active, created_at, version
		FROM stores WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	s := &domain.Store{
		ID: id,
	}

	dst := []any{&s.Code, &s.Name, &s.OwnerName, &s.TaxCode, &s.Phone, &s.Address, &s.AreaID, &s.DepartmentID, &s.IsActive, &s.CreatedAt, &s.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return s, nil
}

func (r *Repository) CreateStore(ctx context.Context, s *domain.Store) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO stores (code, name, owner_name, tax_code, phone, address, area_id, department_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version
	`

	args := []any{s.Code, s.Name, s.OwnerName, s.TaxCode, s.Phone, s.Address, s.AreaID, s.DepartmentID, s.IsActive}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateStore(ctx context.Context, s *domain.Store) error {
	query := `
		UPDATE stores
		SET
			name = $1,
			owner_name = $2,
			tax_code = $3,
			phone = $4,
			address = $5,
			area_id = $6,
			department_id = $7,
			is_active = $8,
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING code, created_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{s.Name, s.OwnerName, s.TaxCode, s.Phone, s.Address, s.AreaID, s.DepartmentID, s.IsActive, s.ID, s.Version}
	dst := []any{&s.Code, &s.CreatedAt, &s.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteStore(ctx context.Context, id int64) error {
	query := `
		DELETE FROM stores WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
