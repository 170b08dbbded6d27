package repository

import (
	"context"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

func (r *Repository) GetAllCatalogs(ctx context.Context) ([]*domain.Catalog, error) {
	query := `
		SELECT id, code, name, description, is_active, created_at, version FROM catalogs ORDER BY id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	catalogs := make([]*domain.Catalog, 0)
	for rows.Next() {
		c := &domain.Catalog{}
		dst := []any{&c.ID, &c.Code, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		catalogs = append(catalogs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return catalogs, nil
}

func (r *Repository) GetCatalogByID(ctx context.Context, id int64) (*domain.Catalog, error) {
	query := `
		SELECT code, name, description, is_active, created_at, version FROM catalogs WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	c := &domain.Catalog{
		ID: id,
	}

	dst := []any{&c.Code, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return c, nil
}

func (r *Repository) CreateCatalog(ctx context.Context, c *domain.Catalog) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO catalogs (code, name, description, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	args := []any{c.Code, c.Name, c.Description, c.IsActive}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.CreatedAt, &c.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateCatalog(ctx context.Context, c *domain.Catalog) error {
	query := `
		UPDATE catalogs
		SET
			code = $1,
			name = $2,
			description = $3,
			is_active = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING created_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{c.Code, c.Name, c.Description, c.IsActive, c.ID, c.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&c.CreatedAt, &c.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteCatalog(ctx context.Context, id int64) error {
	query := `
		DELETE FROM catalogs WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetCatalogItems(ctx context.Context, catalogID int64) ([]*domain.CatalogItem, error) {
	query := `
		SELECT id, code, name, sort_order, is_active, created_at, version
		FROM catalog_items WHERE catalog_id = $1
		ORDER BY sort_order, id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, catalogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.CatalogItem, 0)
	for rows.Next() {
		item := &domain.CatalogItem{CatalogID: catalogID}
		dst := []any{&item.ID, &item.Code, &item.Name, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Repository) GetCatalogItemByID(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	query := `
		SELECT catalog_id, code, name, sort_order, is_active, created_at, version
		FROM catalog_items WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	item := &domain.CatalogItem{
		ID: id,
	}

	dst := []any{&item.CatalogID, &item.Code, &item.Name, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return item, nil
}

func (r *Repository) CreateCatalogItem(ctx context.Context, item *domain.CatalogItem) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO catalog_items (catalog_id, code, name, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	args := []any{item.CatalogID, item.Code, item.Name, item.SortOrder, item.IsActive}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&item.ID, &item.CreatedAt, &item.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateCatalogItem(ctx context.Context, item *domain.CatalogItem) error {
	query := `
		UPDATE catalog_items
		SET
			code = $1,
			name = $2,
			sort_order = $3,
			is_active = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING created_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{item.Code, item.Name, item.SortOrder, item.IsActive, item.ID, item.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&item.CreatedAt, &item.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteCatalogItem(ctx context.Context, id int64) error {
	query := `
		DELETE FROM catalog_items WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
