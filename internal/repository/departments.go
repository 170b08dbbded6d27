package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

// pgUndefinedFunction là mã lỗi PostgreSQL 42883 (undefined_function).
const pgUndefinedFunction = "42883"

const departmentColumns = "id, parent_id, code, name, level, path, is_active, created_at, version"

func scanDepartments(rows *sql.Rows) ([]domain.Department, error) {
	departments := make([]domain.Department, 0)
	for rows.Next() {
		d := domain.Department{}
		dst := []any{&d.ID, &d.ParentID, &d.Code, &d.Name, &d.Level, &d.Path, &d.IsActive, &d.CreatedAt, &d.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *Repository) GetDepartmentByID(ctx context.Context, id int64) (*domain.Department, error) {
	query := `
		SELECT parent_id, code, name, level, path, is_active, created_at, version
		FROM departments WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	d := &domain.Department{
		ID: id,
	}

	dst := []any{&d.ParentID, &d.Code, &d.Name, &d.Level, &d.Path, &d.IsActive, &d.CreatedAt, &d.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return d, nil
}

func (r *Repository) ListAllDepartments(ctx context.Context) ([]domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments ORDER BY path`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDepartments(rows)
}

// ListDepartmentsByPathPrefix quét theo tiền tố path, một lần đi index duy
// nhất trên cột path.
func (r *Repository) ListDepartmentsByPathPrefix(ctx context.Context, prefix string) ([]domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE path LIKE $1 || '%' ORDER BY path`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDepartments(rows)
}

// ListDepartmentScope gọi hàm phạm vi phía database. Database chưa cài hàm
// thì trả về domain.ErrScopeFnUnavailable để caller tự tính.
func (r *Repository) ListDepartmentScope(ctx context.Context, departmentID int64, level int32) ([]domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM fn_department_scope($1, $2)`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, departmentID, level)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedFunction {
			return nil, fmt.Errorf("%w: %s", domain.ErrScopeFnUnavailable, pgErr.Message)
		}
		return nil, err
	}
	defer rows.Close()

	return scanDepartments(rows)
}

func (r *Repository) GetDepartmentsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Department, error) {
	result := make(map[int64]*domain.Department, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + departmentColumns + ` FROM departments WHERE id IN (` + placeholders(1, len(ids)) + `)`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departments, err := scanDepartments(rows)
	if err != nil {
		return nil, err
	}

	for i := range departments {
		result[departments[i].ID] = &departments[i]
	}
	return result, nil
}

func (r *Repository) CreateDepartment(ctx context.Context, d *domain.Department) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO departments (parent_id, code, name, level, path, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	args := []any{d.ParentID, d.Code, d.Name, d.Level, d.Path, d.IsActive}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&d.ID, &d.CreatedAt, &d.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateDepartment(ctx context.Context, d *domain.Department) error {
	query := `
		UPDATE departments
		SET
			parent_id = $1,
			code = $2,
			name = $3,
			level = $4,
			path = $5,
			is_active = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING created_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{d.ParentID, d.Code, d.Name, d.Level, d.Path, d.IsActive, d.ID, d.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&d.CreatedAt, &d.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteDepartment(ctx context.Context, id int64) error {
	query := `
		DELETE FROM departments WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
