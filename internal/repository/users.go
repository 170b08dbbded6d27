package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
	"github.com/qltt-vn/market-portal/backend/internal/scope"
)

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT username, password_hash, full_name, email, phone, status, department_id, created_at, version
		FROM users WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	user := &domain.User{
		ID: id,
	}

	dst := []any{&user.Username, &user.PasswordHash, &user.FullName, &user.Email, &user.Phone, &user.Status, &user.DepartmentID, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT id, password_hash, full_name, email, phone, status, department_id, created_at, version
		FROM users WHERE username = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	user := &domain.User{
		Username: username,
	}

	dst := []any{&user.ID, &user.PasswordHash, &user.FullName, &user.Email, &user.Phone, &user.Status, &user.DepartmentID, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO users (username, password_hash, full_name, email, phone, status, department_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`

	args := []any{user.Username, user.PasswordHash, user.FullName, user.Email, user.Phone, user.Status, user.DepartmentID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET
			password_hash = $1,
			full_name = $2,
			email = $3,
			phone = $4,
			status = $5,
			department_id = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING username, created_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{user.PasswordHash, user.FullName, user.Email, user.Phone, user.Status, user.DepartmentID, user.ID, user.Version}
	dst := []any{&user.Username, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	query := `
		DELETE FROM users WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) CheckEmailIfExists(ctx context.Context, email string) (bool, error) {
	isExists := false

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}

// SelectUsers chạy truy vấn danh sách đã được lister phân giải. SortColumn
// đã qua whitelist ở tầng trên nên ghép thẳng vào ORDER BY được.
func (r *Repository) SelectUsers(ctx context.Context, sel scope.UserSelection) ([]*domain.User, int64, error) {
	query := `
		SELECT id, username, full_name, email, phone, status, department_id, created_at, version, COUNT(*) OVER() AS total
		FROM users
	`

	conds := make([]string, 0, 6)
	args := make([]any, 0, 8)

	if sel.Status != nil {
		args = append(args, *sel.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if sel.Query != "" {
		args = append(args, "%"+sel.Query+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(username ILIKE $%d OR full_name ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}
	if len(sel.UserIDs) > 0 {
		conds = append(conds, fmt.Sprintf("id IN (%s)", placeholders(len(args)+1, len(sel.UserIDs))))
		args = append(args, int64Args(sel.UserIDs)...)
	}
	if len(sel.DepartmentIDs) > 0 {
		conds = append(conds, fmt.Sprintf("department_id IN (%s)", placeholders(len(args)+1, len(sel.DepartmentIDs))))
		args = append(args, int64Args(sel.DepartmentIDs)...)
	}
	if sel.DepartmentID != nil {
		args = append(args, *sel.DepartmentID)
		conds = append(conds, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if sel.ViewerID != nil {
		args = append(args, *sel.ViewerID)
		conds = append(conds, fmt.Sprintf("id = $%d", len(args)))
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	direction := "ASC"
	if sel.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s OFFSET $%d LIMIT $%d", sel.SortColumn, direction, len(args)+1, len(args)+2)
	args = append(args, sel.Offset, sel.Limit)

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	var total int64
	for rows.Next() {
		user := &domain.User{}
		dst := []any{&user.ID, &user.Username, &user.FullName, &user.Email, &user.Phone, &user.Status, &user.DepartmentID, &user.CreatedAt, &user.Version, &total}
		if err := rows.Scan(dst...); err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *Repository) ListPermissionCodesByUserID(ctx context.Context, userID int64) ([]string, error) {
	query := `
		SELECT DISTINCT rp.code
		FROM role_permissions rp
		JOIN user_roles ur ON ur.role_id = rp.role_id
		WHERE ur.user_id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make([]string, 0)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return codes, nil
}
