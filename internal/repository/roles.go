package repository

import (
	"context"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

func (r *Repository) CreateRole(ctx context.Context, role *domain.Role) error {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO roles (code, name, description, is_admin, is_super_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`
	args := []any{role.Code, role.Name, role.Description, role.IsAdmin, role.IsSuperAdmin}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&role.ID, &role.CreatedAt, &role.Version); err != nil {
		return err
	}

	for _, code := range role.Permissions {
		query = `
			INSERT INTO role_permissions (role_id, code)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, role.ID, code); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRoleByID(ctx context.Context, id int64) (*domain.Role, error) {
	query := `
		SELECT code, name, description, is_admin, is_super_admin, created_at, version
		FROM roles WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	role := &domain.Role{
		ID: id,
	}

	dst := []any{&role.Code, &role.Name, &role.Description, &role.IsAdmin, &role.IsSuperAdmin, &role.CreatedAt, &role.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	permissions, err := r.listRolePermissions(ctx, id)
	if err != nil {
		return nil, err
	}
	role.Permissions = permissions

	return role, nil
}

func (r *Repository) GetRoleByCode(ctx context.Context, code string) (*domain.Role, error) {
	query := `
		SELECT id, name, description, is_admin, is_super_admin, created_at, version
		FROM roles WHERE code = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	role := &domain.Role{
		Code: code,
	}

	dst := []any{&role.ID, &role.Name, &role.Description, &role.IsAdmin, &role.IsSuperAdmin, &role.CreatedAt, &role.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, code).Scan(dst...); err != nil {
		return nil, err
	}

	return role, nil
}

func (r *Repository) GetAllRoles(ctx context.Context) ([]*domain.Role, error) {
	query := `
		SELECT r.id, r.code, r.name, r.description, r.is_admin, r.is_super_admin, r.created_at, r.version, rp.code
		FROM roles r
		LEFT JOIN role_permissions rp ON rp.role_id = r.id
		ORDER BY r.id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rolesMap := make(map[int64]*domain.Role)
	order := make([]int64, 0)

	for rows.Next() {
		role := &domain.Role{}
		var permission *string
		dst := []any{&role.ID, &role.Code, &role.Name, &role.Description, &role.IsAdmin, &role.IsSuperAdmin, &role.CreatedAt, &role.Version, &permission}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		existing, ok := rolesMap[role.ID]
		if !ok {
			role.Permissions = make([]string, 0)
			rolesMap[role.ID] = role
			order = append(order, role.ID)
			existing = role
		}
		if permission != nil {
			existing.Permissions = append(existing.Permissions, *permission)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	roles := make([]*domain.Role, 0, len(order))
	for _, id := range order {
		roles = append(roles, rolesMap[id])
	}

	return roles, nil
}

func (r *Repository) UpdateRole(ctx context.Context, role *domain.Role) error {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE roles
		SET
			code = $1,
			name = $2,
			description = $3,
			is_admin = $4,
			is_super_admin = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING created_at, version
	`
	args := []any{role.Code, role.Name, role.Description, role.IsAdmin, role.IsSuperAdmin, role.ID, role.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&role.CreatedAt, &role.Version); err != nil {
		return err
	}

	// Thay toàn bộ quyền của vai trò bằng danh sách mới
	if _, err := tx.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, role.ID); err != nil {
		return err
	}
	for _, code := range role.Permissions {
		if _, err := tx.ExecContext(ctx, `INSERT INTO role_permissions (role_id, code) VALUES ($1, $2)`, role.ID, code); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteRole(ctx context.Context, id int64) error {
	query := `
		DELETE FROM roles WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

// RoleAssignment là một cặp vai trò + cờ vai trò chính khi gán cho người dùng.
type RoleAssignment struct {
	RoleID    int64 `json:"roleId" validate:"required"`
	IsPrimary bool  `json:"isPrimary"`
}

// AssignRolesToUser thay toàn bộ vai trò của một người dùng.
func (r *Repository) AssignRolesToUser(ctx context.Context, userID int64, assignments []RoleAssignment) error {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, a := range assignments {
		query := `
			INSERT INTO user_roles (user_id, role_id, is_primary)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, userID, a.RoleID, a.IsPrimary); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) ListUserIDsByRole(ctx context.Context, roleID int64) ([]int64, error) {
	query := `
		SELECT user_id FROM user_roles WHERE role_id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *Repository) ListRoleAssignmentsByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]domain.UserRole, error) {
	result := make(map[int64][]domain.UserRole, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT ur.user_id, ur.role_id, ur.is_primary, r.code, r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id IN (` + placeholders(1, len(userIDs)) + `)
		ORDER BY ur.user_id, ur.role_id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, int64Args(userIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var userID int64
		assignment := domain.UserRole{}
		dst := []any{&userID, &assignment.RoleID, &assignment.IsPrimary, &assignment.Code, &assignment.Name}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		result[userID] = append(result[userID], assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ListRolesByUserID nạp đầy đủ vai trò của một người dùng (dùng khi xác định
// bậc quyền của người thao tác).
func (r *Repository) ListRolesByUserID(ctx context.Context, userID int64) ([]*domain.Role, error) {
	query := `
		SELECT r.id, r.code, r.name, r.description, r.is_admin, r.is_super_admin, r.created_at, r.version
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]*domain.Role, 0)
	for rows.Next() {
		role := &domain.Role{}
		dst := []any{&role.ID, &role.Code, &role.Name, &role.Description, &role.IsAdmin, &role.IsSuperAdmin, &role.CreatedAt, &role.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return roles, nil
}

func (r *Repository) listRolePermissions(ctx context.Context, roleID int64) ([]string, error) {
	query := `
		SELECT code FROM role_permissions WHERE role_id = $1 ORDER BY code
	`

	rows, err := r.dbpool.QueryContext(ctx, query, roleID)
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
