package scope

import (
	"context"
	"fmt"
	"strings"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// UserListFilter là toàn bộ tham số lọc của màn hình danh sách người dùng.
// Liệt kê tường minh từng khoá, không nhận map tự do.
type UserListFilter struct {
	Query        string
	Status       string // active | inactive | locked | all
	RoleID       *int64
	DepartmentID *int64
	Scope        Scope
	ViewerID     *int64
	IsSuperAdmin bool
	IsAdmin      bool
	Page         int
	PageSize     int
	SortBy       string
	SortDir      string
}

type UserPage struct {
	Data  []*domain.User `json:"data"`
	Total int64          `json:"total"`
}

// UserSelection là truy vấn đã được phân giải xong, chỉ còn điều kiện SQL.
// SortColumn luôn là một cột đã qua whitelist.
type UserSelection struct {
	Query         string
	Status        *int16
	UserIDs       []int64 // người giữ vai trò đang lọc
	DepartmentIDs []int64 // phạm vi phòng ban được phép
	DepartmentID  *int64
	ViewerID      *int64
	SortColumn    string
	SortDesc      bool
	Offset        int
	Limit         int
}

// UserReader là phần kho dữ liệu mà lister cần.
type UserReader interface {
	SelectUsers(ctx context.Context, sel UserSelection) ([]*domain.User, int64, error)
	ListUserIDsByRole(ctx context.Context, roleID int64) ([]int64, error)
	GetDepartmentsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Department, error)
	ListRoleAssignmentsByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]domain.UserRole, error)
}

// Lister ghép phạm vi phòng ban, bậc quyền và các điều kiện lọc thành một
// truy vấn danh sách người dùng duy nhất.
type Lister struct {
	users  UserReader
	scopes *Resolver
}

func NewLister(users UserReader, scopes *Resolver) *Lister {
	return &Lister{users: users, scopes: scopes}
}

var statusValues = map[string]int16{
	"inactive": int16(domain.UserStatusInactive),
	"active":   int16(domain.UserStatusActive),
	"locked":   int16(domain.UserStatusLocked),
}

var sortColumns = map[string]string{
	"username":  "username",
	"fullName":  "full_name",
	"email":     "email",
	"status":    "status",
	"createdAt": "created_at",
}

// ListUsers thực hiện ba bậc hiển thị: super admin thấy tất cả, admin theo
// phạm vi chỉ thấy phòng ban trong phạm vi, còn lại chỉ thấy chính mình.
// Mọi nhánh không phân giải được đều trả về trang rỗng, không bao giờ trả
// về kết quả không lọc.
func (l *Lister) ListUsers(ctx context.Context, filter UserListFilter) (UserPage, error) {
	empty := UserPage{Data: []*domain.User{}, Total: 0}

	isSuper := filter.IsSuperAdmin
	isScopedAdmin := filter.IsAdmin && !isSuper
	isSelfOnly := !isSuper && !isScopedAdmin

	sel := UserSelection{
		Query:        strings.TrimSpace(filter.Query),
		DepartmentID: filter.DepartmentID,
	}

	if isScopedAdmin {
		departments, err := l.scopes.ListDepartmentScope(ctx, filter.Scope)
		if err != nil {
			return UserPage{}, err
		}
		if len(departments) == 0 {
			return empty, nil
		}
		sel.DepartmentIDs = make([]int64, 0, len(departments))
		for _, d := range departments {
			sel.DepartmentIDs = append(sel.DepartmentIDs, d.ID)
		}
	}

	if isSelfOnly {
		if filter.ViewerID == nil {
			return empty, nil
		}
		sel.ViewerID = filter.ViewerID
	}

	if filter.RoleID != nil {
		holders, err := l.users.ListUserIDsByRole(ctx, *filter.RoleID)
		if err != nil {
			return UserPage{}, fmt.Errorf("phân giải người giữ vai trò %d: %w", *filter.RoleID, err)
		}
		if len(holders) == 0 {
			return empty, nil
		}
		sel.UserIDs = holders
	}

	if code, ok := statusValues[filter.Status]; ok {
		sel.Status = &code
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	sel.SortColumn = column
	sel.SortDesc = !strings.EqualFold(filter.SortDir, "asc")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	sel.Offset = (page - 1) * pageSize
	sel.Limit = pageSize

	users, total, err := l.users.SelectUsers(ctx, sel)
	if err != nil {
		return UserPage{}, err
	}

	if err := l.hydrate(ctx, users); err != nil {
		return UserPage{}, err
	}

	return UserPage{Data: users, Total: total}, nil
}

// hydrate gắn phòng ban và vai trò cho trang kết quả bằng đúng hai truy vấn
// gom theo id, không truy vấn từng dòng.
func (l *Lister) hydrate(ctx context.Context, users []*domain.User) error {
	if len(users) == 0 {
		return nil
	}

	departmentIDs := make([]int64, 0, len(users))
	seen := make(map[int64]struct{}, len(users))
	userIDs := make([]int64, 0, len(users))
	for _, u := range users {
		userIDs = append(userIDs, u.ID)
		if u.DepartmentID == nil {
			continue
		}
		if _, ok := seen[*u.DepartmentID]; ok {
			continue
		}
		seen[*u.DepartmentID] = struct{}{}
		departmentIDs = append(departmentIDs, *u.DepartmentID)
	}

	departments := map[int64]*domain.Department{}
	if len(departmentIDs) > 0 {
		var err error
		departments, err = l.users.GetDepartmentsByIDs(ctx, departmentIDs)
		if err != nil {
			return fmt.Errorf("nạp phòng ban cho trang kết quả: %w", err)
		}
	}

	assignments, err := l.users.ListRoleAssignmentsByUserIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("nạp vai trò cho trang kết quả: %w", err)
	}

	for _, u := range users {
		if u.DepartmentID != nil {
			u.Department = departments[*u.DepartmentID]
		}
		u.Roles = assignments[u.ID]
	}

	return nil
}
