package scope

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

// stubUserReader ghi lại UserSelection cuối cùng để kiểm tra cách lister
// dựng truy vấn.
type stubUserReader struct {
	users       []*domain.User
	total       int64
	roleHolders map[int64][]int64
	departments map[int64]*domain.Department
	assignments map[int64][]domain.UserRole

	lastSelection *UserSelection
}

func (s *stubUserReader) SelectUsers(ctx context.Context, sel UserSelection) ([]*domain.User, int64, error) {
	s.lastSelection = &sel
	return s.users, s.total, nil
}

func (s *stubUserReader) ListUserIDsByRole(ctx context.Context, roleID int64) ([]int64, error) {
	return s.roleHolders[roleID], nil
}

func (s *stubUserReader) GetDepartmentsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Department, error) {
	if s.departments == nil {
		return map[int64]*domain.Department{}, nil
	}
	return s.departments, nil
}

func (s *stubUserReader) ListRoleAssignmentsByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]domain.UserRole, error) {
	if s.assignments == nil {
		return map[int64][]domain.UserRole{}, nil
	}
	return s.assignments, nil
}

func newTestLister(users *stubUserReader, departments []domain.Department) *Lister {
	repo := &stubDepartmentReader{departments: departments}
	return NewLister(users, NewResolver(repo, time.Minute))
}

func TestListUsersSuperAdminSeesAll(t *testing.T) {
	users := &stubUserReader{users: []*domain.User{{ID: 7}}, total: 1}
	lister := newTestLister(users, sampleTree())

	page, err := lister.ListUsers(context.Background(), UserListFilter{IsSuperAdmin: true, IsAdmin: true})
	require.NoError(t, err)

	assert.Equal(t, int64(1), page.Total)
	require.NotNil(t, users.lastSelection)
	assert.Empty(t, users.lastSelection.DepartmentIDs)
	assert.Nil(t, users.lastSelection.ViewerID)
}

func TestListUsersScopedAdmin(t *testing.T) {
	users := &stubUserReader{users: []*domain.User{}, total: 0}
	lister := newTestLister(users, sampleTree())

	filter := UserListFilter{
		IsAdmin: true,
		Scope:   Scope{DepartmentID: ptrInt64(2), Level: ptrInt32(2)},
	}

	_, err := lister.ListUsers(context.Background(), filter)
	require.NoError(t, err)

	require.NotNil(t, users.lastSelection)
	assert.ElementsMatch(t, []int64{2, 3}, users.lastSelection.DepartmentIDs)
}

func TestListUsersScopedAdminEmptyScope(t *testing.T) {
	users := &stubUserReader{users: []*domain.User{{ID: 7}}, total: 1}
	lister := newTestLister(users, nil)

	// Phạm vi không phân giải ra phòng ban nào: trang rỗng, không truy vấn
	page, err := lister.ListUsers(context.Background(), UserListFilter{IsAdmin: true})
	require.NoError(t, err)

	assert.Empty(t, page.Data)
	assert.Zero(t, page.Total)
	assert.Nil(t, users.lastSelection)
}

func TestListUsersSelfOnly(t *testing.T) {
	users := &stubUserReader{users: []*domain.User{{ID: 42}}, total: 1}
	lister := newTestLister(users, sampleTree())

	page, err := lister.ListUsers(context.Background(), UserListFilter{ViewerID: ptrInt64(42)})
	require.NoError(t, err)

	assert.Equal(t, int64(1), page.Total)
	require.NotNil(t, users.lastSelection)
	require.NotNil(t, users.lastSelection.ViewerID)
	assert.Equal(t, int64(42), *users.lastSelection.ViewerID)
}

func TestListUsersSelfOnlyWithoutViewer(t *testing.T) {
	users := &stubUserReader{users: []*domain.User{{ID: 7}}, total: 1}
	lister := newTestLister(users, sampleTree())

	page, err := lister.ListUsers(context.Background(), UserListFilter{})
	require.NoError(t, err)

	assert.Empty(t, page.Data)
	assert.Nil(t, users.lastSelection)
}

func TestListUsersRoleFilter(t *testing.T) {
	users := &stubUserReader{
		users:       []*domain.User{},
		roleHolders: map[int64][]int64{5: {10, 11}},
	}
	lister := newTestLister(users, sampleTree())

	_, err := lister.ListUsers(context.Background(), UserListFilter{IsSuperAdmin: true, RoleID: ptrInt64(5)})
	require.NoError(t, err)

	require.NotNil(t, users.lastSelection)
	assert.ElementsMatch(t, []int64{10, 11}, users.lastSelection.UserIDs)

	// Vai trò không ai giữ: trang rỗng, không truy vấn
	users.lastSelection = nil
	page, err := lister.ListUsers(context.Background(), UserListFilter{IsSuperAdmin: true, RoleID: ptrInt64(9)})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Nil(t, users.lastSelection)
}

func TestListUsersStatusMapping(t *testing.T) {
	tests := []struct {
		status string
		want   *int16
	}{
		{"active", ptrInt16(1)},
		{"inactive", ptrInt16(0)},
		{"locked", ptrInt16(2)},
		{"all", nil},
		{"", nil},
		{"nonsense", nil},
	}

	for _, tt := range tests {
		t.Run("status="+tt.status, func(t *testing.T) {
			users := &stubUserReader{users: []*domain.User{}}
			lister := newTestLister(users, sampleTree())

			_, err := lister.ListUsers(context.Background(), UserListFilter{IsSuperAdmin: true, Status: tt.status})
			require.NoError(t, err)

			require.NotNil(t, users.lastSelection)
			if tt.want == nil {
				assert.Nil(t, users.lastSelection.Status)
			} else {
				require.NotNil(t, users.lastSelection.Status)
				assert.Equal(t, *tt.want, *users.lastSelection.Status)
			}
		})
	}
}

func TestListUsersSortWhitelist(t *testing.T) {
	tests := []struct {
		sortBy     string
		sortDir    string
		wantColumn string
		wantDesc   bool
	}{
		{"username", "asc", "username", false},
		{"fullName", "desc", "full_name", true},
		{"createdAt", "", "created_at", true},
		{"password_hash", "asc", "created_at", false}, // cột ngoài whitelist
		{"", "", "created_at", true},
	}

	for _, tt := range tests {
		t.Run(tt.sortBy+"/"+tt.sortDir, func(t *testing.T) {
			users := &stubUserReader{users: []*domain.User{}}
			lister := newTestLister(users, sampleTree())

			_, err := lister.ListUsers(context.Background(), UserListFilter{
				IsSuperAdmin: true,
				SortBy:       tt.sortBy,
				SortDir:      tt.sortDir,
			})
			require.NoError(t, err)

			require.NotNil(t, users.lastSelection)
			assert.Equal(t, tt.wantColumn, users.lastSelection.SortColumn)
			assert.Equal(t, tt.wantDesc, users.lastSelection.SortDesc)
		})
	}
}

func TestListUsersPagination(t *testing.T) {
	users := &stubUserReader{users: []*domain.User{}}
	lister := newTestLister(users, sampleTree())

	_, err := lister.ListUsers(context.Background(), UserListFilter{IsSuperAdmin: true, Page: 3, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 20, users.lastSelection.Offset)
	assert.Equal(t, 10, users.lastSelection.Limit)

	// Giá trị ngoài biên đưa về mặc định
	_, err = lister.ListUsers(context.Background(), UserListFilter{IsSuperAdmin: true, Page: -1, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 0, users.lastSelection.Offset)
	assert.Equal(t, maxPageSize, users.lastSelection.Limit)
}

func TestListUsersHydrates(t *testing.T) {
	departmentID := int64(2)
	users := &stubUserReader{
		users: []*domain.User{
			{ID: 1, DepartmentID: &departmentID},
			{ID: 2},
		},
		total: 2,
		departments: map[int64]*domain.Department{
			2: {ID: 2, Code: "B"},
		},
		assignments: map[int64][]domain.UserRole{
			1: {{RoleID: 5, Code: "TRUONG-DOI", Name: "Đội trưởng", IsPrimary: true}},
		},
	}
	lister := newTestLister(users, sampleTree())

	page, err := lister.ListUsers(context.Background(), UserListFilter{IsSuperAdmin: true})
	require.NoError(t, err)

	require.Len(t, page.Data, 2)
	require.NotNil(t, page.Data[0].Department)
	assert.Equal(t, "B", page.Data[0].Department.Code)
	require.Len(t, page.Data[0].Roles, 1)
	assert.Equal(t, "TRUONG-DOI", page.Data[0].Roles[0].Code)
	assert.Nil(t, page.Data[1].Department)
	assert.Empty(t, page.Data[1].Roles)
}

func ptrInt16(v int16) *int16 { return &v }
