package scope

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

// stubDepartmentReader phục vụ resolver bằng dữ liệu trong bộ nhớ. Khi
// fnUnavailable = true, ListDepartmentScope trả về lỗi thiếu hàm để ép
// resolver chuyển sang duyệt cây ở phía ứng dụng.
type stubDepartmentReader struct {
	departments   []domain.Department
	fnUnavailable bool

	scopeCalls int
	pathCalls  int
	allCalls   int
}

func (s *stubDepartmentReader) ListDepartmentScope(ctx context.Context, departmentID int64, level int32) ([]domain.Department, error) {
	s.scopeCalls++
	if s.fnUnavailable {
		return nil, domain.ErrScopeFnUnavailable
	}

	// Mô phỏng fn_department_scope bằng chính phép duyệt cây
	switch level {
	case LevelGlobal:
		return s.departments, nil
	case LevelLeaf:
		for _, d := range s.departments {
			if d.ID == departmentID {
				return []domain.Department{d}, nil
			}
		}
		return []domain.Department{}, nil
	default:
		result := []domain.Department{}
		ids := map[int64]struct{}{departmentID: {}}
		for _, d := range s.departments {
			if d.ID == departmentID {
				result = append(result, d)
			}
		}
		for changed := true; changed; {
			changed = false
			for _, d := range s.departments {
				if d.ParentID == nil {
					continue
				}
				if _, ok := ids[*d.ParentID]; !ok {
					continue
				}
				if _, ok := ids[d.ID]; ok {
					continue
				}
				ids[d.ID] = struct{}{}
				result = append(result, d)
				changed = true
			}
		}
		return result, nil
	}
}

func (s *stubDepartmentReader) ListDepartmentsByPathPrefix(ctx context.Context, prefix string) ([]domain.Department, error) {
	s.pathCalls++
	result := []domain.Department{}
	for _, d := range s.departments {
		if len(d.Path) >= len(prefix) && d.Path[:len(prefix)] == prefix {
			result = append(result, d)
		}
	}
	return result, nil
}

func (s *stubDepartmentReader) ListAllDepartments(ctx context.Context) ([]domain.Department, error) {
	s.allCalls++
	return s.departments, nil
}

func ptrInt64(v int64) *int64 { return &v }
func ptrInt32(v int32) *int32 { return &v }

// Cây mẫu: A (cục, level 1) -> B (chi cục, level 2) -> C (đội, level 3).
func sampleTree() []domain.Department {
	return []domain.Department{
		{ID: 1, Code: "A", Level: 1, Path: "1", IsActive: true},
		{ID: 2, ParentID: ptrInt64(1), Code: "B", Level: 2, Path: "1.2", IsActive: true},
		{ID: 3, ParentID: ptrInt64(2), Code: "C", Level: 3, Path: "1.2.3", IsActive: true},
	}
}

func departmentIDs(departments []domain.Department) []int64 {
	ids := make([]int64, 0, len(departments))
	for _, d := range departments {
		ids = append(ids, d.ID)
	}
	return ids
}

func TestListDepartmentScopeByLevel(t *testing.T) {
	tests := []struct {
		name          string
		fnUnavailable bool
	}{
		{name: "qua hàm trên database"},
		{name: "qua duyệt cây khi thiếu hàm", fnUnavailable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubDepartmentReader{departments: sampleTree(), fnUnavailable: tt.fnUnavailable}
			resolver := NewResolver(repo, time.Minute)

			// Level 1: toàn bộ cây
			got, err := resolver.ListDepartmentScope(context.Background(), Scope{DepartmentID: ptrInt64(1), Level: ptrInt32(1)})
			require.NoError(t, err)
			assert.ElementsMatch(t, []int64{1, 2, 3}, departmentIDs(got))

			// Level 2: chi cục cùng các đội cấp dưới
			got, err = resolver.ListDepartmentScope(context.Background(), Scope{DepartmentID: ptrInt64(2), Level: ptrInt32(2)})
			require.NoError(t, err)
			assert.ElementsMatch(t, []int64{2, 3}, departmentIDs(got))

			// Level 3: đúng một phòng ban
			got, err = resolver.ListDepartmentScope(context.Background(), Scope{DepartmentID: ptrInt64(3), Level: ptrInt32(3)})
			require.NoError(t, err)
			assert.ElementsMatch(t, []int64{3}, departmentIDs(got))
		})
	}
}

func TestListDepartmentScopeByPath(t *testing.T) {
	repo := &stubDepartmentReader{departments: sampleTree()}
	resolver := NewResolver(repo, time.Minute)

	got, err := resolver.ListDepartmentScope(context.Background(), Scope{Path: "1.2"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 3}, departmentIDs(got))

	// Path được ưu tiên hơn cặp id + level
	got, err = resolver.ListDepartmentScope(context.Background(), Scope{Path: "1.2.3", DepartmentID: ptrInt64(1), Level: ptrInt32(1)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{3}, departmentIDs(got))
}

func TestListDepartmentScopeEmptyScope(t *testing.T) {
	repo := &stubDepartmentReader{departments: sampleTree()}
	resolver := NewResolver(repo, time.Minute)

	got, err := resolver.ListDepartmentScope(context.Background(), Scope{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, repo.scopeCalls)
	assert.Zero(t, repo.pathCalls)
}

func TestListDepartmentScopeFiltersInactive(t *testing.T) {
	departments := sampleTree()
	departments[2].IsActive = false // đội C ngừng hoạt động

	repo := &stubDepartmentReader{departments: departments}
	resolver := NewResolver(repo, time.Minute)

	got, err := resolver.ListDepartmentScope(context.Background(), Scope{DepartmentID: ptrInt64(2), Level: ptrInt32(2)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2}, departmentIDs(got))
}

func TestWalkScopeStopsOnCycle(t *testing.T) {
	// Dữ liệu hỏng: B và C là cha của nhau
	departments := []domain.Department{
		{ID: 2, ParentID: ptrInt64(3), Code: "B", Level: 2, Path: "2", IsActive: true},
		{ID: 3, ParentID: ptrInt64(2), Code: "C", Level: 2, Path: "3", IsActive: true},
	}

	repo := &stubDepartmentReader{departments: departments, fnUnavailable: true}
	resolver := NewResolver(repo, time.Minute)

	got, err := resolver.ListDepartmentScope(context.Background(), Scope{DepartmentID: ptrInt64(2), Level: ptrInt32(2)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 3}, departmentIDs(got))
}

func TestResolverCache(t *testing.T) {
	repo := &stubDepartmentReader{departments: sampleTree()}
	resolver := NewResolver(repo, time.Minute)

	sc := Scope{DepartmentID: ptrInt64(2), Level: ptrInt32(2)}

	_, err := resolver.ListDepartmentScope(context.Background(), sc)
	require.NoError(t, err)
	_, err = resolver.ListDepartmentScope(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.scopeCalls)

	// Reset thì phải truy vấn lại
	resolver.ResetCache()
	_, err = resolver.ListDepartmentScope(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.scopeCalls)
}

func TestResolverCacheExpiry(t *testing.T) {
	repo := &stubDepartmentReader{departments: sampleTree()}
	resolver := NewResolver(repo, 10*time.Millisecond)

	sc := Scope{Path: "1"}

	_, err := resolver.ListDepartmentScope(context.Background(), sc)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = resolver.ListDepartmentScope(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.pathCalls)
}
