package scope

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

// Mốc level trong cây phòng ban.
const (
	LevelGlobal int32 = 1 // toàn bộ cây
	LevelLeaf   int32 = 3 // đúng một phòng ban
	// các level khác: phòng ban đó cùng toàn bộ cấp dưới
)

// Scope là phạm vi quản trị của người thao tác, tính lại cho từng request.
// Path được ưu tiên nếu có; nếu không thì dùng cặp DepartmentID + Level.
type Scope struct {
	DepartmentID *int64
	Level        *int32
	Path         string
}

// DepartmentReader là phần kho dữ liệu mà resolver cần.
type DepartmentReader interface {
	// ListDepartmentScope gọi hàm fn_department_scope trên database; trả về
	// domain.ErrScopeFnUnavailable nếu hàm chưa được cài.
	ListDepartmentScope(ctx context.Context, departmentID int64, level int32) ([]domain.Department, error)
	ListDepartmentsByPathPrefix(ctx context.Context, prefix string) ([]domain.Department, error)
	ListAllDepartments(ctx context.Context) ([]domain.Department, error)
}

// Resolver tính tập đóng các phòng ban mà một người thao tác được nhìn thấy.
type Resolver struct {
	repo  DepartmentReader
	cache *ttlCache
}

const DefaultCacheTTL = 5 * time.Minute

func NewResolver(repo DepartmentReader, cacheTTL time.Duration) *Resolver {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Resolver{
		repo:  repo,
		cache: newTTLCache(cacheTTL),
	}
}

// ResetCache xoá toàn bộ cache, dùng sau khi cây phòng ban thay đổi.
func (r *Resolver) ResetCache() {
	r.cache.reset()
}

// ListDepartmentScope trả về các phòng ban đang hoạt động trong phạm vi đã
// cho. Không có Path lẫn DepartmentID+Level thì trả về danh sách rỗng:
// người thao tác không nhìn thấy phòng ban nào.
func (r *Resolver) ListDepartmentScope(ctx context.Context, sc Scope) ([]domain.Department, error) {
	if sc.Path != "" {
		return r.resolveByPath(ctx, sc.Path)
	}
	if sc.DepartmentID != nil && sc.Level != nil {
		return r.resolveByLevel(ctx, *sc.DepartmentID, *sc.Level)
	}
	return []domain.Department{}, nil
}

func (r *Resolver) resolveByPath(ctx context.Context, path string) ([]domain.Department, error) {
	key := "path:" + path
	if cached, ok := r.cache.get(key); ok {
		return cached, nil
	}

	departments, err := r.repo.ListDepartmentsByPathPrefix(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("truy vấn phòng ban theo path %q: %w", path, err)
	}

	result := filterActive(departments)
	r.cache.put(key, result)
	return result, nil
}

func (r *Resolver) resolveByLevel(ctx context.Context, departmentID int64, level int32) ([]domain.Department, error) {
	key := fmt.Sprintf("scope:%d:%d", departmentID, level)
	if cached, ok := r.cache.get(key); ok {
		return cached, nil
	}

	departments, err := r.repo.ListDepartmentScope(ctx, departmentID, level)
	if errors.Is(err, domain.ErrScopeFnUnavailable) {
		departments, err = r.walkScope(ctx, departmentID, level)
	}
	if err != nil {
		return nil, fmt.Errorf("tính phạm vi phòng ban %d (level %d): %w", departmentID, level, err)
	}

	result := filterActive(departments)
	r.cache.put(key, result)
	return result, nil
}

// walkScope tính phạm vi ở phía ứng dụng khi database chưa có hàm phạm vi:
// nạp cả bảng, dựng map cha -> con rồi duyệt bằng stack. Tập visited chặn
// vòng lặp khi dữ liệu parent_id bị hỏng tạo chu trình.
func (r *Resolver) walkScope(ctx context.Context, departmentID int64, level int32) ([]domain.Department, error) {
	all, err := r.repo.ListAllDepartments(ctx)
	if err != nil {
		return nil, err
	}

	if level == LevelGlobal {
		return all, nil
	}

	byID := make(map[int64]domain.Department, len(all))
	children := make(map[int64][]domain.Department, len(all))
	for _, d := range all {
		byID[d.ID] = d
		if d.ParentID != nil {
			children[*d.ParentID] = append(children[*d.ParentID], d)
		}
	}

	root, ok := byID[departmentID]
	if !ok {
		return []domain.Department{}, nil
	}

	if level == LevelLeaf {
		return []domain.Department{root}, nil
	}

	// Phòng ban gốc cùng toàn bộ cấp dưới, mỗi nút ghé đúng một lần.
	result := make([]domain.Department, 0, 8)
	visited := make(map[int64]struct{})
	stack := []domain.Department{root}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[current.ID]; seen {
			continue
		}
		visited[current.ID] = struct{}{}
		result = append(result, current)
		stack = append(stack, children[current.ID]...)
	}

	return result, nil
}

func filterActive(departments []domain.Department) []domain.Department {
	result := make([]domain.Department, 0, len(departments))
	for _, d := range departments {
		if d.IsActive {
			result = append(result, d)
		}
	}
	return result
}
