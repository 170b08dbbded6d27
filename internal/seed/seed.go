package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
	"github.com/qltt-vn/market-portal/backend/internal/repository"
)

// departmentNode mô tả một nhánh của cây tổ chức mẫu.
type departmentNode struct {
	Code     string
	Name     string
	Children []departmentNode
}

// Cây tổ chức mẫu: Cục -> Chi cục -> Đội
var departmentTree = []departmentNode{
	{
		Code: "CUC-QLTT",
		Name: "Cục Quản lý thị trường",
		Children: []departmentNode{
			{
				Code: "CC-HN",
				Name: "Chi cục QLTT Hà Nội",
				Children: []departmentNode{
					{Code: "DOI-HN-1", Name: "Đội QLTT số 1 Hà Nội"},
					{Code: "DOI-HN-2", Name: "Đội QLTT số 2 Hà Nội"},
				},
			},
			{
				Code: "CC-HCM",
				Name: "Chi cục QLTT TP. Hồ Chí Minh",
				Children: []departmentNode{
					{Code: "DOI-HCM-1", Name: "Đội QLTT số 1 TP.HCM"},
					{Code: "DOI-HCM-2", Name: "Đội QLTT số 2 TP.HCM"},
				},
			},
		},
	},
}

// SeedDepartments tạo cây tổ chức mẫu. Path của mỗi phòng ban là chuỗi id từ
// gốc xuống tới chính nó, ngăn cách bằng dấu chấm.
func SeedDepartments(ctx context.Context, repo *repository.Repository) {
	var walk func(nodes []departmentNode, parent *domain.Department, level int32)
	walk = func(nodes []departmentNode, parent *domain.Department, level int32) {
		for _, node := range nodes {
			d := &domain.Department{
				Code:     node.Code,
				Name:     node.Name,
				Level:    level,
				IsActive: true,
			}
			if parent != nil {
				d.ParentID = &parent.ID
			}

			// Path chứa id của chính mình nên phải tạo trước rồi cập nhật lại
			if err := repo.CreateDepartment(ctx, d); err != nil {
				slog.Error("không tạo được phòng ban", "code", node.Code, "error", err)
				continue
			}

			d.Path = strconv.FormatInt(d.ID, 10)
			if parent != nil {
				d.Path = parent.Path + "." + d.Path
			}
			if err := repo.UpdateDepartment(ctx, d); err != nil {
				slog.Error("không cập nhật được path phòng ban", "code", node.Code, "error", err)
				continue
			}

			walk(node.Children, d, level+1)
		}
	}

	walk(departmentTree, nil, 1)
	slog.Info("đã tạo cây tổ chức mẫu")
}

var areaSeeds = []struct {
	Code  string
	Name  string
	Level int32
}{
	{"HN", "Thành phố Hà Nội", 1},
	{"HCM", "Thành phố Hồ Chí Minh", 1},
	{"DN", "Thành phố Đà Nẵng", 1},
}

func SeedAreas(ctx context.Context, repo *repository.Repository) {
	cnt := 0
	for _, a := range areaSeeds {
		area := &domain.Area{
			Code:     a.Code,
			Name:     a.Name,
			Level:    a.Level,
			IsActive: true,
		}
		if err := repo.CreateArea(ctx, area); err != nil {
			slog.Error("không tạo được địa bàn", "code", a.Code, "error", err)
			continue
		}
		cnt++
	}
	slog.Info("đã tạo địa bàn mẫu", "count", cnt)
}

// SeedCatalogs tạo các danh mục dùng chung hay gặp trong nghiệp vụ QLTT.
func SeedCatalogs(ctx context.Context, repo *repository.Repository) {
	catalogs := []struct {
		Code  string
		Name  string
		Items []string
	}{
		{"NGANH-HANG", "Ngành hàng", []string{"Thực phẩm", "Mỹ phẩm", "Điện tử", "May mặc", "Xăng dầu"}},
		{"LOAI-HINH-KD", "Loại hình kinh doanh", []string{"Hộ kinh doanh", "Doanh nghiệp", "Hợp tác xã"}},
		{"HANH-VI-VP", "Hành vi vi phạm", []string{"Hàng giả", "Hàng lậu", "Không rõ nguồn gốc", "Gian lận giá"}},
	}

	for _, c := range catalogs {
		catalog := &domain.Catalog{
			Code:     c.Code,
			Name:     c.Name,
			IsActive: true,
		}
		if err := repo.CreateCatalog(ctx, catalog); err != nil {
			slog.Error("không tạo được danh mục", "code", c.Code, "error", err)
			continue
		}

		for i, name := range c.Items {
			item := &domain.CatalogItem{
				CatalogID: catalog.ID,
				Code:      fmt.Sprintf("%s-%02d", c.Code, i+1),
				Name:      name,
				SortOrder: int32(i + 1),
				IsActive:  true,
			}
			if err := repo.CreateCatalogItem(ctx, item); err != nil {
				slog.Error("không tạo được mục danh mục", "code", item.Code, "error", err)
			}
		}
	}

	slog.Info("đã tạo danh mục mẫu")
}

// SeedRoles tạo bộ vai trò mẫu kèm quyền.
func SeedRoles(ctx context.Context, repo *repository.Repository) {
	roles := []*domain.Role{
		{
			Code:        "TRUONG-DOI",
			Name:        "Đội trưởng",
			Description: "Quản lý người dùng và cơ sở trong phạm vi đội",
			IsAdmin:     true,
			Permissions: []string{
				"sa.iam.user.read",
				"sa.store.read",
				"sa.store.create",
				"sa.store.update",
				"sa.store.export",
			},
		},
		{
			Code:        "KIEM-SOAT-VIEN",
			Name:        "Kiểm soát viên",
			Description: "Tra cứu và cập nhật sổ đăng ký cơ sở",
			Permissions: []string{
				"sa.store.read",
				"sa.store.update",
			},
		},
		{
			Code:        "VAN-THU",
			Name:        "Văn thư",
			Description: "Chỉ tra cứu",
			Permissions: []string{
				"sa.store.read",
				"sa.cat.catalog.read",
				"sa.geo.area.read",
			},
		},
	}

	cnt := 0
	for _, role := range roles {
		if err := repo.CreateRole(ctx, role); err != nil {
			slog.Error("không tạo được vai trò", "code", role.Code, "error", err)
			continue
		}
		cnt++
	}
	slog.Info("đã tạo vai trò mẫu", "count", cnt)
}

// SeedStores tạo n cơ sở kinh doanh ngẫu nhiên, gán vào các đội (level 3).
func SeedStores(ctx context.Context, repo *repository.Repository, n int) {
	departments, err := repo.ListAllDepartments(ctx)
	if err != nil {
		slog.Error("không lấy được danh sách phòng ban", "error", err)
		return
	}

	teams := make([]domain.Department, 0, len(departments))
	for _, d := range departments {
		if d.Level == 3 {
			teams = append(teams, d)
		}
	}
	if len(teams) == 0 {
		slog.Error("chưa có đội nào, hãy chạy seed phòng ban trước")
		return
	}

	kinds := []string{"Cửa hàng tạp hoá", "Siêu thị mini", "Quầy thuốc", "Cửa hàng điện máy", "Đại lý gạo"}

	cnt := 0
	for i := 0; i < n; i++ {
		team := teams[rand.Intn(len(teams))]
		store := &domain.Store{
			Code:         fmt.Sprintf("CS-%06d", rand.Intn(1000000)),
			Name:         fmt.Sprintf("%s số %d", kinds[rand.Intn(len(kinds))], i+1),
			OwnerName:    fmt.Sprintf("Chủ hộ %d", i+1),
			TaxCode:      fmt.Sprintf("%010d", rand.Intn(1000000000)),
			Phone:        fmt.Sprintf("09%08d", rand.Intn(100000000)),
			Address:      fmt.Sprintf("Số %d, đường mẫu", i+1),
			DepartmentID: &team.ID,
			IsActive:     true,
		}
		if err := repo.CreateStore(ctx, store); err != nil {
			slog.Error("không tạo được cơ sở", "code", store.Code, "error", err)
			continue
		}
		cnt++
	}
	slog.Info("đã tạo cơ sở kinh doanh mẫu", "count", cnt)
}
