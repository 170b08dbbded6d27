package auth

import (
	"regexp"
	"slices"
	"strings"
)

// legacyPrefix đánh dấu các mã quyền cũ do hệ thống system-admin cấp.
const legacyPrefix = "sa."

// adminAccessCodes: giữ một trong hai mã này thì được đi tắt qua mọi
// kiểm tra quyền mang tiền tố cũ (không áp dụng cho mã kiểu mới).
var adminAccessCodes = []string{"ADMIN:ACCESS", "ADMIN_VIEW"}

// legacyAliases ánh xạ mã quyền cũ (chấm, chữ thường) sang các mã tương đương
// theo quy ước mới. So khớp không phân biệt hoa thường.
var legacyAliases = map[string][]string{
	"sa.iam.user.read":         {"USER.READ", "USER_READ"},
	"sa.iam.user.create":       {"USER.CREATE", "USER_CREATE"},
	"sa.iam.user.update":       {"USER.UPDATE", "USER_UPDATE"},
	"sa.iam.user.delete":       {"USER.DELETE", "USER_DELETE"},
	"sa.iam.user.reset-pw":     {"USER.RESET_PASSWORD", "USER_RESET_PASSWORD"},
	"sa.iam.role.read":         {"ROLE.READ", "ROLE_READ"},
	"sa.iam.role.create":       {"ROLE.CREATE", "ROLE_CREATE"},
	"sa.iam.role.update":       {"ROLE.UPDATE", "ROLE_UPDATE"},
	"sa.iam.role.delete":       {"ROLE.DELETE", "ROLE_DELETE"},
	"sa.org.department.read":   {"DEPARTMENT.READ", "DEPARTMENT_READ", "dept.read"},
	"sa.org.department.create": {"DEPARTMENT.CREATE", "DEPARTMENT_CREATE"},
	"sa.org.department.update": {"DEPARTMENT.UPDATE", "DEPARTMENT_UPDATE"},
	"sa.org.department.delete": {"DEPARTMENT.DELETE", "DEPARTMENT_DELETE"},
	"sa.org.unit.read":         {"ORG_UNIT.READ", "ORG_UNIT_READ"},
	"sa.org.unit.create":       {"ORG_UNIT.CREATE", "ORG_UNIT_CREATE"},
	"sa.org.unit.update":       {"ORG_UNIT.UPDATE", "ORG_UNIT_UPDATE"},
	"sa.org.unit.delete":       {"ORG_UNIT.DELETE", "ORG_UNIT_DELETE"},
	"sa.cat.catalog.read":      {"CATALOG.READ", "CATALOG_READ"},
	"sa.cat.catalog.create":    {"CATALOG.CREATE", "CATALOG_CREATE"},
	"sa.cat.catalog.update":    {"CATALOG.UPDATE", "CATALOG_UPDATE"},
	"sa.cat.catalog.delete":    {"CATALOG.DELETE", "CATALOG_DELETE"},
	"sa.geo.area.read":         {"AREA.READ", "AREA_READ"},
	"sa.geo.area.create":       {"AREA.CREATE", "AREA_CREATE"},
	"sa.geo.area.update":       {"AREA.UPDATE", "AREA_UPDATE"},
	"sa.geo.area.delete":       {"AREA.DELETE", "AREA_DELETE"},
	"sa.store.read":            {"STORE.READ", "STORE_READ"},
	"sa.store.create":          {"STORE.CREATE", "STORE_CREATE"},
	"sa.store.update":          {"STORE.UPDATE", "STORE_UPDATE"},
	"sa.store.delete":          {"STORE.DELETE", "STORE_DELETE"},
	"sa.store.export":          {"STORE.EXPORT", "STORE_EXPORT"},
}

// PermissionSet là tập mã quyền đã cấp cho một người dùng trong phiên hiện
// tại. Tập này bất biến sau khi tạo.
type PermissionSet struct {
	raw     []string
	granted map[string]struct{}
	admin   bool
}

// NewPermissionSet chuẩn hoá danh sách mã quyền thô thành một tập tra cứu.
// Danh sách nil hoặc rỗng cho ra tập không có quyền nào.
func NewPermissionSet(codes []string) PermissionSet {
	raw := make([]string, 0, len(codes))
	granted := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		raw = append(raw, code)
		granted[strings.ToUpper(code)] = struct{}{}
	}

	admin := false
	for _, code := range adminAccessCodes {
		if _, ok := granted[code]; ok {
			admin = true
			break
		}
	}

	return PermissionSet{raw: raw, granted: granted, admin: admin}
}

// HasAdminAccess cho biết người dùng giữ mã ADMIN:ACCESS hoặc ADMIN_VIEW.
func (s PermissionSet) HasAdminAccess() bool {
	return s.admin
}

// Codes trả về danh sách mã thô như lúc cấp.
func (s PermissionSet) Codes() []string {
	return slices.Clone(s.raw)
}

// HasPermission kiểm tra một mã quyền. Người giữ quyền admin được cấp ngay
// mọi mã mang tiền tố "sa."; mã kiểu mới vẫn phải tra tập quyền như thường.
func (s PermissionSet) HasPermission(code string) bool {
	if s.admin && strings.HasPrefix(code, legacyPrefix) {
		return true
	}
	return s.isGranted(code)
}

// HasAnyPermission trả về true nếu ít nhất một mã được cấp.
func (s PermissionSet) HasAnyPermission(codes ...string) bool {
	if s.admin {
		for _, code := range codes {
			if strings.HasPrefix(code, legacyPrefix) {
				return true
			}
		}
	}
	for _, code := range codes {
		if s.isGranted(code) {
			return true
		}
	}
	return false
}

// HasAllPermissions trả về true nếu mọi mã đều được cấp.
func (s PermissionSet) HasAllPermissions(codes ...string) bool {
	if len(codes) == 0 {
		return true
	}
	if s.admin {
		allLegacy := true
		for _, code := range codes {
			if !strings.HasPrefix(code, legacyPrefix) {
				allLegacy = false
				break
			}
		}
		if allLegacy {
			return true
		}
	}
	for _, code := range codes {
		if !s.isGranted(code) {
			return false
		}
	}
	return true
}

// HasPermissionPattern so khớp mẫu wildcard ("sa.iam.*") với danh sách mã
// THÔ, không qua bảng alias và không qua đường tắt admin. Giữ nguyên sự bất
// đối xứng này với HasPermission: caller nội bộ chỉ truyền mã đã chuẩn hoá,
// chưa có quyết định sản phẩm về việc hợp nhất hai đường kiểm tra.
func (s PermissionSet) HasPermissionPattern(pattern string) bool {
	expr := "^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".*") + "$"
	re, err := regexp.Compile(expr)
	if err != nil {
		return false
	}
	for _, code := range s.raw {
		if re.MatchString(code) {
			return true
		}
	}
	return false
}

// isGranted tra mã theo dạng chữ hoa, sau đó thử các alias cũ -> mới.
func (s PermissionSet) isGranted(code string) bool {
	if _, ok := s.granted[strings.ToUpper(code)]; ok {
		return true
	}
	for _, alias := range legacyAliases[strings.ToLower(code)] {
		if _, ok := s.granted[strings.ToUpper(alias)]; ok {
			return true
		}
	}
	return false
}
