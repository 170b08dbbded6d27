package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name    string
		granted []string
		code    string
		want    bool
	}{
		{
			name:    "mã khớp trực tiếp",
			granted: []string{"sa.iam.user.read"},
			code:    "sa.iam.user.read",
			want:    true,
		},
		{
			name:    "không phân biệt hoa thường",
			granted: []string{"SA.IAM.USER.READ"},
			code:    "sa.iam.user.read",
			want:    true,
		},
		{
			name:    "alias kiểu mới dạng chấm",
			granted: []string{"USER.READ"},
			code:    "sa.iam.user.read",
			want:    true,
		},
		{
			name:    "alias kiểu mới dạng gạch dưới",
			granted: []string{"USER_READ"},
			code:    "sa.iam.user.read",
			want:    true,
		},
		{
			name:    "ADMIN:ACCESS đi tắt qua mã tiền tố sa.",
			granted: []string{"ADMIN:ACCESS"},
			code:    "sa.iam.role.delete",
			want:    true,
		},
		{
			name:    "ADMIN_VIEW cũng là quyền admin",
			granted: []string{"ADMIN_VIEW"},
			code:    "sa.iam.role.delete",
			want:    true,
		},
		{
			name:    "admin không được đi tắt với mã kiểu mới",
			granted: []string{"ADMIN:ACCESS"},
			code:    "REPORT.VIEW",
			want:    false,
		},
		{
			name:    "không có quyền",
			granted: []string{"sa.store.read"},
			code:    "sa.iam.user.read",
			want:    false,
		},
		{
			name:    "tập rỗng",
			granted: nil,
			code:    "sa.iam.user.read",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPermissionSet(tt.granted)
			assert.Equal(t, tt.want, s.HasPermission(tt.code))
		})
	}
}

func TestHasAnyPermission(t *testing.T) {
	s := NewPermissionSet([]string{"sa.store.read"})
	assert.True(t, s.HasAnyPermission("sa.iam.user.read", "sa.store.read"))
	assert.False(t, s.HasAnyPermission("sa.iam.user.read", "sa.iam.role.read"))
	assert.False(t, s.HasAnyPermission())

	// Admin chỉ cần một mã mang tiền tố sa. trong danh sách
	admin := NewPermissionSet([]string{"ADMIN:ACCESS"})
	assert.True(t, admin.HasAnyPermission("REPORT.VIEW", "sa.iam.user.read"))
	assert.False(t, admin.HasAnyPermission("REPORT.VIEW", "AUDIT.VIEW"))
}

func TestHasAllPermissions(t *testing.T) {
	s := NewPermissionSet([]string{"sa.store.read", "sa.store.update"})
	assert.True(t, s.HasAllPermissions("sa.store.read", "sa.store.update"))
	assert.False(t, s.HasAllPermissions("sa.store.read", "sa.store.delete"))

	// Danh sách rỗng luôn đạt
	assert.True(t, s.HasAllPermissions())

	// Admin đi tắt khi và chỉ khi mọi mã đều mang tiền tố sa.
	admin := NewPermissionSet([]string{"ADMIN:ACCESS"})
	assert.True(t, admin.HasAllPermissions("sa.iam.user.read", "sa.iam.role.read"))
	assert.False(t, admin.HasAllPermissions("sa.iam.user.read", "REPORT.VIEW"))
}

func TestHasPermissionPattern(t *testing.T) {
	s := NewPermissionSet([]string{"sa.iam.user.read", "sa.store.read"})

	assert.True(t, s.HasPermissionPattern("sa.iam.*"))
	assert.True(t, s.HasPermissionPattern("sa.*.read"))
	assert.False(t, s.HasPermissionPattern("sa.cat.*"))

	// Mẫu so với mã thô, không qua alias
	aliased := NewPermissionSet([]string{"USER.READ"})
	assert.False(t, aliased.HasPermissionPattern("sa.iam.*"))

	// Không có đường tắt admin cho mẫu
	admin := NewPermissionSet([]string{"ADMIN:ACCESS"})
	assert.False(t, admin.HasPermissionPattern("sa.iam.*"))
}

func TestNewPermissionSetNormalizes(t *testing.T) {
	s := NewPermissionSet([]string{"  sa.store.read  ", "", "STORE_UPDATE"})

	assert.Equal(t, []string{"sa.store.read", "STORE_UPDATE"}, s.Codes())
	assert.True(t, s.HasPermission("SA.STORE.READ"))
	assert.True(t, s.HasPermission("sa.store.update"))
	assert.False(t, s.HasAdminAccess())
}
