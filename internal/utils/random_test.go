package utils

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

func TestFoldToASCII(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Nguyễn Văn An", "Nguyen Van An"},
		{"Đặng Thị Hương", "Dang Thi Huong"},
		{"Trần Quốc Tuấn", "Tran Quoc Tuan"},
		{"abc xyz", "abc xyz"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FoldToASCII(tt.in))
	}
}

func TestGenerateUsernameFromFullName(t *testing.T) {
	username := GenerateUsernameFromFullName("Nguyễn Văn An")

	assert.True(t, strings.HasPrefix(username, "nguyenvanan"), "username %q phải bắt đầu bằng họ tên bỏ dấu", username)

	for _, r := range username {
		assert.True(t, r < unicode.MaxASCII, "username %q còn ký tự ngoài ASCII", username)
		assert.False(t, unicode.IsUpper(r), "username %q còn chữ hoa", username)
	}

	// Phần đuôi là 1-3 chữ số
	suffix := strings.TrimPrefix(username, "nguyenvanan")
	assert.GreaterOrEqual(t, len(suffix), 1)
	assert.LessOrEqual(t, len(suffix), 3)
	for _, r := range suffix {
		assert.True(t, unicode.IsDigit(r))
	}
}

func TestGenerateRandomUser(t *testing.T) {
	user, err := GenerateRandomUser("mat-khau-mau", "qltt.vn")
	require.NoError(t, err)

	assert.NotEmpty(t, user.FullName)
	assert.NotEmpty(t, user.Username)
	assert.Equal(t, user.Username+"@qltt.vn", user.Email)
	assert.Equal(t, domain.UserStatusActive, user.Status)
	assert.Len(t, user.Phone, 10)
	assert.True(t, strings.HasPrefix(user.Phone, "09"))
	assert.NotEqual(t, "mat-khau-mau", user.PasswordHash)
}

func TestGenerateRandomOTP(t *testing.T) {
	otp := GenerateRandomOTP()
	assert.Len(t, otp, 6)
	for _, r := range otp {
		assert.True(t, unicode.IsDigit(r))
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	password := GenerateRandomPassword(12)
	assert.Len(t, password, 12)
}
