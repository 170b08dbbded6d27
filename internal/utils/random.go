package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var commonSurnames = []string{
	"Nguyễn", "Trần", "Lê", "Phạm", "Hoàng", "Huỳnh", "Phan", "Vũ",
	"Võ", "Đặng", "Bùi", "Đỗ", "Hồ", "Ngô", "Dương", "Lý",
}
var commonMiddleNames = []string{
	"Văn", "Thị", "Hữu", "Đức", "Minh", "Quốc", "Thanh", "Ngọc", "Xuân", "Thái",
}
var commonGivenNames = []string{
	"An", "Bình", "Cường", "Dũng", "Giang", "Hà", "Hải", "Hùng", "Hương", "Khánh",
	"Lan", "Linh", "Long", "Mai", "Nam", "Nga", "Phúc", "Quân", "Sơn", "Tâm",
	"Thảo", "Trang", "Trung", "Tuấn", "Vy", "Yến",
}

func GenerateRandomVietnameseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	middle := commonMiddleNames[rand.Intn(len(commonMiddleNames))]
	given := commonGivenNames[rand.Intn(len(commonGivenNames))]
	return surname + " " + middle + " " + given
}

// FoldToASCII bỏ dấu tiếng Việt: tách tổ hợp NFD, loại dấu kết hợp, riêng
// đ/Đ không phải dấu kết hợp nên thay thủ công.
func FoldToASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ReplaceAll(folded, "đ", "d")
	folded = strings.ReplaceAll(folded, "Đ", "D")
	return folded
}

var digits = "0123456789"

// GenerateUsernameFromFullName ghép các phần của họ tên đã bỏ dấu, viết
// thường, kèm 1-3 chữ số để tránh trùng.
func GenerateUsernameFromFullName(fullName string) string {
	ascii := strings.ToLower(FoldToASCII(fullName))
	username := strings.Join(strings.Fields(ascii), "")

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomVietnameseName()
	username := GenerateUsernameFromFullName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Phone:        "09" + GenerateRandomDigits(8),
		Status:       domain.UserStatusActive,
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

func GenerateRandomDigits(length int) string {
	sb := strings.Builder{}
	for i := 0; i < length; i++ {
		sb.WriteByte(digits[rand.Intn(len(digits))])
	}
	return sb.String()
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}
