package domain

import (
	"time"
)

type UserStatus int16

const (
	UserStatusInactive UserStatus = 0
	UserStatusActive   UserStatus = 1
	UserStatusLocked   UserStatus = 2
)

type User struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	FullName     string      `json:"fullName"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Status       UserStatus  `json:"status"`
	DepartmentID *int64      `json:"departmentId"`
	Department   *Department `json:"department,omitempty"`
	Roles        []UserRole  `json:"roles,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	Version      int32       `json:"-"`
}

// UserRole là một lần gán vai trò cho người dùng, tối đa một vai trò chính.
type UserRole struct {
	RoleID    int64  `json:"roleId"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsPrimary bool   `json:"isPrimary"`
}
