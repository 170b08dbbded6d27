package domain

import (
	"time"
)

// Store là một cơ sở kinh doanh trong sổ đăng ký do Đội QLTT quản lý.
type Store struct {
	ID           int64       `json:"id"`
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	OwnerName    string      `json:"ownerName"`
	TaxCode      string      `json:"taxCode"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	AreaID       *int64      `json:"areaId"`
	DepartmentID *int64      `json:"departmentId"`
	Department   *Department `json:"department,omitempty"`
	IsActive     bool        `json:"isActive"`
	CreatedAt    time.Time   `json:"createdAt"`
	Version      int32       `json:"-"`
}
