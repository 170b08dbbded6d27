package domain

import (
	"errors"
	"time"
)

// ErrScopeFnUnavailable báo hiệu hàm fn_department_scope chưa được cài trên
// database, caller sẽ chuyển sang tính phạm vi ở phía ứng dụng.
var ErrScopeFnUnavailable = errors.New("hàm fn_department_scope không tồn tại trên database")

// Department là một đơn vị trong cây tổ chức (Cục -> Chi cục -> Đội).
// Path là chuỗi tổ tiên dạng "1.5.12", nhất quán với chuỗi ParentID.
type Department struct {
	ID        int64     `json:"id"`
	ParentID  *int64    `json:"parentId"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Level     int32     `json:"level"`
	Path      string    `json:"path"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
