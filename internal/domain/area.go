package domain

import (
	"time"
)

// Area là đơn vị hành chính (tỉnh / huyện / xã).
type Area struct {
	ID        int64     `json:"id"`
	ParentID  *int64    `json:"parentId"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Level     int32     `json:"level"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
