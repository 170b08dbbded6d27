package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

func (h *Handler) GetAllAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.repository.GetAllAreas(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lấy danh sách địa bàn thành công", areas)
}

func (h *Handler) CreateArea(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParentID *int64 `json:"parentId"`
		Code     string `json:"code" validate:"required"`
		Name     string `json:"name" validate:"required"`
		Level    int32  `json:"level" validate:"required,min=1,max=3"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	area := &domain.Area{
		ParentID: req.ParentID,
		Code:     req.Code,
		Name:     req.Name,
		Level:    req.Level,
		IsActive: true,
	}

	if err := h.repository.CreateArea(r.Context(), area); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "areas_code_key":
			h.badRequest(w, r, errors.New("Mã địa bàn đã tồn tại"))
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "areas_parent_id_fkey":
			h.badRequest(w, r, errors.New("Địa bàn cha không tồn tại"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Tạo địa bàn thành công", area)
}

func (h *Handler) GetArea(w http.ResponseWriter, r *http.Request) {
	area := r.Context().Value(AreaCtx).(*domain.Area)
	h.successResponse(w, r, "Lấy thông tin địa bàn thành công", area)
}

func (h *Handler) UpdateArea(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParentID *int64  `json:"parentId"`
		Name     *string `json:"name"`
		Level    *int32  `json:"level" validate:"omitempty,min=1,max=3"`
		IsActive *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	area := r.Context().Value(AreaCtx).(*domain.Area)

	if req.ParentID != nil {
		area.ParentID = req.ParentID
	}
	if req.Name != nil {
		area.Name = *req.Name
	}
	if req.Level != nil {
		area.Level = *req.Level
	}
	if req.IsActive != nil {
		area.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateArea(r.Context(), area); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Cập nhật địa bàn thất bại, vui lòng thử lại")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Cập nhật địa bàn thành công", area)
}

func (h *Handler) DeleteArea(w http.ResponseWriter, r *http.Request) {
	area := r.Context().Value(AreaCtx).(*domain.Area)

	if err := h.repository.DeleteArea(r.Context(), area.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "areas_parent_id_fkey":
			h.errorResponse(w, r, "Địa bàn còn địa bàn con, không thể xoá")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Xoá địa bàn thành công", nil)
}
