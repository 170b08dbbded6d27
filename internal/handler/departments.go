package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

func (h *Handler) GetAllDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.repository.ListAllDepartments(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lấy danh sách phòng ban thành công", departments)
}

// GetMyDepartmentScope trả về các phòng ban nằm trong phạm vi của người đang
// thao tác, dùng cho các ô chọn phòng ban trên giao diện.
func (h *Handler) GetMyDepartmentScope(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(ActorCtx).(*Actor)

	departments, err := h.scopes.ListDepartmentScope(r.Context(), actor.Scope)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lấy phạm vi phòng ban thành công", departments)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParentID *int64 `json:"parentId"`
		Code     string `json:"code" validate:"required"`
		Name     string `json:"name" validate:"required"`
		Level    int32  `json:"level" validate:"required,min=1,max=3"`
		Path     string `json:"path" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	department := &domain.Department{
		ParentID: req.ParentID,
		Code:     req.Code,
		Name:     req.Name,
		Level:    req.Level,
		Path:     req.Path,
		IsActive: true,
	}

	if err := h.repository.CreateDepartment(r.Context(), department); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "departments_code_key":
			h.badRequest(w, r, errors.New("Mã phòng ban đã tồn tại"))
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "departments_parent_id_fkey":
			h.badRequest(w, r, errors.New("Phòng ban cha không tồn tại"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// Cây tổ chức đã đổi, phạm vi đã cache không còn đúng
	h.scopes.ResetCache()

	h.successResponse(w, r, "Tạo phòng ban thành công", department)
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	department := r.Context().Value(DepartmentCtx).(*domain.Department)
	h.successResponse(w, r, "Lấy thông tin phòng ban thành công", department)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParentID *int64  `json:"parentId"`
		Name     *string `json:"name"`
		Level    *int32  `json:"level" validate:"omitempty,min=1,max=3"`
		Path     *string `json:"path"`
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

	department := r.Context().Value(DepartmentCtx).(*domain.Department)

	if req.ParentID != nil {
		department.ParentID = req.ParentID
	}
	if req.Name != nil {
		department.Name = *req.Name
	}
	if req.Level != nil {
		department.Level = *req.Level
	}
	if req.Path != nil {
		department.Path = *req.Path
	}
	if req.IsActive != nil {
		department.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateDepartment(r.Context(), department); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Cập nhật phòng ban thất bại, vui lòng thử lại")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.scopes.ResetCache()

	h.successResponse(w, r, "Cập nhật phòng ban thành công", department)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	department := r.Context().Value(DepartmentCtx).(*domain.Department)

	if err := h.repository.DeleteDepartment(r.Context(), department.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "departments_parent_id_fkey":
			h.errorResponse(w, r, "Phòng ban còn phòng ban con, không thể xoá")
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_department_id_fkey":
			h.errorResponse(w, r, "Phòng ban còn người dùng, không thể xoá")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.scopes.ResetCache()

	h.successResponse(w, r, "Xoá phòng ban thành công", nil)
}
