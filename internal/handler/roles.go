package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

func (h *Handler) GetAllRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.repository.GetAllRoles(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lấy danh sách vai trò thành công", roles)
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code         string   `json:"code" validate:"required"`
		Name         string   `json:"name" validate:"required"`
		Description  string   `json:"description"`
		IsAdmin      bool     `json:"isAdmin"`
		IsSuperAdmin bool     `json:"isSuperAdmin"`
		Permissions  []string `json:"permissions"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	role := &domain.Role{
		Code:         req.Code,
		Name:         req.Name,
		Description:  req.Description,
		IsAdmin:      req.IsAdmin,
		IsSuperAdmin: req.IsSuperAdmin,
		Permissions:  req.Permissions,
	}
	if role.Permissions == nil {
		role.Permissions = []string{}
	}

	if err := h.repository.CreateRole(r.Context(), role); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "roles_code_key":
			h.badRequest(w, r, errors.New("Mã vai trò đã tồn tại"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Tạo vai trò thành công", role)
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	role := r.Context().Value(RoleInfoCtx).(*domain.Role)
	h.successResponse(w, r, "Lấy thông tin vai trò thành công", role)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         *string   `json:"name"`
		Description  *string   `json:"description"`
		IsAdmin      *bool     `json:"isAdmin"`
		IsSuperAdmin *bool     `json:"isSuperAdmin"`
		Permissions  *[]string `json:"permissions"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	role := r.Context().Value(RoleInfoCtx).(*domain.Role)

	if req.Name != nil {
		role.Name = *req.Name
	}
	if req.Description != nil {
		role.Description = *req.Description
	}
	if req.IsAdmin != nil {
		role.IsAdmin = *req.IsAdmin
	}
	if req.IsSuperAdmin != nil {
		role.IsSuperAdmin = *req.IsSuperAdmin
	}
	if req.Permissions != nil {
		role.Permissions = *req.Permissions
	}

	if err := h.repository.UpdateRole(r.Context(), role); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Cập nhật vai trò thất bại, vui lòng thử lại")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Cập nhật vai trò thành công", role)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	role := r.Context().Value(RoleInfoCtx).(*domain.Role)

	if err := h.repository.DeleteRole(r.Context(), role.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "user_roles_role_id_fkey":
			h.errorResponse(w, r, "Vai trò đang được gán cho người dùng, không thể xoá")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Xoá vai trò thành công", nil)
}
