package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

func (h *Handler) GetAllOrgUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.repository.GetAllOrgUnits(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lấy danh sách đơn vị thành công", units)
}

func (h *Handler) CreateOrgUnit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code    string `json:"code" validate:"required"`
		Name    string `json:"name" validate:"required"`
		Address string `json:"address"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	unit := &domain.OrgUnit{
		Code:     req.Code,
		Name:     req.Name,
		Address:  req.Address,
		IsActive: true,
	}

	if err := h.repository.CreateOrgUnit(r.Context(), unit); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "org_units_code_key":
			h.badRequest(w, r, errors.New("Mã đơn vị đã tồn tại"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Tạo đơn vị thành công", unit)
}

func (h *Handler) GetOrgUnit(w http.ResponseWriter, r *http.Request) {
	unit := r.Context().Value(OrgUnitCtx).(*domain.OrgUnit)
	h.successResponse(w, r, "Lấy thông tin đơn vị thành công", unit)
}

func (h *Handler) UpdateOrgUnit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     *string `json:"name"`
		Address  *string `json:"address"`
		IsActive *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	unit := r.Context().Value(OrgUnitCtx).(*domain.OrgUnit)

	if req.Name != nil {
		unit.Name = *req.Name
	}
	if req.Address != nil {
		unit.Address = *req.Address
	}
	if req.IsActive != nil {
		unit.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateOrgUnit(r.Context(), unit); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Cập nhật đơn vị thất bại, vui lòng thử lại")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Cập nhật đơn vị thành công", unit)
}

func (h *Handler) DeleteOrgUnit(w http.ResponseWriter, r *http.Request) {
	unit := r.Context().Value(OrgUnitCtx).(*domain.OrgUnit)

	if err := h.repository.DeleteOrgUnit(r.Context(), unit.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Xoá đơn vị thành công", nil)
}
