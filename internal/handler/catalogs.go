package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

func (h *Handler) GetAllCatalogs(w http.ResponseWriter, r *http.Request) {
	catalogs, err := h.repository.GetAllCatalogs(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lấy danh sách danh mục thành công", catalogs)
}

func (h *Handler) CreateCatalog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code        string `json:"code" validate:"required"`
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	catalog := &domain.Catalog{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}

	if err := h.repository.CreateCatalog(r.Context(), catalog); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "catalogs_code_key":
			h.badRequest(w, r, errors.New("Mã danh mục đã tồn tại"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Tạo danh mục thành công", catalog)
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := r.Context().Value(CatalogCtx).(*domain.Catalog)
	h.successResponse(w, r, "Lấy thông tin danh mục thành công", catalog)
}

func (h *Handler) UpdateCatalog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	catalog := r.Context().Value(CatalogCtx).(*domain.Catalog)

	if req.Name != nil {
		catalog.Name = *req.Name
	}
	if req.Description != nil {
		catalog.Description = *req.Description
	}
	if req.IsActive != nil {
		catalog.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateCatalog(r.Context(), catalog); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Cập nhật danh mục thất bại, vui lòng thử lại")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Cập nhật danh mục thành công", catalog)
}

func (h *Handler) DeleteCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := r.Context().Value(CatalogCtx).(*domain.Catalog)

	if err := h.repository.DeleteCatalog(r.Context(), catalog.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Xoá danh mục thành công", nil)
}

func (h *Handler) GetCatalogItems(w http.ResponseWriter, r *http.Request) {
	catalog := r.Context().Value(CatalogCtx).(*domain.Catalog)

	items, err := h.repository.GetCatalogItems(r.Context(), catalog.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lấy danh sách mục thành công", items)
}

func (h *Handler) CreateCatalogItem(w http.ResponseWriter, r *http.Request) {
	catalog := r.Context().Value(CatalogCtx).(*domain.Catalog)

	var req struct {
		Code      string `json:"code" validate:"required"`
		Name      string `json:"name" validate:"required"`
		SortOrder int32  `json:"sortOrder"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	item := &domain.CatalogItem{
		CatalogID: catalog.ID,
		Code:      req.Code,
		Name:      req.Name,
		SortOrder: req.SortOrder,
		IsActive:  true,
	}

	if err := h.repository.CreateCatalogItem(r.Context(), item); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "catalog_items_catalog_id_code_key":
			h.badRequest(w, r, errors.New("Mã mục đã tồn tại trong danh mục"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Tạo mục danh mục thành công", item)
}

func (h *Handler) UpdateCatalogItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      *string `json:"name"`
		SortOrder *int32  `json:"sortOrder"`
		IsActive  *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	item := r.Context().Value(CatalogItemCtx).(*domain.CatalogItem)

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateCatalogItem(r.Context(), item); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Cập nhật mục danh mục thất bại, vui lòng thử lại")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Cập nhật mục danh mục thành công", item)
}

func (h *Handler) DeleteCatalogItem(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(CatalogItemCtx).(*domain.CatalogItem)

	if err := h.repository.DeleteCatalogItem(r.Context(), item.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Xoá mục danh mục thành công", nil)
}
