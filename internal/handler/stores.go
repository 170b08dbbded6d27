package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
	"github.com/qltt-vn/market-portal/backend/internal/repository"
)

const (
	defaultStorePageSize = 20
	maxStorePageSize     = 100
)

type storePage struct {
	Data  []*domain.Store `json:"data"`
	Total int64           `json:"total"`
}

// storeSelectionFromRequest dựng điều kiện lọc cơ sở kinh doanh từ query string
// và phạm vi phòng ban của người đang thao tác. Trả về ok = false khi phạm vi
// rỗng, lúc đó trang kết quả luôn rỗng.
func (h *Handler) storeSelectionFromRequest(r *http.Request) (repository.StoreSelection, bool, error) {
	actor := r.Context().Value(ActorCtx).(*Actor)
	query := r.URL.Query()

	sel := repository.StoreSelection{
		Query:      strings.TrimSpace(query.Get("q")),
		ActiveOnly: query.Get("activeOnly") == "true",
	}

	if raw := query.Get("areaId"); raw != "" {
		areaID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return sel, false, errors.New("Tham số areaId không hợp lệ")
		}
		sel.AreaID = &areaID
	}

	// Super admin thấy toàn bộ, còn lại giới hạn theo phạm vi phòng ban
	if !actor.IsSuperAdmin {
		departments, err := h.scopes.ListDepartmentScope(r.Context(), actor.Scope)
		if err != nil {
			return sel, false, err
		}
		if len(departments) == 0 {
			return sel, false, nil
		}
		sel.DepartmentIDs = make([]int64, 0, len(departments))
		for _, d := range departments {
			sel.DepartmentIDs = append(sel.DepartmentIDs, d.ID)
		}
	}

	return sel, true, nil
}

func (h *Handler) ListStores(w http.ResponseWriter, r *http.Request) {
	sel, ok, err := h.storeSelectionFromRequest(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if !ok {
		h.successResponse(w, r, "Lấy danh sách cơ sở kinh doanh thành công", storePage{Data: []*domain.Store{}, Total: 0})
		return
	}

	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("pageSize"))
	if pageSize < 1 {
		pageSize = defaultStorePageSize
	}
	if pageSize > maxStorePageSize {
		pageSize = maxStorePageSize
	}
	sel.Offset = (page - 1) * pageSize
	sel.Limit = pageSize

	stores, total, err := h.repository.SelectStores(r.Context(), sel)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lấy danh sách cơ sở kinh doanh thành công", storePage{Data: stores, Total: total})
}

func (h *Handler) CreateStore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code         string `json:"code"`
		Name         string `json:"name" validate:"required"`
		OwnerName    string `json:"ownerName"`
		TaxCode      string `json:"taxCode"`
		Phone        string `json:"phone"`
		Address      string `json:"address"`
		AreaID       *int64 `json:"areaId"`
		DepartmentID *int64 `json:"departmentId"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	actor := r.Context().Value(ActorCtx).(*Actor)

	// Không truyền mã thì sinh tự động
	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = "CS-" + strings.ToUpper(uuid.NewString()[:8])
	}

	// Không truyền phòng ban quản lý thì mặc định là phòng ban của người tạo
	departmentID := req.DepartmentID
	if departmentID == nil {
		departmentID = actor.Scope.DepartmentID
	}

	store := &domain.Store{
		Code:         code,
		Name:         req.Name,
		OwnerName:    req.OwnerName,
		TaxCode:      req.TaxCode,
		Phone:        req.Phone,
		Address:      req.Address,
		AreaID:       req.AreaID,
		DepartmentID: departmentID,
		IsActive:     true,
	}

	if err := h.repository.CreateStore(r.Context(), store); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "stores_code_key":
				h.badRequest(w, r, errors.New("Mã cơ sở kinh doanh đã tồn tại"))
			case pgErr.ConstraintName == "stores_area_id_fkey":
				h.badRequest(w, r, errors.New("Địa bàn không tồn tại"))
			case pgErr.ConstraintName == "stores_department_id_fkey":
				h.badRequest(w, r, errors.New("Phòng ban không tồn tại"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Tạo cơ sở kinh doanh thành công", store)
}

func (h *Handler) GetStore(w http.ResponseWriter, r *http.Request) {
	store := r.Context().Value(StoreCtx).(*domain.Store)

	if store.DepartmentID != nil {
		department, err := h.repository.GetDepartmentByID(r.Context(), *store.DepartmentID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			h.internalServerError(w, r, err)
			return
		}
		store.Department = department
	}

	h.successResponse(w, r, "Lấy thông tin cơ sở kinh doanh thành công", store)
}

func (h *Handler) UpdateStore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         *string `json:"name"`
		OwnerName    *string `json:"ownerName"`
		TaxCode      *string `json:"taxCode"`
		Phone        *string `json:"phone"`
		Address      *string `json:"address"`
		AreaID       *int64  `json:"areaId"`
		DepartmentID *int64  `json:"departmentId"`
		IsActive     *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	store := r.Context().Value(StoreCtx).(*domain.Store)

	if req.Name != nil {
		store.Name = *req.Name
	}
	if req.OwnerName != nil {
		store.OwnerName = *req.OwnerName
	}
	if req.TaxCode != nil {
		store.TaxCode = *req.TaxCode
	}
	if req.Phone != nil {
		store.Phone = *req.Phone
	}
	if req.Address != nil {
		store.Address = *req.Address
	}
	if req.AreaID != nil {
		store.AreaID = req.AreaID
	}
	if req.DepartmentID != nil {
		store.DepartmentID = req.DepartmentID
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateStore(r.Context(), store); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Cập nhật cơ sở kinh doanh thất bại, vui lòng thử lại")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Cập nhật cơ sở kinh doanh thành công", store)
}

func (h *Handler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	store := r.Context().Value(StoreCtx).(*domain.Store)

	if err := h.repository.DeleteStore(r.Context(), store.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Xoá cơ sở kinh doanh thành công", nil)
}
