package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/qltt-vn/market-portal/backend/internal/auth"
	"github.com/qltt-vn/market-portal/backend/internal/domain"
	"github.com/qltt-vn/market-portal/backend/internal/scope"
)

// Actor là người thao tác của request hiện tại: hồ sơ, tập quyền và phạm vi
// phòng ban. Tính lại cho từng request, không giữ qua phiên.
type Actor struct {
	User         *domain.User
	Roles        []*domain.Role
	Permissions  auth.PermissionSet
	IsAdmin      bool
	IsSuperAdmin bool
	Scope        scope.Scope
}

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("đã xử lý request", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // in stack qua slog sẽ rất rối
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Lấy token từ cookie
		cookie, err := r.Cookie("__qltt_portal_token")
		if err != nil {
			switch {
			case errors.Is(err, http.ErrNoCookie):
				h.errorResponse(w, r, "Bạn chưa đăng nhập")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		// Xác thực token
		tokenString := cookie.Value
		claims := &AuthClaims{}
		_, err = jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		})
		if err != nil {
			h.errorResponse(w, r, "Phiên đăng nhập không hợp lệ")
			return
		}

		ctx := context.WithValue(r.Context(), SubCtxKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actor nạp hồ sơ, vai trò và tập quyền của người đang thao tác rồi gắn vào
// context. Phạm vi phòng ban lấy từ phòng ban đang gán cho người đó.
func (h *Handler) actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subString := r.Context().Value(SubCtxKey).(string)

		sub, err := strconv.ParseInt(subString, 10, 64)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		user, err := h.repository.GetUserByID(r.Context(), sub)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "Tài khoản không tồn tại")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		if user.Status != domain.UserStatusActive {
			h.errorResponse(w, r, "Tài khoản đã bị khoá hoặc vô hiệu hoá")
			return
		}

		roles, err := h.repository.ListRolesByUserID(r.Context(), user.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		codes, err := h.repository.ListPermissionCodesByUserID(r.Context(), user.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		actor := &Actor{
			User:        user,
			Roles:       roles,
			Permissions: auth.NewPermissionSet(codes),
		}
		for _, role := range roles {
			if role.IsAdmin {
				actor.IsAdmin = true
			}
			if role.IsSuperAdmin {
				actor.IsSuperAdmin = true
			}
		}
		if actor.Permissions.HasAdminAccess() {
			actor.IsSuperAdmin = true
		}

		if user.DepartmentID != nil {
			department, err := h.repository.GetDepartmentByID(r.Context(), *user.DepartmentID)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				h.internalServerError(w, r, err)
				return
			}
			if department != nil {
				user.Department = department
				actor.Scope = scope.Scope{
					DepartmentID: &department.ID,
					Level:        &department.Level,
					Path:         department.Path,
				}
			}
		}

		ctx := context.WithValue(r.Context(), ActorCtx, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requirePermission(code string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := r.Context().Value(ActorCtx).(*Actor)
			if !actor.Permissions.HasPermission(code) {
				h.errorResponse(w, r, "Bạn không có quyền thực hiện thao tác này")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) preventOperateInitialAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(UserInfoCtx).(*domain.User)
		if user.Username == h.config.InitialAdmin.Username {
			h.errorResponse(w, r, "Không được thao tác trên tài khoản quản trị gốc")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// parseIDParam đọc tham số {id} trên URL.
func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) userInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "ID người dùng không hợp lệ")
			return
		}

		user, err := h.repository.GetUserByID(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "Người dùng không tồn tại")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), UserInfoCtx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) roleInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roleID, err := parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "ID vai trò không hợp lệ")
			return
		}

		role, err := h.repository.GetRoleByID(r.Context(), roleID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "Vai trò không tồn tại")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), RoleInfoCtx, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) departmentInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		departmentID, err := parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "ID phòng ban không hợp lệ")
			return
		}

		department, err := h.repository.GetDepartmentByID(r.Context(), departmentID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "Phòng ban không tồn tại")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), DepartmentCtx, department)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) orgUnitInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		unitID, err := parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "ID đơn vị không hợp lệ")
			return
		}

		unit, err := h.repository.GetOrgUnitByID(r.Context(), unitID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "Đơn vị không tồn tại")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), OrgUnitCtx, unit)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) catalogInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		catalogID, err := parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "ID danh mục không hợp lệ")
			return
		}

		catalog, err := h.repository.GetCatalogByID(r.Context(), catalogID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "Danh mục không tồn tại")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), CatalogCtx, catalog)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) catalogItemInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		itemID, err := parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "ID mục danh mục không hợp lệ")
			return
		}

		item, err := h.repository.GetCatalogItemByID(r.Context(), itemID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "Mục danh mục không tồn tại")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), CatalogItemCtx, item)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) areaInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		areaID, err := parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "ID địa bàn không hợp lệ")
			return
		}

		area, err := h.repository.GetAreaByID(r.Context(), areaID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "Địa bàn không tồn tại")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), AreaCtx, area)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) storeInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		storeID, err := parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "ID cơ sở kinh doanh không hợp lệ")
			return
		}

		store, err := h.repository.GetStoreByID(r.Context(), storeID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "Cơ sở kinh doanh không tồn tại")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), StoreCtx, store)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
