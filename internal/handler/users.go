package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
	"github.com/qltt-vn/market-portal/backend/internal/repository"
	"github.com/qltt-vn/market-portal/backend/internal/scope"
	"github.com/qltt-vn/market-portal/backend/internal/utils"
)

// ListUsers trả về danh sách người dùng theo phạm vi của người đang thao tác.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(ActorCtx).(*Actor)

	query := r.URL.Query()

	filter := scope.UserListFilter{
		Query:        query.Get("q"),
		Status:       query.Get("status"),
		Scope:        actor.Scope,
		ViewerID:     &actor.User.ID,
		IsSuperAdmin: actor.IsSuperAdmin,
		IsAdmin:      actor.IsAdmin,
		SortBy:       query.Get("sortBy"),
		SortDir:      query.Get("sortDir"),
	}

	if raw := query.Get("roleId"); raw != "" {
		roleID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "Tham số roleId không hợp lệ")
			return
		}
		filter.RoleID = &roleID
	}

	if raw := query.Get("departmentId"); raw != "" {
		departmentID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "Tham số departmentId không hợp lệ")
			return
		}
		filter.DepartmentID = &departmentID
	}

	if raw := query.Get("page"); raw != "" {
		filter.Page, _ = strconv.Atoi(raw)
	}
	if raw := query.Get("pageSize"); raw != "" {
		filter.PageSize, _ = strconv.Atoi(raw)
	}

	page, err := h.lister.ListUsers(r.Context(), filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lấy danh sách người dùng thành công", page)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username     string  `json:"username"`
		FullName     string  `json:"fullName" validate:"required"`
		Email        string  `json:"email" validate:"required,email"`
		Phone        string  `json:"phone"`
		DepartmentID *int64  `json:"departmentId"`
		RoleIDs      []int64 `json:"roleIds"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// Không truyền tên đăng nhập thì sinh từ họ tên
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = utils.GenerateUsernameFromFullName(req.FullName)
	}

	// Sinh mật khẩu ngẫu nhiên rồi băm
	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Status:       domain.UserStatusActive,
		DepartmentID: req.DepartmentID,
	}

	if err := h.repository.CreateUser(r.Context(), user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "users_username_key":
				h.badRequest(w, r, errors.New("Tên đăng nhập đã tồn tại"))
			case pgErr.ConstraintName == "users_email_key":
				h.badRequest(w, r, errors.New("Email đã tồn tại"))
			case pgErr.ConstraintName == "users_department_id_fkey":
				h.badRequest(w, r, errors.New("Phòng ban không tồn tại"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if len(req.RoleIDs) > 0 {
		assignments := make([]repository.RoleAssignment, 0, len(req.RoleIDs))
		for i, roleID := range req.RoleIDs {
			assignments = append(assignments, repository.RoleAssignment{RoleID: roleID, IsPrimary: i == 0})
		}
		if err := h.repository.AssignRolesToUser(r.Context(), user.ID, assignments); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	if err := h.publishMail(domain.MailMessage{
		Type: "create_user",
		To:   user.Email,
		Data: domain.CreateUserMailData{
			FullName: req.FullName,
			Username: username,
			Password: password,
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Tạo người dùng thành công", user)
}

func (h *Handler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	h.successResponse(w, r, "Lấy thông tin người dùng thành công", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName     *string `json:"fullName"`
		Email        *string `json:"email" validate:"omitempty,email"`
		Phone        *string `json:"phone"`
		Status       *string `json:"status" validate:"omitempty,oneof=active inactive locked"`
		DepartmentID *int64  `json:"departmentId"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Status != nil {
		switch *req.Status {
		case "active":
			user.Status = domain.UserStatusActive
		case "inactive":
			user.Status = domain.UserStatusInactive
		case "locked":
			user.Status = domain.UserStatusLocked
		}
	}
	if req.DepartmentID != nil {
		user.DepartmentID = req.DepartmentID
	}

	if err := h.repository.UpdateUser(r.Context(), user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "users_email_key":
				h.badRequest(w, r, errors.New("Email đã tồn tại"))
			case pgErr.ConstraintName == "users_department_id_fkey":
				h.badRequest(w, r, errors.New("Phòng ban không tồn tại"))
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Cập nhật người dùng thất bại, vui lòng thử lại")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Cập nhật người dùng thành công", user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if err := h.repository.DeleteUser(r.Context(), user.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Xoá người dùng thành công", nil)
}

// ResetUserPassword cấp lại mật khẩu ngẫu nhiên và gửi qua email cho người dùng.
func (h *Handler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user.PasswordHash = string(hashedPassword)
	if err := h.repository.UpdateUser(r.Context(), user); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishMail(domain.MailMessage{
		Type: "admin_reset_password",
		To:   user.Email,
		Data: domain.AdminResetPasswordMailData{
			FullName: user.FullName,
			Username: user.Username,
			Password: password,
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Cấp lại mật khẩu thành công", nil)
}

func (h *Handler) AssignUserRoles(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		Roles []repository.RoleAssignment `json:"roles" validate:"required,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.AssignRolesToUser(r.Context(), user.ID, req.Roles); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "user_roles_role_id_fkey":
			h.badRequest(w, r, errors.New("Vai trò không tồn tại"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Gán vai trò thành công", nil)
}
