package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
	"github.com/qltt-vn/market-portal/backend/internal/utils"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(ActorCtx).(*Actor)
	h.successResponse(w, r, "Lấy thông tin cá nhân thành công", actor.User)
}

func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(ActorCtx).(*Actor)

	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(actor.User.PasswordHash), []byte(req.OldPassword)); err != nil {
		h.errorResponse(w, r, "Mật khẩu cũ không đúng")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	actor.User.PasswordHash = string(hashedPassword)

	if err := h.repository.UpdateUser(r.Context(), actor.User); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Đổi mật khẩu thất bại, vui lòng thử lại")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Đổi mật khẩu thành công", nil)
}

func (h *Handler) RequireUpdateEmail(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(ActorCtx).(*Actor)

	var req struct {
		NewEmail string `json:"newEmail" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// Email mới không được trùng với tài khoản khác
	isExists, err := h.repository.CheckEmailIfExists(r.Context(), req.NewEmail)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if isExists {
		h.errorResponse(w, r, "Email đã được sử dụng")
		return
	}

	// Sinh OTP và lưu vào redis
	otp := utils.GenerateRandomOTP()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	if err := h.redisClient.Set(ctx, fmt.Sprintf("otp_%s_change_email_to_%s", actor.User.Username, req.NewEmail), otp, time.Duration(h.config.OTP.Expiration)*time.Second).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishMail(domain.MailMessage{
		Type: "change_email",
		To:   req.NewEmail,
		Data: domain.ChangeEmailMailData{
			FullName:   actor.User.FullName,
			OTP:        otp,
			Expiration: h.config.OTP.Expiration / 60, // trong mail hiển thị theo phút
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Mã xác nhận đổi email đã được gửi qua email", nil)
}

func (h *Handler) ConfirmUpdateEmail(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(ActorCtx).(*Actor)

	var req struct {
		OTP      string `json:"otp" validate:"required"`
		NewEmail string `json:"newEmail" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// Đối chiếu OTP
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	otp, err := h.redisClient.Get(ctx, fmt.Sprintf("otp_%s_change_email_to_%s", actor.User.Username, req.NewEmail)).Result()
	if err != nil {
		h.errorResponse(w, r, "Mã xác nhận không đúng")
		return
	}

	if otp != req.OTP {
		h.errorResponse(w, r, "Mã xác nhận không đúng")
		return
	}

	actor.User.Email = req.NewEmail
	if err := h.repository.UpdateUser(r.Context(), actor.User); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.redisClient.Del(ctx, fmt.Sprintf("otp_%s_change_email_to_%s", actor.User.Username, req.NewEmail)).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Đổi email thành công", nil)
}
