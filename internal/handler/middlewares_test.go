package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qltt-vn/market-portal/backend/internal/auth"
	"github.com/qltt-vn/market-portal/backend/internal/config"
	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

func newActorRequest(t *testing.T, actor *Actor) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	return req.WithContext(context.WithValue(req.Context(), ActorCtx, actor))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestRequirePermission(t *testing.T) {
	h := &Handler{}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.successResponse(w, r, "ok", nil)
	})

	tests := []struct {
		name        string
		granted     []string
		wantSuccess bool
	}{
		{name: "có quyền trực tiếp", granted: []string{"sa.iam.user.read"}, wantSuccess: true},
		{name: "có quyền qua alias", granted: []string{"USER_READ"}, wantSuccess: true},
		{name: "admin đi tắt", granted: []string{"ADMIN:ACCESS"}, wantSuccess: true},
		{name: "không có quyền", granted: []string{"sa.store.read"}, wantSuccess: false},
		{name: "tập quyền rỗng", granted: nil, wantSuccess: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := &Actor{
				User:        &domain.User{ID: 1},
				Permissions: auth.NewPermissionSet(tt.granted),
			}

			rec := httptest.NewRecorder()
			h.requirePermission("sa.iam.user.read")(next).ServeHTTP(rec, newActorRequest(t, actor))

			resp := decodeResponse(t, rec)
			assert.Equal(t, tt.wantSuccess, resp.Success)
		})
	}
}

func TestPreventOperateInitialAdmin(t *testing.T) {
	cfg := &config.Config{}
	cfg.InitialAdmin.Username = "admin"
	h := &Handler{config: cfg}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.successResponse(w, r, "ok", nil)
	})

	tests := []struct {
		name        string
		username    string
		wantSuccess bool
	}{
		{name: "tài khoản gốc bị chặn", username: "admin", wantSuccess: false},
		{name: "tài khoản thường đi qua", username: "nguyenvanan", wantSuccess: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/users/1", nil)
			req = req.WithContext(context.WithValue(req.Context(), UserInfoCtx, &domain.User{Username: tt.username}))

			rec := httptest.NewRecorder()
			h.preventOperateInitialAdmin(next).ServeHTTP(rec, req)

			resp := decodeResponse(t, rec)
			assert.Equal(t, tt.wantSuccess, resp.Success)
		})
	}
}

func TestAuthRejectsMissingCookie(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "bi-mat"
	h := &Handler{config: cfg}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("không được gọi tới handler phía sau")
	})

	rec := httptest.NewRecorder()
	h.auth(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/my-info", nil))

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
}

func TestAuthRejectsBadToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "bi-mat"
	h := &Handler{config: cfg}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("không được gọi tới handler phía sau")
	})

	req := httptest.NewRequest(http.MethodGet, "/my-info", nil)
	req.AddCookie(&http.Cookie{Name: authCookieName, Value: "token-rac"})

	rec := httptest.NewRecorder()
	h.auth(next).ServeHTTP(rec, req)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
}
