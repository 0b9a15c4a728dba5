package http_handlers

import (
	"net/http"

	"github.com/baechuer/otp-auth-service/internal/domain"
	"github.com/baechuer/otp-auth-service/internal/transport/http/dto"
	"github.com/baechuer/otp-auth-service/internal/transport/http/middleware"
	"github.com/baechuer/otp-auth-service/internal/transport/http/response"
)

// UserHandler serves endpoints behind the Auth middleware.
type UserHandler struct{}

func NewUserHandler() *UserHandler { return &UserHandler{} }

// Profile handles GET /api/user/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}
	response.OK(w, "Profile retrieved", dto.ProfileData{Email: email})
}

// Dashboard handles GET /api/admin/dashboard (ROLE_ADMIN only)
func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}
	roles, _ := middleware.RolesFromContext(r.Context())
	response.OK(w, "Admin dashboard", dto.DashboardData{Email: email, Roles: roles})
}
