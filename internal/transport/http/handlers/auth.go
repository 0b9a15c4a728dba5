package http_handlers

import (
	"net/http"

	"github.com/baechuer/otp-auth-service/internal/application/auth"
	"github.com/baechuer/otp-auth-service/internal/domain"
	"github.com/baechuer/otp-auth-service/internal/logger"
	"github.com/baechuer/otp-auth-service/internal/transport/http/dto"
	"github.com/baechuer/otp-auth-service/internal/transport/http/middleware"
	"github.com/baechuer/otp-auth-service/internal/transport/http/response"
)

const (
	msgSignedUp    = "User registered successfully. Please check your email for OTP verification."
	msgVerified    = "Email verified successfully"
	msgOTPResent   = "OTP sent successfully"
	outcomeSuccess = "success"
)

type AuthHandler struct {
	svc       *auth.Service
	otpLength int
}

func NewAuthHandler(svc *auth.Service, otpLength int) *AuthHandler {
	return &AuthHandler{svc: svc, otpLength: otpLength}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Signup(r.Context(), auth.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if u.ID != "" {
		middleware.SignupsTotal.WithLabelValues(outcomeSuccess).Inc()
		middleware.OTPIssuedTotal.WithLabelValues(middleware.Outcome(err, "delivered")).Inc()
	} else {
		middleware.SignupsTotal.WithLabelValues(middleware.Outcome(err, outcomeSuccess)).Inc()
	}
	if err != nil {
		// a delivery failure still leaves a created account behind
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", u.ID).
		Msg("user_signed_up")

	response.Created(w, msgSignedUp, dto.SignupData{Email: u.Email})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	middleware.LoginAttemptsTotal.WithLabelValues(middleware.Outcome(err, outcomeSuccess)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("user_logged_in")

	response.WriteJSON(w, http.StatusOK, authResponse(res))
}

// VerifyOTP handles POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(h.otpLength); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.VerifyOTP(r.Context(), req.Email, req.OTP)
	middleware.OTPVerifiedTotal.WithLabelValues(middleware.Outcome(err, outcomeSuccess)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", u.ID).
		Msg("email_verified")

	response.OK(w, msgVerified, nil)
}

// ResendOTP handles POST /api/auth/resend-otp?email=
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	q := dto.ResendOTPQuery{Email: r.URL.Query().Get("email")}
	if err := q.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	err := h.svc.ResendOTP(r.Context(), q.Email)
	if err == nil || domain.Is(err, "otp_delivery_failed") {
		middleware.OTPIssuedTotal.WithLabelValues(middleware.Outcome(err, "delivered")).Inc()
	}
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, msgOTPResent, nil)
}

// RefreshToken handles POST /api/auth/refresh-token. The JSON body is
// preferred; an empty body falls back to Authorization: Bearer.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if r.ContentLength != 0 {
		if err := response.DecodeJSON(r, &req); err != nil {
			response.WriteError(w, r, err)
			return
		}
	}
	if req.RefreshToken == "" {
		if raw, err := middleware.BearerToken(r); err == nil {
			req.RefreshToken = raw
		}
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	middleware.TokenRefreshTotal.WithLabelValues(middleware.Outcome(err, outcomeSuccess)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, authResponse(res))
}

func authResponse(res auth.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		TokenType:    res.Tokens.TokenType,
		ExpiresIn:    res.Tokens.ExpiresIn,
		User:         dto.NewUserView(res.User),
	}
}
