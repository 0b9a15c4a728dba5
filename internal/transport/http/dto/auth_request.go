package dto

import (
	"strconv"
	"strings"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,maxbytes=72,password_strength"`
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
}

func (r *SignupRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	return validateStruct(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateStruct(r)
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,number"`
}

// Validate also enforces the configured code length.
func (r *VerifyOTPRequest) Validate(otpLength int) error {
	r.Email = strings.TrimSpace(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)
	if err := validateStruct(r); err != nil {
		return err
	}
	if otpLength > 0 && len(r.OTP) != otpLength {
		return domain.ErrValidation(map[string]string{
			"otp": "otp must be exactly " + strconv.Itoa(otpLength) + " digits",
		})
	}
	return nil
}

// ResendOTPQuery is filled from the ?email= query parameter.
type ResendOTPQuery struct {
	Email string `json:"email" validate:"required,email"`
}

func (q *ResendOTPQuery) Validate() error {
	q.Email = strings.TrimSpace(q.Email)
	return validateStruct(q)
}

// RefreshTokenRequest may be empty when the token travels in the
// Authorization header instead.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (r *RefreshTokenRequest) Validate() error {
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
	return validateStruct(r)
}
