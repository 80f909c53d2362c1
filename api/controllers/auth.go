package controllers

import (
	"context"
	"net/http"

	"github.com/bechdu/buyback-backend/api/responses"
	"github.com/bechdu/buyback-backend/api/validators"
	internalauth "github.com/bechdu/buyback-backend/internal/auth"
	"github.com/bechdu/buyback-backend/pkg/logger"
)

type otpService interface {
	SendOTP(ctx context.Context, phone string) error
	Login(ctx context.Context, phone, otp, device string) (*internalauth.LoginResult, error)
}

type sendOTPRequest struct {
	Phone string `json:"phone" validate:"required,len=10,numeric"`
}

type loginRequest struct {
	Phone string `json:"phone" validate:"required,len=10,numeric"`
	OTP   string `json:"otp" validate:"required,len=4,numeric"`
}

// SendOTP delivers a login code to a registered partner or pickup person.
func SendOTP(svc otpService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendOTPRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SendOTP(r.Context(), req.Phone); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "OTP sent"})
	}
}

// Login exchanges a valid OTP for an access token. The User-Agent becomes the
// session's device binding.
func Login(svc otpService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), req.Phone, req.OTP, r.UserAgent())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
