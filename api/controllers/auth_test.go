package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	internalauth "github.com/bechdu/buyback-backend/internal/auth"
	"github.com/bechdu/buyback-backend/pkg/enums"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/types"
)

type fakeOTPService struct {
	sendFn  func(ctx context.Context, phone string) error
	loginFn func(ctx context.Context, phone, otp, device string) (*internalauth.LoginResult, error)
}

func (f *fakeOTPService) SendOTP(ctx context.Context, phone string) error {
	if f.sendFn != nil {
		return f.sendFn(ctx, phone)
	}
	return nil
}

func (f *fakeOTPService) Login(ctx context.Context, phone, otp, device string) (*internalauth.LoginResult, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, phone, otp, device)
	}
	return &internalauth.LoginResult{Token: "token", Role: enums.RolePartner, Phone: phone}, nil
}

func TestSendOTPValidatesPhone(t *testing.T) {
	handler := SendOTP(&fakeOTPService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp", strings.NewReader(`{"phone":"12345"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short phone, got %d", rec.Code)
	}
}

func TestSendOTPDelegatesToService(t *testing.T) {
	var gotPhone string
	svc := &fakeOTPService{sendFn: func(ctx context.Context, phone string) error {
		gotPhone = phone
		return nil
	}}
	handler := SendOTP(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp", strings.NewReader(`{"phone":"9876543210"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotPhone != "9876543210" {
		t.Fatalf("service got phone %q", gotPhone)
	}
}

func TestSendOTPUnknownAccount(t *testing.T) {
	svc := &fakeOTPService{sendFn: func(ctx context.Context, phone string) error {
		return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}}
	handler := SendOTP(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp", strings.NewReader(`{"phone":"9876543210"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLoginPassesUserAgentAsDevice(t *testing.T) {
	var gotDevice string
	svc := &fakeOTPService{loginFn: func(ctx context.Context, phone, otp, device string) (*internalauth.LoginResult, error) {
		gotDevice = device
		return &internalauth.LoginResult{Token: "jwt", Role: enums.RolePartner, Phone: phone}, nil
	}}
	handler := Login(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"phone":"9876543210","otp":"4321"}`))
	req.Header.Set("User-Agent", "Mozilla/5.0 (Android)")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotDevice != "Mozilla/5.0 (Android)" {
		t.Fatalf("expected user agent as device, got %q", gotDevice)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	payload := body.Data.(map[string]any)
	if payload["token"] != "jwt" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestLoginValidatesOTPShape(t *testing.T) {
	handler := Login(&fakeOTPService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"phone":"9876543210","otp":"12"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short otp, got %d", rec.Code)
	}
}
