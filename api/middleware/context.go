package middleware

import "context"

type contextKey string

const (
	ctxPhone  contextKey = "phone"
	ctxRole   contextKey = "actor_role"
	ctxDevice contextKey = "device"
)

func PhoneFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxPhone).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// DeviceFromContext returns the User-Agent the request arrived with. Services
// compare it against the stored login binding.
func DeviceFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxDevice).(string); ok {
		return v
	}
	return ""
}

// WithPhone injects the principal phone into the context.
func WithPhone(ctx context.Context, phone string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPhone, phone)
}

// WithRole injects the principal role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// WithDevice injects the requesting device into the context.
func WithDevice(ctx context.Context, device string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxDevice, device)
}
