package types

// SuccessEnvelope wraps every successful API payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the machine-readable failure body.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every failed API payload.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// PageEnvelope is the legacy admin-table listing shape.
type PageEnvelope struct {
	TotalRows int64 `json:"totalRows"`
	Data      any   `json:"data"`
}
