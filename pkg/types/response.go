// Package types defines the JSON envelopes every endpoint responds with:
// {"data": ...} on success, {"error": {...}} on failure.
package types

// SuccessEnvelope wraps a successful response body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error shape. Code matches the pkg/errors
// taxonomy; Details carries per-field validation messages when present.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError for the wire.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
