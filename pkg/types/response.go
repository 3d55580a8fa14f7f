// Package types holds the wire envelopes shared by every listing endpoint.
package types

// SuccessEnvelope wraps every 2xx body so clients can rely on a stable
// top-level "data" key regardless of the payload shape.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape. Code carries the machine-readable
// taxonomy value (FINISH_MISMATCH, INSUFFICIENT_INVENTORY, ...); Details is
// set only for codes with field-level context, such as validation failures.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps non-2xx bodies under a top-level "error" key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
