package adminapi

import "encoding/json"

// APIError is the error body the fixture server writes and the client reads
// back when a request is rejected.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps APIError as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// decodeErrorEnvelope extracts an APIError from a rejected response body.
// Bodies in any other shape (Django's {"detail": ...}, HTML) report false.
func decodeErrorEnvelope(body []byte) (APIError, bool) {
	var envelope ErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Code == "" {
		return APIError{}, false
	}
	return envelope.Error, true
}
