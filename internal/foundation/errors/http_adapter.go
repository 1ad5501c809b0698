package errors

import "net/http"

// HTTPErrorAdapter translates classified errors into HTTP status codes and
// the canonical JSON error payload. It does not log: the server middleware
// already logs every failed request once.
type HTTPErrorAdapter struct{}

// NewHTTPErrorAdapter creates an HTTP error adapter.
func NewHTTPErrorAdapter() *HTTPErrorAdapter {
	return &HTTPErrorAdapter{}
}

// HTTPErrorResponse is the JSON payload on every error response.
type HTTPErrorResponse struct {
	Error     string         `json:"error"`
	Code      string         `json:"code,omitempty"`
	Severity  string         `json:"severity,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Retryable bool           `json:"retryable,omitempty"`
}

// StatusCodeFor maps err's category onto an HTTP status. Unclassified
// errors and internal categories map to 500.
func (a *HTTPErrorAdapter) StatusCodeFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	c, ok := AsClassified(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch c.Category() {
	case CategoryConfig:
		return http.StatusBadRequest
	case CategoryAuth:
		return http.StatusUnauthorized
	case CategoryDocset:
		return http.StatusNotFound
	case CategoryNetwork, CategoryValidation:
		return http.StatusBadGateway
	case CategorySchema:
		return http.StatusUnprocessableEntity
	case CategoryRuntime, CategoryServer:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FormatErrorResponse builds the payload for err. The message is the
// classified message alone; the cause chain stays in the server log rather
// than leaking to clients.
func (a *HTTPErrorAdapter) FormatErrorResponse(err error) HTTPErrorResponse {
	if err == nil {
		return HTTPErrorResponse{}
	}
	c, ok := AsClassified(err)
	if !ok {
		return HTTPErrorResponse{Error: err.Error()}
	}
	resp := HTTPErrorResponse{
		Error:     c.Message(),
		Code:      string(c.Category()),
		Severity:  string(c.Severity()),
		Retryable: c.CanRetry(),
	}
	if len(c.Context()) > 0 {
		resp.Details = map[string]any(c.Context())
	}
	return resp
}
