package handler

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
