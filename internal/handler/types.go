package handler

// Error codes returned in API error responses.
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeStoryNotFound = "STORY_NOT_FOUND"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
