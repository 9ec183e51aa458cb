package errors

import "net/http"

// ErrorResponse is the uniform error payload returned by the API.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string                 `json:"message"`
	Hint    string                 `json:"hint,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewErrorResponse builds the wire payload for err, surfacing the hint and
// reportable details when present.
func NewErrorResponse(err error) *ErrorResponse {
	if err == nil {
		return nil
	}
	return &ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Message: err.Error(),
			Hint:    Hint(err),
			Details: Details(err),
		},
	}
}

// HTTPStatusFromErr maps error marks to HTTP status codes. Unknown errors
// are treated as internal.
func HTTPStatusFromErr(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err), IsScheduleConflict(err):
		return http.StatusConflict
	case IsValidation(err), IsInvalidOperation(err), IsInvalidTransition(err), IsInconsistentPayment(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
