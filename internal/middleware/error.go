package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrorCode is the machine-readable kind of an API error. Clients branch on
// the code, never on the message.
type ErrorCode string

// Generic codes; packages serving a domain add their own
const (
	CodeInvalidRequest   ErrorCode = "invalid_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeNotFound         ErrorCode = "not_found"
	CodeMethodNotAllowed ErrorCode = "method_not_allowed"
	CodeConflict         ErrorCode = "conflict"
	CodeRateLimited      ErrorCode = "rate_limited"
	CodeUnavailable      ErrorCode = "unavailable"
	CodeInternal         ErrorCode = "internal_error"
)

var statusCodes = map[int]ErrorCode{
	http.StatusBadRequest:          CodeInvalidRequest,
	http.StatusNotFound:            CodeNotFound,
	http.StatusMethodNotAllowed:    CodeMethodNotAllowed,
	http.StatusConflict:            CodeConflict,
	http.StatusTooManyRequests:     CodeRateLimited,
	http.StatusServiceUnavailable:  CodeUnavailable,
	http.StatusInternalServerError: CodeInternal,
}

// CodeForStatus returns the generic code of an HTTP status
func CodeForStatus(status int) ErrorCode {
	if code, ok := statusCodes[status]; ok {
		return code
	}
	if status >= http.StatusInternalServerError {
		return CodeInternal
	}
	return CodeInvalidRequest
}

// APIError pairs an HTTP status with a stable code and a message
type APIError struct {
	Status  int
	Code    ErrorCode
	Message string
}

func (e APIError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// ErrorResponse is the envelope of every error answer
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// Respond writes e with optional details
func Respond(w http.ResponseWriter, e APIError, details map[string]interface{}) {
	RespondWithJSON(w, e.Status, ErrorResponse{
		Error: ErrorDetail{
			Code:      e.Code,
			Message:   e.Message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// RespondWithError answers with the generic code of statusCode
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	Respond(w, APIError{Status: statusCode, Code: CodeForStatus(statusCode), Message: message}, nil)
}

func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	Respond(w, APIError{Status: statusCode, Code: CodeForStatus(statusCode), Message: message}, details)
}

// RespondWithValidationErrors answers 400 listing every rejected request field
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	Respond(w, APIError{Status: http.StatusBadRequest, Code: CodeValidationFailed, Message: "validation failed"},
		map[string]interface{}{"validation_errors": errors})
}

// RespondWithFieldErrors answers with the field errors of a rejected form
func RespondWithFieldErrors(w http.ResponseWriter, e APIError, fields map[string]string) {
	Respond(w, e, map[string]interface{}{"fields": fields})
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
