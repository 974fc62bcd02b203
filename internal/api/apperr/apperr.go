// Package apperr defines the structured rejection envelope shared by
// middleware and handlers. It sits below both so either side can emit
// rejections without depending on the router package.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/surjeetsr38/gyansathi-backend/internal/quota"
)

// Machine-readable rejection codes. Clients branch on these, not on messages.
const (
	CodeRateLimitHit       = "RATE_LIMIT_HIT"
	CodeNoToken            = "NO_TOKEN"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeEmptyPrompt        = "EMPTY_PROMPT"
	CodePromptTooLong      = "PROMPT_TOO_LONG"
	CodeUnsafeInput        = "UNSAFE_INPUT"
	CodeAbusivePattern     = "ABUSIVE_PATTERN"
	CodeInvalidControlChar = "INVALID_CONTROL_CHARS"
	CodeDailyQuotaExceeded = "DAILY_QUOTA_EXCEEDED"
	CodeServerError        = "SERVER_ERROR"
	CodeMissingGeminiKey   = "MISSING_GEMINI_KEY"
	CodeUpstreamError      = "UPSTREAM_GEMINI_ERROR"
	CodeUpstream429        = "UPSTREAM_GEMINI_429"
)

// AppError is the structured rejection every pipeline guard terminates with.
type AppError struct {
	Status        int         `json:"-"`
	Code          string      `json:"code"`
	Message       string      `json:"error"`
	RetryAfterSec int         `json:"retryAfterSec,omitempty"`
	Quota         *quota.View `json:"quota,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

// WithQuota returns a copy of e carrying the caller's current quota view.
func (e *AppError) WithQuota(v quota.View) *AppError {
	cp := *e
	cp.Quota = &v
	return &cp
}

var (
	ErrNoToken       = &AppError{Status: http.StatusUnauthorized, Code: CodeNoToken, Message: "missing bearer token"}
	ErrInvalidToken  = &AppError{Status: http.StatusUnauthorized, Code: CodeInvalidToken, Message: "invalid or expired token"}
	ErrServerError   = &AppError{Status: http.StatusInternalServerError, Code: CodeServerError, Message: "internal server error"}
	ErrMissingAPIKey = &AppError{Status: http.StatusInternalServerError, Code: CodeMissingGeminiKey, Message: "generation service is not configured"}
)

func NewInvalidRequestError(msg string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: CodeInvalidRequest, Message: msg}
}

func NewSanitizeError(code, msg string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: code, Message: msg}
}

func NewRateLimitError(retryAfterSec int) *AppError {
	return &AppError{
		Status:        http.StatusTooManyRequests,
		Code:          CodeRateLimitHit,
		Message:       "too many requests, slow down",
		RetryAfterSec: retryAfterSec,
	}
}

func NewQuotaExceededError(v quota.View) *AppError {
	return &AppError{
		Status:  http.StatusTooManyRequests,
		Code:    CodeDailyQuotaExceeded,
		Message: "daily quota exhausted, try again after reset",
		Quota:   &v,
	}
}

func NewUpstreamError(upstreamStatus int, upstreamMsg string) *AppError {
	code := CodeUpstreamError
	msg := "generation service error"
	if upstreamStatus == http.StatusTooManyRequests {
		code = CodeUpstream429
		msg = "generation service is busy, try again shortly"
	}
	if upstreamMsg != "" {
		msg = upstreamMsg
	}
	return &AppError{Status: http.StatusBadGateway, Code: code, Message: msg}
}

// Handle writes err as a structured rejection. Anything that is not an
// *AppError is an unclassified infrastructure failure: the caller gets the
// generic envelope, never internal detail.
func Handle(w http.ResponseWriter, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = ErrServerError
	}
	if appErr.RetryAfterSec > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(appErr.RetryAfterSec))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	json.NewEncoder(w).Encode(appErr)
}
