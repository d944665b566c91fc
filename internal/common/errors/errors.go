// Package errors provides standardized error handling for the loan assistant.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeExtractionMiss     ErrorCode = "EXTRACTION_MISS"
	ErrCodeProfileNotFound    ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeProfileSeedInvalid ErrorCode = "PROFILE_SEED_INVALID"

	ErrCodeDecisionContractViolation ErrorCode = "DECISION_CONTRACT_VIOLATION"
	ErrCodeInvalidStage              ErrorCode = "INVALID_STAGE"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeLedgerWriteFailed        ErrorCode = "LEDGER_WRITE_FAILED"
	ErrCodeLedgerQueryFailed        ErrorCode = "LEDGER_QUERY_FAILED"

	ErrCodeSearchIndexFailed ErrorCode = "SEARCH_INDEX_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"

	ErrCodeSessionStoreFailed   ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeSessionNotFound      ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionStoreConflict ErrorCode = "SESSION_STORE_CONFLICT"

	ErrCodeRenderFailed           ErrorCode = "RENDER_FAILED"
	ErrCodeRenderTimeout          ErrorCode = "RENDER_TIMEOUT"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeGenAITimeout       ErrorCode = "GENAI_TIMEOUT"
	ErrCodeGenAIRequestFailed ErrorCode = "GENAI_REQUEST_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewExtractionMissError marks a turn whose utterance yielded no usable fact.
// Never retryable; the conversation re-prompts instead.
func NewExtractionMissError(kind, utterance string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionMiss,
		Message:   "No usable fact found in utterance",
		Details:   fmt.Sprintf("kind: %s, utterance: %q", kind, utterance),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileNotFoundError creates a non-retryable applicant lookup error.
func NewProfileNotFoundError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileNotFound,
		Message:   "Applicant not present in seed book",
		Details:   fmt.Sprintf("name: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileSeedInvalidError creates a non-retryable seed book validation error.
func NewProfileSeedInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileSeedInvalid,
		Message:   "Seed applicant book failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDecisionContractViolationError marks an underwriting call made with
// inputs the stage machine should never have allowed through.
func NewDecisionContractViolationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecisionContractViolation,
		Message:   "Underwriting invoked with invalid inputs",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidStageError creates a non-retryable stage graph error.
func NewInvalidStageError(stage string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidStage,
		Message:   "Session holds a stage outside the declared graph",
		Details:   fmt.Sprintf("stage: %s", stage),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLedgerWriteFailedError creates a retryable ledger append error.
func NewLedgerWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLedgerWriteFailed,
		Message:   "Application ledger append failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLedgerQueryFailedError creates a retryable ledger aggregate query error.
func NewLedgerQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLedgerQueryFailed,
		Message:   "Application ledger query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchIndexFailedError creates a retryable search indexing error.
func NewSearchIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchIndexFailed,
		Message:   "Search index write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Search request timeout",
		Details:   "request exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError creates a retryable session persistence error.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable session lookup error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRenderFailedError creates a retryable document render error.
func NewRenderFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderFailed,
		Message:   "Sanction letter rendering failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRenderTimeoutError creates a retryable render timeout error.
func NewRenderTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderTimeout,
		Message:   "Sanction letter rendering timeout",
		Details:   "render call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenAITimeoutError marks an enhancement call that ran out of time. The
// templated reply is served as-is, so no retry.
func NewGenAITimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGenAITimeout,
		Message:   "Reply enhancement timeout",
		Details:   "enhancement call exceeded timeout threshold",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenAIRequestFailedError creates a non-retryable enhancement error.
func NewGenAIRequestFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenAIRequestFailed,
		Message:   "Reply enhancement request failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry Policy
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeLedgerWriteFailed,
		ErrCodeLedgerQueryFailed,
		ErrCodeSearchIndexFailed,
		ErrCodeSessionStoreFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeSearchTimeout,
		ErrCodeRenderTimeout:
		return 2 // Partial retry for timeouts

	case ErrCodeRenderFailed:
		return 1 // Applicant re-drives via the try-again path

	default:
		return 0 // Business errors: no retry
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "EXTRACTION"):
		return "EXTRACTION"
	case strings.Contains(codeStr, "PROFILE"):
		return "PROFILE"
	case strings.Contains(codeStr, "DECISION") || strings.Contains(codeStr, "STAGE"):
		return "UNDERWRITING"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "LEDGER"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "RENDER") || strings.Contains(codeStr, "NOTIFICATION"):
		return "DELIVERY"
	case strings.Contains(codeStr, "GENAI"):
		return "AI"
	default:
		return "OTHER"
	}
}
