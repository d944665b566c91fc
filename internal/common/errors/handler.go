package errors

import "time"

// Logger is the minimal logging surface the handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// TurnErrorHandler normalizes errors raised while processing a conversation
// turn and decides what the applicant sees. Collaborator failures degrade to
// an apology; contract violations are logged loudly because they indicate a
// bug, not bad input.
type TurnErrorHandler struct {
	logger Logger
}

func NewTurnErrorHandler(logger Logger) *TurnErrorHandler {
	return &TurnErrorHandler{logger: logger}
}

// HandleTurnError logs the error and returns a user-safe reply plus whether
// the session state should still be persisted for this turn.
func (h *TurnErrorHandler) HandleTurnError(sessionID, stage string, err error) (reply string, persist bool) {
	stdErr := h.Normalize(err)

	fields := map[string]interface{}{
		"sessionId":     sessionID,
		"stage":         stage,
		"errorCode":     string(stdErr.Code),
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"retries":       GetRetryCount(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
	}

	switch stdErr.Code {
	case ErrCodeDecisionContractViolation, ErrCodeInvalidStage:
		h.logger.Error("Turn aborted on contract violation", fields)
		return "Something went wrong on our side. Please try again in a moment.", false

	case ErrCodeSessionStoreFailed, ErrCodeSessionStoreConflict:
		h.logger.Error("Turn failed on session store", fields)
		return "I could not save our conversation just now. Please resend your last message.", false

	default:
		h.logger.Warn("Turn degraded on collaborator failure", fields)
		return "I hit a temporary snag but our conversation is safe. Please try that again.", true
	}
}

// Normalize ensures we always have a StandardError.
func (h *TurnErrorHandler) Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
