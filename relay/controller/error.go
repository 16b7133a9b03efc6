package controller

import (
	"fmt"
	"net/http"

	relaymodel "github.com/Chyrain/LLMGateway/relay/model"
)

// Terminal codes reach the caller; internal codes drive failover and only
// surface inside all_upstreams_failed detail.
const (
	ErrCodeMissingCredential  = "missing_credential"
	ErrCodeNoAvailableModel   = "no_available_model"
	ErrCodeAllUpstreamsFailed = "all_upstreams_failed"

	ErrCodeUpstreamHTTPError = "upstream_http_error"
	ErrCodeEmptyResponse     = "empty_response"
	ErrCodeTransportError    = "transport_error"
	ErrCodeValidationError   = "validation_error"
)

// ErrorWrapper converts an error into the OpenAI-style error envelope.
func ErrorWrapper(err error, code string, statusCode int) *relaymodel.ErrorWithStatusCode {
	return &relaymodel.ErrorWithStatusCode{
		Error: relaymodel.Error{
			Message:  err.Error(),
			Type:     "llm_gateway_error",
			Code:     code,
			RawError: err,
		},
		StatusCode: statusCode,
	}
}

func openAIError(statusCode int, code string, format string, args ...any) *relaymodel.ErrorWithStatusCode {
	return &relaymodel.ErrorWithStatusCode{
		Error: relaymodel.Error{
			Message: fmt.Sprintf(format, args...),
			Type:    "llm_gateway_error",
			Code:    code,
		},
		StatusCode: statusCode,
	}
}

// attemptError is one candidate's failure. It never reaches the caller
// directly; the last one feeds all_upstreams_failed detail.
type attemptError struct {
	Code    string
	Message string
}

func (e *attemptError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newAttemptError(code string, format string, args ...any) *attemptError {
	return &attemptError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func allUpstreamsFailed(last *attemptError) *relaymodel.ErrorWithStatusCode {
	detail := "no attempt detail"
	if last != nil {
		detail = last.Error()
	}
	return openAIError(http.StatusInternalServerError, ErrCodeAllUpstreamsFailed,
		"all upstreams failed, last error: %s", detail)
}
