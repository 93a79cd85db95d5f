package openai

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("openai: api key is required")

// ErrorKind classifies upstream failures so callers can branch on a tag
// instead of matching substrings of the provider's error text.
type ErrorKind string

const (
	KindUnknown              ErrorKind = "unknown"
	KindUnsupportedParameter ErrorKind = "unsupported_parameter"
	KindContentPolicy        ErrorKind = "content_policy"
	KindRateLimited          ErrorKind = "rate_limited"
	KindTransient            ErrorKind = "transient"
	KindAuth                 ErrorKind = "auth"
)

// APIError is the normalized provider error. Message preserves the upstream
// text verbatim so it can be surfaced to the user.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Code       string
	Param      string
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("openai: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("openai: %s", e.Message)
}

// IsUnsupportedParameter reports whether err is an APIError rejecting the
// named request parameter.
func IsUnsupportedParameter(err error, param string) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Kind == KindUnsupportedParameter && (param == "" || apiErr.Param == param)
}

func classifyError(status int, code, param, typ string) ErrorKind {
	switch code {
	case "unsupported_parameter", "unknown_parameter", "invalid_parameter":
		return KindUnsupportedParameter
	case "content_policy_violation", "moderation_blocked":
		return KindContentPolicy
	case "rate_limit_exceeded":
		return KindRateLimited
	}
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 429:
		return KindRateLimited
	case status >= 500:
		return KindTransient
	case status == 400 && typ == "invalid_request_error" && param != "":
		return KindUnsupportedParameter
	default:
		return KindUnknown
	}
}
