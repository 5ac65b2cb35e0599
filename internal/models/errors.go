package models

import "errors"

// ErrorCode is the machine-readable class of a search failure.
type ErrorCode string

const (
	CodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	CodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	CodeIndexBuildFailure ErrorCode = "INDEX_BUILD_FAILURE"
	CodeCacheIOFailure    ErrorCode = "CACHE_IO_FAILURE"
	CodeSearchFailed      ErrorCode = "SEARCH_FAILED"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrEngineUnavailable = errors.New("engine unavailable")
	ErrIndexBuild        = errors.New("index build failed")
	ErrCacheIO           = errors.New("cache i/o failure")
)

var sentinels = map[ErrorCode]error{
	CodeInvalidRequest:    ErrInvalidRequest,
	CodeEngineUnavailable: ErrEngineUnavailable,
	CodeIndexBuildFailure: ErrIndexBuild,
	CodeCacheIOFailure:    ErrCacheIO,
}

// SearchError carries an error code alongside the underlying cause.
type SearchError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewError builds a SearchError.
func NewError(code ErrorCode, message string, err error) *SearchError {
	return &SearchError{Code: code, Message: message, Err: err}
}

func (e *SearchError) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SearchError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's code, so errors.Is(err, ErrInvalidRequest) works.
func (e *SearchError) Is(target error) bool {
	s, ok := sentinels[e.Code]
	return ok && s == target
}

// CodeOf returns the code of the first SearchError in err's chain, or
// CodeSearchFailed.
func CodeOf(err error) ErrorCode {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeSearchFailed
}
