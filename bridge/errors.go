package bridge

import (
	"errors"
	"fmt"
	"io/fs"

	"go.aimuz.me/foto/iconcache"
	"go.aimuz.me/foto/imageutil"
	"go.aimuz.me/foto/platform"
)

// Code identifies an error condition reported to the caller.
type Code string

const (
	CodeEncodingFailure  Code = "ENCODING_FAILURE"
	CodeNotFound         Code = "NOT_FOUND"
	CodeMalformedRequest Code = "MALFORMED_REQUEST"
	CodeUnsupported      Code = "UNSUPPORTED"
	CodeUnknownMethod    Code = "UNKNOWN_METHOD"
	CodeInternal         Code = "INTERNAL"
)

// Error is a request failure as it crosses the bridge.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func malformed(format string, args ...any) *Error {
	return &Error{Code: CodeMalformedRequest, Message: fmt.Sprintf(format, args...)}
}

// Classify maps err to a bridge Error. Errors that are already bridge
// errors are returned as is.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var be *Error
	if errors.As(err, &be) {
		return be
	}

	code := CodeInternal
	switch {
	case errors.Is(err, iconcache.ErrEncodingFailure):
		code = CodeEncodingFailure
	case errors.Is(err, platform.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		code = CodeNotFound
	case errors.Is(err, platform.ErrUnsupported),
		errors.Is(err, imageutil.ErrNoTool),
		errors.Is(err, imageutil.ErrNotJPEG),
		errors.Is(err, errors.ErrUnsupported):
		code = CodeUnsupported
	}
	return &Error{Code: code, Message: err.Error(), Cause: err}
}
