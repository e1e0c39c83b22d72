package errors

import (
	"errors"
	"net/http"
	"sort"
)

// Wrap classifies err. The source position and context of an inner
// VeditError carry over to the wrapper. A nil err yields nil.
func Wrap(err error, errType ErrorType, code, message string) *VeditError {
	if err == nil {
		return nil
	}

	wrapped := newError(errType, code, message, err)
	var inner *VeditError
	if errors.As(err, &inner) {
		wrapped.FilePath = inner.FilePath
		wrapped.Line = inner.Line
		for k, v := range inner.Context {
			wrapped.WithContext(k, v)
		}
	}
	return wrapped
}

func WrapValidation(err error, code, message string) *VeditError {
	return Wrap(err, ErrorTypeValidation, code, message)
}

// WrapNetwork wraps a transport failure
func WrapNetwork(err error, code, message string) *VeditError {
	return Wrap(err, ErrorTypeNetwork, code, message)
}

func WrapIO(err error, code, message string) *VeditError {
	return Wrap(err, ErrorTypeIO, code, message)
}

func WrapInternal(err error, code, message string) *VeditError {
	return Wrap(err, ErrorTypeInternal, code, message)
}

// IsType reports whether err is a VeditError of the given type.
func IsType(err error, errType ErrorType) bool {
	var ve *VeditError
	return errors.As(err, &ve) && ve.Type == errType
}

func IsLocateError(err error) bool {
	return IsType(err, ErrorTypeLocate)
}

func IsNetworkError(err error) bool {
	return IsType(err, ErrorTypeNetwork)
}

// HTTPStatus maps an error to the status code the server answers with.
// Errors that are not VeditErrors are internal.
func HTTPStatus(err error) int {
	var ve *VeditError
	if !errors.As(err, &ve) {
		return http.StatusInternalServerError
	}

	switch ve.Type {
	case ErrorTypeValidation:
		switch ve.Code {
		case ErrCodeFileNotFound:
			return http.StatusNotFound
		case ErrCodeFileExists:
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case ErrorTypeSecurity:
		return http.StatusForbidden
	case ErrorTypeLocate, ErrorTypePatch, ErrorTypeAI:
		return http.StatusUnprocessableEntity
	case ErrorTypeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Fields flattens err into logger key/value pairs: type and code, the
// source position when known, then context keys in sorted order.
func Fields(err error) []interface{} {
	var ve *VeditError
	if !errors.As(err, &ve) {
		return nil
	}

	fields := []interface{}{"error_type", string(ve.Type), "error_code", ve.Code}
	if ve.FilePath != "" {
		fields = append(fields, "file", ve.FilePath, "line", ve.Line)
	}

	keys := make([]string, 0, len(ve.Context))
	for k := range ve.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, k, ve.Context[k])
	}
	return fields
}
