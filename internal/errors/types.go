package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrorType groups errors by the layer that raised them.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeSecurity   ErrorType = "security"
	ErrorTypeLocate     ErrorType = "locate"
	ErrorTypePatch      ErrorType = "patch"
	ErrorTypeAI         ErrorType = "ai"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes shared by the server, the CLI and the AI clients.
const (
	ErrCodeInvalidPath      = "ERR_INVALID_PATH"
	ErrCodePathTraversal    = "ERR_PATH_TRAVERSAL"
	ErrCodeElementNotFound  = "ERR_ELEMENT_NOT_FOUND"
	ErrCodeNoChanges        = "ERR_NO_APPLICABLE_CHANGES"
	ErrCodeOperationFailed  = "ERR_OPERATION_FAILED"
	ErrCodeAIRequest        = "ERR_AI_REQUEST"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeFileExists       = "ERR_FILE_EXISTS"
	ErrCodeInternalError    = "ERR_INTERNAL"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
)

// VeditError is an error with a category, a stable code and optional
// source position.
type VeditError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}

	// FilePath and Line point at the source an edit was aimed at
	FilePath string
	Line     int
}

// Error renders "[CODE] file:line message: cause", omitting empty parts.
func (e *VeditError) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString("[" + e.Code + "] ")
	}
	if e.FilePath != "" {
		b.WriteString(e.FilePath)
		if e.Line > 0 {
			b.WriteString(":" + strconv.Itoa(e.Line))
		}
		b.WriteByte(' ')
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *VeditError) Unwrap() error {
	return e.Cause
}

// Is matches any VeditError with the same type and code.
func (e *VeditError) Is(target error) bool {
	var t *VeditError
	if !errors.As(target, &t) {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithContext attaches a key/value pair and returns e.
func (e *VeditError) WithContext(key string, value interface{}) *VeditError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithLocation sets the source file and 1-based line and returns e.
func (e *VeditError) WithLocation(filePath string, line int) *VeditError {
	e.FilePath = filePath
	e.Line = line
	return e
}

func newError(errType ErrorType, code, message string, cause error) *VeditError {
	return &VeditError{Type: errType, Code: code, Message: message, Cause: cause}
}

func NewValidationError(code, message string) *VeditError {
	return newError(ErrorTypeValidation, code, message, nil)
}

func NewSecurityError(code, message string) *VeditError {
	return newError(ErrorTypeSecurity, code, message, nil)
}

// NewLocateError reports that no JSX element opens at line of filePath.
func NewLocateError(filePath string, line int) *VeditError {
	return newError(ErrorTypeLocate, ErrCodeElementNotFound,
		fmt.Sprintf("Could not locate element at line %d", line), nil).WithLocation(filePath, line)
}

func NewPatchError(code, message string) *VeditError {
	return newError(ErrorTypePatch, code, message, nil)
}

// NewAIError wraps a failed or rejected code-edit call.
func NewAIError(code, message string, cause error) *VeditError {
	return newError(ErrorTypeAI, code, message, cause)
}

func NewNetworkError(code, message string, cause error) *VeditError {
	return newError(ErrorTypeNetwork, code, message, cause)
}

func NewIOError(code, message string, cause error) *VeditError {
	return newError(ErrorTypeIO, code, message, cause)
}

func NewConfigError(code, message string) *VeditError {
	return newError(ErrorTypeConfig, code, message, nil)
}

func NewInternalError(code, message string, cause error) *VeditError {
	return newError(ErrorTypeInternal, code, message, cause)
}
