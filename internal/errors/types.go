package errors

import "errors"

var (
	ErrBlueprintNotFound    = errors.New("blueprint file not found")
	ErrBlueprintParseFailed = errors.New("blueprint parsing failed")
	ErrSystemFailed         = errors.New("system package installation failed")
	ErrPythonFailed         = errors.New("python environment setup failed")
	ErrSDKFailed            = errors.New("SDK installation failed")
	ErrRuntimeFailed        = errors.New("runtime operation failed")
	ErrConfigInvalid        = errors.New("configuration invalid")
	ErrNetworkFailed        = errors.New("network operation failed")
	ErrFileSystemFailed     = errors.New("filesystem operation failed")
)

type RigstrapError struct {
	Type        error
	Context     string
	Cause       string
	Suggestion  string
	OriginalErr error
}

func (e *RigstrapError) Error() string {
	return e.OriginalErr.Error()
}

func (e *RigstrapError) Unwrap() error {
	return e.OriginalErr
}

func NewRigstrapError(errorType error, context, cause, suggestion string, originalErr error) *RigstrapError {
	return &RigstrapError{
		Type:        errorType,
		Context:     context,
		Cause:       cause,
		Suggestion:  suggestion,
		OriginalErr: originalErr,
	}
}

func NewBlueprintError(context, cause, suggestion string, originalErr error) *RigstrapError {
	return NewRigstrapError(ErrBlueprintNotFound, context, cause, suggestion, originalErr)
}

func NewParseError(context, cause, suggestion string, originalErr error) *RigstrapError {
	return NewRigstrapError(ErrBlueprintParseFailed, context, cause, suggestion, originalErr)
}

func NewSystemError(context, cause, suggestion string, originalErr error) *RigstrapError {
	return NewRigstrapError(ErrSystemFailed, context, cause, suggestion, originalErr)
}

func NewPythonError(context, cause, suggestion string, originalErr error) *RigstrapError {
	return NewRigstrapError(ErrPythonFailed, context, cause, suggestion, originalErr)
}

func NewSDKError(context, cause, suggestion string, originalErr error) *RigstrapError {
	return NewRigstrapError(ErrSDKFailed, context, cause, suggestion, originalErr)
}

func NewRuntimeError(context, cause, suggestion string, originalErr error) *RigstrapError {
	return NewRigstrapError(ErrRuntimeFailed, context, cause, suggestion, originalErr)
}

func NewConfigError(context, cause, suggestion string, originalErr error) *RigstrapError {
	return NewRigstrapError(ErrConfigInvalid, context, cause, suggestion, originalErr)
}

func NewNetworkError(context, cause, suggestion string, originalErr error) *RigstrapError {
	return NewRigstrapError(ErrNetworkFailed, context, cause, suggestion, originalErr)
}

func NewFileSystemError(context, cause, suggestion string, originalErr error) *RigstrapError {
	return NewRigstrapError(ErrFileSystemFailed, context, cause, suggestion, originalErr)
}
