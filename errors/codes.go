package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Instance errors
const (
	// ErrCodeNotFound indicates the instance (or other resource) is unknown.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates an instance id is already set up.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
)

// Argument errors
const (
	// ErrCodeInvalidArgument indicates a construction or dispatch argument is invalid.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Engine errors
const (
	// ErrCodeRenderFailed indicates the host engine could not resolve a screen.
	ErrCodeRenderFailed ErrorCode = "RENDER_FAILED"
	// ErrCodeHookFailed indicates a host hook returned an error or panicked.
	ErrCodeHookFailed ErrorCode = "HOOK_FAILED"
)

// Collaborator errors (retryable)
const (
	// ErrCodeTimeout indicates an asynchronous completion timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeExternalService indicates the network collaborator failed.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected engine failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:         true,
	ErrCodeExternalService: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
