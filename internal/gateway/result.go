package gateway

// ErrorKind is the wire name of a failure class.
type ErrorKind string

const (
	KindValidation        ErrorKind = "ValidationError"
	KindNotFound          ErrorKind = "NotFound"
	KindInvalidCredential ErrorKind = "InvalidCredential"
	KindForbidden         ErrorKind = "Forbidden"
	KindStorage           ErrorKind = "StorageError"
)

// ErrorInfo is the caller-facing description of a failed command. Message is
// already localized; it never carries storage internals.
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Result is either a value or an ErrorInfo, never both. The zero value is
// not meaningful; build one with Ok or Fail.
type Result[T any] struct {
	value   T
	failure *ErrorInfo
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

func Fail[T any](info ErrorInfo) Result[T] {
	return Result[T]{failure: &info}
}

func (result Result[T]) IsOk() bool {
	return result.failure == nil
}

func (result Result[T]) Value() (T, bool) {
	return result.value, result.failure == nil
}

func (result Result[T]) Failure() (ErrorInfo, bool) {
	if result.failure == nil {
		return ErrorInfo{}, false
	}
	return *result.failure, true
}

// Envelope flattens the result into the uniform response shape.
func (result Result[T]) Envelope() Envelope {
	if result.failure != nil {
		return Envelope{
			Success: false,
			Error:   result.failure.Message,
			Kind:    result.failure.Kind,
			Code:    result.failure.Code,
		}
	}
	return Envelope{Success: true, Data: result.value}
}
