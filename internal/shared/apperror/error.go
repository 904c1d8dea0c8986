package apperror

// AppError is a client-facing failure: a stable code, the message shown to
// the caller and the HTTP status it maps to. Package level sentinels are
// created with New and compared with errors.Is.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int

	cause  error
	origin *AppError
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause returns a copy of e carrying cause. The copy still matches e
// under errors.Is and maps to the same code and status.
func (e *AppError) WithCause(cause error) *AppError {
	if cause == nil {
		return e
	}
	cp := *e
	cp.cause = cause
	cp.origin = e.sentinel()
	return &cp
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.sentinel() == t
}

func (e *AppError) sentinel() *AppError {
	if e.origin != nil {
		return e.origin
	}
	return e
}
