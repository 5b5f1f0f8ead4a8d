package application

// Kind classifies service failures so the transport layer can map every one
// of them to a status code in a single place. Callers only ever see the
// Message; infrastructure faults keep their detail server-side.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindNotFound
	KindConflict
	KindInternal
)

// Error is the tagged failure type returned by all services.
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, logged but never surfaced
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func Invalid(msg string) *Error      { return &Error{Kind: KindValidation, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }

// Internal wraps an unexpected fault behind a generic caller-facing message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Something went wrong", Err: err}
}
