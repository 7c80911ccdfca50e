package request

// Status tags the outcome of a coordinated request
type Status int

const (
	StatusOK Status = iota
	StatusCancelled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of a request: a value, a cancellation, or an
// error. Cancellation carries no error and must not be shown to the user.
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
}

// OK wraps a successful value
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusOK}
}

// Cancelled is the outcome of a superseded or aborted request
func Cancelled[T any]() Result[T] {
	return Result[T]{Status: StatusCancelled}
}

// Failed wraps an error
func Failed[T any](err error) Result[T] {
	return Result[T]{Status: StatusFailed, Err: err}
}

// IsOK reports a successful outcome
func (r Result[T]) IsOK() bool { return r.Status == StatusOK }

// IsCancelled reports a cancelled outcome
func (r Result[T]) IsCancelled() bool { return r.Status == StatusCancelled }
