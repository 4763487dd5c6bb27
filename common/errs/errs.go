package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")

	// InvalidArgument is returned when an argument fails validation before any state is read.
	InvalidArgument = ErrorKind("Invalid Argument")

	// Unsupported is returned when a requested feature or encoding is not supported.
	Unsupported = ErrorKind("Unsupported")

	// Unauthorized is returned when the caller is not permitted to perform the operation.
	Unauthorized = ErrorKind("Unauthorized")

	// Conflict is returned when the operation conflicts with current state (duplicates, replays).
	Conflict = ErrorKind("Conflict")

	// SomethingWentWrong is returned for unexpected failures that should be retried.
	SomethingWentWrong = ErrorKind("Something Went Wrong")

	// InternalError is returned for invariant violations.
	InternalError = ErrorKind("Internal Error")

	OverflowUint64  = ErrorKind("overflow uint64")
	OverflowUint256 = ErrorKind("overflow uint256")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
