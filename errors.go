package tensorboard

import "github.com/cockroachdb/errors"

// The error taxonomy every DataProvider signals through. Implementations mark
// their failures with one of these sentinels (via the *f constructors below,
// or errors.Mark directly) so that callers can classify errors from any
// backend identically with the Is* predicates, without depending on concrete
// error types. All kinds are recoverable by the caller: render an empty or
// error UI state, never crash the process.
var (
	// ErrNotFound: the requested experiment, run, tag, or blob key does
	// not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument: malformed input, such as a negative downsample
	// cap.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPermissionDenied: the caller lacks access to the requested
	// experiment.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnauthenticated: the caller's identity could not be established.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInternal: a backend-specific failure, such as storage being
	// unreachable.
	ErrInternal = errors.New("internal error")

	// ErrUnimplemented: the operation is reserved and not specified yet.
	// Not part of the standard taxonomy; see UnimplementedDataProvider.
	ErrUnimplemented = errors.New("unimplemented")
)

// NotFoundf returns a NotFound-kind error with a formatted message.
func NotFoundf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrNotFound)
}

// InvalidArgumentf returns an InvalidArgument-kind error with a formatted
// message.
func InvalidArgumentf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidArgument)
}

// PermissionDeniedf returns a PermissionDenied-kind error with a formatted
// message.
func PermissionDeniedf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrPermissionDenied)
}

// Unauthenticatedf returns an Unauthenticated-kind error with a formatted
// message.
func Unauthenticatedf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrUnauthenticated)
}

// Internalf returns an Internal-kind error whose message is the formatted
// public text only. The cause, if any, is attached as a secondary error:
// it stays available to diagnostics that walk the chain, but is excluded from
// Error() so backend internals (paths, addresses, driver messages) cannot
// leak into user-facing output.
func Internalf(cause error, format string, args ...any) error {
	err := errors.Newf(format, args...)
	if cause != nil {
		err = errors.WithSecondaryError(err, cause)
	}
	return errors.Mark(err, ErrInternal)
}

// IsNotFound reports whether err is a NotFound-kind error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidArgument reports whether err is an InvalidArgument-kind error.
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }

// IsPermissionDenied reports whether err is a PermissionDenied-kind error.
func IsPermissionDenied(err error) bool { return errors.Is(err, ErrPermissionDenied) }

// IsUnauthenticated reports whether err is an Unauthenticated-kind error.
func IsUnauthenticated(err error) bool { return errors.Is(err, ErrUnauthenticated) }

// IsInternal reports whether err is an Internal-kind error.
func IsInternal(err error) bool { return errors.Is(err, ErrInternal) }

// Kind names err's taxonomy kind for logs and telemetry attributes. Errors
// outside the taxonomy report "unknown"; nil reports "".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsNotFound(err):
		return "not_found"
	case IsInvalidArgument(err):
		return "invalid_argument"
	case IsPermissionDenied(err):
		return "permission_denied"
	case IsUnauthenticated(err):
		return "unauthenticated"
	case IsInternal(err):
		return "internal"
	case errors.Is(err, ErrUnimplemented):
		return "unimplemented"
	default:
		return "unknown"
	}
}
