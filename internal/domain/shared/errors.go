package shared

import "errors"

// Error kinds. Domain packages wrap these so callers can branch with errors.Is
// without knowing which entity failed.
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrConflict              = errors.New("conflict")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidState          = errors.New("invalid state")
	ErrUnsupportedChangeType = errors.New("unsupported change type")
	ErrInternal              = errors.New("internal error")
)

// IsClientError reports whether err belongs to a kind caused by the caller.
func IsClientError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrInvalidState):
		return true
	default:
		return false
	}
}
