package mercury

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected is stored on a cell when a fetch was rejected without a cause.
	ErrRejected = errors.New("mercury: request rejected")
	// ErrPayloadType marks a fulfilled value that does not match the slice type.
	ErrPayloadType = errors.New("mercury: unexpected payload type")
)

// PayloadTypeError is recorded on a cell whose Fulfilled payload could not be
// asserted to the cell's data type.
type PayloadTypeError struct {
	Kind Kind
	Got  any
}

func (e *PayloadTypeError) Error() string {
	return fmt.Sprintf("%s: unexpected payload type %T", e.Kind, e.Got)
}

func (e *PayloadTypeError) Unwrap() error { return ErrPayloadType }

// ActionError is returned by Store.Run when an operation fails.
type ActionError struct {
	Kind Kind
	Key  Key
	Err  error
}

func (e *ActionError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Key, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// InvalidateError reports a failed invalidation of a persisted entry.
type InvalidateError struct {
	Key     string
	BumpErr error
	DelErr  error
}

func (e *InvalidateError) Error() string {
	switch {
	case e.BumpErr != nil && e.DelErr != nil:
		return fmt.Sprintf("invalidate %q failed: gen bump and delete failed: bump=%v; delete=%v",
			e.Key, e.BumpErr, e.DelErr)
	case e.BumpErr != nil:
		return fmt.Sprintf("invalidate %q: gen bump failed: %v", e.Key, e.BumpErr)
	case e.DelErr != nil:
		return fmt.Sprintf("invalidate %q: delete failed: %v", e.Key, e.DelErr)
	default:
		return fmt.Sprintf("invalidate %q: unknown error", e.Key)
	}
}

func (e *InvalidateError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}
