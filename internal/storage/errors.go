package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel kinds. Every *Error unwraps to exactly one of these (or to none
// when the failure could not be classified).
var (
	ErrNotFound          = errors.New("object not found")
	ErrContainerNotFound = errors.New("container not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrAuthentication    = errors.New("authentication failed")
	ErrTransport         = errors.New("transport error")
)

// Error is a remote storage failure with the operation and object it concerns.
type Error struct {
	Op        string
	Container string
	Key       string
	Kind      error
	Err       error
}

func (e *Error) Error() string {
	switch {
	case e.Container != "" && e.Key != "":
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Container, e.Key, e.Err)
	case e.Container != "":
		return fmt.Sprintf("%s %s: %v", e.Op, e.Container, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// NewError wraps err with its operation context. kind may be nil; it is
// then derived from err with Classify.
func NewError(op, container, key string, kind, err error) *Error {
	if kind == nil {
		kind = Classify(err)
	}
	return &Error{
		Op:        op,
		Container: container,
		Key:       key,
		Kind:      kind,
		Err:       err,
	}
}

// Classify maps errors that carry no provider error code.
func Classify(err error) error {
	var netErr net.Error
	switch {
	case err == nil:
		return nil
	// context.DeadlineExceeded satisfies net.Error.
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil
	case errors.As(err, &netErr):
		return ErrTransport
	default:
		return nil
	}
}

// KindForCode maps an S3-compatible error code to a sentinel kind.
func KindForCode(code string) error {
	switch code {
	case "NoSuchKey", "NotFound", "NoSuchObject":
		return ErrNotFound
	case "NoSuchBucket", "ContainerNotFound", "FilesystemNotFound":
		return ErrContainerNotFound
	case "AccessDenied", "Forbidden", "AllAccessDisabled", "AuthorizationPermissionMismatch":
		return ErrAccessDenied
	case "InvalidAccessKeyId", "SignatureDoesNotMatch", "InvalidToken", "ExpiredToken",
		"AuthorizationHeaderMalformed", "AuthenticationFailed":
		return ErrAuthentication
	default:
		return nil
	}
}

// IsRemote reports whether err originated from the remote store.
func IsRemote(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
