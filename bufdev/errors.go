package bufdev

import (
	"os"

	"github.com/pkg/errors"
)

var (
	// ErrBusy - a session is already open
	ErrBusy = errors.New("device busy")
	// ErrNotOpen - close without a matching open
	ErrNotOpen = errors.New("device not open")
	// ErrEndOfDevice - no bytes left between cursor and capacity
	ErrEndOfDevice = errors.New("reached end of device")
	// ErrAllocation - backing region could not be allocated
	ErrAllocation = errors.New("region allocation failed")
	// ErrReleased - store was torn down
	ErrReleased = errors.New("device released")
	// ErrInvalidSize - negative read size
	ErrInvalidSize = errors.New("invalid transfer size")
	// ErrInvalidWhence - origin is not start, current or end
	ErrInvalidWhence = errors.New("invalid whence")
)

func pathErr(op, name string, err error) error {
	return &os.PathError{Op: op, Path: name, Err: err}
}
