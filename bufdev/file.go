package bufdev

import (
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	_ io.ReadWriteSeeker = &File{}
	_ io.ReaderAt        = &File{}
	_ io.WriterAt        = &File{}
	_ io.Closer          = &File{}
)

// File is an open session on a Store, usable wherever an
// io.ReadWriteSeeker is expected. Reads at the end of the device return
// io.EOF.
type File struct {
	id    uuid.UUID
	store *Store

	mu     sync.Mutex
	closed bool
}

// OpenFile opens the store and returns a handle for the new session
func (s *Store) OpenFile() (*File, error) {
	if err := s.Open(); err != nil {
		return nil, err
	}

	f := &File{id: uuid.New(), store: s}
	s.log.Debug().Str("device", s.name).Str("session", f.id.String()).Msg("session started")
	return f, nil
}

// ID of the session
func (f *File) ID() uuid.UUID { return f.id }

// Name of the device
func (f *File) Name() string { return f.store.name }

// Size - device capacity
func (f *File) Size() int64 { return f.store.capacity }

func (f *File) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return pathErr(op, f.store.name, os.ErrClosed)
	}
	return nil
}

// Read fills p from the cursor
func (f *File) Read(p []byte) (int, error) {
	if err := f.check("read"); err != nil {
		return 0, err
	}

	// an empty p still reports io.EOF at the end of the device
	data, err := f.store.Read(len(p))
	if err != nil {
		if errors.Is(err, ErrEndOfDevice) {
			return 0, io.EOF
		}
		return 0, err
	}
	return copy(p, data), nil
}

// Write p at the cursor. A partial write returns io.ErrShortWrite. An empty
// p is a no-op unless the cursor is at capacity, where it fails like any
// other write with ErrEndOfDevice.
func (f *File) Write(p []byte) (int, error) {
	if err := f.check("write"); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		if f.store.Remaining() == 0 {
			return 0, pathErr("write", f.store.name, ErrEndOfDevice)
		}
		return 0, nil
	}

	n, err := f.store.Write(p)
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Seek implements io.Seeker on top of the store's clamping seek
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if err := f.check("seek"); err != nil {
		return 0, err
	}

	w := Whence(whence)
	if !w.Valid() {
		return 0, pathErr("seek", f.store.name, ErrInvalidWhence)
	}
	return f.store.Seek(offset, w), nil
}

// ReadAt reads len(p) bytes from off. The cursor is left after the data read.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if err := f.check("read"); err != nil {
		return 0, err
	}
	if off < 0 || off > f.store.capacity {
		return 0, pathErr("read", f.store.name, os.ErrInvalid)
	}

	f.store.Seek(off, FromStart)
	n, err := f.Read(p)
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return n, err
}

// WriteAt writes p at off. The cursor is left after the data written.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if err := f.check("write"); err != nil {
		return 0, err
	}
	if off < 0 || off > f.store.capacity {
		return 0, pathErr("write", f.store.name, os.ErrInvalid)
	}

	f.store.Seek(off, FromStart)
	return f.Write(p)
}

// Close ends the session. Closing twice returns ErrNotOpen.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return pathErr("close", f.store.name, ErrNotOpen)
	}
	f.closed = true

	f.store.log.Debug().Str("device", f.store.name).Str("session", f.id.String()).Msg("session ended")
	return f.store.Close()
}
