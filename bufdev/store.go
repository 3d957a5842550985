// Package bufdev emulates a fixed-capacity random-access device backed by
// memory. A Store owns one region, admits a single open session at a time
// and keeps one read/write cursor that survives across sessions.
package bufdev

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Store is the buffer device
type Store struct {
	name     string
	capacity int64
	seekEnd  SeekEndMode
	log      zerolog.Logger
	obs      Observer

	open atomic.Bool

	mu       sync.Mutex
	region   []byte
	cursor   int64
	released bool
}

// New allocates a region of capacity bytes
func New(capacity int64, opts ...Option) (*Store, error) {
	s := &Store{
		name:     DefaultName,
		capacity: capacity,
		log:      zerolog.Nop(),
		obs:      nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if capacity <= 0 {
		return nil, errors.Wrapf(ErrAllocation, "%s: capacity %d", s.name, capacity)
	}

	region, err := allocate(capacity)
	if err != nil {
		s.log.Error().Err(err).Str("device", s.name).Int64("capacity", capacity).Msg("slab allocation failed")
		return nil, errors.Wrapf(err, "%s: capacity %d", s.name, capacity)
	}
	s.region = region

	s.log.Info().Str("device", s.name).Int64("capacity", capacity).Msg("device allocated")
	return s, nil
}

func allocate(size int64) (region []byte, err error) {
	if uint64(size) > uint64(math.MaxInt) {
		return nil, ErrAllocation
	}

	defer func() {
		if r := recover(); r != nil {
			region, err = nil, errors.Wrap(ErrAllocation, fmt.Sprint(r))
		}
	}()
	return make([]byte, int(size)), nil
}

// Name of the device
func (s *Store) Name() string { return s.name }

// Capacity - total addressable length in bytes
func (s *Store) Capacity() int64 { return s.capacity }

// IsOpen reports whether a session is held
func (s *Store) IsOpen() bool { return s.open.Load() }

// Position - current cursor
func (s *Store) Position() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Remaining - bytes between the cursor and capacity
func (s *Store) Remaining() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capacity - s.cursor
}

// Open starts a session. It fails with ErrBusy while another session is
// open and leaves the cursor where the previous session put it.
func (s *Store) Open() error {
	// released and open change together under mu in Release
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return pathErr("open", s.name, ErrReleased)
	}

	if !s.open.CompareAndSwap(false, true) {
		s.log.Warn().Str("device", s.name).Msg("device busy")
		s.obs.Opened(false)
		return pathErr("open", s.name, ErrBusy)
	}

	s.log.Debug().Str("device", s.name).Msg("open")
	s.obs.Opened(true)
	return nil
}

// Close ends the session
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open.CompareAndSwap(true, false) {
		return pathErr("close", s.name, ErrNotOpen)
	}

	s.log.Debug().Str("device", s.name).Msg("release")
	s.obs.Closed()
	return nil
}

// Read copies up to size bytes from the cursor and advances it. The result
// is shorter than size when the end of the region is reached. With no bytes
// left it fails with ErrEndOfDevice.
func (s *Store) Read(size int) ([]byte, error) {
	if size < 0 {
		return nil, pathErr("read", s.name, ErrInvalidSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil, pathErr("read", s.name, ErrReleased)
	}

	available := s.capacity - s.cursor
	if available == 0 {
		s.log.Warn().Str("device", s.name).Int64("pos", s.cursor).Msg("read: reached end of device")
		s.obs.EndOfDevice("read")
		return nil, pathErr("read", s.name, ErrEndOfDevice)
	}

	n := int64(size)
	if n > available {
		n = available
	}

	data := make([]byte, n)
	copy(data, s.region[s.cursor:s.cursor+n])
	s.cursor += n

	s.log.Debug().Str("device", s.name).Int64("n", n).Int64("pos", s.cursor).Msg("read")
	s.obs.BytesRead(int(n), s.cursor)
	return data, nil
}

// Write copies as much of data as fits before the end of the region and
// advances the cursor. Truncation is not an error; ErrEndOfDevice is
// returned only when nothing could be written.
func (s *Store) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return 0, pathErr("write", s.name, ErrReleased)
	}

	n := int64(len(data))
	if available := s.capacity - s.cursor; n > available {
		n = available
	}

	if n == 0 {
		s.log.Warn().Str("device", s.name).Int64("pos", s.cursor).Msg("write: reached end of device")
		s.obs.EndOfDevice("write")
		return 0, pathErr("write", s.name, ErrEndOfDevice)
	}

	copy(s.region[s.cursor:s.cursor+n], data[:n])
	s.cursor += n

	s.log.Debug().Str("device", s.name).Int64("n", n).Int64("pos", s.cursor).Msg("write")
	s.obs.BytesWritten(int(n), s.cursor)
	return int(n), nil
}

// Seek moves the cursor and returns its new value. The target is clamped to
// [0, capacity]; an unknown whence targets 0. Seek never fails.
func (s *Store) Seek(offset int64, whence Whence) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pos int64
	switch whence {
	case FromStart:
		pos = clampAdd(0, offset, s.capacity)
	case FromCurrent:
		pos = clampAdd(s.cursor, offset, s.capacity)
	case FromEnd:
		if s.seekEnd == SeekEndConventional {
			pos = clampAdd(s.capacity, offset, s.capacity)
		} else if offset == math.MinInt64 {
			pos = s.capacity
		} else {
			pos = clampAdd(s.capacity, -offset, s.capacity)
		}
	}
	s.cursor = pos

	s.log.Debug().Str("device", s.name).Stringer("whence", whence).Int64("pos", pos).Msg("seek")
	s.obs.Seeked(whence, pos)
	return pos
}

// clampAdd returns base+delta clamped to [0, max] without overflowing.
// base must already be in [0, max].
func clampAdd(base, delta, max int64) int64 {
	if delta > max-base {
		return max
	}
	if delta < -base {
		return 0
	}
	return base + delta
}

// Release drops the region. The store is unusable afterwards.
func (s *Store) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil
	}
	s.region = nil
	s.released = true
	if s.open.Swap(false) {
		s.obs.Closed()
	}

	s.log.Info().Str("device", s.name).Msg("device released")
	return nil
}
