package bufdev

import "github.com/rs/zerolog"

// DefaultName is the device name used in error context and logs
const DefaultName = "buffDevice"

const (
	// Pages - default region size in pages
	Pages = 10
	// PageSize - default page size in bytes
	PageSize = 4096
	// DefaultCapacity - default region size in bytes
	DefaultCapacity = Pages * PageSize
)

// Observer receives a callback for every completed operation.
// Implementations must not call back into the store.
type Observer interface {
	Opened(ok bool)
	Closed()
	BytesRead(n int, pos int64)
	BytesWritten(n int, pos int64)
	EndOfDevice(op string)
	Seeked(whence Whence, pos int64)
}

type nopObserver struct{}

func (nopObserver) Opened(bool)             {}
func (nopObserver) Closed()                 {}
func (nopObserver) BytesRead(int, int64)    {}
func (nopObserver) BytesWritten(int, int64) {}
func (nopObserver) EndOfDevice(string)      {}
func (nopObserver) Seeked(Whence, int64)    {}

// Option configures a Store at construction
type Option func(*Store)

// WithName sets the device name
func WithName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets the logger used for lifecycle and boundary events
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithObserver attaches an operation observer, e.g. a metrics collector
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.obs = o
		}
	}
}

// WithSeekEnd selects FromEnd semantics
func WithSeekEnd(mode SeekEndMode) Option {
	return func(s *Store) {
		s.seekEnd = mode
	}
}
