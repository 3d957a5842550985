package bufdev

import "io"

// Whence is the origin a seek offset is measured from.
type Whence int

// Origins share values with io.SeekStart, io.SeekCurrent and io.SeekEnd.
const (
	FromStart   Whence = io.SeekStart
	FromCurrent Whence = io.SeekCurrent
	FromEnd     Whence = io.SeekEnd
)

func (w Whence) String() string {
	switch w {
	case FromStart:
		return "start"
	case FromCurrent:
		return "current"
	case FromEnd:
		return "end"
	}
	return "unknown"
}

// Valid reports whether w is one of the three known origins.
func (w Whence) Valid() bool {
	return w == FromStart || w == FromCurrent || w == FromEnd
}

// ParseWhence maps a command word to an origin.
func ParseWhence(s string) (Whence, bool) {
	switch s {
	case "start", "set":
		return FromStart, true
	case "current", "cur":
		return FromCurrent, true
	case "end":
		return FromEnd, true
	}
	return FromStart, false
}

// SeekEndMode selects how FromEnd offsets are applied.
type SeekEndMode int

const (
	// SeekEndReference moves backward from the end: capacity - offset.
	SeekEndReference SeekEndMode = iota
	// SeekEndConventional follows lseek(2): capacity + offset.
	SeekEndConventional
)

func (m SeekEndMode) String() string {
	if m == SeekEndConventional {
		return "conventional"
	}
	return "reference"
}

// ParseSeekEndMode - maps a config word to a mode; empty means reference
func ParseSeekEndMode(s string) (SeekEndMode, bool) {
	switch s {
	case "", "reference":
		return SeekEndReference, true
	case "conventional":
		return SeekEndConventional, true
	}
	return SeekEndReference, false
}
