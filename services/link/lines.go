package link

// FeedResult reports what a byte did to the line assembler.
type FeedResult uint8

const (
	Pending   FeedResult = iota // byte consumed, no line yet
	LineReady                   // a complete non-empty line is available
	Overflow                    // an over-long line was terminated and discarded
)

// LineBuffer assembles bytes into lines of at most max bytes. LF or CR
// terminates a line; empty lines are skipped. Once a line exceeds max it is
// discarded up to its terminator.
type LineBuffer struct {
	buf      []byte
	max      int
	overflow bool
	done     bool
}

func NewLineBuffer(max int) *LineBuffer {
	if max < 8 {
		max = 8
	}
	return &LineBuffer{buf: make([]byte, 0, max), max: max}
}

// Feed consumes one byte. After LineReady, Line holds the line until the
// next call.
func (l *LineBuffer) Feed(b byte) FeedResult {
	if l.done {
		l.buf = l.buf[:0]
		l.done = false
	}
	switch {
	case b == '\n' || b == '\r':
		if l.overflow {
			l.overflow = false
			return Overflow
		}
		if len(l.buf) == 0 {
			return Pending
		}
		l.done = true
		return LineReady
	case l.overflow:
		return Pending
	case len(l.buf) >= l.max:
		l.overflow = true
		l.buf = l.buf[:0]
		return Pending
	}
	l.buf = append(l.buf, b)
	return Pending
}

// Line returns the last completed line.
func (l *LineBuffer) Line() []byte { return l.buf }
