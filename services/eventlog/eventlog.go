// Package eventlog keeps the most recent operator-visible events.
package eventlog

import (
	"sync"

	"habitat-go/logger"
	"habitat-go/x/timex"
)

// DefaultSize is the number of retained entries.
const DefaultSize = 64

type Entry struct {
	AtMs int64
	Msg  string
}

// Log is a fixed-size ring. When full, the oldest entry is overwritten.
type Log struct {
	mu    sync.Mutex
	buf   []Entry
	next  int
	count int
	clock timex.Clock
	log   *logger.Logger
}

func New(size int, clock timex.Clock, log *logger.Logger) *Log {
	if size < 1 {
		size = DefaultSize
	}
	if clock == nil {
		clock = timex.NewUptime()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Log{buf: make([]Entry, size), clock: clock, log: log.Named("event")}
}

// Add records msg and mirrors it to the logger.
func (l *Log) Add(msg string) {
	e := Entry{AtMs: l.clock.NowMs(), Msg: msg}
	l.mu.Lock()
	l.buf[l.next] = e
	l.next = (l.next + 1) % len(l.buf)
	if l.count < len(l.buf) {
		l.count++
	}
	l.mu.Unlock()
	l.log.Infow(msg, "at_ms", e.AtMs)
}

// Recent returns up to n entries, newest first. n <= 0 returns all.
func (l *Log) Recent(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > l.count {
		n = l.count
	}
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		idx := (l.next - 1 - i + len(l.buf)) % len(l.buf)
		out[i] = l.buf[idx]
	}
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

func (l *Log) Clear() {
	l.mu.Lock()
	l.next, l.count = 0, 0
	l.mu.Unlock()
}
