package timex

import (
	"sync/atomic"
	"time"
)

// Clock yields a monotonic millisecond timestamp.
type Clock interface {
	NowMs() int64
}

// Uptime counts milliseconds since it was created, on the monotonic clock.
type Uptime struct{ boot time.Time }

func NewUptime() *Uptime { return &Uptime{boot: time.Now()} }

func (u *Uptime) NowMs() int64 { return time.Since(u.boot).Milliseconds() }

// Manual is a Clock driven by tests and simulations.
type Manual struct{ ms atomic.Int64 }

func (m *Manual) NowMs() int64            { return m.ms.Load() }
func (m *Manual) Set(ms int64)            { m.ms.Store(ms) }
func (m *Manual) Advance(d time.Duration) { m.ms.Add(d.Milliseconds()) }

const (
	msPerMinute   = 60_000
	minutesPerDay = 24 * 60
)

// TimeOfDay derives a wall time-of-day from uptime plus an adjustable offset.
// With no offset set, uptime zero is midnight.
type TimeOfDay struct{ offsetMs atomic.Int64 }

// Minute returns an absolute minute count that advances once per wall minute.
func (t *TimeOfDay) Minute(nowMs int64) int64 {
	v := nowMs + t.offsetMs.Load()
	m := v / msPerMinute
	if v < 0 && v%msPerMinute != 0 {
		m--
	}
	return m
}

// MinuteOfDay returns minutes since midnight, in [0, 1440).
func (t *TimeOfDay) MinuteOfDay(nowMs int64) int {
	m := t.Minute(nowMs) % minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return int(m)
}

// SetMinuteOfDay adjusts the offset so that MinuteOfDay(nowMs) == minute.
func (t *TimeOfDay) SetMinuteOfDay(nowMs int64, minute int) {
	minute %= minutesPerDay
	if minute < 0 {
		minute += minutesPerDay
	}
	t.offsetMs.Store(int64(minute)*msPerMinute - nowMs)
}
