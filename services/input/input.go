// Package input turns rotary encoder and push-button samples into
// step / short-click / long-click events.
package input

import (
	"context"
	"time"
)

type Kind uint8

const (
	Step Kind = iota
	ShortClick
	LongClick
)

func (k Kind) String() string {
	switch k {
	case Step:
		return "step"
	case ShortClick:
		return "short"
	case LongClick:
		return "long"
	}
	return "unknown"
}

type Event struct {
	Kind  Kind
	Delta int // for Step: +1 clockwise, -1 counter-clockwise
}

// Source yields input events.
type Source interface {
	Events() <-chan Event
}

// ChanSource is a bounded event queue. Emit never blocks; events arriving
// while it is full are dropped.
type ChanSource struct{ ch chan Event }

func NewChanSource(depth int) *ChanSource {
	if depth < 1 {
		depth = 16
	}
	return &ChanSource{ch: make(chan Event, depth)}
}

func (c *ChanSource) Events() <-chan Event { return c.ch }

func (c *ChanSource) Emit(ev Event) bool {
	select {
	case c.ch <- ev:
		return true
	default:
		return false
	}
}

// LongPress separates a short click from a long click.
const LongPress = 700 * time.Millisecond

// Button classifies a press by its duration, reported on release.
type Button struct {
	LongMs  int64
	pressed bool
	since   int64
}

// Update feeds the current level. It returns a click kind on release.
func (b *Button) Update(pressed bool, nowMs int64) (Kind, bool) {
	long := b.LongMs
	if long <= 0 {
		long = LongPress.Milliseconds()
	}
	switch {
	case pressed && !b.pressed:
		b.pressed, b.since = true, nowMs
	case !pressed && b.pressed:
		b.pressed = false
		if nowMs-b.since >= long {
			return LongClick, true
		}
		return ShortClick, true
	}
	return 0, false
}

// Encoder counts detents on the falling edge of channel A; B gives the
// direction. Edges closer than MinGapMs are treated as bounce.
type Encoder struct {
	MinGapMs int64
	lastA    bool
	primed   bool
	lastEdge int64
}

func (e *Encoder) Update(a, b bool, nowMs int64) int {
	if !e.primed {
		e.lastA, e.primed = a, true
		return 0
	}
	fell := e.lastA && !a
	e.lastA = a
	if !fell {
		return 0
	}
	gap := e.MinGapMs
	if gap <= 0 {
		gap = 2
	}
	if e.lastEdge != 0 && nowMs-e.lastEdge < gap {
		return 0
	}
	e.lastEdge = nowMs
	if b {
		return 1
	}
	return -1
}

// Pin is a digital input.
type Pin interface {
	Get() bool
}

// Poller samples an encoder and its push switch. The encoder channels are
// read at their raw levels; the switch is active low.
type Poller struct {
	A, B, SW Pin
	Out      *ChanSource
	Period   time.Duration
	Now      func() int64

	btn Button
	enc Encoder
}

func (p *Poller) Run(ctx context.Context) {
	period := p.Period
	if period <= 0 {
		period = 2 * time.Millisecond
	}
	tick := time.NewTicker(period)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			p.Sample(p.Now())
		}
	}
}

// Sample reads the pins once and emits any resulting events.
func (p *Poller) Sample(nowMs int64) {
	if d := p.enc.Update(p.A.Get(), p.B.Get(), nowMs); d != 0 {
		p.Out.Emit(Event{Kind: Step, Delta: d})
	}
	if k, ok := p.btn.Update(!p.SW.Get(), nowMs); ok {
		p.Out.Emit(Event{Kind: k})
	}
}
