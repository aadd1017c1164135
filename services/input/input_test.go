package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestButton_ShortAndLong(t *testing.T) {
	var b Button
	_, ok := b.Update(true, 1000)
	assert.False(t, ok)
	k, ok := b.Update(false, 1699)
	assert.True(t, ok)
	assert.Equal(t, ShortClick, k)

	b.Update(true, 2000)
	_, ok = b.Update(true, 2500)
	assert.False(t, ok, "holding emits nothing")
	k, ok = b.Update(false, 2700)
	assert.True(t, ok)
	assert.Equal(t, LongClick, k)

	_, ok = b.Update(false, 3000)
	assert.False(t, ok, "release without press emits nothing")
}

func TestEncoder_DirectionAndBounce(t *testing.T) {
	var e Encoder
	assert.Zero(t, e.Update(true, true, 0))
	assert.Equal(t, 1, e.Update(false, true, 10))
	assert.Zero(t, e.Update(true, true, 11))
	assert.Zero(t, e.Update(false, true, 11), "edge within the bounce window")
	assert.Zero(t, e.Update(true, false, 20))
	assert.Equal(t, -1, e.Update(false, false, 30))
}

type fakePin struct{ v bool }

func (p *fakePin) Get() bool { return p.v }

func next(t *testing.T, c *ChanSource) Event {
	t.Helper()
	select {
	case ev := <-c.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event emitted")
		return Event{}
	}
}

func TestPoller_StepsOnRawFallingEdgeOfA(t *testing.T) {
	a, b, sw := &fakePin{true}, &fakePin{true}, &fakePin{true}
	out := NewChanSource(8)
	p := &Poller{A: a, B: b, SW: sw, Out: out}

	p.Sample(0)
	a.v = false // A high -> low with B high: clockwise
	p.Sample(10)
	assert.Equal(t, Event{Kind: Step, Delta: 1}, next(t, out))

	a.v = true // rising edge of A counts nothing
	p.Sample(20)
	assert.Empty(t, out.Events())

	b.v = false
	a.v = false // A high -> low with B low: counter-clockwise
	p.Sample(30)
	assert.Equal(t, Event{Kind: Step, Delta: -1}, next(t, out))
}

func TestPoller_SwitchIsActiveLow(t *testing.T) {
	a, b, sw := &fakePin{true}, &fakePin{true}, &fakePin{true}
	out := NewChanSource(8)
	p := &Poller{A: a, B: b, SW: sw, Out: out}

	p.Sample(0)
	sw.v = false
	p.Sample(20)
	sw.v = true
	p.Sample(100)
	assert.Equal(t, Event{Kind: ShortClick}, next(t, out))

	sw.v = false
	p.Sample(200)
	sw.v = true
	p.Sample(1000)
	assert.Equal(t, Event{Kind: LongClick}, next(t, out))
}

func TestChanSource_DropsWhenFull(t *testing.T) {
	c := NewChanSource(1)
	assert.True(t, c.Emit(Event{Kind: ShortClick}))
	assert.False(t, c.Emit(Event{Kind: LongClick}))
}
