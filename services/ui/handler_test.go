package ui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitat-go/services/eventlog"
	"habitat-go/services/input"
	"habitat-go/services/settings"
	"habitat-go/state"
	"habitat-go/types"
	"habitat-go/x/timex"
)

type fakeAct struct {
	pump, light []bool
	led         []int
}

func (a *fakeAct) RequestPump(on bool) bool         { a.pump = append(a.pump, on); return true }
func (a *fakeAct) RequestLight(on bool) bool        { a.light = append(a.light, on); return true }
func (a *fakeAct) RequestLEDBrightness(p int) bool  { a.led = append(a.led, p); return true }

type fakeFaults struct{ n int }

func (f *fakeFaults) ClearFault() { f.n++ }

type recDisplay struct {
	views     []View
	backlight []bool
}

func (d *recDisplay) Render(v View)        { d.views = append(d.views, v) }
func (d *recDisplay) SetBacklight(on bool) { d.backlight = append(d.backlight, on) }

type rig struct {
	h      *Handler
	in     *input.ChanSource
	st     *state.Store
	act    *fakeAct
	faults *fakeFaults
	disp   *recDisplay
	mgr    *settings.Manager
	events *eventlog.Log
}

func newRig(t *testing.T) *rig {
	t.Helper()
	mgr, err := settings.Open(context.Background(), &settings.MemoryStore{}, nil)
	require.NoError(t, err)
	r := &rig{
		in:     input.NewChanSource(16),
		st:     state.New(),
		act:    &fakeAct{},
		faults: &fakeFaults{},
		disp:   &recDisplay{},
		mgr:    mgr,
		events: eventlog.New(8, &timex.Manual{}, nil),
	}
	r.h = New(Options{
		Config:   DefaultConfig(),
		Store:    r.st,
		Input:    r.in,
		Act:      r.act,
		Settings: mgr,
		Faults:   r.faults,
		Events:   r.events,
		Display:  r.disp,
	})
	return r
}

func (r *rig) send(now int64, evs ...input.Event) {
	for _, ev := range evs {
		r.in.Emit(ev)
	}
	r.h.Step(context.Background(), now)
}

var (
	next  = input.Event{Kind: input.Step, Delta: 1}
	prev  = input.Event{Kind: input.Step, Delta: -1}
	short = input.Event{Kind: input.ShortClick}
	long  = input.Event{Kind: input.LongClick}
)

func TestScreenWraps(t *testing.T) {
	assert.Equal(t, Settings, Dashboard.Step(-1))
	assert.Equal(t, Dashboard, Settings.Step(1))
	assert.Equal(t, Grow, Dashboard.Step(2))
	assert.Equal(t, Tank, Settings.Step(2+7))
}

func TestTankClicks(t *testing.T) {
	r := newRig(t)
	r.send(0, next, short, short, long)

	assert.Equal(t, Tank, r.h.Screen())
	assert.Equal(t, []bool{true, false}, r.act.pump)
	assert.Equal(t, []bool{true}, r.act.light)
	snap, _ := r.st.Snapshot(state.DefaultLockTimeout)
	assert.False(t, snap.Tank.PumpOn)
	assert.True(t, snap.Tank.LightOn)
}

func TestGrowShortCyclesLEDAndPersists(t *testing.T) {
	r := newRig(t)
	r.send(0, next, next, short, short, short)

	assert.Equal(t, []int{50, 100, 0}, r.act.led)
	assert.Equal(t, uint8(0), r.mgr.Settings().GrowLEDBrightness)

	r.send(10, short)
	assert.Equal(t, uint8(50), r.mgr.Settings().GrowLEDBrightness)
}

func TestGrowLongClearsFault(t *testing.T) {
	r := newRig(t)
	r.send(0, next, next, long)
	assert.Equal(t, 1, r.faults.n)
	require.NotEmpty(t, r.events.Recent(1))
	assert.Equal(t, "Grow leaks reset", r.events.Recent(1)[0].Msg)
}

func TestSettingsClicks(t *testing.T) {
	r := newRig(t)
	r.send(0, prev) // wraps to Settings
	require.Equal(t, Settings, r.h.Screen())

	// default is 5 minutes
	r.send(0, short)
	assert.Equal(t, uint8(10), r.mgr.Settings().DisplayOffMinutes)
	assert.Equal(t, "Settings: displayOffMinutes = 10", r.events.Recent(1)[0].Msg)
	r.send(0, short, short)
	assert.Equal(t, uint8(0), r.mgr.Settings().DisplayOffMinutes)
	assert.Equal(t, "Settings: displayOffMinutes = 0", r.events.Recent(1)[0].Msg)

	before := r.mgr.Settings().FactoryInitialized
	r.send(0, long)
	assert.Equal(t, !before, r.mgr.Settings().FactoryInitialized)
	want := "Settings: factoryInitialized = 0"
	if !before {
		want = "Settings: factoryInitialized = 1"
	}
	assert.Equal(t, want, r.events.Recent(1)[0].Msg)
	assert.Equal(t, 4, r.events.Len())
}

func TestLogClicks(t *testing.T) {
	r := newRig(t)
	r.send(0, prev, prev, short)
	require.Equal(t, Log, r.h.Screen())
	assert.Equal(t, 1, r.events.Len())

	r.send(0, long)
	assert.Zero(t, r.events.Len())
}

func TestRenderTrigger(t *testing.T) {
	r := newRig(t)
	r.h.Step(context.Background(), 0)
	require.Len(t, r.disp.views, 1, "first step renders")

	r.h.Step(context.Background(), 4999)
	assert.Len(t, r.disp.views, 1)
	r.h.Step(context.Background(), 5000)
	assert.Len(t, r.disp.views, 2, "periodic refresh")

	r.send(5001, next)
	assert.Len(t, r.disp.views, 3, "screen change")
	assert.Equal(t, Tank, r.disp.views[2].Screen)
}

func TestDisplayTimeoutAndWake(t *testing.T) {
	r := newRig(t)
	r.h.Step(context.Background(), 0)

	r.h.Step(context.Background(), 5*60_000-1)
	assert.Empty(t, r.disp.backlight)
	r.h.Step(context.Background(), 5*60_000)
	assert.Equal(t, []bool{false}, r.disp.backlight)

	// Waking input is swallowed.
	r.send(5*60_000+100, next)
	assert.Equal(t, []bool{false, true}, r.disp.backlight)
	assert.Equal(t, Dashboard, r.h.Screen())

	r.send(5*60_000+200, next)
	assert.Equal(t, Tank, r.h.Screen())
}

func TestClickSkippedOnLockTimeout(t *testing.T) {
	r := newRig(t)
	r.send(0, next)

	hold := make(chan struct{})
	entered := make(chan struct{})
	go r.st.With(state.DefaultLockTimeout, func(*types.SystemState) {
		close(entered)
		<-hold
	})
	<-entered
	r.in.Emit(short)
	r.h.Step(context.Background(), 10)
	close(hold)

	assert.Empty(t, r.act.pump)
}
