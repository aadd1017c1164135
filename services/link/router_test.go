package link

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitat-go/state"
	"habitat-go/types"
	"habitat-go/x/timex"
)

type fakeActuator struct {
	calls []string
	sent  []types.Command
}

func (f *fakeActuator) RequestPump(on bool) bool {
	f.calls = append(f.calls, map[bool]string{true: "pump on", false: "pump off"}[on])
	return true
}
func (f *fakeActuator) RequestLight(on bool) bool {
	f.calls = append(f.calls, map[bool]string{true: "light on", false: "light off"}[on])
	return true
}
func (f *fakeActuator) RequestLEDBrightness(pct int) bool {
	f.calls = append(f.calls, "led")
	f.sent = append(f.sent, types.Command{Target: types.ModuleGrow, Param: int32(pct)})
	return true
}
func (f *fakeActuator) RequestFeedOnce(pct int) bool {
	f.calls = append(f.calls, "feed")
	f.sent = append(f.sent, types.Command{Target: types.ModuleFeeder, Param: int32(pct)})
	return true
}
func (f *fakeActuator) Send(c types.Command) bool {
	f.calls = append(f.calls, "raw")
	f.sent = append(f.sent, c)
	return true
}

type fakeFaults struct{ n int }

func (f *fakeFaults) ClearFault() { f.n++ }

func TestRouter_ModuleCommands(t *testing.T) {
	act := &fakeActuator{}
	r := &Router{Act: act}
	r.Route(types.Command{Target: types.ModuleTank, Code: types.TankSetPump, Param: 1})
	r.Route(types.Command{Target: types.ModuleTank, Code: types.TankSetLight, Param: 0})
	r.Route(types.Command{Target: types.ModuleGrow, Code: types.GrowSetLEDBrightness, Param: 75})
	r.Route(types.Command{Target: types.ModuleFeeder, Code: types.FeederFeedOnce, Param: 20})
	r.Route(types.Command{Target: types.ModuleNutrient, Code: 3, Param: 9})

	assert.Equal(t, []string{"pump on", "light off", "led", "feed", "raw"}, act.calls)
	assert.Equal(t, types.Command{Target: types.ModuleNutrient, Code: 3, Param: 9}, act.sent[2])
}

func TestRouter_ControllerCommands(t *testing.T) {
	act := &fakeActuator{}
	faults := &fakeFaults{}
	tod := &timex.TimeOfDay{}
	clk := &timex.Manual{}
	clk.Set(90_000)
	r := &Router{Act: act, Faults: faults, Clock: tod, Now: clk}

	r.Route(types.Command{Target: types.ModuleController, Code: types.ControllerPing})
	r.Route(types.Command{Target: types.ModuleController, Code: types.ControllerClearFault})
	r.Route(types.Command{Target: types.ModuleController, Code: types.ControllerSetClock, Param: 7*60 + 30})
	r.Route(types.Command{Target: types.ModuleController, Code: types.ControllerSetClock, Param: 1440})
	r.Route(types.Command{Target: types.ModuleController, Code: 99})

	assert.Empty(t, act.calls, "controller commands never reach the bus")
	assert.Equal(t, 1, faults.n)
	assert.Equal(t, 7*60+30, tod.MinuteOfDay(clk.NowMs()))
}

func TestRouter_RecordsPumpAndLightRequests(t *testing.T) {
	act := &fakeActuator{}
	store := state.New()
	r := &Router{Act: act, Store: store}

	r.Route(types.Command{Target: types.ModuleTank, Code: types.TankSetPump, Param: 1})
	r.Route(types.Command{Target: types.ModuleTank, Code: types.TankSetLight, Param: 1})
	snap, ok := store.Snapshot(time.Second)
	require.True(t, ok)
	assert.True(t, snap.Tank.PumpOn)
	assert.True(t, snap.Tank.LightOn)

	r.Route(types.Command{Target: types.ModuleTank, Code: types.TankSetPump, Param: 0})
	snap, _ = store.Snapshot(time.Second)
	assert.False(t, snap.Tank.PumpOn)
	assert.True(t, snap.Tank.LightOn)
	assert.Equal(t, []string{"pump on", "light on", "pump off"}, act.calls)
}
