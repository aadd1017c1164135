// Package actuator is the single entry point for actuation requests. The UI,
// the supervisory link router and the fail-safe feeder all go through it.
package actuator

import (
	"habitat-go/types"
	"habitat-go/x/mathx"
	"habitat-go/x/strconvx"
)

// Enqueuer accepts outbound commands without blocking.
type Enqueuer interface {
	Enqueue(target types.ModuleID, code types.CommandCode, param int32) bool
}

// EventSink records operator-visible events.
type EventSink interface {
	Add(msg string)
}

type Actuator struct {
	q      Enqueuer
	events EventSink
}

func New(q Enqueuer, events EventSink) *Actuator {
	return &Actuator{q: q, events: events}
}

func boolParam(on bool) int32 {
	if on {
		return 1
	}
	return 0
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func (a *Actuator) note(msg string) {
	if a.events != nil {
		a.events.Add(msg)
	}
}

func (a *Actuator) RequestPump(on bool) bool {
	a.note("Tank pump " + onOff(on))
	return a.q.Enqueue(types.ModuleTank, types.TankSetPump, boolParam(on))
}

func (a *Actuator) RequestLight(on bool) bool {
	a.note("Tank light " + onOff(on))
	return a.q.Enqueue(types.ModuleTank, types.TankSetLight, boolParam(on))
}

// RequestLEDBrightness clamps pct to 0..100.
func (a *Actuator) RequestLEDBrightness(pct int) bool {
	pct = mathx.Clamp(pct, 0, 100)
	a.note("Grow LED " + strconvx.Itoa(pct) + "%")
	return a.q.Enqueue(types.ModuleGrow, types.GrowSetLEDBrightness, int32(pct))
}

// RequestFeedOnce clamps pct to 0..100.
func (a *Actuator) RequestFeedOnce(pct int) bool {
	pct = mathx.Clamp(pct, 0, 100)
	a.note("Feeder feed once " + strconvx.Itoa(pct) + "%")
	return a.q.Enqueue(types.ModuleFeeder, types.FeederFeedOnce, int32(pct))
}

// Send forwards an arbitrary command unchanged.
func (a *Actuator) Send(c types.Command) bool {
	a.note("Command " + c.Target.String() + " code " + strconvx.Itoa(int(c.Code)) + " param " + strconvx.Itoa(int(c.Param)))
	return a.q.Enqueue(c.Target, c.Code, c.Param)
}
