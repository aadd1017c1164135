package link

import (
	"time"

	"habitat-go/errcode"
	"habitat-go/logger"
	"habitat-go/state"
	"habitat-go/types"
	"habitat-go/x/timex"
)

// Actuator is the actuation surface used for server commands.
type Actuator interface {
	RequestPump(on bool) bool
	RequestLight(on bool) bool
	RequestLEDBrightness(pct int) bool
	RequestFeedOnce(pct int) bool
	Send(c types.Command) bool
}

// FaultClearer releases the latched error.
type FaultClearer interface {
	ClearFault()
}

// ClockSetter adjusts the time-of-day clock.
type ClockSetter interface {
	SetMinuteOfDay(nowMs int64, minute int)
}

// Router dispatches server commands. Known module commands go through the
// actuation helpers, controller commands are handled locally and anything
// else is passed to the bus unchanged. Pump and light requests are recorded
// in Store before they are queued, as a local toggle would.
type Router struct {
	Act         Actuator
	Faults      FaultClearer
	Clock       ClockSetter
	Now         timex.Clock
	Store       *state.Store
	LockTimeout time.Duration
	Log         *logger.Logger
}

func (r *Router) Route(c types.Command) {
	switch c.Target {
	case types.ModuleController:
		r.controller(c)
		return
	case types.ModuleTank:
		switch c.Code {
		case types.TankSetPump:
			on := c.Param != 0
			r.record(c, func(st *types.SystemState) { st.Tank.PumpOn = on })
			r.Act.RequestPump(on)
			return
		case types.TankSetLight:
			on := c.Param != 0
			r.record(c, func(st *types.SystemState) { st.Tank.LightOn = on })
			r.Act.RequestLight(on)
			return
		}
	case types.ModuleGrow:
		if c.Code == types.GrowSetLEDBrightness {
			r.Act.RequestLEDBrightness(int(c.Param))
			return
		}
	case types.ModuleFeeder:
		if c.Code == types.FeederFeedOnce {
			r.Act.RequestFeedOnce(int(c.Param))
			return
		}
	}
	r.Act.Send(c)
}

func (r *Router) controller(c types.Command) {
	switch c.Code {
	case types.ControllerPing:
	case types.ControllerClearFault:
		if r.Faults != nil {
			r.Faults.ClearFault()
		}
	case types.ControllerSetClock:
		if c.Param < 0 || c.Param >= types.MinutesPerDay || r.Clock == nil || r.Now == nil {
			r.logf("clock command rejected", c)
			return
		}
		r.Clock.SetMinuteOfDay(r.Now.NowMs(), int(c.Param))
	default:
		r.logf("unknown controller command", c)
	}
}

// record applies the requested state. A lock timeout leaves the state to
// the next local toggle; the command is still sent.
func (r *Router) record(c types.Command, f func(st *types.SystemState)) {
	if r.Store == nil {
		return
	}
	timeout := r.LockTimeout
	if timeout <= 0 {
		timeout = state.DefaultLockTimeout
	}
	if !r.Store.With(timeout, f) && r.Log != nil {
		r.Log.Debugw("requested state not recorded", "code", int(c.Code), "reason", errcode.LockTimeout)
	}
}

func (r *Router) logf(msg string, c types.Command) {
	if r.Log != nil {
		r.Log.Debugw(msg, "code", int(c.Code), "param", c.Param)
	}
}
