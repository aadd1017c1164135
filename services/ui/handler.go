// Package ui maps encoder input onto screens and actions and decides when
// the display is redrawn or dimmed.
package ui

import (
	"context"
	"time"

	"habitat-go/errcode"
	"habitat-go/logger"
	"habitat-go/services/eventlog"
	"habitat-go/services/input"
	"habitat-go/state"
	"habitat-go/types"
	"habitat-go/x/strconvx"
	"habitat-go/x/timex"
)

type Config struct {
	Period      time.Duration
	RenderEvery time.Duration
	LockTimeout time.Duration
	LogLines    int
}

func DefaultConfig() Config {
	return Config{
		Period:      20 * time.Millisecond,
		RenderEvery: 5 * time.Second,
		LockTimeout: state.DefaultLockTimeout,
		LogLines:    8,
	}
}

type Actuator interface {
	RequestPump(on bool) bool
	RequestLight(on bool) bool
	RequestLEDBrightness(pct int) bool
}

type SettingsManager interface {
	Settings() types.SystemSettings
	Update(ctx context.Context, f func(s *types.SystemSettings)) error
}

type FaultClearer interface {
	ClearFault()
}

type AlarmSource interface {
	Level() types.AlarmLevel
}

type EventLog interface {
	Add(msg string)
	Recent(n int) []eventlog.Entry
	Clear()
}

type Options struct {
	Config
	Store    *state.Store
	Input    input.Source
	Act      Actuator
	Settings SettingsManager
	Faults   FaultClearer
	Alarm    AlarmSource
	Events   EventLog
	Display  Display
	Clock    timex.Clock
	Log      *logger.Logger
}

type Handler struct {
	cfg      Config
	store    *state.Store
	in       input.Source
	act      Actuator
	settings SettingsManager
	faults   FaultClearer
	alarm    AlarmSource
	events   EventLog
	disp     Display
	clock    timex.Clock
	log      *logger.Logger

	screen     Screen
	dirty      bool
	lastRender int64
	lastInput  int64
	backlight  bool
}

func New(o Options) *Handler {
	if o.Log == nil {
		o.Log = logger.Nop()
	}
	if o.Clock == nil {
		o.Clock = timex.NewUptime()
	}
	if o.Display == nil {
		o.Display = LogDisplay{Log: o.Log.Named("display")}
	}
	return &Handler{
		cfg:       o.Config,
		store:     o.Store,
		in:        o.Input,
		act:       o.Act,
		settings:  o.Settings,
		faults:    o.Faults,
		alarm:     o.Alarm,
		events:    o.Events,
		disp:      o.Display,
		clock:     o.Clock,
		log:       o.Log.Named("ui"),
		dirty:     true,
		backlight: true,
	}
}

func (h *Handler) Screen() Screen { return h.screen }

func (h *Handler) Run(ctx context.Context) {
	tick := time.NewTicker(h.cfg.Period)
	defer tick.Stop()
	now := h.clock.NowMs()
	h.lastInput = now
	h.disp.SetBacklight(true)
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			h.Step(ctx, h.clock.NowMs())
		}
	}
}

// Step handles queued input, then redraws or dims as needed.
func (h *Handler) Step(ctx context.Context, nowMs int64) {
	if h.in != nil {
	drain:
		for {
			select {
			case ev := <-h.in.Events():
				h.lastInput = nowMs
				if !h.backlight {
					// The first touch only wakes the panel.
					h.setBacklight(true)
					h.dirty = true
					continue
				}
				h.handle(ctx, ev)
			default:
				break drain
			}
		}
	}

	if h.backlight && h.settings != nil {
		if off := int64(h.settings.Settings().DisplayOffMinutes); off > 0 && nowMs-h.lastInput >= off*60_000 {
			h.setBacklight(false)
		}
	}

	if h.dirty || nowMs-h.lastRender >= h.cfg.RenderEvery.Milliseconds() {
		h.render(nowMs)
	}
}

func (h *Handler) setBacklight(on bool) {
	h.backlight = on
	h.disp.SetBacklight(on)
}

func (h *Handler) handle(ctx context.Context, ev input.Event) {
	switch ev.Kind {
	case input.Step:
		if next := h.screen.Step(ev.Delta); next != h.screen {
			h.screen = next
			h.dirty = true
		}
	case input.ShortClick, input.LongClick:
		h.click(ctx, ev.Kind == input.LongClick)
		h.dirty = true
	}
}

func (h *Handler) click(ctx context.Context, long bool) {
	switch h.screen {
	case Tank:
		if long {
			h.toggleLight()
		} else {
			h.togglePump()
		}
	case Grow:
		if long {
			if h.faults != nil {
				h.faults.ClearFault()
			}
			h.note("Grow leaks reset")
		} else {
			h.cycleLED(ctx)
		}
	case Settings:
		if long {
			if h.updateSettings(ctx, func(s *types.SystemSettings) { s.FactoryInitialized = !s.FactoryInitialized }) {
				h.note("Settings: factoryInitialized = " + flag(h.settings.Settings().FactoryInitialized))
			}
		} else {
			if h.updateSettings(ctx, func(s *types.SystemSettings) { s.DisplayOffMinutes = nextDisplayOff(s.DisplayOffMinutes) }) {
				h.note("Settings: displayOffMinutes = " + strconvx.Itoa(int(h.settings.Settings().DisplayOffMinutes)))
			}
		}
	case Log:
		if long {
			if h.events != nil {
				h.events.Clear()
			}
		} else {
			h.note("Log marker")
		}
	default:
		h.log.Debugw("no action", "screen", h.screen, "long", long)
	}
}

func (h *Handler) togglePump() {
	var on bool
	if !h.store.With(h.cfg.LockTimeout, func(st *types.SystemState) {
		st.Tank.PumpOn = !st.Tank.PumpOn
		on = st.Tank.PumpOn
	}) {
		h.log.Warnw("pump toggle skipped", "reason", errcode.LockTimeout)
		return
	}
	h.act.RequestPump(on)
}

func (h *Handler) toggleLight() {
	var on bool
	if !h.store.With(h.cfg.LockTimeout, func(st *types.SystemState) {
		st.Tank.LightOn = !st.Tank.LightOn
		on = st.Tank.LightOn
	}) {
		h.log.Warnw("light toggle skipped", "reason", errcode.LockTimeout)
		return
	}
	h.act.RequestLight(on)
}

func (h *Handler) cycleLED(ctx context.Context) {
	var pct uint8
	if !h.store.With(h.cfg.LockTimeout, func(st *types.SystemState) {
		st.Grow.LEDBrightness = nextLED(st.Grow.LEDBrightness)
		pct = st.Grow.LEDBrightness
	}) {
		h.log.Warnw("led cycle skipped", "reason", errcode.LockTimeout)
		return
	}
	h.updateSettings(ctx, func(s *types.SystemSettings) { s.GrowLEDBrightness = pct })
	h.act.RequestLEDBrightness(int(pct))
}

// updateSettings reports whether the change was saved.
func (h *Handler) updateSettings(ctx context.Context, f func(s *types.SystemSettings)) bool {
	if h.settings == nil {
		return false
	}
	if err := h.settings.Update(ctx, f); err != nil {
		h.log.Errorw("settings update failed", "err", err)
		return false
	}
	return true
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (h *Handler) note(msg string) {
	if h.events != nil {
		h.events.Add(msg)
	}
}

func (h *Handler) render(nowMs int64) {
	snap, ok := h.store.Snapshot(h.cfg.LockTimeout)
	if !ok {
		return
	}
	v := View{Screen: h.screen, State: snap, NowMs: nowMs}
	if h.settings != nil {
		v.Settings = h.settings.Settings()
	}
	if h.alarm != nil {
		v.Alarm = h.alarm.Level()
	}
	if h.events != nil && h.screen == Log {
		v.Events = h.events.Recent(h.cfg.LogLines)
	}
	h.disp.Render(v)
	h.dirty = false
	h.lastRender = nowMs
}
