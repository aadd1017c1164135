// Package simulator plays the four field modules on an in-memory bus so the
// controller can run without hardware.
package simulator

import (
	"context"
	"sync"
	"time"

	"habitat-go/logger"
	"habitat-go/services/canbus"
	"habitat-go/types"
	"habitat-go/x/mathx"
	"habitat-go/x/timex"
)

const (
	ambientC        = 22.0
	pumpHeatCPerSec = 0.05
	driftCPerSec    = 0.02
	feedMsPerPct    = 100
)

type Options struct {
	Port   *canbus.MemPort
	Period time.Duration
	Clock  timex.Clock
	Log    *logger.Logger
}

type tank struct {
	tempC, level, ph, tds float64
	pump, light           bool
}

type Simulator struct {
	port   *canbus.MemPort
	period time.Duration
	clock  timex.Clock
	log    *logger.Logger

	mu       sync.Mutex
	tank     tank
	growLED  uint8
	leaks    uint8
	nutrient [types.NutrientChannels]uint8
	dosing   uint8
	nutLevel float64
	feed     float64
	feedTill int64
	silent   [len(types.Modules) + 1]bool
	last     int64
}

func New(o Options) *Simulator {
	if o.Period <= 0 {
		o.Period = 500 * time.Millisecond
	}
	if o.Clock == nil {
		o.Clock = timex.NewUptime()
	}
	if o.Log == nil {
		o.Log = logger.Nop()
	}
	return &Simulator{
		port:     o.Port,
		period:   o.Period,
		clock:    o.Clock,
		log:      o.Log.Named("sim"),
		tank:     tank{tempC: ambientC, level: 80, ph: 7.0, tds: 450},
		nutrient: [types.NutrientChannels]uint8{25, 25, 25, 25},
		nutLevel: 70,
		feed:     90,
		last:     -1,
	}
}

// Run emits telemetry every period until ctx is done.
func (s *Simulator) Run(ctx context.Context) {
	t := time.NewTicker(s.period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Step(s.clock.NowMs())
		}
	}
}

// SetSilent stops (or resumes) telemetry from one module.
func (s *Simulator) SetSilent(m types.ModuleID, silent bool) {
	if !m.IsField() {
		return
	}
	s.mu.Lock()
	s.silent[m] = silent
	s.mu.Unlock()
}

// SetLeaks sets the grow module's leak inputs.
func (s *Simulator) SetLeaks(mask uint8) {
	s.mu.Lock()
	s.leaks = mask & 0x0F
	s.mu.Unlock()
}

// Step applies pending commands, advances the model and emits one frame per
// module that is not silenced.
func (s *Simulator) Step(nowMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyCommands(nowMs)
	s.advance(nowMs)
	for _, m := range types.Modules {
		if s.silent[m] {
			continue
		}
		if !s.port.Inject(s.frame(m, nowMs)) {
			s.log.Debugw("bus full, telemetry dropped", "module", m)
		}
	}
}

func (s *Simulator) applyCommands(nowMs int64) {
	for {
		select {
		case f := <-s.port.Sent():
			c, ok := canbus.DecodeCommand(f)
			if !ok {
				continue
			}
			s.apply(c, nowMs)
		default:
			return
		}
	}
}

func (s *Simulator) apply(c types.Command, nowMs int64) {
	switch {
	case c.Target == types.ModuleTank && c.Code == types.TankSetPump:
		s.tank.pump = c.Param != 0
	case c.Target == types.ModuleTank && c.Code == types.TankSetLight:
		s.tank.light = c.Param != 0
	case c.Target == types.ModuleGrow && c.Code == types.GrowSetLEDBrightness:
		s.growLED = uint8(mathx.Clamp(c.Param, 0, 100))
	case c.Target == types.ModuleFeeder && c.Code == types.FeederFeedOnce:
		pct := mathx.Clamp(c.Param, 0, 100)
		s.feedTill = nowMs + int64(pct)*feedMsPerPct
		s.feed = mathx.Clamp(s.feed-float64(pct)/10, 0, 100)
	default:
		s.log.Debugw("command ignored", "target", c.Target, "code", int(c.Code))
		return
	}
	s.log.Debugw("command applied", "target", c.Target, "code", int(c.Code), "param", c.Param)
}

func (s *Simulator) advance(nowMs int64) {
	if s.last < 0 {
		s.last = nowMs
		return
	}
	dt := float64(nowMs-s.last) / 1000
	s.last = nowMs

	t := &s.tank
	if t.pump {
		t.tempC += pumpHeatCPerSec * dt
	} else if t.tempC > ambientC {
		t.tempC = mathx.Max(t.tempC-driftCPerSec*dt, ambientC)
	}
	t.tempC = mathx.Clamp(t.tempC, 0, 40)

	// One dosing channel runs at a time, round robin per second of sim time.
	s.dosing = 1 << ((nowMs / 1000) % types.NutrientChannels)
	s.nutLevel = mathx.Clamp(s.nutLevel-0.001*dt, 0, 100)
}

func (s *Simulator) frame(m types.ModuleID, nowMs int64) canbus.Frame {
	f := canbus.Frame{ID: canbus.StatusID(m), Len: canbus.MaxDataLen}
	d := &f.Data
	switch m {
	case types.ModuleTank:
		t := &s.tank
		d[0] = uint8(t.tempC)
		d[1] = uint8(t.level)
		d[2] = uint8(t.ph * 10)
		d[3] = uint8(mathx.Clamp(t.tds/10, 0, 255))
		d[4] = 3
		d[5] = 82
	case types.ModuleGrow:
		d[0] = uint8(ambientC) + s.growLED/25
		d[1] = 60
		d[2] = s.leaks
	case types.ModuleNutrient:
		copy(d[:4], s.nutrient[:])
		d[4] = s.dosing
		d[5] = uint8(s.nutLevel)
	case types.ModuleFeeder:
		d[0] = uint8(s.feed)
		if nowMs < s.feedTill {
			d[1] = 0x01
		}
	}
	return f
}
