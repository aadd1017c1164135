// Package annunciator drives the buzzer from the alarm level.
package annunciator

import (
	"context"
	"time"

	"habitat-go/logger"
	"habitat-go/types"
	"habitat-go/x/timex"
)

type Phase uint8

const (
	PhaseSilent Phase = iota
	PhaseOn
	PhaseOff
)

func (p Phase) String() string {
	switch p {
	case PhaseSilent:
		return "silent"
	case PhaseOn:
		return "on"
	case PhaseOff:
		return "off"
	}
	return "unknown"
}

// Pattern is one alarm level's duty cycle in milliseconds.
type Pattern struct {
	OnMs, OffMs int64
}

var (
	WarningPattern = Pattern{OnMs: 500, OffMs: 500}
	ErrorPattern   = Pattern{OnMs: 1000, OffMs: 500}
)

func patternFor(l types.AlarmLevel) Pattern {
	if l == types.AlarmError {
		return ErrorPattern
	}
	return WarningPattern
}

// Machine is the buzzer phase state machine. Transitions compare elapsed
// time since the last transition, so a late tick does not lose a phase.
type Machine struct {
	phase Phase
	since int64
}

// Step advances the machine and reports whether the buzzer should sound.
func (m *Machine) Step(level types.AlarmLevel, nowMs int64) bool {
	if level == types.AlarmNone {
		m.phase = PhaseSilent
		return false
	}
	p := patternFor(level)
	switch m.phase {
	case PhaseSilent:
		m.phase, m.since = PhaseOn, nowMs
	case PhaseOn:
		if nowMs-m.since >= p.OnMs {
			m.phase, m.since = PhaseOff, nowMs
		}
	case PhaseOff:
		if nowMs-m.since >= p.OffMs {
			m.phase, m.since = PhaseOn, nowMs
		}
	}
	return m.phase == PhaseOn
}

func (m *Machine) Phase() Phase { return m.phase }

// Buzzer is the sounder output.
type Buzzer interface {
	Set(on bool)
}

// LevelSource publishes the current alarm level.
type LevelSource interface {
	Level() types.AlarmLevel
}

type Service struct {
	period time.Duration
	src    LevelSource
	out    Buzzer
	clock  timex.Clock
	log    *logger.Logger

	m   Machine
	on  bool
	set bool
}

func New(period time.Duration, src LevelSource, out Buzzer, clock timex.Clock, log *logger.Logger) *Service {
	if period <= 0 {
		period = 50 * time.Millisecond
	}
	if clock == nil {
		clock = timex.NewUptime()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{period: period, src: src, out: out, clock: clock, log: log.Named("annunciator")}
}

// Run re-evaluates the buzzer every period until ctx is done, then silences it.
func (s *Service) Run(ctx context.Context) {
	tick := time.NewTicker(s.period)
	defer tick.Stop()
	defer s.out.Set(false)
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.step(s.clock.NowMs())
		}
	}
}

func (s *Service) step(nowMs int64) {
	on := s.m.Step(s.src.Level(), nowMs)
	if s.set && on == s.on {
		return
	}
	s.on, s.set = on, true
	s.out.Set(on)
	s.log.Debugw("buzzer", "on", on, "phase", s.m.Phase())
}

// LogBuzzer logs buzzer changes, for hosts without a sounder.
type LogBuzzer struct{ Log *logger.Logger }

func (b LogBuzzer) Set(on bool) {
	if b.Log != nil {
		b.Log.Debugw("buzzer output", "on", on)
	}
}
