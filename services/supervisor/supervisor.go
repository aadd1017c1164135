// Package supervisor runs the periodic health pass: server connectivity,
// module staleness, fault flags, the fail-safe feeder and the alarm latch.
package supervisor

import (
	"context"
	"sync/atomic"
	"time"

	"habitat-go/logger"
	"habitat-go/metrics"
	"habitat-go/state"
	"habitat-go/types"
	"habitat-go/x/timex"
)

type Config struct {
	Period        time.Duration
	StaleAfter    time.Duration
	ServerTimeout time.Duration
	LockTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Period:        100 * time.Millisecond,
		StaleAfter:    1000 * time.Millisecond,
		ServerTimeout: 5000 * time.Millisecond,
		LockTimeout:   state.DefaultLockTimeout,
	}
}

// Feeder issues a single feed.
type Feeder interface {
	RequestFeedOnce(pct int) bool
}

// ScheduleSource supplies the current feeder schedule.
type ScheduleSource interface {
	Settings() types.SystemSettings
}

// EventSink records operator-visible events.
type EventSink interface {
	Add(msg string)
}

type Options struct {
	Config
	Store      *state.Store
	Clock      timex.Clock
	TimeOfDay  *timex.TimeOfDay
	Feeder     Feeder
	Schedule   ScheduleSource
	Indicators Indicators
	Events     EventSink
	Log        *logger.Logger
	Metrics    metrics.Recorder
}

type Supervisor struct {
	cfg        Config
	store      *state.Store
	clock      timex.Clock
	tod        *timex.TimeOfDay
	feeder     Feeder
	schedule   ScheduleSource
	indicators Indicators
	events     EventSink
	log        *logger.Logger
	rec        metrics.Recorder

	// owned by the supervisor task
	alarm         AlarmLatch
	lastFeedAt    int64 // absolute minute of the last fail-safe feed, -1 = none
	wasConnected  bool
	havePublished bool

	// shared with other tasks
	clearReq atomic.Bool
	level    atomic.Uint32
	latched  atomic.Bool
}

func New(o Options) *Supervisor {
	if o.Log == nil {
		o.Log = logger.Nop()
	}
	if o.Clock == nil {
		o.Clock = timex.NewUptime()
	}
	if o.TimeOfDay == nil {
		o.TimeOfDay = &timex.TimeOfDay{}
	}
	return &Supervisor{
		cfg:        o.Config,
		store:      o.Store,
		clock:      o.Clock,
		tod:        o.TimeOfDay,
		feeder:     o.Feeder,
		schedule:   o.Schedule,
		indicators: o.Indicators,
		events:     o.Events,
		log:        o.Log.Named("supervisor"),
		rec:        metrics.OrNoop(o.Metrics),
		lastFeedAt: -1,
	}
}

// Level returns the current alarm level. Safe from any goroutine.
func (s *Supervisor) Level() types.AlarmLevel { return types.AlarmLevel(s.level.Load()) }

// FaultLatched reports whether the error latch is held.
func (s *Supervisor) FaultLatched() bool { return s.latched.Load() }

// ClearFault requests an operator fault reset. It clears the leak inputs and
// releases the error latch on the next pass.
func (s *Supervisor) ClearFault() { s.clearReq.Store(true) }

// Run executes Pass every Period until ctx is done.
func (s *Supervisor) Run(ctx context.Context) {
	tick := time.NewTicker(s.cfg.Period)
	defer tick.Stop()
	s.log.Infow("supervisor task started", "period", s.cfg.Period)
	for {
		select {
		case <-ctx.Done():
			s.log.Infow("supervisor task stopping")
			return
		case <-tick.C:
			s.Pass(s.clock.NowMs())
		}
	}
}

type passView struct {
	connected  bool
	hasError   bool
	hasWarning bool
	allOK      bool
	status     [len(types.Modules)]types.ModuleStatus
}

// Pass runs one supervision cycle. It returns false if the state lock could
// not be acquired, in which case nothing was changed.
func (s *Supervisor) Pass(nowMs int64) bool {
	clear := s.clearReq.Swap(false)
	staleMs := s.cfg.StaleAfter.Milliseconds()
	timeoutMs := s.cfg.ServerTimeout.Milliseconds()

	var v passView
	ok := s.store.With(s.cfg.LockTimeout, func(st *types.SystemState) {
		if clear {
			st.Grow.Leak = [types.LeakSensors]bool{}
		}
		st.ServerConnected = nowMs-st.LastServerRxMs < timeoutMs
		for i, id := range types.Modules {
			h := st.Header(id)
			if h.Stale(nowMs, staleMs) {
				h.Status = types.StatusOffline
			}
			v.status[i] = h.Status
		}
		st.HasError = st.CriticalFault()
		st.HasWarning = !st.HasError && st.AnyOffline()

		v.connected = st.ServerConnected
		v.hasError = st.HasError
		v.hasWarning = st.HasWarning
		v.allOK = st.AllOK()
	})
	if !ok {
		if clear {
			s.clearReq.Store(true)
		}
		s.rec.IncLockTimeout("supervisor")
		return false
	}

	if clear {
		s.alarm.Clear()
		s.note("Fault cleared by operator")
	}
	s.updateAlarm(v.hasError, v.hasWarning)
	s.updateConnectivity(v.connected)
	s.failSafe(nowMs, v.connected)

	if s.indicators != nil {
		s.indicators.Show(v.connected, v.allOK, v.hasWarning || v.hasError)
	}
	for i, id := range types.Modules {
		s.rec.SetModuleStatus(id.String(), int(v.status[i]))
	}
	return true
}

func (s *Supervisor) updateAlarm(hasError, hasWarning bool) {
	prev := s.Level()
	lvl := s.alarm.Step(hasError, hasWarning)
	s.level.Store(uint32(lvl))
	s.latched.Store(s.alarm.Latched())
	if lvl != prev {
		s.rec.SetAlarmLevel(int(lvl))
		s.log.Infow("alarm level changed", "from", prev, "to", lvl)
	}
}

func (s *Supervisor) updateConnectivity(connected bool) {
	if s.havePublished && connected == s.wasConnected {
		return
	}
	if s.havePublished {
		if connected {
			s.note("Server link restored")
		} else {
			s.note("Server link lost, fail-safe active")
		}
	}
	s.wasConnected, s.havePublished = connected, true
	s.rec.SetServerConnected(connected)
}

// failSafe issues the scheduled feed while the server is unreachable, at
// most once per wall minute. Reconnecting re-arms it.
func (s *Supervisor) failSafe(nowMs int64, connected bool) {
	if connected {
		s.lastFeedAt = -1
		return
	}
	if s.feeder == nil || s.schedule == nil {
		return
	}
	set := s.schedule.Settings()
	if s.tod.MinuteOfDay(nowMs) != set.FeederMinuteOfDay() {
		return
	}
	abs := s.tod.Minute(nowMs)
	if abs == s.lastFeedAt || set.FeederAmountPercent == 0 {
		return
	}
	s.lastFeedAt = abs
	queued := s.feeder.RequestFeedOnce(int(set.FeederAmountPercent))
	s.rec.IncFailSafeFeed()
	s.log.Warnw("fail-safe feed issued", "amount", int(set.FeederAmountPercent), "queued", queued)
}

func (s *Supervisor) note(msg string) {
	if s.events != nil {
		s.events.Add(msg)
	} else {
		s.log.Infow(msg)
	}
}
