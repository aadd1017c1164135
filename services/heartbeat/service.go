// Package heartbeat logs a periodic liveness line with a system summary and
// runtime memory figures.
package heartbeat

import (
	"context"
	"runtime"
	"time"

	"habitat-go/errcode"
	"habitat-go/logger"
	"habitat-go/state"
	"habitat-go/types"
	"habitat-go/x/timex"
)

type AlarmSource interface {
	Level() types.AlarmLevel
}

type Service struct {
	interval time.Duration
	store    *state.Store
	alarm    AlarmSource
	clock    timex.Clock
	log      *logger.Logger
}

func New(interval time.Duration, store *state.Store, alarm AlarmSource, clock timex.Clock, log *logger.Logger) *Service {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if clock == nil {
		clock = timex.NewUptime()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{interval: interval, store: store, alarm: alarm, clock: clock, log: log.Named("heartbeat")}
}

func (s *Service) Run(ctx context.Context) {
	tick := time.NewTicker(s.interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Infow("heartbeat service stopping")
			return
		case <-tick.C:
			s.Beat(s.clock.NowMs())
		}
	}
}

// Beat emits one heartbeat line. It reports false if the state could not be read.
func (s *Service) Beat(nowMs int64) bool {
	snap, ok := s.store.Snapshot(state.DefaultLockTimeout)
	if !ok {
		s.log.Warnw("heartbeat skipped", "reason", errcode.LockTimeout)
		return false
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	lvl := types.AlarmNone
	if s.alarm != nil {
		lvl = s.alarm.Level()
	}
	s.log.Infow("heartbeat",
		"uptime_ms", nowMs,
		"alarm", lvl,
		"server", snap.ServerConnected,
		"offline", snap.AnyOffline(),
		"heap_alloc", uint32(ms.HeapAlloc),
		"gc", ms.NumGC,
	)
	return true
}
