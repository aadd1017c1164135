package canbus

import (
	"context"
	"io"
	"time"

	"habitat-go/errcode"
	"habitat-go/logger"
	"habitat-go/metrics"
	"habitat-go/state"
	"habitat-go/types"
	"habitat-go/x/conv"
	"habitat-go/x/queue"
	"habitat-go/x/timex"
)

type Config struct {
	Period      time.Duration
	RxTimeout   time.Duration
	TxTimeout   time.Duration
	LockTimeout time.Duration
	QueueDepth  int
}

func DefaultConfig() Config {
	return Config{
		Period:      5 * time.Millisecond,
		RxTimeout:   2 * time.Millisecond,
		TxTimeout:   10 * time.Millisecond,
		LockTimeout: state.DefaultLockTimeout,
		QueueDepth:  16,
	}
}

// Dialer reopens the port after it has failed.
type Dialer func(ctx context.Context) (Port, error)

type Options struct {
	Config
	Port    Port
	Redial  Dialer
	Store   *state.Store
	Clock   timex.Clock
	Log     *logger.Logger
	Metrics metrics.Recorder
}

// Service is the bus task. Any task may call Enqueue; only Run touches the port.
type Service struct {
	cfg   Config
	port  Port
	store *state.Store
	clock timex.Clock
	out   *queue.Queue[types.Command]
	log   *logger.Logger
	rec   metrics.Recorder

	redial  Dialer
	down    bool
	retryAt int64
	backoff int64
}

const (
	minBackoffMs = 100
	maxBackoffMs = 5000
)

func New(o Options) *Service {
	if o.Log == nil {
		o.Log = logger.Nop()
	}
	if o.Clock == nil {
		o.Clock = timex.NewUptime()
	}
	return &Service{
		cfg:   o.Config,
		port:  o.Port,
		store: o.Store,
		clock: o.Clock,
		out:   queue.New[types.Command](o.QueueDepth),
		log:   o.Log.Named("canbus"),
		rec:   metrics.OrNoop(o.Metrics),

		redial: o.Redial,
	}
}

// Enqueue schedules a command for transmission. It never blocks; when the
// outbound queue is full the command is dropped and false is returned.
func (s *Service) Enqueue(target types.ModuleID, code types.CommandCode, param int32) bool {
	if s.out.TryPush(types.Command{Target: target, Code: code, Param: param}) {
		return true
	}
	s.rec.IncCommand(target.String(), metrics.ResultDropped)
	s.log.Debugw("command dropped", "target", target, "code", int(code), "reason", errcode.QueueFull)
	return false
}

// Pending returns the number of queued commands.
func (s *Service) Pending() int { return s.out.Len() }

// Run executes the receive/transmit cycle every Period until ctx is done.
func (s *Service) Run(ctx context.Context) {
	tick := time.NewTicker(s.cfg.Period)
	defer tick.Stop()
	s.log.Infow("bus task started", "period", s.cfg.Period)
	for {
		select {
		case <-ctx.Done():
			s.log.Infow("bus task stopping")
			return
		case <-tick.C:
			s.step(ctx)
		}
	}
}

// Down reports whether the port has failed and is waiting to be retried.
func (s *Service) Down() bool { return s.down }

// step handles at most one inbound frame and one outbound command. After a
// port failure the cycle is skipped until the retry time, then the port is
// redialled (if a Dialer was given) and probed again.
func (s *Service) step(ctx context.Context) {
	if s.down && !s.retry(ctx) {
		return
	}
	rctx, cancel := context.WithTimeout(ctx, s.cfg.RxTimeout)
	f, err := s.port.Receive(rctx)
	cancel()
	switch {
	case err == nil:
		s.recovered()
		s.accept(&f)
	case errcode.Of(err) == errcode.Timeout || ctx.Err() != nil:
		s.recovered()
	default:
		s.failed(err)
		return
	}

	cmd, ok := s.out.TryPop()
	if !ok {
		return
	}
	tctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout)
	err = s.port.Transmit(tctx, EncodeCommand(cmd))
	cancel()
	if err != nil {
		s.rec.IncCommand(cmd.Target.String(), metrics.ResultFailed)
		s.log.Warnw("transmit failed", "target", cmd.Target, "code", int(cmd.Code), "err", err)
		return
	}
	s.rec.IncCommand(cmd.Target.String(), metrics.ResultSent)
	s.log.Debugw("command sent", "target", cmd.Target, "code", int(cmd.Code), "param", cmd.Param)
}

func (s *Service) failed(err error) {
	now := s.clock.NowMs()
	if !s.down {
		s.down, s.backoff = true, minBackoffMs
		s.log.Warnw("receive failed, bus down", "err", err, "retry_in_ms", s.backoff)
	} else {
		s.backoff = min(s.backoff*2, maxBackoffMs)
		s.log.Debugw("bus still down", "err", err, "retry_in_ms", s.backoff)
	}
	s.retryAt = now + s.backoff
}

func (s *Service) recovered() {
	if s.down {
		s.down = false
		s.log.Infow("bus recovered")
	}
}

// retry reports whether this cycle may use the port.
func (s *Service) retry(ctx context.Context) bool {
	if s.clock.NowMs() < s.retryAt {
		return false
	}
	if s.redial == nil {
		return true
	}
	p, err := s.redial(ctx)
	if err != nil {
		s.failed(err)
		return false
	}
	if c, ok := s.port.(io.Closer); ok {
		_ = c.Close()
	}
	s.port = p
	return true
}

func (s *Service) accept(f *Frame) {
	now := s.clock.NowMs()
	var (
		mod types.ModuleID
		err error
	)
	if !s.store.With(s.cfg.LockTimeout, func(st *types.SystemState) {
		mod, err = Apply(st, f, now)
	}) {
		s.rec.IncLockTimeout("canbus")
		s.log.Debugw("frame dropped", "id", conv.Hex32(f.ID), "reason", errcode.LockTimeout)
		return
	}
	switch {
	case err == nil:
		s.rec.IncFrame(mod.String(), metrics.ResultAccepted)
	case errcode.Of(err) == errcode.UnknownModule:
		s.rec.IncFrame("unknown", metrics.ResultIgnored)
		s.log.Debugw("frame ignored", "id", conv.Hex32(f.ID), "reason", err)
	default:
		s.rec.IncFrame(mod.String(), metrics.ResultIgnored)
		s.log.Debugw("frame ignored", "id", conv.Hex32(f.ID), "len", f.Len, "reason", err)
	}
}
