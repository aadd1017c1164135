package link

import (
	"context"
	"time"

	"github.com/google/uuid"

	"habitat-go/errcode"
	"habitat-go/logger"
	"habitat-go/metrics"
	"habitat-go/state"
	"habitat-go/types"
	"habitat-go/x/queue"
	"habitat-go/x/shmring"
	"habitat-go/x/timex"
)

type Config struct {
	Period       time.Duration
	StatusPeriod time.Duration
	LockTimeout  time.Duration
	MaxLine      int
	RingSize     int
	QueueDepth   int
}

func DefaultConfig() Config {
	return Config{
		Period:       10 * time.Millisecond,
		StatusPeriod: 200 * time.Millisecond,
		LockTimeout:  state.DefaultLockTimeout,
		MaxLine:      64,
		RingSize:     512,
		QueueDepth:   8,
	}
}

type Options struct {
	Config
	Port      Port
	Store     *state.Store
	Clock     timex.Clock
	Router    *Router
	Alarm     AlarmSource
	SessionID string
	Log       *logger.Logger
	Metrics   metrics.Recorder
}

// Service is the link task. A reader goroutine moves raw bytes into a ring;
// everything else happens on the task's own period.
type Service struct {
	cfg    Config
	port   Port
	store  *state.Store
	clock  timex.Clock
	router *Router
	alarm  AlarmSource
	sid    string
	log    *logger.Logger
	rec    metrics.Recorder

	ring       *shmring.Ring
	lines      *LineBuffer
	cmds       *queue.Queue[types.Command]
	lastStatus int64
	sentStatus bool
	scratch    [128]byte
}

func New(o Options) *Service {
	if o.Log == nil {
		o.Log = logger.Nop()
	}
	if o.Clock == nil {
		o.Clock = timex.NewUptime()
	}
	if o.SessionID == "" {
		o.SessionID = uuid.NewString()
	}
	return &Service{
		cfg:    o.Config,
		port:   o.Port,
		store:  o.Store,
		clock:  o.Clock,
		router: o.Router,
		alarm:  o.Alarm,
		sid:    o.SessionID,
		log:    o.Log.Named("link"),
		rec:    metrics.OrNoop(o.Metrics),
		ring:   shmring.New(o.RingSize),
		lines:  NewLineBuffer(o.MaxLine),
		cmds:   queue.New[types.Command](o.QueueDepth),
	}
}

// SessionID identifies this boot in status messages.
func (s *Service) SessionID() string { return s.sid }

// Run starts the reader and runs the link cycle every Period until ctx is done.
func (s *Service) Run(ctx context.Context) {
	go s.pump(ctx)
	tick := time.NewTicker(s.cfg.Period)
	defer tick.Stop()
	s.log.Infow("link task started", "session", s.sid, "status_period", s.cfg.StatusPeriod)
	for {
		select {
		case <-ctx.Done():
			s.log.Infow("link task stopping")
			return
		case <-s.ring.Readable():
			s.drain(s.clock.NowMs())
		case <-tick.C:
			s.step(s.clock.NowMs())
		}
	}
}

// pump copies bytes from the port into the ring. Bytes that do not fit are
// dropped; the line assembler resynchronises on the next terminator.
func (s *Service) pump(ctx context.Context) {
	buf := make([]byte, 64)
	backoff := 100 * time.Millisecond
	for ctx.Err() == nil {
		n, err := s.port.Read(buf)
		if n > 0 {
			s.ring.WriteFrom(buf[:n])
		}
		if err == nil {
			backoff = 100 * time.Millisecond
			if n == 0 && !sleep(ctx, 5*time.Millisecond) {
				return
			}
			continue
		}
		s.log.Warnw("serial read failed", "err", err, "retry_in", backoff)
		if !sleep(ctx, backoff) {
			return
		}
		if backoff < 2*time.Second {
			backoff *= 2
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s *Service) step(nowMs int64) {
	s.drain(nowMs)
	s.routeOne()
	if !s.sentStatus || nowMs-s.lastStatus >= s.cfg.StatusPeriod.Milliseconds() {
		s.pushStatus(nowMs)
	}
}

// drain consumes everything buffered so far.
func (s *Service) drain(nowMs int64) {
	if d := s.ring.Dropped(); d > 0 {
		s.log.Debugw("rx bytes dropped", "n", d)
	}
	for {
		n := s.ring.ReadInto(s.scratch[:])
		if n == 0 {
			return
		}
		for _, b := range s.scratch[:n] {
			switch s.lines.Feed(b) {
			case LineReady:
				s.handleLine(s.lines.Line(), nowMs)
			case Overflow:
				s.rec.IncLine(metrics.ResultOverflow)
				s.log.Debugw("line discarded", "reason", errcode.LineOverflow)
			}
		}
	}
}

func (s *Service) handleLine(line []byte, nowMs int64) {
	cmd, err := ParseCommand(line)
	if err != nil {
		s.rec.IncLine(metrics.ResultMalformed)
		s.log.Debugw("line discarded", "line", string(line), "reason", errcode.Of(err))
		return
	}
	s.rec.IncLine(metrics.ResultAccepted)
	if !s.store.With(s.cfg.LockTimeout, func(st *types.SystemState) {
		st.LastServerRxMs = nowMs
		st.ServerConnected = true
	}) {
		s.rec.IncLockTimeout("link")
		s.log.Debugw("connectivity not stamped", "reason", errcode.LockTimeout)
	}
	if !s.cmds.TryPush(cmd) {
		s.rec.IncCommand(cmd.Target.String(), metrics.ResultDropped)
		s.log.Debugw("server command dropped", "target", cmd.Target, "reason", errcode.QueueFull)
	}
}

func (s *Service) routeOne() {
	cmd, ok := s.cmds.TryPop()
	if !ok || s.router == nil {
		return
	}
	s.router.Route(cmd)
}

func (s *Service) pushStatus(nowMs int64) {
	snap, ok := s.store.Snapshot(s.cfg.LockTimeout)
	if !ok {
		s.rec.IncLockTimeout("link")
		return
	}
	s.lastStatus, s.sentStatus = nowMs, true

	var (
		lvl   types.AlarmLevel
		fault bool
	)
	if s.alarm != nil {
		lvl, fault = s.alarm.Level(), s.alarm.FaultLatched()
	}
	line, err := EncodeStatus(BuildStatus(&snap, s.sid, nowMs, lvl, fault))
	if err != nil {
		s.log.Errorw("status encode failed", "err", err)
		return
	}
	if _, err := s.port.Write(line); err != nil {
		s.log.Warnw("status write failed", "err", err)
	}
}
