// Package controller assembles the controller tasks around one state store
// and runs them until the context ends.
package controller

import (
	"context"

	"golang.org/x/sync/errgroup"

	"habitat-go/errcode"
	"habitat-go/logger"
	"habitat-go/metrics"
	"habitat-go/services/actuator"
	"habitat-go/services/annunciator"
	"habitat-go/services/canbus"
	"habitat-go/services/config"
	"habitat-go/services/eventlog"
	"habitat-go/services/heartbeat"
	"habitat-go/services/input"
	"habitat-go/services/link"
	"habitat-go/services/settings"
	"habitat-go/services/supervisor"
	"habitat-go/services/ui"
	"habitat-go/state"
	"habitat-go/types"
	"habitat-go/x/timex"
)

type Options struct {
	Config config.Config

	BusPort    canbus.Port
	BusRedial  canbus.Dialer
	LinkPort   link.Port
	Settings   settings.Store
	Input      input.Source
	Display    ui.Display
	Buzzer     annunciator.Buzzer
	Indicators supervisor.Indicators

	SessionID string
	Clock     timex.Clock
	Log       *logger.Logger
	Metrics   metrics.Recorder
}

// Controller owns every task. Fields are exposed for entry points and tests.
type Controller struct {
	Store       *state.Store
	Clock       timex.Clock
	TimeOfDay   *timex.TimeOfDay
	Events      *eventlog.Log
	Settings    *settings.Manager
	Actuator    *actuator.Actuator
	Bus         *canbus.Service
	Link        *link.Service
	Supervisor  *supervisor.Supervisor
	Annunciator *annunciator.Service
	UI          *ui.Handler
	Heartbeat   *heartbeat.Service

	log *logger.Logger
}

// New loads settings and builds the tasks. Nothing runs until Run.
func New(ctx context.Context, o Options) (*Controller, error) {
	if o.Log == nil {
		o.Log = logger.Nop()
	}
	if o.Clock == nil {
		o.Clock = timex.NewUptime()
	}
	if o.BusPort == nil || o.LinkPort == nil || o.Settings == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "controller.new", Msg: "bus port, link port and settings store are required"}
	}
	if err := o.Config.Validate(); err != nil {
		return nil, err
	}
	if o.Buzzer == nil {
		o.Buzzer = annunciator.LogBuzzer{Log: o.Log}
	}
	if o.Indicators == nil {
		o.Indicators = &supervisor.LogIndicators{Log: o.Log}
	}
	cfg := o.Config
	log := o.Log

	mgr, err := settings.Open(ctx, o.Settings, log)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		Store:     state.New(),
		Clock:     o.Clock,
		TimeOfDay: &timex.TimeOfDay{},
		Settings:  mgr,
		log:       log.Named("controller"),
	}
	c.Events = eventlog.New(cfg.EventLogSize, o.Clock, log)

	// The grow LED starts at its persisted level.
	s := mgr.Settings()
	c.Store.With(state.DefaultLockTimeout, func(st *types.SystemState) {
		st.Grow.LEDBrightness = s.GrowLEDBrightness
	})

	c.Bus = canbus.New(canbus.Options{
		Config:  cfg.Bus,
		Port:    o.BusPort,
		Redial:  o.BusRedial,
		Store:   c.Store,
		Clock:   o.Clock,
		Log:     log,
		Metrics: o.Metrics,
	})
	c.Actuator = actuator.New(c.Bus, c.Events)

	c.Supervisor = supervisor.New(supervisor.Options{
		Config:     cfg.Supervisor,
		Store:      c.Store,
		Clock:      o.Clock,
		TimeOfDay:  c.TimeOfDay,
		Feeder:     c.Actuator,
		Schedule:   mgr,
		Indicators: o.Indicators,
		Events:     c.Events,
		Log:        log,
		Metrics:    o.Metrics,
	})

	c.Link = link.New(link.Options{
		Config: cfg.Link,
		Port:   o.LinkPort,
		Store:  c.Store,
		Clock:  o.Clock,
		Router: &link.Router{
			Act:         c.Actuator,
			Faults:      c.Supervisor,
			Clock:       c.TimeOfDay,
			Now:         o.Clock,
			Store:       c.Store,
			LockTimeout: cfg.Link.LockTimeout,
			Log:         log.Named("router"),
		},
		Alarm:     c.Supervisor,
		SessionID: o.SessionID,
		Log:       log,
		Metrics:   o.Metrics,
	})

	c.Annunciator = annunciator.New(cfg.AnnunciatorPeriod, c.Supervisor, o.Buzzer, o.Clock, log)

	c.UI = ui.New(ui.Options{
		Config:   cfg.UI,
		Store:    c.Store,
		Input:    o.Input,
		Act:      c.Actuator,
		Settings: mgr,
		Faults:   c.Supervisor,
		Alarm:    c.Supervisor,
		Events:   c.Events,
		Display:  o.Display,
		Clock:    o.Clock,
		Log:      log,
	})

	c.Heartbeat = heartbeat.New(cfg.HeartbeatPeriod, c.Store, c.Supervisor, o.Clock, log)
	return c, nil
}

// Run starts every task and blocks until ctx is done and all tasks have
// returned.
func (c *Controller) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	tasks := []struct {
		name string
		run  func(context.Context)
	}{
		{"canbus", c.Bus.Run},
		{"link", c.Link.Run},
		{"ui", c.UI.Run},
		{"supervisor", c.Supervisor.Run},
		{"annunciator", c.Annunciator.Run},
		{"heartbeat", c.Heartbeat.Run},
	}
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			t.run(ctx)
			return nil
		})
	}
	c.log.Infow("controller started", "session", c.Link.SessionID(), "tasks", len(tasks))
	c.Events.Add("Controller started")
	err := g.Wait()
	c.log.Infow("controller stopped")
	return err
}
