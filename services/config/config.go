// Package config holds the controller's runtime tuning: task periods, queue
// depths and timeouts. Values start from compiled defaults, then a per-device
// profile, then (on the host) a config file and the environment.
package config

import (
	"time"

	"habitat-go/errcode"
	"habitat-go/services/canbus"
	"habitat-go/services/eventlog"
	"habitat-go/services/link"
	"habitat-go/services/supervisor"
	"habitat-go/services/ui"
)

const DefaultDevice = "pico"

type Config struct {
	Device            string
	LogLevel          string
	EventLogSize      int
	AnnunciatorPeriod time.Duration
	HeartbeatPeriod   time.Duration

	Bus        canbus.Config
	Link       link.Config
	UI         ui.Config
	Supervisor supervisor.Config
}

// Defaults returns the compiled-in configuration.
func Defaults() Config {
	return Config{
		Device:            DefaultDevice,
		LogLevel:          "info",
		EventLogSize:      eventlog.DefaultSize,
		AnnunciatorPeriod: 50 * time.Millisecond,
		HeartbeatPeriod:   10 * time.Second,
		Bus:               canbus.DefaultConfig(),
		Link:              link.DefaultConfig(),
		UI:                ui.DefaultConfig(),
		Supervisor:        supervisor.DefaultConfig(),
	}
}

// EmbeddedConfigLookup resolves a device profile. Tests may replace it.
var EmbeddedConfigLookup = func(device string) (func(*Config), bool) {
	p, ok := embeddedConfigs[device]
	return p, ok
}

var embeddedConfigs = map[string]func(*Config){
	"pico": func(c *Config) {
		c.Link.RingSize = 256
		c.Bus.QueueDepth = 8
		c.EventLogSize = 32
	},
	"host": func(c *Config) {
		c.LogLevel = "debug"
	},
	"sim": func(c *Config) {
		c.LogLevel = "debug"
		c.Supervisor.StaleAfter = 3 * time.Second
		c.HeartbeatPeriod = 2 * time.Second
	},
}

// ForDevice returns the defaults with the named device profile applied.
func ForDevice(device string) (Config, error) {
	c := Defaults()
	if device == "" {
		device = DefaultDevice
	}
	p, ok := EmbeddedConfigLookup(device)
	if !ok {
		return c, &errcode.E{C: errcode.NotFound, Op: "config", Msg: "no profile for device " + device}
	}
	c.Device = device
	p(&c)
	return c, c.Validate()
}

// Validate rejects values the tasks cannot run with.
func (c Config) Validate() error {
	bad := func(msg string) error {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: msg}
	}
	switch {
	case c.Bus.Period <= 0 || c.Link.Period <= 0 || c.UI.Period <= 0 ||
		c.Supervisor.Period <= 0 || c.AnnunciatorPeriod <= 0 || c.HeartbeatPeriod <= 0:
		return bad("task periods must be positive")
	case c.Bus.QueueDepth < 1 || c.Link.QueueDepth < 1:
		return bad("queue depth must be at least 1")
	case c.Link.RingSize < 2 || c.Link.RingSize&(c.Link.RingSize-1) != 0:
		return bad("link ring size must be a power of two")
	case c.Link.MaxLine < 8:
		return bad("link max line below 8")
	case c.Supervisor.StaleAfter <= 0 || c.Supervisor.ServerTimeout <= 0:
		return bad("supervisor timeouts must be positive")
	}
	return nil
}
