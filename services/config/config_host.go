//go:build !rp2040 && !rp2350

package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"habitat-go/errcode"
)

// EnvPrefix namespaces environment overrides, e.g. HABITAT_SUPERVISOR_STALE_AFTER=2s.
const EnvPrefix = "HABITAT"

// Load builds the configuration for device, then applies path (yaml, json or
// toml; optional) and HABITAT_* environment variables on top.
func Load(path, device string) (Config, error) {
	c, err := ForDevice(device)
	if err != nil {
		return c, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, c)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return c, errcode.Wrap(errcode.InvalidParams, "config.read", err)
			}
		}
	}

	c.LogLevel = v.GetString("log_level")
	c.EventLogSize = v.GetInt("event_log_size")
	c.AnnunciatorPeriod = v.GetDuration("annunciator.period")
	c.HeartbeatPeriod = v.GetDuration("heartbeat.interval")

	c.Bus.Period = v.GetDuration("bus.period")
	c.Bus.RxTimeout = v.GetDuration("bus.rx_timeout")
	c.Bus.TxTimeout = v.GetDuration("bus.tx_timeout")
	c.Bus.QueueDepth = v.GetInt("bus.queue_depth")

	c.Link.Period = v.GetDuration("link.period")
	c.Link.StatusPeriod = v.GetDuration("link.status_period")
	c.Link.MaxLine = v.GetInt("link.max_line")
	c.Link.RingSize = v.GetInt("link.ring_size")
	c.Link.QueueDepth = v.GetInt("link.queue_depth")

	c.UI.Period = v.GetDuration("ui.period")
	c.UI.RenderEvery = v.GetDuration("ui.render_every")

	c.Supervisor.Period = v.GetDuration("supervisor.period")
	c.Supervisor.StaleAfter = v.GetDuration("supervisor.stale_after")
	c.Supervisor.ServerTimeout = v.GetDuration("supervisor.server_timeout")

	return c, c.Validate()
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("event_log_size", c.EventLogSize)
	v.SetDefault("annunciator.period", c.AnnunciatorPeriod)
	v.SetDefault("heartbeat.interval", c.HeartbeatPeriod)

	v.SetDefault("bus.period", c.Bus.Period)
	v.SetDefault("bus.rx_timeout", c.Bus.RxTimeout)
	v.SetDefault("bus.tx_timeout", c.Bus.TxTimeout)
	v.SetDefault("bus.queue_depth", c.Bus.QueueDepth)

	v.SetDefault("link.period", c.Link.Period)
	v.SetDefault("link.status_period", c.Link.StatusPeriod)
	v.SetDefault("link.max_line", c.Link.MaxLine)
	v.SetDefault("link.ring_size", c.Link.RingSize)
	v.SetDefault("link.queue_depth", c.Link.QueueDepth)

	v.SetDefault("ui.period", c.UI.Period)
	v.SetDefault("ui.render_every", c.UI.RenderEvery)

	v.SetDefault("supervisor.period", c.Supervisor.Period)
	v.SetDefault("supervisor.stale_after", c.Supervisor.StaleAfter)
	v.SetDefault("supervisor.server_timeout", c.Supervisor.ServerTimeout)
}
