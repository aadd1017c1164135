//go:build !rp2040 && !rp2350

package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	frames       *prom.CounterVec
	commands     *prom.CounterVec
	lines        *prom.CounterVec
	lockTimeouts *prom.CounterVec
	failSafe     prom.Counter
	connected    prom.Gauge
	alarm        prom.Gauge
	moduleStatus *prom.GaugeVec
}

// NewPrometheusRecorder constructs and registers the controller metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		frames: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "habitat",
			Name:      "bus_frames_total",
			Help:      "Inbound field-bus frames by module and result",
		}, []string{"module", "result"}),
		commands: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "habitat",
			Name:      "bus_commands_total",
			Help:      "Outbound commands by target module and result",
		}, []string{"module", "result"}),
		lines: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "habitat",
			Name:      "link_lines_total",
			Help:      "Supervisory link command lines by result",
		}, []string{"result"}),
		lockTimeouts: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "habitat",
			Name:      "state_lock_timeouts_total",
			Help:      "Skipped cycles caused by state lock timeouts",
		}, []string{"component"}),
		failSafe: prom.NewCounter(prom.CounterOpts{
			Namespace: "habitat",
			Name:      "failsafe_feeds_total",
			Help:      "Scheduled feeds issued while the server was unreachable",
		}),
		connected: prom.NewGauge(prom.GaugeOpts{
			Namespace: "habitat",
			Name:      "server_connected",
			Help:      "1 when the supervisory server is considered reachable",
		}),
		alarm: prom.NewGauge(prom.GaugeOpts{
			Namespace: "habitat",
			Name:      "alarm_level",
			Help:      "Current alarm level (0 none, 1 warning, 2 error)",
		}),
		moduleStatus: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "habitat",
			Name:      "module_status",
			Help:      "Module status (0 offline, 1 ok, 2 warning, 3 error)",
		}, []string{"module"}),
	}
	reg.MustRegister(pr.frames, pr.commands, pr.lines, pr.lockTimeouts, pr.failSafe, pr.connected, pr.alarm, pr.moduleStatus)
	return pr
}

func (p *PrometheusRecorder) IncFrame(module, result string) {
	p.frames.WithLabelValues(module, result).Inc()
}

func (p *PrometheusRecorder) IncCommand(module, result string) {
	p.commands.WithLabelValues(module, result).Inc()
}

func (p *PrometheusRecorder) IncLine(result string) { p.lines.WithLabelValues(result).Inc() }

func (p *PrometheusRecorder) IncLockTimeout(component string) {
	p.lockTimeouts.WithLabelValues(component).Inc()
}

func (p *PrometheusRecorder) IncFailSafeFeed() { p.failSafe.Inc() }

func (p *PrometheusRecorder) SetServerConnected(connected bool) {
	v := 0.0
	if connected {
		v = 1
	}
	p.connected.Set(v)
}

func (p *PrometheusRecorder) SetAlarmLevel(level int) { p.alarm.Set(float64(level)) }

func (p *PrometheusRecorder) SetModuleStatus(module string, status int) {
	p.moduleStatus.WithLabelValues(module).Set(float64(status))
}
