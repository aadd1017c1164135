// Package metrics exposes counters and gauges for the controller tasks.
package metrics

// Result labels shared by the counters.
const (
	ResultAccepted  = "accepted"
	ResultIgnored   = "ignored"
	ResultSent      = "sent"
	ResultDropped   = "dropped"
	ResultFailed    = "failed"
	ResultMalformed = "malformed"
	ResultOverflow  = "overflow"
)

// Recorder defines observability hooks for the controller tasks.
// Implementations must be safe for concurrent use.
type Recorder interface {
	IncFrame(module, result string)
	IncCommand(module, result string)
	IncLine(result string)
	IncLockTimeout(component string)
	IncFailSafeFeed()
	SetServerConnected(connected bool)
	SetAlarmLevel(level int)
	SetModuleStatus(module string, status int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncFrame(string, string)     {}
func (NoopRecorder) IncCommand(string, string)   {}
func (NoopRecorder) IncLine(string)              {}
func (NoopRecorder) IncLockTimeout(string)       {}
func (NoopRecorder) IncFailSafeFeed()            {}
func (NoopRecorder) SetServerConnected(bool)     {}
func (NoopRecorder) SetAlarmLevel(int)           {}
func (NoopRecorder) SetModuleStatus(string, int) {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
