package supervisor

import "habitat-go/logger"

// Indicators shows controller health: link up, all modules ok, fault.
type Indicators interface {
	Show(connected, allOK, fault bool)
}

// Pin is a digital output.
type Pin interface {
	Set(high bool)
}

// PinIndicators drives three LEDs.
type PinIndicators struct {
	Link, OK, Fault Pin
}

func (p PinIndicators) Show(connected, allOK, fault bool) {
	p.Link.Set(connected)
	p.OK.Set(allOK)
	p.Fault.Set(fault)
}

// LogIndicators logs indicator changes, for hosts without LEDs.
type LogIndicators struct {
	Log  *logger.Logger
	last [3]bool
	seen bool
}

func (l *LogIndicators) Show(connected, allOK, fault bool) {
	cur := [3]bool{connected, allOK, fault}
	if l.seen && cur == l.last {
		return
	}
	l.last, l.seen = cur, true
	if l.Log != nil {
		l.Log.Infow("indicators", "link", connected, "ok", allOK, "fault", fault)
	}
}
