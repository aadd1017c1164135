package supervisor

import "habitat-go/types"

// AlarmLatch derives the alarm level from the fault flags. Error is sticky:
// once a fault is seen the level stays Error until Clear, even if the fault
// goes away. Warning follows the flags.
type AlarmLatch struct {
	latched bool
}

func (a *AlarmLatch) Step(hasError, hasWarning bool) types.AlarmLevel {
	if hasError {
		a.latched = true
	}
	if a.latched {
		return types.AlarmError
	}
	return types.DeriveAlarmLevel(false, hasWarning)
}

// Clear releases the latch. A fault still present re-latches on the next Step.
func (a *AlarmLatch) Clear() { a.latched = false }

func (a *AlarmLatch) Latched() bool { return a.latched }
