package supervisor

import (
	"testing"

	"habitat-go/types"
)

func TestAlarmLatch(t *testing.T) {
	var a AlarmLatch
	steps := []struct {
		hasErr, hasWarn bool
		clear           bool
		want            types.AlarmLevel
	}{
		{false, false, false, types.AlarmNone},
		{false, true, false, types.AlarmWarning},
		{false, false, false, types.AlarmNone},
		{true, false, false, types.AlarmError},
		{false, true, false, types.AlarmError},  // latched
		{false, false, false, types.AlarmError}, // latched
		{false, true, true, types.AlarmWarning},
		{true, false, true, types.AlarmError}, // still present, re-latches
	}
	for i, s := range steps {
		if s.clear {
			a.Clear()
		}
		if got := a.Step(s.hasErr, s.hasWarn); got != s.want {
			t.Fatalf("step %d: level = %v, want %v", i, got, s.want)
		}
	}
	if !a.Latched() {
		t.Fatal("latch should be held")
	}
}
