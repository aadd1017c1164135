package annunciator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"habitat-go/types"
	"habitat-go/x/timex"
)

// run drives the machine in 50ms ticks and returns the buzzer output per tick.
func run(m *Machine, level types.AlarmLevel, from, to int64) []bool {
	var out []bool
	for now := from; now < to; now += 50 {
		out = append(out, m.Step(level, now))
	}
	return out
}

func count(v []bool, want bool) int {
	n := 0
	for _, b := range v {
		if b == want {
			n++
		}
	}
	return n
}

func TestMachine_WarningDutyCycle(t *testing.T) {
	var m Machine
	out := run(&m, types.AlarmWarning, 0, 1000)
	// 0..450 on (10 ticks), 500..950 off (10 ticks)
	assert.Equal(t, 10, count(out[:10], true))
	assert.Equal(t, 10, count(out[10:], false))
	assert.True(t, m.Step(types.AlarmWarning, 1000), "cycle restarts")
}

func TestMachine_ErrorDutyCycle(t *testing.T) {
	var m Machine
	out := run(&m, types.AlarmError, 0, 1500)
	assert.Equal(t, 20, count(out[:20], true))
	assert.Equal(t, 10, count(out[20:], false))
}

func TestMachine_NoneSilencesAndRestartsOn(t *testing.T) {
	var m Machine
	m.Step(types.AlarmError, 0)
	m.Step(types.AlarmError, 1000) // -> off
	assert.Equal(t, PhaseOff, m.Phase())

	assert.False(t, m.Step(types.AlarmNone, 1050))
	assert.Equal(t, PhaseSilent, m.Phase())

	assert.True(t, m.Step(types.AlarmWarning, 1100), "leaving silent starts on")
	assert.Equal(t, PhaseOn, m.Phase())
}

func TestMachine_ToleratesJitter(t *testing.T) {
	var m Machine
	m.Step(types.AlarmWarning, 0)
	assert.False(t, m.Step(types.AlarmWarning, 730), "a late tick still switches off")
	assert.True(t, m.Step(types.AlarmWarning, 1230))
}

type fixedLevel struct{ l types.AlarmLevel }

func (f fixedLevel) Level() types.AlarmLevel { return f.l }

type recBuzzer struct {
	mu   sync.Mutex
	sets []bool
}

func (r *recBuzzer) Set(on bool) {
	r.mu.Lock()
	r.sets = append(r.sets, on)
	r.mu.Unlock()
}

func (r *recBuzzer) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.sets...)
}

func TestService_WritesOnlyOnChange(t *testing.T) {
	b := &recBuzzer{}
	s := New(50*time.Millisecond, fixedLevel{types.AlarmWarning}, b, &timex.Manual{}, nil)
	for now := int64(0); now < 1000; now += 50 {
		s.step(now)
	}
	assert.Equal(t, []bool{true, false}, b.snapshot())
}

func TestService_RunSilencesOnStop(t *testing.T) {
	b := &recBuzzer{}
	s := New(5*time.Millisecond, fixedLevel{types.AlarmError}, b, timex.NewUptime(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	assert.Eventually(t, func() bool { return len(b.snapshot()) > 0 }, time.Second, time.Millisecond)
	cancel()
	<-done
	sets := b.snapshot()
	assert.False(t, sets[len(sets)-1])
}
