package supervisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitat-go/state"
	"habitat-go/types"
	"habitat-go/x/timex"
)

type fakeFeeder struct{ feeds []int }

func (f *fakeFeeder) RequestFeedOnce(pct int) bool {
	f.feeds = append(f.feeds, pct)
	return true
}

type fixedSchedule struct{ s types.SystemSettings }

func (f *fixedSchedule) Settings() types.SystemSettings { return f.s }

type recIndicators struct {
	calls           int
	link, ok, fault bool
}

func (r *recIndicators) Show(connected, allOK, fault bool) {
	r.calls++
	r.link, r.ok, r.fault = connected, allOK, fault
}

type harness struct {
	sup   *Supervisor
	store *state.Store
	feed  *fakeFeeder
	sched *fixedSchedule
	ind   *recIndicators
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store: state.New(),
		feed:  &fakeFeeder{},
		sched: &fixedSchedule{s: types.DefaultSettings()},
		ind:   &recIndicators{},
	}
	h.sup = New(Options{
		Config:     DefaultConfig(),
		Store:      h.store,
		Clock:      &timex.Manual{},
		TimeOfDay:  &timex.TimeOfDay{},
		Feeder:     h.feed,
		Schedule:   h.sched,
		Indicators: h.ind,
	})
	return h
}

func (h *harness) mutate(t *testing.T, f func(st *types.SystemState)) {
	t.Helper()
	require.True(t, h.store.With(time.Second, f))
}

func (h *harness) snap(t *testing.T) types.SystemState {
	t.Helper()
	s, ok := h.store.Snapshot(time.Second)
	require.True(t, ok)
	return s
}

func freshAll(nowMs int64) func(st *types.SystemState) {
	return func(st *types.SystemState) {
		for _, id := range types.Modules {
			st.Header(id).MarkUpdated(nowMs)
		}
		st.LastServerRxMs = nowMs
	}
}

func TestPass_StalenessMakesOffline(t *testing.T) {
	h := newHarness(t)
	h.mutate(t, freshAll(1000))

	require.True(t, h.sup.Pass(2000))
	s := h.snap(t)
	assert.Equal(t, types.StatusOK, s.Tank.Status)
	assert.False(t, s.HasWarning)
	assert.Equal(t, types.AlarmNone, h.sup.Level())
	assert.True(t, h.ind.ok)

	h.mutate(t, func(st *types.SystemState) { st.Grow.MarkUpdated(1500) })
	require.True(t, h.sup.Pass(2001))
	s = h.snap(t)
	assert.Equal(t, types.StatusOffline, s.Tank.Status)
	assert.Equal(t, types.StatusOK, s.Grow.Status)
	assert.True(t, s.HasWarning)
	assert.False(t, s.HasError)
	assert.Equal(t, types.AlarmWarning, h.sup.Level())
	assert.True(t, h.ind.fault)
	assert.False(t, h.ind.ok)
}

func TestPass_ErrorDominatesWarning(t *testing.T) {
	h := newHarness(t)
	h.mutate(t, func(st *types.SystemState) { st.Grow.Leak[1] = true })

	require.True(t, h.sup.Pass(10_000))
	s := h.snap(t)
	assert.True(t, s.HasError)
	assert.False(t, s.HasWarning, "warning and error are mutually exclusive")
	assert.True(t, s.AnyOffline())
	assert.Equal(t, types.AlarmError, h.sup.Level())
}

func TestPass_ErrorLatchesUntilCleared(t *testing.T) {
	h := newHarness(t)
	now := int64(100_000)
	h.mutate(t, freshAll(now))
	h.mutate(t, func(st *types.SystemState) { st.Grow.Leak[0] = true })
	require.True(t, h.sup.Pass(now))
	assert.Equal(t, types.AlarmError, h.sup.Level())
	assert.True(t, h.sup.FaultLatched())

	// Fault goes away on its own: level stays Error.
	h.mutate(t, func(st *types.SystemState) { st.Grow.Leak[0] = false })
	require.True(t, h.sup.Pass(now+100))
	assert.False(t, h.snap(t).HasError)
	assert.Equal(t, types.AlarmError, h.sup.Level())

	h.sup.ClearFault()
	require.True(t, h.sup.Pass(now+200))
	assert.Equal(t, types.AlarmNone, h.sup.Level())
	assert.False(t, h.sup.FaultLatched())
}

func TestPass_ClearFaultResetsLeaks(t *testing.T) {
	h := newHarness(t)
	now := int64(50_000)
	h.mutate(t, freshAll(now))
	h.mutate(t, func(st *types.SystemState) { st.Grow.Leak = [4]bool{true, true, false, false} })
	require.True(t, h.sup.Pass(now))
	assert.Equal(t, types.AlarmError, h.sup.Level())

	h.sup.ClearFault()
	require.True(t, h.sup.Pass(now+100))
	s := h.snap(t)
	assert.False(t, s.Grow.AnyLeak())
	assert.Equal(t, types.AlarmNone, h.sup.Level())

	// A fresh leak report re-latches.
	h.mutate(t, func(st *types.SystemState) { st.Grow.Leak[3] = true })
	require.True(t, h.sup.Pass(now+200))
	assert.Equal(t, types.AlarmError, h.sup.Level())
}

func TestPass_ConnectivityThreshold(t *testing.T) {
	h := newHarness(t)
	h.mutate(t, func(st *types.SystemState) { st.LastServerRxMs = 1000 })

	require.True(t, h.sup.Pass(5999))
	assert.True(t, h.snap(t).ServerConnected)
	assert.True(t, h.ind.link)

	require.True(t, h.sup.Pass(6000))
	assert.False(t, h.snap(t).ServerConnected)
	assert.False(t, h.ind.link)

	h.mutate(t, func(st *types.SystemState) { st.LastServerRxMs = 7000 })
	require.True(t, h.sup.Pass(7001))
	assert.True(t, h.snap(t).ServerConnected)
}

const msPerMinute = 60_000

func TestFailSafe_FeedsOncePerMinuteWhileDisconnected(t *testing.T) {
	h := newHarness(t)
	h.sched.s.FeederHour, h.sched.s.FeederMinute, h.sched.s.FeederAmountPercent = 7, 30, 20

	at0730 := int64(7*60+30) * msPerMinute
	for now := at0730 - 500; now < at0730+msPerMinute+500; now += 100 {
		require.True(t, h.sup.Pass(now))
	}
	assert.Equal(t, []int{20}, h.feed.feeds)
}

func TestFailSafe_SuppressedWhileConnected(t *testing.T) {
	h := newHarness(t)
	h.sched.s.FeederHour, h.sched.s.FeederMinute = 7, 30
	at0730 := int64(7*60+30) * msPerMinute
	for now := at0730; now < at0730+msPerMinute; now += 100 {
		h.mutate(t, func(st *types.SystemState) { st.LastServerRxMs = now })
		require.True(t, h.sup.Pass(now))
	}
	assert.Empty(t, h.feed.feeds)
}

func TestFailSafe_RearmsAfterReconnect(t *testing.T) {
	h := newHarness(t)
	h.sched.s.FeederHour, h.sched.s.FeederMinute, h.sched.s.FeederAmountPercent = 7, 30, 20
	day := int64(24 * 60 * msPerMinute)
	at0730 := int64(7*60+30) * msPerMinute

	require.True(t, h.sup.Pass(at0730))
	require.Len(t, h.feed.feeds, 1)

	// Reconnect at noon, then lose the link again.
	noon := int64(12*60) * msPerMinute
	h.mutate(t, func(st *types.SystemState) { st.LastServerRxMs = noon })
	require.True(t, h.sup.Pass(noon))
	require.True(t, h.sup.Pass(noon+6000))
	assert.False(t, h.snap(t).ServerConnected)

	require.True(t, h.sup.Pass(day+at0730))
	require.True(t, h.sup.Pass(day+at0730+30_000))
	assert.Equal(t, []int{20, 20}, h.feed.feeds)
}

func TestFailSafe_ZeroAmountDoesNothing(t *testing.T) {
	h := newHarness(t)
	h.sched.s.FeederHour, h.sched.s.FeederMinute, h.sched.s.FeederAmountPercent = 7, 30, 0
	require.True(t, h.sup.Pass(int64(7*60+30)*msPerMinute))
	assert.Empty(t, h.feed.feeds)
}

func TestFailSafe_UsesAdjustedTimeOfDay(t *testing.T) {
	h := newHarness(t)
	h.sched.s.FeederHour, h.sched.s.FeederMinute, h.sched.s.FeederAmountPercent = 7, 30, 15
	now := int64(10_000)
	h.sup.tod.SetMinuteOfDay(now, 7*60+30)
	require.True(t, h.sup.Pass(now))
	assert.Equal(t, []int{15}, h.feed.feeds)
}

func TestPass_LockTimeoutSkipsCycle(t *testing.T) {
	h := newHarness(t)
	h.sup.cfg.LockTimeout = time.Millisecond
	h.mutate(t, func(st *types.SystemState) { st.Grow.Leak[0] = true })

	held := make(chan struct{})
	release := make(chan struct{})
	go h.store.With(time.Second, func(*types.SystemState) {
		close(held)
		<-release
	})
	<-held
	h.sup.ClearFault()
	assert.False(t, h.sup.Pass(10_000))
	assert.Equal(t, 0, h.ind.calls)
	close(release)
	h.sup.cfg.LockTimeout = time.Second

	// The pending clear survives the skipped cycle.
	require.True(t, h.sup.Pass(10_100))
	assert.False(t, h.snap(t).Grow.AnyLeak())
}
