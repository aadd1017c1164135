package ui

import (
	"habitat-go/logger"
	"habitat-go/services/eventlog"
	"habitat-go/types"
)

// View is everything a display needs to draw one frame.
type View struct {
	Screen   Screen
	State    types.SystemState
	Settings types.SystemSettings
	Alarm    types.AlarmLevel
	Events   []eventlog.Entry
	NowMs    int64
}

type Display interface {
	Render(v View)
	SetBacklight(on bool)
}

// LogDisplay renders a one-line summary per frame. Used on the host and
// on boards without a panel.
type LogDisplay struct{ Log *logger.Logger }

func (d LogDisplay) Render(v View) {
	if d.Log == nil {
		return
	}
	kv := []any{"screen", v.Screen, "alarm", v.Alarm, "server", v.State.ServerConnected}
	switch v.Screen {
	case Tank:
		t := v.State.Tank
		kv = append(kv, "status", t.Status, "temp_c", t.TempC, "level", t.LevelPercent, "pump", t.PumpOn, "light", t.LightOn)
	case Grow:
		g := v.State.Grow
		kv = append(kv, "status", g.Status, "temp_c", g.TempC, "led", g.LEDBrightness, "leaks", g.LeakMask())
	case Nutrient:
		n := v.State.Nutrient
		kv = append(kv, "status", n.Status, "level", n.LevelPercent, "motors", n.ChannelMotorOn)
	case Feeder:
		f := v.State.Feeder
		kv = append(kv, "status", f.Status, "level", f.FeedLevelPercent, "feed_at",
			int(v.Settings.FeederHour)*100+int(v.Settings.FeederMinute), "amount", v.Settings.FeederAmountPercent)
	case Log:
		if len(v.Events) > 0 {
			kv = append(kv, "last", v.Events[0].Msg)
		}
		kv = append(kv, "entries", len(v.Events))
	case Settings:
		kv = append(kv, "display_off_min", v.Settings.DisplayOffMinutes, "factory", v.Settings.FactoryInitialized)
	}
	d.Log.Debugw("render", kv...)
}

func (d LogDisplay) SetBacklight(on bool) {
	if d.Log != nil {
		d.Log.Debugw("backlight", "on", on)
	}
}
