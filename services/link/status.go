package link

import (
	"encoding/json"

	"habitat-go/types"
)

// StatusMessage is the one-line JSON document pushed to the server.
type StatusMessage struct {
	SID      string         `json:"sid"`
	UptimeMs int64          `json:"up"`
	Tank     TankStatus     `json:"tank"`
	Grow     GrowStatus     `json:"grow"`
	Nutrient NutrientStatus `json:"nutr"`
	Feeder   FeederStatus   `json:"feed"`
	Server   bool           `json:"srv"`
	Warning  bool           `json:"warn"`
	Error    bool           `json:"err"`
	Alarm    uint8          `json:"alarm"`
	Fault    bool           `json:"fault"`
}

type TankStatus struct {
	Status    uint8   `json:"st"`
	TempC     float32 `json:"t"`
	Level     float32 `json:"lv"`
	PH        float32 `json:"ph"`
	TDS       float32 `json:"tds"`
	Turbidity float32 `json:"tb"`
	DO        float32 `json:"do"`
	Pump      bool    `json:"pump"`
	Light     bool    `json:"light"`
}

type GrowStatus struct {
	Status   uint8   `json:"st"`
	TempC    float32 `json:"t"`
	Humidity float32 `json:"h"`
	Leak     uint8   `json:"leak"`
	LED      uint8   `json:"led"`
}

type NutrientStatus struct {
	Status uint8      `json:"st"`
	Ratio  [4]float32 `json:"r"`
	Motors uint8      `json:"m"`
	Level  float32    `json:"lv"`
}

type FeederStatus struct {
	Status  uint8   `json:"st"`
	Level   float32 `json:"lv"`
	Feeding bool    `json:"busy"`
}

// AlarmSource publishes the supervisor's alarm view.
type AlarmSource interface {
	Level() types.AlarmLevel
	FaultLatched() bool
}

// BuildStatus projects a state snapshot onto the wire document.
func BuildStatus(st *types.SystemState, sid string, uptimeMs int64, alarm types.AlarmLevel, fault bool) StatusMessage {
	var motors uint8
	for i, on := range st.Nutrient.ChannelMotorOn {
		if on {
			motors |= 1 << i
		}
	}
	return StatusMessage{
		SID:      sid,
		UptimeMs: uptimeMs,
		Tank: TankStatus{
			Status:    uint8(st.Tank.Status),
			TempC:     st.Tank.TempC,
			Level:     st.Tank.LevelPercent,
			PH:        st.Tank.PH,
			TDS:       st.Tank.TDS,
			Turbidity: st.Tank.Turbidity,
			DO:        st.Tank.DissolvedO2,
			Pump:      st.Tank.PumpOn,
			Light:     st.Tank.LightOn,
		},
		Grow: GrowStatus{
			Status:   uint8(st.Grow.Status),
			TempC:    st.Grow.TempC,
			Humidity: st.Grow.Humidity,
			Leak:     st.Grow.LeakMask(),
			LED:      st.Grow.LEDBrightness,
		},
		Nutrient: NutrientStatus{
			Status: uint8(st.Nutrient.Status),
			Ratio:  st.Nutrient.ChannelRatio,
			Motors: motors,
			Level:  st.Nutrient.LevelPercent,
		},
		Feeder: FeederStatus{
			Status:  uint8(st.Feeder.Status),
			Level:   st.Feeder.FeedLevelPercent,
			Feeding: st.Feeder.FeedingNow,
		},
		Server:  st.ServerConnected,
		Warning: st.HasWarning,
		Error:   st.HasError,
		Alarm:   uint8(alarm),
		Fault:   fault,
	}
}

// EncodeStatus renders m as a single newline-terminated line.
func EncodeStatus(m StatusMessage) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
