package canbus

import (
	"habitat-go/errcode"
	"habitat-go/types"
)

// decoder applies one module's telemetry layout to the state.
type decoder struct {
	module types.ModuleID
	minLen uint8
	apply  func(st *types.SystemState, d *[MaxDataLen]byte, nowMs int64)
}

// decoders is keyed by inbound identifier. A miss means the frame is ignored.
var decoders = map[uint32]decoder{
	TankStatusID:     {module: types.ModuleTank, minLen: 6, apply: decodeTank},
	GrowStatusID:     {module: types.ModuleGrow, minLen: 3, apply: decodeGrow},
	NutrientStatusID: {module: types.ModuleNutrient, minLen: 6, apply: decodeNutrient},
	FeederStatusID:   {module: types.ModuleFeeder, minLen: 2, apply: decodeFeeder},
}

// [tempC, level%, pH*10, tds/10, turbidity, DO*10]
func decodeTank(st *types.SystemState, d *[MaxDataLen]byte, nowMs int64) {
	t := &st.Tank
	t.TempC = float32(d[0])
	t.LevelPercent = float32(d[1])
	t.PH = float32(d[2]) / 10
	t.TDS = float32(d[3]) * 10
	t.Turbidity = float32(d[4])
	t.DissolvedO2 = float32(d[5]) / 10
	t.MarkUpdated(nowMs)
}

// [tempC, humidity%, leak bitmask]
func decodeGrow(st *types.SystemState, d *[MaxDataLen]byte, nowMs int64) {
	g := &st.Grow
	g.TempC = float32(d[0])
	g.Humidity = float32(d[1])
	for i := range g.Leak {
		g.Leak[i] = d[2]&(1<<i) != 0
	}
	g.MarkUpdated(nowMs)
}

// [ratio0..3 %, motor bitmask, level%]
func decodeNutrient(st *types.SystemState, d *[MaxDataLen]byte, nowMs int64) {
	n := &st.Nutrient
	for i := range n.ChannelRatio {
		n.ChannelRatio[i] = float32(d[i])
		n.ChannelMotorOn[i] = d[4]&(1<<i) != 0
	}
	n.LevelPercent = float32(d[5])
	n.MarkUpdated(nowMs)
}

// [feed level%, flags]; flag bit0 = feeding now.
func decodeFeeder(st *types.SystemState, d *[MaxDataLen]byte, nowMs int64) {
	f := &st.Feeder
	feeding := d[1]&0x01 != 0
	if feeding && !f.FeedingNow {
		f.LastFeedMs = nowMs
	}
	f.FeedingNow = feeding
	f.FeedLevelPercent = float32(d[0])
	f.MarkUpdated(nowMs)
}

// Apply decodes f into st and returns the source module. Unknown
// identifiers yield errcode.UnknownModule and payloads shorter than the
// module layout yield errcode.ShortFrame; st is untouched in both cases.
func Apply(st *types.SystemState, f *Frame, nowMs int64) (types.ModuleID, error) {
	dec, ok := decoders[f.ID]
	if !ok {
		return 0, errcode.UnknownModule
	}
	if f.Len < dec.minLen {
		return dec.module, errcode.ShortFrame
	}
	dec.apply(st, &f.Data, nowMs)
	return dec.module, nil
}
