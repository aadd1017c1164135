package types

// LeakSensors is the number of leak inputs reported by the grow module.
const LeakSensors = 4

// NutrientChannels is the number of dosing channels on the nutrient module.
const NutrientChannels = 4

type TankState struct {
	ModuleHeader
	TempC        float32
	LevelPercent float32
	PH           float32
	TDS          float32
	Turbidity    float32
	DissolvedO2  float32
	PumpOn       bool
	LightOn      bool
}

type GrowState struct {
	ModuleHeader
	TempC         float32
	Humidity      float32
	Leak          [LeakSensors]bool
	LEDBrightness uint8
}

// AnyLeak reports whether any leak input is set.
func (g GrowState) AnyLeak() bool {
	for _, l := range g.Leak {
		if l {
			return true
		}
	}
	return false
}

// LeakMask packs the leak inputs into the low bits of a byte.
func (g GrowState) LeakMask() uint8 {
	var m uint8
	for i, l := range g.Leak {
		if l {
			m |= 1 << i
		}
	}
	return m
}

type NutrientState struct {
	ModuleHeader
	ChannelRatio   [NutrientChannels]float32
	ChannelMotorOn [NutrientChannels]bool
	LevelPercent   float32
}

type FeederState struct {
	ModuleHeader
	FeedLevelPercent float32
	FeedingNow       bool
	LastFeedMs       int64
}

// SystemState is the single shared aggregate. Only the state store hands
// out access to it.
type SystemState struct {
	Tank     TankState
	Grow     GrowState
	Nutrient NutrientState
	Feeder   FeederState

	ServerConnected bool
	LastServerRxMs  int64
	HasWarning      bool
	HasError        bool
}

// Header returns the embedded header of a field module, or nil.
func (s *SystemState) Header(id ModuleID) *ModuleHeader {
	switch id {
	case ModuleTank:
		return &s.Tank.ModuleHeader
	case ModuleGrow:
		return &s.Grow.ModuleHeader
	case ModuleNutrient:
		return &s.Nutrient.ModuleHeader
	case ModuleFeeder:
		return &s.Feeder.ModuleHeader
	}
	return nil
}

// AnyOffline reports whether at least one field module is Offline.
func (s *SystemState) AnyOffline() bool {
	for _, id := range Modules {
		if s.Header(id).Status == StatusOffline {
			return true
		}
	}
	return false
}

// AllOK reports whether every field module is Ok.
func (s *SystemState) AllOK() bool {
	for _, id := range Modules {
		if s.Header(id).Status != StatusOK {
			return false
		}
	}
	return true
}

// CriticalFault is the OR of all critical fault conditions.
func (s *SystemState) CriticalFault() bool {
	return s.Grow.AnyLeak()
}
