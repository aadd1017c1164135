package types

import (
	"habitat-go/errcode"
	"habitat-go/x/mathx"
)

// MinutesPerDay bounds the time-of-day clock.
const MinutesPerDay = 24 * 60

// SystemSettings is the persisted operator configuration.
type SystemSettings struct {
	DisplayOffMinutes uint8

	EnableTank     bool
	EnableGrow     bool
	EnableNutrient bool
	EnableFeeder   bool

	FeederHour          uint8
	FeederMinute        uint8
	FeederAmountPercent uint8
	GrowLEDBrightness   uint8

	FWVersion          uint32
	FactoryInitialized bool
}

// FirmwareVersion is packed as major<<16 | minor<<8 | patch.
const FirmwareVersion uint32 = 1<<16 | 0<<8 | 0

// DefaultSettings returns the factory configuration.
func DefaultSettings() SystemSettings {
	return SystemSettings{
		DisplayOffMinutes:   5,
		EnableTank:          true,
		EnableGrow:          true,
		EnableNutrient:      true,
		EnableFeeder:        true,
		FeederHour:          8,
		FeederMinute:        0,
		FeederAmountPercent: 20,
		GrowLEDBrightness:   50,
		FWVersion:           FirmwareVersion,
	}
}

// FeederMinuteOfDay returns the scheduled feed time as minutes since midnight.
func (s SystemSettings) FeederMinuteOfDay() int {
	return int(s.FeederHour)*60 + int(s.FeederMinute)
}

// Validate rejects out-of-range fields.
func (s SystemSettings) Validate() error {
	switch {
	case s.FeederHour > 23:
		return &errcode.E{C: errcode.OutOfRange, Op: "settings", Msg: "feeder hour"}
	case s.FeederMinute > 59:
		return &errcode.E{C: errcode.OutOfRange, Op: "settings", Msg: "feeder minute"}
	case s.FeederAmountPercent > 100:
		return &errcode.E{C: errcode.OutOfRange, Op: "settings", Msg: "feeder amount"}
	case s.GrowLEDBrightness > 100:
		return &errcode.E{C: errcode.OutOfRange, Op: "settings", Msg: "grow led brightness"}
	}
	return nil
}

// Normalize clamps every ranged field into bounds.
func (s *SystemSettings) Normalize() {
	s.FeederHour = mathx.Clamp(s.FeederHour, 0, 23)
	s.FeederMinute = mathx.Clamp(s.FeederMinute, 0, 59)
	s.FeederAmountPercent = mathx.Clamp(s.FeederAmountPercent, 0, 100)
	s.GrowLEDBrightness = mathx.Clamp(s.GrowLEDBrightness, 0, 100)
}
