package ui

type Screen uint8

const (
	Dashboard Screen = iota
	Tank
	Grow
	Nutrient
	Feeder
	Log
	Settings

	screenCount
)

func (s Screen) String() string {
	switch s {
	case Dashboard:
		return "dashboard"
	case Tank:
		return "tank"
	case Grow:
		return "grow"
	case Nutrient:
		return "nutrient"
	case Feeder:
		return "feeder"
	case Log:
		return "log"
	case Settings:
		return "settings"
	}
	return "unknown"
}

// Step moves delta screens forward (or back), wrapping at both ends.
func (s Screen) Step(delta int) Screen {
	n := (int(s) + delta) % int(screenCount)
	if n < 0 {
		n += int(screenCount)
	}
	return Screen(n)
}

// nextLED cycles the grow LED through off, half and full.
func nextLED(cur uint8) uint8 {
	switch {
	case cur < 50:
		return 50
	case cur < 100:
		return 100
	}
	return 0
}

// nextDisplayOff cycles the idle timeout through 0 (never), 5, 10 and 30 minutes.
func nextDisplayOff(cur uint8) uint8 {
	switch {
	case cur < 5:
		return 5
	case cur < 10:
		return 10
	case cur < 30:
		return 30
	}
	return 0
}
