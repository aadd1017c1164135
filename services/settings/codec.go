package settings

import (
	"habitat-go/errcode"
	"habitat-go/types"
	"habitat-go/x/strconvx"
)

// Persisted keys.
const (
	KeyDisplayOff     = "display_off_min"
	KeyEnableTank     = "enable_tank"
	KeyEnableGrow     = "enable_grow"
	KeyEnableNutrient = "enable_nutrient"
	KeyEnableFeeder   = "enable_feeder"
	KeyFeederHour     = "feeder_hour"
	KeyFeederMinute   = "feeder_minute"
	KeyFeederAmount   = "feeder_amount"
	KeyGrowLED        = "grow_led"
	KeyFWVersion      = "fw_version"
	KeyFactoryInit    = "factory_init"
)

// KV is one persisted setting.
type KV struct {
	Key, Value string
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func u8(v uint8) string { return strconvx.Itoa(int(v)) }

// Encode flattens s into key/value pairs in a fixed order.
func Encode(s types.SystemSettings) []KV {
	return []KV{
		{KeyDisplayOff, u8(s.DisplayOffMinutes)},
		{KeyEnableTank, boolStr(s.EnableTank)},
		{KeyEnableGrow, boolStr(s.EnableGrow)},
		{KeyEnableNutrient, boolStr(s.EnableNutrient)},
		{KeyEnableFeeder, boolStr(s.EnableFeeder)},
		{KeyFeederHour, u8(s.FeederHour)},
		{KeyFeederMinute, u8(s.FeederMinute)},
		{KeyFeederAmount, u8(s.FeederAmountPercent)},
		{KeyGrowLED, u8(s.GrowLEDBrightness)},
		{KeyFWVersion, strconvx.FormatInt(int64(s.FWVersion), 10)},
		{KeyFactoryInit, boolStr(s.FactoryInitialized)},
	}
}

// Decode applies stored pairs on top of base. Unknown keys are ignored;
// missing keys keep the base value.
func Decode(kvs []KV, base types.SystemSettings) (types.SystemSettings, error) {
	s := base
	for _, kv := range kvs {
		var err error
		switch kv.Key {
		case KeyDisplayOff:
			s.DisplayOffMinutes, err = parseU8(kv)
		case KeyEnableTank:
			s.EnableTank, err = parseBool(kv)
		case KeyEnableGrow:
			s.EnableGrow, err = parseBool(kv)
		case KeyEnableNutrient:
			s.EnableNutrient, err = parseBool(kv)
		case KeyEnableFeeder:
			s.EnableFeeder, err = parseBool(kv)
		case KeyFeederHour:
			s.FeederHour, err = parseU8(kv)
		case KeyFeederMinute:
			s.FeederMinute, err = parseU8(kv)
		case KeyFeederAmount:
			s.FeederAmountPercent, err = parseU8(kv)
		case KeyGrowLED:
			s.GrowLEDBrightness, err = parseU8(kv)
		case KeyFWVersion:
			var v int64
			v, err = strconvx.ParseInt(kv.Value, 10, 64)
			if err == nil && (v < 0 || v > 0xFFFFFFFF) {
				err = errcode.OutOfRange
			}
			s.FWVersion = uint32(v)
		case KeyFactoryInit:
			s.FactoryInitialized, err = parseBool(kv)
		}
		if err != nil {
			return base, &errcode.E{C: errcode.InvalidParams, Op: "settings.decode", Msg: kv.Key, Err: err}
		}
	}
	return s, nil
}

func parseU8(kv KV) (uint8, error) {
	v, err := strconvx.ParseInt(kv.Value, 10, 16)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 255 {
		return 0, errcode.OutOfRange
	}
	return uint8(v), nil
}

func parseBool(kv KV) (bool, error) {
	switch kv.Value {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, errcode.InvalidParams
}
