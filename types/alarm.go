package types

type AlarmLevel uint8

const (
	AlarmNone    AlarmLevel = 0
	AlarmWarning AlarmLevel = 1
	AlarmError   AlarmLevel = 2
)

func (l AlarmLevel) String() string {
	switch l {
	case AlarmNone:
		return "none"
	case AlarmWarning:
		return "warning"
	case AlarmError:
		return "error"
	}
	return "unknown"
}

// DeriveAlarmLevel maps the derived flags to a level. Error dominates.
func DeriveAlarmLevel(hasError, hasWarning bool) AlarmLevel {
	switch {
	case hasError:
		return AlarmError
	case hasWarning:
		return AlarmWarning
	}
	return AlarmNone
}
