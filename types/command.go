package types

// CommandCode is interpreted relative to the target module.
type CommandCode uint8

// Tank commands.
const (
	TankSetPump  CommandCode = 1
	TankSetLight CommandCode = 2
)

// Grow commands.
const (
	GrowSetLEDBrightness CommandCode = 1
)

// Feeder commands.
const (
	FeederFeedOnce CommandCode = 1
)

// Controller-local commands (target ModuleController).
const (
	ControllerPing       CommandCode = 0
	ControllerClearFault CommandCode = 1
	ControllerSetClock   CommandCode = 2
)

// Command is an outbound actuation request, moved through queues by value.
type Command struct {
	Target ModuleID
	Code   CommandCode
	Param  int32
}
