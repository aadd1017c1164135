package types

// ------------------------
// Module addressing
// ------------------------

// ModuleID is the field-bus address of a module. Zero addresses the
// controller itself and is only valid as a command target.
type ModuleID uint8

const (
	ModuleController ModuleID = 0
	ModuleTank       ModuleID = 1
	ModuleGrow       ModuleID = 2
	ModuleNutrient   ModuleID = 3
	ModuleFeeder     ModuleID = 4
)

// Modules lists the field modules in display order.
var Modules = [...]ModuleID{ModuleTank, ModuleGrow, ModuleNutrient, ModuleFeeder}

func (m ModuleID) String() string {
	switch m {
	case ModuleController:
		return "controller"
	case ModuleTank:
		return "tank"
	case ModuleGrow:
		return "grow"
	case ModuleNutrient:
		return "nutrient"
	case ModuleFeeder:
		return "feeder"
	}
	return "unknown"
}

// IsField reports whether m addresses a field module.
func (m ModuleID) IsField() bool { return m >= ModuleTank && m <= ModuleFeeder }

// ------------------------
// Module health
// ------------------------

type ModuleStatus uint8

const (
	StatusOffline ModuleStatus = 0
	StatusOK      ModuleStatus = 1
	StatusWarning ModuleStatus = 2
	StatusError   ModuleStatus = 3
)

func (s ModuleStatus) String() string {
	switch s {
	case StatusOffline:
		return "offline"
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// ModuleHeader is embedded in every module state.
type ModuleHeader struct {
	Status       ModuleStatus `json:"st"`
	LastUpdateMs int64        `json:"-"`
}

// MarkUpdated records an accepted telemetry update.
func (h *ModuleHeader) MarkUpdated(nowMs int64) {
	h.Status = StatusOK
	h.LastUpdateMs = nowMs
}

// Stale reports whether no update was accepted within staleMs.
func (h *ModuleHeader) Stale(nowMs, staleMs int64) bool {
	return nowMs-h.LastUpdateMs > staleMs
}
