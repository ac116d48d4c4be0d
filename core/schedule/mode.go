package schedule

import "fmt"

// ExecutionMode selects how a generation request is satisfied.
type ExecutionMode int

const (
	// ModeManaged always uses the synthetic generator. Used on platforms
	// where spawning the optimization pipeline is unavailable.
	ModeManaged ExecutionMode = iota
	// ModeLocal attempts the external pipeline and falls back to the
	// synthetic generator on any stage failure.
	ModeLocal
)

func (m ExecutionMode) String() string {
	switch m {
	case ModeManaged:
		return "MANAGED"
	case ModeLocal:
		return "LOCAL"
	default:
		return fmt.Sprintf("ExecutionMode(%d)", int(m))
	}
}

// ParseExecutionMode maps a runtime-environment indicator to a mode.
// Unknown values default to MANAGED, the safe choice.
func ParseExecutionMode(s string) ExecutionMode {
	if s == "local" || s == "LOCAL" {
		return ModeLocal
	}
	return ModeManaged
}
