// Package locomotion implements the closed-loop point-to-point movement
// controller for the Go2 autonomy runtime.
//
// A directional intent from the cortex is turned into a single pending
// MoveCommand, which a fixed-rate tick loop drives through a two-phase
// state machine: turn to face the target heading, then advance (or retreat)
// the commanded distance. Obstacle advisories gate every motion primitive,
// and progress is inferred purely from odometry deltas rather than from
// actuator completion callbacks.
package locomotion

// Intent is a coarse directional command issued by the cortex.
type Intent string

const (
	IntentTurnLeft    Intent = "turn left"
	IntentTurnRight   Intent = "turn right"
	IntentMoveForward Intent = "move forwards"
	IntentMoveBack    Intent = "move back"
	IntentStandStill  Intent = "stand still"
)

// MoveCommand is a single pending locomotion goal. At most one command is
// outstanding at any time; the controller's tick is its only mutator.
type MoveCommand struct {
	// Dx is the signed target displacement in meters along the heading at
	// enqueue time. Positive is forward, negative is backward, zero means
	// pure rotation.
	Dx float64 `json:"dx"`

	// Yaw is the target absolute heading in degrees, in (-180, 180].
	Yaw float64 `json:"yaw"`

	// StartX and StartY record the robot position at enqueue time, the
	// origin for distance-traveled computation.
	StartX float64 `json:"start_x"`
	StartY float64 `json:"start_y"`

	// TurnComplete flips false to true exactly once, when the heading
	// phase converges. It never resets within a command's lifetime.
	TurnComplete bool `json:"turn_complete"`

	// Speed is the translation-phase speed in m/s.
	Speed float64 `json:"speed"`
}

// phase names for logging and telemetry.
func (c *MoveCommand) phase() string {
	if c.TurnComplete {
		return "advancing"
	}
	return "turning"
}
