package locomotion

// Pose is a single odometry snapshot. Yaw is in signed degrees, (-180, 180].
// A pose with X exactly 0.0 is the documented boot sentinel for "no odometry
// yet" and must not be treated as a legitimate coordinate.
type Pose struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Yaw      float64 `json:"yaw"`
	Standing bool    `json:"standing"`
	Moving   bool    `json:"moving"`
}

// PoseSource reports the latest robot pose. The second return is false until
// the first odometry message has arrived.
type PoseSource interface {
	Pose() (Pose, bool)
}

// PathOption is one currently-traversable sub-path offered by the lidar
// advisory. Slot is the path identifier in 0..8 (4 is dead ahead) and doubles
// as a monotonic lateral-clearance proxy; AngleDeg is the steering offset
// from the current heading.
type PathOption struct {
	Slot     int     `json:"slot"`
	AngleDeg float64 `json:"angle_deg"`
}

// Advisory is a snapshot of which coarse directions are currently safe.
// Empty slices (and a false Retreat) mean the direction is blocked.
type Advisory struct {
	Advance   []PathOption `json:"advance"`
	Retreat   bool         `json:"retreat"`
	TurnLeft  []PathOption `json:"turn_left"`
	TurnRight []PathOption `json:"turn_right"`
}

// PathAdvisory reports the current obstacle advisory.
type PathAdvisory interface {
	Advisory() Advisory
}

// MotionActuator accepts fire-and-forget velocity and recovery commands.
// The controller never waits for physical completion; it infers progress
// from subsequent pose snapshots.
type MotionActuator interface {
	// Move commands body velocities: vx forward m/s, vy lateral m/s,
	// vturn rotational rad/s.
	Move(vx, vy, vturn float64)

	// RecoverStand requests an immediate balance-stand, used to clear a
	// joint-lock fault before motion can resume.
	RecoverStand()
}

// StateSource reports the vendor state-machine signals the guard sequence
// consults. StateCode zero means the signal is unavailable and the
// controller falls back to the odometry moving flag.
type StateSource interface {
	StateCode() int
	ActionProgress() int
}

// EnableFlag gates whether autonomous motion commands are honored at all.
type EnableFlag interface {
	Enabled() bool
}

// GuardPolicy can veto incoming intents, e.g. guard mode with an unknown
// person present.
type GuardPolicy interface {
	Blocked() bool
}

// StateCodeJointLock is the vendor fault code for a locked joint state.
const StateCodeJointLock = 1002
