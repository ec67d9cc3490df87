package locomotion

import "time"

// Config bundles the controller tunables.
type Config struct {
	// MoveSpeed is the default translation speed in m/s.
	MoveSpeed float64

	// RetreatSpeed is the reduced speed used when backing up.
	RetreatSpeed float64

	// TurnSpeed is the rotational rate for coarse turns, rad/s.
	TurnSpeed float64

	// FineTurnRate is the pure-rotation rate used inside the 10 degree
	// band, rad/s.
	FineTurnRate float64

	// CorrectionSpeed is the fixed speed for overshoot corrections, m/s.
	CorrectionSpeed float64

	// CreepFactor scales the forward creep component during coarse turns
	// by the advisory's clearance proxy.
	CreepFactor float64

	// StepDistance is the displacement in meters attached to each
	// forward/backward/turn command.
	StepDistance float64

	// AngleTolerance is the heading convergence band in degrees.
	AngleTolerance float64

	// CoarseTurnThreshold separates coarse (advisory-gated) turns from
	// fine pure rotations, degrees.
	CoarseTurnThreshold float64

	// DistanceTolerance is the translation convergence band in meters.
	DistanceTolerance float64

	// AttemptLimit is the number of active ticks a command may consume
	// before the controller gives up on convergence.
	AttemptLimit int

	// TickInterval is the recommended external tick period.
	TickInterval time.Duration
}

// DefaultConfig returns the tuning used on the Go2.
func DefaultConfig() Config {
	return Config{
		MoveSpeed:           0.5,
		RetreatSpeed:        0.2,
		TurnSpeed:           0.8,
		FineTurnRate:        0.2,
		CorrectionSpeed:     0.2,
		CreepFactor:         0.15,
		StepDistance:        0.5,
		AngleTolerance:      5.0,
		CoarseTurnThreshold: 10.0,
		DistanceTolerance:   0.05,
		AttemptLimit:        15,
		TickInterval:        100 * time.Millisecond,
	}
}
