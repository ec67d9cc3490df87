package locomotion

import "math/rand"

// PathSelector picks one sub-path among the currently-safe options in the
// requested direction. The controller only requires that the chosen option
// came from the offered set; tests inject a deterministic selector.
type PathSelector interface {
	Select(options []PathOption) PathOption
}

// RandomSelector picks uniformly among the offered options. This is the
// default policy on the robot: any safe sub-path is acceptable and varying
// the choice avoids repeatedly probing the same marginal gap.
type RandomSelector struct{}

func (RandomSelector) Select(options []PathOption) PathOption {
	return options[rand.Intn(len(options))]
}

// FirstSelector always picks the first offered option. Deterministic,
// used in tests.
type FirstSelector struct{}

func (FirstSelector) Select(options []PathOption) PathOption {
	return options[0]
}

// WidestSelector picks the option closest to dead ahead, i.e. the one with
// the smallest steering offset, preferring the gentlest maneuver.
type WidestSelector struct{}

func (WidestSelector) Select(options []PathOption) PathOption {
	best := options[0]
	for _, opt := range options[1:] {
		if abs(opt.AngleDeg) < abs(best.AngleDeg) {
			best = opt
		}
	}
	return best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
