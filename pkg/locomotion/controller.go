package locomotion

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
)

// centerSlot is the dead-ahead path identifier. Translation only continues
// while this slot stays clear.
const centerSlot = 4

// Deps are the injected collaborators. Pose, Paths and Actuator are
// required; State, Enable and Guard are optional signals that default to
// "unavailable", "enabled" and "not blocked" respectively. Selector
// defaults to RandomSelector.
type Deps struct {
	Pose     PoseSource
	Paths    PathAdvisory
	Actuator MotionActuator
	State    StateSource
	Enable   EnableFlag
	Guard    GuardPolicy
	Selector PathSelector
	Logger   *slog.Logger
}

// Controller drives the robot to satisfy one queued MoveCommand at a time,
// issuing bounded per-tick velocity commands while respecting live obstacle
// advisories, and giving up cleanly when progress stalls.
//
// Submit and Tick may run on different goroutines; the single-slot command
// queue and its progress fields are mutex-protected.
type Controller struct {
	cfg      Config
	logger   *slog.Logger
	pose     PoseSource
	paths    PathAdvisory
	actuator MotionActuator
	state    StateSource
	enable   EnableFlag
	guard    GuardPolicy
	selector PathSelector

	mu          sync.Mutex
	pending     *MoveCommand
	attempts    int
	gapPrevious float64
}

// New builds a controller. Returns an error if a required collaborator is
// missing.
func New(cfg Config, deps Deps) (*Controller, error) {
	if deps.Pose == nil {
		return nil, fmt.Errorf("locomotion: pose source is required")
	}
	if deps.Paths == nil {
		return nil, fmt.Errorf("locomotion: path advisory is required")
	}
	if deps.Actuator == nil {
		return nil, fmt.Errorf("locomotion: motion actuator is required")
	}
	if deps.Selector == nil {
		deps.Selector = RandomSelector{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Controller{
		cfg:      cfg,
		logger:   deps.Logger.With("component", "locomotion"),
		pose:     deps.Pose,
		paths:    deps.Paths,
		actuator: deps.Actuator,
		state:    deps.State,
		enable:   deps.Enable,
		guard:    deps.Guard,
		selector: deps.Selector,
	}, nil
}

// Submit runs the guard sequence for an incoming intent and, on pass,
// enqueues the matching MoveCommand. Every failure is a logged no-op; the
// caller is never handed an error for a rejected intent. Non-blocking.
func (c *Controller) Submit(intent Intent) {
	c.logger.Info("AI command received", "intent", string(intent))

	if c.guard != nil && c.guard.Blocked() {
		c.logger.Info("guard policy active - disregarding AI command")
		return
	}

	if c.enable != nil && !c.enable.Enabled() {
		c.logger.Info("AI control is disabled - disregarding AI command")
		return
	}

	if c.state != nil && c.state.StateCode() == StateCodeJointLock {
		// Recovery must complete before a new command is accepted.
		c.logger.Info("robot is in jointLock state - issuing recovery stand")
		c.actuator.RecoverStand()
		return
	}

	if c.state != nil && c.state.ActionProgress() != 0 {
		c.logger.Info("action in progress - disregarding AI command",
			"progress", c.state.ActionProgress())
		return
	}

	pose, ok := c.pose.Pose()

	if c.state == nil || c.state.StateCode() == 0 {
		// No state signal at all: fall back to the odometry moving flag,
		// which covers teleop or game-controller driven motion.
		if ok && pose.Moving {
			c.logger.Info("robot is already moving - disregarding AI command")
			return
		}
	}

	c.mu.Lock()
	queued := c.pending != nil
	c.mu.Unlock()
	if queued {
		c.logger.Info("movement in progress - disregarding AI command")
		return
	}

	if !ok || pose.X == 0.0 {
		// x is never precisely zero except while booting and waiting
		// for odometry to arrive.
		c.logger.Info("waiting for location data")
		return
	}

	adv := c.paths.Advisory()

	var cmd *MoveCommand
	switch intent {
	case IntentTurnLeft, IntentTurnRight:
		cmd = c.buildTurn(intent, pose, adv)
	case IntentMoveForward:
		cmd = c.buildForward(pose, adv)
	case IntentMoveBack:
		cmd = c.buildBack(pose, adv)
	case IntentStandStill:
		c.logger.Info("AI movement command: stand still")
		return
	default:
		c.logger.Info("AI movement command unknown", "intent", string(intent))
		return
	}

	if cmd == nil {
		return
	}

	c.mu.Lock()
	c.pending = cmd
	c.mu.Unlock()
	c.logger.Info("movement queued",
		"dx", cmd.Dx, "yaw", cmd.Yaw, "turn_complete", cmd.TurnComplete)
}

// Tick advances the pending command by one control cycle. Call at a fixed
// rate (10 Hz recommended). Bounded computation, never blocks; at most one
// velocity command is issued per call.
func (c *Controller) Tick() {
	pose, ok := c.pose.Pose()
	if !ok || pose.X == 0.0 {
		c.logger.Debug("waiting for odom data")
		return
	}

	if !pose.Standing {
		c.logger.Info("cannot move - robot is not standing")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return
	}
	cmd := c.pending

	c.logger.Debug("motion tick",
		"phase", cmd.phase(), "goal_yaw", cmd.Yaw, "current_yaw", pose.Yaw,
		"attempts", c.attempts)

	if c.attempts > c.cfg.AttemptLimit {
		c.cleanAbortLocked()
		c.logger.Info("TIMEOUT - not converging, aborting movement",
			"attempt_limit", c.cfg.AttemptLimit)
		return
	}

	if !cmd.TurnComplete {
		c.tickTurn(cmd, pose)
	} else {
		c.tickAdvance(cmd, pose)
	}
}

// tickTurn is the heading phase: coarse advisory-gated turns above the
// 10 degree band, pure fine rotation inside it, convergence at the angle
// tolerance. Caller holds the mutex.
func (c *Controller) tickTurn(cmd *MoveCommand, pose Pose) {
	gap := AngleGap(-pose.Yaw, cmd.Yaw)
	c.logger.Info("phase 1 - turning", "gap_deg", gap)

	progress := round2(math.Abs(c.gapPrevious - gap))
	c.gapPrevious = gap
	if c.attempts > 0 {
		c.logger.Info("phase 1 - turn gap delta", "delta_deg", progress)
	}

	switch {
	case math.Abs(gap) > c.cfg.CoarseTurnThreshold:
		c.attempts++
		if !c.executeTurn(gap) {
			c.cleanAbortLocked()
		}
	case math.Abs(gap) > c.cfg.AngleTolerance:
		// Close enough that a pure rotation cannot re-trigger collision
		// risk; no advisory check needed.
		c.attempts++
		if gap > 0 {
			c.moveRobot(0, 0, c.cfg.FineTurnRate)
		} else {
			c.moveRobot(0, 0, -c.cfg.FineTurnRate)
		}
	default:
		c.logger.Info("phase 1 - turn completed, starting movement")
		cmd.TurnComplete = true
		c.gapPrevious = 0
	}
}

// tickAdvance is the translation phase. Caller holds the mutex.
func (c *Controller) tickAdvance(cmd *MoveCommand, pose Pose) {
	if cmd.Dx == 0 {
		c.logger.Info("no movement required, ready for next AI command")
		c.cleanAbortLocked()
		return
	}

	distanceTraveled := math.Hypot(pose.X-cmd.StartX, pose.Y-cmd.StartY)
	gap := round2(math.Abs(math.Abs(cmd.Dx) - distanceTraveled))
	progress := round2(math.Abs(c.gapPrevious - gap))
	c.gapPrevious = gap

	if c.attempts > 0 {
		c.logger.Info("phase 2 - distance gap delta", "delta_m", progress)
	}

	adv := c.paths.Advisory()
	var fb float64
	if cmd.Dx > 0 {
		// Dead ahead must stay clear while translating forward.
		if !hasSlot(adv.Advance, centerSlot) {
			c.logger.Warn("cannot advance due to barrier")
			c.cleanAbortLocked()
			return
		}
		fb = 1
	} else {
		if !adv.Retreat {
			c.logger.Warn("cannot retreat due to barrier")
			c.cleanAbortLocked()
			return
		}
		fb = -1
	}

	if gap > c.cfg.DistanceTolerance {
		c.attempts++
		if distanceTraveled < math.Abs(cmd.Dx) {
			c.logger.Info("phase 2 - keep moving", "remaining_m", gap)
			c.moveRobot(fb*cmd.Speed, 0, 0)
		} else if distanceTraveled > math.Abs(cmd.Dx) {
			c.logger.Info("phase 2 - overshoot, correcting", "remaining_m", gap)
			c.moveRobot(-fb*c.cfg.CorrectionSpeed, 0, 0)
		}
	} else {
		c.logger.Info("phase 2 - movement completed normally")
		c.cleanAbortLocked()
	}
}

// executeTurn issues one coarse turn step in the direction implied by the
// sign of gap. The forward creep component scales with the advisory's
// clearance proxy: the further the cleared slot sits from the blocked edge,
// the more room there is to arc through the turn. Returns false when the
// direction is blocked.
func (c *Controller) executeTurn(gap float64) bool {
	adv := c.paths.Advisory()
	if gap > 0 {
		if len(adv.TurnLeft) == 0 {
			c.logger.Warn("cannot turn left due to barrier")
			return false
		}
		sharpness := minSlot(adv.TurnLeft)
		c.moveRobot(float64(sharpness)*c.cfg.CreepFactor, 0, c.cfg.TurnSpeed)
	} else {
		if len(adv.TurnRight) == 0 {
			c.logger.Warn("cannot turn right due to barrier")
			return false
		}
		sharpness := 8 - maxSlot(adv.TurnRight)
		c.moveRobot(float64(sharpness)*c.cfg.CreepFactor, 0, -c.cfg.TurnSpeed)
	}
	return true
}

// moveRobot issues one velocity command, re-checking posture first: a robot
// that is no longer standing gets a recovery stand instead of the intended
// velocity, and a joint-lock fault gets a recovery stand before it.
func (c *Controller) moveRobot(vx, vy, vturn float64) {
	pose, ok := c.pose.Pose()
	if !ok || !pose.Standing {
		c.logger.Info("not standing - issuing recovery stand instead of move")
		c.actuator.RecoverStand()
		return
	}

	if c.state != nil && c.state.StateCode() == StateCodeJointLock {
		c.actuator.RecoverStand()
	}

	c.logger.Info("move", "vx", vx, "vy", vy, "vturn", vturn)
	c.actuator.Move(vx, vy, vturn)
}

// CleanAbort empties the command queue and resets the attempt counter. It is
// the single reset point for every terminal transition, and also serves as
// the external cancellation primitive. Idempotent when the queue is already
// empty.
func (c *Controller) CleanAbort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanAbortLocked()
}

func (c *Controller) cleanAbortLocked() {
	c.attempts = 0
	c.gapPrevious = 0
	c.pending = nil
}

// Status is a snapshot of the controller for telemetry.
type Status struct {
	Phase    string       `json:"phase"`
	Pending  *MoveCommand `json:"pending,omitempty"`
	Attempts int          `json:"attempts"`
}

// Status reports the current phase, pending command and attempt count.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{Phase: "idle", Attempts: c.attempts}
	if c.pending != nil {
		cp := *c.pending
		st.Pending = &cp
		st.Phase = cp.phase()
	}
	return st
}

func hasSlot(options []PathOption, slot int) bool {
	for _, opt := range options {
		if opt.Slot == slot {
			return true
		}
	}
	return false
}

func minSlot(options []PathOption) int {
	m := options[0].Slot
	for _, opt := range options[1:] {
		if opt.Slot < m {
			m = opt.Slot
		}
	}
	return m
}

func maxSlot(options []PathOption) int {
	m := options[0].Slot
	for _, opt := range options[1:] {
		if opt.Slot > m {
			m = opt.Slot
		}
	}
	return m
}
