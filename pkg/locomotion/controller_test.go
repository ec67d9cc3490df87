package locomotion

import (
	"testing"
)

// Test fakes for the injected collaborators.

type fakePose struct {
	pose Pose
	ok   bool
}

func (f *fakePose) Pose() (Pose, bool) { return f.pose, f.ok }

type fakeAdvisory struct {
	adv Advisory
}

func (f *fakeAdvisory) Advisory() Advisory { return f.adv }

type fakeActuator struct {
	moves    [][3]float64
	recovers int
}

func (f *fakeActuator) Move(vx, vy, vturn float64) {
	f.moves = append(f.moves, [3]float64{vx, vy, vturn})
}

func (f *fakeActuator) RecoverStand() { f.recovers++ }

type fakeState struct {
	code     int
	progress int
}

func (f *fakeState) StateCode() int      { return f.code }
func (f *fakeState) ActionProgress() int { return f.progress }

type fakeFlag struct{ enabled bool }

func (f *fakeFlag) Enabled() bool { return f.enabled }

type fakeGuard struct{ blocked bool }

func (f *fakeGuard) Blocked() bool { return f.blocked }

func openAdvisory() Advisory {
	return Advisory{
		Advance:   []PathOption{{Slot: 4, AngleDeg: 0}},
		Retreat:   true,
		TurnLeft:  []PathOption{{Slot: 2, AngleDeg: 45}},
		TurnRight: []PathOption{{Slot: 6, AngleDeg: -45}},
	}
}

func standingAt(x, y, yaw float64) *fakePose {
	return &fakePose{pose: Pose{X: x, Y: y, Yaw: yaw, Standing: true}, ok: true}
}

func newTestController(t *testing.T, pose *fakePose, adv *fakeAdvisory, act *fakeActuator, deps Deps) *Controller {
	t.Helper()
	deps.Pose = pose
	deps.Paths = adv
	deps.Actuator = act
	if deps.Selector == nil {
		deps.Selector = FirstSelector{}
	}
	c, err := New(DefaultConfig(), deps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestSubmitRejectsWhileCommandQueued(t *testing.T) {
	pose := standingAt(2, 3, 0)
	act := &fakeActuator{}
	c := newTestController(t, pose, &fakeAdvisory{adv: openAdvisory()}, act, Deps{})

	c.Submit(IntentMoveForward)
	if c.Status().Pending == nil {
		t.Fatal("expected a queued command after first submit")
	}
	first := *c.Status().Pending

	c.Submit(IntentTurnLeft)
	got := c.Status().Pending
	if got == nil || *got != first {
		t.Error("second submit should be rejected while a command is queued")
	}
}

func TestSubmitRejectsWithoutOdometry(t *testing.T) {
	pose := &fakePose{pose: Pose{X: 0, Y: 0, Standing: true}, ok: true}
	c := newTestController(t, pose, &fakeAdvisory{adv: openAdvisory()}, &fakeActuator{}, Deps{})

	c.Submit(IntentMoveForward)
	if c.Status().Pending != nil {
		t.Error("sentinel position must reject the intent")
	}
}

func TestSubmitRejectsWhenDisabled(t *testing.T) {
	c := newTestController(t, standingAt(2, 3, 0), &fakeAdvisory{adv: openAdvisory()}, &fakeActuator{},
		Deps{Enable: &fakeFlag{enabled: false}})

	c.Submit(IntentMoveForward)
	if c.Status().Pending != nil {
		t.Error("disabled AI control must reject the intent")
	}
}

func TestSubmitRejectsWhenGuarded(t *testing.T) {
	c := newTestController(t, standingAt(2, 3, 0), &fakeAdvisory{adv: openAdvisory()}, &fakeActuator{},
		Deps{Guard: &fakeGuard{blocked: true}})

	c.Submit(IntentMoveForward)
	if c.Status().Pending != nil {
		t.Error("active guard policy must reject the intent")
	}
}

func TestSubmitJointLockIssuesRecovery(t *testing.T) {
	act := &fakeActuator{}
	c := newTestController(t, standingAt(2, 3, 0), &fakeAdvisory{adv: openAdvisory()}, act,
		Deps{State: &fakeState{code: StateCodeJointLock}})

	c.Submit(IntentMoveForward)
	if act.recovers != 1 {
		t.Errorf("expected one recovery stand, got %d", act.recovers)
	}
	if c.Status().Pending != nil {
		t.Error("jointLock must reject the intent until recovery completes")
	}
}

func TestSubmitRejectsWhileActionInProgress(t *testing.T) {
	c := newTestController(t, standingAt(2, 3, 0), &fakeAdvisory{adv: openAdvisory()}, &fakeActuator{},
		Deps{State: &fakeState{progress: 50}})

	c.Submit(IntentMoveForward)
	if c.Status().Pending != nil {
		t.Error("in-progress action must reject the intent")
	}
}

func TestSubmitMovingFallbackWithoutStateSignal(t *testing.T) {
	pose := standingAt(2, 3, 0)
	pose.pose.Moving = true
	c := newTestController(t, pose, &fakeAdvisory{adv: openAdvisory()}, &fakeActuator{}, Deps{})

	c.Submit(IntentMoveForward)
	if c.Status().Pending != nil {
		t.Error("moving robot without a state signal must reject the intent")
	}
}

func TestSubmitStandStillQueuesNothing(t *testing.T) {
	c := newTestController(t, standingAt(2, 3, 0), &fakeAdvisory{adv: openAdvisory()}, &fakeActuator{}, Deps{})

	c.Submit(IntentStandStill)
	if c.Status().Pending != nil {
		t.Error("stand still must not queue a command")
	}
}

func TestTickDefersOnSentinelPose(t *testing.T) {
	pose := standingAt(2, 3, 0)
	act := &fakeActuator{}
	c := newTestController(t, pose, &fakeAdvisory{adv: openAdvisory()}, act, Deps{})
	c.Submit(IntentMoveForward)

	pose.pose.X = 0.0
	c.Tick()

	if len(act.moves) != 0 {
		t.Error("sentinel pose tick must not issue actuator commands")
	}
	st := c.Status()
	if st.Pending == nil || st.Attempts != 0 {
		t.Error("sentinel pose tick must not consume an attempt or transition state")
	}
}

func TestTickDefersWhenNotStanding(t *testing.T) {
	pose := standingAt(2, 3, 0)
	act := &fakeActuator{}
	c := newTestController(t, pose, &fakeAdvisory{adv: openAdvisory()}, act, Deps{})
	c.Submit(IntentMoveForward)

	pose.pose.Standing = false
	c.Tick()

	if len(act.moves) != 0 || c.Status().Attempts != 0 {
		t.Error("non-standing tick must defer without consuming an attempt")
	}
}

func TestPureRotationCommandCompletesImmediately(t *testing.T) {
	act := &fakeActuator{}
	c := newTestController(t, standingAt(2, 3, 0), &fakeAdvisory{adv: openAdvisory()}, act, Deps{})

	c.pending = &MoveCommand{Dx: 0, Yaw: 0, StartX: 2, StartY: 3, TurnComplete: true}
	c.Tick()

	if c.Status().Pending != nil {
		t.Error("zero-displacement command must complete on the next tick")
	}
	if len(act.moves) != 0 {
		t.Error("zero-displacement command must not issue motion")
	}
}

func TestSmallGapSkipsToAdvance(t *testing.T) {
	pose := standingAt(2, 3, 0)
	act := &fakeActuator{}
	c := newTestController(t, pose, &fakeAdvisory{adv: openAdvisory()}, act, Deps{})

	// 3 degrees off target, inside the 5 degree tolerance.
	c.pending = &MoveCommand{Dx: 0.5, Yaw: -3, StartX: 2, StartY: 3, Speed: 0.5}
	c.Tick()

	st := c.Status()
	if st.Pending == nil || !st.Pending.TurnComplete {
		t.Fatal("expected turn phase to complete without motion")
	}
	for _, m := range act.moves {
		if m[2] != 0 {
			t.Errorf("no rotation should be issued for a %v deg gap, got vturn=%v", 3.0, m[2])
		}
	}
}

func TestCoarseTurnScalesCreepByClearance(t *testing.T) {
	pose := standingAt(2, 3, 0)
	act := &fakeActuator{}
	c := newTestController(t, pose, &fakeAdvisory{adv: openAdvisory()}, act, Deps{})

	// 90 degrees to the left.
	c.pending = &MoveCommand{Dx: 0.5, Yaw: -90, StartX: 2, StartY: 3, Speed: 0.5}
	c.Tick()

	if len(act.moves) != 1 {
		t.Fatalf("expected one coarse turn command, got %d", len(act.moves))
	}
	m := act.moves[0]
	// Left slot 2: creep = 2 * 0.15, rotation at +0.8 rad/s.
	if m[0] != 0.3 || m[2] != 0.8 {
		t.Errorf("coarse left turn = %v, want vx=0.3 vturn=0.8", m)
	}
}

func TestFineTurnIsPureRotation(t *testing.T) {
	pose := standingAt(2, 3, 0)
	act := &fakeActuator{}
	c := newTestController(t, pose, &fakeAdvisory{adv: Advisory{}}, act, Deps{})

	// 8 degrees off: fine band, no advisory consultation even when all
	// directions are blocked.
	c.pending = &MoveCommand{Dx: 0.5, Yaw: -8, StartX: 2, StartY: 3, Speed: 0.5}
	c.Tick()

	if len(act.moves) != 1 {
		t.Fatalf("expected one fine rotation, got %d", len(act.moves))
	}
	m := act.moves[0]
	if m[0] != 0 || m[1] != 0 || m[2] != 0.2 {
		t.Errorf("fine turn = %v, want pure rotation at 0.2", m)
	}
	if c.Status().Pending == nil {
		t.Error("fine turn must not abort on a blocked advisory")
	}
}

func TestBlockedCoarseTurnAbortsImmediately(t *testing.T) {
	act := &fakeActuator{}
	c := newTestController(t, standingAt(2, 3, 0), &fakeAdvisory{adv: Advisory{}}, act, Deps{})

	c.pending = &MoveCommand{Dx: 0.5, Yaw: -90, StartX: 2, StartY: 3, Speed: 0.5}
	c.Tick()

	if c.Status().Pending != nil {
		t.Error("blocked coarse turn must abort the command")
	}
	if len(act.moves) != 0 {
		t.Error("blocked coarse turn must not move")
	}
}

func TestBlockedAdvanceAbortsOnFirstTick(t *testing.T) {
	act := &fakeActuator{}
	c := newTestController(t, standingAt(2, 3, 0), &fakeAdvisory{adv: Advisory{}}, act, Deps{})

	c.pending = &MoveCommand{Dx: 0.5, Yaw: 0, StartX: 2, StartY: 3, TurnComplete: true, Speed: 0.5}
	c.Tick()

	if c.Status().Pending != nil {
		t.Error("blocked advance must abort within one tick, independent of the attempt limit")
	}
	if len(act.moves) != 0 {
		t.Error("blocked advance must not move")
	}
}

func TestConvergenceTimeoutAtAttemptLimit(t *testing.T) {
	pose := standingAt(2, 3, 0)
	act := &fakeActuator{}
	c := newTestController(t, pose, &fakeAdvisory{adv: openAdvisory()}, act, Deps{})

	// Robot stalls at 0.4 m traveled against a 0.5 m goal.
	pose.pose.X = 2.4
	c.pending = &MoveCommand{Dx: 0.5, Yaw: 0, StartX: 2, StartY: 3, TurnComplete: true, Speed: 0.5}

	// Attempts 1..16 each issue a forward command; the limit is 15 and the
	// counter must pass it before the abort fires.
	for i := 0; i < 16; i++ {
		c.Tick()
		if c.Status().Pending == nil {
			t.Fatalf("aborted too early, on attempt %d", i+1)
		}
	}
	if len(act.moves) != 16 {
		t.Fatalf("expected 16 motion commands before timeout, got %d", len(act.moves))
	}

	c.Tick()
	st := c.Status()
	if st.Pending != nil {
		t.Error("expected timeout abort one past the attempt limit")
	}
	if st.Attempts != 0 {
		t.Error("attempt counter must reset on abort")
	}
	if len(act.moves) != 16 {
		t.Errorf("timeout tick must not move, got %d commands", len(act.moves))
	}
}

func TestOvershootIssuesReverseCorrection(t *testing.T) {
	pose := standingAt(2, 3, 0)
	act := &fakeActuator{}
	c := newTestController(t, pose, &fakeAdvisory{adv: openAdvisory()}, act, Deps{})

	// 0.6 m traveled against a 0.5 m goal: gap 0.1 is outside tolerance.
	pose.pose.X = 2.6
	c.pending = &MoveCommand{Dx: 0.5, Yaw: 0, StartX: 2, StartY: 3, TurnComplete: true, Speed: 0.5}
	c.Tick()

	if len(act.moves) != 1 {
		t.Fatalf("expected one corrective command, got %d", len(act.moves))
	}
	if got := act.moves[0][0]; got != -0.2 {
		t.Errorf("overshoot correction vx = %v, want -0.2", got)
	}
	if c.Status().Pending == nil {
		t.Error("overshoot must not complete the command while outside tolerance")
	}
}

func TestForwardEndToEnd(t *testing.T) {
	pose := standingAt(2, 3, 0)
	act := &fakeActuator{}
	c := newTestController(t, pose, &fakeAdvisory{adv: openAdvisory()}, act, Deps{})

	c.Submit(IntentMoveForward)
	st := c.Status()
	if st.Pending == nil {
		t.Fatal("expected a queued command")
	}
	if !st.Pending.TurnComplete || st.Pending.Dx != 0.5 || st.Pending.Yaw != 0 {
		t.Fatalf("unexpected command %+v", st.Pending)
	}

	// Still short of the goal: keeps moving forward at command speed.
	c.Tick()
	if len(act.moves) != 1 || act.moves[0][0] != 0.5 {
		t.Fatalf("expected forward motion at 0.5 m/s, got %v", act.moves)
	}

	// Crossing 0.45 m traveled puts the gap inside tolerance.
	pose.pose.X = 2.46
	c.Tick()
	if c.Status().Pending != nil {
		t.Error("expected completion once distance traveled is within tolerance")
	}
}

func TestCleanAbortIsIdempotent(t *testing.T) {
	c := newTestController(t, standingAt(2, 3, 0), &fakeAdvisory{adv: openAdvisory()}, &fakeActuator{}, Deps{})

	c.Submit(IntentMoveForward)
	c.CleanAbort()
	if st := c.Status(); st.Pending != nil || st.Attempts != 0 {
		t.Fatal("CleanAbort must clear the queue and counters")
	}
	c.CleanAbort() // already empty
	if st := c.Status(); st.Pending != nil || st.Attempts != 0 {
		t.Fatal("CleanAbort must be idempotent")
	}
}
