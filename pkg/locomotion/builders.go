package locomotion

// Command builders. Each takes the pose and advisory captured by Submit and
// returns a MoveCommand, or nil when the advisory reports the direction
// blocked. A nil result leaves the queue slot empty for the next intent.

func (c *Controller) buildTurn(intent Intent, pose Pose, adv Advisory) *MoveCommand {
	options := adv.TurnLeft
	if intent == IntentTurnRight {
		options = adv.TurnRight
	}
	if len(options) == 0 {
		c.logger.Warn("cannot turn due to barrier", "intent", string(intent))
		return nil
	}

	path := c.selector.Select(options)
	targetYaw := NormalizeAngle(-pose.Yaw + path.AngleDeg)

	return &MoveCommand{
		Dx:           c.cfg.StepDistance,
		Yaw:          round2(targetYaw),
		StartX:       round2(pose.X),
		StartY:       round2(pose.Y),
		TurnComplete: false,
		Speed:        c.cfg.MoveSpeed,
	}
}

func (c *Controller) buildForward(pose Pose, adv Advisory) *MoveCommand {
	if len(adv.Advance) == 0 {
		c.logger.Warn("cannot advance due to barrier")
		return nil
	}

	path := c.selector.Select(adv.Advance)
	targetYaw := NormalizeAngle(-pose.Yaw + path.AngleDeg)

	return &MoveCommand{
		Dx:     c.cfg.StepDistance,
		Yaw:    targetYaw,
		StartX: round2(pose.X),
		StartY: round2(pose.Y),
		// A pure straight advance needs no turning phase.
		TurnComplete: path.AngleDeg == 0,
		Speed:        c.cfg.MoveSpeed,
	}
}

// buildBack always backs straight up: retreat is defined as no heading
// change, at reduced speed since the robot cannot see behind itself well.
func (c *Controller) buildBack(pose Pose, adv Advisory) *MoveCommand {
	if !adv.Retreat {
		c.logger.Warn("cannot retreat due to barrier")
		return nil
	}

	return &MoveCommand{
		Dx:           -c.cfg.StepDistance,
		Yaw:          0,
		StartX:       round2(pose.X),
		StartY:       round2(pose.Y),
		TurnComplete: true,
		Speed:        c.cfg.RetreatSpeed,
	}
}
