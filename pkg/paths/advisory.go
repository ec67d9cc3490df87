// Package paths ingests lidar path messages and derives the directional
// traversability advisory the locomotion controller consults.
//
// The lidar stage fans nine candidate paths in front of the robot, slot 0
// at the far left through slot 8 at the far right, with slot 4 dead ahead.
// Each message lists the slots currently clear of obstacles plus a flag for
// clear space behind the robot.
package paths

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/sohw400/OM1/pkg/locomotion"
)

const (
	// SlotCount is the number of candidate forward paths.
	SlotCount = 9

	// CenterSlot is the dead-ahead path.
	CenterSlot = 4

	// SlotStepDeg is the angular spacing between adjacent slots.
	SlotStepDeg = 22.5
)

// DefaultMaxAge invalidates advisories older than this; a stale advisory
// reports every direction blocked.
const DefaultMaxAge = time.Second

// AngleForSlot returns the steering offset of a slot in degrees: positive
// to the left, zero dead ahead.
func AngleForSlot(slot int) float64 {
	return float64(CenterSlot-slot) * SlotStepDeg
}

// Subscriber is the bus capability the provider needs.
type Subscriber interface {
	Subscribe(topic string, handler func([]byte)) error
}

// message is the wire format from the lidar path stage.
type message struct {
	Paths   []int `json:"paths"`
	Retreat bool  `json:"retreat"`
}

// Provider maintains the newest advisory derived from the bus.
type Provider struct {
	logger *slog.Logger
	maxAge time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	viable    []int
	retreat   bool
	updatedAt time.Time
}

// New subscribes to the paths topic and returns the provider.
func New(sub Subscriber, topic string, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{
		logger: logger.With("component", "paths"),
		maxAge: DefaultMaxAge,
		now:    time.Now,
	}
	if err := sub.Subscribe(topic, p.handle); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) handle(payload []byte) {
	var msg message
	if err := json.Unmarshal(payload, &msg); err != nil {
		p.logger.Error("bad paths message", "error", err)
		return
	}

	viable := msg.Paths[:0:0]
	for _, slot := range msg.Paths {
		if slot >= 0 && slot < SlotCount {
			viable = append(viable, slot)
		}
	}

	p.mu.Lock()
	p.viable = viable
	p.retreat = msg.Retreat
	p.updatedAt = p.now()
	p.mu.Unlock()

	p.logger.Debug("paths update", "viable", viable, "retreat", msg.Retreat)
}

// Advisory derives the directional advisory from the viable slot set.
// Left turns draw on slots left of center, right turns on slots right of
// center, and any viable slot is a candidate advance path.
func (p *Provider) Advisory() locomotion.Advisory {
	p.mu.RLock()
	viable, retreat, updatedAt := p.viable, p.retreat, p.updatedAt
	p.mu.RUnlock()

	if updatedAt.IsZero() || p.now().Sub(updatedAt) > p.maxAge {
		// No recent lidar data: everything is blocked.
		return locomotion.Advisory{}
	}

	adv := locomotion.Advisory{Retreat: retreat}
	for _, slot := range viable {
		opt := locomotion.PathOption{Slot: slot, AngleDeg: AngleForSlot(slot)}
		adv.Advance = append(adv.Advance, opt)
		switch {
		case slot < CenterSlot:
			adv.TurnLeft = append(adv.TurnLeft, opt)
		case slot > CenterSlot:
			adv.TurnRight = append(adv.TurnRight, opt)
		}
	}
	return adv
}

var _ locomotion.PathAdvisory = (*Provider)(nil)
