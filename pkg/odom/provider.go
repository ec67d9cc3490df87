// Package odom ingests odometry messages from the bus and exposes the
// latest pose snapshot to the locomotion controller.
package odom

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/sohw400/OM1/pkg/locomotion"
)

// Subscriber is the bus capability the provider needs.
type Subscriber interface {
	Subscribe(topic string, handler func([]byte)) error
}

// message is the wire format published by the odometry bridge. Yaw is in
// signed degrees, (-180, 180]; attitude is the body posture string.
type message struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	YawDeg   float64 `json:"yaw"`
	Attitude string  `json:"body_attitude"`
	Moving   bool    `json:"moving"`
}

// Provider maintains the newest pose reported on the bus.
type Provider struct {
	logger *slog.Logger

	mu        sync.RWMutex
	pose      locomotion.Pose
	ok        bool
	updatedAt time.Time
}

// New subscribes to the odometry topic and returns the provider.
func New(sub Subscriber, topic string, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{logger: logger.With("component", "odom")}
	if err := sub.Subscribe(topic, p.handle); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) handle(payload []byte) {
	var msg message
	if err := json.Unmarshal(payload, &msg); err != nil {
		p.logger.Error("bad odometry message", "error", err)
		return
	}

	p.mu.Lock()
	p.pose = locomotion.Pose{
		X:        msg.X,
		Y:        msg.Y,
		Yaw:      locomotion.NormalizeAngle(msg.YawDeg),
		Standing: msg.Attitude == "standing",
		Moving:   msg.Moving,
	}
	p.ok = true
	p.updatedAt = time.Now()
	p.mu.Unlock()

	p.logger.Debug("odometry update",
		"x", msg.X, "y", msg.Y, "yaw", msg.YawDeg, "attitude", msg.Attitude)
}

// Pose returns the latest snapshot. The second return is false until the
// first message arrives.
func (p *Provider) Pose() (locomotion.Pose, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pose, p.ok
}

// UpdatedAt reports when the last odometry message arrived, for telemetry.
func (p *Provider) UpdatedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.updatedAt
}

var _ locomotion.PoseSource = (*Provider)(nil)
