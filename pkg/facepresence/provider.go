// Package facepresence tracks who the face-recognition stage currently
// sees, feeding the guard-mode policy.
package facepresence

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// DefaultRecentWindow is how long a presence report stays current.
const DefaultRecentWindow = 5 * time.Second

// Subscriber is the bus capability the provider needs.
type Subscriber interface {
	Subscribe(topic string, handler func([]byte)) error
}

// message is the wire format from the face-recognition stage.
type message struct {
	Unknown int      `json:"unknown"`
	Known   []string `json:"known"`
}

// Provider maintains the newest presence report.
type Provider struct {
	logger *slog.Logger
	window time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	unknown   int
	known     []string
	updatedAt time.Time
}

// New subscribes to the presence topic and returns the provider.
func New(sub Subscriber, topic string, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{
		logger: logger.With("component", "face_presence"),
		window: DefaultRecentWindow,
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
		p.logger.Error("bad presence message", "error", err)
		return
	}

	p.mu.Lock()
	p.unknown = msg.Unknown
	p.known = msg.Known
	p.updatedAt = p.now()
	p.mu.Unlock()

	p.logger.Debug("presence update", "unknown", msg.Unknown, "known", msg.Known)
}

// UnknownFaces returns the number of unknown faces in the most recent
// report, or zero when the report has gone stale.
func (p *Provider) UnknownFaces() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.updatedAt.IsZero() || p.now().Sub(p.updatedAt) > p.window {
		return 0
	}
	return p.unknown
}

// Guard is the guard-mode intent veto: in guard mode, any unknown person
// in view blocks autonomous movement.
type Guard struct {
	Mode  string
	Faces *Provider
}

// Blocked reports whether incoming intents should be vetoed.
func (g *Guard) Blocked() bool {
	return g.Mode == "guard" && g.Faces != nil && g.Faces.UnknownFaces() > 0
}
