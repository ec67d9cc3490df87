// Package go2 holds the Go2-specific bus adapters: the vendor state
// provider and the sport-mode actuator.
package go2

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Subscriber is the bus capability the state provider needs.
type Subscriber interface {
	Subscribe(topic string, handler func([]byte)) error
}

// stateMessage mirrors the vendor state bridge payload. StateCode zero
// means no signal has been seen yet.
type stateMessage struct {
	StateCode      int    `json:"state_code"`
	State          string `json:"state"`
	ActionProgress int    `json:"action_progress"`
}

// StateProvider maintains the newest vendor state-machine signals.
type StateProvider struct {
	logger *slog.Logger

	mu             sync.RWMutex
	stateCode      int
	state          string
	actionProgress int
}

// NewStateProvider subscribes to the state topic and returns the provider.
func NewStateProvider(sub Subscriber, topic string, logger *slog.Logger) (*StateProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &StateProvider{logger: logger.With("component", "go2_state")}
	if err := sub.Subscribe(topic, p.handle); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *StateProvider) handle(payload []byte) {
	var msg stateMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		p.logger.Error("bad state message", "error", err)
		return
	}

	p.mu.Lock()
	p.stateCode = msg.StateCode
	p.state = msg.State
	p.actionProgress = msg.ActionProgress
	p.mu.Unlock()

	p.logger.Debug("state update",
		"state_code", msg.StateCode, "state", msg.State,
		"action_progress", msg.ActionProgress)
}

// StateCode returns the vendor state code, zero when unavailable.
func (p *StateProvider) StateCode() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stateCode
}

// State returns the vendor state name.
func (p *StateProvider) State() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// ActionProgress returns the progress of a vendor-side action, zero when
// idle.
func (p *StateProvider) ActionProgress() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.actionProgress
}
