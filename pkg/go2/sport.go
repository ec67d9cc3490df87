package go2

import (
	"encoding/json"
	"log/slog"
)

// Publisher is the bus capability the sport client needs.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// sportRequest is the wire format consumed by the sport-mode bridge.
type sportRequest struct {
	Command string  `json:"command"`
	Vx      float64 `json:"vx,omitempty"`
	Vy      float64 `json:"vy,omitempty"`
	Vturn   float64 `json:"vturn,omitempty"`
}

// SportClient publishes motion primitives to the sport-mode bridge.
// All commands are fire-and-forget: completion is observed through
// odometry, never confirmed by the actuator.
type SportClient struct {
	pub    Publisher
	topic  string
	logger *slog.Logger
}

// NewSportClient returns a client publishing on the given topic.
func NewSportClient(pub Publisher, topic string, logger *slog.Logger) *SportClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &SportClient{
		pub:    pub,
		topic:  topic,
		logger: logger.With("component", "sport"),
	}
}

// Move commands body velocities: vx forward m/s, vy lateral m/s, vturn
// rotational rad/s.
func (s *SportClient) Move(vx, vy, vturn float64) {
	s.send(sportRequest{Command: "Move", Vx: vx, Vy: vy, Vturn: vturn})
}

// RecoverStand requests a balance-stand, clearing a joint-lock fault.
func (s *SportClient) RecoverStand() {
	s.send(sportRequest{Command: "BalanceStand"})
}

// Stop halts any in-flight motion immediately.
func (s *SportClient) Stop() {
	s.send(sportRequest{Command: "StopMove"})
}

func (s *SportClient) send(req sportRequest) {
	payload, err := json.Marshal(req)
	if err != nil {
		s.logger.Error("failed to encode sport request", "error", err)
		return
	}
	if err := s.pub.Publish(s.topic, payload); err != nil {
		s.logger.Error("failed to publish sport request",
			"command", req.Command, "error", err)
	}
}
