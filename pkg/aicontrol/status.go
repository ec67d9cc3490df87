// Package aicontrol answers AI control status requests on the bus: a remote
// operator can enable, disable, or query whether autonomous movement
// commands are honored.
package aicontrol

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Request codes.
const (
	CodeDisable = 0
	CodeEnable  = 1
	CodeQuery   = 2
)

// Bus is the pub/sub capability the status responder needs.
type Bus interface {
	Subscribe(topic string, handler func([]byte)) error
	Publish(topic string, payload []byte) error
}

// Header carries message provenance. FrameID correlates a response with the
// frame of its request.
type Header struct {
	FrameID string  `json:"frame_id"`
	Stamp   float64 `json:"stamp"`
}

// Request asks to change or read the AI control state.
type Request struct {
	Header    Header `json:"header"`
	RequestID string `json:"request_id"`
	Code      int    `json:"code"`
}

// Response reports the resulting state. Code 1 means enabled.
type Response struct {
	Header    Header `json:"header"`
	RequestID string `json:"request_id"`
	Code      int    `json:"code"`
	Status    string `json:"status"`
}

// Status serves AI control requests and exposes the enabled flag to the
// locomotion controller's guard sequence.
type Status struct {
	bus           Bus
	responseTopic string
	logger        *slog.Logger
	enabled       atomic.Bool
}

// New subscribes to the request topic. AI control starts enabled.
func New(bus Bus, requestTopic, responseTopic string, logger *slog.Logger) (*Status, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Status{
		bus:           bus,
		responseTopic: responseTopic,
		logger:        logger.With("component", "ai_control"),
	}
	s.enabled.Store(true)
	if err := bus.Subscribe(requestTopic, s.handle); err != nil {
		return nil, err
	}
	return s, nil
}

// Enabled reports whether autonomous movement commands are honored.
func (s *Status) Enabled() bool {
	return s.enabled.Load()
}

func (s *Status) handle(payload []byte) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		s.logger.Error("bad AI control request", "error", err)
		return
	}
	s.logger.Info("AI control request", "code", req.Code, "request_id", req.RequestID)

	switch req.Code {
	case CodeEnable:
		s.enabled.Store(true)
		s.logger.Info("AI control enabled")
	case CodeDisable:
		s.enabled.Store(false)
		s.logger.Info("AI control disabled")
	case CodeQuery:
		// read-only
	default:
		s.logger.Warn("unknown AI control code", "code", req.Code)
		return
	}

	s.respond(req)
}

func (s *Status) respond(req Request) {
	code := CodeDisable
	status := "AI Control Disabled"
	if s.enabled.Load() {
		code = CodeEnable
		status = "AI Control Enabled"
	}

	resp := Response{
		Header:    prepareHeader(req.Header.FrameID),
		RequestID: req.RequestID,
		Code:      code,
		Status:    status,
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to encode AI control response", "error", err)
		return
	}
	if err := s.bus.Publish(s.responseTopic, payload); err != nil {
		s.logger.Error("failed to publish AI control response", "error", err)
	}
}

// prepareHeader stamps a response header, minting a fresh frame ID when the
// request carried none.
func prepareHeader(frameID string) Header {
	if frameID == "" {
		frameID = uuid.NewString()
	}
	return Header{
		FrameID: frameID,
		Stamp:   float64(time.Now().UnixNano()) / 1e9,
	}
}
