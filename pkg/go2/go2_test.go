package go2

import (
	"encoding/json"
	"testing"
)

type fakeBus struct {
	handlers  map[string]func([]byte)
	published map[string][][]byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		handlers:  make(map[string]func([]byte)),
		published: make(map[string][][]byte),
	}
}

func (f *fakeBus) Subscribe(topic string, h func([]byte)) error {
	f.handlers[topic] = h
	return nil
}

func (f *fakeBus) Publish(topic string, payload []byte) error {
	f.published[topic] = append(f.published[topic], payload)
	return nil
}

func TestStateProviderDefaults(t *testing.T) {
	bus := newFakeBus()
	p, err := NewStateProvider(bus, "om/go2/state", nil)
	if err != nil {
		t.Fatalf("NewStateProvider: %v", err)
	}

	if p.StateCode() != 0 || p.ActionProgress() != 0 {
		t.Error("provider must report zero signals before the first message")
	}
}

func TestStateProviderParsesSignals(t *testing.T) {
	bus := newFakeBus()
	p, _ := NewStateProvider(bus, "om/go2/state", nil)

	bus.handlers["om/go2/state"]([]byte(`{"state_code":1002,"state":"jointLock","action_progress":40}`))

	if p.StateCode() != 1002 {
		t.Errorf("state code = %d, want 1002", p.StateCode())
	}
	if p.State() != "jointLock" {
		t.Errorf("state = %q, want jointLock", p.State())
	}
	if p.ActionProgress() != 40 {
		t.Errorf("action progress = %d, want 40", p.ActionProgress())
	}
}

func TestSportClientMove(t *testing.T) {
	bus := newFakeBus()
	s := NewSportClient(bus, "om/sport/request", nil)

	s.Move(0.5, 0, -0.8)

	msgs := bus.published["om/sport/request"]
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}
	var req sportRequest
	if err := json.Unmarshal(msgs[0], &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Command != "Move" || req.Vx != 0.5 || req.Vturn != -0.8 {
		t.Errorf("request = %+v", req)
	}
}

func TestSportClientRecoverAndStop(t *testing.T) {
	bus := newFakeBus()
	s := NewSportClient(bus, "om/sport/request", nil)

	s.RecoverStand()
	s.Stop()

	msgs := bus.published["om/sport/request"]
	if len(msgs) != 2 {
		t.Fatalf("published %d messages, want 2", len(msgs))
	}
	var first, second sportRequest
	json.Unmarshal(msgs[0], &first)
	json.Unmarshal(msgs[1], &second)
	if first.Command != "BalanceStand" || second.Command != "StopMove" {
		t.Errorf("commands = %q, %q", first.Command, second.Command)
	}
}
