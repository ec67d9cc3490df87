package facepresence

import (
	"testing"
	"time"
)

type fakeBus struct {
	handler func([]byte)
}

func (b *fakeBus) Subscribe(topic string, handler func([]byte)) error {
	b.handler = handler
	return nil
}

func newTestProvider(t *testing.T) (*Provider, *fakeBus, *time.Time) {
	t.Helper()
	bus := &fakeBus{}
	p, err := New(bus, "om/face/presence", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	now := time.Now()
	p.now = func() time.Time { return now }
	return p, bus, &now
}

func TestNoReportMeansNoUnknownFaces(t *testing.T) {
	p, _, _ := newTestProvider(t)
	if got := p.UnknownFaces(); got != 0 {
		t.Fatalf("UnknownFaces() = %d before any report, want 0", got)
	}
}

func TestRecentReportCounts(t *testing.T) {
	p, bus, _ := newTestProvider(t)
	bus.handler([]byte(`{"unknown": 2, "known": ["alice"]}`))
	if got := p.UnknownFaces(); got != 2 {
		t.Fatalf("UnknownFaces() = %d, want 2", got)
	}
}

func TestStaleReportIsIgnored(t *testing.T) {
	p, bus, now := newTestProvider(t)
	bus.handler([]byte(`{"unknown": 3}`))
	*now = now.Add(DefaultRecentWindow + time.Second)
	if got := p.UnknownFaces(); got != 0 {
		t.Fatalf("UnknownFaces() = %d after window expired, want 0", got)
	}
}

func TestMalformedReportKeepsLastGood(t *testing.T) {
	p, bus, _ := newTestProvider(t)
	bus.handler([]byte(`{"unknown": 1}`))
	bus.handler([]byte(`not json`))
	if got := p.UnknownFaces(); got != 1 {
		t.Fatalf("UnknownFaces() = %d, want 1", got)
	}
}

func TestGuardBlocksOnlyInGuardModeWithStrangers(t *testing.T) {
	p, bus, _ := newTestProvider(t)

	g := &Guard{Mode: "guard", Faces: p}
	if g.Blocked() {
		t.Fatal("guard should not block with nobody in view")
	}

	bus.handler([]byte(`{"unknown": 1}`))
	if !g.Blocked() {
		t.Fatal("guard should block with an unknown face in view")
	}

	g.Mode = ""
	if g.Blocked() {
		t.Fatal("guard should never block outside guard mode")
	}
}
