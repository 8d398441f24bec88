package audit

import (
	"context"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/yndnr/hashguard/pkg/securemap"
)

func TestSimulate(t *testing.T) {
	report, err := Simulate(context.Background(), 256, securemap.WithClock(clockwork.NewFakeClock()))
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	if report.AttacksDetected == 0 {
		t.Error("AttacksDetected = 0, want at least one")
	}
	if report.RehashCount == 0 {
		t.Error("RehashCount = 0, want a rehash")
	}
	if report.PeakChain < securemap.DefaultMaxChainLength {
		t.Errorf("PeakChain = %d, want >= %d", report.PeakChain, securemap.DefaultMaxChainLength)
	}
	if report.FinalMaxChain >= securemap.DefaultMaxChainLength {
		t.Errorf("FinalMaxChain = %d, want < %d", report.FinalMaxChain, securemap.DefaultMaxChainLength)
	}
	if report.Lost != 0 {
		t.Errorf("Lost = %d, want 0", report.Lost)
	}
}

func TestSimulate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Simulate(ctx, 128); err != context.Canceled {
		t.Errorf("Simulate() error = %v, want context.Canceled", err)
	}
}
