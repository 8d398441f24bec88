package audit

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestWelch(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float64
		wantLow bool // p below 0.05
	}{
		{
			name: "same distribution",
			a:    []float64{10, 11, 9, 10, 12, 8, 10, 11, 9, 10},
			b:    []float64{11, 9, 10, 10, 8, 12, 9, 11, 10, 10},
		},
		{
			name:    "shifted distribution",
			a:       []float64{10, 11, 9, 10, 12, 8, 10, 11, 9, 10},
			b:       []float64{20, 21, 19, 20, 22, 18, 20, 21, 19, 20},
			wantLow: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Welch(tt.a, tt.b)
			if got := res.P < 0.05; got != tt.wantLow {
				t.Errorf("Welch() p = %v, want low = %v", res.P, tt.wantLow)
			}
			if res.P < 0 || res.P > 1 {
				t.Errorf("Welch() p = %v out of range", res.P)
			}
		})
	}
}

func TestWelchKnownValue(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{2, 3, 4, 5, 6}
	res := Welch(a, b)

	// Equal variances 2.5, n=5: t = -1/sqrt(1) = -1, df = 8.
	if math.Abs(res.T+1) > 1e-9 {
		t.Errorf("T = %v, want -1", res.T)
	}
	if math.Abs(res.DF-8) > 1e-9 {
		t.Errorf("DF = %v, want 8", res.DF)
	}
	// Two-sided p for t=1, df=8 is about 0.3466.
	if math.Abs(res.P-0.3466) > 1e-3 {
		t.Errorf("P = %v, want ~0.3466", res.P)
	}
}

func TestWelchDegenerate(t *testing.T) {
	if res := Welch([]float64{1}, []float64{1, 2}); res.P != 1 {
		t.Errorf("short sample p = %v, want 1", res.P)
	}
	if res := Welch([]float64{3, 3, 3}, []float64{3, 3}); res.P != 1 {
		t.Errorf("identical constants p = %v, want 1", res.P)
	}
	if res := Welch([]float64{3, 3, 3}, []float64{4, 4}); res.P != 0 {
		t.Errorf("distinct constants p = %v, want 0", res.P)
	}
}

func TestTrim(t *testing.T) {
	s := []float64{5, 1, 100, 3, 2, 4, 6, 7, 8, 9}
	got := trim(s, 0.1)
	if len(got) != 9 {
		t.Fatalf("len(trim) = %d, want 9", len(got))
	}
	if got[len(got)-1] != 9 {
		t.Errorf("trim kept outlier: %v", got)
	}
}

func TestRunDetectsLeak(t *testing.T) {
	if testing.Short() {
		t.Skip("timing audit skipped in short mode")
	}
	cfg := Config{Samples: 400, Warmup: 20, Batch: 1}
	c := Case{
		Name: "sleepy miss",
		Hit:  func() {},
		Miss: func() { spin(200 * time.Microsecond) },
	}
	res, err := Run(context.Background(), cfg, c)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Leak {
		t.Errorf("Run() leak = false, want true (p = %v)", res.P)
	}
	if res.Effect <= 0 {
		t.Errorf("Run() effect = %v, want positive", res.Effect)
	}
	if res.MissNs <= res.HitNs {
		t.Errorf("miss mean %v <= hit mean %v", res.MissNs, res.HitNs)
	}
}

func TestRelativeEffect(t *testing.T) {
	tests := []struct {
		hit, miss, want float64
	}{
		{100, 100, 0},
		{100, 110, 10.0 / 105},
		{110, 100, -10.0 / 105},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := relativeEffect(tt.hit, tt.miss); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("relativeEffect(%v, %v) = %v, want %v", tt.hit, tt.miss, got, tt.want)
		}
	}
}

func TestRunIgnoresSmallEffect(t *testing.T) {
	if testing.Short() {
		t.Skip("timing audit skipped in short mode")
	}
	// A real but tiny difference: about 1% of a 200us operation.
	cfg := Config{Samples: 400, Warmup: 20, Batch: 1, MinEffect: 0.05}
	c := Case{
		Name: "slightly slower miss",
		Hit:  func() { spin(200 * time.Microsecond) },
		Miss: func() { spin(202 * time.Microsecond) },
	}
	res, err := Run(context.Background(), cfg, c)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Leak {
		t.Errorf("Run() leak = true for effect %.4f below MinEffect %.2f", res.Effect, cfg.MinEffect)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Config{Samples: 10}, Case{Hit: func() {}, Miss: func() {}})
	if err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRunAll(t *testing.T) {
	cases := []Case{
		{Name: "a", Hit: func() {}, Miss: func() {}},
		{Name: "b", Hit: func() {}, Miss: func() {}},
	}
	res, err := RunAll(context.Background(), Config{Samples: 20}, cases)
	if err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}
	if len(res) != 2 || res[0].Name != "a" || res[1].Name != "b" {
		t.Errorf("RunAll() = %+v", res)
	}
}

// spin busy-waits for d.
func spin(d time.Duration) {
	start := time.Now()
	for time.Since(start) < d {
	}
}
