package audit

import (
	"context"
	"math"
	"slices"
	"time"
)

// Defaults for Config.
const (
	DefaultSamples      = 2000
	DefaultWarmup       = 200
	DefaultAlpha        = 0.05
	DefaultTrimFraction = 0.05
	DefaultMinEffect    = 0.02
)

// Config controls a timing audit.
type Config struct {
	// Samples is the number of measurements per variant.
	Samples int
	// Warmup runs are executed and discarded before sampling.
	Warmup int
	// Alpha is the significance level.
	Alpha float64
	// TrimFraction of the slowest samples of each variant are dropped
	// before testing.
	TrimFraction float64
	// MinEffect is the smallest relative difference of the means, as a
	// fraction of their average, reported as a leak. Zero reports every
	// significant difference.
	MinEffect float64
	// Batch repeats the operation this many times per measurement to lift
	// it above timer resolution.
	Batch int
}

// DefaultConfig returns the default audit configuration.
func DefaultConfig() Config {
	return Config{
		Samples:      DefaultSamples,
		Warmup:       DefaultWarmup,
		Alpha:        DefaultAlpha,
		TrimFraction: DefaultTrimFraction,
		MinEffect:    DefaultMinEffect,
		Batch:        1,
	}
}

func (c Config) withDefaults() Config {
	if c.Samples < 2 {
		c.Samples = DefaultSamples
	}
	if c.Warmup < 0 {
		c.Warmup = 0
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		c.Alpha = DefaultAlpha
	}
	if c.TrimFraction < 0 || c.TrimFraction >= 0.5 {
		c.TrimFraction = DefaultTrimFraction
	}
	if c.MinEffect < 0 || c.MinEffect >= 1 {
		c.MinEffect = DefaultMinEffect
	}
	if c.Batch <= 0 {
		c.Batch = 1
	}
	return c
}

// Case is one audited operation with its two variants. The optional Reset
// functions run untimed after each measurement of their variant.
type Case struct {
	Name      string
	Hit       func()
	Miss      func()
	ResetHit  func()
	ResetMiss func()
}

func (c Case) hit(batch int) float64 {
	d := measure(c.Hit, batch)
	if c.ResetHit != nil {
		c.ResetHit()
	}
	return d
}

func (c Case) miss(batch int) float64 {
	d := measure(c.Miss, batch)
	if c.ResetMiss != nil {
		c.ResetMiss()
	}
	return d
}

// Result reports the audit of a single Case.
type Result struct {
	Name    string  `json:"name"`
	Samples int     `json:"samples"`
	HitNs   float64 `json:"hit_mean_ns"`
	MissNs  float64 `json:"miss_mean_ns"`
	T       float64 `json:"t"`
	DF      float64 `json:"df"`
	P       float64 `json:"p"`
	Effect  float64 `json:"effect"`
	Leak    bool    `json:"leak"`
}

// Run audits c. It returns ctx.Err() if the context is cancelled while
// sampling.
func Run(ctx context.Context, cfg Config, c Case) (Result, error) {
	cfg = cfg.withDefaults()

	for range cfg.Warmup {
		c.hit(1)
		c.miss(1)
	}

	hits := make([]float64, 0, cfg.Samples)
	misses := make([]float64, 0, cfg.Samples)
	for i := range cfg.Samples {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		// Alternate which variant goes first so drift hits both equally.
		if i%2 == 0 {
			hits = append(hits, c.hit(cfg.Batch))
			misses = append(misses, c.miss(cfg.Batch))
		} else {
			misses = append(misses, c.miss(cfg.Batch))
			hits = append(hits, c.hit(cfg.Batch))
		}
	}

	tt := Welch(trim(hits, cfg.TrimFraction), trim(misses, cfg.TrimFraction))
	effect := relativeEffect(tt.MeanA, tt.MeanB)
	return Result{
		Name:    c.Name,
		Samples: cfg.Samples,
		HitNs:   tt.MeanA,
		MissNs:  tt.MeanB,
		T:       tt.T,
		DF:      tt.DF,
		P:       tt.P,
		Effect:  effect,
		Leak:    tt.P <= cfg.Alpha && math.Abs(effect) >= cfg.MinEffect,
	}, nil
}

// RunAll audits every case in order.
func RunAll(ctx context.Context, cfg Config, cases []Case) ([]Result, error) {
	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		r, err := Run(ctx, cfg, c)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// relativeEffect returns (miss - hit) divided by the average of the two.
func relativeEffect(hit, miss float64) float64 {
	avg := (hit + miss) / 2
	if avg == 0 {
		return 0
	}
	return (miss - hit) / avg
}

func measure(fn func(), batch int) float64 {
	start := time.Now()
	for range batch {
		fn()
	}
	return float64(time.Since(start).Nanoseconds()) / float64(batch)
}

// trim sorts s and drops the slowest fraction.
func trim(s []float64, fraction float64) []float64 {
	slices.Sort(s)
	keep := len(s) - int(float64(len(s))*fraction)
	return s[:keep]
}
