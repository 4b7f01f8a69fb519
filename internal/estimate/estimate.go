// Package estimate implements the reverse estimator: an unordered list of
// observed ppm peaks in, ranked candidate structures out, found by scanning
// the full shift store for entries whose weighted-average shift falls
// within tolerance of any peak.
package estimate

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/nmrhose/nmrhose/internal/events"
	"github.com/nmrhose/nmrhose/internal/infrastructure/messaging/kafka"
	"github.com/nmrhose/nmrhose/internal/infrastructure/monitoring/prometheus"
	"github.com/nmrhose/nmrhose/internal/lookup"
	"github.com/nmrhose/nmrhose/internal/store"
)

const (
	DefaultTolerance = 2.0
	DefaultMinMatch  = 1
	DefaultCap       = 50
)

// Options configures one Estimate call.
type Options struct {
	Tolerance float64
	MinMatch  int
	Cap       int
}

// WithDefaults fills any zero-valued field of o with the spec defaults.
func (o Options) WithDefaults() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MinMatch <= 0 {
		o.MinMatch = DefaultMinMatch
	}
	if o.Cap <= 0 {
		o.Cap = DefaultCap
	}
	return o
}

// Candidate is one ranked structure proposal for an observed peak list.
type Candidate struct {
	SMILES       string
	HOSE         string
	MatchedPeaks int
	Score        float64
}

type accumulator struct {
	smiles       string
	hose         string
	matchedIdx   map[int]bool
	cumulativeE  float64
}

// Estimator runs reverse estimation over a shift store, recording telemetry
// and metrics. The zero value is not usable; build with New.
type Estimator struct {
	store     *store.Store
	publisher events.Publisher
	metrics   *prometheus.AppMetrics
}

type Option func(*Estimator)

func WithPublisher(p events.Publisher) Option {
	return func(e *Estimator) { e.publisher = p }
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(e *Estimator) { e.metrics = m }
}

// New builds an Estimator over s.
func New(s *store.Store, opts ...Option) *Estimator {
	e := &Estimator{store: s, publisher: events.NopPublisher{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate scans the store for entries matching nucleus whose weighted
// shift lands within opts.Tolerance of any peak, accumulates per-SMILES
// matches, and returns the scored candidates sorted per spec: descending by
// score, ties broken by larger matched-peak count, truncated to opts.Cap.
func Estimate(ctx context.Context, s *store.Store, peaks []float64, nucleus string, opts Options) ([]Candidate, error) {
	return New(s).Estimate(ctx, peaks, nucleus, opts)
}

func (e *Estimator) Estimate(ctx context.Context, peaks []float64, nucleus string, opts Options) ([]Candidate, error) {
	opts = opts.WithDefaults()
	start := time.Now()

	candidates, err := e.estimate(ctx, peaks, nucleus, opts)

	if e.metrics != nil {
		prometheus.RecordEstimate(e.metrics, nucleus, len(candidates), time.Since(start))
	}
	e.publisher.EstimatePerformed(ctx, kafka.EstimatePerformedPayload{
		Nucleus:        nucleus,
		PeakCount:      len(peaks),
		CandidateCount: len(candidates),
		DurationMs:     time.Since(start).Milliseconds(),
		PerformedAt:    time.Now(),
	})
	return candidates, err
}

func (e *Estimator) estimate(ctx context.Context, peaks []float64, nucleus string, opts Options) ([]Candidate, error) {
	element := lookup.ElementFromNucleus(nucleus)

	accumulators := make(map[string]*accumulator)
	err := e.store.All(ctx, func(ce store.ChunkEntry) error {
		if ce.Entry.Nucleus != element {
			return nil
		}
		shift := store.WeightedAvg(ce.Entry)
		for i, peak := range peaks {
			if math.Abs(shift-peak) > opts.Tolerance {
				continue
			}
			acc, ok := accumulators[ce.Entry.SMILES]
			if !ok {
				acc = &accumulator{
					smiles:     ce.Entry.SMILES,
					hose:       ce.Key,
					matchedIdx: make(map[int]bool),
				}
				accumulators[ce.Entry.SMILES] = acc
			}
			if !acc.matchedIdx[i] {
				acc.matchedIdx[i] = true
				acc.cumulativeE += math.Abs(shift - peak)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(peaks) == 0 {
		return nil, nil
	}

	var candidates []Candidate
	for _, acc := range accumulators {
		matched := len(acc.matchedIdx)
		if matched < opts.MinMatch {
			continue
		}
		ratio := float64(matched) / float64(len(peaks))
		avgErr := acc.cumulativeE / float64(matched)
		score := round1000(ratio * (1 - (avgErr / opts.Tolerance)))
		candidates = append(candidates, Candidate{
			SMILES:       acc.smiles,
			HOSE:         acc.hose,
			MatchedPeaks: matched,
			Score:        score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].MatchedPeaks > candidates[j].MatchedPeaks
	})

	if len(candidates) > opts.Cap {
		candidates = candidates[:opts.Cap]
	}
	return candidates, nil
}

func round1000(x float64) float64 {
	return math.Round(x*1000) / 1000
}
