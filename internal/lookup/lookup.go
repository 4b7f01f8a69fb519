// Package lookup implements forward lookup: SMILES plus target nucleus in,
// per-atom predicted shifts out, resolved against the shift store with
// progressive HOSE-code truncation when the exact key misses.
package lookup

import (
	"context"
	"time"

	"github.com/nmrhose/nmrhose/internal/chem/hose"
	"github.com/nmrhose/nmrhose/internal/chem/molgraph"
	"github.com/nmrhose/nmrhose/internal/events"
	"github.com/nmrhose/nmrhose/internal/infrastructure/messaging/kafka"
	"github.com/nmrhose/nmrhose/internal/infrastructure/monitoring/prometheus"
	"github.com/nmrhose/nmrhose/internal/store"
)

const maxTruncationRounds = 8

// Result is the predicted shift for one atom of the queried molecule.
type Result struct {
	AtomIndex     int
	Element       string
	Shift         float64
	HOSE          string
	SourceSMILES  string
	FallbackRound int
}

// Lookuper resolves forward lookups against a shift store, recording
// telemetry and metrics. The zero value is not usable; build with New.
type Lookuper struct {
	store      *store.Store
	publisher  events.Publisher
	metrics    *prometheus.AppMetrics
	maxSpheres int
}

// Option configures a Lookuper at construction.
type Option func(*Lookuper)

func WithPublisher(p events.Publisher) Option {
	return func(l *Lookuper) { l.publisher = p }
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(l *Lookuper) { l.metrics = m }
}

func WithMaxSpheres(n int) Option {
	return func(l *Lookuper) { l.maxSpheres = n }
}

// New builds a Lookuper over s.
func New(s *store.Store, opts ...Option) *Lookuper {
	l := &Lookuper{
		store:      s,
		publisher:  events.NopPublisher{},
		maxSpheres: hose.DefaultMaxSpheres,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ElementFromNucleus strips the leading integer off a nucleus string
// ("13C" -> "C", "1H" -> "H", "29Si" -> "Si"), defaulting to "C" when the
// string carries no element token at all.
func ElementFromNucleus(nucleus string) string {
	i := 0
	for i < len(nucleus) && nucleus[i] >= '0' && nucleus[i] <= '9' {
		i++
	}
	if i >= len(nucleus) {
		return "C"
	}
	return nucleus[i:]
}

// Lookup parses smiles, generates HOSE codes for every atom matching
// nucleus's element, and resolves each against the store with fallback
// truncation. Atoms with no hit anywhere in the fallback chain are silently
// skipped, matching the store's "absence is normal" semantics.
func Lookup(ctx context.Context, s *store.Store, smiles string, nucleus string) ([]Result, error) {
	return New(s).Lookup(ctx, smiles, nucleus)
}

func (l *Lookuper) Lookup(ctx context.Context, smiles string, nucleus string) ([]Result, error) {
	start := time.Now()
	results, atomCount, fallbackRound, err := l.lookup(ctx, smiles, nucleus)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	} else if len(results) == 0 {
		outcome = "no_match"
	}
	if l.metrics != nil {
		prometheus.RecordLookup(l.metrics, nucleus, outcome, fallbackRound, time.Since(start))
	}

	l.publisher.LookupPerformed(ctx, kafka.LookupPerformedPayload{
		SMILES:        smiles,
		Nucleus:       nucleus,
		AtomCount:     atomCount,
		MatchedCount:  len(results),
		FallbackRound: fallbackRound,
		DurationMs:    time.Since(start).Milliseconds(),
		PerformedAt:   time.Now(),
	})
	return results, err
}

// lookup returns results, the molecule's atom count, and the deepest
// fallback round any hit required (0 = all exact), for telemetry.
func (l *Lookuper) lookup(ctx context.Context, smiles string, nucleus string) ([]Result, int, int, error) {
	mol, err := molgraph.ParseSMILES(smiles)
	if err != nil {
		return nil, 0, 0, err
	}
	if err := mol.EnsureDerivedTables(); err != nil {
		return nil, 0, 0, err
	}

	element := ElementFromNucleus(nucleus)

	type atomHose struct {
		atomIdx int
		key     string
	}
	var candidates []atomHose
	for i, a := range mol.Atoms {
		if a.Symbol != element {
			continue
		}
		start := time.Now()
		key, genErr := hose.Generate(mol, i, l.maxSpheres)
		if l.metrics != nil {
			prometheus.RecordHOSEGenerate(l.metrics, l.maxSpheres, time.Since(start), genErr)
		}
		if genErr != nil {
			return nil, len(mol.Atoms), 0, genErr
		}
		candidates = append(candidates, atomHose{atomIdx: i, key: key})
	}
	if len(candidates) == 0 {
		return nil, len(mol.Atoms), 0, nil
	}

	keys := make([]string, len(candidates))
	for i, c := range candidates {
		keys[i] = c.key
	}
	if err := l.store.Preload(ctx, keys); err != nil {
		return nil, len(mol.Atoms), 0, err
	}

	var results []Result
	maxRound := 0
	for _, c := range candidates {
		entry, matchedKey, round, ok, err := l.resolve(ctx, c.key)
		if err != nil {
			return nil, len(mol.Atoms), 0, err
		}
		if !ok {
			continue
		}
		if round > maxRound {
			maxRound = round
		}
		results = append(results, Result{
			AtomIndex:     c.atomIdx,
			Element:       element,
			Shift:         store.WeightedAvg(entry),
			HOSE:          matchedKey,
			SourceSMILES:  entry.SMILES,
			FallbackRound: round,
		})
	}
	return results, len(mol.Atoms), maxRound, nil
}

// resolve runs the exact-match, truncation-loop, leading-H-strip fallback
// sequence for one generated HOSE key, stopping at the first hit.
func (l *Lookuper) resolve(ctx context.Context, key string) (store.Entry, string, int, bool, error) {
	if entry, ok, err := l.store.QueryExact(ctx, key); err != nil {
		return store.Entry{}, "", 0, false, err
	} else if ok {
		return entry, key, 0, true, nil
	}

	round := 0
	cur := key
	for i := 0; i < maxTruncationRounds; i++ {
		pos := rightmostDelimiter(cur)
		if pos <= 0 {
			break
		}
		round++

		withDelim := cur[:pos+1]
		if entry, ok, err := l.store.QueryExact(ctx, withDelim); err != nil {
			return store.Entry{}, "", 0, false, err
		} else if ok {
			return entry, withDelim, round, true, nil
		}

		withoutDelim := cur[:pos]
		if entry, ok, err := l.store.QueryExact(ctx, withoutDelim); err != nil {
			return store.Entry{}, "", 0, false, err
		} else if ok {
			return entry, withoutDelim, round, true, nil
		}

		cur = withoutDelim
	}

	if stripped, ok := stripLeadingH(cur); ok {
		round++
		if entry, ok, err := l.store.QueryExact(ctx, stripped); err != nil {
			return store.Entry{}, "", 0, false, err
		} else if ok {
			return entry, stripped, round, true, nil
		}
	}

	return store.Entry{}, "", round, false, nil
}

// rightmostDelimiter returns the rightmost index of '/','(' or ')' in s, or
// -1 if none occurs at a position > 0. The comma delimiter is deliberately
// excluded: truncating past it would change the encoded neighbor count.
func rightmostDelimiter(s string) int {
	for i := len(s) - 1; i > 0; i-- {
		switch s[i] {
		case '/', '(', ')':
			return i
		}
	}
	return -1
}

func stripLeadingH(s string) (string, bool) {
	i := 0
	for i < len(s) && s[i] == 'H' {
		i++
	}
	if i == 0 {
		return s, false
	}
	return s[i:], true
}
