// Package label computes a canonical atom numbering for a parsed molecule
// using Weininger-style invariant refinement: atoms start partitioned by a
// small set of structural invariants, then the partition is iteratively
// refined by hashing each atom's neighbors' current ranks together with its
// own, doubling ties apart when refinement stalls, until every atom has a
// unique rank or a round cap is reached.
package label

import (
	"sort"

	"github.com/nmrhose/nmrhose/internal/chem/molgraph"
	"github.com/nmrhose/nmrhose/pkg/errors"
)

// maxRounds bounds the refinement loop. A molecule that still has tied
// atoms after this many rounds is almost certainly a highly symmetric
// structure (e.g. a fullerene-like cage) that invariant refinement alone
// cannot fully resolve; the labeler then falls back to breaking remaining
// ties by atom input order, which keeps the function total without
// claiming a canonical answer it cannot produce.
const maxRounds = 100

// primes holds the first 200 prime numbers, used to build the per-atom
// neighbor-hash invariant as a product of primes indexed by neighbor rank.
// Using primes rather than sums avoids invariant collisions between
// different multisets of neighbor ranks that a simple sum would conflate
// (e.g. {2,2} vs {1,3}).
var primes = firstNPrimes(200)

// Labels computes a canonical rank for every atom in mol, in [0, len(Atoms)).
// Ties the refinement leaves, including ties between topologically
// equivalent atoms, are broken, so every atom receives a distinct rank.
// Labels calls mol.EnsureDerivedTables if it has not already run.
func Labels(mol *molgraph.Molecule) ([]int, error) {
	if err := mol.EnsureDerivedTables(); err != nil {
		return nil, err
	}
	n := len(mol.Atoms)
	if n == 0 {
		return nil, errors.New(errors.CodeLabelingFailed, "cannot label an empty molecule")
	}

	ranks := initialInvariants(mol)

	for round := 0; round < maxRounds; round++ {
		next := refine(mol, ranks)
		if equalPartition(ranks, next) {
			if allUnique(next) {
				ranks = next
				break
			}
			// Refinement stalled with ties remaining: break the first tied
			// class apart by doubling one member's rank, then keep going.
			next = breakTie(next)
		}
		ranks = next
		if allUnique(ranks) {
			break
		}
	}

	if !allUnique(ranks) {
		ranks = breakRemainingTiesByInputOrder(ranks)
	}

	return denseRank(ranks), nil
}

// initialInvariants seeds each atom's rank from atomic number, charge,
// implicit hydrogen count, aromaticity, ring membership, and degree —
// the same coarse signature molgraph uses for symmetry classes, reused
// here as the labeler's round-zero partition.
func initialInvariants(mol *molgraph.Molecule) []int64 {
	n := len(mol.Atoms)
	out := make([]int64, n)
	for i, a := range mol.Atoms {
		var v int64
		v = v*1000 + int64(a.AtomicNumber)
		v = v*20 + int64(a.Charge+10)
		v = v*10 + int64(a.HCount)
		v = v*2 + boolInt64(a.Aromatic)
		v = v*2 + boolInt64(a.InRing)
		v = v*10 + int64(len(a.Bonds))
		out[i] = v
	}
	return out
}

// refine produces the next round's ranks by combining each atom's current
// rank with a prime-product hash of its neighbors' current ranks.
func refine(mol *molgraph.Molecule, ranks []int64) []int64 {
	dense := denseRankInt64(ranks)
	n := len(mol.Atoms)
	out := make([]int64, n)
	for i := range mol.Atoms {
		nbrRanks := make([]int, 0, len(mol.Atoms[i].Bonds))
		for _, bi := range mol.Atoms[i].Bonds {
			other := mol.Bonds[bi].OtherAtom(i)
			nbrRanks = append(nbrRanks, dense[other])
		}
		sort.Ints(nbrRanks)

		product := int64(1)
		for _, r := range nbrRanks {
			product *= primeFor(r)
		}
		out[i] = ranks[i]*1_000_000_007 + product
	}
	return denseRankInt64AsInt64(out)
}

func primeFor(rank int) int64 {
	if rank < 0 {
		rank = 0
	}
	return int64(primes[rank%len(primes)])
}

func equalPartition(a, b []int64) bool {
	da := denseRankInt64(a)
	db := denseRankInt64(b)
	for i := range da {
		if da[i] != db[i] {
			return false
		}
	}
	return countDistinctInt(da) == countDistinctInt(db)
}

func allUnique(ranks []int64) bool {
	seen := make(map[int64]bool, len(ranks))
	for _, r := range ranks {
		if seen[r] {
			return false
		}
		seen[r] = true
	}
	return true
}

// breakTie finds the first class with more than one member (in atom-index
// order) and shifts the first member's rank away from the rest, giving
// refinement a new asymmetry to propagate from.
func breakTie(ranks []int64) []int64 {
	groups := make(map[int64][]int)
	order := make([]int64, 0)
	for i, r := range ranks {
		if _, ok := groups[r]; !ok {
			order = append(order, r)
		}
		groups[r] = append(groups[r], i)
	}
	out := append([]int64(nil), ranks...)
	for _, r := range order {
		members := groups[r]
		if len(members) > 1 {
			out[members[0]] = out[members[0]]*2 + 1
			return out
		}
	}
	return out
}

func breakRemainingTiesByInputOrder(ranks []int64) []int64 {
	out := append([]int64(nil), ranks...)
	groups := make(map[int64][]int)
	for i, r := range out {
		groups[r] = append(groups[r], i)
	}
	for _, members := range groups {
		if len(members) <= 1 {
			continue
		}
		sort.Ints(members)
		for offset, idx := range members {
			out[idx] = out[idx]*int64(len(members)) + int64(offset)
		}
	}
	return out
}

func denseRank(vals []int64) []int {
	sorted := append([]int64(nil), vals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	uniq := sorted[:0]
	var last int64
	first := true
	for _, v := range sorted {
		if first || v != last {
			uniq = append(uniq, v)
			last = v
			first = false
		}
	}
	rank := make(map[int64]int, len(uniq))
	for i, v := range uniq {
		rank[v] = i
	}
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = rank[v]
	}
	return out
}

func denseRankInt64(vals []int64) []int {
	return denseRank(vals)
}

func denseRankInt64AsInt64(vals []int64) []int64 {
	dense := denseRank(vals)
	out := make([]int64, len(dense))
	for i, v := range dense {
		out[i] = int64(v)
	}
	return out
}

func countDistinctInt(vals []int) int {
	seen := make(map[int]bool, len(vals))
	for _, v := range vals {
		seen[v] = true
	}
	return len(seen)
}

func boolInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// firstNPrimes computes the first n primes via trial division. n is small
// (200) and this runs once at package init, so simplicity is preferred over
// a sieve.
func firstNPrimes(n int) []int {
	out := make([]int, 0, n)
	candidate := 2
	for len(out) < n {
		isPrime := true
		for _, p := range out {
			if p*p > candidate {
				break
			}
			if candidate%p == 0 {
				isPrime = false
				break
			}
		}
		if isPrime {
			out = append(out, candidate)
		}
		candidate++
	}
	return out
}
