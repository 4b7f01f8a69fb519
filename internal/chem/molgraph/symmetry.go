package molgraph

import "sort"

// assignSymmetryClasses runs Morgan's extended-connectivity algorithm: atoms
// start partitioned by a coarse invariant (atomic number, charge, H count,
// aromaticity, degree), then each round replaces every atom's class with a
// hash of its neighbors' sorted classes until the number of distinct classes
// stops growing. This gives every topologically equivalent atom (e.g. the
// three methyl hydrogens' carbon, or the two ortho carbons of a
// monosubstituted benzene ring) the same SymmetryClass. The canonical
// labeler (package label) runs its own refinement and does not read this
// field, and neither does the HOSE generator.
func assignSymmetryClasses(m *Molecule) {
	n := len(m.Atoms)
	if n == 0 {
		return
	}

	classes := make([]int, n)
	for i, a := range m.Atoms {
		classes[i] = coarseInvariant(a, len(m.Neighbors(i)))
	}
	classes = normalizeClasses(classes)

	for round := 0; round < n; round++ {
		next := make([]int, n)
		for i := range m.Atoms {
			nbrClasses := make([]int, 0, len(m.Atoms[i].Bonds))
			for _, bi := range m.Atoms[i].Bonds {
				nbrClasses = append(nbrClasses, classes[m.Bonds[bi].OtherAtom(i)])
			}
			sort.Ints(nbrClasses)
			next[i] = combineHash(classes[i], nbrClasses)
		}
		next = normalizeClasses(next)
		if countDistinct(next) == countDistinct(classes) {
			classes = next
			break
		}
		classes = next
	}

	for i := range m.Atoms {
		m.Atoms[i].SymmetryClass = classes[i]
	}
}

func coarseInvariant(a Atom, degree int) int {
	h := a.AtomicNumber
	h = h*31 + a.Charge + 8
	h = h*31 + a.HCount
	h = h*31 + degree
	if a.Aromatic {
		h = h*31 + 1
	}
	if a.InRing {
		h = h*31 + 2
	}
	return h
}

func combineHash(self int, nbrs []int) int {
	h := self
	for _, c := range nbrs {
		h = h*1000003 ^ c
	}
	return h
}

// normalizeClasses remaps arbitrary hash values to dense, sorted small
// integers so classes stay comparable across rounds and stable for testing.
func normalizeClasses(raw []int) []int {
	uniq := make(map[int]bool, len(raw))
	for _, v := range raw {
		uniq[v] = true
	}
	sorted := make([]int, 0, len(uniq))
	for v := range uniq {
		sorted = append(sorted, v)
	}
	sort.Ints(sorted)
	rank := make(map[int]int, len(sorted))
	for i, v := range sorted {
		rank[v] = i
	}
	out := make([]int, len(raw))
	for i, v := range raw {
		out[i] = rank[v]
	}
	return out
}

func countDistinct(classes []int) int {
	seen := make(map[int]bool, len(classes))
	for _, c := range classes {
		seen[c] = true
	}
	return len(seen)
}
