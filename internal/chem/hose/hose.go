// Package hose generates HOSE (Hierarchically Ordered Spherical
// Environment) codes: a canonical, depth-bounded textual encoding of the
// structural environment around one atom, used both as the key under which
// observed chemical shifts are indexed and as the query key at lookup time.
//
// Output is byte-exact against the nmrshiftdb2/CDK reference encoding for a
// given maxSpheres: small divergences break lookups for every molecule
// containing the affected substructure, so the two-pass construction below
// follows the reference cascade step for step rather than approximating it.
package hose

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nmrhose/nmrhose/internal/chem/label"
	"github.com/nmrhose/nmrhose/internal/chem/molgraph"
	"github.com/nmrhose/nmrhose/pkg/errors"
)

// DefaultMaxSpheres is the sphere depth used when a caller does not specify
// one explicitly, and is also the reference depth: four spheres is the
// depth the source database was generated at.
const DefaultMaxSpheres = 4

// elementRank gives the fixed per-element priority consulted during pass
// 2's scoring step. These are the reference's literal constants; rescaling
// any of them (or the bond-rank constants below) would change how ties
// interact with the zero-padded string comparison and break byte-equality.
var elementRank = map[string]int{
	"C": 9000, "O": 8900, "N": 8800, "S": 8700, "P": 8600,
	"Si": 8500, "B": 8400, "F": 8300, "Cl": 8200, "Br": 8100, "I": 7900,
}

const (
	hydrogenRank    = 799999
	commaRank       = 1000
	ringClosureRank = 1100
)

// atomicMass backs the fallback rank for elements absent from elementRank;
// it need only be monotonic with true atomic mass, not exact.
var atomicMass = map[string]int{
	"H": 1, "B": 11, "C": 12, "N": 14, "O": 16, "F": 19, "Si": 28,
	"P": 31, "S": 32, "Cl": 35, "Se": 79, "Br": 80, "I": 127,
}

func rankFor(element string) int {
	if r, ok := elementRank[element]; ok {
		return r
	}
	if element == "H" {
		return hydrogenRank
	}
	return 800000 - atomicMass[element]
}

const (
	bondRankSingle   = 0
	bondRankDouble   = 200000
	bondRankTriple   = 300000
	bondRankAromatic = 100000
	bondRankComma    = 50000
)

func bondRankFor(order molgraph.BondOrder, aromatic bool) int {
	switch {
	case aromatic || order == molgraph.BondAromatic:
		return bondRankAromatic
	case order == molgraph.BondTriple:
		return bondRankTriple
	case order == molgraph.BondDouble:
		return bondRankDouble
	default:
		return bondRankSingle
	}
}

// nodeKind tags the variant a tree node holds. Comma and Hydrogen are
// genuine sentinels introduced during sphere construction (pass 1); Atom
// becomes RingClose during pass 2's scoring step, or again during emission,
// the moment its target is found already visited.
type nodeKind int

const (
	kindAtom nodeKind = iota
	kindHydrogen
	kindComma
	kindRingClose
)

// node is one slot in a sphere's node list. id is a stable identifier
// assigned at construction and never altered by the repeated stable sorts
// pass 2 performs; parentID references the id of the node that spawned
// this one in the previous sphere (or -1 at sphere 0, where the "parent"
// is the center atom itself, tracked via parentAtomIdx).
type node struct {
	kind nodeKind

	id       int
	parentID int

	atomIdx       int // real atom index; -1 for hydrogen/comma
	element       string
	bondOrder     molgraph.BondOrder
	aromatic      bool
	charge        int
	degree        int // heavy+H bond count of the underlying atom; 0 for hydrogen/comma
	parentAtomIdx int // atom index of the tree parent (center atom for sphere 0)

	canonLabel int // ascending sort key for pass 1; 0 for hydrogen/comma

	ranking     int
	score       int
	stringscore string
	stopper     bool
}

// Generate produces the HOSE code for the atom at index atomIdx in mol, out
// to maxSpheres. A maxSpheres of 0 or less uses DefaultMaxSpheres.
func Generate(mol *molgraph.Molecule, atomIdx int, maxSpheres int) (string, error) {
	if err := mol.EnsureDerivedTables(); err != nil {
		return "", err
	}
	if atomIdx < 0 || atomIdx >= len(mol.Atoms) {
		return "", errors.New(errors.CodeInvalidParam, "atom index out of range")
	}
	if maxSpheres <= 0 {
		maxSpheres = DefaultMaxSpheres
	}

	labels, err := label.Labels(mol)
	if err != nil {
		return "", err
	}

	spheres := buildSpheres(mol, atomIdx, maxSpheres, labels)
	scoreAndSort(atomIdx, spheres)
	return emit(atomIdx, spheres, maxSpheres), nil
}

func degreeOf(a molgraph.Atom) int {
	return len(a.Bonds) + a.HCount
}

// buildSpheres is pass 1: construct each sphere's node list outward from
// the center atom. Visited tracking plays no part here — the same atom may
// legitimately appear again in a later sphere; resolving that as a ring
// closure is pass 2's job.
func buildSpheres(mol *molgraph.Molecule, center int, maxSpheres int, labels []int) [][]node {
	spheres := make([][]node, maxSpheres)

	var sphere0 []node
	for _, bi := range mol.Atoms[center].Bonds {
		b := mol.Bonds[bi]
		nb := b.OtherAtom(center)
		a := mol.Atoms[nb]
		sphere0 = append(sphere0, node{
			kind: kindAtom, id: len(sphere0), parentID: -1,
			atomIdx: nb, element: a.Symbol,
			bondOrder: b.Order, aromatic: a.Aromatic || b.Order == molgraph.BondAromatic,
			charge: a.Charge, degree: degreeOf(a),
			parentAtomIdx: center, canonLabel: labels[nb],
		})
	}
	for i := 0; i < mol.Atoms[center].HCount; i++ {
		sphere0 = append(sphere0, node{
			kind: kindHydrogen, id: len(sphere0), parentID: -1,
			atomIdx: -1, element: "H", bondOrder: molgraph.BondSingle,
			parentAtomIdx: center, canonLabel: 0,
		})
	}
	sortSphereByLabel(sphere0)
	spheres[0] = sphere0

	for s := 1; s < maxSpheres; s++ {
		prev := spheres[s-1]
		var sphere []node
		for _, n := range prev {
			if n.kind != kindAtom {
				continue // only real, unresolved atoms spawn children
			}
			a := mol.Atoms[n.atomIdx]
			parentAtom := n.parentAtomIdx

			impl := a.HCount
			if len(a.Bonds) == 1 && impl == 0 {
				// Exactly one heavy neighbor (the parent) and no
				// hydrogens: a true leaf, encoded as a single comma.
				sphere = append(sphere, node{
					kind: kindComma, id: len(sphere), parentID: n.id,
					atomIdx: -1, element: ",", bondOrder: -1,
					parentAtomIdx: n.atomIdx, canonLabel: 0,
				})
				continue
			}
			for _, bi := range a.Bonds {
				b := mol.Bonds[bi]
				nb := b.OtherAtom(n.atomIdx)
				if nb == parentAtom {
					continue
				}
				nbAtom := mol.Atoms[nb]
				sphere = append(sphere, node{
					kind: kindAtom, id: len(sphere), parentID: n.id,
					atomIdx: nb, element: nbAtom.Symbol,
					bondOrder: b.Order, aromatic: nbAtom.Aromatic || b.Order == molgraph.BondAromatic,
					charge: nbAtom.Charge, degree: degreeOf(nbAtom),
					parentAtomIdx: n.atomIdx, canonLabel: labels[nb],
				})
			}
			for i := 0; i < impl; i++ {
				sphere = append(sphere, node{
					kind: kindHydrogen, id: len(sphere), parentID: n.id,
					atomIdx: -1, element: "H", bondOrder: molgraph.BondSingle,
					parentAtomIdx: n.atomIdx, canonLabel: 0,
				})
			}
		}
		sortSphereByLabel(sphere)
		spheres[s] = sphere
	}
	return spheres
}

func sortSphereByLabel(sphere []node) {
	sort.SliceStable(sphere, func(i, j int) bool {
		return sphere[i].canonLabel < sphere[j].canonLabel
	})
}

// nodeByID finds the node carrying id within sphere. Sphere slices are
// repeatedly stable-sorted during pass 2, so lookups across sphere
// boundaries must go by this stable identifier, never by slice position.
func nodeByID(sphere []node, id int) *node {
	for i := range sphere {
		if sphere[i].id == id {
			return &sphere[i]
		}
	}
	return nil
}

func zeropad6(score int) string {
	return fmt.Sprintf("%06d", score)
}

func sortByStringscoreDesc(sphere []node) {
	sort.SliceStable(sphere, func(i, j int) bool {
		return sphere[i].stringscore > sphere[j].stringscore
	})
}

// scoreAndSort is pass 2: the seven-step cascade (emission is step 7, done
// separately by emit). Steps run in the exact order and with the exact
// re-sorts the reference specifies; reordering or merging any of them
// changes tie-breaking and breaks byte-equality on molecules with
// symmetric or ring-closing substructures.
func scoreAndSort(center int, spheres [][]node) {
	maxSpheres := len(spheres)

	// Step 1: degree accumulation, bottom-up.
	for s := maxSpheres - 1; s >= 1; s-- {
		for _, n := range spheres[s] {
			if parent := nodeByID(spheres[s-1], n.parentID); parent != nil {
				parent.ranking += n.degree
			}
		}
	}

	// Step 2: score (ring-closure or element rank, plus bond rank),
	// sphere by sphere outward, batching visited-set updates so siblings
	// scored together cannot see each other as ring closures.
	visited := map[int]bool{center: true}
	for s := 0; s < maxSpheres; s++ {
		sphere := spheres[s]
		for i := range sphere {
			n := &sphere[i]
			switch {
			case n.kind == kindComma:
				n.score = commaRank + bondRankComma
			case n.kind == kindHydrogen:
				n.score = hydrogenRank + bondRankFor(n.bondOrder, n.aromatic)
			case visited[n.atomIdx]:
				n.kind = kindRingClose
				n.stopper = true
				n.score = ringClosureRank + bondRankFor(n.bondOrder, n.aromatic)
			default:
				n.score = rankFor(n.element) + bondRankFor(n.bondOrder, n.aromatic)
			}
		}
		for _, n := range sphere {
			if n.kind == kindAtom {
				visited[n.atomIdx] = true
			}
		}
		for i := range sphere {
			sphere[i].stringscore = zeropad6(sphere[i].score)
		}
		sortByStringscoreDesc(sphere)
	}

	// Step 3: ranking merged in.
	for s := 0; s < maxSpheres; s++ {
		sphere := spheres[s]
		for i := range sphere {
			sphere[i].score += sphere[i].ranking
			sphere[i].stringscore = zeropad6(sphere[i].score)
		}
		sortByStringscoreDesc(sphere)
	}

	// Step 4: stringscore build, forward.
	buildStringscoreForward(spheres)

	// Step 5: stringscore propagation, backward. The highest-priority
	// child (first in its sphere's descending order) must be the one
	// whose stringscore survives on the parent, so children are visited
	// in ascending (reverse) order and the last write wins.
	for s := maxSpheres - 1; s >= 1; s-- {
		sphere := spheres[s]
		for i := len(sphere) - 1; i >= 0; i-- {
			n := sphere[i]
			if parent := nodeByID(spheres[s-1], n.parentID); parent != nil {
				parent.stringscore = n.stringscore
			}
		}
		sortByStringscoreDesc(spheres[s-1])
	}

	// Step 6: stringscore rebuild, forward, now reflecting step 5's
	// propagated child identities.
	buildStringscoreForward(spheres)
}

func buildStringscoreForward(spheres [][]node) {
	for s := 0; s < len(spheres); s++ {
		sphere := spheres[s]
		for i := range sphere {
			prefix := ""
			if s > 0 {
				if parent := nodeByID(spheres[s-1], sphere[i].parentID); parent != nil {
					prefix = parent.stringscore
				}
			}
			sphere[i].stringscore = prefix + zeropad6(sphere[i].score)
		}
		sortByStringscoreDesc(sphere)
	}
}

// bondSymbol renders the Bremser-style bond-order prefix emitted directly
// before a node's token.
func bondSymbol(order molgraph.BondOrder, aromatic bool) string {
	switch {
	case aromatic || order == molgraph.BondAromatic:
		return "*"
	case order == molgraph.BondDouble:
		return "="
	case order == molgraph.BondTriple:
		return "%"
	default:
		return ""
	}
}

// bremser applies the reference's fixed single-letter substitutions so a
// HOSE code stays a concatenation of unit tokens.
func bremser(symbol string) string {
	switch symbol {
	case "Si":
		return "Q"
	case "Cl":
		return "X"
	case "Br":
		return "Y"
	default:
		return symbol
	}
}

func chargeSuffix(charge int) string {
	if charge == 0 {
		return ""
	}
	sign := "+"
	abs := charge
	if charge < 0 {
		sign = "-"
		abs = -charge
	}
	if abs == 1 {
		return sign
	}
	return sign + strconv.Itoa(abs)
}

func emitToken(n node) string {
	prefix := bondSymbol(n.bondOrder, n.aromatic)
	switch n.kind {
	case kindComma:
		return "" // the sentinel itself contributes no token
	case kindHydrogen:
		return prefix + "H"
	case kindRingClose:
		return prefix + "&" + chargeSuffix(n.charge)
	default:
		return prefix + bremser(n.element) + chargeSuffix(n.charge)
	}
}

// delimiterSeq answers the first n entries of the reference's delimiter
// sequence: '(', '/', '/', ')', then '/' indefinitely.
func delimiterSeq(n int) []string {
	base := []string{"(", "/", "/", ")"}
	seq := make([]string, n)
	for i := 0; i < n; i++ {
		if i < len(base) {
			seq[i] = base[i]
		} else {
			seq[i] = "/"
		}
	}
	return seq
}

// emit is pass 2 step 7. Nodes whose tree parent was resolved as a ring
// closure are suppressed from the output (but still occupy a position, so
// sibling comma placement elsewhere in the sphere is unaffected) and that
// suppression propagates to their own descendants.
func emit(center int, spheres [][]node, maxSpheres int) string {
	var sb strings.Builder
	stopperByID := make([]map[int]bool, maxSpheres)
	visited := map[int]bool{center: true}

	stopperByID[0] = map[int]bool{}
	emitSphereBody(&sb, spheres[0], nil, stopperByID[0], visited)

	delims := delimiterSeq(maxSpheres)
	for s := 1; s < maxSpheres; s++ {
		sb.WriteString(delims[s-1])
		stopperByID[s] = map[int]bool{}
		emitSphereBody(&sb, spheres[s], stopperByID[s-1], stopperByID[s], visited)
	}
	sb.WriteString(delims[maxSpheres-1])
	return sb.String()
}

func emitSphereBody(sb *strings.Builder, sphere []node, parentStoppers, thisStoppers, visited map[int]bool) {
	branchStarted := false
	currentBranch := 0
	for _, n := range sphere {
		parentStopped := parentStoppers != nil && parentStoppers[n.parentID]
		if n.kind == kindAtom && visited[n.atomIdx] && !parentStopped {
			n.kind = kindRingClose
			n.stopper = true
		}
		if n.atomIdx >= 0 {
			visited[n.atomIdx] = true
		}
		thisStoppers[n.id] = n.stopper || parentStopped
		if parentStopped {
			continue
		}
		if !branchStarted {
			currentBranch = n.parentAtomIdx
			branchStarted = true
		} else if n.parentAtomIdx != currentBranch {
			sb.WriteString(",")
			currentBranch = n.parentAtomIdx
		}
		sb.WriteString(emitToken(n))
	}
}
