package molgraph

import "github.com/nmrhose/nmrhose/pkg/errors"

// BondOrder is the formal bond order between two atoms. Aromatic bonds
// retain BondAromatic rather than being kekulized to a fixed single/double
// pattern, mirroring how the reader receives them from the SMILES bond
// symbols ('-', '=', '#', ':').
type BondOrder int

const (
	BondSingle   BondOrder = 1
	BondDouble   BondOrder = 2
	BondTriple   BondOrder = 3
	BondAromatic BondOrder = 4
)

// Bond connects two atoms, identified by their index in Molecule.Atoms.
type Bond struct {
	A1, A2 int
	Order  BondOrder
	InRing bool
}

// OtherAtom answers the atom index at the opposite end of the bond from id.
func (b Bond) OtherAtom(id int) int {
	if b.A1 == id {
		return b.A2
	}
	return b.A1
}

// Atom is a single node of the molecular graph.
type Atom struct {
	Index        int
	Symbol       string
	AtomicNumber int
	Charge       int
	HCount       int // implicit + explicit hydrogens bound to this atom
	Isotope      int
	Aromatic     bool
	InRing       bool

	// fromBracket records whether this atom was written in '[...]' form,
	// which carries its own explicit hydrogen count rather than one
	// inferred from valence.
	fromBracket bool

	// Bonds holds the indices (into Molecule.Bonds) of bonds incident on
	// this atom, in the order they were added during parsing.
	Bonds []int

	// SymmetryClass is populated by EnsureDerivedTables via Morgan-style
	// refinement over sorted neighbor classes; atoms with an identical environment up to
	// the refinement's resolution share a class.
	SymmetryClass int
}

// Molecule is a connected (or, in principle, disconnected) set of atoms and
// bonds as read from a SMILES string.
type Molecule struct {
	Atoms []Atom
	Bonds []Bond

	// rings holds the SSSR, each entry a cyclically-ordered list of atom
	// indices. Populated by EnsureDerivedTables.
	rings [][]int

	derived bool
}

// Neighbors returns the atom indices bonded to atom idx.
func (m *Molecule) Neighbors(idx int) []int {
	nbrs := make([]int, 0, len(m.Atoms[idx].Bonds))
	for _, bi := range m.Atoms[idx].Bonds {
		nbrs = append(nbrs, m.Bonds[bi].OtherAtom(idx))
	}
	return nbrs
}

// BondBetween answers the bond index connecting a and b, if one exists.
func (m *Molecule) BondBetween(a, b int) (int, bool) {
	for _, bi := range m.Atoms[a].Bonds {
		bd := m.Bonds[bi]
		if bd.OtherAtom(a) == b {
			return bi, true
		}
	}
	return 0, false
}

// Rings answers the SSSR computed by EnsureDerivedTables. Calling it before
// EnsureDerivedTables returns nil.
func (m *Molecule) Rings() [][]int {
	return m.rings
}

// addAtom appends a new atom and returns its index.
func (m *Molecule) addAtom(a Atom) int {
	a.Index = len(m.Atoms)
	m.Atoms = append(m.Atoms, a)
	return a.Index
}

// addBond appends a new bond and wires it into both endpoint atoms.
func (m *Molecule) addBond(a1, a2 int, order BondOrder) int {
	bi := len(m.Bonds)
	m.Bonds = append(m.Bonds, Bond{A1: a1, A2: a2, Order: order})
	m.Atoms[a1].Bonds = append(m.Atoms[a1].Bonds, bi)
	m.Atoms[a2].Bonds = append(m.Atoms[a2].Bonds, bi)
	return bi
}

// EnsureDerivedTables computes ring membership, aromaticity, and symmetry
// classes, in that order, if they have not already been computed. It is
// idempotent and safe to call from multiple entry points (labeler, HOSE
// generator) without redundant work.
func (m *Molecule) EnsureDerivedTables() error {
	if m.derived {
		return nil
	}
	if len(m.Atoms) == 0 {
		return errors.New(errors.CodeInvalidSMILES, "molecule has no atoms")
	}

	rings := computeSSSR(m)
	m.rings = rings
	markRingMembership(m, rings)
	perceiveAromaticity(m, rings)
	assignSymmetryClasses(m)

	m.derived = true
	return nil
}
