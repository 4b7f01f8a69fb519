package molgraph

// assignImplicitHydrogens fills in Atom.HCount for atoms parsed from the
// unbracketed organic subset, per the Daylight implicit-hydrogen rule: an
// atom's default valence, less the sum of its bond orders (aromatic bonds
// counting 1.5, rounded down per ring pair), gives the implicit hydrogen
// count. Bracket atoms already carry an explicit HCount and are skipped.
func assignImplicitHydrogens(m *Molecule) {
	for i := range m.Atoms {
		a := &m.Atoms[i]
		if a.bracket() {
			continue
		}
		valence := elementValence(a.Symbol)
		if valence == 0 {
			continue
		}
		used := 0
		aromaticBonds := 0
		for _, bi := range a.Bonds {
			switch m.Bonds[bi].Order {
			case BondAromatic:
				aromaticBonds++
			default:
				used += int(m.Bonds[bi].Order)
			}
		}
		if aromaticBonds > 0 {
			// Two aromatic ring bonds contribute 3 bond-order units between
			// them (1.5 each); a third aromatic bond (rare, e.g. fused-ring
			// junction atoms) contributes one full unit.
			used += aromaticBonds * 3 / 2
		}
		implicit := valence - used
		if implicit > 0 {
			a.HCount = implicit
		}
	}
}

// bracket reports whether this atom was written as a '[...]' bracket atom.
// Isotope, explicit charge, or an already-populated HCount from the bracket
// grammar are the only observable markers at this point in parsing, so the
// reader flags bracket atoms directly instead of inferring it here.
func (a *Atom) bracket() bool {
	return a.fromBracket
}
