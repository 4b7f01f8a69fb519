// Package molgraph provides an in-memory molecular graph representation and
// a SMILES reader sufficient to support canonical labeling and HOSE code
// generation: atoms, bonds, ring perception, and aromaticity.
package molgraph

// Element holds the periodic-table facts needed by the SMILES reader and the
// downstream unsaturation/valence checks.
type Element struct {
	Symbol         string
	AtomicNumber   int
	DefaultValence int
}

// PeriodicTable covers the organic subset accepted by ParseSMILES's bareatom
// grammar (B, C, N, O, P, S, F, Cl, Br, I) plus the handful of additional
// elements commonly seen in bracket atoms for NMR-relevant compounds.
var PeriodicTable = map[string]Element{
	"H":  {"H", 1, 1},
	"B":  {"B", 5, 3},
	"C":  {"C", 6, 4},
	"N":  {"N", 7, 3},
	"O":  {"O", 8, 2},
	"F":  {"F", 9, 1},
	"Si": {"Si", 14, 4},
	"P":  {"P", 15, 3},
	"S":  {"S", 16, 2},
	"Cl": {"Cl", 17, 1},
	"Se": {"Se", 34, 2},
	"Br": {"Br", 35, 1},
	"I":  {"I", 53, 1},
}

// organicSubset lists the one- and two-letter element symbols that may
// appear unbracketed in a SMILES string, per the Daylight grammar.
var organicSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

// aromaticOrganicSubset lists the lowercase aromatic element symbols
// accepted unbracketed (b, c, n, o, p, s).
var aromaticOrganicSubset = map[string]string{
	"b": "B", "c": "C", "n": "N", "o": "O", "p": "P", "s": "S",
}

func elementValence(symbol string) int {
	if e, ok := PeriodicTable[symbol]; ok {
		return e.DefaultValence
	}
	return 0
}

func atomicNumber(symbol string) int {
	if e, ok := PeriodicTable[symbol]; ok {
		return e.AtomicNumber
	}
	return 0
}
