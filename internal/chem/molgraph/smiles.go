package molgraph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nmrhose/nmrhose/pkg/errors"
)

// ParseSMILES reads a SMILES string covering the organic subset: atoms
// (bracket and unbracketed), single/double/triple/aromatic bond symbols,
// branches, and ring closures including the two-digit '%nn' form. It does
// not accept stereo descriptors ('@', '@@') beyond skipping them. A '.'
// separates disconnected fragments; reaction SMILES ('>>') is not accepted.
func ParseSMILES(s string) (*Molecule, error) {
	p := &smilesParser{
		src:      s,
		ringOpen: make(map[int]ringBond),
	}
	mol, err := p.parse()
	if err != nil {
		return nil, err
	}
	return mol, nil
}

type ringBond struct {
	atom  int
	order BondOrder
	set   bool
}

type smilesParser struct {
	src      string
	pos      int
	mol      Molecule
	ringOpen map[int]ringBond
}

func (p *smilesParser) parse() (*Molecule, error) {
	if strings.TrimSpace(p.src) == "" {
		return nil, errors.New(errors.CodeInvalidSMILES, "empty SMILES string")
	}

	prev := -1
	pendingOrder := BondOrder(0) // 0 means "default": single, or aromatic between two aromatic atoms
	var branchStack []int

	for p.pos < len(p.src) {
		c := p.src[p.pos]

		switch {
		case c == '(':
			branchStack = append(branchStack, prev)
			p.pos++

		case c == ')':
			if len(branchStack) == 0 {
				return nil, p.errf("unmatched ')'")
			}
			prev = branchStack[len(branchStack)-1]
			branchStack = branchStack[:len(branchStack)-1]
			p.pos++

		case c == '-' || c == '=' || c == '#' || c == ':':
			pendingOrder = bondSymbolOrder(c)
			p.pos++

		case c == '/' || c == '\\':
			// Cis/trans bond-direction markers: accepted and treated as a
			// single bond. Stereo descriptors are out of scope.
			pendingOrder = BondSingle
			p.pos++

		case c == '.':
			// Disconnected fragment separator: reset the bond cursor, no
			// bond is formed to the next atom.
			prev = -1
			pendingOrder = 0
			p.pos++

		case c >= '0' && c <= '9':
			n, _ := strconv.Atoi(string(c))
			p.pos++
			if err := p.closeOrOpenRing(n, &prev, &pendingOrder); err != nil {
				return nil, err
			}

		case c == '%':
			if p.pos+2 >= len(p.src) {
				return nil, p.errf("truncated '%%nn' ring closure")
			}
			n, err := strconv.Atoi(p.src[p.pos+1 : p.pos+3])
			if err != nil {
				return nil, p.errf("invalid '%%nn' ring closure")
			}
			p.pos += 3
			if err := p.closeOrOpenRing(n, &prev, &pendingOrder); err != nil {
				return nil, err
			}

		case c == '[':
			idx, err := p.parseBracketAtom()
			if err != nil {
				return nil, err
			}
			p.bondPrevTo(idx, &prev, &pendingOrder)

		default:
			idx, ok, err := p.tryParseOrganicAtom()
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, p.errf("unexpected character %q", c)
			}
			p.bondPrevTo(idx, &prev, &pendingOrder)
		}
	}

	if len(branchStack) != 0 {
		return nil, errors.New(errors.CodeInvalidSMILES, "unmatched '(' in SMILES")
	}
	for n, rb := range p.ringOpen {
		if rb.set {
			return nil, errors.New(errors.CodeInvalidSMILES, "unclosed ring bond "+strconv.Itoa(n))
		}
	}
	if len(p.mol.Atoms) == 0 {
		return nil, errors.New(errors.CodeInvalidSMILES, "SMILES produced no atoms")
	}

	assignImplicitHydrogens(&p.mol)
	return &p.mol, nil
}

// bondPrevTo wires a bond from prev to idx (when prev >= 0) using the
// pending bond order, then advances prev to idx and resets pendingOrder.
func (p *smilesParser) bondPrevTo(idx int, prev *int, pendingOrder *BondOrder) {
	if *prev >= 0 {
		order := *pendingOrder
		if order == 0 {
			if p.mol.Atoms[*prev].Aromatic && p.mol.Atoms[idx].Aromatic {
				order = BondAromatic
			} else {
				order = BondSingle
			}
		}
		p.mol.addBond(*prev, idx, order)
	}
	*prev = idx
	*pendingOrder = 0
}

func (p *smilesParser) closeOrOpenRing(n int, prev *int, pendingOrder *BondOrder) error {
	if *prev < 0 {
		return p.errf("ring bond digit with no preceding atom")
	}
	order := *pendingOrder
	rb, open := p.ringOpen[n]
	if !open || !rb.set {
		o := order
		if o == 0 {
			o = 0 // resolved at closure time against the closing atom
		}
		p.ringOpen[n] = ringBond{atom: *prev, order: o, set: true}
		*pendingOrder = 0
		return nil
	}

	resolved := order
	if resolved == 0 {
		resolved = rb.order
	}
	if resolved == 0 {
		if p.mol.Atoms[rb.atom].Aromatic && p.mol.Atoms[*prev].Aromatic {
			resolved = BondAromatic
		} else {
			resolved = BondSingle
		}
	}
	bi := p.mol.addBond(rb.atom, *prev, resolved)
	p.mol.Bonds[bi].InRing = true
	delete(p.ringOpen, n)
	*pendingOrder = 0
	return nil
}

// tryParseOrganicAtom parses an unbracketed organic-subset atom (C, Cl, Br,
// N, O, etc., or a lowercase aromatic symbol) starting at p.pos.
func (p *smilesParser) tryParseOrganicAtom() (int, bool, error) {
	rest := p.src[p.pos:]

	if sym, ok := aromaticOrganicSubset[rest[:1]]; ok {
		p.pos++
		idx := p.mol.addAtom(Atom{Symbol: sym, AtomicNumber: atomicNumber(sym), Aromatic: true})
		return idx, true, nil
	}

	// Two-letter symbols (Cl, Br) must be tried before the one-letter match.
	if len(rest) >= 2 {
		two := rest[:2]
		if organicSubset[two] {
			p.pos += 2
			idx := p.mol.addAtom(Atom{Symbol: two, AtomicNumber: atomicNumber(two)})
			return idx, true, nil
		}
	}
	one := rest[:1]
	if organicSubset[one] {
		p.pos++
		idx := p.mol.addAtom(Atom{Symbol: one, AtomicNumber: atomicNumber(one)})
		return idx, true, nil
	}
	if one == "*" {
		p.pos++
		idx := p.mol.addAtom(Atom{Symbol: "*", AtomicNumber: 0})
		return idx, true, nil
	}
	return 0, false, nil
}

// parseBracketAtom parses a '[...]' bracket atom: optional isotope, element
// symbol (possibly aromatic lowercase), optional chirality marker (skipped),
// optional explicit hydrogen count, optional charge, and closing ']'.
func (p *smilesParser) parseBracketAtom() (int, error) {
	p.pos++ // consume '['
	start := p.pos
	end := strings.IndexByte(p.src[start:], ']')
	if end < 0 {
		return 0, p.errf("unterminated bracket atom")
	}
	body := p.src[start : start+end]
	p.pos = start + end + 1

	i := 0
	isotope := 0
	for i < len(body) && body[i] >= '0' && body[i] <= '9' {
		i++
	}
	if i > 0 {
		isotope, _ = strconv.Atoi(body[:i])
	}

	rest := body[i:]
	aromatic := false
	symbol := ""
	if len(rest) > 0 {
		if sym, ok := aromaticOrganicSubset[rest[:1]]; ok {
			symbol = sym
			aromatic = true
			rest = rest[1:]
		} else if len(rest) >= 2 && isUpper(rest[0]) && isLower(rest[1]) && elementValence(rest[:2]) > 0 {
			symbol = rest[:2]
			rest = rest[2:]
		} else if len(rest) >= 1 && isUpper(rest[0]) {
			symbol = rest[:1]
			rest = rest[1:]
		} else {
			return 0, p.errf("invalid element symbol in bracket atom %q", body)
		}
	}
	if symbol == "" {
		return 0, p.errf("empty element symbol in bracket atom %q", body)
	}

	// Skip chirality markers.
	for strings.HasPrefix(rest, "@") {
		rest = strings.TrimPrefix(rest, "@")
	}

	hCount := 0
	if strings.HasPrefix(rest, "H") {
		rest = rest[1:]
		hCount = 1
		j := 0
		for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
			j++
		}
		if j > 0 {
			hCount, _ = strconv.Atoi(rest[:j])
			rest = rest[j:]
		}
	}

	charge := 0
	for len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		sign := 1
		if rest[0] == '-' {
			sign = -1
		}
		rest = rest[1:]
		j := 0
		for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
			j++
		}
		if j > 0 {
			n, _ := strconv.Atoi(rest[:j])
			charge += sign * n
			rest = rest[j:]
		} else {
			charge += sign
		}
	}

	idx := p.mol.addAtom(Atom{
		Symbol:       symbol,
		AtomicNumber: atomicNumber(symbol),
		Charge:       charge,
		HCount:       hCount,
		Isotope:      isotope,
		Aromatic:     aromatic,
		fromBracket:  true,
	})
	return idx, nil
}

func bondSymbolOrder(c byte) BondOrder {
	switch c {
	case '-':
		return BondSingle
	case '=':
		return BondDouble
	case '#':
		return BondTriple
	case ':':
		return BondAromatic
	}
	return BondSingle
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

func (p *smilesParser) errf(format string, args ...interface{}) error {
	msg := fmt.Sprintf("SMILES parse error at byte %d: %s", p.pos, fmt.Sprintf(format, args...))
	return errors.New(errors.CodeInvalidSMILES, msg)
}
