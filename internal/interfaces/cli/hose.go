package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nmrhose/nmrhose/internal/chem/hose"
	"github.com/nmrhose/nmrhose/internal/chem/molgraph"
)

// hoseResult is the table/JSON-friendly rendering of a single HOSE-code
// generation, used for debugging and golden-file generation.
type hoseResult struct {
	SMILES  string `json:"smiles"`
	AtomIdx int    `json:"atom_index"`
	Element string `json:"element"`
	HOSE    string `json:"hose"`
}

func (r hoseResult) TableHeaders() []string { return []string{"Atom", "Element", "HOSE"} }

func (r hoseResult) TableRows() [][]string {
	return [][]string{{fmt.Sprintf("%d", r.AtomIdx), r.Element, r.HOSE}}
}

// NewHoseCmd builds the `hose` subcommand: prints the raw HOSE code for one
// atom of a SMILES string, independent of the shift store. Useful while
// authoring golden test fixtures.
func NewHoseCmd() *cobra.Command {
	var maxSpheres int

	cmd := &cobra.Command{
		Use:   "hose <smiles> <atom-index>",
		Short: "Print the HOSE code for one atom of a molecule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var atomIdx int
			if _, err := fmt.Sscanf(args[1], "%d", &atomIdx); err != nil {
				return fmt.Errorf("invalid atom index %q: %w", args[1], err)
			}

			mol, err := molgraph.ParseSMILES(args[0])
			if err != nil {
				return err
			}
			if err := mol.EnsureDerivedTables(); err != nil {
				return err
			}
			if atomIdx < 0 || atomIdx >= len(mol.Atoms) {
				return fmt.Errorf("atom index %d out of range [0, %d)", atomIdx, len(mol.Atoms))
			}

			key, err := hose.Generate(mol, atomIdx, maxSpheres)
			if err != nil {
				return err
			}

			return PrintResult(cmd, hoseResult{
				SMILES:  args[0],
				AtomIdx: atomIdx,
				Element: mol.Atoms[atomIdx].Symbol,
				HOSE:    key,
			})
		},
	}

	cmd.Flags().IntVarP(&maxSpheres, "max-spheres", "s", hose.DefaultMaxSpheres, "number of HOSE spheres to generate")

	return cmd
}
