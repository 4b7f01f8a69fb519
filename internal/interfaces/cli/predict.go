package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nmrhose/nmrhose/internal/lookup"
)

// predictResult is the table/JSON-friendly rendering of a forward lookup.
type predictResult struct {
	SMILES  string          `json:"smiles"`
	Nucleus string          `json:"nucleus"`
	Shifts  []lookup.Result `json:"shifts"`
}

func (r predictResult) TableHeaders() []string {
	return []string{"Atom", "Element", "Shift (ppm)", "HOSE", "Source SMILES", "Fallback"}
}

func (r predictResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Shifts))
	for _, s := range r.Shifts {
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.AtomIndex),
			s.Element,
			fmt.Sprintf("%.2f", s.Shift),
			s.HOSE,
			s.SourceSMILES,
			fmt.Sprintf("%d", s.FallbackRound),
		})
	}
	return rows
}

// NewPredictCmd builds the `predict` subcommand: forward lookup of
// per-atom chemical shifts for a SMILES string.
func NewPredictCmd() *cobra.Command {
	var nucleus string

	cmd := &cobra.Command{
		Use:   "predict <smiles>",
		Short: "Predict per-atom chemical shifts for a molecule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if cliCtx.Store == nil {
				return fmt.Errorf("shift store is not available; check store/redis configuration")
			}

			l := lookup.New(cliCtx.Store)
			ctx, cancel := timeoutContext(cmd, cliCtx)
			defer cancel()

			shifts, err := l.Lookup(ctx, args[0], nucleus)
			if err != nil {
				return err
			}

			return PrintResult(cmd, predictResult{SMILES: args[0], Nucleus: nucleus, Shifts: shifts})
		},
	}

	cmd.Flags().StringVarP(&nucleus, "nucleus", "n", "13C", "target NMR nucleus (e.g. 13C, 1H)")

	return cmd
}
