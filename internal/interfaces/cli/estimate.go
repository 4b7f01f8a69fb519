package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nmrhose/nmrhose/internal/estimate"
)

// estimateResult is the table/JSON-friendly rendering of a reverse estimate.
type estimateResult struct {
	Peaks      []float64            `json:"peaks"`
	Nucleus    string               `json:"nucleus"`
	Candidates []estimate.Candidate `json:"candidates"`
}

func (r estimateResult) TableHeaders() []string {
	return []string{"SMILES", "HOSE", "Matched Peaks", "Score"}
}

func (r estimateResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		rows = append(rows, []string{
			c.SMILES,
			c.HOSE,
			fmt.Sprintf("%d", c.MatchedPeaks),
			fmt.Sprintf("%.3f", c.Score),
		})
	}
	return rows
}

// NewEstimateCmd builds the `estimate` subcommand: reverse estimation of
// candidate structures from a comma-separated list of observed ppm peaks.
func NewEstimateCmd() *cobra.Command {
	var (
		nucleus   string
		tolerance float64
		minMatch  int
		capN      int
	)

	cmd := &cobra.Command{
		Use:   "estimate <peak,peak,...>",
		Short: "Estimate candidate structures from observed chemical shift peaks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if cliCtx.Store == nil {
				return fmt.Errorf("shift store is not available; check store/redis configuration")
			}

			peaks, err := parsePeaks(args[0])
			if err != nil {
				return err
			}

			e := estimate.New(cliCtx.Store)
			ctx, cancel := timeoutContext(cmd, cliCtx)
			defer cancel()

			candidates, err := e.Estimate(ctx, peaks, nucleus, estimate.Options{
				Tolerance: tolerance,
				MinMatch:  minMatch,
				Cap:       capN,
			})
			if err != nil {
				return err
			}

			return PrintResult(cmd, estimateResult{Peaks: peaks, Nucleus: nucleus, Candidates: candidates})
		},
	}

	cmd.Flags().StringVarP(&nucleus, "nucleus", "n", "13C", "target NMR nucleus (e.g. 13C, 1H)")
	cmd.Flags().Float64VarP(&tolerance, "tolerance", "t", estimate.DefaultTolerance, "ppm tolerance around each peak")
	cmd.Flags().IntVarP(&minMatch, "min-match", "m", estimate.DefaultMinMatch, "minimum number of matched peaks per candidate")
	cmd.Flags().IntVarP(&capN, "cap", "k", estimate.DefaultCap, "maximum number of candidates to return")

	return cmd
}

// parsePeaks parses a comma-separated list of floating-point ppm values.
func parsePeaks(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	peaks := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid peak value %q: %w", p, err)
		}
		peaks = append(peaks, v)
	}
	if len(peaks) == 0 {
		return nil, fmt.Errorf("no peak values supplied")
	}
	return peaks, nil
}
