package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nmrhose/nmrhose/internal/store"
)

// storeInfoResult is the table/JSON-friendly rendering of `store info`.
type storeInfoResult struct {
	Backend       string `json:"backend"`
	NumChunks     int    `json:"num_chunks"`
	PopulatedKeys int    `json:"populated_keys"`
}

func (r storeInfoResult) TableHeaders() []string { return []string{"Backend", "Chunks", "Keys"} }

func (r storeInfoResult) TableRows() [][]string {
	return [][]string{{r.Backend, fmt.Sprintf("%d", r.NumChunks), fmt.Sprintf("%d", r.PopulatedKeys)}}
}

// NewStoreCmd builds the `store` subcommand group: operational commands
// against the configured shift store, as opposed to the prediction
// commands that query it.
func NewStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and warm the shift store",
	}

	cmd.AddCommand(newStoreInfoCmd(), newStorePreloadCmd(), newStoreBuildCmd())

	return cmd
}

// newStoreBuildCmd builds the `store build` subcommand: the offline tool
// that partitions a flat HOSE-key dataset into the 256 chunk_NNN artifacts
// the Store's loaders expect. It never runs from the lookup/estimate
// request path.
func newStoreBuildCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "build <dataset.json>",
		Short: "Partition a flat key->entry dataset into chunk artifacts on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading dataset: %w", err)
			}
			var dataset map[string]store.Entry
			if err := json.Unmarshal(data, &dataset); err != nil {
				return fmt.Errorf("decoding dataset: %w", err)
			}

			builder := store.NewFileBuilder()
			if err := builder.BuildToFiles(outDir, dataset); err != nil {
				return err
			}

			PrintSuccess(cmd, fmt.Sprintf("built %d chunk(s) from %d key(s) into %s", store.NumChunks, len(dataset), outDir))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "d", "./chunks", "output directory for chunk artifacts")

	return cmd
}

func newStoreInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print a summary of the configured shift store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if cliCtx.Store == nil {
				return fmt.Errorf("shift store is not available; check store/redis configuration")
			}

			ctx, cancel := timeoutContext(cmd, cliCtx)
			defer cancel()

			count := 0
			if err := cliCtx.Store.All(ctx, func(store.ChunkEntry) error {
				count++
				return nil
			}); err != nil {
				return err
			}

			return PrintResult(cmd, storeInfoResult{
				Backend:       cliCtx.Config.Store.Backend,
				NumChunks:     store.NumChunks,
				PopulatedKeys: count,
			})
		},
	}
}

func newStorePreloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preload <key> [key...]",
		Short: "Preload the given HOSE keys into the L1/L2 cache tiers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if cliCtx.Store == nil {
				return fmt.Errorf("shift store is not available; check store/redis configuration")
			}

			ctx, cancel := timeoutContext(cmd, cliCtx)
			defer cancel()

			if err := cliCtx.Store.Preload(ctx, args); err != nil {
				return err
			}

			PrintSuccess(cmd, fmt.Sprintf("preloaded %d key(s)", len(args)))
			return nil
		},
	}
}
