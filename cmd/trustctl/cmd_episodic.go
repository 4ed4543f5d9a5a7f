package main

import (
	"github.com/Harshitk-cp/trustmind/internal/bootstrap"
	"github.com/spf13/cobra"
)

var fullEpisodic bool

// episodicCmd consolidates stored informants into an episodic memory
var episodicCmd = &cobra.Command{
	Use:   "episodic",
	Short: "Build an episodic memory from all stored informants",
	Long: `Build an episodic memory for a new, unknown informant from every stored informant and save it.

With --full every stored episode is pooled without weighting; the result is printed but not saved.`,
	Args: cobra.NoArgs,
	RunE: runEpisodic,
}

func init() {
	episodicCmd.Flags().BoolVar(&fullEpisodic, "full", false, "pool all episodes without importance weighting")
}

func runEpisodic(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	stores, err := bootstrap.OpenStores(ctx, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	svc, err := bootstrap.NewTrustService(ctx, stores, bootstrap.TrustOptions(), logger)
	if err != nil {
		return err
	}

	if fullEpisodic {
		view, err := svc.ConsolidateFull(ctx)
		if err != nil {
			return err
		}
		return writeYAML(cmd.OutOrStdout(), view)
	}

	idx, err := svc.RegisterUnknown(ctx)
	if err != nil {
		return err
	}
	if err := svc.Save(ctx); err != nil {
		return err
	}
	view, err := svc.Informant(idx)
	if err != nil {
		return err
	}
	return writeYAML(cmd.OutOrStdout(), view)
}
