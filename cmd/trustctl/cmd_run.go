package main

import (
	"github.com/Harshitk-cp/trustmind/internal/bootstrap"
	"github.com/Harshitk-cp/trustmind/internal/config"
	"github.com/Harshitk-cp/trustmind/internal/scenario"
	"github.com/Harshitk-cp/trustmind/internal/service"
	"github.com/spf13/cobra"
)

var noSave bool

// runCmd executes a YAML experiment script
var runCmd = &cobra.Command{
	Use:   "run <script.yaml>",
	Short: "Run a scripted experiment",
	Long: `Run a YAML experiment script against the stored beliefs.

The script's mature and update switches override MATURE_TOM and UPDATE_ON_DECISION.
Beliefs are saved afterwards unless --no-save is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist beliefs after the run")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	stores, err := bootstrap.OpenStores(ctx, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	opts := service.TrustOptions{
		MatureToM:        sc.MatureToM(),
		UpdateOnDecision: sc.UpdateOnDecision(),
		EpisodicSamples:  config.EpisodicSamples(),
	}
	svc, err := bootstrap.NewTrustService(ctx, stores, opts, logger)
	if err != nil {
		return err
	}

	report, runErr := scenario.NewRunner(svc, logger).Run(ctx, sc)
	if report != nil {
		if err := writeYAML(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	if noSave {
		return nil
	}
	return svc.Save(ctx)
}
