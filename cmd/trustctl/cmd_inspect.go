package main

import (
	"fmt"

	"github.com/Harshitk-cp/trustmind/internal/bootstrap"
	"github.com/Harshitk-cp/trustmind/internal/service"
	"github.com/spf13/cobra"
)

// inspectCmd prints stored informant networks
var inspectCmd = &cobra.Command{
	Use:   "inspect [name]",
	Short: "Print stored informant networks",
	Long:  "Print the label distribution, entropy and conditional tables of every stored informant, or only of the named one.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
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

	views := svc.Informants()
	if len(args) == 1 {
		var match []service.InformantView
		for _, v := range views {
			if v.Name == args[0] {
				match = append(match, v)
			}
		}
		if len(match) == 0 {
			return fmt.Errorf("no stored informant named %q", args[0])
		}
		views = match
	}

	return writeYAML(cmd.OutOrStdout(), map[string]any{
		"time":       svc.Now(),
		"informants": views,
	})
}
