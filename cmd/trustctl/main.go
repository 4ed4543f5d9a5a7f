// Command trustctl runs trust experiments and inspects stored beliefs offline.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Harshitk-cp/trustmind/internal/bootstrap"
	"github.com/Harshitk-cp/trustmind/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	logger   *zap.Logger
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "trustctl",
	Short:         "Drive and inspect the trust belief engine",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := os.Setenv("TRUSTMIND_ENV", envFile); err != nil {
				return err
			}
		}
		if err := config.Load(); err != nil {
			return err
		}
		if logger != nil {
			return nil
		}
		level := logLevel
		if level == "" {
			level = config.LogLevel()
		}
		l, err := bootstrap.NewLogger(level)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file to load (default $TRUSTMIND_ENV or .env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (default $LOG_LEVEL or info)")

	rootCmd.AddCommand(runCmd, inspectCmd, episodicCmd, versionCmd)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func main() {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
