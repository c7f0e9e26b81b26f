package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"galeria/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "galeria",
		Short: "Galeria serves and manages a hosted photo gallery",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(cfg),
		newConfigCmd(cfg),
		newImagesCmd(cfg, &jsonOutput),
		newAlbumsCmd(cfg, &jsonOutput),
		newCoverCmd(cfg, &jsonOutput),
		newLoginCmd(cfg),
		newLogoutCmd(cfg),
	)

	return cmd
}
