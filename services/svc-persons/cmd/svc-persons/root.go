package main

import (
	"cmp"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/architeacher/persons/services/svc-persons/internal/config"
)

func newRootCmd() *cobra.Command {
	var envFiles []string

	cmd := &cobra.Command{
		Use:           "svc-persons",
		Short:         "Person registry HTTP service",
		Version:       fmt.Sprintf("%s (commit %s)", cmp.Or(config.ServiceVersion, "dev"), cmp.Or(config.CommitSHA, "none")),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files loaded before the environment")

	cmd.AddCommand(newServeCmd(&envFiles))
	cmd.AddCommand(newMigrateCmd(&envFiles))

	return cmd
}
