package main

import (
	"github.com/spf13/cobra"

	infraPostgres "github.com/architeacher/persons/services/svc-persons/internal/infrastructure/postgres"
	"github.com/architeacher/persons/services/svc-persons/internal/runtime"
)

func newMigrateCmd(envFiles *[]string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert the pessoa schema migrations",
	}

	cmd.AddCommand(newMigrateDirectionCmd(envFiles, infraPostgres.DirectionUp, "Apply all pending migrations"))
	cmd.AddCommand(newMigrateDirectionCmd(envFiles, infraPostgres.DirectionDown, "Revert the most recent migration"))

	return cmd
}

func newMigrateDirectionCmd(envFiles *[]string, direction infraPostgres.Direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(direction),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runtime.Migrate(cmd.Context(), direction, *envFiles...)
		},
	}
}
