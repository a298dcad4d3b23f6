package main

import (
	"github.com/spf13/cobra"

	"github.com/architeacher/persons/services/svc-persons/internal/runtime"
)

func newServeCmd(envFiles *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the persons API until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runtime.New(runtime.WithEnvFiles(*envFiles...)).Run()
		},
	}
}
