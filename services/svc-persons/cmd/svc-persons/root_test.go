package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	require.Contains(t, names, "serve")
	require.Contains(t, names, "migrate")

	migrate, _, err := cmd.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	require.Equal(t, "down", migrate.Name())

	envFlag := cmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, envFlag)
	require.Equal(t, "[.env]", envFlag.DefValue)
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"migrate", "up", "extra"})

	require.Error(t, cmd.Execute())
}
