package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNomiclawCommand(t *testing.T) {
	cmd := NewNomiclawCommand()

	require.NotNil(t, cmd)

	assert.Equal(t, "nomiclaw", cmd.Use)
	assert.True(t, cmd.HasExample())
	assert.True(t, cmd.HasSubCommands())
}

func TestNewNomiclawCommand_GatewaySubcommand(t *testing.T) {
	cmd := NewNomiclawCommand()

	gw, _, err := cmd.Find([]string{"gateway"})
	require.NoError(t, err)
	require.NotNil(t, gw)

	assert.Equal(t, "gateway", gw.Use)
	assert.Contains(t, gw.Aliases, "g")
	assert.NotNil(t, gw.RunE)
	assert.NotNil(t, gw.Flags().Lookup("debug"))
}

func TestNewNomiclawCommand_VersionSubcommand(t *testing.T) {
	cmd := NewNomiclawCommand()

	ver, _, err := cmd.Find([]string{"version"})
	require.NoError(t, err)
	require.NotNil(t, ver)

	assert.Equal(t, "version", ver.Use)
	assert.NotNil(t, ver.Run)
}
