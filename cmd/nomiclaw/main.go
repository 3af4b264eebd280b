// NomiClaw - Discord relay gateway for Nomi.ai companions
// License: MIT
//
// Copyright (c) 2026 NomiClaw contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/nomiclaw/cmd/nomiclaw/internal"
	"github.com/tinyland-inc/nomiclaw/cmd/nomiclaw/internal/gateway"
	"github.com/tinyland-inc/nomiclaw/cmd/nomiclaw/internal/version"
)

func NewNomiclawCommand() *cobra.Command {
	short := fmt.Sprintf("%s nomiclaw - Nomi.ai chat relay v%s\n\n", internal.Logo, internal.GetVersion())

	cmd := &cobra.Command{
		Use:     "nomiclaw",
		Short:   short,
		Example: "nomiclaw gateway",
	}

	cmd.AddCommand(
		gateway.NewGatewayCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewNomiclawCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
