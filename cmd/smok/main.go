package main

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/smok/engine/assets/mesh"
	"github.com/spaghettifunk/smok/engine/core"
	"github.com/spf13/cobra"
)

const version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "smok",
		Short:         "Inspect, write and check smok engine assets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel == "" {
				return nil
			}
			return core.SetLogLevel(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newCubeCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newCheckCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "smok %s (mesh format %s)\n", version, mesh.Version)
		},
	}
}
