package main

import (
	"fmt"

	"github.com/spaghettifunk/smok/engine/assets/mesh"
	"github.com/spf13/cobra"
)

func newCubeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cube <decl-file> <binary-file>",
		Short: "Write the unit cube test mesh",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := mesh.Write(args[0], args[1], mesh.Cube())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\nwrote %s\n", paths.Decl, paths.Binary)
			return nil
		},
	}
}
