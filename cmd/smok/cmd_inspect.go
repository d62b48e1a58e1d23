package main

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/smok/engine/assets/mesh"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <decl-file> [binary-file]",
		Short: "Print the contents of a static mesh",
		Long: "Reads a static mesh and prints its vertex count, bounds and sub-meshes.\n" +
			"Without a binary file, the descriptor path with the .smesh extension is used.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			decl := args[0]
			binary := strings.TrimSuffix(decl, mesh.DeclExtension) + mesh.BinaryExtension
			if len(args) == 2 {
				binary = args[1]
			}

			m, err := mesh.Read(decl, binary)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			b := m.Bounds()
			fmt.Fprintf(out, "vertices: %d\n", len(m.Vertices))
			fmt.Fprintf(out, "indices: %d\n", m.IndexCount())
			fmt.Fprintf(out, "bounds: (%g, %g, %g) - (%g, %g, %g)\n", b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
			fmt.Fprintf(out, "sub-meshes: %d\n", len(m.SubMeshes))
			for i, sub := range m.SubMeshes {
				fmt.Fprintf(out, "  [%d] lod %d, %d indices\n", i, sub.LOD, len(sub.Indices))
			}
			return nil
		},
	}
}
