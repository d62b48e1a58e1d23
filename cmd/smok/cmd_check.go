package main

import (
	"fmt"
	"io"

	"github.com/spaghettifunk/smok/engine/assets"
	"github.com/spaghettifunk/smok/engine/core"
	"github.com/spaghettifunk/smok/engine/renderer/gpu"
	"github.com/spaghettifunk/smok/engine/renderer/gpu/gputest"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var create bool
	cmd := &cobra.Command{
		Use:   "check <manifest>",
		Short: "Register and load every asset of a manifest",
		Long: "Registers every asset listed in a manifest and loads its settings.\n" +
			"With --create the GPU resources are also created and destroyed against an\n" +
			"in-memory device, which catches missing layouts and teardown leaks.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mf, err := assets.LoadManifest(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("log-level") {
				if err := core.SetLogLevel(mf.Settings.LogLevel); err != nil {
					return err
				}
			}

			m := mf.NewManager()
			ids, err := mf.Apply(m)
			if err != nil {
				return err
			}
			if err := m.LoadAll(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if create {
				if err := dryRunCreate(out, mf, m, ids); err != nil {
					return err
				}
			}
			printAssets(out, m)
			return nil
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "create and destroy GPU resources against an in-memory device")
	return cmd
}

func dryRunCreate(out io.Writer, mf *assets.Manifest, m *assets.Manager, ids map[string]uint64) error {
	backend := gputest.NewBackend()
	defer m.DestroyAll(backend, backend)

	for _, a := range m.Assets() {
		switch a.Kind() {
		case assets.KindPipelineLayout:
			if err := m.CreatePipelineLayout(a.ID(), gpu.PipelineLayoutCreateInfo{}, backend); err != nil {
				return err
			}
		case assets.KindStaticMesh:
			if err := m.InitializeStaticMesh(a.ID(), backend); err != nil {
				return err
			}
		}
	}
	for _, e := range mf.GraphicsPipelines {
		if e.Layout == "" {
			fmt.Fprintf(out, "skipping graphics pipeline %q: no layout\n", e.Name)
			continue
		}
		if err := m.CreateGraphicsPipeline(ids[e.Name], ids[e.Layout], backend, gpu.RenderTarget{}); err != nil {
			return err
		}
	}

	printAssets(out, m)
	m.DestroyAll(backend, backend)
	for _, kind := range []string{"layout", "pipeline", "shader", "buffer"} {
		if n := backend.Live(kind); n != 0 {
			return fmt.Errorf("%d %s object(s) leaked after teardown", n, kind)
		}
	}
	fmt.Fprintf(out, "dry run: %d backend call(s), no leaks\n", len(backend.Events()))
	return nil
}

func printAssets(out io.Writer, m *assets.Manager) {
	for _, a := range m.Assets() {
		fmt.Fprintf(out, "%-18s %-24s id=%-4d %s\n", a.Kind(), a.Name(), a.ID(), a.State())
	}
}
