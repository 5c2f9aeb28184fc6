package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Kuber-code/Arrakis-Assessment/internal/pipeline"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every stage in order, stopping at the first failure",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, func(ctx context.Context, p *pipeline.Pipeline) error {
				return p.RunAll(ctx)
			})
		},
	}
	f := cmd.Flags()
	baseFlags(f)
	for _, add := range []func(*pflag.FlagSet){rpcFlags, addressFlags, locateFlags, toFlag, sizeFlags, oracleFlags} {
		add(f)
	}
	f.Uint64("block", 0, "metadata block, 0 means latest")
	f.Int("max-points", 800, "maximum sampled Sync blocks")
	f.Uint64("post-stride", 300, "blocks between post-migration samples")
	f.Int("bin-width", 0, "coverage bin width in ticks, 0 means the pool tick spacing")
	f.Uint64("vault-stride", 600, "blocks between vault samples")
	return cmd
}
