package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newLiquidityCmd() *cobra.Command {
	return stageCmd("liquidity", "Snapshot the vault module's ranges and their tick coverage",
		rpcFlags, addressFlags,
		func(f *pflag.FlagSet) {
			f.Int("bin-width", 0, "coverage bin width in ticks, 0 means the pool tick spacing")
		})
}
