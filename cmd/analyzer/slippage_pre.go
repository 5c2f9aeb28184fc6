package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newSlippagePreCmd() *cobra.Command {
	return stageCmd("slippage-pre", "Replay UniV2 reserves to measure slippage before the migration",
		addressFlags, sizeFlags,
		func(f *pflag.FlagSet) {
			f.Int("max-points", 800, "maximum sampled Sync blocks")
		})
}
