package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newSlippagePostCmd() *cobra.Command {
	return stageCmd("slippage-post", "Quote the UniV4 pool to measure slippage after the migration",
		rpcFlags, addressFlags, sizeFlags, oracleFlags, toFlag,
		func(f *pflag.FlagSet) {
			f.Uint64("post-stride", 300, "blocks between samples")
		})
}
