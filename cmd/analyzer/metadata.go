package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newMetadataCmd() *cobra.Command {
	return stageCmd("metadata", "Read the UniV2 pair tokens and reserves",
		rpcFlags, addressFlags,
		func(f *pflag.FlagSet) {
			f.Uint64("block", 0, "block to read at, 0 means latest")
		})
}
