package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newVaultCmd() *cobra.Command {
	return stageCmd("vault", "Reconstruct vault holdings and value after the migration",
		rpcFlags, addressFlags, oracleFlags, toFlag,
		func(f *pflag.FlagSet) {
			f.Uint64("vault-stride", 600, "blocks between vault samples")
		})
}
