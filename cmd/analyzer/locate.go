package main

import "github.com/spf13/cobra"

func newLocateCmd() *cobra.Command {
	return stageCmd("locate", "Find the block where liquidity migrated from the pair to the UniV4 pool",
		rpcFlags, addressFlags, locateFlags, toFlag)
}
