package main

import "github.com/spf13/cobra"

func newProbeCmd() *cobra.Command {
	return stageCmd("probe", "Call diagnostic getters on the vault and record the results",
		rpcFlags, addressFlags)
}
