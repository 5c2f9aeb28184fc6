package main

import "github.com/spf13/cobra"

func newVerifyCmd() *cobra.Command {
	return stageCmd("verify", "Check the chain id and that every configured address has bytecode",
		rpcFlags, addressFlags)
}
