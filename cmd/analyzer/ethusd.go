package main

import "github.com/spf13/cobra"

func newEthUSDCmd() *cobra.Command {
	return stageCmd("eth-usd", "Price ETH in USD at every reserve bin from UniV3 slot0",
		rpcFlags, addressFlags, oracleFlags)
}
