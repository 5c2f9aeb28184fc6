package main

import "github.com/spf13/cobra"

func newVaultReportCmd() *cobra.Command {
	return stageCmd("vault-report", "Summarize the vault series and draw its figures")
}
