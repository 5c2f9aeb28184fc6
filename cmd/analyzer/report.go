package main

import "github.com/spf13/cobra"

func newReportCmd() *cobra.Command {
	return stageCmd("report", "Render the execution-quality and vault markdown reports", addressFlags)
}
