package main

import "github.com/spf13/cobra"

func newExecutionQualityCmd() *cobra.Command {
	return stageCmd("execution-quality", "Summarize and compare pre and post slippage")
}
