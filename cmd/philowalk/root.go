package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for philowalk.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "philowalk",
		Short: "Measure how many Wikipedia articles lead to Philosophy",
		Long: `philowalk starts from random Wikipedia articles and repeatedly follows the
first link in the body text that is not in parentheses or italics. Each walk
ends when it reaches the target article (Philosophy by default), loops, or
runs into a page without a usable link.

Results of earlier walks are reused: once a walk passes through an article
whose outcome is already known, it stops there.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewWalkCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
