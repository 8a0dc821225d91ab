package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "taskie: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root taskie command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "taskie",
		Short:         "Taskie natural-language task assistant",
		Long:          "taskie interprets natural-language messages into task operations.\nIt keeps tasks and conversation history in an embedded libsql database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newChatCmd())

	return cmd
}
