package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the replyflow version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("replyflow version %s\n", version)
		},
	}
}
