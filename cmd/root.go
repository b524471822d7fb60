package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the replyflow application
var rootCmd = &cobra.Command{
	Use:   "replyflow",
	Short: "Drafts researched replies for new inbox mail",
	Long: `replyflow polls a Gmail inbox for new messages, researches each sender
through configurable web research backends, stores the resulting profiles
and prepares personalized reply drafts for human review.

Drafts are never sent automatically.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "replyflow version %s\n" .Version}}`)

	// If no subcommand is provided, run the polling loop by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "run")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newEnrichCmd())
	rootCmd.AddCommand(newProfilesCmd())
	rootCmd.AddCommand(newVersionCmd())
}
