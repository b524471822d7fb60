package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/replyflow/internal/google"
)

func newAuthCmd() *cobra.Command {
	var (
		account string
		code    string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize a Google account for mailbox access",
		Long: `Obtain and store an OAuth token for a Google account.

Run without --code to print the authorization URL. Visit the URL, grant
access, then run the command again with --code to store the token.

GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set in the environment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := google.MigrateDefaultToken(); err != nil {
				return err
			}

			if code == "" {
				if google.HasTokenForAccount(account) {
					fmt.Printf("Account %q is already authorized. Re-authorizing replaces the stored token.\n\n", account)
				}
				url, err := google.GetAuthURL()
				if err != nil {
					return err
				}
				fmt.Printf("Visit the following URL to authorize access:\n\n  %s\n\n", url)
				fmt.Printf("Then run: replyflow auth --account %s --code <authorization-code>\n", account)
				return nil
			}

			if err := google.SaveToken(context.Background(), account, code); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			fmt.Printf("Token stored for account %q.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to authorize")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the consent page")
	return cmd
}
