package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/replyflow/internal/config"
	"github.com/teemow/replyflow/internal/identity"
	"github.com/teemow/replyflow/internal/profile"
)

func newProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Inspect and manage stored sender profiles",
	}

	cmd.AddCommand(newProfilesListCmd())
	cmd.AddCommand(newProfilesSearchCmd())
	cmd.AddCommand(newProfilesShowCmd())
	cmd.AddCommand(newProfilesDeleteCmd())
	return cmd
}

func openStore() (*profile.Store, error) {
	if err := config.LoadDotEnv(""); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return profile.NewStore(cfg.StorageDir, profile.WithNameMatching(cfg.StoreMatchByName))
}

func printProfileTable(records []*profile.Record) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tNAME\tCOMPANY\tROLE\tUPDATED")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			rec.Email, rec.Name, rec.Company, rec.Role,
			rec.UpdatedAt.Format("2006-01-02"))
	}
	w.Flush()
}

func newProfilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			records := store.ListAll()
			if len(records) == 0 {
				fmt.Println("No profiles stored.")
				return nil
			}
			printProfileTable(records)
			return nil
		},
	}
}

func newProfilesSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search profiles by email, name or company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			records := store.Search(args[0])
			if len(records) == 0 {
				fmt.Printf("No profiles match %q.\n", args[0])
				return nil
			}
			printProfileTable(records)
			return nil
		},
	}
}

func newProfilesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <email>",
		Short: "Print one profile as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			email := identity.Normalize(args[0])
			rec, ok := store.Get(email)
			if !ok {
				return fmt.Errorf("no profile stored for %s", email)
			}
			out, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func newProfilesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <email>",
		Short: "Delete a stored profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			email := identity.Normalize(args[0])
			deleted, err := store.Delete(email)
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Printf("No profile stored for %s.\n", email)
				return nil
			}
			fmt.Printf("Deleted profile for %s.\n", email)
			return nil
		},
	}
}
