package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/truckfactor/internal/mailmap"
	"github.com/Sumatoshi-tech/truckfactor/pkg/gitlib"
)

const defaultBootstrapOutput = ".mailmap"

// NewMailmapCommand creates the mailmap command group: bootstrap builds
// a first-cut identity map from commit history, suggest reports email
// pairs that look like the same person.
func NewMailmapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mailmap",
		Short: "Build and inspect author identity maps",
	}

	cmd.AddCommand(newBootstrapCommand(), newSuggestCommand())

	return cmd
}

func newBootstrapCommand() *cobra.Command {
	var (
		repoPath string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Generate a mailmap from the repository commit history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := authorHistory(repoPath)
			if err != nil {
				return err
			}

			lines := mailmap.Bootstrap(history)

			if err := mailmap.WriteBootstrap(output, lines); err != nil {
				return err
			}

			// Read the file back so a malformed write surfaces here
			// instead of on the next compute run.
			resolver, err := mailmap.Load(output)
			if err != nil {
				return fmt.Errorf("verify written mailmap: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d identities to %s\n", resolver.Len(), output)

			return nil
		},
	}

	cmd.Flags().StringVarP(&repoPath, "repo", "r", ".", "path to the repository")
	cmd.Flags().StringVarP(&output, "output", "o", defaultBootstrapOutput, "mailmap file to write")

	return cmd
}

func newSuggestCommand() *cobra.Command {
	var (
		repoPath  string
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Report email pairs that likely belong to the same author",
		Long: "Suggest compares every pair of author emails in the commit history " +
			"and prints the pairs whose similarity clears the threshold. The output " +
			"is advisory: review it and fold the pairs you trust into the mailmap by hand.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := authorHistory(repoPath)
			if err != nil {
				return err
			}

			suggestions := mailmap.Suggest(historyEmails(history), threshold)

			out := cmd.OutOrStdout()

			if len(suggestions) == 0 {
				fmt.Fprintln(out, "No pairs above the threshold.")

				return nil
			}

			for _, s := range suggestions {
				fmt.Fprintf(out, "%.3f  %s  %s\n", s.Score, s.Left, s.Right)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&repoPath, "repo", "r", ".", "path to the repository")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", mailmap.DefaultSuggestThreshold, "minimum similarity score")

	return cmd
}

func authorHistory(repoPath string) ([]string, error) {
	repo, err := gitlib.OpenRepository(repoPath)
	if err != nil {
		return nil, err
	}
	defer repo.Free()

	return repo.AuthorHistory()
}

// historyEmails extracts the deduplicated email half of the
// "Name|<email>" history lines.
func historyEmails(history []string) []string {
	seen := make(map[string]struct{}, len(history))
	emails := make([]string, 0, len(history))

	for _, line := range history {
		sep := strings.LastIndex(line, "|")
		if sep < 0 {
			continue
		}

		email := strings.Trim(strings.TrimSpace(line[sep+1:]), "<>")
		if email == "" {
			continue
		}

		if _, dup := seen[email]; dup {
			continue
		}

		seen[email] = struct{}{}

		emails = append(emails, email)
	}

	return emails
}
