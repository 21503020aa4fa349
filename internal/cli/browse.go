package cli

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vilaca/repo-issues/internal/api"
	"github.com/vilaca/repo-issues/internal/domain"
	"github.com/vilaca/repo-issues/internal/service"
	"github.com/vilaca/repo-issues/internal/termui"
)

// BrowseCmd returns the "browse" command launching the interactive viewer.
func BrowseCmd(a *app) *cobra.Command {
	var repoFlag, keyFlag string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse issues interactively",
		Long: `Launch an interactive terminal UI for browsing repository issues.

Keys:
  up/down, j/k   move through the repository list
  enter          show the highlighted repository's issues
  1-4            sort by assignee, title, time created or last updated;
                 pressing the active column again flips the direction
  s              cycle the sort-by column (resets to descending)
  a / d          sort ascending / descending
  r              reload the current repository
  q              quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			key, err := resolveKey(keyFlag, cfg, service.NewKeyStore(cfg.KeyFile, discardLogger{}))
			if err != nil {
				return err
			}
			if key == "" {
				return fmt.Errorf("%s: set GITHUB_TOKEN, pass --key or run \"repo-issues key save\"", domain.MissingKeyMessage)
			}

			var initial domain.Repository
			if repoFlag != "" {
				if initial, err = parseRepository(repoFlag); err != nil {
					return err
				}
			}

			cacheDuration := time.Duration(cfg.CacheDurationSeconds) * time.Second
			// The alternate screen owns the terminal; cache logs would garble it.
			client := api.NewCachingClient(newGitHubClient(cfg), cacheDuration, discardLogger{})
			defer client.Close()

			table := termui.NewTable(lipgloss.NewRenderer(os.Stdout), cfg.MaxTitleLength)
			model := termui.NewModel(client, key, table, initial)
			program := tea.NewProgram(model, tea.WithAltScreen())
			_, err = program.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&repoFlag, "repo", "", "repository to open, as owner/name")
	cmd.Flags().StringVar(&keyFlag, "key", "", "GitHub API key (default: configured token or saved key)")

	return cmd
}
