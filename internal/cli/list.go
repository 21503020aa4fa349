package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vilaca/repo-issues/internal/api"
	"github.com/vilaca/repo-issues/internal/config"
	"github.com/vilaca/repo-issues/internal/domain"
	"github.com/vilaca/repo-issues/internal/issues"
	"github.com/vilaca/repo-issues/internal/service"
	"github.com/vilaca/repo-issues/internal/termui"
)

// listOptions are the flags of the list command.
type listOptions struct {
	repo      string
	sort      string
	direction string
	width     int
	key       string
}

// ListCmd returns the "list" command printing one repository's issues.
func ListCmd(a *app) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the issues of a repository",
		Long: `Print the issues of a repository as a table.

Issues start sorted newest first. --sort picks another column (which
resets the direction to descending) and --direction then applies an
explicit direction. Terminals narrower than 80 columns get one block per
issue instead of a table.

Examples:
  repo-issues list --repo octocat/hello-world
  repo-issues list --repo octocat/hello-world --sort assignee --direction asc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			key, err := resolveKey(opts.key, cfg, service.NewKeyStore(cfg.KeyFile, discardLogger{}))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return runList(cmd.Context(), out, newGitHubClient(cfg), key, cfg, opts, a.verbose())
		},
	}

	cmd.Flags().StringVar(&opts.repo, "repo", "", "repository as owner/name (required)")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sort column: assignee, title, created_at, updated_at")
	cmd.Flags().StringVar(&opts.direction, "direction", "", "sort direction: asc or desc")
	cmd.Flags().IntVar(&opts.width, "width", 0, "output width (default: terminal width)")
	cmd.Flags().StringVar(&opts.key, "key", "", "GitHub API key (default: configured token or saved key)")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}

func runList(ctx context.Context, out io.Writer, client api.Client, key string, cfg *config.Config, opts *listOptions, verbose bool) error {
	repo, err := parseRepository(opts.repo)
	if err != nil {
		return err
	}
	if _, err := applySortFlags(issues.NewCollection(), opts); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	loaded := service.LoadIssues(ctx, client, repo, key)
	if loaded.FetchErr != nil && verbose {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgYellow).Sprint("warning:"), loaded.FetchErr)
	}
	coll, err := applySortFlags(loaded, opts)
	if err != nil {
		return err
	}

	width := outputWidth(out, opts.width)
	table := termui.NewTable(lipgloss.NewRenderer(out), cfg.MaxTitleLength)
	_, err = fmt.Fprintln(out, table.Render(coll, termui.LayoutFor(width), width))
	return err
}

// applySortFlags applies --sort then --direction to coll. It also
// validates the flags before any request is made.
func applySortFlags(coll issues.Collection, opts *listOptions) (issues.Collection, error) {
	if opts.sort != "" {
		column, err := domain.ParseColumn(opts.sort)
		if err != nil {
			return coll, err
		}
		coll = coll.SelectColumn(column)
	}
	if opts.direction != "" {
		direction, err := domain.ParseDirection(opts.direction)
		if err != nil {
			return coll, err
		}
		coll = coll.SelectDirection(direction)
	}
	return coll, nil
}

// outputWidth returns the explicit width, the terminal width when out is
// a terminal, or 0 (wide layout) otherwise.
func outputWidth(out io.Writer, explicit int) int {
	if explicit > 0 {
		return explicit
	}
	f, ok := out.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// discardLogger drops log messages where stderr output is unwanted.
type discardLogger struct{}

func (discardLogger) Printf(format string, v ...interface{}) {}
