package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vilaca/repo-issues/internal/api"
	"github.com/vilaca/repo-issues/internal/api/github"
	"github.com/vilaca/repo-issues/internal/config"
	"github.com/vilaca/repo-issues/internal/domain"
	"github.com/vilaca/repo-issues/internal/service"
)

// app carries state shared by the commands of one root.
type app struct {
	v       *viper.Viper
	cfgFile string
}

// NewRootCommand builds the repo-issues command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:   "repo-issues",
		Short: "Browse and sort the issues of your GitHub repositories",
		Long: `repo-issues lists the issues of a GitHub repository and lets you sort
them by assignee, title, creation time or last update.

Run it as a web server, print a table, or browse interactively.

Example:
  repo-issues list --repo octocat/hello-world --sort title --direction asc`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is .repo-issues.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	_ = a.v.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(ServeCmd(a))
	rootCmd.AddCommand(ListCmd(a))
	rootCmd.AddCommand(BrowseCmd(a))
	rootCmd.AddCommand(KeyCmd(a))
	rootCmd.AddCommand(VersionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		a.v.AddConfigPath(cwd)
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".repo-issues")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		return nil
	}
	if a.v.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", a.v.ConfigFileUsed())
	}
	return nil
}

func (a *app) config() (*config.Config, error) {
	cfg, err := config.Load(a.v)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func (a *app) verbose() bool {
	return a.v.GetBool("verbose")
}

// newGitHubClient creates the API client used by every command.
func newGitHubClient(cfg *config.Config) *github.Client {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}
	return github.NewClient(api.ClientConfig{
		BaseURL: cfg.GitHubURL,
		Token:   cfg.GitHubToken,
	}, httpClient)
}

// resolveKey picks the API key for a command: an explicit flag, then the
// configured token, then the key saved with `key save`.
func resolveKey(flagKey string, cfg *config.Config, store *service.KeyStore) (string, error) {
	if key := strings.TrimSpace(flagKey); key != "" {
		return key, nil
	}
	if cfg.HasGitHubToken() {
		return cfg.GitHubToken, nil
	}
	key, err := store.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load saved key: %w", err)
	}
	return key, nil
}

// parseRepository parses an owner/name argument.
func parseRepository(s string) (domain.Repository, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return domain.Repository{}, fmt.Errorf("invalid repository %q: expected owner/name", s)
	}
	return domain.Repository{Owner: owner, Name: name, FullName: owner + "/" + name}, nil
}
