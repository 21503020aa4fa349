package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vilaca/repo-issues/internal/service"
)

// KeyCmd returns the "key" command managing the saved API key.
func KeyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the saved GitHub API key",
		Long: `Manage the GitHub API key used when no GITHUB_TOKEN is configured.

The key is stored as YAML in the key_file location (by default under the
user configuration directory) with owner-only permissions.`,
	}

	cmd.AddCommand(keySaveCmd(a))
	cmd.AddCommand(keyShowCmd(a))
	cmd.AddCommand(keyClearCmd(a))

	return cmd
}

func (a *app) keyStore() (*service.KeyStore, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	return service.NewKeyStore(cfg.KeyFile, discardLogger{}), nil
}

func keySaveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save [key]",
		Short: "Save an API key",
		Long: `Save an API key. Without an argument the key is read from standard
input, without echo when it is a terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.keyStore()
			if err != nil {
				return err
			}

			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				key, err = readKey(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			if err := store.Save(key); err != nil {
				if errors.Is(err, service.ErrEmptyKey) {
					return err
				}
				return fmt.Errorf("failed to save key: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s API key saved to %s\n", color.New(color.FgGreen).Sprint("✓"), store.Path())
			return nil
		},
	}
}

func keyShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved API key, masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.keyStore()
			if err != nil {
				return err
			}
			key, err := store.Load()
			if err != nil {
				return err
			}
			if key == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s no key saved at %s\n", color.New(color.FgYellow).Sprint("!"), store.Path())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", maskKey(key), store.Path())
			return nil
		},
	}
}

func keyClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the saved API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.keyStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s API key removed\n", color.New(color.FgGreen).Sprint("✓"))
			return nil
		},
	}
}

// readKey reads one line from in. Terminal input is read without echo.
func readKey(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprint(prompt, "GitHub API key: ")
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// maskKey keeps the last four characters of key visible.
func maskKey(key string) string {
	runes := []rune(key)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}
