package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build information, set with -ldflags "-X".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// VersionCmd returns the "version" command.
func VersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including commit hash and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "repo-issues %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "repo-issues %s\n", Version)
			}
		},
	}
	return cmd
}
