package commands

import (
	"fmt"
	"path/filepath"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/cobra"

	"github.com/ginkida/toolguard/policy"
)

// NewPolicyCmd creates the "policy" command group.
func NewPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the active authorization policy",
	}

	cmd.AddCommand(
		newPolicyShowCmd(),
		newPolicyWhichCmd(),
	)

	return cmd
}

func newPolicyShowCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective policy after cascade resolution",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := policy.NewStore(projectDir, packagedDir)
			doc, err := store.Load(false)
			if err != nil {
				return err
			}

			data, err := doc.Encode()
			if err != nil {
				return err
			}

			if plain {
				fmt.Fprint(cmd.OutOrStdout(), string(data))
				return nil
			}
			return quick.Highlight(cmd.OutOrStdout(), string(data), "yaml", "terminal256", "monokai")
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Disable syntax highlighting")
	return cmd
}

func newPolicyWhichCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "which",
		Short: "Show which cascade candidate won",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := policy.NewStore(projectDir, packagedDir)
			loc := store.Resolve()

			out := cmd.OutOrStdout()
			for _, candidate := range store.Candidates() {
				marker := " "
				if abs, err := filepath.Abs(candidate); err == nil && !loc.Builtin && abs == loc.Path {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, candidate)
			}
			if loc.Builtin {
				fmt.Fprintln(out, "* <builtin fallback policy>")
			}
			return nil
		},
	}
}
