// Package commands implements the guardctl CLI, a dry-run inspection
// surface for the authorization engine. It never executes anything: it
// evaluates candidates exactly the way the embedded engine would and
// shows the verdict.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/ginkida/toolguard"
)

var (
	projectDir  string
	packagedDir string
	modeFlag    string
)

// NewRootCmd creates the guardctl root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "guardctl",
		Short:         "Inspect tool-call authorization decisions",
		Long:          `guardctl evaluates shell commands and file paths against the active authorization policy and reports the decision the engine would make, without executing anything.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&projectDir, "project", ".", "Project directory holding the .toolguard policy override")
	cmd.PersistentFlags().StringVar(&packagedDir, "packaged-dir", "", "Directory holding the packaged default policy")
	cmd.PersistentFlags().StringVar(&modeFlag, "mode", "everywhere", "Auto-approval mode (everywhere|subagent_only|disabled)")

	cmd.AddCommand(
		NewCheckCmd(),
		NewCheckPathCmd(),
		NewPolicyCmd(),
	)

	return cmd
}

func buildEngine() *toolguard.Engine {
	cfg := toolguard.Config{
		Mode:        toolguard.ParseMode(modeFlag),
		ProjectDir:  projectDir,
		PackagedDir: packagedDir,
	}
	return toolguard.NewEngine(cfg)
}
