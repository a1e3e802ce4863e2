package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ginkida/toolguard"
)

var (
	approvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	deniedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	riskStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	detailStyle   = lipgloss.NewStyle().Faint(true)
)

// NewCheckCmd creates the "check" command for shell commands.
func NewCheckCmd() *cobra.Command {
	var agentName string
	var subagent bool

	cmd := &cobra.Command{
		Use:   "check [command...]",
		Short: "Evaluate a shell command against the active policy",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller := toolguard.TopLevel()
			if subagent {
				caller = toolguard.Delegated(agentName)
			}
			command := strings.Join(args, " ")
			decision := buildEngine().Authorize(toolguard.BashRequest(command, caller))
			return printDecision(cmd, decision)
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "", "Delegated agent name")
	cmd.Flags().BoolVar(&subagent, "subagent", false, "Evaluate as a delegated sub-agent request")

	return cmd
}

// NewCheckPathCmd creates the "check-path" command for file paths.
func NewCheckPathCmd() *cobra.Command {
	var agentName string
	var subagent bool
	var op string

	cmd := &cobra.Command{
		Use:   "check-path <path>",
		Short: "Evaluate a file path against the active policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller := toolguard.TopLevel()
			if subagent {
				caller = toolguard.Delegated(agentName)
			}

			var req toolguard.Request
			switch op {
			case "read":
				req = toolguard.ReadRequest(args[0], caller)
			case "write":
				req = toolguard.WriteRequest(args[0], caller)
			case "edit":
				req = toolguard.EditRequest(args[0], caller)
			default:
				return fmt.Errorf("unknown operation %q (read|write|edit)", op)
			}

			return printDecision(cmd, buildEngine().Authorize(req))
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "", "Delegated agent name")
	cmd.Flags().BoolVar(&subagent, "subagent", false, "Evaluate as a delegated sub-agent request")
	cmd.Flags().StringVar(&op, "op", "read", "Path operation (read|write|edit)")

	return cmd
}

func printDecision(cmd *cobra.Command, decision toolguard.Decision) error {
	out := cmd.OutOrStdout()

	if decision.Approved {
		fmt.Fprintln(out, approvedStyle.Render("APPROVED"))
	} else {
		fmt.Fprintln(out, deniedStyle.Render("DENIED"))
	}
	fmt.Fprintf(out, "reason: %s\n", decision.Reason)
	if decision.SecurityRisk {
		fmt.Fprintln(out, riskStyle.Render("security risk"))
	}
	if decision.MatchedPattern != "" {
		fmt.Fprintln(out, detailStyle.Render("pattern: "+decision.MatchedPattern))
	}

	if !decision.Approved {
		return fmt.Errorf("denied: %s", decision.Reason)
	}
	return nil
}
