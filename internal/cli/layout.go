package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storymap/internal/layout"
	"github.com/roach88/storymap/internal/viewstate"
	"github.com/roach88/storymap/internal/workspace"
)

// NewLayoutCommand creates the layout command.
func NewLayoutCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		policy    string
		statePath string
	)

	cmd := &cobra.Command{
		Use:   "layout <workspace>",
		Short: "Compute node positions for a workspace",
		Long: `Load a workspace, resolve its relationships, and print the computed
positions under the chosen layout policy.

With --state, saved positions and narrative order from a view-state
database override the computed layout, exactly as an editing session
would see them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(rootOpts, args[0], policy, statePath, cmd)
		},
	}

	cmd.Flags().StringVar(&policy, "policy", string(layout.PolicyLayered), "layout policy (layered|masonry)")
	cmd.Flags().StringVar(&statePath, "state", "", "view-state database path")

	return cmd
}

func runLayout(opts *RootOptions, dir, policy, statePath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	p := layout.Policy(policy)
	if p != layout.PolicyLayered && p != layout.PolicyMasonry {
		formatter.Error(ErrCodeWorkspace, fmt.Sprintf("unknown policy %q", policy), nil)
		return NewExitError(ExitCommandError, "unknown layout policy")
	}

	cfg := workspace.Config{Workspace: dir, Policy: p}
	if statePath != "" {
		kv, err := viewstate.OpenSQLite(statePath)
		if err != nil {
			formatter.Error(ErrCodePersist, err.Error(), nil)
			return WrapExitError(ExitCommandError, "opening view state", err)
		}
		defer kv.Close()
		cfg.KV = kv
	}

	sess := workspace.New(cfg)
	if err := sess.Load(cmd.Context()); err != nil {
		formatter.Error(ErrCodeWorkspace, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading workspace", err)
	}

	snap := sess.Snapshot()
	formatter.VerboseLog("Session %s: %d node(s), extent %.0fx%.0f",
		snap.SessionID, len(snap.Nodes), snap.Extent.Width, snap.Extent.Height)

	var b strings.Builder
	for _, n := range snap.Nodes {
		fmt.Fprintf(&b, "%-14s (%6.0f,%6.0f) %3.0fx%-3.0f %s\n",
			n.ID, n.Position.X, n.Position.Y, n.Size.Width, n.Size.Height, n.Type)
	}
	fmt.Fprintf(&b, "extent %.0fx%.0f\n", snap.Extent.Width, snap.Extent.Height)
	return formatter.SuccessText(b.String(), snap)
}
