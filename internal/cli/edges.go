package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/storymap/internal/graph"
	"github.com/roach88/storymap/internal/viewstate"
	"github.com/roach88/storymap/internal/workspace"
)

// EdgeResult holds the edges command output.
type EdgeResult struct {
	Edge    *graph.Edge `json:"edge,omitempty"`
	Removed string      `json:"removed,omitempty"`
	Notices []string    `json:"notices,omitempty"`
}

// NewEdgesCommand creates the edges command group.
func NewEdgesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edges",
		Short: "Rewire record relationships from the command line",
	}

	cmd.AddCommand(newEdgesSetCommand(rootOpts))
	cmd.AddCommand(newEdgesClearCommand(rootOpts))

	return cmd
}

func newEdgesSetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <workspace> <child-id> <parent-id>",
		Short: "Connect a child record to a parent",
		Long: `Add an edge from a child record to a parent record and write the
child's reference field to its backing file immediately.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdgesSet(rootOpts, args[0], args[1], args[2], cmd)
		},
	}
	return cmd
}

func newEdgesClearCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear <workspace> <edge-id>",
		Short: "Disconnect an edge and clear the child's reference field",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdgesClear(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runEdgesSet(opts *RootOptions, dir, childID, parentID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sess, err := loadSession(dir, cmd)
	if err != nil {
		formatter.Error(ErrCodeWorkspace, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading workspace", err)
	}

	e, err := sess.Connect(childID, parentID)
	if err != nil {
		formatter.Error(ErrCodeMutation, err.Error(), nil)
		return WrapExitError(ExitFailure, "connecting records", err)
	}

	result := EdgeResult{Edge: &e, Notices: sess.Snapshot().Notices}
	if err := reportPersistence(formatter, result.Notices); err != nil {
		return err
	}
	return formatter.SuccessText(fmt.Sprintf("%s (%s)\n", e.ID, e.Kind), result)
}

func runEdgesClear(opts *RootOptions, dir, edgeID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sess, err := loadSession(dir, cmd)
	if err != nil {
		formatter.Error(ErrCodeWorkspace, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading workspace", err)
	}

	if err := sess.Disconnect(edgeID); err != nil {
		formatter.Error(ErrCodeMutation, err.Error(), nil)
		return WrapExitError(ExitFailure, "disconnecting records", err)
	}

	result := EdgeResult{Removed: edgeID, Notices: sess.Snapshot().Notices}
	if err := reportPersistence(formatter, result.Notices); err != nil {
		return err
	}
	return formatter.SuccessText(fmt.Sprintf("removed %s\n", edgeID), result)
}

func loadSession(dir string, cmd *cobra.Command) (*workspace.Session, error) {
	sess := workspace.New(workspace.Config{
		Workspace: dir,
		KV:        viewstate.NewMemKV(),
	})
	if err := sess.Load(cmd.Context()); err != nil {
		return nil, err
	}
	// Drain load-time notices so later snapshots carry only the
	// mutation's own.
	sess.Snapshot()
	return sess, nil
}

// reportPersistence turns synchronizer notices into a failure exit: the
// in-memory mutation succeeded but the backing write did not.
func reportPersistence(formatter *OutputFormatter, notices []string) error {
	if len(notices) == 0 {
		return nil
	}
	formatter.Error(ErrCodePersist, notices[0], notices[1:])
	return NewExitError(ExitFailure, "backing write failed")
}
