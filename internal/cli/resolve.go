package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storymap/internal/graph"
	"github.com/roach88/storymap/internal/record"
	"github.com/roach88/storymap/internal/resolver"
	"github.com/roach88/storymap/internal/specstore"
)

// ResolveEdge is one resolved relationship in resolve output.
type ResolveEdge struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

// ResolveNotice is one resolution notice in resolve output.
type ResolveNotice struct {
	Code    string `json:"code"`
	ChildID string `json:"child_id"`
	Message string `json:"message"`
}

// ResolveResult holds the resolve command output.
type ResolveResult struct {
	Edges   []ResolveEdge       `json:"edges"`
	Orphans map[string][]string `json:"orphans,omitempty"`
	Notices []ResolveNotice     `json:"notices,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	var lowConfidence bool

	cmd := &cobra.Command{
		Use:   "resolve <workspace>",
		Short: "Resolve record relationships into edges and orphans",
		Long: `Resolve the reference fields of every record in a workspace into
typed edges, reporting records no parent could be found for.

With --low-confidence, enablers that name no capability are distributed
round-robin across the capability layer and flagged in the notices.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args[0], lowConfidence, cmd)
		},
	}

	cmd.Flags().BoolVar(&lowConfidence, "low-confidence", false, "round-robin unmatched enablers across capabilities")

	return cmd
}

func runResolve(opts *RootOptions, workspace string, lowConfidence bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loader := record.NewLoader(specstore.NewFileStore(), slog.Default())
	set, err := loader.Load(cmd.Context(), workspace)
	if err != nil {
		formatter.Error(ErrCodeWorkspace, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading workspace", err)
	}

	res := resolver.Resolve(set, resolver.Options{RoundRobin: lowConfidence})

	result := ResolveResult{}
	for _, e := range res.Edges {
		result.Edges = append(result.Edges, ResolveEdge{
			ID:   e.ID,
			From: e.From,
			To:   e.To,
			Kind: string(e.Kind),
		})
	}
	for t, ids := range res.Orphans {
		if result.Orphans == nil {
			result.Orphans = map[string][]string{}
		}
		result.Orphans[string(t)] = ids
	}
	for _, n := range res.Notices {
		result.Notices = append(result.Notices, ResolveNotice{
			Code:    string(n.Code),
			ChildID: n.ChildID,
			Message: n.Message,
		})
	}

	var b strings.Builder
	for _, e := range result.Edges {
		fmt.Fprintf(&b, "%-32s %s\n", e.ID, e.Kind)
	}
	for _, t := range []graph.NodeType{graph.Capability, graph.Enabler, graph.TestScenario} {
		for _, id := range result.Orphans[string(t)] {
			fmt.Fprintf(&b, "orphan %-25s %s\n", id, t)
		}
	}
	for _, n := range result.Notices {
		fmt.Fprintf(&b, "notice [%s] %s: %s\n", n.Code, n.ChildID, n.Message)
	}
	formatter.VerboseLog("Resolved %d edge(s), %d orphan layer(s)", len(result.Edges), len(result.Orphans))

	if err := formatter.SuccessText(b.String(), result); err != nil {
		return err
	}
	if len(result.Orphans) > 0 {
		return NewExitError(ExitFailure, "workspace has orphaned records")
	}
	return nil
}
