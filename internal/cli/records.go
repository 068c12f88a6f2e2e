package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storymap/internal/record"
	"github.com/roach88/storymap/internal/specstore"
)

// RecordSummary is one parsed record in records output.
type RecordSummary struct {
	NodeID string `json:"node_id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
	File   string `json:"file"`
}

// RecordsResult holds the records command output.
type RecordsResult struct {
	Count   int             `json:"count"`
	Records []RecordSummary `json:"records"`
}

// NewRecordsCommand creates the records command.
func NewRecordsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records <workspace>",
		Short: "List the parsed specification records in a workspace",
		Long: `List every record the loader accepts from a workspace directory.

Records that fail metadata validation are skipped with a warning, the
same way an interactive session skips them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecords(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runRecords(opts *RootOptions, workspace string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loader := record.NewLoader(specstore.NewFileStore(), slog.Default())
	set, err := loader.Load(cmd.Context(), workspace)
	if err != nil {
		formatter.Error(ErrCodeWorkspace, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading workspace", err)
	}

	result := RecordsResult{}
	for _, rec := range set.All() {
		result.Records = append(result.Records, RecordSummary{
			NodeID: rec.NodeID,
			Type:   string(rec.NodeType()),
			Name:   rec.DisplayName,
			Status: rec.Status,
			File:   rec.Source.Filename,
		})
	}
	result.Count = len(result.Records)
	formatter.VerboseLog("Loaded %d record(s) from %s", result.Count, workspace)

	var b strings.Builder
	for _, r := range result.Records {
		fmt.Fprintf(&b, "%-14s %-14s %s", r.NodeID, r.Type, r.Name)
		if r.Status != "" {
			fmt.Fprintf(&b, " [%s]", r.Status)
		}
		b.WriteByte('\n')
	}
	if result.Count == 0 {
		b.WriteString("no records\n")
	}
	return formatter.SuccessText(b.String(), result)
}

// newFormatter builds the per-command formatter, sending verbose logs to
// stderr so JSON output stays parseable.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
