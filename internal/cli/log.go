package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ifs-audit/actionplan/internal/audit"
)

// NewLogCommand creates the log command.
func NewLogCommand(opts *RootOptions) *cobra.Command {
	var findingID string

	cmd := &cobra.Command{
		Use:           "log",
		Short:         "Show the document activity log, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, findingID, cmd)
		},
	}

	cmd.Flags().StringVar(&findingID, "finding", "", "only entries for one finding")

	return cmd
}

type logListing struct {
	Entries []audit.LogEntry `json:"entries"`
}

func (l logListing) String() string {
	if len(l.Entries) == 0 {
		return "no log entries"
	}
	var b strings.Builder
	for _, e := range l.Entries {
		fmt.Fprintf(&b, "%s  %-14s %s (%s)", e.Timestamp, e.Event, e.User.Name, e.User.Role)
		if e.FindingID != "" {
			fmt.Fprintf(&b, "  finding=%s", e.FindingID)
		}
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s=%q", k, e.Details[k])
		}
		fmt.Fprintln(&b)
	}
	return strings.TrimRight(b.String(), "\n")
}

func runLog(opts *RootOptions, findingID string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	draft, err := LoadDraft(opts.Draft)
	if err != nil {
		return err
	}

	entries := make([]audit.LogEntry, 0, len(draft.Document.Log))
	for _, e := range draft.Document.Log {
		if findingID != "" && e.FindingID != findingID {
			continue
		}
		entries = append(entries, e)
	}

	// Newest first; ties keep append order, so entries from the same
	// instant still read in the order they happened.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})

	return out.Success(logListing{Entries: entries})
}
