package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ifs-audit/actionplan/internal/audit"
	"github.com/ifs-audit/actionplan/internal/readtrack"
)

// NewLoadCommand creates the load command.
func NewLoadCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <package.ifsaudit>",
		Short: "Open a received package as the working draft",
		Long: `Open a received package as the working draft.

Decodes and validates the package for the acting role. A site user can
only open packages still awaiting site input; auditor and reviewer can
open anything, read-only once finalized.

Example:
  ifsaudit load COID-4711_IFS_ActionPlan_20260829_v3.ifsaudit --role Site`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	return cmd
}

type loadSummary struct {
	Draft    string `json:"draft"`
	COID     string `json:"coid"`
	Version  int    `json:"version"`
	Status   string `json:"status"`
	Findings int    `json:"findings"`
	Warning  string `json:"warning,omitempty"`
}

func (s loadSummary) String() string {
	msg := fmt.Sprintf("loaded %s v%d (%s), %d findings, draft at %s",
		s.COID, s.Version, s.Status, s.Findings, s.Draft)
	if s.Warning != "" {
		msg += "\nwarning: " + s.Warning
	}
	return msg
}

func runLoad(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	actor, err := opts.actor()
	if err != nil {
		return err
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("cannot read %s", path), err)
	}

	doc, err := opts.engine().Load(string(payload), actor, path)
	if err != nil {
		return workflowExit(out, err)
	}

	warning := observeLineage(opts, out, doc)

	if err := SaveDraft(opts.Draft, &Draft{SourceFile: path, Document: doc}); err != nil {
		return WrapExitError(ExitCommandError, "cannot save draft", err)
	}

	return out.Success(loadSummary{
		Draft:    opts.Draft,
		COID:     doc.Metadata.COID,
		Version:  doc.Metadata.InternalVersion,
		Status:   string(doc.Metadata.Status),
		Findings: len(doc.Findings),
		Warning:  warning,
	})
}

// observeLineage records the load in the local tracking database and
// returns any stale-copy warning. Tracking failures are reported in
// verbose mode only; they never block a load.
func observeLineage(opts *RootOptions, out *OutputFormatter, doc *audit.Document) string {
	if opts.cfg == nil || opts.cfg.ReadTrackDB == "" {
		return ""
	}
	store, err := readtrack.Open(opts.cfg.ReadTrackDB)
	if err != nil {
		out.VerboseLog("read tracking unavailable: %v", err)
		return ""
	}
	defer store.Close()

	fp, err := audit.Fingerprint(doc)
	if err != nil {
		out.VerboseLog("cannot fingerprint package: %v", err)
		return ""
	}
	warning, err := store.Observe(doc, fp)
	if err != nil {
		out.VerboseLog("read tracking unavailable: %v", err)
		return ""
	}
	return warning
}
