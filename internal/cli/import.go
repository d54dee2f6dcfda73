package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ifs-audit/actionplan/internal/engine"
	"github.com/ifs-audit/actionplan/internal/ingest"
)

// NewImportCommand creates the import command.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <spreadsheet.xlsx>",
		Short: "Start a new action plan from the audit spreadsheet",
		Long: `Start a new action plan from the audit portal spreadsheet.

Reads the first worksheet, extracts the audit metadata and finding
rows, and writes a fresh working draft. Auditor only.

Example:
  ifsaudit import COID-4711_findings.xlsx --name "A. Durand" --role Auditeur`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	return cmd
}

type importSummary struct {
	Draft    string `json:"draft"`
	COID     string `json:"coid"`
	SiteName string `json:"siteName"`
	Findings int    `json:"findings"`
	Skipped  int    `json:"skipped,omitempty"`
}

func (s importSummary) String() string {
	msg := fmt.Sprintf("imported %d findings for %s (%s) into %s", s.Findings, s.COID, s.SiteName, s.Draft)
	if s.Skipped > 0 {
		msg += fmt.Sprintf("; skipped %d rows with blank or duplicate ids", s.Skipped)
	}
	return msg
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	actor, err := opts.actor()
	if err != nil {
		return err
	}

	grid, err := ingest.LoadXLSX(path)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("cannot read %s", path), err)
	}

	doc, skipped, err := opts.engine().Import(grid, actor, path)
	if err != nil {
		return workflowExit(out, err)
	}

	if err := SaveDraft(opts.Draft, &Draft{SourceFile: path, Document: doc}); err != nil {
		return WrapExitError(ExitCommandError, "cannot save draft", err)
	}

	return out.Success(importSummary{
		Draft:    opts.Draft,
		COID:     doc.Metadata.COID,
		SiteName: doc.Metadata.SiteName,
		Findings: len(doc.Findings),
		Skipped:  skipped,
	})
}

// workflowExit renders an engine refusal and converts it to the
// workflow exit code. Non-workflow errors pass through untouched.
func workflowExit(out *OutputFormatter, err error) error {
	var we *engine.WorkflowError
	if !errors.As(err, &we) {
		return err
	}
	var details interface{}
	if we.FindingID != "" {
		details = map[string]string{"findingId": we.FindingID}
	}
	_ = out.Error(string(we.Code), we.Message, details)
	return &ExitError{Code: ExitFailure, Message: we.Message, Err: err}
}
