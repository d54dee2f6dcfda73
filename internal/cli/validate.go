package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ifs-audit/actionplan/internal/audit"
	"github.com/ifs-audit/actionplan/internal/codec"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <package.ifsaudit>",
		Short: "Check a package without opening it",
		Long: `Check that a package file decodes and satisfies the document
schema and invariants, without touching the working draft.

Example:
  ifsaudit validate COID-4711_IFS_ActionPlan_20260829_v3.ifsaudit`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

type validateSummary struct {
	File     string `json:"file"`
	COID     string `json:"coid"`
	Version  int    `json:"version"`
	Status   string `json:"status"`
	Findings int    `json:"findings"`
	Evidence int    `json:"evidence"`
}

func (s validateSummary) String() string {
	return fmt.Sprintf("%s: valid package, %s v%d (%s), %d findings, %d attachments",
		s.File, s.COID, s.Version, s.Status, s.Findings, s.Evidence)
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	payload, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("cannot read %s", path), err)
	}

	doc, err := codec.Decode(string(payload))
	if err != nil {
		_ = out.Error("CORRUPT_PACKAGE", "package could not be decoded", err.Error())
		return WrapExitError(ExitFailure, "corrupt package", err)
	}
	if err := audit.Validate(doc); err != nil {
		_ = out.Error("CORRUPT_PACKAGE", "package failed validation", err.Error())
		return WrapExitError(ExitFailure, "invalid package", err)
	}

	return out.Success(validateSummary{
		File:     path,
		COID:     doc.Metadata.COID,
		Version:  doc.Metadata.InternalVersion,
		Status:   string(doc.Metadata.Status),
		Findings: len(doc.Findings),
		Evidence: len(doc.Evidence),
	})
}
