package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ifs-audit/actionplan/internal/engine"
)

// NewExportCommand creates the export command.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the draft as a versioned package",
		Long: `Export the working draft as a package file to hand to the next
party.

The exported package carries the next internal version. A site or
reviewer export hands the document back to the auditor for review. The
draft only advances once the package file is safely on disk; a failed
export leaves the draft exactly as it was.

Example:
  ifsaudit export --role Site --name "M. Leroy"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, outDir, engine.ExportOptions{}, cmd)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write the package into")

	return cmd
}

type exportSummary struct {
	File    string `json:"file"`
	Version int    `json:"version"`
	Status  string `json:"status"`
	Bytes   int64  `json:"uncompressedBytes"`
	Warning string `json:"warning,omitempty"`
}

func (s exportSummary) String() string {
	msg := fmt.Sprintf("exported %s (v%d, %s)", s.File, s.Version, s.Status)
	if s.Warning != "" {
		msg += "\nwarning: " + s.Warning
	}
	return msg
}

func runExport(opts *RootOptions, outDir string, exportOpts engine.ExportOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	actor, err := opts.actor()
	if err != nil {
		return err
	}
	draft, err := LoadDraft(opts.Draft)
	if err != nil {
		return err
	}

	res, err := opts.engine().Export(draft.Document, actor, exportOpts)
	if err != nil {
		return workflowExit(out, err)
	}

	// The package file is written first; only then does the draft adopt
	// the advanced document. Order matters: a crash between the two
	// writes leaves a valid package and a stale draft, never the
	// reverse.
	target := filepath.Join(outDir, res.Filename)
	if err := os.WriteFile(target, []byte(res.Payload), 0o644); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("cannot write %s", target), err)
	}
	draft.Document = res.Doc
	if err := SaveDraft(opts.Draft, draft); err != nil {
		return WrapExitError(ExitCommandError, "package written but draft not updated", err)
	}

	return out.Success(exportSummary{
		File:    target,
		Version: res.Doc.Metadata.InternalVersion,
		Status:  string(res.Doc.Metadata.Status),
		Bytes:   res.UncompressedSize,
		Warning: res.SizeWarning,
	})
}

// NewFinalizeCommand creates the finalize command.
func NewFinalizeCommand(opts *RootOptions) *cobra.Command {
	var outDir string
	var yes bool

	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Close the action plan and export the final package",
		Long: `Close the action plan. Auditor only.

Finalization is permanent: no role can edit, comment, or attach
evidence afterwards. When findings are still open the command reports
the count and requires --yes to proceed.

Example:
  ifsaudit finalize --role Auditeur --name "A. Durand" --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFinalize(opts, outDir, yes, cmd)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write the package into")
	cmd.Flags().BoolVar(&yes, "yes", false, "finalize even with open findings")

	return cmd
}

func runFinalize(opts *RootOptions, outDir string, yes bool, cmd *cobra.Command) error {
	draft, err := LoadDraft(opts.Draft)
	if err != nil {
		return err
	}

	if open := engine.OpenItems(draft.Document); open > 0 && !yes {
		return NewExitError(ExitFailure,
			fmt.Sprintf("%d findings are still open; rerun with --yes to finalize anyway", open))
	}

	return runExport(opts, outDir, engine.ExportOptions{Finalize: true}, cmd)
}
