package cli

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ifs-audit/actionplan/internal/engine"
)

// NewEvidenceCommand creates the evidence command group.
func NewEvidenceCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evidence",
		Short: "Attach, remove, or extract evidence files",
	}

	cmd.AddCommand(newEvidenceAddCommand(opts))
	cmd.AddCommand(newEvidenceRemoveCommand(opts))
	cmd.AddCommand(newEvidenceViewCommand(opts))

	return cmd
}

func newEvidenceAddCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <finding-id> <file>",
		Short: "Attach a file to a finding",
		Long: `Attach a file to a finding.

The file travels inside the package, so a per-file size ceiling
applies. The attachment is owned by the acting user; only they can
remove it later.

Example:
  ifsaudit evidence add 1.2.3 seal-invoice.pdf --role Site`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvidenceAdd(opts, args[0], args[1], cmd)
		},
	}

	return cmd
}

type evidenceSummary struct {
	FindingID  string `json:"findingId"`
	EvidenceID string `json:"proofId"`
	Filename   string `json:"filename"`
	Bytes      int    `json:"bytes,omitempty"`
}

func (s evidenceSummary) String() string {
	if s.Bytes > 0 {
		return fmt.Sprintf("attached %s (%d bytes) to %s as %s", s.Filename, s.Bytes, s.FindingID, s.EvidenceID)
	}
	return fmt.Sprintf("removed %s from %s", s.Filename, s.FindingID)
}

func runEvidenceAdd(opts *RootOptions, findingID, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	actor, err := opts.actor()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("cannot read %s", path), err)
	}
	draft, err := LoadDraft(opts.Draft)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	ev, err := opts.engine().AddEvidence(draft.Document, actor, findingID, name, detectMime(name, data), data)
	if err != nil {
		return workflowExit(out, err)
	}
	if err := SaveDraft(opts.Draft, draft); err != nil {
		return WrapExitError(ExitCommandError, "cannot save draft", err)
	}
	return out.Success(evidenceSummary{
		FindingID:  findingID,
		EvidenceID: ev.ID,
		Filename:   name,
		Bytes:      len(data),
	})
}

// detectMime prefers the filename extension and falls back to content
// sniffing.
func detectMime(name string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}

func newEvidenceRemoveCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "remove <proof-id>",
		Short:         "Remove an attachment you added",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvidenceRemove(opts, args[0], cmd)
		},
	}

	return cmd
}

func runEvidenceRemove(opts *RootOptions, evidenceID string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	actor, err := opts.actor()
	if err != nil {
		return err
	}
	draft, err := LoadDraft(opts.Draft)
	if err != nil {
		return err
	}

	var filename, findingID string
	for _, ev := range draft.Document.Evidence {
		if ev.ID == evidenceID {
			filename, findingID = ev.Filename, ev.FindingID
			break
		}
	}

	if err := opts.engine().RemoveEvidence(draft.Document, actor, evidenceID); err != nil {
		return workflowExit(out, err)
	}
	if err := SaveDraft(opts.Draft, draft); err != nil {
		return WrapExitError(ExitCommandError, "cannot save draft", err)
	}
	return out.Success(evidenceSummary{FindingID: findingID, EvidenceID: evidenceID, Filename: filename})
}

func newEvidenceViewCommand(opts *RootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:           "view <proof-id>",
		Short:         "Extract an attachment to a local file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvidenceView(opts, args[0], outPath, cmd)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "output path (defaults to the original filename)")

	return cmd
}

func runEvidenceView(opts *RootOptions, evidenceID, outPath string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	draft, err := LoadDraft(opts.Draft)
	if err != nil {
		return err
	}

	for _, ev := range draft.Document.Evidence {
		if ev.ID != evidenceID {
			continue
		}
		data, err := engine.DecodeEvidence(ev)
		if err != nil {
			return WrapExitError(ExitFailure, "corrupt attachment", err)
		}
		if outPath == "" {
			outPath = ev.Filename
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("cannot write %s", outPath), err)
		}
		return out.Success(fmt.Sprintf("wrote %s (%d bytes)", outPath, len(data)))
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("unknown evidence %q", evidenceID))
}
