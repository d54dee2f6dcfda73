package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ifs-audit/actionplan/internal/engine"
)

// NewEditCommand creates the edit command.
func NewEditCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <finding-id> <field> <value>",
		Short: "Set one finding field in the draft",
		Long: fmt.Sprintf(`Set one finding field in the working draft.

The field must be one the acting role owns and the document status must
allow the edit. Setting the current value again changes nothing and
logs nothing.

Editable fields:
  %s

Example:
  ifsaudit edit 1.2.3 siteCorrection "Cold store seal replaced" --role Site`,
			editableFieldsList()),
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, args[0], args[1], args[2], cmd)
		},
	}

	return cmd
}

func editableFieldsList() string {
	fields := engine.EditableFields()
	sort.Strings(fields)
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ", "
		}
		out += f
	}
	return out
}

type editSummary struct {
	FindingID string `json:"findingId"`
	Field     string `json:"field"`
	Changed   bool   `json:"changed"`
}

func (s editSummary) String() string {
	if !s.Changed {
		return fmt.Sprintf("%s %s unchanged", s.FindingID, s.Field)
	}
	return fmt.Sprintf("%s %s updated", s.FindingID, s.Field)
}

func runEdit(opts *RootOptions, findingID, field, value string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	actor, err := opts.actor()
	if err != nil {
		return err
	}
	draft, err := LoadDraft(opts.Draft)
	if err != nil {
		return err
	}

	changed, err := opts.engine().ApplyFieldEdit(draft.Document, actor, findingID, field, value)
	if err != nil {
		return workflowExit(out, err)
	}

	if changed {
		if err := SaveDraft(opts.Draft, draft); err != nil {
			return WrapExitError(ExitCommandError, "cannot save draft", err)
		}
	}

	return out.Success(editSummary{FindingID: findingID, Field: field, Changed: changed})
}
