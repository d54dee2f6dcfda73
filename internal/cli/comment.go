package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ifs-audit/actionplan/internal/audit"
)

// NewCommentCommand creates the comment command group.
func NewCommentCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Exchange comments on a finding",
	}

	cmd.AddCommand(newCommentAddCommand(opts))
	cmd.AddCommand(newCommentReviewCommand(opts))
	cmd.AddCommand(newCommentListCommand(opts))

	return cmd
}

func newCommentAddCommand(opts *RootOptions) *cobra.Command {
	var recipient string

	cmd := &cobra.Command{
		Use:   "add <finding-id> <text>",
		Short: "Add a comment addressed to another role",
		Long: `Add a comment on a finding, addressed to another role.

Auditor and site use this channel; the site never sees what the
reviewer writes, so reviewer remarks go through 'comment review'.

Example:
  ifsaudit comment add 1.2.3 "Please attach the maintenance report" --to Site`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommentAdd(opts, args[0], args[1], recipient, cmd)
		},
	}

	cmd.Flags().StringVar(&recipient, "to", "", "recipient role (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runCommentAdd(opts *RootOptions, findingID, text, recipient string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	actor, err := opts.actor()
	if err != nil {
		return err
	}
	to, err := audit.ParseRole(recipient)
	if err != nil {
		return WrapExitError(ExitCommandError, "bad --to role", err)
	}
	draft, err := LoadDraft(opts.Draft)
	if err != nil {
		return err
	}

	c, err := opts.engine().AddComment(draft.Document, actor, findingID, to, text)
	if err != nil {
		return workflowExit(out, err)
	}
	if err := SaveDraft(opts.Draft, draft); err != nil {
		return WrapExitError(ExitCommandError, "cannot save draft", err)
	}
	return out.Success(commentSummary{FindingID: findingID, CommentID: c.ID})
}

func newCommentReviewCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "review <finding-id> <text>",
		Short:         "Add a reviewer note (never shown to the site)",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommentReview(opts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runCommentReview(opts *RootOptions, findingID, text string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	actor, err := opts.actor()
	if err != nil {
		return err
	}
	draft, err := LoadDraft(opts.Draft)
	if err != nil {
		return err
	}

	rc, err := opts.engine().AddReviewerComment(draft.Document, actor, findingID, text)
	if err != nil {
		return workflowExit(out, err)
	}
	if err := SaveDraft(opts.Draft, draft); err != nil {
		return WrapExitError(ExitCommandError, "cannot save draft", err)
	}
	return out.Success(commentSummary{FindingID: findingID, CommentID: rc.ID})
}

type commentSummary struct {
	FindingID string `json:"findingId"`
	CommentID string `json:"commentId"`
}

func (s commentSummary) String() string {
	return fmt.Sprintf("comment %s added on %s", s.CommentID, s.FindingID)
}

func newCommentListCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list <finding-id>",
		Short:         "List the comments visible to the acting role",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommentList(opts, args[0], cmd)
		},
	}

	return cmd
}

type commentList struct {
	FindingID string          `json:"findingId"`
	Comments  []audit.Comment `json:"comments"`
}

func (l commentList) String() string {
	if len(l.Comments) == 0 {
		return fmt.Sprintf("no comments on %s", l.FindingID)
	}
	out := ""
	for i, c := range l.Comments {
		if i > 0 {
			out += "\n"
		}
		out += fmt.Sprintf("[%s] %s (%s) -> %s: %s", c.Timestamp, c.Author.Name, c.Author.Role, c.RecipientRole, c.Text)
	}
	return out
}

func runCommentList(opts *RootOptions, findingID string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	actor, err := opts.actor()
	if err != nil {
		return err
	}
	draft, err := LoadDraft(opts.Draft)
	if err != nil {
		return err
	}
	if draft.Document.Finding(findingID) == nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown finding %q", findingID))
	}

	return out.Success(commentList{
		FindingID: findingID,
		Comments:  draft.Document.VisibleComments(actor.Role, findingID),
	})
}
