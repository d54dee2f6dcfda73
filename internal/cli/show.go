package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ifs-audit/actionplan/internal/audit"
	"github.com/ifs-audit/actionplan/internal/readtrack"
)

// NewShowCommand creates the show command.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [finding-id]",
		Short: "Show the draft, or one finding in full",
		Long: `Show the working draft.

Without arguments, prints the document header and the finding list,
marking findings not yet read at the current version. With a finding
id, prints that finding in full, including the comments visible to the
acting role, and marks it read.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runShow(opts, id, cmd)
		},
	}

	return cmd
}

type findingLine struct {
	ID           string `json:"id"`
	ActionStatus string `json:"actionStatus"`
	Requirement  string `json:"requirementText"`
	Unread       bool   `json:"unread,omitempty"`
}

type showSummary struct {
	COID     string        `json:"coid"`
	SiteName string        `json:"siteName"`
	Version  int           `json:"version"`
	Status   string        `json:"status"`
	Findings []findingLine `json:"findings"`
}

func (s showSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s (v%d, %s)\n", s.COID, s.SiteName, s.Version, s.Status)
	for _, f := range s.Findings {
		mark := " "
		if f.Unread {
			mark = "*"
		}
		req := f.Requirement
		if len(req) > 60 {
			req = req[:60] + "..."
		}
		fmt.Fprintf(&b, "%s %-12s [%s] %s\n", mark, f.ID, f.ActionStatus, req)
	}
	return strings.TrimRight(b.String(), "\n")
}

type findingDetail struct {
	Finding  *audit.Finding          `json:"finding"`
	Comments []audit.Comment         `json:"comments,omitempty"`
	Evidence []evidenceLine          `json:"evidence,omitempty"`
	Reviewer []audit.ReviewerComment `json:"reviewerComments,omitempty"`
}

type evidenceLine struct {
	ID       string `json:"proofId"`
	Filename string `json:"filename"`
	AddedBy  string `json:"addedBy"`
}

func (d findingDetail) String() string {
	var b strings.Builder
	f := d.Finding
	fmt.Fprintf(&b, "%s [%s]\n", f.ID, f.ActionStatus)
	fmt.Fprintf(&b, "requirement: %s\n", f.RequirementText)
	if f.AuditorEvaluation != "" {
		fmt.Fprintf(&b, "evaluation:  %s\n", f.AuditorEvaluation)
	}
	if f.InitialScore != "" {
		fmt.Fprintf(&b, "score:       %s\n", f.InitialScore)
	}
	writeAttributed(&b, "correction", f.SiteCorrection)
	writeAttributed(&b, "corrective action", f.SiteCorrectiveAction)
	if f.SiteResponsible != "" {
		fmt.Fprintf(&b, "responsible: %s\n", f.SiteResponsible)
	}
	if f.SitePlannedDate != "" {
		fmt.Fprintf(&b, "planned:     %s\n", f.SitePlannedDate)
	}
	if f.SiteActualDate != "" {
		fmt.Fprintf(&b, "completed:   %s\n", f.SiteActualDate)
	}
	writeAttributed(&b, "effectiveness check", f.AuditorEffectivenessCheck)
	for _, c := range d.Comments {
		fmt.Fprintf(&b, "comment (%s %s -> %s): %s\n", c.Author.Role, c.Author.Name, c.RecipientRole, c.Text)
	}
	for _, rc := range d.Reviewer {
		fmt.Fprintf(&b, "reviewer note (%s): %s\n", rc.User.Name, rc.Text)
	}
	for _, ev := range d.Evidence {
		fmt.Fprintf(&b, "evidence %s: %s (added by %s)\n", ev.ID, ev.Filename, ev.AddedBy)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeAttributed(b *strings.Builder, label string, at audit.AttributedText) {
	if at.Text == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s", label, at.Text)
	if at.LastEditBy != "" {
		fmt.Fprintf(b, " (%s, %s)", at.LastEditBy, at.Timestamp)
	}
	fmt.Fprintln(b)
}

func runShow(opts *RootOptions, findingID string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	actor, err := opts.actor()
	if err != nil {
		return err
	}
	draft, err := LoadDraft(opts.Draft)
	if err != nil {
		return err
	}
	doc := draft.Document

	store := openTracking(opts, out)
	if store != nil {
		defer store.Close()
	}

	if findingID == "" {
		return showAll(out, doc, store)
	}

	f := doc.Finding(findingID)
	if f == nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown finding %q", findingID))
	}

	detail := findingDetail{
		Finding:  f,
		Comments: doc.VisibleComments(actor.Role, findingID),
	}
	if audit.ReviewerNotesVisibleTo(actor.Role) {
		detail.Reviewer = f.ReviewerComments
	}
	for _, ev := range doc.FindingEvidence(findingID) {
		detail.Evidence = append(detail.Evidence, evidenceLine{
			ID: ev.ID, Filename: ev.Filename, AddedBy: ev.AddedBy.Name,
		})
	}

	if store != nil {
		if err := store.MarkRead(doc.Metadata.InternalVersion, findingID); err != nil {
			out.VerboseLog("read tracking unavailable: %v", err)
		}
	}

	return out.Success(detail)
}

func showAll(out *OutputFormatter, doc *audit.Document, store *readtrack.Store) error {
	unread := map[string]bool{}
	if store != nil {
		ids, err := store.UnreadFindings(doc)
		if err != nil {
			out.VerboseLog("read tracking unavailable: %v", err)
		}
		for _, id := range ids {
			unread[id] = true
		}
	}

	s := showSummary{
		COID:     doc.Metadata.COID,
		SiteName: doc.Metadata.SiteName,
		Version:  doc.Metadata.InternalVersion,
		Status:   string(doc.Metadata.Status),
	}
	for i := range doc.Findings {
		f := &doc.Findings[i]
		s.Findings = append(s.Findings, findingLine{
			ID:           f.ID,
			ActionStatus: string(f.ActionStatus),
			Requirement:  f.RequirementText,
			Unread:       unread[f.ID],
		})
	}
	return out.Success(s)
}

// openTracking opens the local read-tracking store, or returns nil when
// tracking is disabled or unavailable.
func openTracking(opts *RootOptions, out *OutputFormatter) *readtrack.Store {
	if opts.cfg == nil || opts.cfg.ReadTrackDB == "" {
		return nil
	}
	store, err := readtrack.Open(opts.cfg.ReadTrackDB)
	if err != nil {
		out.VerboseLog("read tracking unavailable: %v", err)
		return nil
	}
	return store
}
