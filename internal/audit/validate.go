package audit

import "fmt"

// ValidationError describes the first structural problem found in a
// document, with the path of the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid document: %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks structural well-formedness of a document. It is run
// on every load, before any role or status rule is consulted. It does
// not mutate the document.
func Validate(d *Document) error {
	if d == nil {
		return invalid("document", "nil document")
	}
	m := d.Metadata
	if m.COID == "" {
		return invalid("metadata.coid", "missing organization id")
	}
	if m.SiteName == "" {
		return invalid("metadata.siteName", "missing site name")
	}
	if m.InternalVersion < 1 {
		return invalid("metadata.internalVersion", "must be >= 1, got %d", m.InternalVersion)
	}
	if !m.Status.Valid() {
		return invalid("metadata.status", "unknown status %q", m.Status)
	}
	if len(d.Findings) == 0 {
		return invalid("auditItems", "document has no findings")
	}

	seen := make(map[string]bool, len(d.Findings))
	for i := range d.Findings {
		f := &d.Findings[i]
		field := fmt.Sprintf("auditItems[%d]", i)
		if f.ID == "" {
			return invalid(field+".id", "blank finding id")
		}
		if seen[f.ID] {
			return invalid(field+".id", "duplicate finding id %q", f.ID)
		}
		seen[f.ID] = true
		if !f.ActionStatus.Valid() {
			return invalid(field+".actionStatus", "unknown action status %q", f.ActionStatus)
		}
		for j, rc := range f.ReviewerComments {
			if rc.ID == "" {
				return invalid(fmt.Sprintf("%s.reviewerComments[%d].commentId", field, j), "blank comment id")
			}
		}
	}

	for i, c := range d.Comments {
		field := fmt.Sprintf("comments[%d]", i)
		if c.ID == "" {
			return invalid(field+".commentId", "blank comment id")
		}
		if !seen[c.FindingID] {
			return invalid(field+".itemId", "references unknown finding %q", c.FindingID)
		}
		if !c.Author.Role.Valid() {
			return invalid(field+".author.role", "unknown role %q", c.Author.Role)
		}
	}

	for i, e := range d.Evidence {
		field := fmt.Sprintf("proofs[%d]", i)
		if e.ID == "" {
			return invalid(field+".proofId", "blank evidence id")
		}
		if !seen[e.FindingID] {
			return invalid(field+".itemId", "references unknown finding %q", e.FindingID)
		}
		if e.Filename == "" {
			return invalid(field+".filename", "blank filename")
		}
	}

	for i, l := range d.Log {
		field := fmt.Sprintf("logs[%d]", i)
		if l.ID == "" {
			return invalid(field+".logId", "blank log id")
		}
		if !l.Event.Valid() {
			return invalid(field+".event", "unknown event kind %q", l.Event)
		}
	}

	return nil
}
