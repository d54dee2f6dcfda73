package audit

// CommentVisibleTo decides whether a viewer role may see a general
// comment. This is the single source of truth for comment filtering;
// renderers must not re-derive it.
//
// Site sees only the Auditor/Site exchange. Auditor and Reviewer see
// everything. RecipientRole is deliberately not consulted: it is a
// routing hint, not an access boundary.
func CommentVisibleTo(viewer Role, c Comment) bool {
	switch viewer {
	case RoleSite:
		return c.Author.Role == RoleAuditor || c.Author.Role == RoleSite
	case RoleAuditor, RoleReviewer:
		return true
	default:
		return false
	}
}

// ReviewerNotesVisibleTo decides whether a viewer role may see the
// reviewer-only comment list carried on a finding. These notes are never
// shown to Site.
func ReviewerNotesVisibleTo(viewer Role) bool {
	switch viewer {
	case RoleAuditor, RoleReviewer:
		return true
	case RoleSite:
		return false
	default:
		return false
	}
}

// VisibleComments filters a finding's general comments for a viewer, in
// storage order.
func (d *Document) VisibleComments(viewer Role, findingID string) []Comment {
	var out []Comment
	for _, c := range d.Comments {
		if c.FindingID == findingID && CommentVisibleTo(viewer, c) {
			out = append(out, c)
		}
	}
	return out
}
