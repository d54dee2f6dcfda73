package engine

import "github.com/ifs-audit/actionplan/internal/audit"

// FieldClass partitions finding fields by owning role. Identity fields
// belong to no role; they are write-once at ingestion.
type FieldClass int

const (
	ClassIdentity FieldClass = iota
	ClassSite
	ClassAuditor
)

// CanWrite is the role/status permission table. A role mutates only its
// own field subset, and only while the document status opens that
// subset:
//
//	status            Auditor fields  Site fields
//	Initial           write           write
//	SiteInputRequired no              write
//	AuditorReview     write           no
//	Finalized         no              no
//
// Identity fields are never writable through this table.
func CanWrite(status audit.Status, role audit.Role, class FieldClass) bool {
	if status.Terminal() {
		return false
	}
	switch class {
	case ClassSite:
		if role != audit.RoleSite {
			return false
		}
		return status == audit.StatusInitial || status == audit.StatusSiteInput
	case ClassAuditor:
		if role != audit.RoleAuditor {
			return false
		}
		return status == audit.StatusInitial || status == audit.StatusAuditorReview
	default:
		return false
	}
}

// CanLoad decides whether a role may load a package in the given
// status. Site is restricted to the statuses it may edit, failing fast
// rather than opening a read-only view it cannot act on. Auditor and
// Reviewer may always load; a Finalized package opens read-only.
func CanLoad(status audit.Status, role audit.Role) bool {
	switch role {
	case audit.RoleSite:
		return status == audit.StatusInitial || status == audit.StatusSiteInput
	case audit.RoleAuditor, audit.RoleReviewer:
		return true
	default:
		return false
	}
}

// canAttach decides whether a role may add evidence or general comments
// under the given status. It mirrors the field table: a role attaches
// material only while its own fields are open.
func canAttach(status audit.Status, role audit.Role) bool {
	switch role {
	case audit.RoleSite:
		return CanWrite(status, role, ClassSite)
	case audit.RoleAuditor:
		return CanWrite(status, role, ClassAuditor)
	default:
		return false
	}
}

// canAnnotate decides whether the reviewer may append reviewer-only
// notes. Any non-terminal status qualifies; the reviewer's export is
// what forces the document back to AuditorReview.
func canAnnotate(status audit.Status, role audit.Role) bool {
	return role == audit.RoleReviewer && !status.Terminal()
}
