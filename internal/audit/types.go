package audit

// SchemaVersion is the package file schema version. Bump only with a
// migration path for every older version still circulating.
const SchemaVersion = 1

// Actor is the identified person performing an attributed operation.
type Actor struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// AttributedText is a text value bundled with who last edited it and
// when. Every role-scoped free-text field on a Finding uses this shape.
type AttributedText struct {
	Text       string `json:"text"`
	LastEditBy string `json:"lastEditBy"`
	Timestamp  string `json:"timestamp"`
}

// Metadata describes the audit package as a whole. InternalVersion is
// monotonically incremented on every successful export and never reused;
// it is the sole ordering signal once files circulate by hand.
type Metadata struct {
	SchemaVersion      int    `json:"schemaVersion"`
	COID               string `json:"coid"`
	SiteName           string `json:"siteName"`
	AuditType          string `json:"auditType"`
	AuditDate          string `json:"auditDate"`
	InternalVersion    int    `json:"internalVersion"`
	Status             Status `json:"status"`
	LastSavedBy        Actor  `json:"lastSavedBy"`
	LastSavedTimestamp string `json:"lastSavedTimestamp"`
}

// Finding is one audit requirement and its role-scoped resolution
// fields. ID, RequirementText, AuditorEvaluation, and InitialScore form
// the write-once identity set at ingestion.
type Finding struct {
	ID                string `json:"id"`
	RequirementText   string `json:"requirementText"`
	AuditorEvaluation string `json:"auditorEvaluation"`
	InitialScore      string `json:"statusNC"`

	// Site-owned.
	SiteCorrection       AttributedText `json:"siteCorrection"`
	SiteCorrectiveAction AttributedText `json:"siteCorrectiveAction"`
	SitePlannedDate      string         `json:"sitePlannedDate"`
	SiteActualDate       string         `json:"siteActualDate"`
	SiteResponsible      string         `json:"siteResponsible"`

	// Auditor-owned.
	AuditorEffectivenessCheck AttributedText `json:"auditorEffectivenessCheck"`
	ActionStatus              ActionStatus   `json:"actionStatus"`
	AuditorValidationDate     string         `json:"auditorValidationDate"`
	AuditorValidator          string         `json:"auditorValidator"`

	// Reviewer-owned, never shown to Site.
	ReviewerComments []ReviewerComment `json:"reviewerComments,omitempty"`
}

// Comment is a general cross-role comment attached to a finding.
// RecipientRole is a routing hint, not an access boundary. Comments are
// append-only: never edited or deleted once created.
type Comment struct {
	ID            string `json:"commentId"`
	FindingID     string `json:"itemId"`
	Author        Actor  `json:"author"`
	RecipientRole Role   `json:"recipientRole"`
	Text          string `json:"text"`
	Timestamp     string `json:"timestamp"`
}

// ReviewerComment is a reviewer-only annotation carried on the finding
// itself, distinct from the general comment list.
type ReviewerComment struct {
	ID        string `json:"commentId"`
	Timestamp string `json:"timestamp"`
	User      Actor  `json:"user"`
	Text      string `json:"text"`
}

// Evidence is a binary attachment (base64 payload) supporting a finding.
// Removable only by the actor who added it, and only while the document
// is in an editable status for that role.
type Evidence struct {
	ID        string `json:"proofId"`
	FindingID string `json:"itemId"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mimeType"`
	Data      string `json:"data"`
	AddedBy   Actor  `json:"addedBy"`
	Timestamp string `json:"timestamp"`
}

// LogEntry records one attributable mutation. Entries are append-only
// and never reordered in storage; presentation may re-sort.
type LogEntry struct {
	ID        string            `json:"logId"`
	Timestamp string            `json:"timestamp"`
	User      Actor             `json:"user"`
	Event     EventKind         `json:"event"`
	FindingID string            `json:"itemId,omitempty"`
	Details   map[string]string `json:"details"`
}

// Document is the complete audit package: the unit of truth, always
// transmitted whole. The JSON shape is the portable .ifsaudit payload.
type Document struct {
	Metadata Metadata   `json:"metadata"`
	Findings []Finding  `json:"auditItems"`
	Comments []Comment  `json:"comments"`
	Evidence []Evidence `json:"proofs"`
	Log      []LogEntry `json:"logs"`
}

// Finding returns a pointer to the finding with the given id, or nil.
func (d *Document) Finding(id string) *Finding {
	for i := range d.Findings {
		if d.Findings[i].ID == id {
			return &d.Findings[i]
		}
	}
	return nil
}

// FindingComments returns the general comments attached to one finding,
// in storage order.
func (d *Document) FindingComments(findingID string) []Comment {
	var out []Comment
	for _, c := range d.Comments {
		if c.FindingID == findingID {
			out = append(out, c)
		}
	}
	return out
}

// FindingEvidence returns the evidence records attached to one finding,
// in storage order.
func (d *Document) FindingEvidence(findingID string) []Evidence {
	var out []Evidence
	for _, e := range d.Evidence {
		if e.FindingID == findingID {
			out = append(out, e)
		}
	}
	return out
}

// OpenFindings counts findings whose action status is not closed. The
// count is surfaced to the auditor before finalization.
func (d *Document) OpenFindings() int {
	n := 0
	for i := range d.Findings {
		if d.Findings[i].ActionStatus != ActionClosed {
			n++
		}
	}
	return n
}
