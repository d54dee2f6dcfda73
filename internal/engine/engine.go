package engine

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ifs-audit/actionplan/internal/audit"
	"github.com/ifs-audit/actionplan/internal/codec"
	"github.com/ifs-audit/actionplan/internal/ingest"
)

// Default size ceilings, matching the original tool's limits.
const (
	DefaultMaxEvidenceBytes = 2 * 1024 * 1024
	DefaultWarnPackageBytes = 50 * 1024 * 1024
)

// Codec is the narrow serialization boundary the engine depends on.
// The production implementation is the codec package; tests substitute
// a failing one to exercise the export commit protocol.
type Codec interface {
	Encode(*audit.Document) (string, error)
	Decode(string) (*audit.Document, error)
}

type packageCodec struct{}

func (packageCodec) Encode(d *audit.Document) (string, error) { return codec.Encode(d) }
func (packageCodec) Decode(s string) (*audit.Document, error) { return codec.Decode(s) }

// Engine executes all document operations. Now and NewID are injectable
// for deterministic tests; zero-value fields fall back to defaults.
type Engine struct {
	Codec Codec
	Now   func() time.Time
	NewID func() string

	// MaxEvidenceBytes is the hard per-attachment ceiling.
	MaxEvidenceBytes int64
	// WarnPackageBytes is the advisory uncompressed-package ceiling.
	WarnPackageBytes int64
	// EnforcePackageLimit turns the advisory ceiling into a hard one.
	EnforcePackageLimit bool

	exporting atomic.Bool
}

// New returns an engine with production defaults.
func New() *Engine {
	return &Engine{
		Codec:            packageCodec{},
		Now:              time.Now,
		NewID:            uuid.NewString,
		MaxEvidenceBytes: DefaultMaxEvidenceBytes,
		WarnPackageBytes: DefaultWarnPackageBytes,
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) timestamp() string {
	return e.now().UTC().Format(time.RFC3339)
}

func (e *Engine) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

func (e *Engine) codec() Codec {
	if e.Codec != nil {
		return e.Codec
	}
	return packageCodec{}
}

// appendLog appends one attributed entry to the document log. The log
// is append-only; this is the only place entries are created.
func (e *Engine) appendLog(d *audit.Document, actor audit.Actor, event audit.EventKind, findingID string, details map[string]string) {
	if details == nil {
		details = map[string]string{}
	}
	d.Log = append(d.Log, audit.LogEntry{
		ID:        e.newID(),
		Timestamp: e.timestamp(),
		User:      actor,
		Event:     event,
		FindingID: findingID,
		Details:   details,
	})
}

// Import builds the initial document from a source grid. Auditor-only;
// the resulting document is at version 1, status Initial, with one
// Imported log entry. The returned count is the number of source rows
// skipped for blank or duplicate identifiers.
func (e *Engine) Import(grid [][]string, actor audit.Actor, sourceName string) (*audit.Document, int, error) {
	if actor.Role != audit.RoleAuditor {
		return nil, 0, newError(ErrCodePermissionDenied, "only the auditor may import findings, not %s", actor.Role)
	}

	src, err := ingest.Parse(grid)
	if err != nil {
		var pe *ingest.ParseError
		if errors.As(err, &pe) {
			return nil, 0, &WorkflowError{Code: ErrCodeMalformedSource, Message: pe.Reason, Err: err}
		}
		return nil, 0, &WorkflowError{Code: ErrCodeMalformedSource, Message: "unusable source table", Err: err}
	}

	doc := &audit.Document{
		Metadata: audit.Metadata{
			SchemaVersion:      audit.SchemaVersion,
			COID:               src.COID,
			SiteName:           src.SiteName,
			AuditType:          src.AuditType,
			AuditDate:          src.AuditDate,
			InternalVersion:    1,
			Status:             audit.StatusInitial,
			LastSavedBy:        actor,
			LastSavedTimestamp: e.timestamp(),
		},
		Findings: make([]audit.Finding, 0, len(src.Findings)),
		Comments: []audit.Comment{},
		Evidence: []audit.Evidence{},
		Log:      []audit.LogEntry{},
	}
	for _, raw := range src.Findings {
		doc.Findings = append(doc.Findings, audit.Finding{
			ID:                raw.ID,
			RequirementText:   raw.Requirement,
			AuditorEvaluation: raw.Explanation,
			InitialScore:      raw.Score,
			ActionStatus:      audit.ActionOpen,
		})
	}

	e.appendLog(doc, actor, audit.EventImported, "", map[string]string{"filename": sourceName})
	return doc, src.Skipped, nil
}

// Load decodes and validates a package payload for the given actor.
// Site may load only while the document is open to site input; any
// other status fails with a workflow violation before any state is
// installed. A Loaded log entry is appended on success.
func (e *Engine) Load(payload string, actor audit.Actor, filename string) (*audit.Document, error) {
	if !actor.Role.Valid() {
		return nil, newError(ErrCodeWorkflowViolation, "unknown role %q", actor.Role)
	}

	doc, err := e.codec().Decode(payload)
	if err != nil {
		return nil, &WorkflowError{Code: ErrCodeCorruptPackage, Message: "package could not be decoded", Err: err}
	}
	if err := audit.Validate(doc); err != nil {
		return nil, &WorkflowError{Code: ErrCodeCorruptPackage, Message: "package failed validation", Err: err}
	}

	if !CanLoad(doc.Metadata.Status, actor.Role) {
		return nil, newError(ErrCodeWorkflowViolation,
			"status %s does not permit loading by %s", doc.Metadata.Status, actor.Role)
	}

	e.appendLog(doc, actor, audit.EventLoaded, "", map[string]string{"filename": filename})
	return doc, nil
}

// ApplyFieldEdit assigns one mutable finding field. Setting the value
// already present is a no-op: no state change, no log entry. Otherwise
// exactly one FieldUpdated entry records the old and new value, and
// attributed fields are stamped with the editor and timestamp.
func (e *Engine) ApplyFieldEdit(d *audit.Document, actor audit.Actor, findingID, fieldPath, newValue string) (bool, error) {
	if actor.Name == "" {
		return false, newError(ErrCodeMissingActor, "field edits must be attributed; set your name first")
	}

	spec, err := lookupField(fieldPath)
	if err != nil {
		return false, err
	}
	if !CanWrite(d.Metadata.Status, actor.Role, spec.class) {
		return false, &WorkflowError{
			Code:      ErrCodePermissionDenied,
			Message:   fmt.Sprintf("%s may not edit %s while status is %s", actor.Role, fieldPath, d.Metadata.Status),
			FindingID: findingID,
		}
	}

	f := d.Finding(findingID)
	if f == nil {
		return false, fmt.Errorf("unknown finding %q", findingID)
	}

	if fieldPath == "actionStatus" {
		if _, err := audit.ParseActionStatus(newValue); err != nil {
			return false, fmt.Errorf("edit actionStatus: %w", err)
		}
	}

	oldValue := spec.get(f)
	if oldValue == newValue {
		return false, nil
	}

	spec.set(f, newValue)
	if spec.attributed {
		spec.stamp(f, actor.Name, e.timestamp())
	}
	e.appendLog(d, actor, audit.EventFieldUpdated, findingID, map[string]string{
		"field":    fieldPath,
		"oldValue": oldValue,
		"newValue": newValue,
	})
	return true, nil
}

// AddComment appends a general comment to the shared list. The
// recipient role is a routing hint only. Site comments while its fields
// are open; the auditor at any non-terminal status; the reviewer uses
// AddReviewerComment instead.
func (e *Engine) AddComment(d *audit.Document, actor audit.Actor, findingID string, recipient audit.Role, text string) (*audit.Comment, error) {
	if actor.Name == "" {
		return nil, newError(ErrCodeMissingActor, "comments must be attributed; set your name first")
	}
	if text == "" {
		return nil, fmt.Errorf("empty comment text")
	}
	if d.Finding(findingID) == nil {
		return nil, fmt.Errorf("unknown finding %q", findingID)
	}

	switch actor.Role {
	case audit.RoleAuditor:
		if d.Metadata.Status.Terminal() {
			return nil, newError(ErrCodePermissionDenied, "document is finalized")
		}
	case audit.RoleSite:
		if !canAttach(d.Metadata.Status, actor.Role) {
			return nil, newError(ErrCodePermissionDenied,
				"site may not comment while status is %s", d.Metadata.Status)
		}
	default:
		return nil, newError(ErrCodePermissionDenied,
			"%s does not use the shared comment list", actor.Role)
	}

	c := audit.Comment{
		ID:            e.newID(),
		FindingID:     findingID,
		Author:        actor,
		RecipientRole: recipient,
		Text:          text,
		Timestamp:     e.timestamp(),
	}
	d.Comments = append(d.Comments, c)
	e.appendLog(d, actor, audit.EventCommentAdded, findingID, map[string]string{"recipient": string(recipient)})
	return &c, nil
}

// AddReviewerComment appends a reviewer-only note to the finding's own
// list. Reviewer-only, any non-terminal status.
func (e *Engine) AddReviewerComment(d *audit.Document, actor audit.Actor, findingID, text string) (*audit.ReviewerComment, error) {
	if actor.Name == "" {
		return nil, newError(ErrCodeMissingActor, "comments must be attributed; set your name first")
	}
	if text == "" {
		return nil, fmt.Errorf("empty comment text")
	}
	if !canAnnotate(d.Metadata.Status, actor.Role) {
		return nil, newError(ErrCodePermissionDenied,
			"%s may not add reviewer notes while status is %s", actor.Role, d.Metadata.Status)
	}
	f := d.Finding(findingID)
	if f == nil {
		return nil, fmt.Errorf("unknown finding %q", findingID)
	}

	rc := audit.ReviewerComment{
		ID:        e.newID(),
		Timestamp: e.timestamp(),
		User:      actor,
		Text:      text,
	}
	f.ReviewerComments = append(f.ReviewerComments, rc)

	excerpt := text
	if len(excerpt) > 50 {
		excerpt = excerpt[:50] + "..."
	}
	e.appendLog(d, actor, audit.EventCommentAdded, findingID, map[string]string{"commentText": excerpt})
	return &rc, nil
}

// AddEvidence attaches a binary payload to a finding. The per-file
// ceiling is enforced here, at add time, so an oversized attachment
// never enters a package.
func (e *Engine) AddEvidence(d *audit.Document, actor audit.Actor, findingID, filename, mimeType string, data []byte) (*audit.Evidence, error) {
	if actor.Name == "" {
		return nil, newError(ErrCodeMissingActor, "evidence must be attributed; set your name first")
	}
	if !canAttach(d.Metadata.Status, actor.Role) {
		return nil, newError(ErrCodePermissionDenied,
			"%s may not add evidence while status is %s", actor.Role, d.Metadata.Status)
	}
	if d.Finding(findingID) == nil {
		return nil, fmt.Errorf("unknown finding %q", findingID)
	}

	max := e.MaxEvidenceBytes
	if max <= 0 {
		max = DefaultMaxEvidenceBytes
	}
	if int64(len(data)) > max {
		return nil, &WorkflowError{
			Code:      ErrCodeSizeLimitExceeded,
			Message:   fmt.Sprintf("attachment %s is %d bytes, over the %d byte limit", filename, len(data), max),
			FindingID: findingID,
		}
	}

	ev := audit.Evidence{
		ID:        e.newID(),
		FindingID: findingID,
		Filename:  filename,
		MimeType:  mimeType,
		Data:      base64.StdEncoding.EncodeToString(data),
		AddedBy:   actor,
		Timestamp: e.timestamp(),
	}
	d.Evidence = append(d.Evidence, ev)
	e.appendLog(d, actor, audit.EventEvidenceAdded, findingID, map[string]string{"filename": filename})
	return &ev, nil
}

// RemoveEvidence deletes an attachment. Only the actor who added it may
// remove it, and only while the document is still editable for that
// role.
func (e *Engine) RemoveEvidence(d *audit.Document, actor audit.Actor, evidenceID string) error {
	if actor.Name == "" {
		return newError(ErrCodeMissingActor, "evidence removal must be attributed; set your name first")
	}
	idx := -1
	for i := range d.Evidence {
		if d.Evidence[i].ID == evidenceID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("unknown evidence %q", evidenceID)
	}
	ev := d.Evidence[idx]

	if ev.AddedBy.Role != actor.Role || ev.AddedBy.Name != actor.Name {
		return &WorkflowError{
			Code:      ErrCodePermissionDenied,
			Message:   fmt.Sprintf("evidence %s was added by %s (%s); only they may remove it", ev.Filename, ev.AddedBy.Name, ev.AddedBy.Role),
			FindingID: ev.FindingID,
		}
	}
	if !canAttach(d.Metadata.Status, actor.Role) {
		return &WorkflowError{
			Code:      ErrCodePermissionDenied,
			Message:   fmt.Sprintf("%s may not remove evidence while status is %s", actor.Role, d.Metadata.Status),
			FindingID: ev.FindingID,
		}
	}

	d.Evidence = append(d.Evidence[:idx], d.Evidence[idx+1:]...)
	e.appendLog(d, actor, audit.EventEvidenceRemoved, ev.FindingID, map[string]string{"filename": ev.Filename})
	return nil
}

// DecodeEvidence reconstructs an attachment's raw bytes from its
// encoded payload.
func DecodeEvidence(ev audit.Evidence) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(ev.Data)
	if err != nil {
		return nil, fmt.Errorf("evidence %s: corrupt payload: %w", ev.Filename, err)
	}
	return data, nil
}
