package engine

import (
	"fmt"
	"time"

	"github.com/ifs-audit/actionplan/internal/audit"
	"github.com/ifs-audit/actionplan/internal/codec"
)

// ExportOptions adjusts export behavior per call.
type ExportOptions struct {
	// Finalize asks for the Finalized terminal status. Auditor-only.
	Finalize bool
}

// ExportResult carries the advanced snapshot and its encoded payload.
// Doc is the committed successor of the live document: the caller swaps
// it in only after Payload has been durably written.
type ExportResult struct {
	Doc      *audit.Document
	Filename string
	Payload  string
	// UncompressedSize is the JSON byte size before compression, the
	// quantity the package ceiling is measured against.
	UncompressedSize int64
	// SizeWarning is set when UncompressedSize crossed the advisory
	// ceiling but export proceeded.
	SizeWarning string
}

// Export advances a snapshot of the document and encodes it. The live
// document is never mutated: on any failure the caller's state is
// exactly as it was. Concurrent exports of the same engine are
// rejected rather than interleaved.
//
// The snapshot receives, in order: the role's status transition
// (Site and Reviewer hand off to AuditorReview; the Auditor keeps the
// current status, or Finalized with opts.Finalize), an incremented
// internal version, save attribution, and one Exported log entry.
func (e *Engine) Export(d *audit.Document, actor audit.Actor, opts ExportOptions) (*ExportResult, error) {
	if actor.Name == "" {
		return nil, newError(ErrCodeMissingActor, "exports must be attributed; set your name first")
	}
	if d.Metadata.Status.Terminal() {
		return nil, newError(ErrCodePermissionDenied, "document is finalized; no further exports")
	}
	if opts.Finalize && actor.Role != audit.RoleAuditor {
		return nil, newError(ErrCodePermissionDenied, "only the auditor may finalize, not %s", actor.Role)
	}

	if !e.exporting.CompareAndSwap(false, true) {
		return nil, newError(ErrCodeWorkflowViolation, "an export is already in flight")
	}
	defer e.exporting.Store(false)

	snap := d.Clone()

	switch actor.Role {
	case audit.RoleSite, audit.RoleReviewer:
		snap.Metadata.Status = audit.StatusAuditorReview
	case audit.RoleAuditor:
		if opts.Finalize {
			snap.Metadata.Status = audit.StatusFinalized
		}
	default:
		return nil, newError(ErrCodePermissionDenied, "unknown role %q", actor.Role)
	}

	snap.Metadata.InternalVersion++
	snap.Metadata.LastSavedBy = actor
	snap.Metadata.LastSavedTimestamp = e.timestamp()
	e.appendLog(snap, actor, audit.EventExported, "", map[string]string{
		"version": fmt.Sprintf("%d", snap.Metadata.InternalVersion),
		"status":  string(snap.Metadata.Status),
	})

	size, err := codec.EstimatedSize(snap)
	if err != nil {
		return nil, fmt.Errorf("measure package: %w", err)
	}
	warn := ""
	limit := e.WarnPackageBytes
	if limit <= 0 {
		limit = DefaultWarnPackageBytes
	}
	if size > limit {
		if e.EnforcePackageLimit {
			return nil, newError(ErrCodeSizeLimitExceeded,
				"package is %d bytes uncompressed, over the %d byte limit; remove evidence before exporting", size, limit)
		}
		warn = fmt.Sprintf("package is %d bytes uncompressed, over the advisory %d byte ceiling", size, limit)
	}

	payload, err := e.codec().Encode(snap)
	if err != nil {
		return nil, fmt.Errorf("encode package: %w", err)
	}

	return &ExportResult{
		Doc:              snap,
		Filename:         FileName(snap.Metadata, e.now()),
		Payload:          payload,
		UncompressedSize: size,
		SizeWarning:      warn,
	}, nil
}

// FileName builds the conventional package name:
// {coid}_IFS_ActionPlan_{YYYYMMDD}_v{version}.ifsaudit.
func FileName(m audit.Metadata, now time.Time) string {
	return fmt.Sprintf("%s_IFS_ActionPlan_%s_v%d%s",
		m.COID, now.UTC().Format("20060102"), m.InternalVersion, codec.FileExtension)
}

// OpenItems counts findings not yet closed, the figure surfaced before
// a finalize is confirmed.
func OpenItems(d *audit.Document) int {
	return d.OpenFindings()
}
