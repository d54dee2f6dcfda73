package engine

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifs-audit/actionplan/internal/audit"
)

func TestExport_AdvancesSnapshotNotOriginal(t *testing.T) {
	e := newTestEngine()
	doc := importedDoc(t, e)
	before := doc.Clone()

	res, err := e.Export(doc, auditor, ExportOptions{})
	require.NoError(t, err)

	// The live document is byte-for-byte untouched.
	assert.True(t, reflect.DeepEqual(before, doc))

	assert.Equal(t, 2, res.Doc.Metadata.InternalVersion)
	assert.Equal(t, audit.StatusInitial, res.Doc.Metadata.Status)
	assert.Equal(t, auditor, res.Doc.Metadata.LastSavedBy)
	assert.NotEmpty(t, res.Payload)
	assert.Greater(t, res.UncompressedSize, int64(0))

	last := res.Doc.Log[len(res.Doc.Log)-1]
	assert.Equal(t, audit.EventExported, last.Event)
	assert.Equal(t, "2", last.Details["version"])
}

func TestExport_RoleTransitions(t *testing.T) {
	tests := []struct {
		name       string
		actor      audit.Actor
		from       audit.Status
		finalize   bool
		wantStatus audit.Status
	}{
		{"site hands back", site, audit.StatusSiteInput, false, audit.StatusAuditorReview},
		{"site from initial", site, audit.StatusInitial, false, audit.StatusAuditorReview},
		{"reviewer hands back", reviewer, audit.StatusAuditorReview, false, audit.StatusAuditorReview},
		{"reviewer from site input", reviewer, audit.StatusSiteInput, false, audit.StatusAuditorReview},
		{"auditor keeps status", auditor, audit.StatusAuditorReview, false, audit.StatusAuditorReview},
		{"auditor keeps initial", auditor, audit.StatusInitial, false, audit.StatusInitial},
		{"auditor finalizes", auditor, audit.StatusAuditorReview, true, audit.StatusFinalized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			doc := importedDoc(t, e)
			doc.Metadata.Status = tt.from

			res, err := e.Export(doc, tt.actor, ExportOptions{Finalize: tt.finalize})
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Doc.Metadata.Status)
			assert.Equal(t, doc.Metadata.InternalVersion+1, res.Doc.Metadata.InternalVersion)
		})
	}
}

func TestExport_Refusals(t *testing.T) {
	e := newTestEngine()
	doc := importedDoc(t, e)

	// Finalize is the auditor's call alone.
	_, err := e.Export(doc, site, ExportOptions{Finalize: true})
	assert.True(t, IsPermissionDenied(err))
	_, err = e.Export(doc, reviewer, ExportOptions{Finalize: true})
	assert.True(t, IsPermissionDenied(err))

	// Attribution required.
	_, err = e.Export(doc, audit.Actor{Role: audit.RoleAuditor}, ExportOptions{})
	assert.True(t, IsMissingActor(err))

	// Finalized means finished.
	doc.Metadata.Status = audit.StatusFinalized
	_, err = e.Export(doc, auditor, ExportOptions{})
	assert.True(t, IsPermissionDenied(err))
}

type failingCodec struct{}

func (failingCodec) Encode(*audit.Document) (string, error) {
	return "", errors.New("disk on fire")
}

func (failingCodec) Decode(string) (*audit.Document, error) {
	return nil, errors.New("disk on fire")
}

func TestExport_EncodeFailureLeavesDocumentUntouched(t *testing.T) {
	e := newTestEngine()
	doc := importedDoc(t, e)
	before := doc.Clone()

	e.Codec = failingCodec{}
	_, err := e.Export(doc, auditor, ExportOptions{})
	require.Error(t, err)

	assert.True(t, reflect.DeepEqual(before, doc),
		"failed export must not advance version or log")

	// The in-flight guard must have been released.
	e.Codec = nil
	_, err = e.Export(doc, auditor, ExportOptions{})
	require.NoError(t, err)
}

func TestExport_InFlightGuard(t *testing.T) {
	e := newTestEngine()
	doc := importedDoc(t, e)

	e.exporting.Store(true)
	_, err := e.Export(doc, auditor, ExportOptions{})
	require.Error(t, err)
	assert.True(t, IsWorkflowViolation(err))

	e.exporting.Store(false)
	_, err = e.Export(doc, auditor, ExportOptions{})
	require.NoError(t, err)
}

func TestExport_SizeCeiling(t *testing.T) {
	e := newTestEngine()
	doc := importedDoc(t, e)

	// Advisory by default: warn and proceed.
	e.WarnPackageBytes = 1
	res, err := e.Export(doc, auditor, ExportOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.SizeWarning)

	// Enforced: refuse.
	e.EnforcePackageLimit = true
	_, err = e.Export(doc, auditor, ExportOptions{})
	require.Error(t, err)
	assert.True(t, IsSizeLimitExceeded(err))
}

func TestFileName(t *testing.T) {
	m := audit.Metadata{COID: "COID-4711", InternalVersion: 7}
	now := time.Date(2026, 8, 29, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "COID-4711_IFS_ActionPlan_20260829_v7.ifsaudit", FileName(m, now))
}

func TestOpenItems(t *testing.T) {
	e := newTestEngine()
	doc := importedDoc(t, e)
	assert.Equal(t, 2, OpenItems(doc))

	doc.Findings[0].ActionStatus = audit.ActionClosed
	assert.Equal(t, 1, OpenItems(doc))
}

// Full multi-party pass: import, site answers, reviewer annotates,
// auditor closes and finalizes. Exercises every status transition the
// workflow uses.
func TestWorkflow_EndToEnd(t *testing.T) {
	e := newTestEngine()

	// Auditor imports and sends to the site.
	doc, _, err := e.Import(testGrid(), auditor, "findings.xlsx")
	require.NoError(t, err)
	doc.Metadata.Status = audit.StatusSiteInput

	sent, err := e.Export(doc, auditor, ExportOptions{})
	require.NoError(t, err)

	// Site opens it, answers, attaches evidence, hands it back.
	siteDoc, err := e.Load(sent.Payload, site, sent.Filename)
	require.NoError(t, err)

	_, err = e.ApplyFieldEdit(siteDoc, site, "1.2.3", "siteCorrection", "Seal replaced")
	require.NoError(t, err)
	_, err = e.ApplyFieldEdit(siteDoc, site, "1.2.3", "siteCorrectiveAction", "Monthly seal inspection added")
	require.NoError(t, err)
	_, err = e.AddEvidence(siteDoc, site, "1.2.3", "invoice.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)

	siteOut, err := e.Export(siteDoc, site, ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, audit.StatusAuditorReview, siteOut.Doc.Metadata.Status)

	// Reviewer takes a look and leaves a note.
	revDoc, err := e.Load(siteOut.Payload, reviewer, siteOut.Filename)
	require.NoError(t, err)
	_, err = e.AddReviewerComment(revDoc, reviewer, "1.2.3", "Verify the new inspection plan next audit")
	require.NoError(t, err)
	revOut, err := e.Export(revDoc, reviewer, ExportOptions{})
	require.NoError(t, err)

	// Auditor closes both findings and finalizes.
	finDoc, err := e.Load(revOut.Payload, auditor, revOut.Filename)
	require.NoError(t, err)
	_, err = e.ApplyFieldEdit(finDoc, auditor, "1.2.3", "actionStatus", string(audit.ActionClosed))
	require.NoError(t, err)
	_, err = e.ApplyFieldEdit(finDoc, auditor, "4.5.1", "actionStatus", string(audit.ActionClosed))
	require.NoError(t, err)
	assert.Equal(t, 0, OpenItems(finDoc))

	final, err := e.Export(finDoc, auditor, ExportOptions{Finalize: true})
	require.NoError(t, err)
	assert.Equal(t, audit.StatusFinalized, final.Doc.Metadata.Status)
	assert.Equal(t, 5, final.Doc.Metadata.InternalVersion)

	// The reviewer note survived the round trips; the finalized
	// package still opens read-only for the auditor.
	reopened, err := e.Load(final.Payload, auditor, final.Filename)
	require.NoError(t, err)
	require.Len(t, reopened.Finding("1.2.3").ReviewerComments, 1)

	// And nothing can change it anymore.
	_, err = e.ApplyFieldEdit(reopened, auditor, "1.2.3", "actionStatus", string(audit.ActionOpen))
	assert.True(t, IsPermissionDenied(err))
	_, err = e.Export(reopened, auditor, ExportOptions{})
	assert.True(t, IsPermissionDenied(err))
}
