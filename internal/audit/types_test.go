package audit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The wire field names are a compatibility contract with packages
// produced by earlier tooling; a rename would orphan circulating files.
func TestDocument_WireFieldNames(t *testing.T) {
	d := validDocument()
	d.Comments = []Comment{{
		ID: "c1", FindingID: "1.2.3",
		Author: Actor{Name: "A. Durand", Role: RoleAuditor},
		Text:   "hello",
	}}
	d.Evidence = []Evidence{{
		ID: "p1", FindingID: "1.2.3", Filename: "seal.pdf",
	}}
	d.Log = []LogEntry{{
		ID: "l1", Event: EventImported,
	}}
	d.Findings[0].InitialScore = "C"

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{"metadata", "auditItems", "comments", "proofs", "logs"} {
		assert.Contains(t, m, key)
	}

	var meta map[string]any
	require.NoError(t, json.Unmarshal(m["metadata"], &meta))
	for _, key := range []string{
		"schemaVersion", "coid", "siteName", "auditType", "auditDate",
		"internalVersion", "status", "lastSavedBy", "lastSavedTimestamp",
	} {
		assert.Contains(t, meta, key)
	}

	var items []map[string]any
	require.NoError(t, json.Unmarshal(m["auditItems"], &items))
	assert.Contains(t, items[0], "statusNC")
	assert.Contains(t, items[0], "actionStatus")

	var comments []map[string]any
	require.NoError(t, json.Unmarshal(m["comments"], &comments))
	assert.Contains(t, comments[0], "commentId")
	assert.Contains(t, comments[0], "itemId")

	var proofs []map[string]any
	require.NoError(t, json.Unmarshal(m["proofs"], &proofs))
	assert.Contains(t, proofs[0], "proofId")

	var logs []map[string]any
	require.NoError(t, json.Unmarshal(m["logs"], &logs))
	assert.Contains(t, logs[0], "logId")
}

func TestDocument_FindingLookup(t *testing.T) {
	d := validDocument()

	f := d.Finding("4.5.1")
	require.NotNil(t, f)
	assert.Equal(t, "Pest control records", f.RequirementText)

	// The pointer aliases document state; edits land in place.
	f.SiteResponsible = "M. Leroy"
	assert.Equal(t, "M. Leroy", d.Findings[1].SiteResponsible)

	assert.Nil(t, d.Finding("9.9.9"))
}

func TestDocument_OpenFindings(t *testing.T) {
	d := validDocument()
	assert.Equal(t, 2, d.OpenFindings())

	d.Findings[0].ActionStatus = ActionClosed
	assert.Equal(t, 1, d.OpenFindings())

	d.Findings[1].ActionStatus = ActionClosed
	assert.Equal(t, 0, d.OpenFindings())
}
