package codec

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifs-audit/actionplan/internal/audit"
)

func sampleDocument() *audit.Document {
	return &audit.Document{
		Metadata: audit.Metadata{
			SchemaVersion:      audit.SchemaVersion,
			COID:               "COID-4711",
			SiteName:           "Fromagerie du Jura",
			AuditType:          "IFS Food 8",
			AuditDate:          "2026-05-12",
			InternalVersion:    3,
			Status:             audit.StatusSiteInput,
			LastSavedBy:        audit.Actor{Name: "A. Durand", Role: audit.RoleAuditor},
			LastSavedTimestamp: "2026-05-20T09:00:01Z",
		},
		Findings: []audit.Finding{
			{
				ID:              "1.2.3",
				RequirementText: "Cold chain integrity",
				InitialScore:    "C",
				ActionStatus:    audit.ActionOpen,
				SiteCorrection: audit.AttributedText{
					Text: "Seal replaced", LastEditBy: "M. Leroy", Timestamp: "2026-05-21T10:00:00Z",
				},
			},
		},
		Comments: []audit.Comment{
			{
				ID: "c-1", FindingID: "1.2.3",
				Author:        audit.Actor{Name: "A. Durand", Role: audit.RoleAuditor},
				RecipientRole: audit.RoleSite,
				Text:          "Attach the invoice, please",
				Timestamp:     "2026-05-20T09:05:00Z",
			},
		},
		Evidence: []audit.Evidence{},
		Log: []audit.LogEntry{
			{
				ID: "l-1", Timestamp: "2026-05-20T09:00:01Z",
				User:    audit.Actor{Name: "A. Durand", Role: audit.RoleAuditor},
				Event:   audit.EventImported,
				Details: map[string]string{"filename": "findings.xlsx"},
			},
		},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	doc := sampleDocument()

	payload, err := Encode(doc)
	require.NoError(t, err)
	// The payload must be a single base64 text token.
	assert.NotContains(t, payload, "\n")

	got, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestDecode_ToleratesSurroundingWhitespace(t *testing.T) {
	payload, err := Encode(sampleDocument())
	require.NoError(t, err)

	got, err := Decode("  \n" + payload + "\r\n ")
	require.NoError(t, err)
	assert.Equal(t, "COID-4711", got.Metadata.COID)
}

func TestDecode_CorruptionStages(t *testing.T) {
	payload, err := Encode(sampleDocument())
	require.NoError(t, err)

	// Valid base64 wrapping bytes that are not a zlib stream.
	notZlib := base64.StdEncoding.EncodeToString([]byte("this is not compressed"))

	// Valid base64 wrapping a zlib stream cut off mid-body.
	compressed, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	truncated := base64.StdEncoding.EncodeToString(compressed[:10])

	tests := []struct {
		name    string
		payload string
		stage   string
	}{
		{"empty", "", "base64"},
		{"whitespace only", "   \n", "base64"},
		{"not base64", "!!!not-base64!!!", "base64"},
		{"not zlib", notZlib, "zlib"},
		{"truncated", truncated, "zlib"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.payload)
			require.Error(t, err)
			var ce *CorruptError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.stage, ce.Stage)
		})
	}
}

func TestDecode_RejectsForeignJSON(t *testing.T) {
	// Well-formed zlib+base64 around JSON that is not a package.
	doc := sampleDocument()
	doc.Metadata.Status = "NotAStatus"
	payload, err := Encode(doc)
	require.NoError(t, err)

	_, err = Decode(payload)
	require.Error(t, err)
	var ce *CorruptError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "schema", ce.Stage)
}

func TestEstimatedSize(t *testing.T) {
	doc := sampleDocument()
	size, err := EstimatedSize(doc)
	require.NoError(t, err)
	assert.Greater(t, size, int64(0))

	doc.Findings[0].RequirementText += strings.Repeat("x", 1000)
	bigger, err := EstimatedSize(doc)
	require.NoError(t, err)
	assert.Greater(t, bigger, size)
}
