package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/ifs-audit/actionplan/internal/audit"
)

// goldenDir is resolved before any test changes the working directory so
// goldie can still find the committed fixtures.
var goldenDir, _ = filepath.Abs("testdata")

func loggedDoc() *audit.Document {
	d := draftDoc()
	d.Log = []audit.LogEntry{
		{
			ID:        "id-0001",
			Timestamp: "2026-05-20T09:00:02Z",
			User:      audit.Actor{Name: "A. Durand", Role: audit.RoleAuditor},
			Event:     audit.EventImported,
			Details:   map[string]string{"filename": "findings.xlsx"},
		},
		{
			ID:        "id-0002",
			Timestamp: "2026-05-20T09:00:04Z",
			User:      audit.Actor{Name: "M. Leroy", Role: audit.RoleSite},
			Event:     audit.EventFieldUpdated,
			FindingID: "1.2.3",
			Details: map[string]string{
				"field":    "siteCorrection",
				"oldValue": "",
				"newValue": "Seal replaced",
			},
		},
		{
			ID:        "id-0003",
			Timestamp: "2026-05-20T09:00:06Z",
			User:      audit.Actor{Name: "A. Durand", Role: audit.RoleAuditor},
			Event:     audit.EventCommentAdded,
			FindingID: "1.2.3",
			Details:   map[string]string{"recipient": "Site"},
		},
	}
	return d
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLogCommand_NewestFirstText(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	draft := filepath.Join(t.TempDir(), "plan.ifsdraft")
	require.NoError(t, SaveDraft(draft, &Draft{Document: loggedDoc()}))

	out, err := runCommand(t, "log", "--draft", draft)
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir(goldenDir))
	g.Assert(t, "log_text", []byte(out))
}

func TestLogCommand_FilterByFinding(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	draft := filepath.Join(t.TempDir(), "plan.ifsdraft")
	require.NoError(t, SaveDraft(draft, &Draft{Document: loggedDoc()}))

	out, err := runCommand(t, "log", "--draft", draft, "--finding", "1.2.3")
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir(goldenDir))
	g.Assert(t, "log_text_filtered", []byte(out))
}
