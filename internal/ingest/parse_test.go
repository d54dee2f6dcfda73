package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGrid() [][]string {
	return [][]string{
		{"IFS Food Audit Export"},
		{},
		{},
		{"", "", "Fromagerie du Jura"}, // C4
		{"", "", "COID-4711"},          // C5
		{},
		{},
		{"", "", "IFS Food 8"},  // C8
		{"", "", "2026-05-12"},  // C9
		{"requirementNo", "requirementText", "requirementExplanation", "requirementScore"},
		{"1.2.3", "Cold chain integrity", "Seal on cold store door damaged", "C"},
		{"4.5.1", "Pest control records", "Missing bait station log for March", "B"},
	}
}

func TestParse_HappyPath(t *testing.T) {
	src, err := Parse(sampleGrid())
	require.NoError(t, err)

	assert.Equal(t, "COID-4711", src.COID)
	assert.Equal(t, "Fromagerie du Jura", src.SiteName)
	assert.Equal(t, "IFS Food 8", src.AuditType)
	assert.Equal(t, "2026-05-12", src.AuditDate)
	assert.Equal(t, 0, src.Skipped)

	require.Len(t, src.Findings, 2)
	assert.Equal(t, RawFinding{
		ID:          "1.2.3",
		Requirement: "Cold chain integrity",
		Explanation: "Seal on cold store door damaged",
		Score:       "C",
	}, src.Findings[0])
}

func TestParse_SkipsBlankAndDuplicateIDs(t *testing.T) {
	grid := sampleGrid()
	grid = append(grid,
		[]string{"", "row without id", "", ""},
		[]string{"1.2.3", "duplicate of first", "", "D"},
		[]string{"5.6.7", "kept", "", "A"},
	)

	src, err := Parse(grid)
	require.NoError(t, err)

	assert.Equal(t, 2, src.Skipped)
	require.Len(t, src.Findings, 3)
	// First occurrence wins.
	assert.Equal(t, "Cold chain integrity", src.Findings[0].Requirement)
	assert.Equal(t, "5.6.7", src.Findings[2].ID)
}

func TestParse_TrimsIDWhitespace(t *testing.T) {
	grid := sampleGrid()
	grid = append(grid, []string{"  8.9.1  ", "padded id", "", "B"})

	src, err := Parse(grid)
	require.NoError(t, err)
	assert.Equal(t, "8.9.1", src.Findings[2].ID)
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([][]string) [][]string
	}{
		{
			"missing metadata",
			func(g [][]string) [][]string {
				g[4] = []string{"", "", ""} // blank coid
				return g
			},
		},
		{
			"no header row",
			func(g [][]string) [][]string {
				return append(g[:9], g[10:]...)
			},
		},
		{
			"missing required column",
			func(g [][]string) [][]string {
				g[9] = []string{"requirementNo", "requirementText"}
				return g
			},
		},
		{
			"no data rows",
			func(g [][]string) [][]string {
				return g[:10]
			},
		},
		{
			"empty grid",
			func([][]string) [][]string { return nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.mutate(sampleGrid()))
			require.Error(t, err)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestParse_HeaderRowFoundAnywhere(t *testing.T) {
	// Extra banner rows between metadata and header must not matter.
	grid := sampleGrid()
	extra := append([][]string{}, grid[:9]...)
	extra = append(extra, []string{"some banner text"}, []string{})
	extra = append(extra, grid[9:]...)

	src, err := Parse(extra)
	require.NoError(t, err)
	assert.Len(t, src.Findings, 2)
}
