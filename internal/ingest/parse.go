package ingest

import (
	"fmt"
	"strings"
)

// Sentinel column whose presence identifies the header row.
const sentinelHeader = "requirementNo"

// RequiredHeaders are the column names the header row must carry.
var RequiredHeaders = []string{
	"requirementNo",
	"requirementText",
	"requirementExplanation",
	"requirementScore",
}

// Fixed metadata cell positions (row, column), zero-based. C4, C5, C8,
// C9 in spreadsheet terms.
var metadataCells = struct {
	siteName, coid, auditType, auditDate cellRef
}{
	siteName:  cellRef{3, 2},
	coid:      cellRef{4, 2},
	auditType: cellRef{7, 2},
	auditDate: cellRef{8, 2},
}

type cellRef struct{ row, col int }

// RawFinding is one usable row of the source table, identity fields only.
type RawFinding struct {
	ID          string
	Requirement string
	Explanation string
	Score       string
}

// Source is the parsed outcome of one tabular import.
type Source struct {
	COID      string
	SiteName  string
	AuditType string
	AuditDate string
	Findings  []RawFinding
	// Skipped counts rows dropped for blank or duplicate identifiers.
	Skipped int
}

// ParseError reports a structural problem with the source table.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "malformed source table: " + e.Reason
}

func parseFail(format string, args ...any) *ParseError {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}

// Parse extracts metadata and findings from a grid. The grid is the
// cell matrix of the first worksheet, row-major, values as displayed.
func Parse(grid [][]string) (*Source, error) {
	src := &Source{
		SiteName:  cellValue(grid, metadataCells.siteName),
		COID:      cellValue(grid, metadataCells.coid),
		AuditType: cellValue(grid, metadataCells.auditType),
		AuditDate: cellValue(grid, metadataCells.auditDate),
	}
	if src.COID == "" || src.SiteName == "" || src.AuditType == "" || src.AuditDate == "" {
		return nil, parseFail("missing metadata in cells C4, C5, C8, C9")
	}

	headerRow := -1
	for i, row := range grid {
		if contains(row, sentinelHeader) {
			headerRow = i
			break
		}
	}
	if headerRow == -1 {
		return nil, parseFail("header row with %q column not found", sentinelHeader)
	}

	colIdx := make(map[string]int)
	for i, h := range grid[headerRow] {
		h = strings.TrimSpace(h)
		if h != "" {
			colIdx[h] = i
		}
	}
	var missing []string
	for _, h := range RequiredHeaders {
		if _, ok := colIdx[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, parseFail("missing required columns: %s", strings.Join(missing, ", "))
	}

	seen := make(map[string]bool)
	for _, row := range grid[headerRow+1:] {
		id := strings.TrimSpace(cell(row, colIdx["requirementNo"]))
		if id == "" || seen[id] {
			src.Skipped++
			continue
		}
		seen[id] = true
		src.Findings = append(src.Findings, RawFinding{
			ID:          id,
			Requirement: cell(row, colIdx["requirementText"]),
			Explanation: cell(row, colIdx["requirementExplanation"]),
			Score:       cell(row, colIdx["requirementScore"]),
		})
	}

	if len(src.Findings) == 0 {
		return nil, parseFail("no usable rows after the header row")
	}
	return src, nil
}

func cellValue(grid [][]string, ref cellRef) string {
	if ref.row >= len(grid) {
		return ""
	}
	return strings.TrimSpace(cell(grid[ref.row], ref.col))
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func contains(row []string, want string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) == want {
			return true
		}
	}
	return false
}
