// Package ingest converts an external tabular source (an IFS action-plan
// spreadsheet) into the raw material for an initial audit document.
//
// The adapter is deliberately narrow: it consumes a [][]string grid and
// produces metadata plus raw findings, or a structural error. Locating
// the grid inside an .xlsx workbook is a separate concern (LoadXLSX);
// everything else about spreadsheets stays outside the core.
//
// Layout contract, inherited from the source template:
//   - fixed metadata cells: site name C4, organization id (COID) C5,
//     audit type C8, audit date C9
//   - a header row located by the sentinel column "requirementNo"
//   - columns mapped by header name, never by position
//   - rows with a blank identifier are skipped; duplicate identifiers
//     keep the first occurrence
package ingest
