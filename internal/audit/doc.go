// Package audit provides the canonical data model for one IFS audit
// action-plan package: metadata, findings, comments, evidence, and the
// append-only change log.
//
// This package contains type definitions, enumerations, and validators
// only. All other internal packages import audit; audit imports nothing
// internal. This keeps the document model the foundational layer with no
// circular dependencies.
//
// Key design constraints:
//   - All JSON tags use the camelCase names of the portable package
//     format, so decode(encode(doc)) round-trips byte-compatible files
//     produced by earlier tooling
//   - Status, Role, ActionStatus, and EventKind are closed enumerations;
//     unknown wire values fail at parse time, never deep inside the engine
//   - A Finding's identity fields (id, requirement text, initial
//     evaluation, initial score) are write-once; only the engine's field
//     registry exposes mutable paths
//   - The log is append-only; nothing in this package (or any other)
//     rewrites or removes an entry once created
package audit
