// Package engine implements the audit-package state machine: which role
// may mutate which finding fields under which document status, and how
// the document advances on import, load, and export.
//
// Every operation takes an explicit *audit.Document; there is no hidden
// current-document state. Mutating operations validate role and status
// before touching anything, and either complete fully (field change plus
// exactly one log entry) or leave the document untouched.
//
// Export follows a snapshot/commit protocol: the engine clones the
// document, advances the clone (version, stamps, status transition,
// Exported log entry), and encodes the clone. The caller adopts the
// returned clone only after the payload has been written out. A failed
// export therefore never leaves the live document with an incremented
// version and no corresponding file; the version number is the sole
// ordering signal once packages circulate by hand.
package engine
