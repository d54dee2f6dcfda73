package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ifs-audit/actionplan/internal/audit"
)

// Draft is the local working session: the in-progress document plus
// where it came from. It is plain JSON on disk, deliberately not the
// package format, so a half-finished session can never be mistaken for
// a handoff file.
type Draft struct {
	SourceFile string          `json:"sourceFile,omitempty"`
	Document   *audit.Document `json:"document"`
}

// LoadDraft reads a draft from path.
func LoadDraft(path string) (*Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("no draft at %s; run import or load first", path), err)
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("draft %s is not readable", path), err)
	}
	if d.Document == nil {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("draft %s holds no document", path))
	}
	return &d, nil
}

// SaveDraft writes the draft atomically: temp file in the same
// directory, then rename.
func SaveDraft(path string, d *Draft) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ifsdraft-*")
	if err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write draft: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write draft: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace draft: %w", err)
	}
	return nil
}
