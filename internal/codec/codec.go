// Package codec implements the portable .ifsaudit container: the
// document JSON, zlib-deflated, then base64-encoded as a single text
// payload. Encode and Decode are pure; Decode distinguishes corruption
// from every other failure so callers can surface it precisely.
package codec

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ifs-audit/actionplan/internal/audit"
)

// FileExtension is the conventional package file extension.
const FileExtension = ".ifsaudit"

// CorruptError marks a payload that could not be decoded. Stage names
// the layer that failed: base64, zlib, json, or schema.
type CorruptError struct {
	Stage string
	Err   error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt package (%s): %v", e.Stage, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Encode serializes a document into the portable text payload.
func Encode(d *audit.Document) (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode package: marshal: %w", err)
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		zw.Close()
		return "", fmt.Errorf("encode package: deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("encode package: deflate: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode reconstructs a document from a payload. Surrounding whitespace
// is tolerated; anything else that does not round-trip is reported as a
// CorruptError, never a bare parse panic. The raw JSON is also checked
// against the embedded package schema before unmarshaling.
func Decode(payload string) (*audit.Document, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return nil, &CorruptError{Stage: "base64", Err: fmt.Errorf("empty payload")}
	}

	compressed, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, &CorruptError{Stage: "base64", Err: err}
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, &CorruptError{Stage: "zlib", Err: err}
	}
	raw, err := io.ReadAll(zr)
	closeErr := zr.Close()
	if err != nil {
		return nil, &CorruptError{Stage: "zlib", Err: err}
	}
	if closeErr != nil {
		return nil, &CorruptError{Stage: "zlib", Err: closeErr}
	}

	if err := audit.ValidateSchema(raw); err != nil {
		return nil, &CorruptError{Stage: "schema", Err: err}
	}

	var doc audit.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &CorruptError{Stage: "json", Err: err}
	}
	return &doc, nil
}

// EstimatedSize returns the uncompressed JSON size of a document in
// bytes. It is the basis for the advisory package-size warning; the
// compressed payload is always smaller.
func EstimatedSize(d *audit.Document) (int64, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return 0, fmt.Errorf("estimate size: %w", err)
	}
	return int64(len(raw)), nil
}
