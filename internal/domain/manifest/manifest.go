// Package manifest describes the JSON document that lists a vault's message and
// files, and how it is read back from older writers.
package manifest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
)

const (
	DefaultFileType = "application/octet-stream"
	DefaultFileName = "file"
)

// FileRef points at one uploaded file.
type FileRef struct {
	CID  string `json:"cid"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Manifest is the document stored at a vault's content id.
// An empty manifest (no message, no files) is valid.
type Manifest struct {
	Message *string   `json:"message,omitempty"`
	Files   []FileRef `json:"files,omitempty"`
}

// wire accepts both the current shape and the single-file shape with a
// top-level fileCid.
type wire struct {
	Message  *string   `json:"message"`
	Files    []FileRef `json:"files"`
	FileCID  *string   `json:"fileCid"`
	FileName string    `json:"fileName"`
	FileType string    `json:"mimeType"`
}

// New builds a manifest. An empty message is dropped.
func New(message string, files []FileRef) Manifest {
	m := Manifest{Files: normalizeFiles(files)}
	if message != "" {
		m.Message = &message
	}
	return m
}

// IsEmpty reports whether the manifest carries neither message nor files.
func (m Manifest) IsEmpty() bool {
	return (m.Message == nil || *m.Message == "") && len(m.Files) == 0
}

// Text returns the message or "".
func (m Manifest) Text() string {
	if m.Message == nil {
		return ""
	}
	return *m.Message
}

// Encode serializes the manifest in the current shape. fileCid is never written.
func Encode(m Manifest) ([]byte, error) {
	out := Manifest{Message: m.Message, Files: normalizeFiles(m.Files)}
	if out.Message != nil && *out.Message == "" {
		out.Message = nil
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return data, nil
}

// Decode parses manifest bytes in any supported shape.
func Decode(data []byte) (Manifest, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", errs.ErrCorruptManifest)
	}

	return fromWire(w)
}

// FromValue converts an already decoded JSON value, e.g. the plaintext of an
// encrypted manifest, into a Manifest.
func FromValue(v any) (Manifest, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", errs.ErrCorruptManifest)
	}
	return Decode(data)
}

func fromWire(w wire) (Manifest, error) {
	m := Manifest{Message: w.Message}
	if m.Message != nil && *m.Message == "" {
		m.Message = nil
	}

	for _, f := range w.Files {
		if strings.TrimSpace(f.CID) == "" {
			return Manifest{}, fmt.Errorf("decode manifest: file without cid: %w", errs.ErrCorruptManifest)
		}
		m.Files = append(m.Files, f)
	}

	if len(m.Files) == 0 && w.FileCID != nil && *w.FileCID != "" {
		m.Files = []FileRef{{CID: *w.FileCID, Name: w.FileName, Type: w.FileType}}
	}

	m.Files = normalizeFiles(m.Files)
	return m, nil
}

func normalizeFiles(files []FileRef) []FileRef {
	if len(files) == 0 {
		return nil
	}

	out := make([]FileRef, len(files))
	for i, f := range files {
		if f.Name == "" {
			f.Name = DefaultFileName
		}
		if f.Type == "" {
			f.Type = DefaultFileType
		}
		out[i] = f
	}
	return out
}
