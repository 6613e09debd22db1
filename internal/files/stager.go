// Package files stages uploaded bytes into a session workspace and answers
// later lookups by a stable file id.
package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrFileNotFound is returned when an id is unindexed or its bytes cannot
// be read back; callers cannot distinguish the two.
var ErrFileNotFound = errors.New("files: file not found")

// filesDir is the workspace subdirectory owned by the stager.
const filesDir = "files"

// idPrefix is the fixed prefix of every file id.
const idPrefix = "file-"

// Record describes one staged file.
type Record struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Path        string    `json:"path"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// Descriptor is the externally stable file representation, shaped like the
// OpenAI files API object.
type Descriptor struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	Bytes     int64  `json:"bytes"`
	CreatedAt int64  `json:"created_at"`
	Filename  string `json:"filename"`
	Purpose   string `json:"purpose"`
}

// Stager owns the in-memory index of staged files. The underlying bytes
// live on disk and are removed only through Delete.
type Stager struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewStager creates an empty stager.
func NewStager() *Stager {
	return &Stager{records: make(map[string]Record)}
}

// newID generates a file id: the fixed prefix plus a random token with
// punctuation stripped. Ids are filename-safe.
func newID() string {
	return idPrefix + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Stage writes data under the workspace's files/ directory and indexes the
// resulting record. On any failure no index entry is left behind.
func (s *Stager) Stage(workspace string, data []byte, filename, contentType string) (Record, error) {
	dir := filepath.Join(workspace, filesDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Record{}, fmt.Errorf("creating files directory: %w", err)
	}

	rec := Record{
		ID:          newID(),
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedAt:  time.Now(),
	}
	rec.Path = filepath.Join(dir, rec.ID+"_"+filename)

	if err := os.WriteFile(rec.Path, data, 0644); err != nil {
		return Record{}, fmt.Errorf("writing staged file: %w", err)
	}

	s.mu.Lock()
	s.records[rec.ID] = rec
	s.mu.Unlock()

	return rec, nil
}

// Get returns the indexed record for id. No I/O.
func (s *Stager) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	return rec, ok
}

// ReadContent reads the staged bytes for id from disk.
func (s *Stager) ReadContent(id string) ([]byte, error) {
	rec, ok := s.Get(id)
	if !ok {
		return nil, ErrFileNotFound
	}

	data, err := os.ReadFile(rec.Path)
	if err != nil {
		return nil, ErrFileNotFound
	}
	return data, nil
}

// Delete removes the on-disk file and the index entry. Returns false if the
// id is unknown or the disk delete fails; the index entry is dropped only
// once the bytes are gone.
func (s *Stager) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return false
	}
	if err := os.Remove(rec.Path); err != nil {
		return false
	}
	delete(s.records, id)
	return true
}

// ToDescriptor produces the external file descriptor. Purpose defaults to
// "assistants". Pure transform, no I/O.
func ToDescriptor(rec Record, purpose string) Descriptor {
	if purpose == "" {
		purpose = "assistants"
	}
	return Descriptor{
		ID:        rec.ID,
		Object:    "file",
		Bytes:     rec.Size,
		CreatedAt: rec.UploadedAt.Unix(),
		Filename:  rec.Filename,
		Purpose:   purpose,
	}
}

// ToolRelativePath computes the path the external tool should use to
// reference the file from inside workspaceRoot, always prefixed with "./"
// for unambiguous relative-path semantics in shell arguments.
func ToolRelativePath(rec Record, workspaceRoot string) string {
	rel, err := filepath.Rel(workspaceRoot, rec.Path)
	if err != nil {
		rel = filepath.Join(filesDir, filepath.Base(rec.Path))
	}
	return "./" + filepath.ToSlash(rel)
}
