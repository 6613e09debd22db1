package files

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStage_RoundTrip(t *testing.T) {
	workspace := t.TempDir()
	stager := NewStager()
	content := []byte("hello, staged world")

	rec, err := stager.Stage(workspace, content, "notes.txt", "text/plain")
	if err != nil {
		t.Fatalf("stage: %v", err)
	}

	if !strings.HasPrefix(rec.ID, "file-") {
		t.Errorf("ID = %q, want file- prefix", rec.ID)
	}
	if strings.ContainsAny(strings.TrimPrefix(rec.ID, "file-"), "-_./") {
		t.Errorf("ID token contains punctuation: %q", rec.ID)
	}
	if rec.Size != int64(len(content)) {
		t.Errorf("Size = %d, want %d", rec.Size, len(content))
	}
	wantPath := filepath.Join(workspace, "files", rec.ID+"_notes.txt")
	if rec.Path != wantPath {
		t.Errorf("Path = %q, want %q", rec.Path, wantPath)
	}

	got, ok := stager.Get(rec.ID)
	if !ok {
		t.Fatal("Get after Stage returned not found")
	}
	if got.Filename != "notes.txt" {
		t.Errorf("Filename = %q, want %q", got.Filename, "notes.txt")
	}

	data, err := stager.ReadContent(rec.ID)
	if err != nil {
		t.Fatalf("read content: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("content mismatch: got %q, want %q", data, content)
	}
}

func TestStage_UniqueIDs(t *testing.T) {
	workspace := t.TempDir()
	stager := NewStager()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		rec, err := stager.Stage(workspace, []byte("x"), "a.txt", "text/plain")
		if err != nil {
			t.Fatalf("stage: %v", err)
		}
		if seen[rec.ID] {
			t.Fatalf("duplicate id %q", rec.ID)
		}
		seen[rec.ID] = true
	}
}

func TestStage_FailureLeavesNoIndexEntry(t *testing.T) {
	stager := NewStager()

	// A file where the workspace should be makes files/ creation fail.
	workspace := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(workspace, []byte("occupied"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err := stager.Stage(workspace, []byte("data"), "a.txt", "text/plain")
	if err == nil {
		t.Fatal("expected stage error")
	}

	stager.mu.Lock()
	n := len(stager.records)
	stager.mu.Unlock()
	if n != 0 {
		t.Errorf("index has %d entries after failed stage, want 0", n)
	}
}

func TestReadContent_Unknown(t *testing.T) {
	stager := NewStager()
	if _, err := stager.ReadContent("file-missing"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}

func TestReadContent_DiskGone(t *testing.T) {
	workspace := t.TempDir()
	stager := NewStager()

	rec, err := stager.Stage(workspace, []byte("data"), "a.txt", "text/plain")
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := os.Remove(rec.Path); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := stager.ReadContent(rec.ID); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	workspace := t.TempDir()
	stager := NewStager()

	rec, err := stager.Stage(workspace, []byte("data"), "a.txt", "text/plain")
	if err != nil {
		t.Fatalf("stage: %v", err)
	}

	if !stager.Delete(rec.ID) {
		t.Fatal("delete returned false for staged file")
	}
	if _, ok := stager.Get(rec.ID); ok {
		t.Error("Get after Delete found the record")
	}
	if _, err := os.Stat(rec.Path); !os.IsNotExist(err) {
		t.Error("staged bytes still on disk after delete")
	}

	// Deleting again, or deleting an unknown id, is false, not an error.
	if stager.Delete(rec.ID) {
		t.Error("second delete returned true")
	}
	if stager.Delete("file-unknown") {
		t.Error("delete of unknown id returned true")
	}
}

func TestDelete_DiskFailureKeepsIndexEntry(t *testing.T) {
	workspace := t.TempDir()
	stager := NewStager()

	rec, err := stager.Stage(workspace, []byte("data"), "a.txt", "text/plain")
	if err != nil {
		t.Fatalf("stage: %v", err)
	}

	// Replace the file with a non-empty directory so os.Remove fails.
	if err := os.Remove(rec.Path); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(rec.Path, "child"), 0755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if stager.Delete(rec.ID) {
		t.Fatal("delete reported success despite disk failure")
	}
	if _, ok := stager.Get(rec.ID); !ok {
		t.Error("index entry dropped although bytes were not removed")
	}
}

func TestToDescriptor(t *testing.T) {
	rec, err := NewStager().Stage(t.TempDir(), []byte("abc"), "doc.pdf", "application/pdf")
	if err != nil {
		t.Fatalf("stage: %v", err)
	}

	desc := ToDescriptor(rec, "")
	if desc.Purpose != "assistants" {
		t.Errorf("Purpose = %q, want default %q", desc.Purpose, "assistants")
	}
	if desc.Object != "file" {
		t.Errorf("Object = %q, want %q", desc.Object, "file")
	}
	if desc.Bytes != 3 {
		t.Errorf("Bytes = %d, want 3", desc.Bytes)
	}
	if desc.CreatedAt != rec.UploadedAt.Unix() {
		t.Errorf("CreatedAt = %d, want %d", desc.CreatedAt, rec.UploadedAt.Unix())
	}

	custom := ToDescriptor(rec, "fine-tune")
	if custom.Purpose != "fine-tune" {
		t.Errorf("Purpose = %q, want %q", custom.Purpose, "fine-tune")
	}
}

func TestToolRelativePath(t *testing.T) {
	workspace := t.TempDir()
	stager := NewStager()

	rec, err := stager.Stage(workspace, []byte("x"), "deep.txt", "text/plain")
	if err != nil {
		t.Fatalf("stage: %v", err)
	}

	got := ToolRelativePath(rec, workspace)
	if !strings.HasPrefix(got, "./") {
		t.Errorf("path %q does not start with ./", got)
	}
	want := "./files/" + rec.ID + "_deep.txt"
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}

	// Unrelatable roots still yield a ./-prefixed path.
	fallback := ToolRelativePath(Record{Path: "deep.txt"}, string([]byte{0}))
	if !strings.HasPrefix(fallback, "./") {
		t.Errorf("fallback path %q does not start with ./", fallback)
	}
}
