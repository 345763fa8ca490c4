package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"server/internal/generation"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(Options{
		ContentDir:   filepath.Join(dir, "images"),
		MetadataFile: filepath.Join(dir, "generations.json"),
		RoutePrefix:  "/images",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return s
}

func TestNewSeedsEmptyMetadataLog(t *testing.T) {
	s := newTestStore(t)

	data, err := os.ReadFile(s.metadataFile)
	if err != nil {
		t.Fatalf("metadata log not created: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "[]" {
		t.Fatalf("metadata log not seeded empty: %q", got)
	}
	if records := s.List(); len(records) != 0 {
		t.Fatalf("fresh store lists %d records", len(records))
	}
}

func TestPersistAppendsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	settings := generation.SettingsUsed{}

	var ids []string
	for _, prompt := range []string{"first", "second", "third"} {
		record, err := s.Persist([]byte(prompt+"-bytes"), "image/png", settings, prompt)
		if err != nil {
			t.Fatalf("Persist returned error: %v", err)
		}
		ids = append(ids, record.GenerationID)
	}

	records := s.List()
	if len(records) != 3 {
		t.Fatalf("record count mismatch: got %d want 3", len(records))
	}
	if records[0].PromptUsed != "third" || records[2].PromptUsed != "first" {
		t.Fatalf("records not newest first: %q, %q, %q",
			records[0].PromptUsed, records[1].PromptUsed, records[2].PromptUsed)
	}

	seen := make(map[string]struct{})
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate generation id %q", id)
		}
		seen[id] = struct{}{}
	}

	for _, record := range records {
		if record.Status != "completed" {
			t.Fatalf("status mismatch: got %q", record.Status)
		}
		if !strings.HasPrefix(record.ImagePath, "/images/") {
			t.Fatalf("image path missing route prefix: %q", record.ImagePath)
		}
		name := strings.TrimPrefix(record.ImagePath, "/images/")
		if !strings.HasSuffix(name, ".png") {
			t.Fatalf("image path missing extension: %q", record.ImagePath)
		}
		if _, err := os.Stat(filepath.Join(s.contentDir, name)); err != nil {
			t.Fatalf("image file missing for %q: %v", record.ImagePath, err)
		}
	}
}

func TestPersistSurvivesMalformedMetadataLog(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.metadataFile, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("failed to corrupt metadata log: %v", err)
	}

	record, err := s.Persist([]byte("bytes"), "image/jpeg", generation.SettingsUsed{}, "prompt")
	if err != nil {
		t.Fatalf("Persist returned error on malformed log: %v", err)
	}

	records := s.List()
	if len(records) != 1 {
		t.Fatalf("record count mismatch: got %d want 1", len(records))
	}
	if records[0].GenerationID != record.GenerationID {
		t.Fatalf("record id mismatch")
	}
	if !strings.HasSuffix(records[0].ImagePath, ".jpg") {
		t.Fatalf("jpeg media type should store as .jpg: %q", records[0].ImagePath)
	}
}

func TestPersistKeepsSettingsVerbatim(t *testing.T) {
	s := newTestStore(t)
	settings := generation.SettingsUsed{
		Model:       generation.ModelAttributes{Gender: "Male", BodyType: "Athletic"},
		Environment: generation.EnvironmentAttributes{BackgroundPreset: "beach", Weather: "Clear"},
	}

	if _, err := s.Persist([]byte("bytes"), "image/webp", settings, "prompt"); err != nil {
		t.Fatalf("Persist returned error: %v", err)
	}

	records := s.List()
	if len(records) != 1 {
		t.Fatalf("record count mismatch: got %d", len(records))
	}
	if records[0].SettingsUsed != settings {
		t.Fatalf("settings not persisted verbatim: %+v", records[0].SettingsUsed)
	}
}

func TestPersistLeavesNoPartialFiles(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Persist([]byte("bytes"), "image/png", generation.SettingsUsed{}, "p"); err != nil {
		t.Fatalf("Persist returned error: %v", err)
	}

	entries, err := os.ReadDir(s.contentDir)
	if err != nil {
		t.Fatalf("read content dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".upload-") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}
