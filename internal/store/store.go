// Package store persists generated images to a local content directory and
// keeps an append-only JSON metadata log of completed generations.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"server/internal/datauri"
	"server/internal/generation"
	"server/internal/infra"
)

// Options configures where the store keeps image bytes and metadata.
type Options struct {
	ContentDir   string
	MetadataFile string
	RoutePrefix  string
	Logger       *infra.Logger
}

// Store writes image files under ContentDir and prepends one record per
// generation to the metadata log. The image write is the authoritative side
// effect; the log update is best-effort bookkeeping. Log writes are
// serialized behind an in-process mutex so concurrent generations cannot
// lose each other's records within a single instance.
type Store struct {
	mu           sync.Mutex
	contentDir   string
	metadataFile string
	routePrefix  string
	logger       *infra.Logger
}

// New initializes the content directory and seeds the metadata log with an
// empty array when it does not exist yet.
func New(opts Options) (*Store, error) {
	if opts.ContentDir == "" {
		return nil, errors.New("store: content directory is required")
	}
	if opts.MetadataFile == "" {
		return nil, errors.New("store: metadata file is required")
	}
	if err := os.MkdirAll(opts.ContentDir, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure content directory: %w", err)
	}
	if dir := filepath.Dir(opts.MetadataFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: ensure metadata directory: %w", err)
		}
	}
	if _, err := os.Stat(opts.MetadataFile); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(opts.MetadataFile, []byte("[]\n"), 0o644); err != nil {
			return nil, fmt.Errorf("store: seed metadata log: %w", err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Store{
		contentDir:   opts.ContentDir,
		metadataFile: opts.MetadataFile,
		routePrefix:  opts.RoutePrefix,
		logger:       logger,
	}, nil
}

// Persist writes the image bytes under a fresh identifier and records the
// generation in the metadata log. A failed image write is returned as an
// error; a failed log update is logged and swallowed, because the image on
// disk is already the durable result the caller was promised.
func (s *Store) Persist(image []byte, mediaType string, settings generation.SettingsUsed, prompt string) (generation.Record, error) {
	id := uuid.NewString()
	filename := id + "." + datauri.Extension(mediaType)

	if err := s.writeImage(filename, image); err != nil {
		return generation.Record{}, fmt.Errorf("store: write image: %w", err)
	}

	record := generation.Record{
		GenerationID: id,
		CreatedAt:    time.Now().UTC(),
		SettingsUsed: settings,
		PromptUsed:   prompt,
		ImagePath:    s.routePrefix + "/" + filename,
		Status:       "completed",
	}

	if err := s.appendRecord(record); err != nil {
		s.logger.Warn().
			Err(err).
			Str("generation_id", id).
			Msg("store: failed to update metadata log")
	}
	return record, nil
}

// List returns the metadata log, newest first.
func (s *Store) List() []generation.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// writeImage stages the bytes in a temp file and renames it into place so a
// failed write never leaves a partial file behind a recorded path.
func (s *Store) writeImage(filename string, data []byte) error {
	tmp, err := os.CreateTemp(s.contentDir, ".upload-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, filepath.Join(s.contentDir, filename)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (s *Store) appendRecord(record generation.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := append([]generation.Record{record}, s.readLocked()...)
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.metadataFile, data, 0o644)
}

// readLocked loads the log, treating a missing file as empty and a malformed
// one as empty with a warning. Callers must hold s.mu.
func (s *Store) readLocked() []generation.Record {
	data, err := os.ReadFile(s.metadataFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn().Err(err).Msg("store: failed to read metadata log")
		}
		return nil
	}
	var records []generation.Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn().Err(err).Msg("store: metadata log is malformed, treating as empty")
		return nil
	}
	return records
}
