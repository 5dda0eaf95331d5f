// Package taskstore persists one durable record per job under the data
// directory: <dir>/<id>/ holds the normalized input image, the produced
// output image and a meta.json record.
package taskstore

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"upscaled/internal/common/fsutil"
	"upscaled/pkg/types"
)

const metaFile = "meta.json"

// notFoundError signals a missing job record (mapped to 404).
type notFoundError struct{ id string }

func (e notFoundError) Error() string { return "task not found: " + e.id }

// IsNotFound reports whether err indicates a missing job record.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}

// Store reads and writes per-job records. Records are whole-file replaced
// via a temp file and rename, so a crash mid-write never leaves a partially
// written meta.json behind.
type Store struct {
	base string
}

// New returns a Store rooted at dir, creating it when absent.
func New(dir string) (*Store, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{base: abs}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.base }

// JobDir returns the directory belonging to one job id.
func (s *Store) JobDir(id string) string { return filepath.Join(s.base, id) }

// OutputPath returns the path the produced image is written to.
func (s *Store) OutputPath(id string) string {
	return filepath.Join(s.base, id, "output.png")
}

// OutputRel returns the output path relative to the store root, with
// forward slashes, for building public URLs.
func (s *Store) OutputRel(id string) string { return id + "/output.png" }

// SaveInput creates the job directory and stores the upload normalized to
// input.<ext>, keeping only the original file's extension.
func (s *Store) SaveInput(id, originalName string, r io.Reader) (string, error) {
	dir := s.JobDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create job dir: %w", err)
	}
	ext := fsutil.Ext(originalName)
	if ext == "" {
		return "", fmt.Errorf("missing file extension: %s", originalName)
	}
	path := filepath.Join(dir, "input."+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create input file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("write input file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close input file: %w", err)
	}
	return path, nil
}

// Create writes the initial record for a fresh job id. Ids are generated
// per job; an existing record for the same id is refused rather than merged.
func (s *Store) Create(id string, rec types.TaskRecord) error {
	if err := os.MkdirAll(s.JobDir(id), 0o755); err != nil {
		return fmt.Errorf("create job dir: %w", err)
	}
	meta := filepath.Join(s.JobDir(id), metaFile)
	if fsutil.PathExists(meta) {
		return fmt.Errorf("record already exists for job %s", id)
	}
	return s.write(id, rec)
}

// Update applies mutate to the existing record and replaces it on disk.
func (s *Store) Update(id string, mutate func(*types.TaskRecord)) error {
	rec, err := s.Get(id)
	if err != nil {
		return err
	}
	mutate(&rec)
	return s.write(id, rec)
}

// Get loads the record for id, or a not-found error.
func (s *Store) Get(id string) (types.TaskRecord, error) {
	var rec types.TaskRecord
	b, err := os.ReadFile(filepath.Join(s.JobDir(id), metaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return rec, notFoundError{id: id}
		}
		return rec, fmt.Errorf("read record: %w", err)
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, fmt.Errorf("decode record %s: %w", id, err)
	}
	return rec, nil
}

func (s *Store) write(id string, rec types.TaskRecord) error {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	dir := s.JobDir(id)
	tmp, err := os.CreateTemp(dir, metaFile+".*")
	if err != nil {
		return fmt.Errorf("temp record: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close record: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, metaFile)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace record: %w", err)
	}
	return nil
}
