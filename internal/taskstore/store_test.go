package taskstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"upscaled/pkg/types"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return s
}

func TestCreateGetUpdate(t *testing.T) {
	s := newStore(t)
	rec := types.TaskRecord{Status: "processing", ID: "j1", Model: "m", Algo: "a", Scale: 4, Input: "cat.png"}
	if err := s.Create("j1", rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := s.Get("j1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "processing" || got.Model != "m" || got.Scale != 4 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if err := s.Update("j1", func(r *types.TaskRecord) {
		r.Status = "finished"
		r.OutputURL = "http://x/static/j1/output.png"
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = s.Get("j1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Status != "finished" || got.OutputURL == "" {
		t.Fatalf("update not reflected: %+v", got)
	}
	// Fields not touched by the mutation survive the rewrite.
	if got.Input != "cat.png" || got.Algo != "a" {
		t.Fatalf("fields lost on update: %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := newStore(t)
	_, err := s.Get("nope")
	if err == nil || !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestCreateRefusesExisting(t *testing.T) {
	s := newStore(t)
	if err := s.Create("dup", types.TaskRecord{ID: "dup"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create("dup", types.TaskRecord{ID: "dup"}); err == nil {
		t.Fatalf("expected error on duplicate create")
	}
}

func TestUpdateMissing(t *testing.T) {
	s := newStore(t)
	err := s.Update("ghost", func(r *types.TaskRecord) { r.Status = "finished" })
	if err == nil || !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestSaveInputNormalizesName(t *testing.T) {
	s := newStore(t)
	p, err := s.SaveInput("j2", "My Photo.JPEG", strings.NewReader("imgdata"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(p) != "input.jpeg" {
		t.Fatalf("unexpected input name: %s", p)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "imgdata" {
		t.Fatalf("input content mismatch: %q err=%v", b, err)
	}
}

func TestSaveInputRejectsMissingExt(t *testing.T) {
	s := newStore(t)
	if _, err := s.SaveInput("j3", "noext", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for missing extension")
	}
}

func TestNoTempLeftBehind(t *testing.T) {
	s := newStore(t)
	if err := s.Create("j4", types.TaskRecord{ID: "j4", Status: "processing"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	entries, err := os.ReadDir(s.JobDir("j4"))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "meta.json" {
		t.Fatalf("unexpected dir contents: %v", entries)
	}
}
