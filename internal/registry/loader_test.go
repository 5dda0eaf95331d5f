package registry

import (
	"os"
	"path/filepath"
	"testing"

	"upscaled/pkg/types"
)

func mkModels(t *testing.T) string {
	t.Helper()
	d := t.TempDir()
	for _, p := range []string{
		"esrgan/x4/ultrasharp.onnx",
		"esrgan/x4/anime.onnx",
		"esrgan/x2/fast.onnx",
		"waifu2x/x2/noise1.onnx",
		"esrgan/x4/readme.txt",
		"esrgan/notascale/skip.onnx",
	} {
		full := filepath.Join(d, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return d
}

func TestLoadDir(t *testing.T) {
	models, err := LoadDir(mkModels(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(models) != 4 {
		t.Fatalf("expected 4 models, got %d: %+v", len(models), models)
	}
	m, ok := Find(models, "esrgan", "ultrasharp")
	if !ok {
		t.Fatalf("ultrasharp not found")
	}
	if m.Scale != 4 || m.Algo != "esrgan" {
		t.Fatalf("unexpected model: %+v", m)
	}
	if m.Path == "" || filepath.Base(m.Path) != "ultrasharp.onnx" {
		t.Fatalf("unexpected path: %q", m.Path)
	}
}

func TestLoadDirMissing(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestFindMiss(t *testing.T) {
	models := []types.ModelInfo{{Name: "a", Algo: "x", Scale: 2}}
	if _, ok := Find(models, "x", "b"); ok {
		t.Fatalf("expected miss for wrong name")
	}
	if _, ok := Find(models, "y", "a"); ok {
		t.Fatalf("expected miss for wrong algo")
	}
}

func TestGroupByAlgo(t *testing.T) {
	models := []types.ModelInfo{
		{Name: "a", Algo: "esrgan", Scale: 4},
		{Name: "b", Algo: "esrgan", Scale: 2},
		{Name: "c", Algo: "waifu2x", Scale: 2},
	}
	got := GroupByAlgo(models, "")
	if len(got) != 2 || len(got["esrgan"]) != 2 || len(got["waifu2x"]) != 1 {
		t.Fatalf("unexpected grouping: %+v", got)
	}
	only := GroupByAlgo(models, "waifu2x")
	if len(only) != 1 || only["waifu2x"][0] != "c" {
		t.Fatalf("unexpected filtered grouping: %+v", only)
	}
}
