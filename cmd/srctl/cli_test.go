package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	root := buildRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--server", srv.URL))
	err := root.Execute()
	return out.String(), err
}

func TestModelsCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"esrgan":["a"]}`))
	}))
	defer srv.Close()
	out, err := execute(t, srv, "models")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "esrgan") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestTaskCommandNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"task not found","code":404}`))
	}))
	defer srv.Close()
	if _, err := execute(t, srv, "task", "nope"); err == nil {
		t.Fatalf("expected error for 404 response")
	}
}

func TestRunCommandPostsMultipart(t *testing.T) {
	var gotModel, gotScale string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotModel = r.FormValue("model")
		gotScale = r.FormValue("scale")
		if _, _, err := r.FormFile("image"); err != nil {
			t.Errorf("image missing: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status":"success","id":"j1"}`))
	}))
	defer srv.Close()

	img := filepath.Join(t.TempDir(), "in.png")
	if err := os.WriteFile(img, []byte("data"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := execute(t, srv, "run", img, "--model", "esrgan:sharp", "--scale", "8")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotModel != "esrgan:sharp" || gotScale != "8" {
		t.Fatalf("form not forwarded: model=%q scale=%q", gotModel, gotScale)
	}
	if !strings.Contains(out, "j1") {
		t.Fatalf("unexpected output: %q", out)
	}
}
