package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	poemModel "github.com/zhouzirui/poem-studio/backend/internal/model/poem"
	"github.com/zhouzirui/poem-studio/backend/internal/storage"
)

func seedLibrary(t *testing.T, dir string, poems ...poemModel.Poem) {
	t.Helper()
	blobs, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore err: %v", err)
	}
	lib := poemModel.NewLibrary(blobs)
	for _, p := range poems {
		if err := lib.Save(context.Background(), p); err != nil {
			t.Fatalf("Save err: %v", err)
		}
	}
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSavedListExportAndClear(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("POEM_STORE", "file")
	t.Setenv("POEM_STORE_PATH", filepath.Join(dir, "store"))

	out, err := runCmd(t, "saved", "list")
	if err != nil {
		t.Fatalf("saved list err: %v", err)
	}
	if !strings.Contains(out, "no saved poems") {
		t.Fatalf("unexpected output: %s", out)
	}

	p := poemModel.Poem{
		ID:        "poem_1",
		Content:   "Waves crash gently\nMoonlight dances on the foam",
		Theme:     "ocean waves",
		Style:     "haiku",
		Mood:      "peaceful",
		CreatedAt: time.Now().Add(-time.Hour),
	}
	seedLibrary(t, filepath.Join(dir, "store"), p)

	out, err = runCmd(t, "saved", "list")
	if err != nil {
		t.Fatalf("saved list err: %v", err)
	}
	if !strings.Contains(out, "poem_1") || !strings.Contains(out, "1 hour ago") {
		t.Fatalf("unexpected list output: %s", out)
	}

	out, err = runCmd(t, "export", "poem_1", "--out", dir)
	if err != nil {
		t.Fatalf("export err: %v", err)
	}
	written, err := os.ReadFile(filepath.Join(dir, "poem-ocean-waves.txt"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(written), "Theme: ocean waves") {
		t.Fatalf("unexpected export: %s", written)
	}

	if _, err := runCmd(t, "saved", "clear"); err != nil {
		t.Fatalf("saved clear err: %v", err)
	}
	out, _ = runCmd(t, "saved", "list")
	if !strings.Contains(out, "no saved poems") {
		t.Fatalf("expected empty list after clear: %s", out)
	}
}

func TestExportMissingPoem(t *testing.T) {
	t.Setenv("POEM_STORE", "memory")
	if _, err := runCmd(t, "export", "missing"); err == nil {
		t.Fatal("expected error for missing poem")
	}
}

func TestPreview(t *testing.T) {
	if got := preview("a\nb  c", 40); got != "a b c" {
		t.Fatalf("unexpected preview: %q", got)
	}
	if got := preview("abcdef", 3); got != "abc..." {
		t.Fatalf("unexpected truncated preview: %q", got)
	}
}
