package poem

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/zhouzirui/poem-studio/backend/internal/storage"
)

func samplePoem(i int) Poem {
	return Poem{
		ID:        fmt.Sprintf("poem_%d", i),
		Content:   fmt.Sprintf("line %d", i),
		Theme:     "theme",
		Style:     "haiku",
		Mood:      "neutral",
		CreatedAt: time.Unix(int64(i), 0).UTC(),
	}
}

func TestLibrarySaveThenRemove(t *testing.T) {
	ctx := context.Background()
	lib := NewLibrary(storage.NewMemoryStore())

	p := samplePoem(1)
	if err := lib.Save(ctx, p); err != nil {
		t.Fatalf("Save err: %v", err)
	}
	if !lib.IsSaved(ctx, p.ID) {
		t.Fatal("expected poem to be saved")
	}
	if err := lib.Remove(ctx, p.ID); err != nil {
		t.Fatalf("Remove err: %v", err)
	}
	if lib.IsSaved(ctx, p.ID) {
		t.Fatal("expected poem to be removed")
	}
	if got := lib.List(ctx); len(got) != 0 {
		t.Fatalf("expected empty list, got %d", len(got))
	}
}

func TestLibraryEvictsOldestBeyondCapacity(t *testing.T) {
	ctx := context.Background()
	lib := NewLibrary(storage.NewMemoryStore())

	for i := 1; i <= MaxSaved+1; i++ {
		if err := lib.Save(ctx, samplePoem(i)); err != nil {
			t.Fatalf("Save %d err: %v", i, err)
		}
	}

	list := lib.List(ctx)
	if len(list) != MaxSaved {
		t.Fatalf("expected %d poems, got %d", MaxSaved, len(list))
	}
	if list[0].ID != samplePoem(MaxSaved+1).ID {
		t.Fatalf("newest poem should be first, got %s", list[0].ID)
	}
	if lib.IsSaved(ctx, samplePoem(1).ID) {
		t.Fatal("oldest poem should have been evicted")
	}
}

func TestLibrarySaveDuplicateIsNoop(t *testing.T) {
	ctx := context.Background()
	lib := NewLibrary(storage.NewMemoryStore())

	p := samplePoem(1)
	_ = lib.Save(ctx, p)
	_ = lib.Save(ctx, samplePoem(2))
	if err := lib.Save(ctx, p); err != nil {
		t.Fatalf("Save err: %v", err)
	}

	list := lib.List(ctx)
	if len(list) != 2 || list[0].ID != "poem_2" {
		t.Fatalf("duplicate save changed the list: %+v", list)
	}
}

func TestLibraryCorruptBlobReadsEmpty(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemoryStore()
	_ = blobs.Put(ctx, SavedKey, []byte("{not json"))

	lib := NewLibrary(blobs)
	list := lib.List(ctx)
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %+v", list)
	}

	if err := lib.Save(ctx, samplePoem(1)); err != nil {
		t.Fatalf("Save over corrupt blob err: %v", err)
	}
	if got := lib.List(ctx); len(got) != 1 {
		t.Fatalf("expected corrupt blob to be replaced, got %d poems", len(got))
	}
}

func TestLibraryClearDeletesBlob(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemoryStore()
	lib := NewLibrary(blobs)

	_ = lib.Save(ctx, samplePoem(1))
	if err := lib.Clear(ctx); err != nil {
		t.Fatalf("Clear err: %v", err)
	}
	if got := lib.List(ctx); len(got) != 0 {
		t.Fatalf("expected empty list after clear, got %d", len(got))
	}
	if _, err := blobs.Get(ctx, SavedKey); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected blob to be deleted, got %v", err)
	}
}

func TestLibraryPreservesLineBreaks(t *testing.T) {
	ctx := context.Background()
	lib := NewLibrary(storage.NewMemoryStore())

	p := samplePoem(1)
	p.Content = "first\n\n  indented\nlast"
	_ = lib.Save(ctx, p)

	got, ok := lib.Get(ctx, p.ID)
	if !ok || got.Content != p.Content {
		t.Fatalf("content not preserved: %q", got.Content)
	}
}

func TestLibrarySaveRequiresID(t *testing.T) {
	lib := NewLibrary(storage.NewMemoryStore())
	if err := lib.Save(context.Background(), Poem{}); !errors.Is(err, ErrIDRequired) {
		t.Fatalf("expected ErrIDRequired, got %v", err)
	}
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	lib := NewLibrary(storage.NewMemoryStore())
	p := samplePoem(7)

	saved, err := Toggle(ctx, lib, p)
	if err != nil || !saved {
		t.Fatalf("first toggle should save, got saved=%v err=%v", saved, err)
	}
	saved, err = Toggle(ctx, lib, p)
	if err != nil || saved {
		t.Fatalf("second toggle should remove, got saved=%v err=%v", saved, err)
	}
}
