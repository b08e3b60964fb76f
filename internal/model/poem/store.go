package poem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/poem-studio/backend/internal/storage"
)

const (
	// MaxSaved caps the saved list; the oldest entries fall off the tail.
	MaxSaved = 20
	// SavedKey names the blob holding the serialized saved list.
	SavedKey = "savedPoems"
)

var (
	ErrIDRequired = errors.New("poem id is required")
	ErrNotFound   = errors.New("poem not found")
)

// Store exposes the saved-poem list.
type Store interface {
	List(ctx context.Context) []Poem
	Get(ctx context.Context, id string) (Poem, bool)
	IsSaved(ctx context.Context, id string) bool
	Save(ctx context.Context, p Poem) error
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// Library keeps the saved list as one JSON array under SavedKey and rewrites
// the whole blob on every mutation.
type Library struct {
	mu    sync.Mutex
	blobs storage.Store
	log   *logrus.Entry
}

// NewLibrary returns a Library persisting into blobs.
func NewLibrary(blobs storage.Store) *Library {
	return &Library{
		blobs: blobs,
		log:   logrus.WithField("component", "library"),
	}
}

// List returns the saved poems, newest first. A missing, unreadable or corrupt
// blob reads as an empty list: saved poems must never block the caller.
func (l *Library) List(ctx context.Context) []Poem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Get looks up a saved poem by id.
func (l *Library) Get(ctx context.Context, id string) (Poem, bool) {
	for _, p := range l.List(ctx) {
		if p.ID == id {
			return p, true
		}
	}
	return Poem{}, false
}

// IsSaved reports whether a poem with this id is in the saved list.
func (l *Library) IsSaved(ctx context.Context, id string) bool {
	_, ok := l.Get(ctx, id)
	return ok
}

// Save prepends p and truncates the list to MaxSaved. Saving an id that is
// already present leaves the list untouched.
func (l *Library) Save(ctx context.Context, p Poem) error {
	if p.ID == "" {
		return ErrIDRequired
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.load(ctx)
	for _, existing := range current {
		if existing.ID == p.ID {
			return nil
		}
	}

	updated := make([]Poem, 0, len(current)+1)
	updated = append(updated, p)
	updated = append(updated, current...)
	if len(updated) > MaxSaved {
		evicted := updated[MaxSaved:]
		updated = updated[:MaxSaved]
		l.log.WithField("evicted", len(evicted)).Debug("saved list over capacity")
	}
	return l.persist(ctx, updated)
}

// Remove drops the poem with this id; removing an unknown id is not an error.
func (l *Library) Remove(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.load(ctx)
	updated := make([]Poem, 0, len(current))
	for _, p := range current {
		if p.ID != id {
			updated = append(updated, p)
		}
	}
	return l.persist(ctx, updated)
}

// Clear empties the list and deletes the blob.
func (l *Library) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.blobs.Delete(ctx, SavedKey); err != nil {
		return fmt.Errorf("clear saved poems: %w", err)
	}
	return nil
}

func (l *Library) load(ctx context.Context) []Poem {
	raw, err := l.blobs.Get(ctx, SavedKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			l.log.WithError(err).Warn("read saved poems, treating as empty")
		}
		return []Poem{}
	}

	var poems []Poem
	if err := json.Unmarshal(raw, &poems); err != nil {
		l.log.WithError(err).Warn("saved poems blob is corrupt, treating as empty")
		return []Poem{}
	}
	if poems == nil {
		return []Poem{}
	}
	return poems
}

func (l *Library) persist(ctx context.Context, poems []Poem) error {
	raw, err := json.Marshal(poems)
	if err != nil {
		return fmt.Errorf("encode saved poems: %w", err)
	}
	if err := l.blobs.Put(ctx, SavedKey, raw); err != nil {
		return fmt.Errorf("write saved poems: %w", err)
	}
	return nil
}

// Toggle saves p when it is not yet saved and removes it otherwise, returning
// whether p is saved afterwards.
func Toggle(ctx context.Context, s Store, p Poem) (bool, error) {
	if s.IsSaved(ctx, p.ID) {
		if err := s.Remove(ctx, p.ID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := s.Save(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}
