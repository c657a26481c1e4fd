package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"diary-service/internal/domain"
)

// DiaryStore persists diary entries. The (user, movie) pair is a unique key.
type DiaryStore interface {
	Exists(ctx context.Context, userID, movieID int64) (bool, error)
	// Insert stores the entry unless the pair already exists, in which case it
	// returns ErrDuplicateEntry. On success entry.ID is set.
	Insert(ctx context.Context, entry *domain.DiaryEntry) error
	GetByID(ctx context.Context, entryID int64) (*domain.DiaryEntry, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.DiaryEntry, error)
	UpdateStatus(ctx context.Context, entryID int64, status domain.Status) (bool, error)
	UpdateRating(ctx context.Context, entryID int64, rating *int) (bool, error)
	UpdateReview(ctx context.Context, entryID int64, review string) (bool, error)
}

type pairKey struct {
	userID  int64
	movieID int64
}

// MemoryDiaryStore keeps diary entries in memory. Check and insert happen
// under one lock.
type MemoryDiaryStore struct {
	mu      sync.RWMutex
	nextID  int64
	entries map[int64]*domain.DiaryEntry
	pairs   map[pairKey]int64
}

// NewMemoryDiaryStore creates an empty MemoryDiaryStore.
func NewMemoryDiaryStore() *MemoryDiaryStore {
	return &MemoryDiaryStore{
		entries: make(map[int64]*domain.DiaryEntry),
		pairs:   make(map[pairKey]int64),
	}
}

func (m *MemoryDiaryStore) Exists(ctx context.Context, userID, movieID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.pairs[pairKey{userID, movieID}]
	return ok, nil
}

func (m *MemoryDiaryStore) Insert(ctx context.Context, entry *domain.DiaryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey{entry.UserID, entry.MovieID}
	if _, ok := m.pairs[key]; ok {
		return ErrDuplicateEntry
	}
	m.nextID++
	entry.ID = m.nextID
	m.entries[entry.ID] = copyEntry(entry)
	m.pairs[key] = entry.ID
	return nil
}

func (m *MemoryDiaryStore) GetByID(ctx context.Context, entryID int64) (*domain.DiaryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if entry, ok := m.entries[entryID]; ok {
		return copyEntry(entry), nil
	}
	return nil, ErrEntryNotFound
}

// ListByUser returns entries ordered by ID.
func (m *MemoryDiaryStore) ListByUser(ctx context.Context, userID int64) ([]*domain.DiaryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*domain.DiaryEntry{}
	for _, entry := range m.entries {
		if entry.UserID == userID {
			out = append(out, copyEntry(entry))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryDiaryStore) UpdateStatus(ctx context.Context, entryID int64, status domain.Status) (bool, error) {
	return m.update(entryID, func(e *domain.DiaryEntry) { e.Status = status })
}

func (m *MemoryDiaryStore) UpdateRating(ctx context.Context, entryID int64, rating *int) (bool, error) {
	return m.update(entryID, func(e *domain.DiaryEntry) { e.Rating = copyRating(rating) })
}

func (m *MemoryDiaryStore) UpdateReview(ctx context.Context, entryID int64, review string) (bool, error) {
	return m.update(entryID, func(e *domain.DiaryEntry) { e.Review = review })
}

func (m *MemoryDiaryStore) update(entryID int64, apply func(*domain.DiaryEntry)) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[entryID]
	if !ok {
		return false, nil
	}
	apply(entry)
	entry.UpdatedAt = time.Now().UTC()
	return true, nil
}

func copyEntry(e *domain.DiaryEntry) *domain.DiaryEntry {
	c := *e
	c.Rating = copyRating(e.Rating)
	return &c
}

func copyRating(r *int) *int {
	if r == nil {
		return nil
	}
	v := *r
	return &v
}
