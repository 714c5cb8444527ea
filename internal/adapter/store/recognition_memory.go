package store

import (
	"container/list"
	"context"
	"sync"

	"artlens-core/internal/domain/entity"
)

type recognitionItem struct {
	fp    entity.Fingerprint
	entry *entity.RecognitionEntry
}

// MemoryRecognitionStore is the bounded in-memory fingerprint index. Entries
// are evicted least-recently-used once capacity is exceeded; eviction runs as
// part of write maintenance, never inside Lookup.
type MemoryRecognitionStore struct {
	mu        sync.Mutex
	capacity  int
	items     map[entity.Fingerprint]*list.Element
	byArtwork map[string]entity.Fingerprint
	order     *list.List // front = most recently used
}

func NewMemoryRecognitionStore(capacity int) *MemoryRecognitionStore {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryRecognitionStore{
		capacity:  capacity,
		items:     make(map[entity.Fingerprint]*list.Element),
		byArtwork: make(map[string]entity.Fingerprint),
		order:     list.New(),
	}
}

func (s *MemoryRecognitionStore) Lookup(_ context.Context, fp entity.Fingerprint) (*entity.RecognitionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[fp]
	if !ok {
		return nil, entity.ErrNotFound
	}
	s.order.MoveToFront(el)
	return el.Value.(*recognitionItem).entry, nil
}

func (s *MemoryRecognitionStore) FindByArtwork(_ context.Context, artworkID string) (*entity.RecognitionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fp, ok := s.byArtwork[artworkID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	el, ok := s.items[fp]
	if !ok {
		return nil, entity.ErrNotFound
	}
	s.order.MoveToFront(el)
	return el.Value.(*recognitionItem).entry, nil
}

// Put stores the entry unless one already exists for the fingerprint. The
// returned bool reports whether this call was the accepted writer.
func (s *MemoryRecognitionStore) Put(_ context.Context, fp entity.Fingerprint, e *entity.RecognitionEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[fp]; ok {
		return false, nil
	}
	el := s.order.PushFront(&recognitionItem{fp: fp, entry: e})
	s.items[fp] = el
	s.byArtwork[e.Artwork.ID] = fp

	for s.order.Len() > s.capacity {
		s.evictOldest()
	}
	return true, nil
}

func (s *MemoryRecognitionStore) evictOldest() {
	back := s.order.Back()
	if back == nil {
		return
	}
	item := back.Value.(*recognitionItem)
	s.order.Remove(back)
	delete(s.items, item.fp)
	delete(s.byArtwork, item.entry.Artwork.ID)
}

// Len reports the current entry count, for maintenance endpoints and tests.
func (s *MemoryRecognitionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
