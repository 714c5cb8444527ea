package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"artlens-core/internal/domain/entity"
)

// RedisRecognitionStore is the durable fingerprint index. SetNX gives the
// first-writer-wins guarantee atomically on the server; bounded size is
// delegated to the redis maxmemory-policy (allkeys-lru in deployment).
type RedisRecognitionStore struct {
	client *redis.Client
}

func NewRedisRecognitionStore(client *redis.Client) *RedisRecognitionStore {
	return &RedisRecognitionStore{client: client}
}

func recognitionKey(fp entity.Fingerprint) string { return "recognition:fp:" + string(fp) }
func artworkIndexKey(artworkID string) string     { return "recognition:artwork:" + artworkID }

func (s *RedisRecognitionStore) Lookup(ctx context.Context, fp entity.Fingerprint) (*entity.RecognitionEntry, error) {
	raw, err := s.client.Get(ctx, recognitionKey(fp)).Result()
	if err == redis.Nil {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, err)
	}
	var e entity.RecognitionEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, fmt.Errorf("%w: corrupt entry: %v", entity.ErrStoreUnavailable, err)
	}
	return &e, nil
}

func (s *RedisRecognitionStore) FindByArtwork(ctx context.Context, artworkID string) (*entity.RecognitionEntry, error) {
	fp, err := s.client.Get(ctx, artworkIndexKey(artworkID)).Result()
	if err == redis.Nil {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, err)
	}
	return s.Lookup(ctx, entity.Fingerprint(fp))
}

func (s *RedisRecognitionStore) Put(ctx context.Context, fp entity.Fingerprint, e *entity.RecognitionEntry) (bool, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return false, fmt.Errorf("marshal recognition entry: %w", err)
	}
	written, err := s.client.SetNX(ctx, recognitionKey(fp), raw, 0).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, err)
	}
	if !written {
		return false, nil
	}
	// The entry is already committed at this point. If the index write fails
	// the entry stays reachable by fingerprint (dedup intact) but not via
	// FindByArtwork; the caller sees written=true plus the error and is
	// expected to log the degraded state.
	if err := s.client.Set(ctx, artworkIndexKey(e.Artwork.ID), string(fp), 0).Err(); err != nil {
		return true, fmt.Errorf("%w: artwork index write: %v", entity.ErrStoreUnavailable, err)
	}
	return true, nil
}
