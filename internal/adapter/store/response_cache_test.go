package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artlens-core/internal/domain/entity"
)

func sigFor(artworkID string, kind entity.ContentKind) entity.ContentSignature {
	return entity.ContentSignature{ArtworkID: artworkID, Kind: kind, UserID: "user-1"}
}

func contentFor(kind entity.ContentKind, text string) *entity.GeneratedContent {
	return &entity.GeneratedContent{Kind: kind, Text: text}
}

func TestResponseCacheTTLBoundary(t *testing.T) {
	c := NewMemoryResponseCache(8)
	base := time.Now()
	now := base
	c.now = func() time.Time { return now }

	sig := sigFor("art-1", entity.KindDescription)
	require.NoError(t, c.Put(context.Background(), sig, contentFor(entity.KindDescription, "hello"), 30*time.Minute))

	now = base.Add(29*time.Minute + 59*time.Second)
	got, err := c.Get(context.Background(), sig)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)

	now = base.Add(30*time.Minute + 1*time.Second)
	_, err = c.Get(context.Background(), sig)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestResponseCacheLastWriterWins(t *testing.T) {
	c := NewMemoryResponseCache(8)
	ctx := context.Background()
	sig := sigFor("art-1", entity.KindDescription)

	require.NoError(t, c.Put(ctx, sig, contentFor(entity.KindDescription, "first"), time.Hour))
	require.NoError(t, c.Put(ctx, sig, contentFor(entity.KindDescription, "second"), time.Hour))

	got, err := c.Get(ctx, sig)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Text)
}

func TestResponseCacheHotKindCannotStarveOthers(t *testing.T) {
	// Capacity 4 means one slot per kind.
	c := NewMemoryResponseCache(4)
	ctx := context.Background()

	bioSig := sigFor("art-1", entity.KindArtistBio)
	require.NoError(t, c.Put(ctx, bioSig, contentFor(entity.KindArtistBio, "bio"), time.Hour))

	// A flood of descriptions churns only the description shard.
	for i := 0; i < 20; i++ {
		sig := sigFor(fmt.Sprintf("art-%d", i), entity.KindDescription)
		require.NoError(t, c.Put(ctx, sig, contentFor(entity.KindDescription, "desc"), time.Hour))
	}

	got, err := c.Get(ctx, bioSig)
	require.NoError(t, err)
	assert.Equal(t, "bio", got.Text)
}

func TestResponseCacheDistinctSignatures(t *testing.T) {
	c := NewMemoryResponseCache(16)
	ctx := context.Background()

	base := sigFor("art-1", entity.KindDescription)
	otherUser := base
	otherUser.UserID = "user-2"

	require.NoError(t, c.Put(ctx, base, contentFor(entity.KindDescription, "for user-1"), time.Hour))
	_, err := c.Get(ctx, otherUser)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
