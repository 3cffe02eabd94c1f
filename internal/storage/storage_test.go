package storage

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-guildbuilder/internal/blueprint"
)

func sampleBlueprint(t *testing.T) *blueprint.Blueprint {
	t.Helper()
	bp, err := blueprint.Parse([]byte(`{
		"roles": [{"name": "Admin"}],
		"categories": {"Zeta": [{"name": "z"}], "Alpha": [{"name": "a"}]}
	}`))
	require.NoError(t, err)
	return bp
}

func stores(t *testing.T) map[string]Store {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "builder.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return map[string]Store{
		"sqlite": db,
		"memory": NewMemory(),
	}
}

func TestStoreBlueprints(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.LoadBlueprint(ctx, "g1")
			assert.ErrorIs(t, err, ErrNoBlueprint)

			require.NoError(t, s.SaveBlueprint(ctx, "g1", sampleBlueprint(t)))
			got, err := s.LoadBlueprint(ctx, "g1")
			require.NoError(t, err)
			require.Len(t, got.Categories, 2)
			assert.Equal(t, "Zeta", got.Categories[0].Name)
			assert.Equal(t, "Alpha", got.Categories[1].Name)
		})
	}
}

func TestStoreBuildsAndUsage(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.LastBuild(ctx, "g1")
			assert.ErrorIs(t, err, ErrNotFound)

			first := NewBuildRecord("g1", "build", BuildMetrics{BuildSeconds: 1.5, CategoryCount: 2, ChannelCount: 3, RoleCount: 1})
			second := NewBuildRecord("g1", "reapply", BuildMetrics{BuildSeconds: 0.5, CategoryCount: 1, ChannelCount: 1, RoleCount: 1})
			assert.NotEqual(t, first.ID, second.ID)

			for _, rec := range []BuildRecord{first, second} {
				require.NoError(t, s.SaveBuild(ctx, rec))
				require.NoError(t, s.AppendUsage(ctx, rec))
			}
			require.NoError(t, s.AppendUsage(ctx, NewBuildRecord("g2", "build", BuildMetrics{})))

			last, err := s.LastBuild(ctx, "g1")
			require.NoError(t, err)
			assert.Equal(t, second.ID, last.ID)
			assert.Equal(t, second.Metrics, last.Metrics)

			usage, err := s.Usage(ctx, "g1", 0)
			require.NoError(t, err)
			require.Len(t, usage, 2)
			assert.Equal(t, second.ID, usage[0].ID)
			assert.Equal(t, first.ID, usage[1].ID)

			limited, err := s.Usage(ctx, "g1", 1)
			require.NoError(t, err)
			assert.Len(t, limited, 1)

			count, err := s.UsageCount(ctx)
			require.NoError(t, err)
			assert.Equal(t, 3, count)
		})
	}
}

func TestStoreTemplates(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.LoadTemplate(ctx, "gaming")
			assert.ErrorIs(t, err, ErrNotFound)

			doc, err := blueprint.Marshal(sampleBlueprint(t))
			require.NoError(t, err)
			require.NoError(t, s.SaveTemplate(ctx, Template{Name: "gaming", GuildID: "g1", Blueprint: doc}))
			require.NoError(t, s.SaveTemplate(ctx, Template{Name: "crypto", GuildID: "g1", Blueprint: doc}))

			tpl, err := s.LoadTemplate(ctx, "gaming")
			require.NoError(t, err)
			assert.Equal(t, "g1", tpl.GuildID)
			assert.JSONEq(t, string(doc), string(tpl.Blueprint))

			names, err := s.ListTemplates(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"crypto", "gaming"}, names)
		})
	}
}

func TestStoreConfig(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.GetConfig(ctx, "g1", "k")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.SetConfig(ctx, "g1", "k", "v1"))
			require.NoError(t, s.SetConfig(ctx, "g1", "k", "v2"))
			v, err := s.GetConfig(ctx, "g1", "k")
			require.NoError(t, err)
			assert.Equal(t, "v2", v)

			require.NoError(t, s.DeleteConfig(ctx, "g1", "k"))
			_, err = s.GetConfig(ctx, "g1", "k")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

type countingKV struct {
	KV
	reads atomic.Int32
}

func (c *countingKV) GetConfig(ctx context.Context, guildID, key string) (string, error) {
	c.reads.Add(1)
	return c.KV.GetConfig(ctx, guildID, key)
}

func TestConfigCacheReadThroughWriteThrough(t *testing.T) {
	ctx := context.Background()
	backing := &countingKV{KV: NewMemory()}
	require.NoError(t, backing.SetConfig(ctx, "g1", "theme", "neon-gold"))

	cache := NewConfigCache(backing)

	v, ok, err := cache.Get(ctx, "g1", "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "neon-gold", v)

	_, _, err = cache.Get(ctx, "g1", "theme")
	require.NoError(t, err)
	assert.Equal(t, int32(1), backing.reads.Load())

	_, ok, err = cache.Get(ctx, "g1", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	_, _, _ = cache.Get(ctx, "g1", "missing")
	assert.Equal(t, int32(2), backing.reads.Load())

	require.NoError(t, cache.Set(ctx, "g1", "theme", "cozy-pastel"))
	stored, err := backing.KV.GetConfig(ctx, "g1", "theme")
	require.NoError(t, err)
	assert.Equal(t, "cozy-pastel", stored)

	v, _, _ = cache.Get(ctx, "g1", "theme")
	assert.Equal(t, "cozy-pastel", v)

	require.NoError(t, cache.Delete(ctx, "g1", "theme"))
	_, ok, _ = cache.Get(ctx, "g1", "theme")
	assert.False(t, ok)
}

func TestConfigCacheConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	backing := &countingKV{KV: NewMemory()}
	require.NoError(t, backing.SetConfig(ctx, "g1", "k", "v"))
	cache := NewConfigCache(backing)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, ok, err := cache.Get(ctx, "g1", "k")
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v", v)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, cache.Len())
}

// blockingKV reads the backing value, then holds it until release is
// closed, so the reply is stale by the time it returns.
type blockingKV struct {
	KV
	started chan struct{}
	release chan struct{}
}

func (b *blockingKV) GetConfig(ctx context.Context, guildID, key string) (string, error) {
	value, err := b.KV.GetConfig(ctx, guildID, key)
	close(b.started)
	<-b.release
	return value, err
}

func TestConfigCacheSetDuringMiss(t *testing.T) {
	ctx := context.Background()
	backing := &blockingKV{KV: NewMemory(), started: make(chan struct{}), release: make(chan struct{})}
	cache := NewConfigCache(backing)

	type result struct {
		value string
		ok    bool
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, ok, err := cache.Get(ctx, "g1", "welcome_sent")
		done <- result{v, ok, err}
	}()

	<-backing.started
	require.NoError(t, cache.Set(ctx, "g1", "welcome_sent", "now"))
	close(backing.release)

	res := <-done
	require.NoError(t, res.err)
	assert.True(t, res.ok)
	assert.Equal(t, "now", res.value)

	v, ok, err := cache.Get(ctx, "g1", "welcome_sent")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "now", v)
}
