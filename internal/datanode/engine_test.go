package datanode

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, capacity int64) *Engine {
	t.Helper()
	dir := t.TempDir()
	e, err := NewEngine(dir, capacity)
	require.NoError(t, err)
	return e
}

func TestStoreAndReadChunkRoundTrips(t *testing.T) {
	e := newTestEngine(t, 10<<20)

	data := make([]byte, 1<<20)
	_, err := rand.New(rand.NewSource(1)).Read(data)
	require.NoError(t, err)

	require.NoError(t, e.StoreChunk("aabb01", data))

	got, ok := e.ReadChunk("aabb01")
	require.True(t, ok)
	assert.Equal(t, data, got)

	sidecar := filepath.Join(e.root, "aa", "aabb01.meta")
	contents, err := os.ReadFile(sidecar)
	require.NoError(t, err)

	sum := sha256.Sum256(data)
	wantDigest := hex.EncodeToString(sum[:])
	assert.Contains(t, string(contents), wantDigest)

	datapath := filepath.Join(e.root, "aa", "aabb01.chunk")
	_, err = os.Stat(datapath)
	assert.NoError(t, err)
}

func TestEmptyChunkRoundTrips(t *testing.T) {
	e := newTestEngine(t, 10<<20)

	require.NoError(t, e.StoreChunk("empty1", []byte{}))

	got, ok := e.ReadChunk("empty1")
	require.True(t, ok)
	assert.Empty(t, got)
}

func TestOverwriteAccountingUsesSignedDifference(t *testing.T) {
	e := newTestEngine(t, 10<<20)

	require.NoError(t, e.StoreChunk("id1", make([]byte, 1024)))
	assert.EqualValues(t, 1024, e.UsedSpace())

	require.NoError(t, e.StoreChunk("id1", make([]byte, 2048)))
	assert.EqualValues(t, 2048, e.UsedSpace())

	assert.True(t, e.DeleteChunk("id1"))
	assert.EqualValues(t, 0, e.UsedSpace())
}

func TestStoreChunkRejectsOverCapacity(t *testing.T) {
	e := newTestEngine(t, 1024)

	err := e.StoreChunk("too-big", make([]byte, 2048))
	assert.Error(t, err)
	assert.False(t, e.HasChunk("too-big"))

	_, err2 := os.Stat(filepath.Join(e.root, "to", "too-big.chunk"))
	assert.Error(t, err2, "no partial file should remain")
}

func TestReadChunkDetectsChecksumMismatch(t *testing.T) {
	e := newTestEngine(t, 10<<20)

	require.NoError(t, e.StoreChunk("corrupt1", []byte("hello world")))

	// Corrupt the data file on disk directly.
	require.NoError(t, os.WriteFile(e.dataPath("corrupt1"), []byte("tampered!!!!"), 0o644))

	_, ok := e.ReadChunk("corrupt1")
	assert.False(t, ok)
}

func TestReadChunkAbsentReturnsFalse(t *testing.T) {
	e := newTestEngine(t, 10<<20)
	_, ok := e.ReadChunk("nope")
	assert.False(t, ok)
}

func TestDeleteChunkOfAbsentIDReturnsFalse(t *testing.T) {
	e := newTestEngine(t, 10<<20)
	assert.False(t, e.DeleteChunk("nope"))
}

func TestShortIDsDefaultToSubdirZero(t *testing.T) {
	e := newTestEngine(t, 10<<20)
	require.NoError(t, e.StoreChunk("a", []byte("x")))

	_, err := os.Stat(filepath.Join(e.root, "00", "a.chunk"))
	assert.NoError(t, err)
}

func TestRecoveryRebuildsTableFromDisk(t *testing.T) {
	dir := t.TempDir()
	e, err := NewEngine(dir, 10<<20)
	require.NoError(t, err)

	data1 := []byte("first chunk contents")
	data2 := []byte("second chunk, a bit longer than the first")
	require.NoError(t, e.StoreChunk("c1", data1))
	require.NoError(t, e.StoreChunk("c2", data2))

	rebuilt, err := NewEngine(dir, 10<<20)
	require.NoError(t, err)

	assert.True(t, rebuilt.HasChunk("c1"))
	assert.True(t, rebuilt.HasChunk("c2"))

	got1, ok := rebuilt.ReadChunk("c1")
	require.True(t, ok)
	assert.Equal(t, data1, got1)

	got2, ok := rebuilt.ReadChunk("c2")
	require.True(t, ok)
	assert.Equal(t, data2, got2)

	assert.EqualValues(t, len(data1)+len(data2), rebuilt.UsedSpace())
}

func TestHealthCheckFlagsMissingDataFile(t *testing.T) {
	e := newTestEngine(t, 10<<20)
	require.NoError(t, e.StoreChunk("will-vanish", []byte("data")))

	require.NoError(t, os.Remove(e.dataPath("will-vanish")))

	missing := e.PerformHealthCheck()
	assert.Contains(t, missing, "will-vanish")
}

func TestCleanupOrphanedChunksRemovesUnlisted(t *testing.T) {
	e := newTestEngine(t, 10<<20)
	require.NoError(t, e.StoreChunk("keep", []byte("k")))
	require.NoError(t, e.StoreChunk("drop", []byte("d")))

	removed := e.CleanupOrphanedChunks(map[string]struct{}{"keep": {}})

	assert.Equal(t, []string{"drop"}, removed)
	assert.True(t, e.HasChunk("keep"))
	assert.False(t, e.HasChunk("drop"))
}

func TestLoadCounterClampsAtZero(t *testing.T) {
	e := newTestEngine(t, 10<<20)
	e.DecrementLoad()
	assert.EqualValues(t, 0, e.Load())

	e.IncrementLoad()
	e.IncrementLoad()
	assert.EqualValues(t, 2, e.Load())
	e.DecrementLoad()
	e.DecrementLoad()
	e.DecrementLoad()
	assert.EqualValues(t, 0, e.Load())
}

func TestConcurrentStoreReadDeleteIsSafe(t *testing.T) {
	e := newTestEngine(t, 100<<20)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("chunk-%d", i)
			data := make([]byte, 1024)
			for j := range data {
				data[j] = byte(i)
			}
			require.NoError(t, e.StoreChunk(id, data))
			got, ok := e.ReadChunk(id)
			require.True(t, ok)
			require.Equal(t, data, got)
			e.DeleteChunk(id)
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 0, e.UsedSpace())
}
