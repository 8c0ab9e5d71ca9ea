package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource serves a fixed record set and can be swapped mid-test
type stubSource struct {
	records []Record
	err     error
}

func (s *stubSource) Fetch(ctx context.Context) ([]Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func TestNewStore_InitialLoad(t *testing.T) {
	store, err := NewStore(context.Background(), &stubSource{records: testRecords()}, nil)
	require.NoError(t, err)

	snap := store.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(1), snap.Generation())
	assert.Equal(t, 4, snap.Len())
}

func TestNewStore_InitialLoadFailure(t *testing.T) {
	_, err := NewStore(context.Background(), &stubSource{err: errors.New("boom")}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial catalog load")
}

func TestStore_ReloadPublishesNewGeneration(t *testing.T) {
	source := &stubSource{records: testRecords()}
	store, err := NewStore(context.Background(), source, nil)
	require.NoError(t, err)

	source.records = testRecords()[:2]
	require.NoError(t, store.Reload(context.Background()))

	snap := store.Snapshot()
	assert.Equal(t, uint64(2), snap.Generation())
	assert.Equal(t, 2, snap.Len())
}

func TestStore_FailedReloadKeepsPreviousSnapshot(t *testing.T) {
	source := &stubSource{records: testRecords()}
	store, err := NewStore(context.Background(), source, nil)
	require.NoError(t, err)
	before := store.Snapshot()

	source.err = errors.New("source unavailable")
	require.Error(t, store.Reload(context.Background()))
	assert.Same(t, before, store.Snapshot())

	source.err = nil
	source.records = []Record{{Name: "no id", BasePrice: price(10), Category: "criminal"}}
	require.Error(t, store.Reload(context.Background()))
	assert.Same(t, before, store.Snapshot())
}

func TestStore_PinnedSnapshotSurvivesReload(t *testing.T) {
	source := &stubSource{records: testRecords()}
	store, err := NewStore(context.Background(), source, nil)
	require.NoError(t, err)

	pinned := store.Snapshot()
	source.records = testRecords()[:1]
	require.NoError(t, store.Reload(context.Background()))

	// The in-flight snapshot still answers from its own generation.
	assert.Equal(t, 4, pinned.Len())
	assert.Equal(t, 1, store.Snapshot().Len())
}

func TestStore_ConcurrentGetsDuringReload(t *testing.T) {
	full := testRecords()
	truncated := testRecords()[:2]

	source := &stubSource{records: full}
	store, err := NewStore(context.Background(), source, nil)
	require.NoError(t, err)

	// Odd generations carry the full record set, even ones the truncated
	// set; a snapshot mixing the two would fail the parity check below.
	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}

				snap := store.Snapshot()
				want := len(full)
				if snap.Generation()%2 == 0 {
					want = len(truncated)
				}
				assert.Equal(t, want, snap.Len())
				assert.Len(t, snap.All(), want)

				_, ok := snap.Get("state_criminal")
				assert.True(t, ok)
				_, ok = snap.Get("mvr")
				assert.Equal(t, want == len(full), ok)
			}
		}()
	}

	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			source.records = truncated
		} else {
			source.records = full
		}
		require.NoError(t, store.Reload(context.Background()))
	}

	close(done)
	wg.Wait()
}

func TestFileSource_Fetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "services.json")
	content := `{"services":[{"id":"mvr","name":"Motor Vehicle Record","base_price":20.0,"category":"driving"}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := NewFileSource(path).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "mvr", records[0].ID)
	require.NotNil(t, records[0].BasePrice)
	assert.Equal(t, 20.0, *records[0].BasePrice)
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileSource(filepath.Join(dir, "absent.json")).Fetch(context.Background())
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
		_, err := NewFileSource(path).Fetch(context.Background())
		assert.Error(t, err)
	})

	t.Run("missing services key", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
		_, err := NewFileSource(path).Fetch(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no services key")
	})
}
