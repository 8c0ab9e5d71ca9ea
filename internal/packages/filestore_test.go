package packages

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *FileRepository {
	t.Helper()
	repo, err := NewFileRepository(filepath.Join(t.TempDir(), "packages.json"), nil)
	require.NoError(t, err)
	return repo
}

func TestNewFileRepository_CreatesMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "packages.json")

	repo, err := NewFileRepository(path, nil)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	pkgs, err := repo.All()
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}

func TestFileRepository_CreateAndFind(t *testing.T) {
	repo := newTestRepo(t)

	pkg := NewPackage("Standard Screen", []string{"state_criminal", "mvr"})
	require.NoError(t, repo.Create(pkg))

	found, err := repo.Find(pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, pkg.ID, found.ID)
	assert.Equal(t, "Standard Screen", found.Name)
	assert.Equal(t, []string{"state_criminal", "mvr"}, found.ServiceIDs)
}

func TestFileRepository_CreateRejectsDuplicateID(t *testing.T) {
	repo := newTestRepo(t)

	pkg := NewPackage("One", nil)
	require.NoError(t, repo.Create(pkg))
	assert.Error(t, repo.Create(pkg))
}

func TestFileRepository_FindNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Find("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "missing")
}

func TestFileRepository_FindMostRecent(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.FindMostRecent()
	assert.ErrorIs(t, err, ErrNotFound)

	older := NewPackage("Older", nil)
	older.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	newer := NewPackage("Newer", nil)

	require.NoError(t, repo.Create(older))
	require.NoError(t, repo.Create(newer))

	recent, err := repo.FindMostRecent()
	require.NoError(t, err)
	assert.Equal(t, newer.ID, recent.ID)
}

func TestFileRepository_Update(t *testing.T) {
	repo := newTestRepo(t)

	pkg := NewPackage("Before", []string{"mvr"})
	require.NoError(t, repo.Create(pkg))

	pkg.Rename("After")
	pkg.SetServices([]string{"mvr", "state_criminal"})
	require.NoError(t, repo.Update(pkg))

	found, err := repo.Find(pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", found.Name)
	assert.Equal(t, []string{"mvr", "state_criminal"}, found.ServiceIDs)

	missing := NewPackage("Ghost", nil)
	assert.ErrorIs(t, repo.Update(missing), ErrNotFound)
}

func TestFileRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)

	pkg := NewPackage("Doomed", nil)
	require.NoError(t, repo.Create(pkg))
	require.NoError(t, repo.Delete(pkg.ID))

	_, err := repo.Find(pkg.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(pkg.ID), ErrNotFound)
}

func TestFileRepository_Exists(t *testing.T) {
	repo := newTestRepo(t)

	pkg := NewPackage("Here", nil)
	require.NoError(t, repo.Create(pkg))

	ok, err := repo.Exists(pkg.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists("elsewhere")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileRepository_CorruptFileReadsAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packages.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	repo, err := NewFileRepository(path, nil)
	require.NoError(t, err)

	pkgs, err := repo.All()
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}

func TestFileRepository_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packages.json")

	repo, err := NewFileRepository(path, nil)
	require.NoError(t, err)
	pkg := NewPackage("Persistent", []string{"mvr"})
	require.NoError(t, repo.Create(pkg))

	reopened, err := NewFileRepository(path, nil)
	require.NoError(t, err)
	found, err := reopened.Find(pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, "Persistent", found.Name)
}
