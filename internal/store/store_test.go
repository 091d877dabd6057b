package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickbrown/typist/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "typist.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func testSave() model.Save {
	return model.Save{
		SourcePath: "texts/novel.txt",
		Position:   6,
		Typed:      "heLlo ",
		ElapsedMs:  10000,
		Score:      15,
		Streak:     1,
		Multiplier: 0.6,
		SavedAt:    time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
	}
}

func TestPutGetDelete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	hash := HashText("hello world")

	_, err := st.Get(ctx, hash)
	require.ErrorIs(t, err, ErrNoSave)

	save := testSave()
	require.NoError(t, st.Put(ctx, hash, save))

	got, err := st.Get(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, save.Typed, got.Typed)
	assert.Equal(t, save.Position, got.Position)
	assert.Equal(t, save.ElapsedMs, got.ElapsedMs)
	assert.True(t, save.SavedAt.Equal(got.SavedAt))

	require.NoError(t, st.Delete(ctx, hash))
	_, err = st.Get(ctx, hash)
	require.ErrorIs(t, err, ErrNoSave)

	// Deleting again is fine.
	require.NoError(t, st.Delete(ctx, hash))
}

func TestPutUpserts(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	hash := HashText("hello world")

	save := testSave()
	require.NoError(t, st.Put(ctx, hash, save))

	save.Position = 11
	save.Typed = "heLlo world"
	save.Score = 48
	require.NoError(t, st.Put(ctx, hash, save))

	got, err := st.Get(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, 11, got.Position)
	assert.Equal(t, "heLlo world", got.Typed)
	assert.Equal(t, 48.0, got.Score)
}

func TestHashTextStable(t *testing.T) {
	a := HashText("same text")
	b := HashText("same text")
	c := HashText("other text")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves", "novel.json")
	save := testSave()

	require.NoError(t, WriteSaveFile(path, save))
	got, err := ReadSaveFile(path)
	require.NoError(t, err)
	assert.Equal(t, save.Typed, got.Typed)
	assert.Equal(t, save.Position, got.Position)
	assert.Equal(t, save.SourcePath, got.SourcePath)
	assert.True(t, save.SavedAt.Equal(got.SavedAt))

	// Overwrite goes through the same atomic path.
	save.Position = 7
	require.NoError(t, WriteSaveFile(path, save))
	got, err = ReadSaveFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Position)
}

func TestReadSaveFileMissing(t *testing.T) {
	_, err := ReadSaveFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
