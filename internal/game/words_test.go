package game

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWordListFiltersEntries(t *testing.T) {
	wl, err := NewWordList([]string{"Apple", " pear ", "two words", "r2d2", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "pear"}, wl.words)

	_, err = NewWordList([]string{"123", ""})
	assert.True(t, errors.Is(err, ErrNoWords))
}

func TestLoadWordList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nkiwi\n\nMango\nnot-a-word\n"), 0644))

	wl, err := LoadWordList(path)
	require.NoError(t, err)
	assert.Equal(t, 2, wl.Len())

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		assert.Contains(t, []string{"kiwi", "mango"}, wl.Pick(rng))
	}
}

func TestLoadWordListErrors(t *testing.T) {
	_, err := LoadWordList(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("# nothing\n"), 0644))
	_, err = LoadWordList(path)
	assert.True(t, errors.Is(err, ErrNoWords))
}

func TestDefaultWordList(t *testing.T) {
	wl := DefaultWordList()
	assert.Equal(t, len(defaultWords), wl.Len())
}
