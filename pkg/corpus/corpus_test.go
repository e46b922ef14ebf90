package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/loiclec/fuzzcheck-go/pkg/pool"
	"github.com/loiclec/fuzzcheck-go/pkg/serialize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterApplyWritesAndRemoves(t *testing.T) {
	dir := t.TempDir()
	ser := serialize.NewByte("bin")
	w, err := NewWriter[[]byte](dir, ser)
	require.NoError(t, err)

	idx := pool.Index{}
	delta := pool.CorpusDelta[[]byte]{Add: &pool.AddedEntry[[]byte]{Value: []byte("hello"), Index: idx}}
	require.NoError(t, w.Apply(delta, 1.0))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "1.0000--")

	removeDelta := pool.CorpusDelta[[]byte]{Remove: []pool.Index{idx}}
	require.NoError(t, w.Apply(removeDelta, 0))
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 0)
}

func TestLoadDirSkipsUndecodableFiles(t *testing.T) {
	dir := t.TempDir()
	ser := serialize.Text[int]{Ext: "txt", Parse: func(s string) (int, bool) {
		if s == "bad" {
			return 0, false
		}
		return len(s), true
	}, Show: func(int) string { return "" }}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("good"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("bad"), 0o644))

	values, err := LoadDir[int](dir, ser)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, values)
}

func TestLoadDirMissingDirIsEmptyNotError(t *testing.T) {
	values, err := LoadDir[[]byte](filepath.Join(t.TempDir(), "missing"), serialize.NewByte("bin"))
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestWriteArtifactLayout(t *testing.T) {
	root := t.TempDir()
	path, err := WriteArtifact(root, "panic-1234", 3.5, serialize.NewByte("bin"), []byte("oops"))
	require.NoError(t, err)
	assert.Contains(t, path, filepath.Join("panic-1234", "3.5000"))
}
