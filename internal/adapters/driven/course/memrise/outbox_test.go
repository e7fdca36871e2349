package memrise

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStatFile is a writer whose size cannot be read.
type brokenStatFile struct {
	bytes.Buffer
}

func (f *brokenStatFile) Stat() (fs.FileInfo, error) {
	return nil, errors.New("stat: input/output error")
}

func TestWriteTSV_StatFailureWritesNothing(t *testing.T) {
	f := &brokenStatFile{}

	err := writeTSV(f, []string{refColumn, "term"}, []string{"r1", "chat"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input/output error")
	assert.Zero(t, f.Len())
}

func TestAppendTSV_HeaderOnlyOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), updatesFile)
	header := []string{refColumn, "term"}

	require.NoError(t, appendTSV(path, header, []string{"r1", "chat"}))
	require.NoError(t, appendTSV(path, header, []string{"r2", "chien"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ref\tterm\nr1\tchat\nr2\tchien\n", string(data))
}

func TestAppendTSV_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone", updatesFile)

	err := appendTSV(path, nil, []string{"r1"})
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
