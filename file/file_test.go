package file

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage(t *testing.T) {
	t.Run("IntOperations", func(t *testing.T) {
		page := NewPage(100)
		for offset, value := range map[int]int{0: 42, 8: -123, 16: 0, 24: math.MaxInt64, 32: math.MinInt64} {
			page.SetInt(offset, value)
			assert.Equal(t, value, page.GetInt(offset), "offset %d", offset)
		}
	})

	t.Run("StringOperations", func(t *testing.T) {
		page := NewPage(100)
		require.NoError(t, page.SetString(10, "héllo"))
		got, err := page.GetString(10)
		require.NoError(t, err)
		assert.Equal(t, "héllo", got)

		assert.Error(t, page.SetString(40, string([]byte{0xff, 0xfe})))
	})

	t.Run("MaxLength", func(t *testing.T) {
		assert.Equal(t, 4+10*4, MaxLength(10))
	})
}

func TestManager(t *testing.T) {
	dir := t.TempDir()
	fm, err := NewManager(dir, 64)
	require.NoError(t, err)
	defer fm.Close()

	n, err := fm.Length("data.tbl")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	block, err := fm.Append("data.tbl")
	require.NoError(t, err)
	assert.Equal(t, 0, block.Number())

	page := NewPage(fm.BlockSize())
	page.SetInt(8, 99)
	require.NoError(t, page.SetString(16, "abc"))
	require.NoError(t, fm.Write(block, page))

	read := NewPage(fm.BlockSize())
	require.NoError(t, fm.Read(block, read))
	assert.Equal(t, 99, read.GetInt(8))
	s, err := read.GetString(16)
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	n, err = fm.Length("data.tbl")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, fm.Remove("data.tbl"))
	_, err = os.Stat(filepath.Join(dir, "data.tbl"))
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, fm.Remove("data.tbl"))
}

func TestManagerRemovesStaleTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "temp7.tbl"), make([]byte, 64), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "student.tbl"), make([]byte, 64), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "temperature.tbl"), make([]byte, 64), 0644))

	fm, err := NewManager(dir, 64)
	require.NoError(t, err)
	defer fm.Close()

	_, err = os.Stat(filepath.Join(dir, "temp7.tbl"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "student.tbl"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "temperature.tbl"))
	assert.NoError(t, err)
	assert.False(t, fm.IsNew())
}
