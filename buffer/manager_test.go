package buffer

import (
	"testing"
	"time"

	"github.com/JyotinderSingh/dropexec/file"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFileManager(t *testing.T, numBlocks int) *file.Manager {
	fm, err := file.NewManager(t.TempDir(), 64)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fm.Close() })
	for i := 0; i < numBlocks; i++ {
		_, err := fm.Append("testfile")
		require.NoError(t, err)
	}
	return fm
}

func TestManager_PinUnpin(t *testing.T) {
	fm := setupFileManager(t, 4)
	bm := NewManagerWithTimeout(fm, 3, 100*time.Millisecond)

	b0, err := bm.Pin(file.NewBlockId("testfile", 0))
	require.NoError(t, err)
	b1, err := bm.Pin(file.NewBlockId("testfile", 1))
	require.NoError(t, err)
	assert.Equal(t, 1, bm.Available())

	again, err := bm.Pin(file.NewBlockId("testfile", 0))
	require.NoError(t, err)
	assert.Same(t, b0, again)
	assert.Equal(t, 1, bm.Available())

	bm.Unpin(again)
	assert.Equal(t, 1, bm.Available(), "block 0 is still pinned once")
	bm.Unpin(b0)
	bm.Unpin(b1)
	assert.Equal(t, 3, bm.Available())
}

func TestManager_PinTimesOut(t *testing.T) {
	fm := setupFileManager(t, 3)
	bm := NewManagerWithTimeout(fm, 2, 50*time.Millisecond)

	_, err := bm.Pin(file.NewBlockId("testfile", 0))
	require.NoError(t, err)
	_, err = bm.Pin(file.NewBlockId("testfile", 1))
	require.NoError(t, err)

	_, err = bm.Pin(file.NewBlockId("testfile", 2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBufferAbort))
}

func TestManager_WaiterWakesOnUnpin(t *testing.T) {
	fm := setupFileManager(t, 2)
	bm := NewManagerWithTimeout(fm, 1, 2*time.Second)

	b0, err := bm.Pin(file.NewBlockId("testfile", 0))
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		bm.Unpin(b0)
	}()

	b1, err := bm.Pin(file.NewBlockId("testfile", 1))
	require.NoError(t, err)
	assert.Equal(t, 1, b1.Block().Number())
}

func TestManager_FlushAndDiscard(t *testing.T) {
	fm := setupFileManager(t, 1)
	bm := NewManager(fm, 2)
	block := file.NewBlockId("testfile", 0)

	b, err := bm.Pin(block)
	require.NoError(t, err)
	b.Contents().SetInt(0, 77)
	b.SetModified(5)

	require.Error(t, bm.DiscardFile("testfile"), "pinned buffers cannot be discarded")
	bm.Unpin(b)
	require.NoError(t, bm.FlushAll(5))

	page := file.NewPage(fm.BlockSize())
	require.NoError(t, fm.Read(block, page))
	assert.Equal(t, 77, page.GetInt(0))

	require.NoError(t, bm.DiscardFile("testfile"))
	assert.Nil(t, b.Block())
}
