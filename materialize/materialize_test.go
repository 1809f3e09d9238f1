package materialize

import (
	"testing"

	"github.com/JyotinderSingh/dropexec/buffer"
	"github.com/JyotinderSingh/dropexec/file"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTx(t *testing.T) *tx.Transaction {
	fm, err := file.NewManager(t.TempDir(), 400)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fm.Close() })
	return tx.NewTransaction(fm, buffer.NewManager(fm, 8))
}

func TestTempTable_UniqueNames(t *testing.T) {
	transaction := setupTx(t)
	schema := record.NewSchema()
	schema.AddIntField("a")

	t1 := NewTempTable(transaction, schema)
	t2 := NewTempTable(transaction, schema)
	assert.NotEqual(t, t1.TableName(), t2.TableName())
	assert.Contains(t, t1.TableName(), file.TempFilePrefix)
}

func TestTempTable_OwnedScanDropsOnClose(t *testing.T) {
	transaction := setupTx(t)
	schema := record.NewSchema()
	schema.AddIntField("a")
	tt := NewTempTable(transaction, schema)

	ts, err := tt.Open()
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		require.NoError(t, ts.Insert())
		require.NoError(t, ts.SetInt("a", i))
	}
	require.NoError(t, ts.Close())

	size, err := tt.Size()
	require.NoError(t, err)
	assert.Greater(t, size, 1)

	owned, err := tt.OpenOwned()
	require.NoError(t, err)
	ok, err := owned.Next()
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, owned.Close())
	require.NoError(t, owned.Close())
	assert.Equal(t, 0, transaction.PinnedBlocks())

	_, err = tt.Open()
	assert.Error(t, err, "a dropped table cannot be reopened")
}

func TestBestRoot(t *testing.T) {
	assert.Equal(t, 1, BestRoot(2, 100))
	assert.Equal(t, 1, BestRoot(3, 100))
	// sqrt(100) = 10 fits in 10 buffers.
	assert.Equal(t, 10, BestRoot(12, 100))
	// cube root of 100 rounds up to 5.
	assert.Equal(t, 5, BestRoot(8, 100))
	assert.LessOrEqual(t, BestRoot(6, 1000), 4)
}

func TestBestFactor(t *testing.T) {
	assert.Equal(t, 1, BestFactor(3, 100))
	assert.Equal(t, 50, BestFactor(52, 100))
	assert.Equal(t, 34, BestFactor(40, 100))
	assert.Equal(t, 5, BestFactor(100, 5))
}
