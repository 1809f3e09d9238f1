package table

import (
	"fmt"
	"testing"

	"github.com/JyotinderSingh/dropexec/buffer"
	"github.com/JyotinderSingh/dropexec/file"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestTable(t *testing.T, numBuffers int) (*tx.Transaction, *record.Layout) {
	fm, err := file.NewManager(t.TempDir(), 400)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fm.Close() })

	schema := record.NewSchema()
	schema.AddIntField("id")
	schema.AddStringField("name", 12)
	return tx.NewTransaction(fm, buffer.NewManager(fm, numBuffers)), record.NewLayout(schema)
}

func insertRows(t *testing.T, ts *Scan, n int) {
	for i := 0; i < n; i++ {
		require.NoError(t, ts.Insert())
		require.NoError(t, ts.SetInt("id", i))
		require.NoError(t, ts.SetString("name", fmt.Sprintf("rec%d", i)))
	}
}

func TestScan_InsertAndRead(t *testing.T) {
	transaction, layout := setupTestTable(t, 4)

	ts, err := NewTableScan(transaction, "people", layout)
	require.NoError(t, err)
	insertRows(t, ts, 50)

	size, err := Size(transaction, "people")
	require.NoError(t, err)
	assert.Greater(t, size, 1, "50 records should span several blocks")

	require.NoError(t, ts.BeforeFirst())
	count := 0
	for {
		ok, err := ts.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		id, err := ts.GetInt("id")
		require.NoError(t, err)
		name, err := ts.GetVal("name")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("rec%d", id), name)
		count++
	}
	assert.Equal(t, 50, count)

	require.NoError(t, ts.Close())
	require.NoError(t, ts.Close())
	assert.Equal(t, 0, transaction.PinnedBlocks())
}

func TestScan_SkipsEmptyBlocks(t *testing.T) {
	transaction, layout := setupTestTable(t, 4)

	ts, err := NewTableScan(transaction, "sparse", layout)
	require.NoError(t, err)
	insertRows(t, ts, 40)

	// Empty every record below 35, which leaves whole blocks without a used slot.
	require.NoError(t, ts.BeforeFirst())
	for {
		ok, err := ts.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		id, err := ts.GetInt("id")
		require.NoError(t, err)
		if id < 35 {
			require.NoError(t, ts.Delete())
		}
	}

	require.NoError(t, ts.BeforeFirst())
	var ids []int
	for {
		ok, err := ts.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		id, err := ts.GetInt("id")
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.Equal(t, []int{35, 36, 37, 38, 39}, ids)
	require.NoError(t, ts.Close())
}

func TestScan_MoveToRecordID(t *testing.T) {
	transaction, layout := setupTestTable(t, 4)

	ts, err := NewTableScan(transaction, "people", layout)
	require.NoError(t, err)
	insertRows(t, ts, 30)

	require.NoError(t, ts.BeforeFirst())
	var target *record.ID
	for {
		ok, err := ts.Next()
		require.NoError(t, err)
		require.True(t, ok)
		id, err := ts.GetInt("id")
		require.NoError(t, err)
		if id == 17 {
			target = ts.GetRecordID()
			break
		}
	}

	require.NoError(t, ts.BeforeFirst())
	require.NoError(t, ts.MoveToRecordID(target))
	v, err := ts.GetVal("id")
	require.NoError(t, err)
	assert.Equal(t, 17, v)
	require.NoError(t, ts.Close())
}

func TestScan_SetValTypeMismatch(t *testing.T) {
	transaction, layout := setupTestTable(t, 4)

	ts, err := NewTableScan(transaction, "people", layout)
	require.NoError(t, err)
	defer ts.Close()

	require.NoError(t, ts.Insert())
	assert.Error(t, ts.SetVal("id", "seven"))
	assert.True(t, errors.Is(ts.SetVal("missing", 7), record.ErrFieldNotFound))
	assert.NoError(t, ts.SetVal("id", 7))
	_, err = ts.GetVal("missing")
	assert.True(t, errors.Is(err, record.ErrFieldNotFound))
	_, err = ts.GetInt("missing")
	assert.True(t, errors.Is(err, record.ErrFieldNotFound))
}

func TestChunkScan(t *testing.T) {
	transaction, layout := setupTestTable(t, 8)

	ts, err := NewTableScan(transaction, "people", layout)
	require.NoError(t, err)
	insertRows(t, ts, 40)
	require.NoError(t, ts.Close())

	size, err := Size(transaction, "people")
	require.NoError(t, err)
	require.GreaterOrEqual(t, size, 3)

	total := 0
	for start := 0; start < size; start += 2 {
		end := min(start+1, size-1)
		cs, err := NewChunkScan(transaction, "people", layout, start, end)
		require.NoError(t, err)
		assert.Equal(t, end-start+1, transaction.PinnedBlocks())

		for {
			ok, err := cs.Next()
			require.NoError(t, err)
			if !ok {
				break
			}
			_, err = cs.GetVal("name")
			require.NoError(t, err)
			_, err = cs.GetVal("missing")
			assert.True(t, errors.Is(err, record.ErrFieldNotFound))
			total++
		}
		require.NoError(t, cs.Close())
		require.NoError(t, cs.Close())
		assert.Equal(t, 0, transaction.PinnedBlocks())
	}
	assert.Equal(t, 40, total)

	_, err = NewChunkScan(transaction, "people", layout, 2, 1)
	assert.Error(t, err)
}

func TestDrop(t *testing.T) {
	transaction, layout := setupTestTable(t, 4)

	ts, err := NewTableScan(transaction, "scratch", layout)
	require.NoError(t, err)
	insertRows(t, ts, 5)
	require.NoError(t, ts.Close())

	require.NoError(t, Drop(transaction, "scratch"))
	size, err := Size(transaction, "scratch")
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}
