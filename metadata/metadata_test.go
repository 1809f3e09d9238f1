package metadata

import (
	"fmt"
	"testing"

	"github.com/JyotinderSingh/dropexec/buffer"
	"github.com/JyotinderSingh/dropexec/file"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/table"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestEnvironment(t *testing.T, blockSize, numBuffers int) *tx.Transaction {
	fm, err := file.NewManager(t.TempDir(), blockSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fm.Close() })
	return tx.NewTransaction(fm, buffer.NewManager(fm, numBuffers))
}

func createPeople(t *testing.T, m *Manager, txn *tx.Transaction, n int) {
	schema := record.NewSchema()
	schema.AddIntField("id")
	schema.AddStringField("name", 20)
	require.NoError(t, m.CreateTable("people", schema))

	layout, err := m.GetLayout("people")
	require.NoError(t, err)
	ts, err := table.NewTableScan(txn, "people", layout)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, ts.Insert())
		require.NoError(t, ts.SetInt("id", i))
		require.NoError(t, ts.SetString("name", fmt.Sprintf("n%d", i%3)))
	}
	require.NoError(t, ts.Close())
}

func TestTableManager(t *testing.T) {
	tm := NewTableManager()
	schema := record.NewSchema()
	schema.AddIntField("a")

	require.NoError(t, tm.CreateTable("t1", schema))
	assert.Error(t, tm.CreateTable("t1", schema))
	assert.Error(t, tm.CreateTable("empty", record.NewSchema()))

	layout, err := tm.GetLayout("t1")
	require.NoError(t, err)
	assert.True(t, layout.Schema().HasField("a"))

	_, err = tm.GetLayout("nope")
	assert.True(t, errors.Is(err, ErrTableNotFound))
	assert.Equal(t, []string{"t1"}, tm.TableNames())
}

func TestStatManager(t *testing.T) {
	txn := setupTestEnvironment(t, 400, 8)
	m, err := NewManager(txn, 100)
	require.NoError(t, err)
	createPeople(t, m, txn, 30)
	require.NoError(t, m.RefreshStatistics(txn))

	layout, err := m.GetLayout("people")
	require.NoError(t, err)
	stats, err := m.GetStatInfo("people", layout, txn)
	require.NoError(t, err)

	size, err := table.Size(txn, "people")
	require.NoError(t, err)
	assert.Equal(t, 30, stats.RecordsOutput())
	assert.Equal(t, size, stats.BlocksAccessed())
	assert.Equal(t, 30, stats.DistinctValues("id"))
	assert.Equal(t, 3, stats.DistinctValues("name"))
	assert.Equal(t, 1, stats.DistinctValues("unknown"))
	assert.Equal(t, 0, txn.PinnedBlocks())
}

func TestStatManager_RefreshLimit(t *testing.T) {
	txn := setupTestEnvironment(t, 400, 8)
	m, err := NewManager(txn, 2)
	require.NoError(t, err)
	createPeople(t, m, txn, 5)

	layout, err := m.GetLayout("people")
	require.NoError(t, err)
	stats, err := m.GetStatInfo("people", layout, txn)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.RecordsOutput())

	ts, err := table.NewTableScan(txn, "people", layout)
	require.NoError(t, err)
	require.NoError(t, ts.Insert())
	require.NoError(t, ts.SetInt("id", 99))
	require.NoError(t, ts.SetString("name", "x"))
	require.NoError(t, ts.Close())

	stats, err = m.GetStatInfo("people", layout, txn)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.RecordsOutput(), "cached until the refresh limit is passed")

	stats, err = m.GetStatInfo("people", layout, txn)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.RecordsOutput())
}

func TestIndexManager_BulkLoad(t *testing.T) {
	txn := setupTestEnvironment(t, 400, 8)
	m, err := NewManager(txn, 100)
	require.NoError(t, err)
	createPeople(t, m, txn, 12)

	require.NoError(t, m.CreateIndex("people_name", "people", "name", txn))
	assert.Error(t, m.CreateIndex("people_name", "people", "id", txn))
	assert.Error(t, m.CreateIndex("bad", "people", "nope", txn))

	infos, err := m.GetIndexInfo("people", txn)
	require.NoError(t, err)
	require.Contains(t, infos, "name")
	info := infos["name"]
	assert.Equal(t, "people_name", info.IndexName())
	assert.Equal(t, 1, info.DistinctValues("name"))

	idx := info.Open()
	require.NoError(t, idx.BeforeFirst("n1"))
	count := 0
	for {
		ok, err := idx.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}
	require.NoError(t, idx.Close())
	assert.Equal(t, 4, count)
	assert.Equal(t, 0, txn.PinnedBlocks())

	none, err := m.GetIndexInfo("other", txn)
	require.NoError(t, err)
	assert.Empty(t, none)
}
