package record

import (
	"testing"

	"github.com/JyotinderSingh/dropexec/buffer"
	"github.com/JyotinderSingh/dropexec/file"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/JyotinderSingh/dropexec/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestEnv(t *testing.T) (*tx.Transaction, *file.BlockId, *Layout) {
	fm, err := file.NewManager(t.TempDir(), 400)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fm.Close() })

	transaction := tx.NewTransaction(fm, buffer.NewManager(fm, 8))
	blk, err := transaction.Append("testfile")
	require.NoError(t, err)

	schema := NewSchema()
	schema.AddIntField("id")
	schema.AddStringField("name", 10)
	schema.AddIntField("score")
	return transaction, blk, NewLayout(schema)
}

func TestLayout(t *testing.T) {
	schema := NewSchema()
	schema.AddStringField("name", 10)
	schema.AddIntField("id")
	schema.AddIntField("age")
	layout := NewLayout(schema)

	id, ok := layout.Offset("id")
	require.True(t, ok)
	assert.Equal(t, types.IntSize, id)
	age, _ := layout.Offset("age")
	assert.Equal(t, 2*types.IntSize, age)
	name, _ := layout.Offset("name")
	assert.Equal(t, 3*types.IntSize, name)
	assert.Equal(t, 0, layout.SlotSize()%types.IntSize)
	assert.GreaterOrEqual(t, layout.SlotSize(), name+file.MaxLength(10))

	assert.Equal(t, []string{"name", "id", "age"}, schema.Fields(), "layout must not reorder the schema")

	_, ok = layout.Offset("missing")
	assert.False(t, ok)
}

func TestSchema(t *testing.T) {
	s := NewSchema()
	s.AddIntField("a")
	s.AddStringField("b", 5)
	other := NewSchema()
	other.AddAll(s)
	other.AddIntField("a")

	assert.Equal(t, []string{"a", "b"}, other.Fields())
	assert.Equal(t, types.Varchar, other.Type("b"))
	assert.Equal(t, 5, other.Length("b"))
	assert.False(t, other.HasField("c"))
}

func TestPage_InsertReadDelete(t *testing.T) {
	transaction, blk, layout := setupTestEnv(t)
	page, err := NewPage(transaction, blk, layout)
	require.NoError(t, err)
	require.NoError(t, page.Format())

	slot, err := page.InsertAfter(-1)
	require.NoError(t, err)
	require.NoError(t, page.SetInt(slot, "id", 7))
	require.NoError(t, page.SetString(slot, "name", "seven"))

	slot2, err := page.InsertAfter(slot)
	require.NoError(t, err)
	require.NoError(t, page.SetInt(slot2, "id", 8))

	next, err := page.NextAfter(-1)
	require.NoError(t, err)
	assert.Equal(t, slot, next)
	id, err := page.GetInt(next, "id")
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	name, err := page.GetString(next, "name")
	require.NoError(t, err)
	assert.Equal(t, "seven", name)

	require.NoError(t, page.Delete(slot))
	next, err = page.NextAfter(-1)
	require.NoError(t, err)
	assert.Equal(t, slot2, next)

	_, err = page.NextAfter(slot2)
	assert.True(t, errors.Is(err, ErrNoSlotFound))

	assert.Error(t, page.SetString(slot2, "name", "far too long for ten"))
	assert.Error(t, page.SetInt(slot2, "nope", 1))

	require.NoError(t, transaction.Unpin(blk))
	require.NoError(t, transaction.Commit())
}

func TestID(t *testing.T) {
	assert.True(t, NewID(1, 2).Equals(NewID(1, 2)))
	assert.False(t, NewID(1, 2).Equals(NewID(2, 1)))
	assert.Equal(t, "[1, 2]", NewID(1, 2).String())
}
