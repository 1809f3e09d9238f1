package query

import (
	"fmt"
	"slices"
	"testing"

	"github.com/JyotinderSingh/dropexec/buffer"
	"github.com/JyotinderSingh/dropexec/file"
	"github.com/JyotinderSingh/dropexec/materialize"
	"github.com/JyotinderSingh/dropexec/query/functions"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/table"
	"github.com/JyotinderSingh/dropexec/trace"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/JyotinderSingh/dropexec/types"
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

func studentSchema() *record.Schema {
	s := record.NewSchema()
	s.AddIntField("sid")
	s.AddStringField("name", 10)
	return s
}

func enrollSchema() *record.Schema {
	s := record.NewSchema()
	s.AddIntField("esid")
	s.AddStringField("grade", 4)
	return s
}

func createTable(t *testing.T, txn *tx.Transaction, name string, schema *record.Schema, rows [][]any) *record.Layout {
	layout := record.NewLayout(schema)
	ts, err := table.NewTableScan(txn, name, layout)
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, ts.Insert())
		for i, field := range schema.Fields() {
			require.NoError(t, ts.SetVal(field, row[i]))
		}
	}
	require.NoError(t, ts.Close())
	return layout
}

func openTable(t *testing.T, txn *tx.Transaction, name string, layout *record.Layout) *table.Scan {
	ts, err := table.NewTableScan(txn, name, layout)
	require.NoError(t, err)
	return ts
}

func collect(t *testing.T, s scan.Scan, fields ...string) [][]any {
	var rows [][]any
	for {
		ok, err := s.Next()
		require.NoError(t, err)
		if !ok {
			return rows
		}
		row := make([]any, len(fields))
		for i, f := range fields {
			row[i], err = s.GetVal(f)
			require.NoError(t, err)
		}
		rows = append(rows, row)
	}
}

func sortRows(rows [][]any) [][]any {
	slices.SortFunc(rows, func(a, b []any) int {
		return slices.CompareFunc(a, b, func(x, y any) int {
			c, _ := types.Compare(x, y)
			return c
		})
	})
	return rows
}

var (
	studentRows = [][]any{{1, "A"}, {2, "B"}}
	enrollRows  = [][]any{{1, "A+"}, {2, "B-"}, {1, "C"}}
	wantJoin    = [][]any{{1, "A", "A+"}, {1, "A", "C"}, {2, "B", "B-"}}
)

func joinPredicate() *Predicate {
	return NewPredicateFromTerm(NewTerm(NewFieldExpression("sid"), NewFieldExpression("esid"), types.EQ))
}

func TestPredicate(t *testing.T) {
	p := joinPredicate()
	p.ConjoinWith(NewPredicateFromTerm(NewTerm(NewFieldExpression("grade"), NewConstantExpression("A+"), types.EQ)))

	sel := p.SelectSubPredicate(enrollSchema())
	require.NotNil(t, sel)
	assert.Equal(t, "grade = 'A+'", sel.String())
	assert.Nil(t, p.SelectSubPredicate(record.NewSchema()))

	join := p.JoinSubPredicate(studentSchema(), enrollSchema())
	require.NotNil(t, join)
	assert.Equal(t, "sid = esid", join.String())

	assert.Equal(t, "A+", p.EquatesWithConstant("grade"))
	assert.Equal(t, "esid", p.EquatesWithField("sid"))
	assert.Equal(t, "sid", p.EquatesWithField("esid"))
	assert.Equal(t, "grade = 'A+'", p.Without("sid", "esid").String())
	assert.Nil(t, joinPredicate().Without("esid", "sid"))

	err := p.CheckFields(studentSchema())
	assert.True(t, errors.Is(err, ErrFieldNotFound))
}

func TestSelectAndProject(t *testing.T) {
	txn := setupTestEnvironment(t, 400, 8)
	layout := createTable(t, txn, "enroll", enrollSchema(), enrollRows)

	pred := NewPredicateFromTerm(NewTerm(NewFieldExpression("esid"), NewConstantExpression(1), types.EQ))
	s := NewProjectScan(NewSelectScan(openTable(t, txn, "enroll", layout), pred), []string{"grade"})
	rows := collect(t, s, "grade")
	assert.ElementsMatch(t, [][]any{{"A+"}, {"C"}}, rows)

	require.NoError(t, s.BeforeFirst())
	ok, err := s.Next()
	require.NoError(t, err)
	require.True(t, ok)
	_, err = s.GetVal("esid")
	assert.True(t, errors.Is(err, ErrFieldNotFound))

	sel := NewSelectScan(openTable(t, txn, "enroll", layout), pred)
	ok, err = sel.Next()
	require.NoError(t, err)
	require.True(t, ok)
	_, err = sel.GetVal("sid")
	assert.True(t, errors.Is(err, ErrFieldNotFound))
	require.NoError(t, sel.Close())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 0, txn.PinnedBlocks())
}

func TestProductScan(t *testing.T) {
	txn := setupTestEnvironment(t, 400, 8)
	sl := createTable(t, txn, "student", studentSchema(), studentRows)
	el := createTable(t, txn, "enroll", enrollSchema(), enrollRows)
	empty := createTable(t, txn, "nobody", studentSchema(), nil)

	ps, err := NewProductScan(openTable(t, txn, "student", sl), openTable(t, txn, "enroll", el))
	require.NoError(t, err)
	assert.Len(t, collect(t, ps, "sid", "grade"), 6)
	require.NoError(t, ps.Close())

	ps, err = NewProductScan(openTable(t, txn, "nobody", empty), openTable(t, txn, "enroll", el))
	require.NoError(t, err)
	assert.Empty(t, collect(t, ps, "sid", "grade"))
	require.NoError(t, ps.Close())

	ps, err = NewProductScan(openTable(t, txn, "student", sl), openTable(t, txn, "nobody", empty))
	require.NoError(t, err)
	assert.Empty(t, collect(t, ps, "sid", "name"))
	require.NoError(t, ps.Close())
	assert.Equal(t, 0, txn.PinnedBlocks())
}

func newHashJoin(t *testing.T, txn *tx.Transaction, partitions int) *HashJoinScan {
	sl := record.NewLayout(studentSchema())
	el := record.NewLayout(enrollSchema())
	hs, err := NewHashJoinScan(txn,
		HashJoinSide{Scan: openTable(t, txn, "student", sl), Schema: sl.Schema(), Field: "sid"},
		HashJoinSide{Scan: openTable(t, txn, "enroll", el), Schema: el.Schema(), Field: "esid"},
		partitions, max(partitions+1, int(1.5*float64(partitions))), trace.Noop)
	require.NoError(t, err)
	return hs
}

func TestHashJoin_StudentEnroll(t *testing.T) {
	for k := 1; k <= 4; k++ {
		t.Run(fmt.Sprintf("partitions=%d", k), func(t *testing.T) {
			txn := setupTestEnvironment(t, 400, 16)
			createTable(t, txn, "student", studentSchema(), studentRows)
			createTable(t, txn, "enroll", enrollSchema(), enrollRows)

			hs := newHashJoin(t, txn, k)
			rows := sortRows(collect(t, hs, "sid", "name", "grade"))
			assert.Equal(t, wantJoin, rows)

			require.NoError(t, hs.BeforeFirst())
			assert.Len(t, collect(t, hs, "sid"), 3)

			require.NoError(t, hs.Close())
			require.NoError(t, hs.Close())
			assert.Equal(t, 0, txn.PinnedBlocks())
		})
	}
}

func TestHashJoin_PartitionCoverage(t *testing.T) {
	txn := setupTestEnvironment(t, 400, 16)
	var rows [][]any
	for i := 0; i < 60; i++ {
		rows = append(rows, []any{i % 17, fmt.Sprintf("s%d", i)})
	}
	createTable(t, txn, "student", studentSchema(), rows)
	createTable(t, txn, "enroll", enrollSchema(), enrollRows)

	for k := 1; k <= 6; k++ {
		hs := newHashJoin(t, txn, k)
		leftParts, rightParts := hs.Partitions()
		require.Len(t, leftParts, k)
		require.Len(t, rightParts, k)

		var union [][]any
		for i, part := range leftParts {
			ts, err := part.Open()
			require.NoError(t, err)
			for _, row := range collect(t, ts, "sid", "name") {
				assert.Equal(t, i, PartitionOf(row[0], k))
				union = append(union, row)
			}
			require.NoError(t, ts.Close())
		}
		assert.Equal(t, sortRows(slices.Clone(rows)), sortRows(union))
		require.NoError(t, hs.Close())
	}
	assert.Equal(t, 0, txn.PinnedBlocks())
}

func newBlockJoin(t *testing.T, txn *tx.Transaction, chunkSize int) *BlockJoinScan {
	sl := record.NewLayout(studentSchema())
	el := record.NewLayout(enrollSchema())

	tt := materialize.NewTempTable(txn, sl.Schema())
	dst, err := tt.Open()
	require.NoError(t, err)
	src := openTable(t, txn, "student", sl)
	for {
		ok, err := src.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		require.NoError(t, dst.Insert())
		for _, f := range sl.Schema().Fields() {
			v, err := src.GetVal(f)
			require.NoError(t, err)
			require.NoError(t, dst.SetVal(f, v))
		}
	}
	require.NoError(t, src.Close())
	require.NoError(t, dst.Close())

	bs, err := NewBlockJoinScan(txn, tt, openTable(t, txn, "enroll", el), joinPredicate(), chunkSize, 1, nil)
	require.NoError(t, err)
	return bs
}

func TestBlockJoin(t *testing.T) {
	txn := setupTestEnvironment(t, 128, 16)
	var students [][]any
	var want [][]any
	for i := 0; i < 20; i++ {
		students = append(students, []any{i, fmt.Sprintf("s%d", i)})
	}
	for _, e := range enrollRows {
		want = append(want, []any{e[0], fmt.Sprintf("s%d", e[0]), e[1]})
	}
	createTable(t, txn, "student", studentSchema(), students)
	createTable(t, txn, "enroll", enrollSchema(), enrollRows)

	for _, chunk := range []int{1, 2, 3, 100} {
		bs := newBlockJoin(t, txn, chunk)
		assert.Equal(t, sortRows(slices.Clone(want)), sortRows(collect(t, bs, "sid", "name", "grade")), "chunk size %d", chunk)
		require.NoError(t, bs.Close())
		assert.Equal(t, 0, txn.PinnedBlocks())
	}

	bs := newBlockJoin(t, txn, 0)
	assert.Empty(t, collect(t, bs, "sid"))
	require.NoError(t, bs.Close())
}

type chunkRecorder struct {
	trace.Tracer
	chunks []trace.ChunkEvent
}

func (r *chunkRecorder) ChunkAdvanced(e trace.ChunkEvent) {
	r.chunks = append(r.chunks, e)
}

func TestBlockJoin_ChunkFitsFreeBuffers(t *testing.T) {
	txn := setupTestEnvironment(t, 128, 16)
	var students, filler, want [][]any
	for i := 0; i < 20; i++ {
		students = append(students, []any{i, fmt.Sprintf("s%d", i)})
	}
	for i := 0; i < 60; i++ {
		filler = append(filler, []any{i, "f"})
	}
	for _, e := range enrollRows {
		want = append(want, []any{e[0], fmt.Sprintf("s%d", e[0]), e[1]})
	}
	createTable(t, txn, "student", studentSchema(), students)
	createTable(t, txn, "enroll", enrollSchema(), enrollRows)
	createTable(t, txn, "filler", enrollSchema(), filler)
	fillerBlocks, err := table.Size(txn, "filler")
	require.NoError(t, err)
	require.GreaterOrEqual(t, fillerBlocks, 10)

	bs := newBlockJoin(t, txn, 100)
	recorder := &chunkRecorder{Tracer: trace.Noop}
	bs.tracer = recorder

	// Pinned after the join was opened, so only the chunk can give way.
	var held []*file.BlockId
	for i := 0; i < 10; i++ {
		block := file.NewBlockId(table.FileName("filler"), i)
		require.NoError(t, txn.Pin(block))
		held = append(held, block)
	}
	free := txn.AvailableBuffers()

	got := collect(t, bs, "sid", "name", "grade")
	assert.Equal(t, sortRows(want), sortRows(got))
	require.NotEmpty(t, recorder.chunks)
	for _, c := range recorder.chunks {
		assert.LessOrEqual(t, c.LastBlock-c.FirstBlock+1, free-1)
	}

	require.NoError(t, bs.Close())
	for _, block := range held {
		require.NoError(t, txn.Unpin(block))
	}
	assert.Equal(t, 0, txn.PinnedBlocks())
}

func TestBlockJoin_CloseAfterFirstRecord(t *testing.T) {
	txn := setupTestEnvironment(t, 400, 8)
	createTable(t, txn, "student", studentSchema(), studentRows)
	el := createTable(t, txn, "enroll", enrollSchema(), enrollRows)

	bs := newBlockJoin(t, txn, 1)
	ok, err := bs.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, bs.Close())
	assert.Equal(t, 0, txn.PinnedBlocks())

	// The right table can be opened and dropped again without conflict.
	reopened := openTable(t, txn, "enroll", el)
	assert.Len(t, collect(t, reopened, "grade"), 3)
	require.NoError(t, reopened.Close())
	require.NoError(t, table.Drop(txn, "enroll"))
}

func TestGroupBy_CountGrade(t *testing.T) {
	txn := setupTestEnvironment(t, 400, 8)
	// Stored sorted on esid.
	el := createTable(t, txn, "enroll", enrollSchema(), [][]any{{1, "A+"}, {1, "C"}, {2, "B-"}})

	count, err := functions.Spec{Kind: functions.Count, Field: "grade"}.New()
	require.NoError(t, err)
	gs, err := NewGroupByScan(openTable(t, txn, "enroll", el), []string{"esid"}, []functions.AggregationFunction{count})
	require.NoError(t, err)

	rows := collect(t, gs, "esid", "countOfgrade")
	assert.Equal(t, [][]any{{1, 2}, {2, 1}}, rows)
	assert.True(t, gs.HasField("countOfgrade"))
	_, err = gs.GetVal("grade")
	assert.True(t, errors.Is(err, ErrFieldNotFound))
	require.NoError(t, gs.Close())
}

func TestGroupBy_NoGroupFields(t *testing.T) {
	txn := setupTestEnvironment(t, 400, 8)
	el := createTable(t, txn, "enroll", enrollSchema(), enrollRows)

	maxFn, err := functions.Spec{Kind: functions.Max, Field: "esid"}.New()
	require.NoError(t, err)
	gs, err := NewGroupByScan(openTable(t, txn, "enroll", el), nil, []functions.AggregationFunction{maxFn})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{2}}, collect(t, gs, "maxOfesid"))
	require.NoError(t, gs.Close())
}

func TestDistinct_Idempotent(t *testing.T) {
	txn := setupTestEnvironment(t, 400, 8)
	el := createTable(t, txn, "enroll", enrollSchema(), [][]any{{1, "A"}, {2, "A"}, {1, "A"}, {1, "B"}, {2, "A"}})

	once := NewDistinctScan(openTable(t, txn, "enroll", el), []string{"esid", "grade"})
	first := collect(t, once, "esid", "grade")
	assert.ElementsMatch(t, [][]any{{1, "A"}, {2, "A"}, {1, "B"}}, first)
	require.NoError(t, once.Close())

	twice := NewDistinctScan(NewDistinctScan(openTable(t, txn, "enroll", el), []string{"esid", "grade"}), []string{"esid", "grade"})
	assert.Equal(t, first, collect(t, twice, "esid", "grade"))

	require.NoError(t, twice.BeforeFirst())
	assert.Len(t, collect(t, twice, "esid"), 3)
	require.NoError(t, twice.Close())
}
