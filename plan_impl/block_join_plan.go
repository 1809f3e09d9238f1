package plan_impl

import (
	"fmt"
	"math"

	"github.com/JyotinderSingh/dropexec/materialize"
	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/query"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/trace"
	"github.com/JyotinderSingh/dropexec/tx"
)

var _ plan.Plan = (*BlockJoinPlan)(nil)

// BlockJoinPlan is a block nested loop join. The left input is materialized
// and read in chunks of budget blocks. The right input is scanned once per
// chunk.
type BlockJoinPlan struct {
	transaction *tx.Transaction
	lhs, rhs    plan.Plan
	predicate   *query.Predicate
	budget      int
	schema      *record.Schema
	tracer      trace.Tracer
}

// NewBlockJoinPlan joins lhs and rhs on predicate. A budget below 1 yields
// an empty join.
func NewBlockJoinPlan(transaction *tx.Transaction, lhs, rhs plan.Plan, predicate *query.Predicate, budget int, tracer trace.Tracer) (*BlockJoinPlan, error) {
	bp := &BlockJoinPlan{
		transaction: transaction,
		lhs:         lhs,
		rhs:         rhs,
		predicate:   predicate,
		budget:      budget,
		schema:      record.NewSchema(),
		tracer:      trace.OrNoop(tracer),
	}
	bp.schema.AddAll(lhs.Schema())
	bp.schema.AddAll(rhs.Schema())
	if err := predicate.CheckFields(bp.schema); err != nil {
		return nil, err
	}
	return bp, nil
}

// DeriveBufferBudget returns the largest chunk size that evenly divides the
// materialized left input and fits the available buffers.
func DeriveBufferBudget(transaction *tx.Transaction, lhs plan.Plan) int {
	blocks := materializedBlocks(transaction, lhs.Schema(), lhs.RecordsOutput())
	return materialize.BestFactor(transaction.AvailableBuffers(), max(blocks, 1))
}

func (bp *BlockJoinPlan) Budget() int {
	return bp.budget
}

// Open materializes the left input. The budget only bounds the chunk size:
// each chunk is capped when it is pinned so that the right input and an
// index probe above the join can still pin their blocks.
func (bp *BlockJoinPlan) Open() (scan.Scan, error) {
	lhs, err := materializeInto(bp.transaction, bp.lhs)
	if err != nil {
		return nil, err
	}
	rhsScan, err := bp.rhs.Open()
	if err != nil {
		_ = lhs.Drop()
		return nil, err
	}
	return query.NewBlockJoinScan(bp.transaction, lhs, rhsScan, bp.predicate, bp.budget, pinsNeeded(bp.rhs)+1, bp.tracer)
}

// BlocksAccessed is one pass over the left input plus one pass over the
// right input per chunk. A budget below 1 is never worth choosing.
func (bp *BlockJoinPlan) BlocksAccessed() int {
	if bp.budget < 1 {
		return math.MaxInt32
	}
	size := materializedBlocks(bp.transaction, bp.lhs.Schema(), bp.lhs.RecordsOutput())
	chunks := (size + bp.budget - 1) / bp.budget
	return addSat(bp.lhs.BlocksAccessed(), mulSat(chunks, bp.rhs.BlocksAccessed()))
}

func (bp *BlockJoinPlan) RecordsOutput() int {
	return mulSat(bp.lhs.RecordsOutput(), bp.rhs.RecordsOutput()) / bp.predicate.ReductionFactor(bp)
}

func (bp *BlockJoinPlan) DistinctValues(fieldName string) int {
	if bp.lhs.Schema().HasField(fieldName) {
		return bp.lhs.DistinctValues(fieldName)
	}
	return bp.rhs.DistinctValues(fieldName)
}

func (bp *BlockJoinPlan) Schema() *record.Schema {
	return bp.schema
}

func (bp *BlockJoinPlan) describe() string {
	return fmt.Sprintf("blockjoin %s budget=%d", bp.predicate, bp.budget)
}

func (bp *BlockJoinPlan) inputs() []plan.Plan {
	return []plan.Plan{bp.lhs, bp.rhs}
}
