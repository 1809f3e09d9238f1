package plan_impl

import (
	"fmt"

	"github.com/JyotinderSingh/dropexec/materialize"
	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/query"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/trace"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/pkg/errors"
)

var _ plan.Plan = (*HashJoinPlan)(nil)

// HashJoinPlan partitions both inputs by the hash of their join values and
// joins matching partitions.
type HashJoinPlan struct {
	transaction           *tx.Transaction
	left, right           plan.Plan
	leftField, rightField string
	schema                *record.Schema

	partitions      int
	secondaryFactor float64
	tracer          trace.Tracer
}

type HashJoinOption func(*HashJoinPlan)

// WithPartitions fixes the partition count. Values below 1 keep the
// buffer-derived count.
func WithPartitions(k int) HashJoinOption {
	return func(hp *HashJoinPlan) {
		hp.partitions = k
	}
}

// WithSecondaryHashFactor sets the in-memory bucket modulus to f times the
// partition count.
func WithSecondaryHashFactor(f float64) HashJoinOption {
	return func(hp *HashJoinPlan) {
		if f > 0 {
			hp.secondaryFactor = f
		}
	}
}

func WithHashJoinTracer(t trace.Tracer) HashJoinOption {
	return func(hp *HashJoinPlan) {
		hp.tracer = trace.OrNoop(t)
	}
}

func NewHashJoinPlan(transaction *tx.Transaction, left, right plan.Plan, leftField, rightField string, opts ...HashJoinOption) (*HashJoinPlan, error) {
	if !left.Schema().HasField(leftField) {
		return nil, errors.Wrapf(query.ErrFieldNotFound, "hash join %s", leftField)
	}
	if !right.Schema().HasField(rightField) {
		return nil, errors.Wrapf(query.ErrFieldNotFound, "hash join %s", rightField)
	}

	hp := &HashJoinPlan{
		transaction:     transaction,
		left:            left,
		right:           right,
		leftField:       leftField,
		rightField:      rightField,
		schema:          record.NewSchema(),
		secondaryFactor: DefaultSecondaryHashFactor,
		tracer:          trace.Noop,
	}
	for _, opt := range opts {
		opt(hp)
	}
	hp.schema.AddAll(left.Schema())
	hp.schema.AddAll(right.Schema())
	return hp, nil
}

// Partitions returns the partition count the next Open will use. Every
// partition keeps a writer pinned while an input is copied, so the count
// only uses the buffers left after both inputs have pinned their blocks. A
// fixed count is lowered when the pool cannot hold it.
func (hp *HashJoinPlan) Partitions() int {
	free := hp.transaction.AvailableBuffers() - pinsNeeded(hp.left) - pinsNeeded(hp.right)
	if hp.partitions > 0 {
		return min(hp.partitions, max(free, 1))
	}
	leftBlocks := materializedBlocks(hp.transaction, hp.left.Schema(), hp.left.RecordsOutput())
	return materialize.BestRoot(free, leftBlocks+1)
}

// SecondaryModulus returns the modulus of the in-memory bucket hash for k
// partitions. It always differs from k.
func (hp *HashJoinPlan) SecondaryModulus(k int) int {
	return max(k+1, int(hp.secondaryFactor*float64(k)))
}

// Open partitions both inputs into temp tables. The returned scan drops
// them on Close.
func (hp *HashJoinPlan) Open() (scan.Scan, error) {
	k := hp.Partitions()

	leftScan, err := hp.left.Open()
	if err != nil {
		return nil, err
	}
	rightScan, err := hp.right.Open()
	if err != nil {
		closeQuietly(leftScan)
		return nil, err
	}

	return query.NewHashJoinScan(hp.transaction,
		query.HashJoinSide{Scan: leftScan, Schema: hp.left.Schema(), Field: hp.leftField},
		query.HashJoinSide{Scan: rightScan, Schema: hp.right.Schema(), Field: hp.rightField},
		k, hp.SecondaryModulus(k), hp.tracer)
}

// BlocksAccessed counts reading both inputs, writing the partitions and
// reading them back.
func (hp *HashJoinPlan) BlocksAccessed() int {
	return mulSat(3, addSat(hp.left.BlocksAccessed(), hp.right.BlocksAccessed()))
}

func (hp *HashJoinPlan) RecordsOutput() int {
	maxVals := max(hp.left.DistinctValues(hp.leftField), hp.right.DistinctValues(hp.rightField), 1)
	return mulSat(hp.left.RecordsOutput(), hp.right.RecordsOutput()) / maxVals
}

func (hp *HashJoinPlan) DistinctValues(fieldName string) int {
	if hp.left.Schema().HasField(fieldName) {
		return hp.left.DistinctValues(fieldName)
	}
	return hp.right.DistinctValues(fieldName)
}

func (hp *HashJoinPlan) Schema() *record.Schema {
	return hp.schema
}

func (hp *HashJoinPlan) describe() string {
	return fmt.Sprintf("hashjoin %s = %s", hp.leftField, hp.rightField)
}

func (hp *HashJoinPlan) inputs() []plan.Plan {
	return []plan.Plan{hp.left, hp.right}
}
