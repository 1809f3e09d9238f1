package plan_impl

import (
	"math"

	"github.com/JyotinderSingh/dropexec/materialize"
	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/pkg/errors"
)

// copyRecord inserts a new record into dest holding the current values of
// fields in src.
func copyRecord(src scan.Scan, dest scan.UpdateScan, fields []string) error {
	if err := dest.Insert(); err != nil {
		return err
	}
	for _, fieldName := range fields {
		val, err := src.GetVal(fieldName)
		if err != nil {
			return err
		}
		if err := dest.SetVal(fieldName, val); err != nil {
			return err
		}
	}
	return nil
}

// materializeInto copies the output of p into a new temp table. The table is
// dropped if copying fails.
func materializeInto(transaction *tx.Transaction, p plan.Plan) (_ *materialize.TempTable, err error) {
	schema := p.Schema()
	tempTable := materialize.NewTempTable(transaction, schema)
	defer func() {
		if err != nil {
			_ = tempTable.Drop()
		}
	}()

	src, err := p.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	dest, err := tempTable.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := dest.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for {
		hasNext, err := src.Next()
		if err != nil {
			return nil, errors.Wrap(err, "materialize")
		}
		if !hasNext {
			return tempTable, nil
		}
		if err := copyRecord(src, dest, schema.Fields()); err != nil {
			return nil, errors.Wrap(err, "materialize")
		}
	}
}

// materializedBlocks estimates the number of blocks needed to hold the
// given number of records of the schema.
func materializedBlocks(transaction *tx.Transaction, schema *record.Schema, records int) int {
	slotSize := record.NewLayout(schema).SlotSize()
	recordsPerBlock := float64(transaction.BlockSize()) / float64(slotSize)
	if recordsPerBlock < 1 {
		recordsPerBlock = 1
	}
	return int(math.Ceil(float64(records) / recordsPerBlock))
}

// mulSat multiplies two non-negative estimates, saturating at math.MaxInt32.
func mulSat(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > math.MaxInt32/b {
		return math.MaxInt32
	}
	return a * b
}

// addSat adds two non-negative estimates, saturating at math.MaxInt32.
func addSat(a, b int) int {
	if a > math.MaxInt32-b {
		return math.MaxInt32
	}
	return a + b
}

// closeQuietly releases scans on an error path.
func closeQuietly(scans ...scan.Scan) {
	for _, s := range scans {
		if s != nil {
			_ = s.Close()
		}
	}
}

// pinsNeeded estimates the fewest buffers a scan of p keeps pinned at once
// while it is being read.
func pinsNeeded(p plan.Plan) int {
	switch p := p.(type) {
	case *TablePlan, *MaterializePlan:
		return 1
	case *HashJoinPlan, *SortPlan, *IndexSelectPlan:
		return 2
	case *IndexJoinPlan:
		return pinsNeeded(p.plan1) + 2
	case *BlockJoinPlan:
		// a one-block chunk
		return 1 + pinsNeeded(p.rhs)
	}
	e, ok := p.(explainable)
	if !ok {
		return 1
	}
	total := 0
	for _, child := range e.inputs() {
		total += pinsNeeded(child)
	}
	return max(total, 1)
}
