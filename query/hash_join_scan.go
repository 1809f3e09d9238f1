package query

import (
	"github.com/JyotinderSingh/dropexec/materialize"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/table"
	"github.com/JyotinderSingh/dropexec/trace"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/JyotinderSingh/dropexec/types"
	"github.com/pkg/errors"
)

var _ scan.Scan = (*HashJoinScan)(nil)

// HashJoinSide is one input of a hash join.
type HashJoinSide struct {
	Scan   scan.Scan
	Schema *record.Schema
	Field  string
}

// HashJoinScan joins two inputs on equal field values. Both inputs are first
// split into the same number of partitions by the hash of the join value.
// Each partition pair is then joined through an in-memory table of the left
// partition's record IDs.
type HashJoinScan struct {
	left, right      HashJoinSide
	partitions       int
	secondaryModulus int
	tracer           trace.Tracer

	leftParts  []*materialize.TempTable
	rightParts []*materialize.TempTable

	current  int
	leftCur  *table.Scan
	rightCur *table.Scan
	buckets  map[int][]*record.ID
	pending  []*record.ID
	rightVal any
	closed   bool
}

// NewHashJoinScan partitions both inputs and positions the scan before its
// first record. The inputs are fully consumed and closed.
func NewHashJoinScan(transaction *tx.Transaction, left, right HashJoinSide, partitions, secondaryModulus int, tracer trace.Tracer) (*HashJoinScan, error) {
	if partitions < 1 {
		partitions = 1
	}
	hs := &HashJoinScan{
		left:             left,
		right:            right,
		partitions:       partitions,
		secondaryModulus: max(secondaryModulus, 1),
		tracer:           trace.OrNoop(tracer),
	}
	hs.tracer.ScanOpened(trace.ScanEvent{Operator: "hashjoin"})

	leftCount, err := hs.partition(transaction, left, &hs.leftParts)
	if err != nil {
		_ = hs.Close()
		return nil, errors.Wrap(err, "partition left input")
	}
	rightCount, err := hs.partition(transaction, right, &hs.rightParts)
	if err != nil {
		_ = hs.Close()
		return nil, errors.Wrap(err, "partition right input")
	}
	hs.tracer.PartitionsBuilt(trace.PartitionsEvent{
		Partitions:       partitions,
		SecondaryModulus: hs.secondaryModulus,
		LeftRecords:      leftCount,
		RightRecords:     rightCount,
	})

	if err := hs.BeforeFirst(); err != nil {
		_ = hs.Close()
		return nil, err
	}
	return hs, nil
}

// PartitionOf returns the partition a join value is routed to.
func PartitionOf(val any, partitions int) int {
	return types.Hash(val) % partitions
}

// partition copies every record of side into one of hs.partitions temp
// tables and returns the number of records copied.
func (hs *HashJoinScan) partition(transaction *tx.Transaction, side HashJoinSide, parts *[]*materialize.TempTable) (count int, err error) {
	scans := make([]*table.Scan, hs.partitions)
	defer func() {
		for _, s := range scans {
			if s == nil {
				continue
			}
			if closeErr := s.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}
		if closeErr := side.Scan.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for i := 0; i < hs.partitions; i++ {
		tt := materialize.NewTempTable(transaction, side.Schema)
		*parts = append(*parts, tt)
		if scans[i], err = tt.Open(); err != nil {
			return 0, err
		}
	}

	fields := side.Schema.Fields()
	if err := side.Scan.BeforeFirst(); err != nil {
		return 0, err
	}
	for {
		ok, err := side.Scan.Next()
		if err != nil {
			return 0, err
		}
		if !ok {
			return count, nil
		}
		key, err := side.Scan.GetVal(side.Field)
		if err != nil {
			return 0, err
		}
		dest := scans[PartitionOf(key, hs.partitions)]
		if err := dest.Insert(); err != nil {
			return 0, err
		}
		for _, field := range fields {
			val, err := side.Scan.GetVal(field)
			if err != nil {
				return 0, err
			}
			if err := dest.SetVal(field, val); err != nil {
				return 0, err
			}
		}
		count++
	}
}

// BeforeFirst rewinds to the first partition.
func (hs *HashJoinScan) BeforeFirst() error {
	if err := hs.closeCursors(); err != nil {
		return err
	}
	hs.current = -1
	return nil
}

// Next yields one record per left record ID in the current right record's
// bucket whose join value is equal, moving to the next right record and then
// the next partition as each is exhausted.
func (hs *HashJoinScan) Next() (bool, error) {
	for {
		for len(hs.pending) > 0 {
			rid := hs.pending[0]
			hs.pending = hs.pending[1:]
			if err := hs.leftCur.MoveToRecordID(rid); err != nil {
				return false, err
			}
			leftVal, err := hs.leftCur.GetVal(hs.left.Field)
			if err != nil {
				return false, err
			}
			if types.Equal(leftVal, hs.rightVal) {
				return true, nil
			}
		}

		if hs.rightCur != nil {
			ok, err := hs.rightCur.Next()
			if err != nil {
				return false, err
			}
			if ok {
				if hs.rightVal, err = hs.rightCur.GetVal(hs.right.Field); err != nil {
					return false, err
				}
				hs.pending = hs.buckets[hs.bucketOf(hs.rightVal)]
				continue
			}
		}

		more, err := hs.nextPartition()
		if err != nil || !more {
			return false, err
		}
	}
}

// bucketOf narrows a value within its partition by a modulus distinct from
// the partition count, then folds it back into [0, partitions).
func (hs *HashJoinScan) bucketOf(val any) int {
	return types.Hash(val) % hs.secondaryModulus % hs.partitions
}

// nextPartition opens the next partition pair whose left side is not empty.
func (hs *HashJoinScan) nextPartition() (bool, error) {
	if err := hs.closeCursors(); err != nil {
		return false, err
	}
	for hs.current+1 < hs.partitions {
		hs.current++
		leftCur, err := hs.leftParts[hs.current].Open()
		if err != nil {
			return false, err
		}
		hs.leftCur = leftCur

		buckets := make(map[int][]*record.ID)
		for {
			ok, err := leftCur.Next()
			if err != nil {
				return false, err
			}
			if !ok {
				break
			}
			val, err := leftCur.GetVal(hs.left.Field)
			if err != nil {
				return false, err
			}
			b := hs.bucketOf(val)
			buckets[b] = append(buckets[b], leftCur.GetRecordID())
		}
		if len(buckets) == 0 {
			if err := hs.closeCursors(); err != nil {
				return false, err
			}
			continue
		}

		hs.buckets = buckets
		if hs.rightCur, err = hs.rightParts[hs.current].Open(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (hs *HashJoinScan) closeCursors() error {
	hs.pending = nil
	hs.buckets = nil
	var firstErr error
	if hs.leftCur != nil {
		firstErr = hs.leftCur.Close()
		hs.leftCur = nil
	}
	if hs.rightCur != nil {
		if err := hs.rightCur.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		hs.rightCur = nil
	}
	return firstErr
}

// Close releases the open partition cursors, the inputs, and every partition table.
func (hs *HashJoinScan) Close() error {
	if hs.closed {
		return nil
	}
	hs.closed = true
	firstErr := hs.closeCursors()
	if err := closeAll(hs.left.Scan, hs.right.Scan); err != nil && firstErr == nil {
		firstErr = err
	}
	for _, parts := range [][]*materialize.TempTable{hs.leftParts, hs.rightParts} {
		for _, tt := range parts {
			if err := tt.Drop(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	hs.tracer.ScanClosed(trace.ScanEvent{Operator: "hashjoin"})
	return firstErr
}

// Partitions returns the partition tables of each side.
func (hs *HashJoinScan) Partitions() (left, right []*materialize.TempTable) {
	return hs.leftParts, hs.rightParts
}

func (hs *HashJoinScan) HasField(fieldName string) bool {
	return hs.left.Schema.HasField(fieldName) || hs.right.Schema.HasField(fieldName)
}

func (hs *HashJoinScan) GetVal(fieldName string) (any, error) {
	if hs.leftCur == nil || hs.rightCur == nil {
		return nil, errors.New("hash join scan is not positioned on a record")
	}
	if hs.left.Schema.HasField(fieldName) {
		return hs.leftCur.GetVal(fieldName)
	}
	if hs.right.Schema.HasField(fieldName) {
		return hs.rightCur.GetVal(fieldName)
	}
	return nil, fieldNotFound(fieldName)
}

func (hs *HashJoinScan) GetInt(fieldName string) (int, error) {
	val, err := hs.GetVal(fieldName)
	return asInt(fieldName, val, err)
}

func (hs *HashJoinScan) GetString(fieldName string) (string, error) {
	val, err := hs.GetVal(fieldName)
	return asString(fieldName, val, err)
}
