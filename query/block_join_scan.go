package query

import (
	"github.com/JyotinderSingh/dropexec/materialize"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/table"
	"github.com/JyotinderSingh/dropexec/trace"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/pkg/errors"
)

var _ scan.Scan = (*BlockJoinScan)(nil)

// BlockJoinScan is a block nested loop join. The left input is a temp table
// read in chunks of chunkSize blocks. Each chunk is joined with a full pass
// over the right input.
type BlockJoinScan struct {
	tx        *tx.Transaction
	lhs       *materialize.TempTable
	rhs       scan.Scan
	predicate *Predicate
	chunkSize int
	reserve   int
	fileSize  int
	tracer    trace.Tracer

	nextBlock int
	chunk     *table.ChunkScan
	current   *SelectScan
	closed    bool
}

// NewBlockJoinScan takes ownership of lhs and drops it on Close. A chunk
// size below 1 or an empty left table yields no records. Each chunk leaves
// at least reserve buffers unpinned for the right input and the operators
// above the join.
func NewBlockJoinScan(transaction *tx.Transaction, lhs *materialize.TempTable, rhs scan.Scan, predicate *Predicate, chunkSize, reserve int, tracer trace.Tracer) (*BlockJoinScan, error) {
	bs := &BlockJoinScan{
		tx:        transaction,
		lhs:       lhs,
		rhs:       rhs,
		predicate: predicate,
		chunkSize: chunkSize,
		reserve:   reserve,
		tracer:    trace.OrNoop(tracer),
	}
	size, err := lhs.Size()
	if err != nil {
		_ = bs.Close()
		return nil, errors.Wrap(err, "size of materialized left input")
	}
	bs.fileSize = size
	bs.tracer.ScanOpened(trace.ScanEvent{Operator: "blockjoin", TempTable: lhs.TableName()})
	return bs, nil
}

// BeforeFirst releases the current chunk and restarts from the first block.
func (bs *BlockJoinScan) BeforeFirst() error {
	bs.current = nil
	bs.nextBlock = 0
	return bs.closeChunk()
}

// Next pulls from the filtered product of the current chunk and the right
// input, moving to the next chunk whenever it runs dry.
func (bs *BlockJoinScan) Next() (bool, error) {
	if bs.chunkSize < 1 {
		return false, nil
	}
	for {
		if bs.current == nil {
			more, err := bs.useNextChunk()
			if err != nil || !more {
				return false, err
			}
		}
		ok, err := bs.current.Next()
		if err != nil || ok {
			return ok, err
		}
		bs.current = nil
		if err := bs.closeChunk(); err != nil {
			return false, err
		}
	}
}

func (bs *BlockJoinScan) useNextChunk() (bool, error) {
	if bs.nextBlock >= bs.fileSize {
		return false, nil
	}
	// Buffers pinned since Open, by this join's ancestors or siblings, shrink
	// the chunk. It never drops below one block.
	size := min(bs.chunkSize, max(bs.tx.AvailableBuffers()-bs.reserve, 1))
	last := min(bs.nextBlock+size-1, bs.fileSize-1)
	chunk, err := table.NewChunkScan(bs.tx, bs.lhs.TableName(), bs.lhs.Layout(), bs.nextBlock, last)
	if err != nil {
		return false, err
	}
	bs.chunk = chunk
	bs.tracer.ChunkAdvanced(trace.ChunkEvent{Table: bs.lhs.TableName(), FirstBlock: bs.nextBlock, LastBlock: last})
	bs.nextBlock = last + 1

	product, err := NewProductScan(chunk, bs.rhs)
	if err != nil {
		return false, err
	}
	bs.current = NewSelectScan(product, bs.predicate)
	return true, nil
}

func (bs *BlockJoinScan) closeChunk() error {
	if bs.chunk == nil {
		return nil
	}
	err := bs.chunk.Close()
	bs.chunk = nil
	return err
}

// Close releases the current chunk and the right input and drops the left temp table.
func (bs *BlockJoinScan) Close() error {
	if bs.closed {
		return nil
	}
	bs.closed = true
	bs.current = nil
	firstErr := bs.closeChunk()
	if err := bs.rhs.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := bs.lhs.Drop(); err != nil && firstErr == nil {
		firstErr = err
	}
	bs.tracer.ScanClosed(trace.ScanEvent{Operator: "blockjoin", TempTable: bs.lhs.TableName()})
	return firstErr
}

func (bs *BlockJoinScan) HasField(fieldName string) bool {
	return bs.lhs.Layout().Schema().HasField(fieldName) || bs.rhs.HasField(fieldName)
}

func (bs *BlockJoinScan) GetVal(fieldName string) (any, error) {
	if bs.current == nil {
		return nil, errors.New("block join scan is not positioned on a record")
	}
	return bs.current.GetVal(fieldName)
}

func (bs *BlockJoinScan) GetInt(fieldName string) (int, error) {
	val, err := bs.GetVal(fieldName)
	return asInt(fieldName, val, err)
}

func (bs *BlockJoinScan) GetString(fieldName string) (string, error) {
	val, err := bs.GetVal(fieldName)
	return asString(fieldName, val, err)
}
