package query

import (
	"github.com/JyotinderSingh/dropexec/materialize"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/table"
	"github.com/pkg/errors"
)

var _ scan.Scan = (*SortScan)(nil)

type sortPosition struct {
	rid1, rid2         *record.ID
	hasMore1, hasMore2 bool
	current            int
}

// SortScan merges one or two sorted runs. It owns the runs and drops them on Close.
type SortScan struct {
	runs          []*materialize.TempTable
	scan1         *table.Scan
	scan2         *table.Scan
	currentScan   *table.Scan
	comparator    *RecordComparator
	hasMore1      bool
	hasMore2      bool
	savedPosition *sortPosition
}

// NewSortScan creates a sort scan, given a list of one or two sorted runs.
func NewSortScan(runs []*materialize.TempTable, comparator *RecordComparator) (*SortScan, error) {
	if len(runs) == 0 || len(runs) > 2 {
		return nil, errors.Errorf("sort scan needs one or two runs, got %d", len(runs))
	}
	ss := &SortScan{runs: runs, comparator: comparator}

	var err error
	if ss.scan1, err = runs[0].Open(); err != nil {
		_ = ss.Close()
		return nil, err
	}
	if len(runs) > 1 {
		if ss.scan2, err = runs[1].Open(); err != nil {
			_ = ss.Close()
			return nil, err
		}
	}
	if err := ss.BeforeFirst(); err != nil {
		_ = ss.Close()
		return nil, err
	}
	return ss, nil
}

// BeforeFirst moves each run to its first record. There is no current scan
// until Next is called.
func (ss *SortScan) BeforeFirst() error {
	ss.currentScan = nil
	var err error
	if err = ss.scan1.BeforeFirst(); err != nil {
		return err
	}
	if ss.hasMore1, err = ss.scan1.Next(); err != nil {
		return err
	}
	if ss.scan2 != nil {
		if err = ss.scan2.BeforeFirst(); err != nil {
			return err
		}
		if ss.hasMore2, err = ss.scan2.Next(); err != nil {
			return err
		}
	}
	return nil
}

// Next advances the current run and then picks the run with the lower record.
func (ss *SortScan) Next() (bool, error) {
	var err error
	switch ss.currentScan {
	case nil:
	case ss.scan1:
		ss.hasMore1, err = ss.scan1.Next()
	default:
		ss.hasMore2, err = ss.scan2.Next()
	}
	if err != nil {
		return false, err
	}

	switch {
	case ss.hasMore1 && ss.hasMore2:
		c, err := ss.comparator.Compare(ss.scan1, ss.scan2)
		if err != nil {
			return false, err
		}
		if c <= 0 {
			ss.currentScan = ss.scan1
		} else {
			ss.currentScan = ss.scan2
		}
	case ss.hasMore1:
		ss.currentScan = ss.scan1
	case ss.hasMore2:
		ss.currentScan = ss.scan2
	default:
		return false, nil
	}
	return true, nil
}

// Close closes both runs and drops their tables.
func (ss *SortScan) Close() error {
	var firstErr error
	for _, s := range []*table.Scan{ss.scan1, ss.scan2} {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, run := range ss.runs {
		if err := run.Drop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	ss.currentScan = nil
	return firstErr
}

func (ss *SortScan) HasField(fieldName string) bool {
	return ss.scan1.HasField(fieldName)
}

func (ss *SortScan) GetInt(fieldName string) (int, error) {
	if ss.currentScan == nil {
		return 0, errors.New("sort scan is not positioned on a record")
	}
	return ss.currentScan.GetInt(fieldName)
}

func (ss *SortScan) GetString(fieldName string) (string, error) {
	if ss.currentScan == nil {
		return "", errors.New("sort scan is not positioned on a record")
	}
	return ss.currentScan.GetString(fieldName)
}

func (ss *SortScan) GetVal(fieldName string) (any, error) {
	if ss.currentScan == nil {
		return nil, errors.New("sort scan is not positioned on a record")
	}
	return ss.currentScan.GetVal(fieldName)
}

// SavePosition remembers the current record so it can be restored later.
func (ss *SortScan) SavePosition() {
	pos := &sortPosition{
		rid1:     ss.scan1.GetRecordID(),
		hasMore1: ss.hasMore1,
		hasMore2: ss.hasMore2,
	}
	if ss.scan2 != nil {
		pos.rid2 = ss.scan2.GetRecordID()
	}
	switch ss.currentScan {
	case ss.scan1:
		pos.current = 1
	case nil:
		pos.current = 0
	default:
		pos.current = 2
	}
	ss.savedPosition = pos
}

// RestorePosition moves back to the record saved by SavePosition.
func (ss *SortScan) RestorePosition() error {
	pos := ss.savedPosition
	if pos == nil {
		return errors.New("no saved position")
	}
	if err := ss.scan1.MoveToRecordID(pos.rid1); err != nil {
		return err
	}
	if ss.scan2 != nil {
		if err := ss.scan2.MoveToRecordID(pos.rid2); err != nil {
			return err
		}
	}
	ss.hasMore1, ss.hasMore2 = pos.hasMore1, pos.hasMore2
	switch pos.current {
	case 1:
		ss.currentScan = ss.scan1
	case 2:
		ss.currentScan = ss.scan2
	default:
		ss.currentScan = nil
	}
	return nil
}
