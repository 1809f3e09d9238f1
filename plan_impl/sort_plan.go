package plan_impl

import (
	"github.com/JyotinderSingh/dropexec/materialize"
	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/query"
	"github.com/JyotinderSingh/dropexec/record"
	"github.com/JyotinderSingh/dropexec/scan"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/pkg/errors"
)

var _ plan.Plan = (*SortPlan)(nil)

// SortPlan implements the sort operator
type SortPlan struct {
	transaction *tx.Transaction
	inputPlan   plan.Plan
	schema      *record.Schema
	sort        *query.Sort
	comparator  *query.RecordComparator
}

// NewSortPlan creates a new sort plan for the specified query. Every sort
// key must name a field of the input.
func NewSortPlan(transaction *tx.Transaction, p plan.Plan, sort *query.Sort) (*SortPlan, error) {
	if err := sort.CheckFields(p.Schema()); err != nil {
		return nil, err
	}
	return &SortPlan{
		transaction: transaction,
		inputPlan:   p,
		schema:      p.Schema(),
		sort:        sort,
		comparator:  query.NewRecordComparator(sort),
	}, nil
}

// Open is where most of the action is.
// Up to two sorted temporary tables are created,
// and are passed into SortScan for final merging.
func (sp *SortPlan) Open() (scan.Scan, error) {
	return sp.openSorted()
}

func (sp *SortPlan) openSorted() (_ *query.SortScan, err error) {
	var runs []*materialize.TempTable
	defer func() {
		if err != nil {
			dropAll(runs)
		}
	}()

	src, err := sp.inputPlan.Open()
	if err != nil {
		return nil, err
	}
	runs, err = sp.splitIntoRuns(src)
	if closeErr := src.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, errors.Wrap(err, "split into runs")
	}

	// Repeatedly merge runs until at most 2 remain
	for len(runs) > 2 {
		if runs, err = sp.doAMergeIteration(runs); err != nil {
			return nil, errors.Wrap(err, "merge runs")
		}
	}

	return query.NewSortScan(runs, sp.comparator)
}

// BlocksAccessed returns the number of blocks in the sorted table,
// which is the same as it would be in a materialized table.
// It does not include the one-time cost of materializing and sorting the records.
func (sp *SortPlan) BlocksAccessed() int {
	return materializedBlocks(sp.transaction, sp.schema, sp.inputPlan.RecordsOutput())
}

// preprocessingCost estimates the one-time cost of producing the sorted
// runs: one pass over the input and one write of every run block.
func (sp *SortPlan) preprocessingCost() int {
	return addSat(sp.inputPlan.BlocksAccessed(), sp.BlocksAccessed())
}

// RecordsOutput returns the number of records in the sorted table,
// which is the same as in the underlying query.
func (sp *SortPlan) RecordsOutput() int {
	return sp.inputPlan.RecordsOutput()
}

// DistinctValues returns the number of distinct field values in the sorted table,
// which is the same as in the underlying query.
func (sp *SortPlan) DistinctValues(fieldName string) int {
	return sp.inputPlan.DistinctValues(fieldName)
}

// Schema returns the schema of the sorted table,
// which is the same as in the underlying query.
func (sp *SortPlan) Schema() *record.Schema {
	return sp.schema
}

func (sp *SortPlan) describe() string {
	return "sort " + sp.sort.String()
}

func (sp *SortPlan) inputs() []plan.Plan {
	return []plan.Plan{sp.inputPlan}
}

// splitIntoRuns splits the records from the source scan into sorted runs.
// An empty input yields a single empty run.
func (sp *SortPlan) splitIntoRuns(src scan.Scan) (temps []*materialize.TempTable, err error) {
	currentTemp := materialize.NewTempTable(sp.transaction, sp.schema)
	temps = append(temps, currentTemp)

	currentScan, err := currentTemp.Open()
	if err != nil {
		return temps, err
	}
	defer func() {
		if currentScan == nil {
			return
		}
		if closeErr := currentScan.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := src.BeforeFirst(); err != nil {
		return temps, err
	}

	first := true
	for {
		hasNext, err := src.Next()
		if err != nil {
			return temps, err
		}
		if !hasNext {
			return temps, nil
		}

		if !first {
			cmp, err := sp.comparator.Compare(src, currentScan)
			if err != nil {
				return temps, err
			}
			if cmp < 0 {
				// Start a new run
				if err := currentScan.Close(); err != nil {
					return temps, err
				}
				currentTemp = materialize.NewTempTable(sp.transaction, sp.schema)
				temps = append(temps, currentTemp)
				if currentScan, err = currentTemp.Open(); err != nil {
					return temps, err
				}
			}
		}
		first = false

		if err := copyRecord(src, currentScan, sp.schema.Fields()); err != nil {
			return temps, err
		}
	}
}

// doAMergeIteration merges pairs of runs. The merged runs are dropped.
func (sp *SortPlan) doAMergeIteration(runs []*materialize.TempTable) ([]*materialize.TempTable, error) {
	var result []*materialize.TempTable

	for len(runs) > 1 {
		p1 := runs[0]
		p2 := runs[1]
		runs = runs[2:]

		merged, err := sp.mergeTwoRuns(p1, p2)
		if err != nil {
			return append(append(result, p1, p2), runs...), err
		}
		result = append(result, merged)
	}

	// Add any remaining run
	if len(runs) == 1 {
		result = append(result, runs[0])
	}

	return result, nil
}

// mergeTwoRuns merges two sorted runs into a single sorted run and drops
// both inputs.
func (sp *SortPlan) mergeTwoRuns(p1, p2 *materialize.TempTable) (*materialize.TempTable, error) {
	result := materialize.NewTempTable(sp.transaction, sp.schema)
	if err := sp.merge(p1, p2, result); err != nil {
		_ = result.Drop()
		return nil, err
	}
	if err := p1.Drop(); err != nil {
		return nil, err
	}
	if err := p2.Drop(); err != nil {
		return nil, err
	}
	return result, nil
}

func (sp *SortPlan) merge(p1, p2, result *materialize.TempTable) (err error) {
	src1, err := p1.Open()
	if err != nil {
		return err
	}
	defer closeInto(src1, &err)

	src2, err := p2.Open()
	if err != nil {
		return err
	}
	defer closeInto(src2, &err)

	dest, err := result.Open()
	if err != nil {
		return err
	}
	defer closeInto(dest, &err)

	hasMore1, err := src1.Next()
	if err != nil {
		return err
	}
	hasMore2, err := src2.Next()
	if err != nil {
		return err
	}

	fields := sp.schema.Fields()
	// Merge while both runs have records
	for hasMore1 && hasMore2 {
		cmp, err := sp.comparator.Compare(src1, src2)
		if err != nil {
			return err
		}
		if cmp < 0 {
			if err := copyRecord(src1, dest, fields); err != nil {
				return err
			}
			hasMore1, err = src1.Next()
		} else {
			if err := copyRecord(src2, dest, fields); err != nil {
				return err
			}
			hasMore2, err = src2.Next()
		}
		if err != nil {
			return err
		}
	}

	// Copy remaining records from first run
	for hasMore1 {
		if err := copyRecord(src1, dest, fields); err != nil {
			return err
		}
		if hasMore1, err = src1.Next(); err != nil {
			return err
		}
	}

	// Copy remaining records from second run
	for hasMore2 {
		if err := copyRecord(src2, dest, fields); err != nil {
			return err
		}
		if hasMore2, err = src2.Next(); err != nil {
			return err
		}
	}
	return nil
}

func dropAll(tables []*materialize.TempTable) {
	for _, t := range tables {
		_ = t.Drop()
	}
}

// closeInto closes s and records its error in *err unless one is already set.
func closeInto(s scan.Scan, err *error) {
	if closeErr := s.Close(); closeErr != nil && *err == nil {
		*err = closeErr
	}
}
