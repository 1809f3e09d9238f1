// Package trace defines structured events emitted while planning and executing
// a query. The default tracer discards them.
package trace

// PlanEvent records a planner decision.
type PlanEvent struct {
	Table          string
	Strategy       string
	BlocksAccessed int
	RecordsOutput  int
	Chosen         bool
}

// ScanEvent records the opening or closing of an operator's scan.
type ScanEvent struct {
	Operator  string
	TempTable string
}

// PartitionsEvent records the end of a hash join's partition phase.
type PartitionsEvent struct {
	Partitions       int
	SecondaryModulus int
	LeftRecords      int
	RightRecords     int
}

// ChunkEvent records a nested loop join moving to a new chunk.
type ChunkEvent struct {
	Table      string
	FirstBlock int
	LastBlock  int
}

type Tracer interface {
	PlanChosen(PlanEvent)
	ScanOpened(ScanEvent)
	ScanClosed(ScanEvent)
	PartitionsBuilt(PartitionsEvent)
	ChunkAdvanced(ChunkEvent)
}

type noop struct{}

func (noop) PlanChosen(PlanEvent)            {}
func (noop) ScanOpened(ScanEvent)            {}
func (noop) ScanClosed(ScanEvent)            {}
func (noop) PartitionsBuilt(PartitionsEvent) {}
func (noop) ChunkAdvanced(ChunkEvent)        {}

// Noop discards every event.
var Noop Tracer = noop{}

// OrNoop returns t, or Noop when t is nil.
func OrNoop(t Tracer) Tracer {
	if t == nil {
		return Noop
	}
	return t
}
