package trace

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LogTracer writes every event as a debug entry tagged with a query id.
type LogTracer struct {
	logger  logrus.FieldLogger
	queryID string
}

// NewLogTracer returns a tracer with a fresh query id.
func NewLogTracer(logger logrus.FieldLogger) *LogTracer {
	id := uuid.NewString()
	return &LogTracer{
		logger:  logger.WithField("query_id", id),
		queryID: id,
	}
}

func (t *LogTracer) QueryID() string {
	return t.queryID
}

func (t *LogTracer) PlanChosen(e PlanEvent) {
	t.logger.WithFields(logrus.Fields{
		"table":    e.Table,
		"strategy": e.Strategy,
		"blocks":   e.BlocksAccessed,
		"records":  e.RecordsOutput,
		"chosen":   e.Chosen,
	}).Debug("plan candidate")
}

func (t *LogTracer) ScanOpened(e ScanEvent) {
	t.logger.WithFields(logrus.Fields{
		"operator":   e.Operator,
		"temp_table": e.TempTable,
	}).Debug("scan opened")
}

func (t *LogTracer) ScanClosed(e ScanEvent) {
	t.logger.WithFields(logrus.Fields{
		"operator":   e.Operator,
		"temp_table": e.TempTable,
	}).Debug("scan closed")
}

func (t *LogTracer) PartitionsBuilt(e PartitionsEvent) {
	t.logger.WithFields(logrus.Fields{
		"partitions":        e.Partitions,
		"secondary_modulus": e.SecondaryModulus,
		"left_records":      e.LeftRecords,
		"right_records":     e.RightRecords,
	}).Debug("hash partitions built")
}

func (t *LogTracer) ChunkAdvanced(e ChunkEvent) {
	t.logger.WithFields(logrus.Fields{
		"table":       e.Table,
		"first_block": e.FirstBlock,
		"last_block":  e.LastBlock,
	}).Debug("chunk advanced")
}
