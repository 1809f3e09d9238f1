package trace

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogTracer(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	tracer := NewLogTracer(logger)
	_, err := uuid.Parse(tracer.QueryID())
	require.NoError(t, err)

	tracer.PlanChosen(PlanEvent{Table: "enroll", Strategy: "hashjoin", BlocksAccessed: 12, Chosen: true})
	tracer.PartitionsBuilt(PartitionsEvent{Partitions: 3, SecondaryModulus: 4})
	tracer.ChunkAdvanced(ChunkEvent{Table: "temp1", FirstBlock: 0, LastBlock: 1})

	entries := hook.AllEntries()
	require.Len(t, entries, 3)
	for _, entry := range entries {
		assert.Equal(t, logrus.DebugLevel, entry.Level)
		assert.Equal(t, tracer.QueryID(), entry.Data["query_id"])
	}
	assert.Equal(t, "hashjoin", entries[0].Data["strategy"])
	assert.Equal(t, 3, entries[1].Data["partitions"])
	assert.Equal(t, "chunk advanced", hook.LastEntry().Message)
}

func TestLogTracer_SilentAboveDebug(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)

	NewLogTracer(logger).ScanOpened(ScanEvent{Operator: "sort"})
	assert.Empty(t, hook.AllEntries())
}

func TestOrNoop(t *testing.T) {
	assert.Equal(t, Noop, OrNoop(nil))
	tracer := NewLogTracer(logrus.New())
	assert.Equal(t, Tracer(tracer), OrNoop(tracer))
	Noop.PlanChosen(PlanEvent{})
}
