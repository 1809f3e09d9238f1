package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDataset = `
tables:
  - name: student
    fields:
      - {name: sid, type: int}
      - {name: sname, type: varchar, length: 10}
    rows:
      - [1, A]
      - [2, B]
  - name: enroll
    fields:
      - {name: esid, type: int}
      - {name: grade, type: varchar, length: 4}
    rows:
      - [1, A+]
      - [2, B-]
      - [1, C]
indexes:
  - {name: enroll_esid, table: enroll, field: esid}
`

const joinQuery = `
select: [sid, sname, grade]
from: [student, enroll]
where: [{lhs: {field: sid}, op: "=", rhs: {field: esid}}]
orderBy: [{field: grade}]
`

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func setupTestEnvironment(t *testing.T, config Config) (*DropDB, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	db, err := NewDropDB(config, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ds, err := ParseDataset([]byte(testDataset))
	require.NoError(t, err)
	require.NoError(t, db.Load(ds))
	return db, hook
}

func testConfig(t *testing.T) Config {
	config := DefaultConfig()
	config.DataDir = t.TempDir()
	config.BufferPoolSize = 20
	return config
}

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)

	path := writeFile(t, "dropexec.yaml", `
dataDir: data
blockSize: 800
pinTimeout: 2s
bufferBudget: 4
hashPartitions: 3
secondaryHashFactor: 2
planner: basic
trace: true
log:
  level: debug
  format: json
`)
	config, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "data"), config.DataDir)
	assert.Equal(t, 800, config.BlockSize)
	assert.Equal(t, 64, config.BufferPoolSize)
	assert.Equal(t, 2*time.Second, config.PinTimeout)
	assert.Equal(t, 4, config.BufferBudget)
	assert.Equal(t, 3, config.HashPartitions)
	assert.Equal(t, 2.0, config.SecondaryHashFactor)
	assert.Equal(t, 100, config.StatsRefreshLimit)
	assert.Equal(t, PlannerBasic, config.Planner)
	assert.True(t, config.Trace)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, config.Log)

	opts := config.PlannerOptions(nil)
	assert.Equal(t, 4, opts.BufferBudget)
	assert.Equal(t, 3, opts.HashPartitions)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown key":      "blocksize: 100",
		"small pool":       "bufferPoolSize: 2",
		"small block":      "blockSize: 10",
		"negative budget":  "bufferBudget: -1",
		"factor below one": "secondaryHashFactor: 0.5",
		"unknown planner":  "planner: greedy",
		"bad log level":    "log: {level: loud}",
		"bad log format":   "log: {format: xml}",
		"zero timeout":     "pinTimeout: 0s",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, "dropexec.yaml", content))
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	config := DefaultConfig()
	config.Log = LogConfig{Level: "warn", Format: "json"}
	logger, err := config.NewLogger(os.Stderr)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

func TestDropDB_Query(t *testing.T) {
	for _, planner := range []string{PlannerHeuristic, PlannerBasic} {
		t.Run(planner, func(t *testing.T) {
			config := testConfig(t)
			config.Planner = planner
			db, _ := setupTestEnvironment(t, config)

			result, err := db.Query([]byte(joinQuery))
			require.NoError(t, err)
			assert.NotEmpty(t, result.QueryID)
			assert.Equal(t, []string{"sid", "sname", "grade"}, result.Fields)
			assert.Equal(t, [][]any{{1, "A", "A+"}, {2, "B", "B-"}, {1, "A", "C"}}, result.Rows)
		})
	}
}

func TestDropDB_QueryTrace(t *testing.T) {
	config := testConfig(t)
	config.Trace = true
	db, hook := setupTestEnvironment(t, config)
	hook.Reset()

	result, err := db.Query([]byte(joinQuery))
	require.NoError(t, err)

	var candidates int
	for _, entry := range hook.AllEntries() {
		assert.Equal(t, result.QueryID, entry.Data["query_id"], entry.Message)
		if entry.Message == "plan candidate" {
			candidates++
		}
	}
	assert.Positive(t, candidates)
	assert.Equal(t, "query finished", hook.LastEntry().Message)
	assert.Equal(t, 3, hook.LastEntry().Data["rows"])
}

func TestDropDB_QueryErrors(t *testing.T) {
	db, _ := setupTestEnvironment(t, testConfig(t))

	_, err := db.Query([]byte("select: [sid]\nfrom: [nope]"))
	assert.Error(t, err)
	_, err = db.Query([]byte("select: [sid"))
	assert.Error(t, err)

	result, err := db.Query([]byte("select: [sname]\nfrom: [student]"))
	require.NoError(t, err)
	assert.Len(t, result.Rows, 2)
}

func TestDropDB_Explain(t *testing.T) {
	db, _ := setupTestEnvironment(t, testConfig(t))

	out, err := db.Explain([]byte(joinQuery))
	require.NoError(t, err)
	assert.Contains(t, out, "project sid, sname, grade")
	assert.Contains(t, out, "sort grade")
	assert.Contains(t, out, "table student")
	assert.Contains(t, out, "table enroll")
}

func TestDropDB_ReopenDiscardsOldTables(t *testing.T) {
	config := testConfig(t)
	logger, hook := test.NewNullLogger()

	for run := 0; run < 2; run++ {
		db, err := NewDropDB(config, logger)
		require.NoError(t, err)
		ds, err := ParseDataset([]byte(testDataset))
		require.NoError(t, err)
		require.NoError(t, db.Load(ds))

		result, err := db.Query([]byte("select: [esid]\nfrom: [enroll]"))
		require.NoError(t, err)
		assert.Len(t, result.Rows, 3)
		require.NoError(t, db.Close())
	}

	var warned bool
	for _, entry := range hook.AllEntries() {
		warned = warned || entry.Level == logrus.WarnLevel
	}
	assert.True(t, warned)
}

func TestDropDB_TemporaryDataDir(t *testing.T) {
	config := DefaultConfig()
	logger, _ := test.NewNullLogger()
	db, err := NewDropDB(config, logger)
	require.NoError(t, err)
	dir := db.tempDir
	require.NotEmpty(t, dir)
	require.NoError(t, db.Close())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadDataset_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown type": `
tables: [{name: t, fields: [{name: a, type: float}]}]`,
		"missing length": `
tables: [{name: t, fields: [{name: a, type: varchar}]}]`,
		"wrong value type": `
tables: [{name: t, fields: [{name: a, type: int}], rows: [[x]]}]`,
		"string too long": `
tables: [{name: t, fields: [{name: a, type: varchar, length: 2}], rows: [[abc]]}]`,
		"wrong arity": `
tables: [{name: t, fields: [{name: a, type: int}], rows: [[1, 2]]}]`,
		"duplicate field": `
tables: [{name: t, fields: [{name: a, type: int}, {name: a, type: int}]}]`,
		"index on missing table": `
indexes: [{name: i, table: t, field: a}]`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			logger, _ := test.NewNullLogger()
			db, err := NewDropDB(testConfig(t), logger)
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			ds, err := ParseDataset([]byte(content))
			require.NoError(t, err)
			assert.Error(t, db.Load(ds))
		})
	}
}

func TestLoadDataset_File(t *testing.T) {
	ds, err := LoadDataset(writeFile(t, "data.yaml", testDataset))
	require.NoError(t, err)
	require.Len(t, ds.Tables, 2)
	assert.Equal(t, []any{1, "A+"}, ds.Tables[1].Rows[0])
	assert.Equal(t, IndexSpec{Name: "enroll_esid", Table: "enroll", Field: "esid"}, ds.Indexes[0])

	_, err = LoadDataset(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
