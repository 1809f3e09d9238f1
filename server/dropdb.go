package server

import (
	"os"
	"path/filepath"
	"time"

	"github.com/JyotinderSingh/dropexec/buffer"
	"github.com/JyotinderSingh/dropexec/file"
	"github.com/JyotinderSingh/dropexec/metadata"
	"github.com/JyotinderSingh/dropexec/plan"
	"github.com/JyotinderSingh/dropexec/plan_impl"
	"github.com/JyotinderSingh/dropexec/table"
	"github.com/JyotinderSingh/dropexec/trace"
	"github.com/JyotinderSingh/dropexec/tx"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DropDB wires the storage layers, the catalog and the planner together.
type DropDB struct {
	config          Config
	logger          logrus.FieldLogger
	fileManager     *file.Manager
	bufferManager   *buffer.Manager
	metadataManager *metadata.Manager
	// tempDir is set when the engine created its own data directory.
	tempDir string
}

// Result holds the output of one query.
type Result struct {
	QueryID string
	Fields  []string
	Rows    [][]any
}

// NewDropDB opens the engine described by config. The catalog lives in
// memory, so table files left in the data directory by an earlier run are
// removed.
func NewDropDB(config Config, logger logrus.FieldLogger) (*DropDB, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	db := &DropDB{config: config, logger: logger}

	dir := config.DataDir
	if dir == "" {
		var err error
		if dir, err = os.MkdirTemp("", "dropexec"); err != nil {
			return nil, errors.Wrap(err, "create data directory")
		}
		db.tempDir = dir
	} else if err := removeTableFiles(dir, logger); err != nil {
		return nil, err
	}

	var err error
	if db.fileManager, err = file.NewManager(dir, config.BlockSize); err != nil {
		return nil, err
	}
	db.bufferManager = buffer.NewManagerWithTimeout(db.fileManager, config.BufferPoolSize, config.PinTimeout)

	transaction := db.NewTx()
	if db.metadataManager, err = metadata.NewManager(transaction, config.StatsRefreshLimit); err != nil {
		return nil, err
	}
	if err := transaction.Commit(); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"data_dir":    dir,
		"block_size":  config.BlockSize,
		"buffer_pool": config.BufferPoolSize,
		"planner":     config.Planner,
	}).Info("database opened")
	return db, nil
}

func removeTableFiles(dir string, logger logrus.FieldLogger) error {
	stale, err := filepath.Glob(filepath.Join(dir, table.FileName("*")))
	if err != nil {
		return errors.Wrap(err, "list table files")
	}
	if len(stale) > 0 {
		logger.WithField("files", len(stale)).Warn("discarding table files from an earlier run")
	}
	for _, name := range stale {
		if err := os.Remove(name); err != nil {
			return errors.Wrapf(err, "remove %s", name)
		}
	}
	return nil
}

func (db *DropDB) NewTx() *tx.Transaction {
	return tx.NewTransaction(db.fileManager, db.bufferManager)
}

func (db *DropDB) MetadataManager() *metadata.Manager {
	return db.metadataManager
}

func (db *DropDB) FileManager() *file.Manager {
	return db.fileManager
}

func (db *DropDB) BufferManager() *buffer.Manager {
	return db.bufferManager
}

// Load creates the dataset's tables and indexes and refreshes statistics.
func (db *DropDB) Load(ds *Dataset) error {
	transaction := db.NewTx()
	for _, spec := range ds.Tables {
		if err := loadTable(transaction, db.metadataManager, spec); err != nil {
			_ = transaction.Rollback()
			return errors.Wrapf(err, "load table %s", spec.Name)
		}
		db.logger.WithFields(logrus.Fields{"table": spec.Name, "rows": len(spec.Rows)}).Info("table loaded")
	}
	for _, idx := range ds.Indexes {
		if err := db.metadataManager.CreateIndex(idx.Name, idx.Table, idx.Field, transaction); err != nil {
			_ = transaction.Rollback()
			return errors.Wrapf(err, "create index %s", idx.Name)
		}
		db.logger.WithFields(logrus.Fields{"index": idx.Name, "table": idx.Table, "field": idx.Field}).Info("index created")
	}
	if err := db.metadataManager.RefreshStatistics(transaction); err != nil {
		_ = transaction.Rollback()
		return err
	}
	return transaction.Commit()
}

// tracer returns the tracer of one query and its id.
func (db *DropDB) tracer() (trace.Tracer, string) {
	if db.config.Trace {
		t := trace.NewLogTracer(db.logger)
		return t, t.QueryID()
	}
	return trace.Noop, uuid.NewString()
}

func (db *DropDB) planner(tracer trace.Tracer) *plan_impl.Planner {
	var qp plan_impl.QueryPlanner
	if db.config.Planner == PlannerBasic {
		qp = plan_impl.NewBasicQueryPlanner(db.metadataManager)
	} else {
		qp = plan_impl.NewHeuristicQueryPlanner(db.metadataManager, db.config.PlannerOptions(tracer))
	}
	return plan_impl.NewPlanner(qp, db.metadataManager)
}

// Query plans and runs a YAML query request.
func (db *DropDB) Query(request []byte) (*Result, error) {
	tracer, queryID := db.tracer()
	logger := db.logger.WithField("query_id", queryID)
	start := time.Now()

	transaction := db.NewTx()
	p, err := db.planner(tracer).CreateQueryPlanFromYAML(request, transaction)
	if err != nil {
		_ = transaction.Rollback()
		return nil, err
	}
	result := &Result{QueryID: queryID, Fields: p.Schema().Fields()}
	if result.Rows, err = execute(p, result.Fields); err != nil {
		_ = transaction.Rollback()
		return nil, errors.Wrapf(err, "query %s", queryID)
	}
	if err := transaction.Commit(); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"rows":     len(result.Rows),
		"duration": time.Since(start),
	}).Info("query finished")
	return result, nil
}

// Explain plans a YAML query request and renders the plan tree.
func (db *DropDB) Explain(request []byte) (string, error) {
	tracer, _ := db.tracer()
	transaction := db.NewTx()
	defer func() { _ = transaction.Commit() }()

	p, err := db.planner(tracer).CreateQueryPlanFromYAML(request, transaction)
	if err != nil {
		return "", err
	}
	return plan_impl.Explain(p), nil
}

func execute(p plan.Plan, fields []string) (rows [][]any, err error) {
	s, err := p.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for {
		ok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return rows, nil
		}
		row := make([]any, len(fields))
		for i, field := range fields {
			if row[i], err = s.GetVal(field); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}
}

// Close releases the open files and removes a temporary data directory.
func (db *DropDB) Close() error {
	err := db.fileManager.Close()
	if db.tempDir != "" {
		if rmErr := os.RemoveAll(db.tempDir); rmErr != nil && err == nil {
			err = errors.Wrap(rmErr, "remove data directory")
		}
	}
	return err
}
