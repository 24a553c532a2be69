package datastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/databirdlab/densitycal/internal/conf"
	"github.com/databirdlab/densitycal/internal/datastore/entities"
	"github.com/databirdlab/densitycal/internal/datastore/repository"
	"github.com/databirdlab/densitycal/internal/errors"
	"github.com/databirdlab/densitycal/internal/logger"
	"github.com/databirdlab/densitycal/internal/observability/metrics"
)

// Connection pool settings for MySQL
const (
	mysqlMaxIdleConns    = 10
	mysqlMaxOpenConns    = 100
	mysqlConnMaxLifetime = time.Hour
)

// Store is the GORM-backed Interface implementation.
type Store struct {
	db      *gorm.DB
	dialect string
	log     logger.Logger
	metrics *metrics.DatastoreMetrics
	inTx    bool

	surveys    repository.SurveyRepository
	arus       repository.ARURepository
	assets     repository.AssetRepository
	detections repository.DetectionRepository
	windows    repository.WindowRepository
}

var _ Interface = (*Store)(nil)

// Open connects to the configured backend and migrates the schema.
func Open(settings *conf.DatabaseSettings, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Global().Module("datastore")
	}
	gormConfig := &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(log, settings.SlowQueryThreshold),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch settings.Type {
	case conf.DatabaseSQLite, "":
		db, err = openSQLite(settings.SQLite.Path, gormConfig)
	case conf.DatabaseMySQL:
		db, err = openMySQL(&settings.MySQL, gormConfig)
	default:
		return nil, errors.Newf("unsupported database type %q", settings.Type).
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err != nil {
		return nil, err
	}

	store, err := NewStore(db, log)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	log.Info("datastore opened",
		logger.String("dialect", store.dialect))
	return store, nil
}

func openSQLite(path string, gormConfig *gorm.Config) (*gorm.DB, error) {
	if path == "" {
		return nil, errors.Newf("sqlite path is empty").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	// Recommended SQLite pragmas
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", path)
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to open SQLite database: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("path", path).
			Build()
	}
	return db, nil
}

func openMySQL(settings *conf.MySQLSettings, gormConfig *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(settings.MySQLDSN()), gormConfig)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to open MySQL database: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("host", settings.Host).
			Context("database", settings.Database).
			Build()
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to get underlying database: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	sqlDB.SetMaxIdleConns(mysqlMaxIdleConns)
	sqlDB.SetMaxOpenConns(mysqlMaxOpenConns)
	sqlDB.SetConnMaxLifetime(mysqlConnMaxLifetime)
	return db, nil
}

// NewStore wraps an open connection and migrates the schema.
func NewStore(db *gorm.DB, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Global().Module("datastore")
	}
	if err := db.AutoMigrate(
		&entities.Survey{},
		&entities.ARU{},
		&entities.MediaAsset{},
		&entities.AcousticDetection{},
		&entities.VisualDetection{},
		&entities.CalibrationWindow{},
	); err != nil {
		return nil, errors.New(fmt.Errorf("failed to migrate schema: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("dialect", db.Name()).
			Build()
	}
	return newStore(db, db.Name(), log, nil, false), nil
}

func newStore(db *gorm.DB, dialect string, log logger.Logger, m *metrics.DatastoreMetrics, inTx bool) *Store {
	return &Store{
		db:         db,
		dialect:    dialect,
		log:        log,
		metrics:    m,
		inTx:       inTx,
		surveys:    repository.NewSurveyRepository(db),
		arus:       repository.NewARURepository(db),
		assets:     repository.NewAssetRepository(db),
		detections: repository.NewDetectionRepository(db),
		windows:    repository.NewWindowRepository(db),
	}
}

// SetMetrics enables transaction metrics.
func (s *Store) SetMetrics(m *metrics.DatastoreMetrics) {
	s.metrics = m
}

// DB returns the underlying GORM handle.
func (s *Store) DB() *gorm.DB { return s.db }

// Dialect returns the GORM dialector name, "sqlite" or "mysql".
func (s *Store) Dialect() string { return s.dialect }

func (s *Store) Surveys() repository.SurveyRepository       { return s.surveys }
func (s *Store) ARUs() repository.ARURepository             { return s.arus }
func (s *Store) Assets() repository.AssetRepository         { return s.assets }
func (s *Store) Detections() repository.DetectionRepository { return s.detections }
func (s *Store) Windows() repository.WindowRepository       { return s.windows }

// Transaction implements Interface. Nested calls use savepoints.
func (s *Store) Transaction(ctx context.Context, fn func(tx Interface) error) error {
	start := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newStore(tx, s.dialect, s.log, s.metrics, true))
	})

	if s.metrics != nil && !s.inTx {
		status := metrics.StatusSuccess
		if err != nil {
			status = metrics.StatusError
			s.metrics.RecordTransactionError(metrics.OpTransaction, errorType(err))
		}
		s.metrics.RecordTransaction(status)
		s.metrics.RecordTransactionDuration(metrics.OpTransaction, time.Since(start).Seconds())
	}
	return err
}

// RefreshRowCounts publishes table sizes to the datastore metrics.
func (s *Store) RefreshRowCounts(ctx context.Context) error {
	if s.metrics == nil {
		return nil
	}
	surveys, err := s.surveys.Count(ctx)
	if err != nil {
		return err
	}
	windows, err := s.windows.Count(ctx)
	if err != nil {
		return err
	}
	s.metrics.UpdateTableRowCount(entities.Survey{}.TableName(), surveys)
	s.metrics.UpdateTableRowCount(entities.CalibrationWindow{}.TableName(), windows)
	return nil
}

// Close closes the connection pool. Closing a transaction view is a no-op.
func (s *Store) Close() error {
	if s.inTx {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return sqlDB.Close()
}

func errorType(err error) string {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return ee.GetCategory()
	}
	return string(errors.CategoryGeneric)
}
