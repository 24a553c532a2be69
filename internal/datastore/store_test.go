package datastore_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databirdlab/densitycal/internal/conf"
	"github.com/databirdlab/densitycal/internal/datastore"
	"github.com/databirdlab/densitycal/internal/datastore/entities"
	"github.com/databirdlab/densitycal/internal/datastore/repository"
	"github.com/databirdlab/densitycal/internal/errors"
	"github.com/databirdlab/densitycal/internal/logger"
	"github.com/databirdlab/densitycal/internal/observability/metrics"
)

func newTestStore(t *testing.T) *datastore.Store {
	t.Helper()
	settings := &conf.DatabaseSettings{
		Type:   conf.DatabaseSQLite,
		SQLite: conf.SQLiteSettings{Path: filepath.Join(t.TempDir(), "db", "test.db")},
	}
	store, err := datastore.Open(settings, logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	require.NoError(t, err)
	return &d
}

func TestOpenRejectsUnknownType(t *testing.T) {
	t.Parallel()

	_, err := datastore.Open(&conf.DatabaseSettings{Type: "postgres"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestOpenSQLiteMigratesSchema(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	assert.Equal(t, "sqlite", store.Dialect())
	for _, model := range []any{
		&entities.Survey{}, &entities.ARU{}, &entities.MediaAsset{},
		&entities.AcousticDetection{}, &entities.VisualDetection{}, &entities.CalibrationWindow{},
	} {
		assert.True(t, store.DB().Migrator().HasTable(model))
	}
	assert.True(t, store.DB().Migrator().HasColumn(&entities.Survey{}, "error_message"))
	assert.True(t, store.DB().Migrator().HasColumn(&entities.MediaAsset{}, "status"))
}

func TestSurveyRepository(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	store := newTestStore(t)

	drone := &entities.Survey{Name: "drone", Type: entities.SurveyTypeDrone, Date: date(t, "2024-01-05")}
	acoustic := &entities.Survey{Name: "acoustic", Type: entities.SurveyTypeAcoustic}
	require.NoError(t, store.Surveys().Create(ctx, drone))
	require.NoError(t, store.Surveys().Create(ctx, acoustic))
	assert.Equal(t, entities.StatusPending, acoustic.Status)

	got, err := store.Surveys().GetByID(ctx, drone.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Date)
	assert.Equal(t, "2024-01-05", got.Date.UTC().Format(time.DateOnly))

	_, err = store.Surveys().GetByID(ctx, 999)
	require.ErrorIs(t, err, repository.ErrSurveyNotFound)

	err = store.Surveys().Create(ctx, &entities.Survey{Type: "lidar"})
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	drones, err := store.Surveys().ListByType(ctx, entities.SurveyTypeDrone)
	require.NoError(t, err)
	require.Len(t, drones, 1)
	assert.Equal(t, drone.ID, drones[0].ID)
}

func TestAssetAndDetectionQueries(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	store := newTestStore(t)

	survey := &entities.Survey{Type: entities.SurveyTypeAcoustic}
	require.NoError(t, store.Surveys().Create(ctx, survey))
	aruA := &entities.ARU{Name: "A", Lat: 10, Lon: 20}
	aruB := &entities.ARU{Name: "B", Lat: 11, Lon: 21}
	require.NoError(t, store.ARUs().Create(ctx, aruA))
	require.NoError(t, store.ARUs().Create(ctx, aruB))

	assets := []*entities.MediaAsset{
		{SurveyID: survey.ID, ARUID: &aruB.ID, FileName: "b1.wav"},
		{SurveyID: survey.ID, ARUID: &aruA.ID, FileName: "a1.wav"},
		{SurveyID: survey.ID, ARUID: &aruA.ID, FileName: "a2.wav"},
		{SurveyID: survey.ID, FileName: "orphan.wav"},
	}
	for _, a := range assets {
		require.NoError(t, store.Assets().Create(ctx, a))
	}

	require.NoError(t, store.Detections().CreateAcoustic(ctx, []*entities.AcousticDetection{
		{AssetID: assets[1].ID, ClassName: "Wren", EndTime: 12},
		{AssetID: assets[1].ID, ClassName: "Wren", EndTime: 40},
		{AssetID: assets[2].ID, ClassName: "Robin", EndTime: 7},
		{AssetID: assets[0].ID, ClassName: "Robin", EndTime: 3},
	}))

	ids, err := store.Assets().DistinctARUIDs(ctx, survey.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{aruA.ID, aruB.ID}, ids)

	count, err := store.Assets().CountBySurveyAndARU(ctx, survey.ID, aruA.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	calls, err := store.Detections().CountAcousticBySurveyAndARU(ctx, survey.ID, aruA.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls)

	maxEnd, err := store.Detections().MaxEndTimes(ctx, []uint{assets[1].ID, assets[2].ID, assets[3].ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]float64{assets[1].ID: 40, assets[2].ID: 7}, maxEnd)

	species, err := store.Detections().SpeciesCounts(ctx, survey.ID, aruA.ID)
	require.NoError(t, err)
	assert.Equal(t, []repository.SpeciesCount{{ClassName: "Robin", Count: 1}, {ClassName: "Wren", Count: 2}}, species)
}

func TestWindowRepositoryOrdering(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	store := newTestStore(t)

	windows := []*entities.CalibrationWindow{
		{AcousticSurveyID: 1, VisualSurveyID: 2, ARUID: 1, DaysApart: 3, AcousticCallCount: 5},
		{AcousticSurveyID: 1, VisualSurveyID: 3, ARUID: 1, DaysApart: 1, AcousticCallCount: 1},
		{AcousticSurveyID: 1, VisualSurveyID: 4, ARUID: 1, DaysApart: 1, AcousticCallCount: 9},
	}
	require.NoError(t, store.Windows().CreateBatch(ctx, windows))

	listed, err := store.Windows().List(ctx, repository.WindowFilter{MinCalls: 0})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, []uint{windows[2].ID, windows[1].ID, windows[0].ID},
		[]uint{listed[0].ID, listed[1].ID, listed[2].ID})

	listed, err = store.Windows().List(ctx, repository.WindowFilter{MinCalls: 5, Limit: 1})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, windows[2].ID, listed[0].ID)

	training, err := store.Windows().ListForTraining(ctx, 2)
	require.NoError(t, err)
	require.Len(t, training, 2)
	assert.Less(t, training[0].ID, training[1].ID)

	deleted, err := store.Windows().DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)
	n, err := store.Windows().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	store := newTestStore(t)

	registry := prometheus.NewRegistry()
	m, err := metrics.NewDatastoreMetrics(registry)
	require.NoError(t, err)
	store.SetMetrics(m)

	require.NoError(t, store.Windows().CreateBatch(ctx, []*entities.CalibrationWindow{
		{AcousticSurveyID: 1, VisualSurveyID: 2, ARUID: 1, AcousticCallCount: 4},
	}))

	boom := errors.NewStd("boom")
	err = store.Transaction(ctx, func(tx datastore.Interface) error {
		if _, err := tx.Windows().DeleteAll(ctx); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := store.Windows().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	count, err := testutil.GatherAndCount(registry, "datastore_db_transactions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.RefreshRowCounts(ctx))
}

func TestTransactionCommits(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	store := newTestStore(t)

	err := store.Transaction(ctx, func(tx datastore.Interface) error {
		return tx.ARUs().Create(ctx, &entities.ARU{Name: "X", Lat: 1, Lon: 2})
	})
	require.NoError(t, err)

	aru, err := store.ARUs().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "X", aru.Name)

	_, err = store.ARUs().GetByID(ctx, 2)
	require.ErrorIs(t, err, repository.ErrARUNotFound)
}

// Repository errors carry the datastore component and database category.
func TestRepositoryErrorsAreCategorised(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	require.NoError(t, store.Close())

	_, err := store.Windows().Count(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDatabase))
}
