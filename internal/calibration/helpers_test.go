package calibration

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/databirdlab/densitycal/internal/conf"
	"github.com/databirdlab/densitycal/internal/datastore"
	"github.com/databirdlab/densitycal/internal/datastore/entities"
	"github.com/databirdlab/densitycal/internal/datastore/repository"
	"github.com/databirdlab/densitycal/internal/errors"
	"github.com/databirdlab/densitycal/internal/logger"
	"github.com/databirdlab/densitycal/internal/observability/metrics"
)

func discardLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
}

func openTestStore(t *testing.T) *datastore.Store {
	t.Helper()
	settings := &conf.DatabaseSettings{
		Type:   conf.DatabaseSQLite,
		SQLite: conf.SQLiteSettings{Path: filepath.Join(t.TempDir(), "calibration.db")},
	}
	store, err := datastore.Open(settings, discardLogger())
	require.NoError(t, err)
	return store
}

func newTestStore(t *testing.T) *datastore.Store {
	t.Helper()
	store := openTestStore(t)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestEngine(t *testing.T, store datastore.Interface) (*Engine, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	m, err := metrics.NewCalibrationMetrics(registry)
	require.NoError(t, err)
	return New(store, discardLogger(), m), registry
}

func load(t *testing.T, store datastore.Interface, ds *datastore.Dataset) {
	t.Helper()
	_, err := datastore.Import(t.Context(), store, ds)
	require.NoError(t, err)
}

func f(v float64) *float64 { return &v }

func box(latTL, lonTL, latBR, lonBR float64) *datastore.BoundsRecord {
	return &datastore.BoundsRecord{LatTL: f(latTL), LonTL: f(lonTL), LatBR: f(latBR), LonBR: f(lonBR)}
}

// scenario: ARU X at (10, 20) recorded 10 calls on two assets of acoustic
// survey A (2024-01-01); drone survey D counted 5 animals over a
// 0.001° x 0.001° footprint whose corner is the ARU.
func scenario(droneDate string) *datastore.Dataset {
	return &datastore.Dataset{
		ARUs: []datastore.ARURecord{{Ref: "x", Name: "ARU X", Lat: 10.000, Lon: 20.000}},
		Surveys: []datastore.SurveyRecord{
			{
				Name: "A", Type: "acoustic", Date: "2024-01-01",
				Assets: []datastore.AssetRecord{
					{File: "a1.wav", ARU: "x", Acoustic: []datastore.DetectionRecord{{Class: "Tui", Count: 6, End: 30}}},
					{File: "a2.wav", ARU: "x", Acoustic: []datastore.DetectionRecord{{Class: "Bellbird", Count: 4, End: 45}}},
				},
			},
			{
				Name: "D", Type: "drone", Date: droneDate,
				Assets: []datastore.AssetRecord{
					{File: "d1.jpg", Bounds: box(10.001, 20.000, 10.000, 20.001), Visual: []datastore.DetectionRecord{{Class: "kereru", Count: 5}}},
				},
			},
		},
	}
}

// series: three monthly acoustic/drone survey pairs at one ARU with calls
// 10/20/30 and animals 5/10/15, giving three windows in three groups.
func series() *datastore.Dataset {
	ds := &datastore.Dataset{
		ARUs: []datastore.ARURecord{{Ref: "x", Lat: 10.000, Lon: 20.000}},
	}
	months := []string{"2024-01", "2024-02", "2024-03"}
	for i, month := range months {
		calls := 10 * (i + 1)
		ds.Surveys = append(ds.Surveys,
			datastore.SurveyRecord{
				Name: "acoustic " + month, Type: "acoustic", Date: month + "-01",
				Assets: []datastore.AssetRecord{{
					File: month + ".wav", ARU: "x",
					Acoustic: []datastore.DetectionRecord{
						{Class: "Tui", Count: calls, End: 600},
						{Class: "Kaka", Count: i + 1, End: 600},
					},
				}},
			},
			datastore.SurveyRecord{
				Name: "drone " + month, Type: "drone", Date: month + "-03",
				Assets: []datastore.AssetRecord{{
					File: month + ".jpg", Bounds: box(10.001, 20.000, 10.000, 20.001),
					Visual: []datastore.DetectionRecord{{Class: "kereru", Count: 5 * (i + 1)}},
				}},
			},
		)
	}
	return ds
}

// failingStore makes window inserts fail inside transactions.
type failingStore struct {
	datastore.Interface
}

type failingWindows struct {
	repository.WindowRepository
}

var errInsertFailed = errors.NewStd("insert failed")

func (failingWindows) CreateBatch(context.Context, []*entities.CalibrationWindow) error {
	return errInsertFailed
}

func (s failingStore) Transaction(ctx context.Context, fn func(tx datastore.Interface) error) error {
	return s.Interface.Transaction(ctx, func(tx datastore.Interface) error {
		return fn(failingTx{tx})
	})
}

type failingTx struct {
	datastore.Interface
}

func (tx failingTx) Windows() repository.WindowRepository {
	return failingWindows{tx.Interface.Windows()}
}
