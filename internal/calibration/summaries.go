package calibration

import (
	"context"

	"github.com/databirdlab/densitycal/internal/datastore"
	"github.com/databirdlab/densitycal/internal/geo"
)

// acousticSummary holds the acoustic metrics of an (acoustic survey, ARU).
type acousticSummary struct {
	CallCount     int
	AssetCount    int
	CallsPerAsset float64
}

func acousticMetrics(ctx context.Context, store datastore.Interface, surveyID, aruID uint) (acousticSummary, error) {
	assets, err := store.Assets().CountBySurveyAndARU(ctx, surveyID, aruID)
	if err != nil {
		return acousticSummary{}, err
	}
	calls, err := store.Detections().CountAcousticBySurveyAndARU(ctx, surveyID, aruID)
	if err != nil {
		return acousticSummary{}, err
	}
	return acousticSummary{
		CallCount:     int(calls),
		AssetCount:    int(assets),
		CallsPerAsset: safeDiv(float64(calls), float64(assets)),
	}, nil
}

// droneSummary holds the footprint and visual metrics of a drone survey.
// Bounds is nil when no asset has all four corners.
type droneSummary struct {
	DetectionCount    int
	Bounds            *geo.Bounds
	AreaHectares      float64
	DensityPerHectare float64
}

// surveyBounds unions the footprints of a survey's complete assets.
func surveyBounds(ctx context.Context, store datastore.Interface, surveyID uint) (*geo.Bounds, error) {
	assets, err := store.Assets().ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	bounds := geo.NewBounds()
	for _, a := range assets {
		if !a.HasFootprint() {
			continue
		}
		bounds.ExtendCorners(*a.LatTL, *a.LonTL, *a.LatBR, *a.LonBR)
	}
	if bounds.IsEmpty() {
		return nil, nil
	}
	return bounds, nil
}

func droneMetrics(ctx context.Context, store datastore.Interface, surveyID uint) (droneSummary, error) {
	detections, err := store.Detections().CountVisualBySurvey(ctx, surveyID)
	if err != nil {
		return droneSummary{}, err
	}
	summary := droneSummary{DetectionCount: int(detections)}

	bounds, err := surveyBounds(ctx, store, surveyID)
	if err != nil {
		return droneSummary{}, err
	}
	if bounds == nil {
		return summary, nil
	}

	summary.Bounds = bounds
	summary.AreaHectares = geo.AreaHectares(bounds)
	summary.DensityPerHectare = safeDiv(float64(detections), summary.AreaHectares)
	return summary, nil
}
