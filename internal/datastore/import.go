package datastore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/databirdlab/densitycal/internal/datastore/entities"
	"github.com/databirdlab/densitycal/internal/errors"
)

// Dataset is the YAML document loaded by Import. Surveys reference ARUs by
// their Ref; refs are local to the document.
type Dataset struct {
	ARUs    []ARURecord    `yaml:"arus"`
	Surveys []SurveyRecord `yaml:"surveys"`
}

// ARURecord describes one recorder.
type ARURecord struct {
	Ref  string  `yaml:"ref"`
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

// SurveyRecord describes one survey and its assets.
type SurveyRecord struct {
	Name   string        `yaml:"name"`
	Type   string        `yaml:"type"`
	Date   string        `yaml:"date"` // YYYY-MM-DD or RFC 3339 (day as written); empty means undated
	Status string        `yaml:"status"`
	Assets []AssetRecord `yaml:"assets"`
}

// AssetRecord describes one media asset with its detections.
type AssetRecord struct {
	File     string            `yaml:"file"`
	ARU      string            `yaml:"aru"` // ARURecord.Ref
	Bounds   *BoundsRecord     `yaml:"bounds"`
	Acoustic []DetectionRecord `yaml:"acoustic"`
	Visual   []DetectionRecord `yaml:"visual"`
}

// BoundsRecord is an asset footprint; nil corners are kept as NULL.
type BoundsRecord struct {
	LatTL *float64 `yaml:"lat_tl"`
	LonTL *float64 `yaml:"lon_tl"`
	LatBR *float64 `yaml:"lat_br"`
	LonBR *float64 `yaml:"lon_br"`
}

// DetectionRecord expands to Count identical detections (default 1).
type DetectionRecord struct {
	Class      string  `yaml:"class"`
	Count      int     `yaml:"count"`
	Start      float64 `yaml:"start"`
	End        float64 `yaml:"end"`
	Confidence float64 `yaml:"confidence"`
}

// ImportResult counts the rows written by Import.
type ImportResult struct {
	ARUs               int `yaml:"arus" json:"arus"`
	Surveys            int `yaml:"surveys" json:"surveys"`
	Assets             int `yaml:"assets" json:"assets"`
	AcousticDetections int `yaml:"acoustic_detections" json:"acoustic_detections"`
	VisualDetections   int `yaml:"visual_detections" json:"visual_detections"`
}

// LoadDatasetFile reads and parses a dataset file.
func LoadDatasetFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	dataset, err := ParseDataset(data)
	if err != nil {
		return nil, err
	}
	return dataset, nil
}

// ParseDataset decodes a YAML dataset. Unknown keys are rejected.
func ParseDataset(data []byte) (*Dataset, error) {
	var dataset Dataset
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&dataset); err != nil {
		return nil, errors.New(fmt.Errorf("invalid dataset: %w", err)).
			Component("datastore").
			Category(errors.CategoryFileParsing).
			Build()
	}
	return &dataset, nil
}

// parseSurveyDate accepts a calendar date or an RFC 3339 timestamp. A
// timestamp keeps the calendar day written in its own offset, stored as UTC
// midnight, so the day survives drivers that return times in UTC.
func parseSurveyDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("date %q is neither YYYY-MM-DD nor RFC 3339", value)
	}
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &day, nil
}

// Import writes a dataset in one transaction. Any invalid record rolls the
// whole import back.
func Import(ctx context.Context, store Interface, dataset *Dataset) (*ImportResult, error) {
	result := &ImportResult{}
	err := store.Transaction(ctx, func(tx Interface) error {
		aruIDs := make(map[string]uint, len(dataset.ARUs))
		for i := range dataset.ARUs {
			rec := &dataset.ARUs[i]
			if rec.Ref == "" {
				return importError("aru %d has no ref", i)
			}
			if _, dup := aruIDs[rec.Ref]; dup {
				return importError("duplicate aru ref %q", rec.Ref)
			}
			aru := &entities.ARU{Name: rec.Name, Lat: rec.Lat, Lon: rec.Lon}
			if aru.Name == "" {
				aru.Name = rec.Ref
			}
			if err := tx.ARUs().Create(ctx, aru); err != nil {
				return err
			}
			aruIDs[rec.Ref] = aru.ID
			result.ARUs++
		}

		for i := range dataset.Surveys {
			if err := importSurvey(ctx, tx, &dataset.Surveys[i], aruIDs, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func importSurvey(ctx context.Context, tx Interface, rec *SurveyRecord, aruIDs map[string]uint, result *ImportResult) error {
	surveyType := entities.SurveyType(strings.ToLower(rec.Type))
	if !surveyType.IsValid() {
		return importError("survey %q has unknown type %q", rec.Name, rec.Type)
	}
	date, err := parseSurveyDate(rec.Date)
	if err != nil {
		return importError("survey %q: %v", rec.Name, err)
	}
	status := entities.ProcessingStatus(strings.ToLower(rec.Status))
	if status == "" {
		status = entities.StatusDone
	}
	if !status.IsValid() {
		return importError("survey %q has unknown status %q", rec.Name, rec.Status)
	}

	survey := &entities.Survey{Name: rec.Name, Type: surveyType, Date: date, Status: status}
	if err := tx.Surveys().Create(ctx, survey); err != nil {
		return err
	}
	result.Surveys++

	for j := range rec.Assets {
		assetRec := &rec.Assets[j]
		asset := &entities.MediaAsset{
			SurveyID: survey.ID,
			FileName: assetRec.File,
			Status:   status,
		}
		if assetRec.ARU != "" {
			id, ok := aruIDs[assetRec.ARU]
			if !ok {
				return importError("asset %q references unknown aru %q", assetRec.File, assetRec.ARU)
			}
			asset.ARUID = &id
		}
		if b := assetRec.Bounds; b != nil {
			asset.LatTL, asset.LonTL, asset.LatBR, asset.LonBR = b.LatTL, b.LonTL, b.LatBR, b.LonBR
		}
		if err := tx.Assets().Create(ctx, asset); err != nil {
			return err
		}
		result.Assets++

		acoustic := expandAcoustic(asset.ID, assetRec.Acoustic)
		if err := tx.Detections().CreateAcoustic(ctx, acoustic); err != nil {
			return err
		}
		result.AcousticDetections += len(acoustic)

		visual := expandVisual(asset.ID, assetRec.Visual)
		if err := tx.Detections().CreateVisual(ctx, visual); err != nil {
			return err
		}
		result.VisualDetections += len(visual)
	}
	return nil
}

func expandAcoustic(assetID uint, records []DetectionRecord) []*entities.AcousticDetection {
	var out []*entities.AcousticDetection
	for _, rec := range records {
		for range max(rec.Count, 1) {
			out = append(out, &entities.AcousticDetection{
				AssetID:    assetID,
				ClassName:  rec.Class,
				StartTime:  rec.Start,
				EndTime:    rec.End,
				Confidence: rec.Confidence,
			})
		}
	}
	return out
}

func expandVisual(assetID uint, records []DetectionRecord) []*entities.VisualDetection {
	var out []*entities.VisualDetection
	for _, rec := range records {
		for range max(rec.Count, 1) {
			out = append(out, &entities.VisualDetection{
				AssetID:    assetID,
				ClassName:  rec.Class,
				Confidence: rec.Confidence,
			})
		}
	}
	return out
}

func importError(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("datastore").
		Category(errors.CategoryValidation).
		Build()
}
