// Package calibration pairs acoustic and drone surveys into calibration
// windows and fits models that turn acoustic call rates into animal density.
//
// # Pipeline
//
//   - RebuildWindows replaces the calibration_windows table. An (acoustic
//     survey, ARU) pair becomes a window with every drone survey dated at most
//     MaxDaysApart away whose footprint, grown by BufferMeters, contains the ARU.
//   - FeatureRows turns windows into feature vectors: total calls per hour,
//     calls per asset and calls per hour of the top-K species.
//   - TrainSummary fits a linear model on all features and a quadratic model
//     on calls per hour by least squares.
//   - BacktestReport holds out one drone survey at a time and pools the
//     out-of-fold errors of both model families.
//   - PredictDensity retrains on all windows and predicts one pair.
//
// Geometry uses the flat-earth approximation of package geo. Read operations
// run inside one store transaction so they never observe a half-finished
// rebuild; rebuilds are serialised by the Engine.
package calibration
