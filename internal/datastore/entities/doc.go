// Package entities defines the GORM models of the calibration store.
//
// # Source data
//
//   - Survey: one acoustic or drone monitoring session on a date
//   - ARU: a fixed recorder with a point location
//   - MediaAsset: a recording or image of a survey, optionally tied to an
//     ARU and carrying a top-left/bottom-right footprint
//   - AcousticDetection, VisualDetection: classifier output per asset
//
// # Derived data
//
//   - CalibrationWindow: one (acoustic survey, ARU) paired with one drone
//     survey. The table is replaced wholesale by every rebuild and is never
//     edited in place.
package entities
