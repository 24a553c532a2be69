// Package datastore opens the calibration store and exposes its repositories.
//
// The store is the persistence collaborator of the calibration engine:
// surveys, ARUs, media assets and detections are written by upstream tools or
// the dataset importer, and calibration windows are replaced wholesale by
// rebuilds. Both SQLite (default) and MySQL are supported through GORM.
package datastore
