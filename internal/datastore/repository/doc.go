// Package repository provides typed query interfaces over the calibration
// store tables. Each repository wraps a *gorm.DB, so the same constructors
// serve both a plain connection and a transaction handle.
package repository
