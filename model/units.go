package model

const (
	// PointsPerInch is the number of page units in one inch
	PointsPerInch = 72.0

	// NormalMargin is the ceiling for every inferred page margin (1 inch)
	NormalMargin = PointsPerInch

	// DefaultTolerance is the geometric slack used when comparing edges
	DefaultTolerance = 1.0
)
