package domain

import "errors"

var (
	// ErrEmptyInput is returned when a threshold is requested over no values.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidPercentile is returned for a percentile outside [0, 1].
	ErrInvalidPercentile = errors.New("percentile out of range [0, 1]")

	// ErrUnorderedSeries is returned when observation dates are not strictly ascending.
	ErrUnorderedSeries = errors.New("observations not in strictly ascending date order")

	// ErrInvalidObservation is returned for physically impossible readings.
	ErrInvalidObservation = errors.New("invalid observation")

	// ErrInvalidRequest wraps every validation failure of an analysis request.
	ErrInvalidRequest = errors.New("invalid analysis request")

	// ErrReportNotFound is returned when no stored report has the requested ID.
	ErrReportNotFound = errors.New("report not found")
)
