package domain

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var yearlyCSVHeader = []string{"Year", "Frequency", "Intensity", "Duration"}

// WriteYearlyCSV writes the yearly series as CSV with a header row.
func WriteYearlyCSV(w io.Writer, rows []YearlyHazardData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(yearlyCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Frequency),
			strconv.FormatFloat(r.Intensity, 'f', -1, 64),
			strconv.FormatFloat(r.Duration, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.Year, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
