package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteYearlyCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteYearlyCSV(&buf, []YearlyHazardData{
		{Year: 2000, Frequency: 1, Intensity: 10, Duration: 30},
		{Year: 2001},
		{Year: 2002, Frequency: 2, Intensity: 1.5, Duration: 3.5},
	})
	require.NoError(t, err)

	assert.Equal(t, "Year,Frequency,Intensity,Duration\n"+
		"2000,1,10,30\n"+
		"2001,0,0,0\n"+
		"2002,2,1.5,3.5\n", buf.String())
}

func TestWriteYearlyCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYearlyCSV(&buf, nil))
	assert.Equal(t, "Year,Frequency,Intensity,Duration\n", buf.String())
}
