// Package synth generates plausible daily weather for a region when a
// request carries no observations of its own.
//
// The model is deliberately simple: a latitude-driven annual temperature
// cycle, a linear warming trend from 1990, uniform daily noise and a few
// fixed regional offsets. Output is a pure function of the region and year
// range, so the same request always yields the same report.
package synth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/couchcryptid/climate-hazard-etl/internal/domain"
)

// MaxSpanYears bounds the number of years one call may generate.
const MaxSpanYears = 200

// ErrInvalidRange is returned for an empty or oversized year range.
var ErrInvalidRange = errors.New("invalid year range")

const (
	warmingBaseYear  = 1990
	warmingPerYear   = 0.02 // °C
	dailyNoise       = 10.0 // full width, °C
	rainChance       = 0.15
	maxRain          = 25.0 // mm
	basePressure     = 1013.0
	pressureSpread   = 30.0
	baseHumidity     = 60.0
	humiditySpread   = 40.0
	baseWind         = 5.0
	windSpread       = 10.0
	minHumidity      = 20.0
	maxHumidity      = 95.0
	seasonDays       = 365.0
	warmestLatitude  = 30.0
	latitudeCooling  = 0.5
	baseAmplitude    = 15.0
	latitudeSeasonal = 0.2
)

// regionalOffsets shift temperature for regions whose name contains the key.
var regionalOffsets = []struct {
	contains string
	offset   float64
}{
	{"Miami", -2},
	{"Phoenix", 5},
	{"New York", 1},
	{"Los Angeles", 1},
}

// Generator produces synthetic observation series.
type Generator struct{}

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Observations returns one observation per calendar day from January 1 of
// startYear through December 31 of endYear.
func (g *Generator) Observations(ctx context.Context, region domain.Region, startYear, endYear int) ([]domain.Observation, error) {
	if endYear < startYear {
		return nil, fmt.Errorf("%w: end year %d before start year %d", ErrInvalidRange, endYear, startYear)
	}
	if span := endYear - startYear + 1; span > MaxSpanYears {
		return nil, fmt.Errorf("%w: %d years exceeds limit of %d", ErrInvalidRange, span, MaxSpanYears)
	}

	seed := xxhash.Sum64String(fmt.Sprintf("%s|%.4f|%.4f|%d|%d", region.Name, region.Lat, region.Lon, startYear, endYear))
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	m := newClimate(region)

	out := make([]domain.Observation, 0, (endYear-startYear+1)*366)
	for year := startYear; year <= endYear; year++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for d := domain.NewDate(year, 1, 1); d.Year() == year; d = d.AddDays(1) {
			out = append(out, m.day(d, rng))
		}
	}
	return out, nil
}

// climate holds the per-region constants of the model.
type climate struct {
	baseTemp  float64
	amplitude float64
	offset    float64
}

func newClimate(region domain.Region) climate {
	c := climate{
		baseTemp:  20 - math.Abs(region.Lat-warmestLatitude)*latitudeCooling,
		amplitude: baseAmplitude + math.Abs(region.Lat)*latitudeSeasonal,
	}
	for _, r := range regionalOffsets {
		if strings.Contains(region.Name, r.contains) {
			c.offset += r.offset
		}
	}
	return c
}

func (c climate) day(d domain.Date, rng *rand.Rand) domain.Observation {
	seasonal := c.baseTemp + c.amplitude*math.Sin(float64(d.YearDay())/seasonDays*2*math.Pi-math.Pi/2)
	warming := float64(d.Year()-warmingBaseYear) * warmingPerYear
	noise := (rng.Float64() - 0.5) * dailyNoise
	temperature := seasonal + warming + noise + c.offset

	obs := domain.Observation{
		Date:        d,
		Temperature: math.Floor(temperature*10+0.5) / 10,
		Humidity:    max(minHumidity, min(maxHumidity, baseHumidity+(rng.Float64()-0.5)*humiditySpread)),
	}
	if rng.Float64() < rainChance {
		obs.Precipitation = rng.Float64() * maxRain
	}
	obs.WindSpeed = max(0, baseWind+(rng.Float64()-0.5)*windSpread)
	obs.Pressure = basePressure + (rng.Float64()-0.5)*pressureSpread
	return obs
}
