package domain

import (
	"fmt"
	"strings"
)

// regionHalfSpan is the default distance in degrees from a region's centre
// to each edge of its bounding box.
const regionHalfSpan = 0.1

// Geo source values recorded on a resolved Region.
const (
	GeoSourcePreset   = "preset"
	GeoSourceForward  = "forward"
	GeoSourceReverse  = "reverse"
	GeoSourceOriginal = "original"
	GeoSourceFailed   = "failed"
)

// Bounds is a latitude/longitude bounding box.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// BoundsAround returns the default box centred on a point.
func BoundsAround(lat, lon float64) Bounds {
	return Bounds{
		North: lat + regionHalfSpan,
		South: lat - regionHalfSpan,
		East:  lon + regionHalfSpan,
		West:  lon - regionHalfSpan,
	}
}

// Region is the geographic area an analysis covers.
type Region struct {
	Name   string  `json:"name" validate:"max=200"`
	Lat    float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon    float64 `json:"lon" validate:"gte=-180,lte=180"`
	Bounds *Bounds `json:"bounds,omitempty"`

	// Geocoding enrichment fields.
	FormattedAddress string  `json:"formatted_address,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
	GeoSource        string  `json:"geo_source,omitempty"`
}

// HasCoordinates reports whether the region carries a non-zero position.
func (r Region) HasCoordinates() bool {
	return r.Lat != 0 || r.Lon != 0
}

// City returns the part of the name before the first comma, e.g. "Phoenix"
// for "Phoenix, AZ".
func (r Region) City() string {
	city, _, _ := strings.Cut(r.Name, ",")
	return strings.TrimSpace(city)
}

// State returns the part of the name after the first comma, if any.
func (r Region) State() string {
	_, state, _ := strings.Cut(r.Name, ",")
	return strings.TrimSpace(state)
}

var presetRegions = []Region{
	{Name: "New York, NY", Lat: 40.7128, Lon: -74.006, Bounds: &Bounds{North: 40.8, South: 40.6, East: -73.9, West: -74.1}},
	{Name: "Los Angeles, CA", Lat: 34.0522, Lon: -118.2437, Bounds: &Bounds{North: 34.2, South: 33.9, East: -118.1, West: -118.4}},
	{Name: "Phoenix, AZ", Lat: 33.4484, Lon: -112.074, Bounds: &Bounds{North: 33.6, South: 33.3, East: -111.9, West: -112.2}},
	{Name: "Miami, FL", Lat: 25.7617, Lon: -80.1918, Bounds: &Bounds{North: 25.9, South: 25.6, East: -80.0, West: -80.3}},
	{Name: "Chicago, IL", Lat: 41.8781, Lon: -87.6298, Bounds: &Bounds{North: 42.0, South: 41.7, East: -87.5, West: -87.8}},
}

// PresetRegions returns a copy of the built-in regions.
func PresetRegions() []Region {
	out := make([]Region, len(presetRegions))
	for i, r := range presetRegions {
		out[i] = r
		b := *r.Bounds
		out[i].Bounds = &b
	}
	return out
}

// PresetRegion looks up a built-in region by full name ("Miami, FL") or by
// city ("miami"), ignoring case.
func PresetRegion(name string) (Region, bool) {
	probe := Region{Name: name}
	for _, r := range PresetRegions() {
		if strings.EqualFold(r.Name, strings.TrimSpace(name)) || strings.EqualFold(r.City(), probe.City()) {
			return r, true
		}
	}
	return Region{}, false
}

// customRegionName labels a region known only by its coordinates.
func customRegionName(lat, lon float64) string {
	return fmt.Sprintf("Custom (%.2f, %.2f)", lat, lon)
}
