package domain

import (
	"context"
	"log/slog"
)

// GeocodingResult is a provider's best match for a lookup. The zero value
// means no match.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64
}

// Geocoder looks places up by name or by coordinates.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, name, state string) (GeocodingResult, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// ResolveRegion fills in whatever the region is missing. A region without
// coordinates takes them from a matching preset, else from forward
// geocoding its name. A region without a name is named by reverse geocoding
// its coordinates. Geocoding failures never fail the analysis: the region
// keeps what it had and GeoSource records the outcome. Bounds default to a
// box around the resolved centre.
func ResolveRegion(ctx context.Context, region Region, geocoder Geocoder, logger *slog.Logger) Region {
	region = locate(ctx, region, geocoder, logger)
	if region.Bounds == nil && region.HasCoordinates() {
		b := BoundsAround(region.Lat, region.Lon)
		region.Bounds = &b
	}
	return region
}

func locate(ctx context.Context, region Region, geocoder Geocoder, logger *slog.Logger) Region {
	if region.HasCoordinates() {
		if region.Name != "" {
			region.GeoSource = GeoSourceOriginal
			return region
		}
		return reverse(ctx, region, geocoder, logger)
	}

	if preset, ok := PresetRegion(region.Name); ok {
		preset.GeoSource = GeoSourcePreset
		return preset
	}

	if geocoder == nil || region.Name == "" {
		region.GeoSource = GeoSourceOriginal
		return region
	}

	result, err := geocoder.ForwardGeocode(ctx, region.City(), region.State())
	if err != nil {
		logger.Warn("forward geocoding failed",
			"region", region.Name,
			"error", err,
		)
		region.GeoSource = GeoSourceFailed
		return region
	}
	if result.Lat == 0 && result.Lon == 0 {
		region.GeoSource = GeoSourceOriginal
		return region
	}
	region.Lat = result.Lat
	region.Lon = result.Lon
	region.FormattedAddress = result.FormattedAddress
	region.GeoConfidence = result.Confidence
	region.GeoSource = GeoSourceForward
	return region
}

func reverse(ctx context.Context, region Region, geocoder Geocoder, logger *slog.Logger) Region {
	region.Name = customRegionName(region.Lat, region.Lon)
	if geocoder == nil {
		region.GeoSource = GeoSourceOriginal
		return region
	}

	result, err := geocoder.ReverseGeocode(ctx, region.Lat, region.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", region.Lat,
			"lon", region.Lon,
			"error", err,
		)
		region.GeoSource = GeoSourceFailed
		return region
	}
	if result.FormattedAddress == "" {
		region.GeoSource = GeoSourceOriginal
		return region
	}
	if result.PlaceName != "" {
		region.Name = result.PlaceName
	}
	region.FormattedAddress = result.FormattedAddress
	region.GeoConfidence = result.Confidence
	region.GeoSource = GeoSourceReverse
	return region
}
