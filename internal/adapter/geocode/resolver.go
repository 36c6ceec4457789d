// Package geocode wraps the external geocoding provider. The conversation
// flow must always be able to proceed, so resolution never fails: provider
// errors are absorbed into a fixed fallback coordinate pair.
package geocode

import (
	"context"
	"log"
)

// Fallback coordinates substituted when the provider is unavailable
// (Almaty city center).
const (
	FallbackLatitude  = 43.2220
	FallbackLongitude = 76.8512
)

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lng float64, err error)
}

// Resolver degrades geocoding failures into the fallback pair.
type Resolver struct {
	geocoder Geocoder
}

func NewResolver(geocoder Geocoder) *Resolver {
	return &Resolver{geocoder: geocoder}
}

// Resolve returns coordinates for the address. On provider failure it logs
// and returns the fallback pair; callers proceed either way.
func (r *Resolver) Resolve(ctx context.Context, address string) (float64, float64) {
	lat, lng, err := r.geocoder.Geocode(ctx, address)
	if err != nil {
		log.Printf("Geocoding failed for %q, using fallback coordinates: %v", address, err)
		return FallbackLatitude, FallbackLongitude
	}
	return lat, lng
}
