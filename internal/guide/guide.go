// Package guide defines the core domain types of the city guide and the pure
// projection that turns a catalog into an ordered, distance-annotated list.
// It has no dependencies on storage or transport.
package guide

import (
	"math"
	"strings"
	"unicode"
)

// Position is a point on the globe in decimal degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both coordinates are finite and within range.
func (p Position) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Place is one point of interest. Coords is nil when the source record
// carried no coordinates.
type Place struct {
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
	Coords   *Position `json:"coords,omitempty"`
	Comment  string    `json:"comment,omitempty"`
	Link     string    `json:"link,omitempty"`
	City     string    `json:"city"`
}

// Catalog is the ordered set of places for one city. It is replaced, never
// mutated, when a new city is loaded.
type Catalog struct {
	City     string   `json:"city"`
	Key      string   `json:"key"`
	Places   []Place  `json:"places"`
	Warnings []string `json:"warnings,omitempty"`
}

// Empty returns a catalog with no places for the given city.
func Empty(city string) Catalog {
	return Catalog{City: city, Key: CityKey(city), Places: []Place{}}
}

// CityKey derives the storage and data-resource key from a city display
// name: lowercase with all whitespace removed ("Hong Kong" -> "hongkong").
func CityKey(city string) string {
	var b strings.Builder
	b.Grow(len(city))
	for _, r := range city {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
