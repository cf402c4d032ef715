package guide

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/golang/geo/s2"
)

const (
	// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
	EarthRadiusMeters = 6371000

	// MinutesPerKm is the assumed walking pace (~5 km/h).
	MinutesPerKm = 12

	// missingDistance sorts places without a distance after every real one.
	missingDistance = 1_000_000_000
)

// AnnotatedPlace is a Place plus its distance from the user and an estimated
// walking time. Both are nil when either end has no coordinates.
type AnnotatedPlace struct {
	Place
	DistanceM *int `json:"distanceM"`
	Minutes   *int `json:"minutes"`
}

// Query holds the view filters applied by Project.
type Query struct {
	Category string
	Search   string
}

// Distance returns the great-circle distance between a and b in whole meters.
func Distance(a, b Position) int {
	angle := s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon))
	return int(math.Round(angle.Radians() * EarthRadiusMeters))
}

// WalkingMinutes converts a distance in meters to estimated walking minutes.
func WalkingMinutes(meters int) int {
	return int(math.Round(float64(meters) / 1000 * MinutesPerKm))
}

// Project filters, annotates and orders the catalog for display. It never
// mutates its inputs; callers re-derive the result on every state change.
func Project(c Catalog, q Query, user *Position) []AnnotatedPlace {
	category := strings.ToLower(strings.TrimSpace(q.Category))
	term := strings.ToLower(strings.TrimSpace(q.Search))
	key := CityKey(c.City)

	out := make([]AnnotatedPlace, 0, len(c.Places))
	for _, p := range c.Places {
		if CityKey(p.City) != key {
			continue
		}
		if category != "" && strings.ToLower(strings.TrimSpace(p.Category)) != category {
			continue
		}
		if term != "" && !matches(p, term) {
			continue
		}
		out = append(out, annotate(p, user))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return sortDistance(out[i]) < sortDistance(out[j])
	})
	return out
}

func matches(p Place, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Category), term) ||
		strings.Contains(strings.ToLower(p.Comment), term)
}

func annotate(p Place, user *Position) AnnotatedPlace {
	ap := AnnotatedPlace{Place: p}
	if user == nil || p.Coords == nil {
		return ap
	}
	d := Distance(*user, *p.Coords)
	m := WalkingMinutes(d)
	ap.DistanceM = &d
	ap.Minutes = &m
	return ap
}

func sortDistance(ap AnnotatedPlace) int {
	if ap.DistanceM == nil {
		return missingDistance
	}
	return *ap.DistanceM
}

// FormatDistance renders a distance the way the place list shows it:
// meters below 100 m, otherwise kilometers with one decimal.
func FormatDistance(meters *int) string {
	if meters == nil {
		return "—"
	}
	if *meters < 100 {
		return fmt.Sprintf("%d m", *meters)
	}
	return fmt.Sprintf("%.1f km", float64(*meters)/1000)
}

// MapsURL returns a map search link for the place, or "" without coordinates.
func MapsURL(p Place) string {
	if p.Coords == nil {
		return ""
	}
	return fmt.Sprintf("https://www.google.com/maps?q=%v,%v", p.Coords.Lat, p.Coords.Lon)
}
