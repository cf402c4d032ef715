package guide

import (
	"math"
	"testing"
)

func at(lat, lon float64) *Position { return &Position{Lat: lat, Lon: lon} }

func names(aps []AnnotatedPlace) []string {
	out := make([]string, len(aps))
	for i, ap := range aps {
		out[i] = ap.Name
	}
	return out
}

func equalNames(t *testing.T, got []AnnotatedPlace, want ...string) {
	t.Helper()
	g := names(got)
	if len(g) != len(want) {
		t.Fatalf("got %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("got %v, want %v", g, want)
		}
	}
}

func osaka() Catalog {
	return Catalog{
		City: "Osaka",
		Key:  "osaka",
		Places: []Place{
			{Name: "Tea House", Category: "food", Coords: at(34.6, 135.5), Comment: "great matcha", City: "Osaka"},
			{Name: "Castle", Category: "sight", Coords: at(34.687, 135.526), City: "Osaka"},
			{Name: "Hidden Bar", Category: "Drinks ", City: "Osaka", Comment: "ask for the back room"},
			{Name: "Noodle Stand", Category: "food", City: "Osaka"},
		},
	}
}

func TestCityKey(t *testing.T) {
	tests := map[string]string{
		"Hong Kong":   "hongkong",
		"Osaka":       "osaka",
		"  New\tYork": "newyork",
		"":            "",
	}
	for in, want := range tests {
		if got := CityKey(in); got != want {
			t.Errorf("CityKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTeaHouseExample(t *testing.T) {
	got := Project(osaka(), Query{Search: "matcha"}, at(34.601, 135.501))
	if len(got) != 1 {
		t.Fatalf("expected 1 place, got %v", names(got))
	}
	if got[0].DistanceM == nil || *got[0].DistanceM != 144 {
		t.Fatalf("distance = %v, want 144", got[0].DistanceM)
	}
	if *got[0].Minutes != 2 {
		t.Errorf("minutes = %d, want 2", *got[0].Minutes)
	}
}

func TestDistanceSymmetricAndNonNegative(t *testing.T) {
	pairs := [][2]Position{
		{{34.6, 135.5}, {34.601, 135.501}},
		{{22.28, 114.16}, {22.3, 114.17}},
		{{-33.86, 151.2}, {51.5, -0.12}},
		{{0, 0}, {0, 0}},
	}
	for _, p := range pairs {
		ab, ba := Distance(p[0], p[1]), Distance(p[1], p[0])
		if ab < 0 {
			t.Errorf("Distance(%v, %v) = %d, want >= 0", p[0], p[1], ab)
		}
		if math.Abs(float64(ab-ba)) > 1 {
			t.Errorf("asymmetric distance: %d vs %d", ab, ba)
		}
	}
}

func TestWalkingMinutes(t *testing.T) {
	tests := []struct {
		meters, want int
	}{
		{0, 0},
		{124, 1},
		{144, 2},
		{1000, 12},
		{2500, 30},
	}
	for _, tt := range tests {
		if got := WalkingMinutes(tt.meters); got != tt.want {
			t.Errorf("WalkingMinutes(%d) = %d, want %d", tt.meters, got, tt.want)
		}
	}
}

func TestProjectWithoutPosition(t *testing.T) {
	got := Project(osaka(), Query{}, nil)
	equalNames(t, got, "Tea House", "Castle", "Hidden Bar", "Noodle Stand")
	for _, ap := range got {
		if ap.DistanceM != nil || ap.Minutes != nil {
			t.Errorf("%s: expected no distance without a position", ap.Name)
		}
	}
}

func TestProjectMissingDistanceSortsLastInCatalogOrder(t *testing.T) {
	c := Catalog{City: "Osaka", Places: []Place{
		{Name: "No coords A", City: "Osaka"},
		{Name: "Far", Coords: at(34.7, 135.5), City: "Osaka"},
		{Name: "No coords B", City: "Osaka"},
		{Name: "Near", Coords: at(34.6, 135.501), City: "Osaka"},
	}}
	got := Project(c, Query{}, at(34.6, 135.5))
	equalNames(t, got, "Near", "Far", "No coords A", "No coords B")
}

func TestProjectCoordinatesFirstRegardlessOfInsertion(t *testing.T) {
	c := Catalog{City: "Osaka", Places: []Place{
		{Name: "Undistanced", City: "Osaka"},
		{Name: "Distanced", Coords: at(35, 135), City: "Osaka"},
	}}
	equalNames(t, Project(c, Query{}, at(34, 135)), "Distanced", "Undistanced")
}

func TestProjectCategoryFilter(t *testing.T) {
	c := osaka()

	equalNames(t, Project(c, Query{Category: "FOOD"}, nil), "Tea House", "Noodle Stand")
	equalNames(t, Project(c, Query{Category: " drinks"}, nil), "Hidden Bar")

	if got := Project(c, Query{Category: "museum"}, nil); len(got) != 0 {
		t.Errorf("unknown category: expected empty result, got %v", names(got))
	}
	if got := Project(c, Query{}, nil); len(got) != len(c.Places) {
		t.Errorf("cleared filter: expected %d places, got %d", len(c.Places), len(got))
	}
}

func TestProjectSearch(t *testing.T) {
	c := osaka()
	tests := []struct {
		term string
		want []string
	}{
		{"castle", []string{"Castle"}},
		{"SIGHT", []string{"Castle"}},
		{"back room", []string{"Hidden Bar"}},
		{"  Matcha ", []string{"Tea House"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			equalNames(t, Project(c, Query{Search: tt.term}, nil), tt.want...)
		})
	}
}

func TestProjectDropsOtherCities(t *testing.T) {
	c := osaka()
	c.Places = append(c.Places, Place{Name: "Peak Tram", City: "Hong Kong"})
	for _, ap := range Project(c, Query{}, nil) {
		if ap.City != "Osaka" {
			t.Errorf("unexpected place from %s", ap.City)
		}
	}
}

func TestProjectDoesNotMutateCatalog(t *testing.T) {
	c := Catalog{City: "Osaka", Places: []Place{
		{Name: "B", Coords: at(35, 135), City: "Osaka"},
		{Name: "A", Coords: at(34, 135), City: "Osaka"},
	}}
	Project(c, Query{}, at(34, 135))
	if c.Places[0].Name != "B" {
		t.Error("Project reordered the catalog")
	}
}

func TestFormatDistance(t *testing.T) {
	n := func(v int) *int { return &v }
	tests := []struct {
		in   *int
		want string
	}{
		{nil, "—"},
		{n(42), "42 m"},
		{n(100), "0.1 km"},
		{n(1530), "1.5 km"},
	}
	for _, tt := range tests {
		if got := FormatDistance(tt.in); got != tt.want {
			t.Errorf("FormatDistance = %q, want %q", got, tt.want)
		}
	}
}

func TestMapsURL(t *testing.T) {
	if got := MapsURL(Place{Name: "x"}); got != "" {
		t.Errorf("expected empty link without coords, got %q", got)
	}
	if got := MapsURL(Place{Coords: at(34.6, 135.5)}); got != "https://www.google.com/maps?q=34.6,135.5" {
		t.Errorf("unexpected link %q", got)
	}
}
