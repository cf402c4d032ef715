package app

import (
	"fmt"

	"github.com/playperu/cityguide/internal/gate"
	"github.com/playperu/cityguide/internal/guide"
)

// CityOption is one entry of the city picker.
type CityOption struct {
	Name     string `json:"name"`
	Key      string `json:"key"`
	Selected bool   `json:"selected"`
}

// PlaceView is a place row as the page renders it.
type PlaceView struct {
	guide.AnnotatedPlace
	DistanceLabel string `json:"distanceLabel"`
	MapsURL       string `json:"mapsUrl,omitempty"`
}

// View is everything the page needs to render one frame.
type View struct {
	City        string          `json:"city"`
	CityKey     string          `json:"cityKey"`
	Cities      []CityOption    `json:"cities"`
	Status      gate.Status     `json:"status"`
	Filter      string          `json:"filter"`
	Search      string          `json:"search"`
	Categories  []string        `json:"categories"`
	Places      []PlaceView     `json:"places"`
	Position    *guide.Position `json:"position,omitempty"`
	GeoBanner   bool            `json:"geoBanner"`
	ShowUnlock  bool            `json:"showUnlock"`
	PurchaseURL string          `json:"purchaseUrl,omitempty"`
	Message     string          `json:"message,omitempty"`
	Warnings    []string        `json:"warnings,omitempty"`
	Generation  uint64          `json:"generation"`
}

// View renders the current state. It is a pure function of the controller
// state and the gate snapshot.
func (c *Controller) View() View {
	st := c.State()
	snap := c.gate.Snapshot()
	return render(st, snap, c.cities)
}

func render(st State, snap gate.Snapshot, cities []string) View {
	v := View{
		City:       st.City,
		CityKey:    guide.CityKey(st.City),
		Status:     snap.Status,
		Filter:     st.Filter,
		Search:     st.Search,
		Categories: categories(snap.Catalog),
		Position:   st.Position,
		GeoBanner:  st.GeoBanner,
		Warnings:   snap.Catalog.Warnings,
		Generation: snap.Generation,
		Places:     []PlaceView{},
	}

	for _, name := range cities {
		key := guide.CityKey(name)
		v.Cities = append(v.Cities, CityOption{Name: name, Key: key, Selected: key == v.CityKey})
	}

	// The gate may still be publishing the previous city.
	if snap.Key != v.CityKey {
		v.Status = gate.StatusLoading
		v.Categories = []string{}
		v.Warnings = nil
		return v
	}

	q := guide.Query{Category: st.Filter, Search: st.Search}
	for _, ap := range guide.Project(snap.Catalog, q, st.Position) {
		v.Places = append(v.Places, PlaceView{
			AnnotatedPlace: ap,
			DistanceLabel:  guide.FormatDistance(ap.DistanceM),
			MapsURL:        guide.MapsURL(ap.Place),
		})
	}

	switch snap.Status {
	case gate.StatusLocked:
		v.ShowUnlock = true
		v.PurchaseURL = snap.PurchaseURL
		v.Message = fmt.Sprintf("%s is a paid guide. Buy it or enter your access code.", st.City)
	case gate.StatusUnavailable:
		v.Message = fmt.Sprintf("Data unavailable for %s", st.City)
	}
	if st.Notice != "" {
		v.Message = st.Notice
	}
	return v
}

// categories lists the distinct categories of c in first-seen order.
func categories(c guide.Catalog) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range c.Places {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}
