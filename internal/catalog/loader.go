// Package catalog loads per-city place lists from a data directory.
package catalog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/playperu/cityguide/internal/guide"
)

var loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cityguide_catalog_loads_total",
	Help: "Catalog loads by outcome (ok, missing, malformed).",
}, []string{"outcome"})

// Loader fetches the catalog of a single city.
type Loader interface {
	Load(ctx context.Context, key, city string) (guide.Catalog, error)
}

// record is one entry of a per-city JSON document.
type record struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	LatLng   string `json:"latlng"`
	Comment  string `json:"comment"`
	Link     string `json:"link"`
}

// FSLoader reads <key>.json, falling back to <key>.csv, from a file system.
type FSLoader struct {
	fsys   fs.FS
	logger *slog.Logger
}

func NewFSLoader(fsys fs.FS, logger *slog.Logger) *FSLoader {
	return &FSLoader{fsys: fsys, logger: logger}
}

func (l *FSLoader) Load(ctx context.Context, key, city string) (guide.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return guide.Catalog{}, err
	}
	if key == "" || strings.ContainsAny(key, `/\.`) {
		return guide.Catalog{}, l.fail(&LoadError{Key: key, Kind: KindMissing, Err: fmt.Errorf("invalid city key %q", key)})
	}

	var warnings []string
	records, err := l.readJSON(key)
	if errors.Is(err, fs.ErrNotExist) {
		records, warnings, err = l.readCSV(key)
	}
	if err != nil {
		return guide.Catalog{}, l.fail(classify(key, err))
	}

	c := guide.Catalog{City: city, Key: key, Places: make([]guide.Place, 0, len(records)), Warnings: warnings}
	for i, rec := range records {
		p, warn := toPlace(rec, city)
		if warn != "" {
			warn = fmt.Sprintf("%s row %d: %s", key, i+1, warn)
			l.logger.Warn("catalog row dropped", "city", key, "row", i+1, "reason", warn)
			c.Warnings = append(c.Warnings, warn)
			continue
		}
		c.Places = append(c.Places, p)
	}

	loadsTotal.WithLabelValues("ok").Inc()
	l.logger.Debug("catalog loaded", "city", key, "places", len(c.Places), "dropped", len(c.Warnings))
	return c, nil
}

func (l *FSLoader) fail(err *LoadError) error {
	loadsTotal.WithLabelValues(string(err.Kind)).Inc()
	if err.Kind == KindMissing {
		l.logger.Info("catalog missing", "city", err.Key, "error", err.Err)
	} else {
		l.logger.Warn("catalog malformed", "city", err.Key, "error", err.Err)
	}
	return err
}

func (l *FSLoader) readJSON(key string) ([]record, error) {
	data, err := fs.ReadFile(l.fsys, key+".json")
	if err != nil {
		return nil, err
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &LoadError{Key: key, Kind: KindMalformed, Err: fmt.Errorf("decoding %s.json: %w", key, err)}
	}
	return records, nil
}

// readCSV parses the semicolon-separated layout: a header row followed by
// one place per line. Coordinates come from a "latlng" column or from
// separate "latitude"/"longitude" columns. Rows that cannot be parsed or
// have fewer cells than the header are dropped with a warning.
func (l *FSLoader) readCSV(key string) ([]record, []string, error) {
	f, err := l.fsys.Open(key + ".csv")
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, &LoadError{Key: key, Kind: KindMalformed, Err: errors.New("empty csv")}
	}
	if err != nil {
		return nil, nil, &LoadError{Key: key, Kind: KindMalformed, Err: fmt.Errorf("reading csv header: %w", err)}
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, nil, &LoadError{Key: key, Kind: KindMalformed, Err: errors.New("csv header has no name column")}
	}

	var (
		records  []record
		warnings []string
	)
	drop := func(line int, reason string) {
		warn := fmt.Sprintf("%s line %d: %s", key, line, reason)
		l.logger.Warn("csv row dropped", "city", key, "line", line, "reason", reason)
		warnings = append(warnings, warn)
	}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			drop(perr.StartLine, perr.Err.Error())
			continue
		}
		if err != nil {
			return nil, nil, &LoadError{Key: key, Kind: KindMalformed, Err: fmt.Errorf("reading csv: %w", err)}
		}
		if len(row) < len(header) {
			line, _ := r.FieldPos(0)
			drop(line, "missing cells")
			continue
		}
		get := func(name string) string {
			if i, ok := cols[name]; ok {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		rec := record{
			Name:     get("name"),
			Category: get("category"),
			LatLng:   get("latlng"),
			Comment:  get("comment"),
			Link:     get("link"),
		}
		if rec.LatLng == "" && (get("latitude") != "" || get("longitude") != "") {
			rec.LatLng = get("latitude") + "," + get("longitude")
		}
		records = append(records, rec)
	}
	return records, warnings, nil
}

// toPlace converts a record, returning a non-empty reason when the record
// must be dropped.
func toPlace(rec record, city string) (guide.Place, string) {
	p := guide.Place{
		Name:     strings.TrimSpace(rec.Name),
		Category: strings.TrimSpace(rec.Category),
		Comment:  strings.TrimSpace(rec.Comment),
		Link:     strings.TrimSpace(rec.Link),
		City:     city,
	}
	if p.Name == "" {
		return guide.Place{}, "missing name"
	}
	if strings.TrimSpace(rec.LatLng) == "" {
		return p, ""
	}
	pos, err := ParseLatLng(rec.LatLng)
	if err != nil {
		return guide.Place{}, err.Error()
	}
	p.Coords = &pos
	return p, ""
}

// ParseLatLng parses a combined "<lat>,<lon>" field into a finite position.
func ParseLatLng(s string) (guide.Position, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return guide.Position{}, fmt.Errorf("bad latlng %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return guide.Position{}, fmt.Errorf("bad latlng %q", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return guide.Position{}, fmt.Errorf("bad latlng %q", s)
	}
	pos := guide.Position{Lat: lat, Lon: lon}
	if !pos.Valid() {
		return guide.Position{}, fmt.Errorf("bad latlng %q", s)
	}
	return pos, nil
}
