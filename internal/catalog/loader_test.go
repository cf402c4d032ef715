package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/playperu/cityguide/internal/guide"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestFSLoaderJSON(t *testing.T) {
	fsys := fstest.MapFS{
		"osaka.json": {Data: []byte(`[
			{"name": "Tea House", "category": "food", "latlng": "34.6, 135.5", "comment": "great matcha"},
			{"name": "Night Market", "category": "food"},
			{"name": "Broken", "category": "sight", "latlng": "34.6,abc"},
			{"name": "Half", "category": "sight", "latlng": "34.6"},
			{"name": "", "category": "sight"},
			{"name": "Shrine", "category": "sight", "latlng": "34.68,135.52", "link": "https://example.com/shrine"}
		]`)},
	}

	c, err := NewFSLoader(fsys, discard()).Load(context.Background(), "osaka", "Osaka")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.City != "Osaka" || c.Key != "osaka" {
		t.Errorf("unexpected catalog identity %q/%q", c.City, c.Key)
	}
	if len(c.Places) != 3 {
		t.Fatalf("expected 3 places, got %d: %+v", len(c.Places), c.Places)
	}
	if len(c.Warnings) != 3 {
		t.Errorf("expected 3 warnings, got %v", c.Warnings)
	}

	tea := c.Places[0]
	if tea.Coords == nil || tea.Coords.Lat != 34.6 || tea.Coords.Lon != 135.5 {
		t.Errorf("tea house coords = %+v", tea.Coords)
	}
	if tea.City != "Osaka" {
		t.Errorf("expected city to be stamped on place, got %q", tea.City)
	}
	if c.Places[1].Name != "Night Market" || c.Places[1].Coords != nil {
		t.Errorf("expected undistanced Night Market, got %+v", c.Places[1])
	}
	if c.Places[2].Link != "https://example.com/shrine" {
		t.Errorf("link not carried: %+v", c.Places[2])
	}
}

func TestFSLoaderCSVFallback(t *testing.T) {
	fsys := fstest.MapFS{
		"utopia.csv": {Data: []byte("name;category;latlng;comment\r\n" +
			"Old Bridge;sight;48.1,11.5;stone arches\r\n" +
			"\r\n" +
			"Short;sight\r\n" +
			"Bad Coords;food;north,east;\r\n" +
			"Corner Cafe;food;;cheap coffee\r\n")},
	}

	c, err := NewFSLoader(fsys, discard()).Load(context.Background(), "utopia", "Utopia")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Places) != 2 {
		t.Fatalf("expected 2 places, got %+v", c.Places)
	}
	if c.Places[0].Name != "Old Bridge" || c.Places[0].Coords == nil {
		t.Errorf("unexpected first place %+v", c.Places[0])
	}
	if c.Places[1].Name != "Corner Cafe" || c.Places[1].Coords != nil {
		t.Errorf("unexpected second place %+v", c.Places[1])
	}
	if len(c.Warnings) != 2 {
		t.Errorf("expected warnings for the short row and bad coords, got %v", c.Warnings)
	}
}

func TestFSLoaderCSVStrayQuotes(t *testing.T) {
	fsys := fstest.MapFS{
		"rome.csv": {Data: []byte("name;category;latlng;comment\n" +
			"Bar del Fico;food;41.899,12.471;try the \"spritz\"\n" +
			"Pantheon;sight;41.8986,12.4769;free entry\n")},
	}

	c, err := NewFSLoader(fsys, discard()).Load(context.Background(), "rome", "Rome")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Places) != 2 {
		t.Fatalf("expected both rows, got %+v (warnings %v)", c.Places, c.Warnings)
	}
	if got := c.Places[0].Comment; got != `try the "spritz"` {
		t.Errorf("comment = %q", got)
	}
	if len(c.Warnings) != 0 {
		t.Errorf("unexpected warnings %v", c.Warnings)
	}
}

func TestFSLoaderCSVSeparateColumns(t *testing.T) {
	fsys := fstest.MapFS{
		"oslo.csv": {Data: []byte("name;category;latitude;longitude\nOpera;sight;59.907;10.753\n")},
	}
	c, err := NewFSLoader(fsys, discard()).Load(context.Background(), "oslo", "Oslo")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Places) != 1 || c.Places[0].Coords == nil || c.Places[0].Coords.Lon != 10.753 {
		t.Fatalf("unexpected places %+v", c.Places)
	}
}

func TestFSLoaderErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"broken.json": {Data: []byte(`{"name": "not an array"`)},
		"headless.csv": {Data: []byte("title;category\nx;y\n")},
	}
	l := NewFSLoader(fsys, discard())

	tests := []struct {
		key  string
		want error
	}{
		{"nowhere", ErrMissing},
		{"broken", ErrMalformed},
		{"headless", ErrMalformed},
		{"../etc", ErrMissing},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, err := l.Load(context.Background(), tt.key, tt.key)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected *LoadError, got %T", err)
			}
		})
	}
}

func TestParseLatLng(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"34.6,135.5", false},
		{" -33.86 , 151.2 ", false},
		{"34.6", true},
		{"NaN,1", true},
		{"1,Inf", true},
		{"91,0", true},
		{"a,b", true},
	}
	for _, tt := range tests {
		_, err := ParseLatLng(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLatLng(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

type countingLoader struct {
	calls   atomic.Int32
	release chan struct{}
}

func (c *countingLoader) Load(_ context.Context, key, city string) (guide.Catalog, error) {
	c.calls.Add(1)
	<-c.release
	return guide.Empty(city), nil
}

func TestCoalescedSharesInFlightLoad(t *testing.T) {
	inner := &countingLoader{release: make(chan struct{})}
	c := NewCoalesced(inner)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Load(context.Background(), "osaka", "Osaka"); err != nil {
				t.Errorf("load: %v", err)
			}
		}()
	}

	// Wait until the first call is in flight, then let everyone finish.
	for inner.calls.Load() == 0 {
	}
	close(inner.release)
	wg.Wait()

	if n := inner.calls.Load(); n < 1 || n > 5 {
		t.Fatalf("unexpected call count %d", n)
	}
}
