// Package gate decides, for every city selection, whether the city's places
// may be shown or whether the visitor must buy and unlock it first.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/playperu/cityguide/internal/catalog"
	"github.com/playperu/cityguide/internal/guide"
	"github.com/playperu/cityguide/internal/license"
)

var (
	ErrInvalidCode = errors.New("invalid code")
	ErrEmptyCode   = errors.New("code is required")
	ErrStale       = errors.New("selection superseded")
)

// Status is the display state of the selected city.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusLoading     Status = "loading"
	StatusReady       Status = "ready"
	StatusLocked      Status = "locked"
	StatusUnavailable Status = "unavailable"
)

// Entitlements is the part of the entitlement store the gate needs.
type Entitlements interface {
	IsUnlocked(ctx context.Context, cityKey string) (bool, error)
	Unlock(ctx context.Context, cityKey, code string) error
}

// Snapshot is what the gate currently publishes for display.
type Snapshot struct {
	City        string
	Key         string
	Status      Status
	Catalog     guide.Catalog
	PurchaseURL string
	// LoadErr is set when Status is StatusUnavailable.
	LoadErr error
	// Generation increases with every selection.
	Generation uint64
}

// Gate owns the current catalog. It is safe for concurrent use; results of
// superseded selections are discarded so the last selection wins.
type Gate struct {
	loader   catalog.Loader
	store    Entitlements
	verifier license.Verifier
	purchase func(cityKey string) string
	logger   *slog.Logger

	mu        sync.Mutex
	gen       uint64
	selected  string // city key behind gen
	cur       Snapshot
	listeners []func(Snapshot)
}

func New(loader catalog.Loader, store Entitlements, verifier license.Verifier, purchase func(string) string, logger *slog.Logger) *Gate {
	return &Gate{
		loader:   loader,
		store:    store,
		verifier: verifier,
		purchase: purchase,
		logger:   logger,
		cur:      Snapshot{Status: StatusIdle, Catalog: guide.Empty("")},
	}
}

// OnChange registers fn to receive every applied snapshot. Register before
// the first Select.
func (g *Gate) OnChange(fn func(Snapshot)) {
	g.mu.Lock()
	g.listeners = append(g.listeners, fn)
	g.mu.Unlock()
}

// Snapshot returns the currently published state.
func (g *Gate) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cur
}

// PurchaseURL is where the visitor buys access to city.
func (g *Gate) PurchaseURL(city string) string {
	return g.purchase(guide.CityKey(city))
}

// Select makes city the current selection. A demo or unlocked city is
// loaded; any other city is published as locked with an empty catalog.
// If a newer selection is made while this one is loading, Select returns
// ErrStale and publishes nothing.
func (g *Gate) Select(ctx context.Context, city string) (Snapshot, error) {
	city = strings.TrimSpace(city)
	key := guide.CityKey(city)

	ctx, span := otel.Tracer("cityguide/gate").Start(ctx, "gate.Select",
		trace.WithAttributes(attribute.String("city.key", key)))
	defer span.End()

	g.mu.Lock()
	g.gen++
	gen := g.gen
	g.selected = key
	g.mu.Unlock()

	return g.load(ctx, city, key, gen)
}

// load runs the selection numbered gen.
func (g *Gate) load(ctx context.Context, city, key string, gen uint64) (Snapshot, error) {
	unlocked, err := g.store.IsUnlocked(ctx, key)
	if err != nil {
		g.logger.Error("entitlement lookup failed", "city", key, "error", err)
		g.apply(gen, g.locked(city, key, gen))
		return g.Snapshot(), fmt.Errorf("checking entitlement for %s: %w", key, err)
	}
	if !unlocked {
		snap := g.locked(city, key, gen)
		if !g.apply(gen, snap) {
			return g.Snapshot(), ErrStale
		}
		return snap, nil
	}

	g.apply(gen, Snapshot{City: city, Key: key, Status: StatusLoading, Catalog: guide.Empty(city), Generation: gen})

	c, err := g.loader.Load(ctx, key, city)
	snap := Snapshot{City: city, Key: key, Status: StatusReady, Catalog: c, Generation: gen}
	if err != nil {
		snap.Status = StatusUnavailable
		snap.Catalog = guide.Empty(city)
		snap.LoadErr = err
	}
	if !g.apply(gen, snap) {
		g.logger.Debug("discarding stale catalog", "city", key, "generation", gen)
		return g.Snapshot(), ErrStale
	}
	return snap, nil
}

// Unlock verifies code for city (the city the code was entered for, which
// need not be the one on screen). On success the entitlement is stored and,
// if city is still selected, reloaded at once. An invalid code returns
// ErrInvalidCode; a failed check returns the *license.VerificationError.
// Neither touches the entitlement store.
func (g *Gate) Unlock(ctx context.Context, city, code string) (Snapshot, error) {
	city = strings.TrimSpace(city)
	key := guide.CityKey(city)

	ctx, span := otel.Tracer("cityguide/gate").Start(ctx, "gate.Unlock",
		trace.WithAttributes(attribute.String("city.key", key)))
	defer span.End()

	if code == "" {
		return g.Snapshot(), ErrEmptyCode
	}

	res, err := g.verifier.Verify(ctx, key, code)
	if err != nil {
		g.logger.Warn("licence verification failed", "city", key, "error", err)
		return g.Snapshot(), err
	}
	if res != license.Valid {
		g.logger.Info("licence code rejected", "city", key)
		return g.Snapshot(), ErrInvalidCode
	}

	if err := g.store.Unlock(ctx, key, code); err != nil {
		return g.Snapshot(), fmt.Errorf("unlocking %s: %w", key, err)
	}
	g.logger.Info("city unlocked", "city", key)

	// Refetch only if city is still the latest selection.
	g.mu.Lock()
	if g.selected != key {
		g.mu.Unlock()
		return g.Snapshot(), nil
	}
	g.gen++
	gen := g.gen
	g.mu.Unlock()

	return g.load(ctx, city, key, gen)
}

func (g *Gate) locked(city, key string, gen uint64) Snapshot {
	return Snapshot{
		City:        city,
		Key:         key,
		Status:      StatusLocked,
		Catalog:     guide.Empty(city),
		PurchaseURL: g.purchase(key),
		Generation:  gen,
	}
}

// apply publishes snap if gen is still the latest selection.
func (g *Gate) apply(gen uint64, snap Snapshot) bool {
	g.mu.Lock()
	if gen != g.gen {
		g.mu.Unlock()
		return false
	}
	g.cur = snap
	listeners := g.listeners
	g.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return true
}
