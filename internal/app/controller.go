// Package app holds the application state of the guide page and turns UI
// events (city change, filter click, search input, unlock, geolocation)
// into transitions on the access gate. Rendering is a pure function of the
// state and the gate's snapshot.
package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/playperu/cityguide/internal/gate"
	"github.com/playperu/cityguide/internal/geo"
	"github.com/playperu/cityguide/internal/guide"
	"github.com/playperu/cityguide/internal/license"
)

// User-facing notices.
const (
	msgInvalidCode  = "Invalid code – please check your purchase e-mail."
	msgRetry        = "Could not reach the licence server, please try again."
	msgEmptyCode    = "Please enter your access code."
	msgStoreFailure = "Could not check access for this city."
)

// State is the ephemeral view state. It is never persisted.
type State struct {
	City      string
	Filter    string
	Search    string
	Position  *guide.Position
	GeoBanner bool
	Notice    string
}

// Controller owns State and is safe for concurrent use.
type Controller struct {
	gate    *gate.Gate
	locator geo.Locator
	cities  []string
	logger  *slog.Logger

	mu    sync.Mutex
	state State

	subsMu sync.Mutex
	nextID int
	subs   map[int]func(View)
}

// New wires a controller to g. cities is the ordered list of display names
// offered in the city picker; the first one is selected on Start.
func New(g *gate.Gate, locator geo.Locator, cities []string, logger *slog.Logger) *Controller {
	c := &Controller{
		gate:    g,
		locator: locator,
		cities:  cities,
		logger:  logger,
		subs:    make(map[int]func(View)),
	}
	g.OnChange(c.onGateChange)
	return c
}

// Start selects the first configured city.
func (c *Controller) Start(ctx context.Context) error {
	if len(c.cities) == 0 {
		return errors.New("no cities configured")
	}
	_, err := c.SelectCity(ctx, c.cities[0])
	return err
}

// Subscribe registers fn to receive every new view. The returned function
// removes the subscription.
func (c *Controller) Subscribe(fn func(View)) func() {
	c.subsMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subsMu.Unlock()

	return func() {
		c.subsMu.Lock()
		delete(c.subs, id)
		c.subsMu.Unlock()
	}
}

func (c *Controller) publish() {
	v := c.View()
	c.subsMu.Lock()
	subs := make([]func(View), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

func (c *Controller) onGateChange(s gate.Snapshot) {
	if s.Status == gate.StatusLoading {
		c.mu.Lock()
		c.state.Filter = ""
		c.mu.Unlock()
	}
	c.publish()
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if s.Position != nil {
		p := *s.Position
		s.Position = &p
	}
	return s
}

// SelectCity handles a change of the city picker.
func (c *Controller) SelectCity(ctx context.Context, name string) (View, error) {
	city, err := c.resolve(name)
	if err != nil {
		return c.View(), err
	}

	c.mu.Lock()
	c.state.City = city
	c.state.Notice = ""
	c.mu.Unlock()

	_, err = c.gate.Select(ctx, city)
	switch {
	case errors.Is(err, gate.ErrStale):
		return c.View(), nil
	case err != nil:
		c.setNotice(msgStoreFailure)
		return c.View(), err
	}
	return c.View(), nil
}

// ToggleFilter handles a click on a category button: clicking the active
// category clears the filter.
func (c *Controller) ToggleFilter(category string) View {
	category = strings.TrimSpace(category)
	c.mu.Lock()
	if category == "" || strings.EqualFold(c.state.Filter, category) {
		c.state.Filter = ""
	} else {
		c.state.Filter = category
	}
	c.mu.Unlock()
	c.publish()
	return c.View()
}

// SetSearch handles live search input.
func (c *Controller) SetSearch(term string) View {
	c.mu.Lock()
	c.state.Search = strings.ToLower(strings.TrimSpace(term))
	c.mu.Unlock()
	c.publish()
	return c.View()
}

// Unlock handles a code entered for city; an empty city means the one on
// screen when the code was submitted.
func (c *Controller) Unlock(ctx context.Context, city, code string) (View, error) {
	if strings.TrimSpace(city) == "" {
		city = c.State().City
	}
	resolved, err := c.resolve(city)
	if err != nil {
		return c.View(), err
	}

	_, err = c.gate.Unlock(ctx, resolved, strings.TrimSpace(code))
	switch {
	case err == nil:
		c.setNotice("")
	case errors.Is(err, gate.ErrInvalidCode):
		c.setNotice(msgInvalidCode)
	case errors.Is(err, gate.ErrEmptyCode):
		c.setNotice(msgEmptyCode)
	case license.IsVerificationError(err):
		c.setNotice(msgRetry)
	case errors.Is(err, gate.ErrStale):
		err = nil
	default:
		c.logger.Error("unlock failed", "city", resolved, "error", err)
		c.setNotice(msgStoreFailure)
	}
	return c.View(), err
}

// Purchase returns the purchase location for city, or for the current
// city when city is empty.
func (c *Controller) Purchase(city string) (string, error) {
	if strings.TrimSpace(city) == "" {
		city = c.State().City
	}
	resolved, err := c.resolve(city)
	if err != nil {
		return "", err
	}
	return c.gate.PurchaseURL(resolved), nil
}

// RequestLocation asks the locator for a position once. On failure the
// geolocation banner is shown until a later request succeeds.
func (c *Controller) RequestLocation(ctx context.Context) error {
	pos, err := c.locator.Locate(ctx)
	c.mu.Lock()
	if err != nil {
		c.state.GeoBanner = true
	} else {
		c.state.Position = &pos
		c.state.GeoBanner = false
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("geolocation failed", "error", err)
	}
	c.publish()
	return err
}

// RetryLocation handles the banner's retry button.
func (c *Controller) RetryLocation(ctx context.Context) error {
	return c.RequestLocation(ctx)
}

// ReportPosition records a fix sent by the page.
func (c *Controller) ReportPosition(pos guide.Position) error {
	if r, ok := c.locator.(geo.Reporter); ok {
		if err := r.Report(pos); err != nil {
			return err
		}
	} else if !pos.Valid() {
		return errors.New("invalid position")
	}

	c.mu.Lock()
	c.state.Position = &pos
	c.state.GeoBanner = false
	c.mu.Unlock()
	c.publish()
	return nil
}

// ReportDenied records that the page could not obtain a position.
func (c *Controller) ReportDenied() {
	if r, ok := c.locator.(geo.Reporter); ok {
		r.Deny()
	}
	c.mu.Lock()
	c.state.GeoBanner = true
	c.mu.Unlock()
	c.publish()
}

func (c *Controller) setNotice(msg string) {
	c.mu.Lock()
	c.state.Notice = msg
	c.mu.Unlock()
	c.publish()
}
