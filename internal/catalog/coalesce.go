package catalog

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/playperu/cityguide/internal/guide"
)

// Coalesced shares one in-flight load among concurrent callers asking for
// the same city.
type Coalesced struct {
	next  Loader
	group singleflight.Group
}

func NewCoalesced(next Loader) *Coalesced {
	return &Coalesced{next: next}
}

func (c *Coalesced) Load(ctx context.Context, key, city string) (guide.Catalog, error) {
	v, err, _ := c.group.Do(key+"\x00"+city, func() (any, error) {
		return c.next.Load(ctx, key, city)
	})
	if err != nil {
		return guide.Catalog{}, err
	}
	return v.(guide.Catalog), nil
}
