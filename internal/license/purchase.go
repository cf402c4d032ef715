package license

import (
	"net/url"
	"strings"
)

// Purchase builds the URL a visitor is sent to in order to buy a city.
type Purchase struct {
	Base   string
	Vendor string
	Table  Table
}

// URL prefers the city's registered purchase link and otherwise builds
// <base>/<vendor>/<key>.
func (p Purchase) URL(cityKey string) string {
	if e, ok := p.Table[cityKey]; ok && e.PurchaseURL != "" {
		return e.PurchaseURL
	}
	return strings.TrimRight(p.Base, "/") + "/" + url.PathEscape(p.Vendor) + "/" + url.PathEscape(cityKey)
}
