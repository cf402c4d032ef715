package license

import (
	"context"
	"strings"
)

// PrefixVerifier accepts a code iff it starts with the city's configured
// prefix. The comparison is exact: no case folding, no trimming.
type PrefixVerifier struct {
	table Table
}

func NewPrefixVerifier(t Table) *PrefixVerifier {
	return &PrefixVerifier{table: t}
}

func (p *PrefixVerifier) Verify(_ context.Context, cityKey, code string) (Result, error) {
	entry, ok := p.table[cityKey]
	if !ok || entry.Prefix == "" || code == "" {
		return Invalid, nil
	}
	if strings.HasPrefix(code, entry.Prefix) {
		return Valid, nil
	}
	return Invalid, nil
}
