// Package license decides whether an unlock code is valid for a city.
//
// Two strategies share the Verifier contract: an offline prefix match
// against a configured table, and a remote licence API. The caller never
// learns which one is active.
package license

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Result is the verdict of a successful verification call.
type Result int

const (
	Invalid Result = iota
	Valid
)

func (r Result) String() string {
	if r == Valid {
		return "valid"
	}
	return "invalid"
}

// Verifier checks a code for a city key. A non-nil error is always a
// *VerificationError: the check itself could not be completed.
type Verifier interface {
	Verify(ctx context.Context, cityKey, code string) (Result, error)
}

// Entry configures one city: a code prefix for offline checks, a product
// id for remote checks and an optional purchase URL.
type Entry struct {
	Prefix      string `json:"prefix,omitempty"`
	ProductID   string `json:"productId,omitempty"`
	PurchaseURL string `json:"purchaseUrl,omitempty"`
}

// UnmarshalJSON also accepts a bare string, read as the code prefix.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var prefix string
	if err := json.Unmarshal(data, &prefix); err == nil {
		*e = Entry{Prefix: prefix}
		return nil
	}
	type plain Entry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Entry(p)
	return nil
}

// Table maps city keys to their licence configuration.
type Table map[string]Entry

// LoadTable reads a JSON table from path. A missing file yields an empty
// table: every paid city then stays locked.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading licence table: %w", err)
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding licence table: %w", err)
	}
	return t, nil
}
