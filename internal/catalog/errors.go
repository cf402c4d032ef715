package catalog

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind distinguishes a missing data resource from an unparsable one.
type Kind string

const (
	KindMissing   Kind = "missing"
	KindMalformed Kind = "malformed"
)

var (
	ErrMissing   = errors.New("catalog data missing")
	ErrMalformed = errors.New("catalog data malformed")
)

// LoadError reports why a city's catalog could not be produced. It is a
// value the caller renders ("data unavailable"), not a locked state.
type LoadError struct {
	Key  string
	Kind Kind
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("catalog %s [%s]: %v", e.Key, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is lets callers match on ErrMissing / ErrMalformed.
func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrMissing:
		return e.Kind == KindMissing
	case ErrMalformed:
		return e.Kind == KindMalformed
	}
	return false
}

func classify(key string, err error) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	if errors.Is(err, fs.ErrNotExist) {
		return &LoadError{Key: key, Kind: KindMissing, Err: err}
	}
	return &LoadError{Key: key, Kind: KindMalformed, Err: err}
}
