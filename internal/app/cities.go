package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/playperu/cityguide/internal/guide"
)

var ErrUnknownCity = errors.New("unknown city")

// maxSuggestDistance bounds how far a typo may be from a configured city
// key to still be offered as a suggestion.
const maxSuggestDistance = 3

// UnknownCityError is returned for a city that is not in the picker.
type UnknownCityError struct {
	Name       string
	Suggestion string
}

func (e *UnknownCityError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown city %q, did you mean %q?", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown city %q", e.Name)
}

func (e *UnknownCityError) Is(target error) bool { return target == ErrUnknownCity }

// resolve maps user input to the display name of a configured city.
func (c *Controller) resolve(name string) (string, error) {
	key := guide.CityKey(name)
	if key == "" {
		return "", &UnknownCityError{Name: name}
	}

	best, bestDist := "", maxSuggestDistance+1
	for _, city := range c.cities {
		ck := guide.CityKey(city)
		if ck == key {
			return city, nil
		}
		if d := levenshtein.ComputeDistance(key, ck); d < bestDist {
			best, bestDist = city, d
		}
	}
	return "", &UnknownCityError{Name: strings.TrimSpace(name), Suggestion: best}
}
