package extractor

import (
	"strings"

	"sjsage522/aplusworker/internal/dom"
	"sjsage522/aplusworker/pkg/errors"
)

// markerProbeLen bounds how much leading text is checked for category
// markers on general-tier matches.
const markerProbeLen = 200

// defaultMaxPatternChecks bounds cascade probing when no pattern has
// matched anything yet. Probing past this point almost always means
// the block does not exist on the page.
const defaultMaxPatternChecks = 3

// Locator finds the single best-matching content container for one
// category using its tiered selector cascade.
type Locator struct {
	name      string
	category  ContentCategory
	cascade   SelectorCascade
	markers   []string
	maxChecks int
}

// NewLocator creates a locator from a category configuration.
func NewLocator(name string, cfg CategoryConfig) *Locator {
	return &Locator{
		name:      name,
		category:  cfg.Category,
		cascade:   cfg.Cascade,
		markers:   cfg.Markers,
		maxChecks: defaultMaxPatternChecks,
	}
}

// Locate returns the first accepted container. Specific-tier patterns
// are authoritative on match; general-tier matches are accepted only
// when their leading text carries a category marker. Returns a
// container-not-found error once the cascade is exhausted, or early
// when a pattern past the probe bound comes back empty with nothing
// matched anywhere yet.
func (l *Locator) Locate(doc dom.Document) (*CandidateContainer, error) {
	idx := 0
	matchedAny := false

	for _, selector := range l.cascade.Specific {
		els := doc.Find(selector)
		if len(els) == 0 {
			if idx >= l.maxChecks && !matchedAny {
				return nil, errors.NewContainerNotFound(l.name, string(l.category))
			}
			idx++
			continue
		}
		return &CandidateContainer{Element: els[0], Tier: TierSpecific}, nil
	}

	for _, selector := range l.cascade.General {
		els := doc.Find(selector)
		if len(els) == 0 {
			if idx >= l.maxChecks && !matchedAny {
				return nil, errors.NewContainerNotFound(l.name, string(l.category))
			}
			idx++
			continue
		}
		matchedAny = true
		for _, el := range els {
			if l.hasMarker(el) {
				return &CandidateContainer{Element: el, Tier: TierGeneral}, nil
			}
		}
		idx++
	}

	return nil, errors.NewContainerNotFound(l.name, string(l.category))
}

// hasMarker checks the element's leading text for any category marker.
// Matching is case-sensitive; known phrasings are listed per category.
func (l *Locator) hasMarker(el dom.Element) bool {
	text := el.Text()
	if runes := []rune(text); len(runes) > markerProbeLen {
		text = string(runes[:markerProbeLen])
	}
	for _, marker := range l.markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
