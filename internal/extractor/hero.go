package extractor

import (
	"sjsage522/aplusworker/internal/dom"
	"sjsage522/aplusworker/logger"
	"sjsage522/aplusworker/pkg/errors"
)

// heroSelectors lists the known locations of the main product image,
// in order of preference.
var heroSelectors = []string{
	"#landingImage",
	"#imgBlkFront",
	"#main-image",
	"img[data-old-hires]",
	"#imageBlock img",
	"#main-image-container img",
	".a-dynamic-image",
}

// HeroExtractor extracts the single main product image.
type HeroExtractor struct {
	name     string
	resolver *Resolver
}

// NewHeroExtractor creates a hero image extractor.
func NewHeroExtractor(name string) *HeroExtractor {
	return &HeroExtractor{
		name:     name,
		resolver: NewResolver(name, nil),
	}
}

// GetName returns the extractor name.
func (e *HeroExtractor) GetName() string {
	return e.name
}

// GetCategory returns the hero category.
func (e *HeroExtractor) GetCategory() ContentCategory {
	return CategoryHero
}

// Extract resolves the main product image URL. An excluded or missing
// candidate moves on to the next selector; at most one URL is returned.
func (e *HeroExtractor) Extract(doc dom.Document) (*Result, error) {
	if doc == nil {
		return nil, errors.NewValidation(e.name, "document is nil")
	}

	url := locateHeroURL(doc, e.resolver)
	if url == "" {
		logger.Debug("[%s] no hero image found", e.name)
		return &Result{Category: CategoryHero, FilePrefix: "hero", URLs: []string{}}, nil
	}

	logger.ForExtractor(e.name).Info().Str("url", url).Msg("extracted hero image")

	return &Result{Category: CategoryHero, FilePrefix: "hero", URLs: []string{url}}, nil
}

// locateHeroURL walks the hero selector list and returns the first
// resolvable URL, or "" when every selector misses. Shared with the
// gallery extractor so it can exclude the hero from its results.
func locateHeroURL(doc dom.Document, resolver *Resolver) string {
	for _, selector := range heroSelectors {
		els := doc.Find(selector)
		if len(els) == 0 {
			continue
		}

		el := els[0]
		url, err := resolver.Resolve(ImageElement{Element: el, Ancestor: el.Parent()})
		if err != nil {
			continue
		}
		return url
	}
	return ""
}
