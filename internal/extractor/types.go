package extractor

import (
	"sjsage522/aplusworker/internal/dom"
)

// ContentCategory identifies which variant of page content an
// extractor targets. It drives the selector cascade and text markers.
type ContentCategory string

const (
	CategoryProductDescription ContentCategory = "PRODUCT_DESCRIPTION"
	CategoryBrandStory         ContentCategory = "BRAND_STORY"
	CategoryManufacturer       ContentCategory = "MANUFACTURER"
	CategoryHero               ContentCategory = "HERO"
	CategoryGallery            ContentCategory = "GALLERY"
)

// Tier is the confidence level of a matched container selector.
type Tier int

const (
	// TierSpecific selectors are authoritative on match
	TierSpecific Tier = iota
	// TierGeneral selectors require a text-marker check before acceptance
	TierGeneral
)

// SelectorCascade is the ordered selector list for one category,
// partitioned by confidence tier. Specific patterns are tried first.
type SelectorCascade struct {
	Specific []string
	General  []string
}

// CategoryConfig holds the static configuration for one enhanced
// content category. New page variants are added here, not in code.
type CategoryConfig struct {
	Category ContentCategory
	Cascade  SelectorCascade
	// Markers are the known phrasings identifying a general-tier
	// container; matched case-sensitively against the leading text.
	Markers []string
	// FilePrefix names saved images for this category
	FilePrefix string
	// Normalizer rewrites resolved URLs; nil selects the high-res
	// token-stripping policy.
	Normalizer Normalizer
}

// CandidateContainer is a located container element with its tier.
type CandidateContainer struct {
	Element dom.Element
	Tier    Tier
}

// ImageElement is a discovered image-bearing element together with its
// immediate structural ancestor. The authoritative URL may be encoded
// on either, so resolution consults both.
type ImageElement struct {
	Element  dom.Element
	Ancestor dom.Element
}

// ImageSet is an insertion-ordered collection of unique resolved URLs.
// It is scoped to a single extraction call.
type ImageSet struct {
	urls []string
	seen map[string]struct{}
}

// NewImageSet creates an empty image set.
func NewImageSet() *ImageSet {
	return &ImageSet{seen: make(map[string]struct{})}
}

// Add appends url if it is not already present. Returns true when added.
func (s *ImageSet) Add(url string) bool {
	if _, dup := s.seen[url]; dup {
		return false
	}
	s.seen[url] = struct{}{}
	s.urls = append(s.urls, url)
	return true
}

// Contains reports whether url is already in the set.
func (s *ImageSet) Contains(url string) bool {
	_, ok := s.seen[url]
	return ok
}

// URLs returns the collected URLs in insertion order.
func (s *ImageSet) URLs() []string {
	return s.urls
}

// Len returns the number of collected URLs.
func (s *ImageSet) Len() int {
	return len(s.urls)
}

// Result is the outcome of one extractor run over one document.
type Result struct {
	Category   ContentCategory `json:"category"`
	FilePrefix string          `json:"file_prefix"`
	URLs       []string        `json:"urls"`
}

// Extractor extracts image URLs of one category from a document
type Extractor interface {
	Extract(doc dom.Document) (*Result, error)
	GetName() string
	GetCategory() ContentCategory
}
