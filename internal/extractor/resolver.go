package extractor

import (
	"encoding/json"
	"regexp"
	"strings"

	"sjsage522/aplusworker/internal/dom"
	"sjsage522/aplusworker/logger"
	"sjsage522/aplusworker/pkg/errors"
)

// Attribute names carrying image URLs, in resolution priority order.
const (
	attrOldHires     = "data-old-hires"
	attrDynamicImage = "data-a-dynamic-image"
	attrDeferredSrc  = "data-src"
	attrSrc          = "src"
)

// lowResPlaceholderPattern matches thumbnail-sized asset tokens.
var lowResPlaceholderPattern = regexp.MustCompile(`[SLXY](40|50|75|100|150|200)[^0-9]`)

// excludedMarkers rejects non-product assets after normalization.
// Matched as lowercase substrings.
var excludedMarkers = []string{
	"360",
	"video",
	"play-button",
	"sprite",
	"icon",
	"logo",
	"badge",
	"transparent",
	"grey-pixel",
	"blank",
	"loading",
	"spinner",
	"/sash/",
	".svg",
}

// attributeStep is one stage of the resolution priority chain. parse
// turns the raw attribute value into a candidate URL; valid gates it.
type attributeStep struct {
	attr  string
	parse func(raw string) (string, error)
	valid func(url string) bool
}

// Resolver determines the single best-available high-resolution URL
// for one discovered element. Each attribute step is tried on the
// element first, then on its captured ancestor; the first hit wins.
type Resolver struct {
	name       string
	normalizer Normalizer
	steps      []attributeStep
}

// NewResolver creates a resolver using the given normalization policy.
// A nil normalizer falls back to the high-res token-stripping policy.
func NewResolver(name string, normalizer Normalizer) *Resolver {
	if normalizer == nil {
		normalizer = HighResNormalizer{}
	}
	r := &Resolver{name: name, normalizer: normalizer}
	r.steps = []attributeStep{
		{attr: attrOldHires, parse: verbatim, valid: isHTTP},
		{attr: attrDynamicImage, parse: r.parseDynamicImage, valid: isHTTP},
		{attr: attrDeferredSrc, parse: verbatim, valid: func(u string) bool {
			return isHTTP(u) && !isLowResPlaceholder(u)
		}},
		{attr: attrSrc, parse: verbatim, valid: func(u string) bool {
			return isHTTP(u) && !isVectorAsset(u) && !isLowResPlaceholder(u)
		}},
	}
	return r
}

// Resolve returns the normalized URL for img, or a typed error when
// no attribute yields a usable URL or the result is an excluded asset.
func (r *Resolver) Resolve(img ImageElement) (string, error) {
	for _, step := range r.steps {
		for _, target := range []dom.Element{img.Element, img.Ancestor} {
			if target == nil {
				continue
			}
			raw, ok := target.Attr(step.attr)
			if !ok || raw == "" {
				continue
			}
			candidate, err := step.parse(raw)
			if err != nil {
				logger.Debug("[%s] unusable %s payload: %v", r.name, step.attr, err)
				continue
			}
			if candidate == "" || !step.valid(candidate) {
				continue
			}
			normalized := r.normalizer.Normalize(candidate)
			if isExcluded(normalized) {
				return "", errors.NewExcludedURL(r.name, normalized)
			}
			return normalized, nil
		}
	}
	return "", errors.NewNoURL(r.name)
}

// parseDynamicImage picks the URL with the largest width*height out of
// a JSON object mapping url -> [width, height]. The object is walked
// with a token decoder so ties keep the earliest key in parse order.
func (r *Resolver) parseDynamicImage(raw string) (string, error) {
	dec := json.NewDecoder(strings.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return "", errors.NewMalformedPayload(r.name, attrDynamicImage, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", errors.NewMalformedPayload(r.name, attrDynamicImage, nil)
	}

	bestURL := ""
	bestArea := -1.0
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return "", errors.NewMalformedPayload(r.name, attrDynamicImage, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return "", errors.NewMalformedPayload(r.name, attrDynamicImage, nil)
		}

		var size []float64
		if err := dec.Decode(&size); err != nil {
			return "", errors.NewMalformedPayload(r.name, attrDynamicImage, err)
		}

		area := 0.0
		if len(size) >= 2 {
			area = size[0] * size[1]
		}
		if area > bestArea {
			bestArea = area
			bestURL = key
		}
	}

	return bestURL, nil
}

func verbatim(raw string) (string, error) {
	return raw, nil
}

func isHTTP(url string) bool {
	return strings.HasPrefix(url, "http")
}

func isLowResPlaceholder(url string) bool {
	return lowResPlaceholderPattern.MatchString(url)
}

func isVectorAsset(url string) bool {
	return strings.Contains(url, "/sash/") || strings.HasSuffix(url, ".svg")
}

func isExcluded(url string) bool {
	lower := strings.ToLower(url)
	for _, marker := range excludedMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
