package extractor

import (
	"regexp"
	"strings"
)

// Normalizer rewrites a resolved image URL into the form the host
// serves at maximum resolution. The token-stripping strategy encodes
// host-specific serving behavior, so it stays behind this interface
// and is selected per category config.
type Normalizer interface {
	Normalize(url string) string
}

// aplusMediaMarker identifies URLs already served at full resolution.
const aplusMediaMarker = "aplus-media-library"

var (
	acSizePattern     = regexp.MustCompile(`_AC_S[LXY]\d+_`)
	acCombinedPattern = regexp.MustCompile(`_AC_SX\d+_SY\d+_`)
	sizePattern       = regexp.MustCompile(`_S[LXY]\d+_`)
	dotSizePattern    = regexp.MustCompile(`\._S[LXY]\d+_\.`)
	anySizePattern    = regexp.MustCompile(`[SLXY]\d+_`)

	doubleDotPattern        = regexp.MustCompile(`\.\.+`)
	doubleUnderscorePattern = regexp.MustCompile(`__+`)
	underscoreDotPattern    = regexp.MustCompile(`_\.`)
	dotUnderscorePattern    = regexp.MustCompile(`\._`)
)

// HighResNormalizer strips every recognized resolution-indicator token
// so the host falls back to its default maximum resolution.
type HighResNormalizer struct{}

// Normalize removes size tokens and cleans up leftover separators.
// Passes run to a fixpoint so the result is stable under repeated
// normalization.
func (HighResNormalizer) Normalize(url string) string {
	if url == "" {
		return url
	}
	if strings.Contains(url, aplusMediaMarker) {
		return url
	}

	for {
		prev := url

		url = acSizePattern.ReplaceAllString(url, "_AC_")
		url = acCombinedPattern.ReplaceAllString(url, "_AC_")
		url = sizePattern.ReplaceAllString(url, "_")
		url = dotSizePattern.ReplaceAllString(url, ".")
		url = anySizePattern.ReplaceAllString(url, "")

		url = doubleDotPattern.ReplaceAllString(url, ".")
		url = doubleUnderscorePattern.ReplaceAllString(url, "_")
		url = underscoreDotPattern.ReplaceAllString(url, ".")
		url = dotUnderscorePattern.ReplaceAllString(url, ".")

		if url == prev {
			return url
		}
	}
}

// PassthroughNormalizer keeps URLs untouched, for content whose URLs
// already encode the intended crop and must not be rewritten.
type PassthroughNormalizer struct{}

func (PassthroughNormalizer) Normalize(url string) string {
	return url
}
