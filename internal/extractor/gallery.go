package extractor

import (
	"encoding/json"
	mathrand "math/rand"
	"regexp"
	"strings"
	"time"

	"sjsage522/aplusworker/internal/dom"
	"sjsage522/aplusworker/logger"
	"sjsage522/aplusworker/pkg/errors"
)

// The gallery ships its full-size URL catalog in an inline script
// block; the DOM thumbnails are only a fallback when it is absent.
var (
	initialKeyPattern = regexp.MustCompile(`["']initial["']\s*:`)
	hiResPattern      = regexp.MustCompile(`"hiRes"\s*:\s*"([^"]+)"`)
	mainSizePattern   = regexp.MustCompile(`"(https://[^"]+\.jpg[^"]*)"\s*:\s*\[\d+,\s*\d+\]`)
)

const galleryScrollSelector = "#altImages, #imageBlock_feature_div"

var galleryThumbSelectors = []string{
	"#altImages ul li.item",
	"#altImages li",
}

const videoOverlaySelector = `.play-button, .video-play, [aria-label*="video"]`

// colorImageEntry is one image record in the script block's catalog.
// Main maps candidate URLs to [width, height] pairs.
type colorImageEntry struct {
	HiRes string          `json:"hiRes"`
	Main  json.RawMessage `json:"main"`
	Large string          `json:"large"`
}

// GalleryExtractor extracts the product gallery images, excluding the
// hero image and video thumbnails.
type GalleryExtractor struct {
	name     string
	resolver *Resolver
	rnd      *mathrand.Rand
}

// NewGalleryExtractor creates a gallery image extractor.
func NewGalleryExtractor(name string) *GalleryExtractor {
	return &GalleryExtractor{
		name:     name,
		resolver: NewResolver(name, nil),
		rnd:      mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

// GetName returns the extractor name.
func (e *GalleryExtractor) GetName() string {
	return e.name
}

// GetCategory returns the gallery category.
func (e *GalleryExtractor) GetCategory() ContentCategory {
	return CategoryGallery
}

// Extract collects gallery image URLs, preferring the inline script
// catalog and falling back to thumbnail markup. The hero image and
// excluded assets are filtered out of the result.
func (e *GalleryExtractor) Extract(doc dom.Document) (*Result, error) {
	if doc == nil {
		return nil, errors.NewValidation(e.name, "document is nil")
	}

	heroKey := ""
	if heroURL := locateHeroURL(doc, e.resolver); heroURL != "" {
		heroKey = comparisonKey(heroURL)
	}

	urls := e.extractFromImageBlock(doc)
	if len(urls) == 0 {
		logger.Debug("[%s] image block script missing, trying thumbnail markup", e.name)
		urls = e.extractFromThumbnails(doc)
	}

	set := NewImageSet()
	for _, url := range urls {
		if !isHTTP(url) || isExcluded(url) {
			continue
		}
		if heroKey != "" && comparisonKey(url) == heroKey {
			continue
		}
		set.Add(url)
	}

	if set.Len() > 0 {
		logger.ForExtractor(e.name).Info().
			Int("count", set.Len()).
			Msg("extracted gallery images")
	}

	return &Result{Category: CategoryGallery, FilePrefix: "product", URLs: set.URLs()}, nil
}

// extractFromImageBlock reads the gallery catalog out of the inline
// script block. The first entry is the hero image and is dropped.
func (e *GalleryExtractor) extractFromImageBlock(doc dom.Document) []string {
	for _, script := range doc.Find("script") {
		text := script.Text()
		if !strings.Contains(text, "ImageBlockATF") || !strings.Contains(text, "colorImages") {
			continue
		}

		urls := e.parseColorImages(text)
		if len(urls) == 0 {
			// The script block is not always valid JSON; scrape it
			urls = e.scrapeScriptURLs(text)
		}
		if len(urls) > 1 {
			return urls[1:]
		}
		return nil
	}
	return nil
}

// parseColorImages decodes the catalog's initial array. Returns nil
// when the block cannot be decoded as JSON.
func (e *GalleryExtractor) parseColorImages(script string) []string {
	loc := initialKeyPattern.FindStringIndex(script)
	if loc == nil {
		return nil
	}
	seg := script[loc[1]:]
	start := strings.IndexByte(seg, '[')
	if start < 0 {
		return nil
	}

	var entries []colorImageEntry
	if err := json.NewDecoder(strings.NewReader(seg[start:])).Decode(&entries); err != nil {
		logger.Debug("[%s] image block decode failed: %v", e.name, err)
		return nil
	}

	var urls []string
	for _, entry := range entries {
		url := e.pickEntryURL(entry)
		if url == "" {
			continue
		}
		urls = append(urls, e.resolver.normalizer.Normalize(url))
	}
	return urls
}

// pickEntryURL selects one URL per catalog entry: the high-res form
// when present, otherwise the largest sized variant, otherwise large.
func (e *GalleryExtractor) pickEntryURL(entry colorImageEntry) string {
	if entry.HiRes != "" {
		return entry.HiRes
	}
	if len(entry.Main) > 0 {
		if url, err := e.resolver.parseDynamicImage(string(entry.Main)); err == nil {
			return url
		}
	}
	return entry.Large
}

// scrapeScriptURLs pulls URLs straight out of the script text when the
// catalog is not decodable.
func (e *GalleryExtractor) scrapeScriptURLs(script string) []string {
	var raw []string
	for _, m := range hiResPattern.FindAllStringSubmatch(script, -1) {
		raw = append(raw, m[1])
	}
	if len(raw) == 0 {
		for _, m := range mainSizePattern.FindAllStringSubmatch(script, -1) {
			raw = append(raw, m[1])
		}
	}

	seen := make(map[string]struct{})
	var urls []string
	for _, url := range raw {
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		urls = append(urls, e.resolver.normalizer.Normalize(url))
	}
	return urls
}

// extractFromThumbnails reads the thumbnail strip markup directly.
func (e *GalleryExtractor) extractFromThumbnails(doc dom.Document) []string {
	if els := doc.Find(galleryScrollSelector); len(els) > 0 {
		els[0].ScrollIntoView()
		doc.Pause(e.scrollSettle())
	}

	var thumbs []dom.Element
	for _, selector := range galleryThumbSelectors {
		if found := doc.Find(selector); len(found) > 0 {
			thumbs = found
			break
		}
	}

	var urls []string
	for _, thumb := range thumbs {
		imgs := thumb.Find("img")
		if len(imgs) > 0 && isVideoThumbnail(imgs[0]) {
			continue
		}

		// The container may carry the size catalog itself
		url, err := e.resolver.Resolve(ImageElement{Element: thumb})
		if err != nil && len(imgs) > 0 {
			url, err = e.resolver.Resolve(ImageElement{Element: imgs[0], Ancestor: thumb})
		}
		if err != nil || url == "" {
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

func (e *GalleryExtractor) scrollSettle() time.Duration {
	return scrollSettleMin + time.Duration(e.rnd.Int63n(int64(scrollSettleMax-scrollSettleMin)))
}

// isVideoThumbnail reports whether img is a video cover rather than a
// product image.
func isVideoThumbnail(img dom.Element) bool {
	if parent := img.Parent(); parent != nil {
		if len(parent.Find(videoOverlaySelector)) > 0 {
			return true
		}
	}

	alt, _ := img.Attr("alt")
	lowerAlt := strings.ToLower(alt)
	if strings.Contains(lowerAlt, "video") || strings.Contains(lowerAlt, "play") {
		return true
	}

	src, _ := img.Attr("src")
	return strings.Contains(strings.ToLower(src), "video")
}

// comparisonKey reduces a URL to a form stable across size variants and
// query strings, for equality checks like hero deduplication.
func comparisonKey(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	return HighResNormalizer{}.Normalize(url)
}
