package extractor

import (
	mathrand "math/rand"
	"time"

	"sjsage522/aplusworker/internal/dom"
	"sjsage522/aplusworker/logger"
	"sjsage522/aplusworker/pkg/errors"
)

// Settle window after scrolling a container into view, giving lazy
// loaders time to swap in real sources before the first query.
const (
	scrollSettleMin = 100 * time.Millisecond
	scrollSettleMax = 200 * time.Millisecond
)

// AplusExtractor extracts enhanced marketing content images. It walks
// an ordered list of content categories and commits to the first one
// that yields a non-empty image set; later categories are not tried.
type AplusExtractor struct {
	name       string
	categories []CategoryConfig
	discoverer Discoverer
	maxClicks  int
	rnd        *mathrand.Rand
}

// NewAplusExtractor creates an extractor over the given category list.
// The list order is the priority order.
func NewAplusExtractor(name string, categories []CategoryConfig, maxClicks int) *AplusExtractor {
	return &AplusExtractor{
		name:       name,
		categories: categories,
		maxClicks:  maxClicks,
		rnd:        mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

// GetName returns the extractor name.
func (e *AplusExtractor) GetName() string {
	return e.name
}

// GetCategory returns the highest-priority category this extractor targets.
func (e *AplusExtractor) GetCategory() ContentCategory {
	if len(e.categories) == 0 {
		return ""
	}
	return e.categories[0].Category
}

// Extract runs the category list in order against the document. Each
// category locates its container, resolves the initial images, then
// advances any pagination control. A missing container or an empty
// category is not an error; the next category is tried instead.
func (e *AplusExtractor) Extract(doc dom.Document) (*Result, error) {
	if doc == nil {
		return nil, errors.NewValidation(e.name, "document is nil")
	}

	log := logger.ForExtractor(e.name)

	for _, cfg := range e.categories {
		set := e.extractCategory(doc, cfg)
		if set.Len() == 0 {
			continue
		}

		log.Info().
			Str("category", string(cfg.Category)).
			Int("count", set.Len()).
			Msg("extracted enhanced content images")

		return &Result{
			Category:   cfg.Category,
			FilePrefix: cfg.FilePrefix,
			URLs:       set.URLs(),
		}, nil
	}

	return e.emptyResult(), nil
}

// extractCategory performs the locate, discover/resolve, paginate
// sequence for one category and returns whatever it accumulated.
func (e *AplusExtractor) extractCategory(doc dom.Document, cfg CategoryConfig) *ImageSet {
	set := NewImageSet()

	locator := NewLocator(e.name, cfg)
	container, err := locator.Locate(doc)
	if err != nil {
		logger.Debug("[%s] %v", e.name, err)
		return set
	}

	logger.Debug("[%s] located %s container (tier %d)", e.name, cfg.Category, container.Tier)

	// Bring the block into view so lazy sources materialize
	container.Element.ScrollIntoView()
	doc.Pause(e.scrollSettle())

	resolver := NewResolver(e.name, cfg.Normalizer)

	for _, img := range e.discoverer.Discover(container.Element) {
		url, err := resolver.Resolve(img)
		if err != nil {
			logger.Debug("[%s] %v", e.name, err)
			continue
		}
		set.Add(url)
	}

	// Pagination runs whether or not the initial pass found anything
	paginator := NewPaginator(e.name, doc, resolver, e.maxClicks)
	added := paginator.Paginate(container.Element, set)
	if len(added) > 0 {
		logger.Debug("[%s] carousel revealed %d additional images", e.name, len(added))
	}

	return set
}

func (e *AplusExtractor) emptyResult() *Result {
	category := e.GetCategory()
	prefix := ""
	if len(e.categories) > 0 {
		prefix = e.categories[0].FilePrefix
	}
	return &Result{Category: category, FilePrefix: prefix, URLs: []string{}}
}

func (e *AplusExtractor) scrollSettle() time.Duration {
	return scrollSettleMin + time.Duration(e.rnd.Int63n(int64(scrollSettleMax-scrollSettleMin)))
}
