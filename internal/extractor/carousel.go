package extractor

import (
	mathrand "math/rand"
	"time"

	"sjsage522/aplusworker/internal/dom"
	"sjsage522/aplusworker/logger"
	"sjsage522/aplusworker/pkg/errors"
)

// carouselNextSelectors lists the known markup conventions for the
// "next page" control of a paginated image block.
var carouselNextSelectors = []string{
	".a-carousel-goto-nextpage",
	`[aria-label="Next"]`,
	".a-carousel-right",
}

// defaultMaxClicks bounds carousel advancement.
const defaultMaxClicks = 20

// Settle window after each activation, giving the page time to
// materialize the next set of images before the re-query.
const (
	settleMin = 150 * time.Millisecond
	settleMax = 250 * time.Millisecond
)

type paginationState int

const (
	stateIdle paginationState = iota
	stateSearching
	stateAdvancing
	stateDone
)

// Paginator advances pagination controls within a container,
// collecting newly revealed image URLs until a stopping condition:
// a genuine repeat (wraparound), the click budget, or a control that
// stopped being interactable. None of these are fatal.
type Paginator struct {
	name       string
	doc        dom.Document
	discoverer Discoverer
	resolver   *Resolver
	maxClicks  int
	rnd        *mathrand.Rand
}

// NewPaginator creates a paginator bound to one document and resolver.
func NewPaginator(name string, doc dom.Document, resolver *Resolver, maxClicks int) *Paginator {
	if maxClicks <= 0 {
		maxClicks = defaultMaxClicks
	}
	return &Paginator{
		name:      name,
		doc:       doc,
		resolver:  resolver,
		maxClicks: maxClicks,
		rnd:       mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

// Paginate drives the carousel state machine. seen is shared with the
// caller and updated in place; when it arrives empty, the container's
// current images seed it first. The returned slice holds only the
// newly revealed URLs, in click order.
func (p *Paginator) Paginate(container dom.Element, seen *ImageSet) []string {
	if seen == nil {
		seen = NewImageSet()
	}

	var collected []string
	var control dom.Control
	clicks := 0

	state := stateIdle
	for state != stateDone {
		switch state {
		case stateIdle:
			control = p.findControl(container)
			if control == nil {
				state = stateDone
				break
			}
			state = stateSearching

		case stateSearching:
			if seen.Len() == 0 {
				p.seed(container, seen)
			}
			state = stateAdvancing

		case stateAdvancing:
			if clicks >= p.maxClicks {
				logger.Debug("[%s] pagination done: %v", p.name, errors.NewClickBudget(p.name, clicks))
				state = stateDone
				break
			}
			if !control.Interactable() {
				logger.Debug("[%s] pagination done: %v", p.name, errors.NewControlNotInteractable(p.name))
				state = stateDone
				break
			}
			if err := control.Activate(); err != nil {
				logger.Debug("[%s] pagination done: activation failed: %v", p.name, err)
				state = stateDone
				break
			}
			clicks++
			p.doc.Pause(p.settleDelay())

			repeat := false
			for _, img := range p.discoverer.Discover(container) {
				url, err := p.resolver.Resolve(img)
				if err != nil {
					continue
				}
				if seen.Contains(url) {
					// Wraparound: the carousel is showing images again
					repeat = true
					break
				}
				seen.Add(url)
				collected = append(collected, url)
			}
			if repeat {
				logger.Debug("[%s] pagination done: repeat after %d clicks", p.name, clicks)
				state = stateDone
			}
		}
	}

	return collected
}

// findControl returns the first interactable next-page control in the
// container, or nil when pagination is absent or inert.
func (p *Paginator) findControl(container dom.Element) dom.Control {
	for _, selector := range carouselNextSelectors {
		for _, el := range container.Find(selector) {
			control := el.Control()
			if control.Interactable() {
				return control
			}
		}
	}
	return nil
}

// seed records the container's currently visible images so the first
// advancement pass can tell new URLs from ones already on screen.
func (p *Paginator) seed(container dom.Element, seen *ImageSet) {
	for _, img := range p.discoverer.Discover(container) {
		url, err := p.resolver.Resolve(img)
		if err != nil {
			continue
		}
		seen.Add(url)
	}
}

func (p *Paginator) settleDelay() time.Duration {
	return settleMin + time.Duration(p.rnd.Int63n(int64(settleMax-settleMin)))
}
