package extractor

import (
	"sjsage522/aplusworker/internal/dom"
)

// discoveryTiers is the layered fallback search for image-bearing
// elements. Each tier runs only when the previous one found nothing:
// plain image descendants, then images under known wrapper kinds, then
// any element carrying a known high-res attribute.
var discoveryTiers = []string{
	"img",
	"div img, span img, p img, a img",
	"[data-old-hires], [data-a-dynamic-image], [data-src]",
}

// Discoverer finds candidate image-bearing elements within a container.
type Discoverer struct{}

// Discover runs the tiers in order until one yields elements. Every
// discovered element is paired with its immediate ancestor, since the
// authoritative URL may be encoded on either. Traversal order is
// preserved as yielded by the underlying query.
func (Discoverer) Discover(container dom.Element) []ImageElement {
	for _, selector := range discoveryTiers {
		els := container.Find(selector)
		if len(els) == 0 {
			continue
		}
		images := make([]ImageElement, 0, len(els))
		for _, el := range els {
			images = append(images, ImageElement{Element: el, Ancestor: el.Parent()})
		}
		return images
	}
	return nil
}
