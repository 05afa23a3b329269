package dom

import "time"

// Document is one rendered product page, queryable by CSS selector.
// Implementations are either a parsed static snapshot or a live
// automated page; extraction code treats both identically.
type Document interface {
	Find(selector string) []Element
	HTML() (string, error)
	Pause(d time.Duration)
	Close() error
}

// Element is a single node within a Document. Parent returns nil at
// the document root. Find queries descendants of this element only.
type Element interface {
	Tag() string
	Attr(name string) (string, bool)
	Text() string
	Parent() Element
	Find(selector string) []Element
	ScrollIntoView()
	Displayed() bool
	Control() Control
}

// Control is the interactive surface of an element, such as a
// carousel next-page button. Static snapshots are never interactable.
type Control interface {
	Interactable() bool
	Activate() error
}
