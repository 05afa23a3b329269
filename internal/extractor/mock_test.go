package extractor

import (
	"fmt"
	"time"

	"sjsage522/aplusworker/internal/dom"
)

// Interface compliance for the test doubles
var (
	_ dom.Document = (*mockDocument)(nil)
	_ dom.Element  = (*mockElement)(nil)
	_ dom.Element  = (*pagedContainer)(nil)
	_ dom.Element  = (*endlessContainer)(nil)
	_ dom.Control  = (*mockControl)(nil)
)

// mockDocument serves canned elements per selector and counts pauses.
type mockDocument struct {
	elements map[string][]dom.Element
	pauses   int
}

func (d *mockDocument) Find(selector string) []dom.Element { return d.elements[selector] }
func (d *mockDocument) HTML() (string, error)              { return "", nil }
func (d *mockDocument) Pause(time.Duration)                { d.pauses++ }
func (d *mockDocument) Close() error                       { return nil }

// mockControl counts activations and runs an optional hook on each.
type mockControl struct {
	interactable bool
	clicks       int
	advance      func()
}

func (c *mockControl) Interactable() bool { return c.interactable }

func (c *mockControl) Activate() error {
	c.clicks++
	if c.advance != nil {
		c.advance()
	}
	return nil
}

// inertElement supplies neutral element behavior for embedding.
type inertElement struct{}

func (inertElement) Tag() string                { return "div" }
func (inertElement) Attr(string) (string, bool) { return "", false }
func (inertElement) Text() string               { return "" }
func (inertElement) Parent() dom.Element        { return nil }
func (inertElement) Find(string) []dom.Element  { return nil }
func (inertElement) ScrollIntoView()            {}
func (inertElement) Displayed() bool            { return true }
func (inertElement) Control() dom.Control       { return &mockControl{} }

// mockElement is a fully scripted element.
type mockElement struct {
	inertElement
	tag   string
	attrs map[string]string
	ctrl  dom.Control
}

func (m *mockElement) Tag() string { return m.tag }

func (m *mockElement) Attr(name string) (string, bool) {
	v, ok := m.attrs[name]
	return v, ok
}

func (m *mockElement) Control() dom.Control {
	if m.ctrl != nil {
		return m.ctrl
	}
	return &mockControl{}
}

func imgEl(src string) *mockElement {
	return &mockElement{tag: "img", attrs: map[string]string{"src": src}}
}

// pagedContainer simulates a carousel section whose visible images
// change after each activation of its next control. The final page is
// sticky so further clicks keep revealing it.
type pagedContainer struct {
	inertElement
	pages   [][]string
	page    int
	control *mockControl
}

func newPagedContainer(pages [][]string) *pagedContainer {
	c := &pagedContainer{pages: pages}
	c.control = &mockControl{interactable: true}
	c.control.advance = func() {
		if c.page < len(c.pages)-1 {
			c.page++
		}
	}
	return c
}

func (c *pagedContainer) Find(selector string) []dom.Element {
	switch selector {
	case "img":
		var els []dom.Element
		for _, src := range c.pages[c.page] {
			els = append(els, imgEl(src))
		}
		return els
	case ".a-carousel-goto-nextpage":
		if c.control == nil {
			return nil
		}
		return []dom.Element{&mockElement{tag: "button", ctrl: c.control}}
	}
	return nil
}

// endlessContainer reveals one brand new image per activation and
// never repeats.
type endlessContainer struct {
	inertElement
	page    int
	control *mockControl
}

func newEndlessContainer() *endlessContainer {
	c := &endlessContainer{}
	c.control = &mockControl{interactable: true}
	c.control.advance = func() { c.page++ }
	return c
}

func (c *endlessContainer) Find(selector string) []dom.Element {
	switch selector {
	case "img":
		return []dom.Element{imgEl(fmt.Sprintf("https://img.example.com/page%d.jpg", c.page))}
	case ".a-carousel-goto-nextpage":
		return []dom.Element{&mockElement{tag: "button", ctrl: c.control}}
	}
	return nil
}
