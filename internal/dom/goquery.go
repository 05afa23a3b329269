package dom

import (
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/aplusworker/pkg/errors"
)

// GoqueryDocument is the static backend: a parsed HTML snapshot with
// no layout, no scripting, and no interactable controls.
type GoqueryDocument struct {
	doc *goquery.Document
}

// NewStaticDocument parses HTML from r into a static document.
func NewStaticDocument(r io.Reader) (*GoqueryDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.NewParsing("", "failed to parse document", err)
	}
	return &GoqueryDocument{doc: doc}, nil
}

// Find returns all elements matching the selector in document order.
func (d *GoqueryDocument) Find(selector string) []Element {
	return wrapSelection(d.doc.Find(selector))
}

// HTML returns the document markup.
func (d *GoqueryDocument) HTML() (string, error) {
	return d.doc.Html()
}

// Pause is a no-op; a snapshot has nothing to settle.
func (d *GoqueryDocument) Pause(time.Duration) {}

// Close is a no-op for snapshots.
func (d *GoqueryDocument) Close() error { return nil }

func wrapSelection(sel *goquery.Selection) []Element {
	els := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		els = append(els, &goqueryElement{sel: s})
	})
	return els
}

type goqueryElement struct {
	sel *goquery.Selection
}

func (e *goqueryElement) Tag() string {
	return goquery.NodeName(e.sel)
}

func (e *goqueryElement) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e *goqueryElement) Text() string {
	return e.sel.Text()
}

func (e *goqueryElement) Parent() Element {
	p := e.sel.Parent()
	if p.Length() == 0 {
		return nil
	}
	return &goqueryElement{sel: p}
}

func (e *goqueryElement) Find(selector string) []Element {
	return wrapSelection(e.sel.Find(selector))
}

func (e *goqueryElement) ScrollIntoView() {}

// Displayed trusts inline hints only; a snapshot carries no computed style.
func (e *goqueryElement) Displayed() bool {
	if style, ok := e.sel.Attr("style"); ok {
		compact := strings.ReplaceAll(style, " ", "")
		if strings.Contains(compact, "display:none") || strings.Contains(compact, "visibility:hidden") {
			return false
		}
	}
	if _, hidden := e.sel.Attr("hidden"); hidden {
		return false
	}
	if v, ok := e.sel.Attr("aria-hidden"); ok && v == "true" {
		return false
	}
	return true
}

func (e *goqueryElement) Control() Control {
	return staticControl{}
}

type staticControl struct{}

func (staticControl) Interactable() bool { return false }

func (staticControl) Activate() error {
	return errors.NewControlNotInteractable("static")
}
