package dom

import (
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"sjsage522/aplusworker/pkg/errors"
)

// Browser manages a headless browser used by the live-page backend.
type Browser struct {
	browser *rod.Browser
	launch  *launcher.Launcher
}

// NewBrowser launches a headless browser. bin overrides the browser
// binary path when non-empty.
func NewBrowser(bin string) (*Browser, error) {
	l := launcher.New().Headless(true)
	if bin != "" {
		l = l.Bin(bin)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, errors.NewConfiguration("failed to launch browser", err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, errors.NewConfiguration("failed to connect to browser", err)
	}
	return &Browser{browser: b, launch: l}, nil
}

// Open navigates a new page to url and waits for the load event.
func (b *Browser) Open(url string, timeout time.Duration) (*RodDocument, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, errors.NewNetwork("", "failed to open page "+url, err)
	}
	page = page.Timeout(timeout)
	if err := page.WaitLoad(); err != nil {
		page.Close()
		return nil, errors.NewNetwork("", "page load timed out for "+url, err)
	}
	return &RodDocument{page: page}, nil
}

// Close shuts the browser down and cleans up the launcher.
func (b *Browser) Close() error {
	err := b.browser.Close()
	b.launch.Cleanup()
	return err
}

// RodDocument is the live backend: a real page where controls click
// and settle delays matter.
type RodDocument struct {
	page *rod.Page
}

func (d *RodDocument) Find(selector string) []Element {
	els, err := d.page.Elements(selector)
	if err != nil {
		return nil
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out
}

func (d *RodDocument) HTML() (string, error) {
	return d.page.HTML()
}

func (d *RodDocument) Pause(dur time.Duration) {
	time.Sleep(dur)
}

func (d *RodDocument) Close() error {
	return d.page.Close()
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Tag() string {
	obj, err := e.el.Eval("() => this.tagName")
	if err != nil {
		return ""
	}
	return strings.ToLower(obj.Value.Str())
}

func (e *rodElement) Attr(name string) (string, bool) {
	val, err := e.el.Attribute(name)
	if err != nil || val == nil {
		return "", false
	}
	return *val, true
}

func (e *rodElement) Text() string {
	text, err := e.el.Text()
	if err != nil {
		return ""
	}
	return text
}

func (e *rodElement) Parent() Element {
	p, err := e.el.Parent()
	if err != nil {
		return nil
	}
	return &rodElement{el: p}
}

func (e *rodElement) Find(selector string) []Element {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out
}

func (e *rodElement) ScrollIntoView() {
	_ = e.el.ScrollIntoView()
}

func (e *rodElement) Displayed() bool {
	visible, err := e.el.Visible()
	return err == nil && visible
}

func (e *rodElement) Control() Control {
	return &rodControl{el: e.el}
}

type rodControl struct {
	el *rod.Element
}

func (c *rodControl) Interactable() bool {
	visible, err := c.el.Visible()
	if err != nil || !visible {
		return false
	}
	if _, err := c.el.Interactable(); err != nil {
		return false
	}
	return true
}

func (c *rodControl) Activate() error {
	return c.el.Click(proto.InputMouseButtonLeft, 1)
}
