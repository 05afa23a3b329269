package worker

import (
	"bytes"
	"io"
	"time"

	"sjsage522/aplusworker/helpers"
	"sjsage522/aplusworker/internal/dom"
	"sjsage522/aplusworker/pkg/errors"
)

// PageSession hands out document handles for one product page. Each
// extractor gets its own handle, so carousel clicks in one view never
// disturb another's.
type PageSession interface {
	// Document returns a fresh handle on the page. Callers close it.
	Document() (dom.Document, error)

	// Close releases session resources.
	Close() error
}

// SessionOpener opens a page session for a product URL.
type SessionOpener func(url string) (PageSession, error)

// StaticOpener fetches the page once with randomized headers and
// serves parsed snapshots of the same bytes.
func StaticOpener() SessionOpener {
	return func(url string) (PageSession, error) {
		reader, err := helpers.FetchWithRandomHeaders(url)
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, errors.NewNetwork("fetch", "failed to read page body", err)
		}
		return &staticSession{data: data}, nil
	}
}

type staticSession struct {
	data []byte
}

func (s *staticSession) Document() (dom.Document, error) {
	return dom.NewStaticDocument(bytes.NewReader(s.data))
}

func (s *staticSession) Close() error { return nil }

// BrowserOpener serves live pages through a shared headless browser.
// Every Document call navigates a new tab to the URL.
func BrowserOpener(browser *dom.Browser, timeout time.Duration) SessionOpener {
	return func(url string) (PageSession, error) {
		return &browserSession{browser: browser, url: url, timeout: timeout}, nil
	}
}

type browserSession struct {
	browser *dom.Browser
	url     string
	timeout time.Duration
}

func (s *browserSession) Document() (dom.Document, error) {
	return s.browser.Open(s.url, s.timeout)
}

func (s *browserSession) Close() error { return nil }
