package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"sjsage522/aplusworker/internal/dom"
)

func TestPaginateStopsOnRepeat(t *testing.T) {
	// After three activations the carousel wraps around to the first image
	container := newPagedContainer([][]string{
		{"https://img.example.com/a.jpg", "https://img.example.com/b.jpg"},
		{"https://img.example.com/c.jpg"},
		{"https://img.example.com/d.jpg"},
		{"https://img.example.com/a.jpg"},
	})
	doc := &mockDocument{}
	p := NewPaginator("test", doc, NewResolver("test", nil), 20)

	seen := NewImageSet()
	seen.Add("https://img.example.com/a.jpg")
	seen.Add("https://img.example.com/b.jpg")

	added := p.Paginate(container, seen)

	assert.Equal(t, []string{
		"https://img.example.com/c.jpg",
		"https://img.example.com/d.jpg",
	}, added)
	assert.Equal(t, 3, container.control.clicks, "should stop on the repeat, well before the budget")
	assert.Equal(t, 4, seen.Len())
}

func TestPaginateBoundedByBudget(t *testing.T) {
	// A control that never repeats and never exhausts
	container := newEndlessContainer()
	doc := &mockDocument{}
	p := NewPaginator("test", doc, NewResolver("test", nil), 5)

	added := p.Paginate(container, NewImageSet())

	assert.Len(t, added, 5)
	assert.Equal(t, 5, container.control.clicks)
}

func TestPaginateSeedsFromCurrentImages(t *testing.T) {
	// Caller passes an empty set; the current image must seed it so the
	// first wraparound is detected instead of collected
	container := newPagedContainer([][]string{
		{"https://img.example.com/a.jpg"},
		{"https://img.example.com/a.jpg"},
	})
	doc := &mockDocument{}
	p := NewPaginator("test", doc, NewResolver("test", nil), 20)

	seen := NewImageSet()
	added := p.Paginate(container, seen)

	assert.Empty(t, added)
	assert.True(t, seen.Contains("https://img.example.com/a.jpg"))
	assert.Equal(t, 1, container.control.clicks)
}

func TestPaginateNoControl(t *testing.T) {
	container := &pagedContainer{pages: [][]string{{"https://img.example.com/a.jpg"}}}
	doc := &mockDocument{}
	p := NewPaginator("test", doc, NewResolver("test", nil), 20)

	added := p.Paginate(container, NewImageSet())

	assert.Empty(t, added)
	assert.Zero(t, doc.pauses)
}

func TestPaginateInertControl(t *testing.T) {
	container := newPagedContainer([][]string{
		{"https://img.example.com/a.jpg"},
		{"https://img.example.com/b.jpg"},
	})
	container.control.interactable = false
	doc := &mockDocument{}
	p := NewPaginator("test", doc, NewResolver("test", nil), 20)

	added := p.Paginate(container, NewImageSet())

	assert.Empty(t, added)
	assert.Zero(t, container.control.clicks)
}

func TestPaginateControlDiesMidway(t *testing.T) {
	container := newPagedContainer([][]string{
		{"https://img.example.com/a.jpg"},
		{"https://img.example.com/b.jpg"},
		{"https://img.example.com/c.jpg"},
		{"https://img.example.com/d.jpg"},
	})
	advance := container.control.advance
	container.control.advance = func() {
		advance()
		if container.control.clicks >= 2 {
			container.control.interactable = false
		}
	}
	doc := &mockDocument{}
	p := NewPaginator("test", doc, NewResolver("test", nil), 20)

	added := p.Paginate(container, NewImageSet())

	// Whatever was accumulated before the control went away is kept
	assert.Equal(t, []string{
		"https://img.example.com/b.jpg",
		"https://img.example.com/c.jpg",
	}, added)
	assert.Equal(t, 2, container.control.clicks)
}

func TestPaginateStaticSnapshotDone(t *testing.T) {
	// Static snapshots expose the control markup but it can never be
	// activated, so pagination ends immediately
	html := `
		<div id="aplus">
			<img src="https://img.example.com/a.jpg"/>
			<button class="a-carousel-goto-nextpage">Next</button>
		</div>
	`
	doc, err := dom.NewStaticDocument(strings.NewReader(html))
	assert.NoError(t, err)

	containers := doc.Find("#aplus")
	assert.Len(t, containers, 1)

	p := NewPaginator("test", doc, NewResolver("test", nil), 20)
	added := p.Paginate(containers[0], NewImageSet())

	assert.Empty(t, added)
}
