package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"sjsage522/aplusworker/internal/dom"
)

func TestDiscoverPlainImages(t *testing.T) {
	doc, err := dom.NewStaticDocument(strings.NewReader(`
		<div id="section">
			<div><img src="https://img.example.com/1.jpg"/></div>
			<div><img src="https://img.example.com/2.jpg"/></div>
			<span><img src="https://img.example.com/3.jpg"/></span>
		</div>
	`))
	assert.NoError(t, err)

	container := doc.Find("#section")[0]
	images := Discoverer{}.Discover(container)

	assert.Len(t, images, 3)
	for i, expected := range []string{
		"https://img.example.com/1.jpg",
		"https://img.example.com/2.jpg",
		"https://img.example.com/3.jpg",
	} {
		src, ok := images[i].Element.Attr("src")
		assert.True(t, ok)
		assert.Equal(t, expected, src)
		assert.NotNil(t, images[i].Ancestor)
	}

	// Ancestor is the immediate wrapper, not the section
	assert.Equal(t, "div", images[0].Ancestor.Tag())
	assert.Equal(t, "span", images[2].Ancestor.Tag())
}

func TestDiscoverAttributeFallback(t *testing.T) {
	// No image tags at all: elements carrying high-res attributes are
	// the last resort
	doc, err := dom.NewStaticDocument(strings.NewReader(`
		<div id="section">
			<div data-old-hires="https://img.example.com/a.jpg"></div>
			<span data-src="https://img.example.com/b.jpg"></span>
		</div>
	`))
	assert.NoError(t, err)

	container := doc.Find("#section")[0]
	images := Discoverer{}.Discover(container)

	assert.Len(t, images, 2)
	assert.Equal(t, "div", images[0].Element.Tag())
	assert.Equal(t, "span", images[1].Element.Tag())
}

func TestDiscoverEmptyContainer(t *testing.T) {
	doc, err := dom.NewStaticDocument(strings.NewReader(`<div id="section"><p>text only</p></div>`))
	assert.NoError(t, err)

	container := doc.Find("#section")[0]
	images := Discoverer{}.Discover(container)

	assert.Empty(t, images)
}
