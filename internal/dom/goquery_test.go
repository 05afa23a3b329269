package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"sjsage522/aplusworker/pkg/errors"
)

// Ensure the static backend satisfies the document interfaces
var _ Document = (*GoqueryDocument)(nil)
var _ Element = (*goqueryElement)(nil)
var _ Control = (staticControl{})

func TestStaticDocumentFind(t *testing.T) {
	html := `<html><body>
		<div id="first"><img src="https://example.com/a.jpg"/></div>
		<div id="second"><img src="https://example.com/b.jpg"/></div>
	</body></html>`

	doc, err := NewStaticDocument(strings.NewReader(html))
	assert.NoError(t, err)

	imgs := doc.Find("img")
	assert.Len(t, imgs, 2)

	// Document order is preserved
	src, ok := imgs[0].Attr("src")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/a.jpg", src)

	src, ok = imgs[1].Attr("src")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/b.jpg", src)

	assert.Empty(t, doc.Find("video"))
}

func TestStaticElementNavigation(t *testing.T) {
	html := `<html><body>
		<div id="wrapper" class="module">
			<span>Some caption</span>
			<img src="https://example.com/a.jpg" alt="first"/>
		</div>
	</body></html>`

	doc, err := NewStaticDocument(strings.NewReader(html))
	assert.NoError(t, err)

	imgs := doc.Find("#wrapper img")
	assert.Len(t, imgs, 1)

	img := imgs[0]
	assert.Equal(t, "img", img.Tag())

	_, ok := img.Attr("data-old-hires")
	assert.False(t, ok)

	parent := img.Parent()
	assert.NotNil(t, parent)
	assert.Equal(t, "div", parent.Tag())
	class, _ := parent.Attr("class")
	assert.Equal(t, "module", class)
	assert.Contains(t, parent.Text(), "Some caption")

	// Scoped find only sees descendants
	wrapper := doc.Find("#wrapper")[0]
	assert.Len(t, wrapper.Find("img"), 1)
	assert.Empty(t, wrapper.Find("#wrapper"))
}

func TestStaticElementDisplayed(t *testing.T) {
	html := `<html><body>
		<img id="plain" src="https://example.com/a.jpg"/>
		<img id="styled" style="display: none" src="https://example.com/b.jpg"/>
		<img id="hidden" hidden src="https://example.com/c.jpg"/>
		<img id="aria" aria-hidden="true" src="https://example.com/d.jpg"/>
	</body></html>`

	doc, err := NewStaticDocument(strings.NewReader(html))
	assert.NoError(t, err)

	assert.True(t, doc.Find("#plain")[0].Displayed())
	assert.False(t, doc.Find("#styled")[0].Displayed())
	assert.False(t, doc.Find("#hidden")[0].Displayed())
	assert.False(t, doc.Find("#aria")[0].Displayed())
}

func TestStaticControlNeverInteractable(t *testing.T) {
	html := `<html><body><div class="a-carousel-goto-nextpage"></div></body></html>`

	doc, err := NewStaticDocument(strings.NewReader(html))
	assert.NoError(t, err)

	control := doc.Find("div")[0].Control()
	assert.False(t, control.Interactable())

	err = control.Activate()
	assert.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeControlNotInteractable))
}
