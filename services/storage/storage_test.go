package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Saver = (*FileSaver)(nil)

func jpegPayload(marker byte) []byte {
	data := make([]byte, 64)
	copy(data, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	data[63] = marker
	return data
}

func pngPayload(marker byte) []byte {
	data := make([]byte, 64)
	copy(data, []byte("\x89PNG\r\n\x1a\n"))
	data[63] = marker
	return data
}

func newTestSaver(t *testing.T, payloads map[string][]byte) *FileSaver {
	t.Helper()
	return &FileSaver{
		root:     t.TempDir(),
		minBytes: 16,
		fetch: func(url string) ([]byte, error) {
			data, ok := payloads[url]
			if !ok {
				return nil, fmt.Errorf("no payload for %s", url)
			}
			return data, nil
		},
	}
}

func TestSaveImagesWritesNumberedFiles(t *testing.T) {
	saver := newTestSaver(t, map[string][]byte{
		"https://m.media-amazon.com/images/I/a.jpg": jpegPayload(1),
		"https://m.media-amazon.com/images/I/b.jpg": jpegPayload(2),
	})

	run, err := saver.NewRun("B08N5WRWNW")
	require.NoError(t, err)

	saved, err := run.SaveImages("product", []string{
		"https://m.media-amazon.com/images/I/a.jpg",
		"https://m.media-amazon.com/images/I/b.jpg",
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)

	assert.Equal(t, filepath.Join(run.Dir(), "product", "product1.jpg"), saved[0])
	assert.Equal(t, filepath.Join(run.Dir(), "product", "product2.jpg"), saved[1])

	data, err := os.ReadFile(saved[0])
	require.NoError(t, err)
	assert.Equal(t, jpegPayload(1), data)
}

func TestSaveImagesSkipsDuplicates(t *testing.T) {
	saver := newTestSaver(t, map[string][]byte{
		"https://example.com/one.jpg": jpegPayload(7),
		"https://example.com/two.jpg": jpegPayload(7),
	})

	run, err := saver.NewRun("dup")
	require.NoError(t, err)

	saved, err := run.SaveImages("A+", []string{
		"https://example.com/one.jpg",
		"https://example.com/two.jpg",
	})
	require.NoError(t, err)
	require.Len(t, saved, 1)

	_, err = os.Stat(filepath.Join(run.Dir(), "A+", "A+2.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveImagesDeduplicatesAcrossCategories(t *testing.T) {
	saver := newTestSaver(t, map[string][]byte{
		"https://example.com/hero.jpg":    jpegPayload(9),
		"https://example.com/gallery.jpg": jpegPayload(9),
	})

	run, err := saver.NewRun("shared")
	require.NoError(t, err)

	saved, err := run.SaveImages("hero", []string{"https://example.com/hero.jpg"})
	require.NoError(t, err)
	require.Len(t, saved, 1)

	saved, err = run.SaveImages("product", []string{"https://example.com/gallery.jpg"})
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSaveImagesNumbersByPosition(t *testing.T) {
	saver := newTestSaver(t, map[string][]byte{
		"https://example.com/good.jpg": jpegPayload(3),
	})

	run, err := saver.NewRun("holes")
	require.NoError(t, err)

	saved, err := run.SaveImages("A+", []string{
		"https://example.com/missing.jpg",
		"https://example.com/good.jpg",
	})
	require.NoError(t, err)
	require.Len(t, saved, 1)

	// Numbering follows slice position, so a failed download leaves a gap.
	assert.Equal(t, "A+2.jpg", filepath.Base(saved[0]))
}

func TestSaveImagesRejectsSmallAndNonImage(t *testing.T) {
	saver := newTestSaver(t, map[string][]byte{
		"https://example.com/tiny.jpg": {0xFF, 0xD8, 0xFF, 0xE0},
		"https://example.com/page":     []byte("<!DOCTYPE html><html><body>not found</body></html>"),
	})

	run, err := saver.NewRun("junk")
	require.NoError(t, err)

	saved, err := run.SaveImages("product", []string{
		"https://example.com/tiny.jpg",
		"https://example.com/page",
	})
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSaveImagesExtensionFromContent(t *testing.T) {
	saver := newTestSaver(t, map[string][]byte{
		"https://example.com/art": pngPayload(4),
	})

	run, err := saver.NewRun("png")
	require.NoError(t, err)

	saved, err := run.SaveImages("product", []string{"https://example.com/art"})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "product1.png", filepath.Base(saved[0]))
}

func TestSaveImagesEmptyURLs(t *testing.T) {
	saver := newTestSaver(t, nil)

	run, err := saver.NewRun("empty")
	require.NoError(t, err)

	saved, err := run.SaveImages("product", nil)
	require.NoError(t, err)
	assert.Nil(t, saved)

	_, err = os.Stat(filepath.Join(run.Dir(), "product"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewRunCollisionSuffix(t *testing.T) {
	saver := newTestSaver(t, nil)

	first, err := saver.NewRun("Widget")
	require.NoError(t, err)
	second, err := saver.NewRun("Widget")
	require.NoError(t, err)

	assert.NotEqual(t, first.Dir(), second.Dir())
	assert.Equal(t, "Widget (2)", filepath.Base(second.Dir()))
}

func TestSanitizeName(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"invalid characters stripped", `Widget: "Pro"/Max?`, "Widget ProMax"},
		{"whitespace collapsed", "a   b\tc", "a b c"},
		{"trailing dots trimmed", " name.. ", "name"},
		{"empty falls back", "///", "unnamed"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, sanitizeName(tc.input))
		})
	}
}
