package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractASIN(t *testing.T) {
	tests := []struct {
		url  string
		asin string
		ok   bool
	}{
		{"https://www.amazon.com/dp/B08N5WRWNW", "B08N5WRWNW", true},
		{"https://www.amazon.com/Some-Product-Name/dp/B08N5WRWNW/ref=sr_1_1", "B08N5WRWNW", true},
		{"https://www.amazon.com/gp/product/B000123456?th=1", "B000123456", true},
		{"https://www.amazon.com/s?k=headphones", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		asin, err := ExtractASIN(tc.url)
		if tc.ok {
			assert.NoError(t, err, tc.url)
			assert.Equal(t, tc.asin, asin)
		} else {
			assert.Error(t, err, tc.url)
		}
	}
}

func TestMD5Hex(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", MD5Hex(nil))
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", MD5Hex([]byte("hello")))
	assert.Len(t, MD5Hex([]byte{0xFF, 0xD8}), 32)
}
