package helpers

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"regexp"
)

var asinPattern = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})`)

// ExtractASIN pulls the 10-character product identifier out of a product page URL.
func ExtractASIN(url string) (string, error) {
	matches := asinPattern.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", errors.New("no ASIN in URL")
	}
	return matches[1], nil
}

// MD5Hex returns the hex-encoded MD5 digest of data. Used for image
// dedup and for cache key derivation.
func MD5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
