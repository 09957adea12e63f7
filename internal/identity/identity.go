// Package identity maps a posting's canonical link to a stable identifier.
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// Resolve turns href into an absolute URL using base. Absolute hrefs pass
// through the same normalization, so both forms of a link resolve equally.
func Resolve(base *url.URL, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("resolve link: empty href")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("resolve link %q: %w", href, err)
	}
	var abs *url.URL
	if base != nil {
		abs = base.ResolveReference(ref)
	} else {
		abs = ref
	}
	if !abs.IsAbs() || abs.Host == "" {
		return "", fmt.Errorf("resolve link %q: not absolute", href)
	}
	return abs.String(), nil
}

// Of returns the lowercase hex MD5 digest of link.
func Of(link string) string {
	sum := md5.Sum([]byte(link))
	return hex.EncodeToString(sum[:])
}
