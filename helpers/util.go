package helpers

import (
	"errors"
	"net/url"
	"strings"
)

// HostOf returns the lower-cased host of rawURL without a "www." prefix.
func HostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return "", errors.New("url has no host")
	}
	return host, nil
}
