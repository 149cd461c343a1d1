package httpfetch

import (
	"errors"
	"net/url"
)

// ErrNotFound is returned when a fetch resolves to an HTTP 404.
var ErrNotFound = errors.New("httpfetch: resource not found")

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
