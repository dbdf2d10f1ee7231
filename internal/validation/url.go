package validation

import (
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrEmpty is returned for blank input
	ErrEmpty = errors.New("url is empty")
	// ErrInvalid is returned when input is not an absolute http(s) URL
	ErrInvalid = errors.New("url must be an absolute http or https URL")
)

// trackingParams are dropped alongside any utm_* parameter
var trackingParams = map[string]bool{
	"fbclid": true,
	"gclid":  true,
	"mc_cid": true,
	"mc_eid": true,
}

// NormalizeURL trims raw and checks it is a usable article URL.
// With stripTracking set, utm_* and common click-id parameters are removed.
func NormalizeURL(raw string, stripTracking bool) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmpty
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", ErrInvalid
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return "", ErrInvalid
	}

	if !stripTracking {
		return trimmed, nil
	}
	return DropTrackingParams(u), nil
}

// DropTrackingParams removes utm_* and click-id query parameters from u
func DropTrackingParams(u *url.URL) string {
	if u.RawQuery == "" {
		return u.String()
	}

	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), "utm_") || trackingParams[strings.ToLower(key)] {
			query.Del(key)
			changed = true
		}
	}
	if !changed {
		return u.String()
	}

	u.RawQuery = query.Encode()
	return u.String()
}

// Domain returns the host of rawURL without a leading "www."
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
