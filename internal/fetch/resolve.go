package fetch

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// redirectHosts are aggregator domains that wrap article links in redirects.
var redirectHosts = []string{"news.google.com", "google.com/url"}

// IsIndirect reports whether a URL is an aggregator redirect link rather
// than a direct article address.
func IsIndirect(rawURL string) bool {
	for _, h := range redirectHosts {
		if strings.Contains(rawURL, h) {
			return true
		}
	}
	return false
}

// Resolver obtains canonical article URLs from redirect links. Failure to
// resolve is an expected, frequent outcome and is reported via the ok bool,
// never as an error.
type Resolver struct {
	client *http.Client
}

// NewResolver creates a resolver whose network attempts are bounded by
// timeout. Redirects are not followed; the Location header is read instead.
func NewResolver(timeout time.Duration) *Resolver {
	return &Resolver{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Resolve attempts to canonicalize rawURL. An embedded url= query parameter
// is decoded first, without any network round-trip. Otherwise a single
// manual-redirect request is issued and its Location header used. Returns
// ok=false when the target cannot be determined or still points at an
// aggregator domain; callers fall back to the original URL.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (string, bool) {
	if target, ok := embeddedTarget(rawURL); ok {
		return target, true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", false
	}
	resp.Body.Close()

	loc := resp.Header.Get("Location")
	if loc == "" || IsIndirect(loc) {
		return "", false
	}
	return loc, true
}

// embeddedTarget extracts a url= query parameter pointing off the
// aggregator domain.
func embeddedTarget(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	target := u.Query().Get("url")
	if target == "" || IsIndirect(target) {
		return "", false
	}
	return target, true
}
