package resumetest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
)

type hostRewriter struct {
	target *url.URL
	next   http.RoundTripper
}

func (h hostRewriter) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.URL.Scheme = h.target.Scheme
	clone.URL.Host = h.target.Host
	clone.Host = h.target.Host
	return h.next.RoundTrip(clone)
}

// Client returns an HTTP client that sends every request to srv while keeping
// the path and query, so real share-link hosts can be exercised offline.
func Client(srv *httptest.Server) *http.Client {
	target, err := url.Parse(srv.URL)
	if err != nil {
		panic(err)
	}
	return &http.Client{Transport: hostRewriter{target: target, next: srv.Client().Transport}}
}
