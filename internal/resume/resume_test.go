package resume

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spigell/ats-screener/internal/resume/resumetest"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(zap.NewNop())
	client.HTTPClient = resumetest.Client(srv)

	return client, srv
}
