package resume

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// Some file hosts answer plain Go clients with 403, a desktop browser
	// signature gets the document.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	acceptPDF        = "application/pdf"

	DefaultProbeTimeout    = 10 * time.Second
	DefaultDownloadTimeout = 60 * time.Second
	DefaultMaxDocumentSize = 20 << 20
)

// Client resolves and downloads resume documents.
type Client struct {
	logger          *zap.Logger
	HTTPClient      *http.Client
	UserAgent       string
	ProbeTimeout    time.Duration
	DownloadTimeout time.Duration
	MaxDocumentSize int64
}

func New(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		logger:          logger,
		HTTPClient:      &http.Client{},
		UserAgent:       browserUserAgent,
		ProbeTimeout:    DefaultProbeTimeout,
		DownloadTimeout: DefaultDownloadTimeout,
		MaxDocumentSize: DefaultMaxDocumentSize,
	}
}

func (c *Client) newRequest(ctx context.Context, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	userAgent := c.UserAgent
	if userAgent == "" {
		userAgent = browserUserAgent
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptPDF)

	return req, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return client.Do(req)
}

// isSuccess mirrors what file hosts answer for a served document.
func isSuccess(code int) bool {
	return code == http.StatusOK || code == http.StatusCreated
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
