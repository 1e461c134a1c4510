package resume

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

const driveDownloadURL = "https://drive.google.com/uc?export=download&id=%s"

var (
	// shareLinkPattern matches the "view" links Google Drive hands out when a file is shared.
	shareLinkPattern = regexp.MustCompile(`^https?://drive\.google\.com/file/d/([a-zA-Z0-9_-]+)/view`)
	// driveFilePattern is the looser form used right before downloading.
	driveFilePattern = regexp.MustCompile(`drive\.google\.com/file/d/([a-zA-Z0-9_-]+)`)
)

// Reference is a resume URL after normalization and probing.
type Reference struct {
	URL   string
	Valid bool
}

// NormalizeShareLink rewrites a Drive share link into its direct-download form.
// Any other URL, including an already canonical download URL, is returned unchanged with false.
func NormalizeShareLink(raw string) (string, bool) {
	match := shareLinkPattern.FindStringSubmatch(raw)
	if match == nil {
		return raw, false
	}
	return fmt.Sprintf(driveDownloadURL, match[1]), true
}

func canonicalDownloadURL(raw string) string {
	match := driveFilePattern.FindStringSubmatch(raw)
	if match == nil {
		return raw
	}
	return fmt.Sprintf(driveDownloadURL, match[1])
}

// Resolve normalizes the URL and confirms that it serves a document.
// Share links are tried in their download form first, then as submitted.
// When nothing answers with success the submitted URL is returned marked invalid.
func (c *Client) Resolve(ctx context.Context, raw string) Reference {
	candidates := []string{raw}
	if rewritten, ok := NormalizeShareLink(raw); ok {
		c.logger.Debug("converted share link", zap.String("url", raw), zap.String("download_url", rewritten))
		// Rewritten first on purpose: a view page also answers 200, and callers
		// must get the download URL back for share links.
		candidates = []string{rewritten, raw}
	}

	for _, candidate := range candidates {
		if c.probe(ctx, candidate) {
			return Reference{URL: candidate, Valid: true}
		}
	}

	c.logger.Info("unable to reach a document behind the url", zap.String("url", raw))
	return Reference{URL: raw}
}

func (c *Client) probe(ctx context.Context, target string) bool {
	ctx, cancel := withTimeout(ctx, c.ProbeTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, target)
	if err != nil {
		c.logger.Debug("probe failed", zap.String("url", target), zap.Error(err))
		return false
	}

	resp, err := c.request(req)
	if err != nil {
		c.logger.Debug("probe failed", zap.String("url", target), zap.Error(err))
		return false
	}
	// The body is never read, the status is all the probe needs.
	resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		c.logger.Debug("probe got bad status", zap.String("url", target), zap.String("status", resp.Status))
		return false
	}

	return true
}
