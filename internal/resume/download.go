package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ErrNoDocument is returned when a URL does not yield document bytes.
var ErrNoDocument = errors.New("no document")

// Download retrieves the raw document behind an already resolved URL.
// Every failure, timeouts included, is reported as ErrNoDocument.
func (c *Client) Download(ctx context.Context, target string) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, c.DownloadTimeout)
	defer cancel()

	target = canonicalDownloadURL(target)
	c.logger.Debug("attempting to download", zap.String("url", target))

	body, contentType, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}

	if !isHTML(contentType) {
		return body, nil
	}

	next, ok, err := confirmURL(target, body)
	if err != nil {
		c.logger.Debug("html response is not a download interstitial", zap.String("url", target), zap.Error(err))
		return body, nil
	}
	if !ok {
		return body, nil
	}

	c.logger.Debug("following download confirmation", zap.String("url", next))

	body, _, err = c.get(ctx, next)
	if err != nil {
		return nil, err
	}

	return body, nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, string, error) {
	req, err := c.newRequest(ctx, target)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrNoDocument, err)
	}

	resp, err := c.request(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrNoDocument, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, "", fmt.Errorf("%w: bad status: %s", ErrNoDocument, resp.Status)
	}

	limit := c.MaxDocumentSize
	if limit <= 0 {
		limit = DefaultMaxDocumentSize
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read body: %w", ErrNoDocument, err)
	}

	if int64(len(data)) > limit {
		return nil, "", fmt.Errorf("%w: document is larger than %d bytes", ErrNoDocument, limit)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html"
}

// confirmURL builds the follow-up URL out of the form Google Drive serves
// instead of files it cannot virus-scan.
func confirmURL(base string, page []byte) (string, bool, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", false, fmt.Errorf("parse html: %w", err)
	}

	form := doc.Find("form#download-form").First()
	if form.Length() == 0 {
		return "", false, nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false, fmt.Errorf("parse base url: %w", err)
	}

	action, _ := form.Attr("action")
	actionURL, err := baseURL.Parse(action)
	if err != nil {
		return "", false, fmt.Errorf("parse form action %q: %w", action, err)
	}

	query := actionURL.Query()
	form.Find(`input[type="hidden"]`).Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok || name == "" {
			return
		}
		value, _ := input.Attr("value")
		query.Set(name, value)
	})
	actionURL.RawQuery = query.Encode()

	return actionURL.String(), true, nil
}
