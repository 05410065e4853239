// Package httploader implements fetch.ResourceLoader over plain
// http(s), the scheme Genie job configs and dependency artifacts are
// fetched over in production.
package httploader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Loader fetches resources over http(s) using client. A zero Loader
// uses http.DefaultClient.
type Loader struct {
	Client *http.Client
}

// New returns a Loader using client, or http.DefaultClient if client
// is nil.
func New(client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{Client: client}
}

func (l *Loader) httpClient() *http.Client {
	if l.Client != nil {
		return l.Client
	}
	return http.DefaultClient
}

// Exists issues a HEAD request and reports whether the server responds
// with a success status.
func (l *Loader) Exists(ctx context.Context, uri string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, uri, nil)
	if err != nil {
		return false, err
	}
	resp, err := l.httpClient().Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("httploader: HEAD %s: %s", uri, resp.Status)
	}
	return true, nil
}

// LastModified issues a HEAD request and parses the Last-Modified
// response header into a Unix timestamp. If the server omits the
// header, the current time is used so the resource is always treated
// as freshly observed rather than cached incorrectly forever.
func (l *Loader) LastModified(ctx context.Context, uri string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, uri, nil)
	if err != nil {
		return 0, err
	}
	resp, err := l.httpClient().Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("httploader: HEAD %s: %s", uri, resp.Status)
	}
	lm := resp.Header.Get("Last-Modified")
	if lm == "" {
		return time.Now().Unix(), nil
	}
	t, err := http.ParseTime(lm)
	if err != nil {
		return time.Now().Unix(), nil
	}
	return t.Unix(), nil
}

// OpenStream issues a GET request and returns the response body as a
// stream. The caller must close it.
func (l *Loader) OpenStream(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("httploader: GET %s: %s", uri, resp.Status)
	}
	return resp.Body, nil
}
