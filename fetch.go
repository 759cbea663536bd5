package hsafgrib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

// maxProductBytes caps a downloaded product. Full-disk H-SAF GRIB files are
// a few tens of MB; a larger body means a misbehaving server.
const maxProductBytes = 256 << 20

// ErrTooLarge reports a response body above the client's size cap.
var ErrTooLarge = errors.New("response body exceeds size limit")

// Client downloads H-SAF product files over HTTP.
type Client struct {
	HTTPClient *http.Client
	// MaxBytes caps the response body; zero means maxProductBytes.
	MaxBytes int64
}

// NewClient returns a client with a two-minute timeout.
func NewClient() *Client {
	return &Client{HTTPClient: &http.Client{Timeout: 120 * time.Second}}
}

// Fetch returns the body of rawURL.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, rawURL)
	}

	limit := c.MaxBytes
	if limit <= 0 {
		limit = maxProductBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%s: %w (%d bytes)", rawURL, ErrTooLarge, limit)
	}
	return body, nil
}

// Download fetches rawURL into dir, naming the file after the last element
// of the URL path, and returns the file's path. The file appears only once
// it is complete.
func (c *Client) Download(ctx context.Context, rawURL, dir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." || name == ".." {
		return "", fmt.Errorf("%s: URL names no file", rawURL)
	}

	body, err := c.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return dst, nil
}
