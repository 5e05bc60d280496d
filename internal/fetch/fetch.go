// Package fetch keeps a local copy of a remote dataset current.
//
// The remote Last-Modified header is compared with the local file's mtime
// and the file is downloaded again only when the remote copy is newer.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

var (
	ErrNoURL          = errors.New("fetch: no dataset url configured")
	ErrNoLastModified = errors.New("fetch: remote did not report Last-Modified")
)

// StatusError is a non-2xx response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: %s returned %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// ProgressFunc is told about bytes received. total is -1 when unknown.
type ProgressFunc func(received, total int64)

type Fetcher struct {
	URL      string
	Client   *http.Client
	Progress ProgressFunc
}

func New(url string) *Fetcher {
	return &Fetcher{URL: url, Client: &http.Client{Timeout: 30 * time.Minute}}
}

func (f *Fetcher) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}

// RemoteModTime issues a HEAD request and parses Last-Modified.
func (f *Fetcher) RemoteModTime(ctx context.Context) (time.Time, error) {
	if f.URL == "" {
		return time.Time{}, ErrNoURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, f.URL, nil)
	if err != nil {
		return time.Time{}, err
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return time.Time{}, err
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return time.Time{}, &StatusError{URL: f.URL, Status: resp.StatusCode}
	}
	lm := resp.Header.Get("Last-Modified")
	if lm == "" {
		return time.Time{}, ErrNoLastModified
	}
	return http.ParseTime(lm)
}

// LocalModTime returns the zero time when path does not exist.
func LocalModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// IsCurrent reports whether the local file is at least as new as the remote.
func (f *Fetcher) IsCurrent(ctx context.Context, path string) (bool, error) {
	remote, err := f.RemoteModTime(ctx)
	if err != nil {
		return false, err
	}
	local, err := LocalModTime(path)
	if err != nil {
		return false, err
	}
	return !remote.After(local), nil
}

// DownloadIfNewer refreshes path when the remote copy is newer. It reports
// whether a download happened.
func (f *Fetcher) DownloadIfNewer(ctx context.Context, path string) (bool, error) {
	current, err := f.IsCurrent(ctx, path)
	if err != nil {
		return false, err
	}
	if current {
		return false, nil
	}
	if err := f.Download(ctx, path); err != nil {
		return false, err
	}
	return true, nil
}

// Download fetches the dataset into path through a temporary file so a
// failed transfer never leaves a truncated dataset behind. The file's mtime
// is set to the remote Last-Modified when the server sends one.
func (f *Fetcher) Download(ctx context.Context, path string) error {
	if f.URL == "" {
		return ErrNoURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return err
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{URL: f.URL, Status: resp.StatusCode}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".part-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	var body io.Reader = resp.Body
	if f.Progress != nil {
		body = &progressReader{r: resp.Body, total: resp.ContentLength, fn: f.Progress}
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("fetch: download %s: %w", f.URL, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}

	if lm, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		return os.Chtimes(path, lm, lm)
	}
	return nil
}

type progressReader struct {
	r        io.Reader
	total    int64
	received int64
	fn       ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.received += int64(n)
		p.fn(p.received, p.total)
	}
	return n, err
}
