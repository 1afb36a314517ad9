package resources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jjfont/jjfont/core"
)

// DefaultMaxFontSize limits the size of downloaded fonts.
const DefaultMaxFontSize = 32 << 20

// DefaultHeader returns the request headers sent along with font requests.
// The content site only serves fonts to requests looking like its own pages.
func DefaultHeader() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:91.0) Gecko/20100101 Firefox/91.0")
	h.Set("Accept", "application/font-woff2;q=1.0,application/font-woff;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "zh-CN,zh;q=0.5")
	h.Set("Pragma", "no-cache")
	h.Set("Cache-Control", "no-cache")
	h.Set("Referer", "http://my.jjwxc.net/")
	h.Set("Origin", "http://my.jjwxc.net")
	return h
}

// Remote fetches scrambled fonts from the content site.
type Remote struct {
	URL     string // format string, taking the font name as argument
	Header  http.Header
	Client  *http.Client
	Retries int           // attempts for transient failures
	Backoff time.Duration // delay before attempt n is n × Backoff
	MaxSize int64         // larger fonts are rejected; 0 means DefaultMaxFontSize
}

// NewRemote creates a font fetcher for a URL template.
func NewRemote(urlTemplate string, retries int, backoff, timeout time.Duration) *Remote {
	if retries < 1 {
		retries = 1
	}
	return &Remote{
		URL:     urlTemplate,
		Header:  DefaultHeader(),
		Client:  &http.Client{Timeout: timeout},
		Retries: retries,
		Backoff: backoff,
	}
}

// Fetch downloads the font name. A missing font results in an error with
// code core.EMISSING and is not retried; network failures, server errors
// and rate limiting are retried and finally reported with code
// core.ECONNECTION.
func (r *Remote) Fetch(ctx context.Context, name string) ([]byte, error) {
	url := fmt.Sprintf(r.URL, name)
	for attempt := 1; ; attempt++ {
		data, retry, err := r.fetchOnce(ctx, url)
		if err == nil {
			tracer().Debugf("fetched %s (%d bytes)", url, len(data))
			return data, nil
		}
		if !retry || attempt >= r.Retries {
			return nil, err
		}
		tracer().Infof("fetching font %s failed (attempt %d of %d): %v", name, attempt, r.Retries, err)
		select {
		case <-ctx.Done():
			return nil, core.WrapError(ctx.Err(), core.ECONNECTION, "fetching font %s cancelled", name)
		case <-time.After(time.Duration(attempt) * r.Backoff):
		}
	}
}

func (r *Remote) fetchOnce(ctx context.Context, url string) (data []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, core.WrapError(err, core.EINVALID, "invalid font URL %s", url)
	}
	for k, v := range r.Header {
		req.Header[k] = v
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		retry = !errors.Is(err, context.Canceled)
		return nil, retry, core.WrapError(err, core.ECONNECTION, "could not get %s", url)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, core.Error(core.EMISSING, "font not found: %s", url)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return nil, true, core.Error(core.ECONNECTION, "%s: %s", url, resp.Status)
	default:
		return nil, false, core.Error(core.ECONNECTION, "%s: %s", url, resp.Status)
	}
	limit := r.MaxSize
	if limit <= 0 {
		limit = DefaultMaxFontSize
	}
	data, err = io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, true, core.WrapError(err, core.ECONNECTION, "could not read %s", url)
	}
	if int64(len(data)) > limit {
		return nil, false, core.Error(core.ECORRUPT, "font %s is too large (more than %d bytes)", url, limit)
	}
	return data, false, nil
}
