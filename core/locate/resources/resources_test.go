package resources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jjfont/jjfont/core"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

type fontSite struct {
	sync.Mutex
	hits   int32
	status func(hit int32) int
	body   []byte
	header http.Header
}

func (s *fontSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	hit := atomic.AddInt32(&s.hits, 1)
	s.Lock()
	s.header = r.Header.Clone()
	code := s.status(hit)
	s.Unlock()
	w.WriteHeader(code)
	if code == http.StatusOK {
		w.Write(s.body)
	}
}

func newRemote(url string) *Remote {
	return NewRemote(url+"/tmp/fonts/%s.woff2", 5, time.Millisecond, time.Second)
}

func TestBootstrap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.resources")
	defer teardown()
	//
	root := t.TempDir()
	dirs, err := Bootstrap(root)
	require.NoError(t, err)
	for _, dir := range []string{dirs.Fonts, dirs.Tables, dirs.Dist, dirs.Assets} {
		fi, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	}
	_, err = Bootstrap(root) // idempotent
	assert.NoError(t, err)
}

func TestLoadFetchesAndCaches(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.resources")
	defer teardown()
	//
	site := &fontSite{body: goregular.TTF, status: func(int32) int { return http.StatusOK }}
	srv := httptest.NewServer(site)
	defer srv.Close()
	loader := NewFontLoader(t.TempDir(), newRemote(srv.URL))
	f, err := loader.Load(context.Background(), "jjwxcfont_00abc")
	require.NoError(t, err)
	assert.Equal(t, "jjwxcfont_00abc", f.Fontname)
	assert.FileExists(t, loader.Path("jjwxcfont_00abc"))
	site.Lock()
	assert.Equal(t, "http://my.jjwxc.net/", site.header.Get("Referer"))
	assert.Contains(t, site.header.Get("Accept"), "application/font-woff2")
	site.Unlock()
	//
	_, err = loader.Load(context.Background(), "jjwxcfont_00abc")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&site.hits), "second load must be served from cache")
	names, err := loader.Cached()
	require.NoError(t, err)
	assert.Equal(t, []string{"jjwxcfont_00abc"}, names)
}

func TestLoadNotFound(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.resources")
	defer teardown()
	//
	site := &fontSite{status: func(int32) int { return http.StatusNotFound }}
	srv := httptest.NewServer(site)
	defer srv.Close()
	loader := NewFontLoader(t.TempDir(), newRemote(srv.URL))
	_, err := loader.Load(context.Background(), "jjwxcfont_zzzzz")
	require.Error(t, err)
	assert.Equal(t, core.EMISSING, core.Code(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&site.hits), "not-found must not be retried")
	assert.NoFileExists(t, loader.Path("jjwxcfont_zzzzz"))
}

func TestFetchRejectsOversizedFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.resources")
	defer teardown()
	//
	site := &fontSite{body: goregular.TTF, status: func(int32) int { return http.StatusOK }}
	srv := httptest.NewServer(site)
	defer srv.Close()
	remote := newRemote(srv.URL)
	remote.MaxSize = int64(len(goregular.TTF))
	data, err := remote.Fetch(context.Background(), "jjwxcfont_00abc")
	require.NoError(t, err, "a font of exactly MaxSize bytes is accepted")
	assert.Len(t, data, len(goregular.TTF))
	//
	remote.MaxSize--
	loader := NewFontLoader(t.TempDir(), remote)
	_, err = loader.Load(context.Background(), "jjwxcfont_00abc")
	require.Error(t, err)
	assert.Equal(t, core.ECORRUPT, core.Code(err))
	assert.Contains(t, err.Error(), "too large")
	assert.Equal(t, int32(2), atomic.LoadInt32(&site.hits), "oversized fonts must not be retried")
	assert.NoFileExists(t, loader.Path("jjwxcfont_00abc"))
}

func TestLoadRetriesTransientFailures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.resources")
	defer teardown()
	//
	site := &fontSite{body: goregular.TTF, status: func(hit int32) int {
		if hit < 3 {
			return http.StatusBadGateway
		}
		return http.StatusOK
	}}
	srv := httptest.NewServer(site)
	defer srv.Close()
	loader := NewFontLoader(t.TempDir(), newRemote(srv.URL))
	_, err := loader.Load(context.Background(), "jjwxcfont_00abc")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&site.hits))
	//
	site.Lock()
	site.status = func(int32) int { return http.StatusServiceUnavailable }
	site.Unlock()
	atomic.StoreInt32(&site.hits, 0)
	_, err = loader.Load(context.Background(), "jjwxcfont_00def")
	require.Error(t, err)
	assert.Equal(t, core.ECONNECTION, core.Code(err))
	assert.Equal(t, int32(5), atomic.LoadInt32(&site.hits))
}

func TestLoadCorruptFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.resources")
	defer teardown()
	//
	site := &fontSite{body: []byte("<html>no font here</html>"), status: func(int32) int { return http.StatusOK }}
	srv := httptest.NewServer(site)
	defer srv.Close()
	loader := NewFontLoader(t.TempDir(), newRemote(srv.URL))
	_, err := loader.Load(context.Background(), "jjwxcfont_00abc")
	require.Error(t, err)
	assert.Equal(t, core.ECORRUPT, core.Code(err))
	assert.NoFileExists(t, loader.Path("jjwxcfont_00abc"), "corrupt font must not stay cached")
}

func TestLoadInvalidName(t *testing.T) {
	loader := NewFontLoader(t.TempDir(), nil)
	_, err := loader.Load(context.Background(), "../etc/passwd")
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = loader.Load(context.Background(), "jjwxcfont_00abc")
	assert.Equal(t, core.EMISSING, core.Code(err))
}

func TestResolveReferenceFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.resources")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "Reference.ttf")
	require.NoError(t, os.WriteFile(path, goregular.TTF, 0644))
	f, err := ResolveReferenceFont(path).Font()
	require.NoError(t, err)
	assert.Equal(t, path, f.Filepath)
	//
	_, err = ResolveReferenceFont("/no/such/dir/NoSuchFont-4711.ttf").Font()
	assert.Equal(t, core.EMISSING, core.Code(err))
	//
	loader := NewFontLoader(t.TempDir(), nil)
	p := loader.ResolveFont(context.Background(), "jjwxcfont_00abc")
	_, err = p.Font()
	assert.Equal(t, core.EMISSING, core.Code(err))
}
