package directory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/request"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/testhelpers"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/vfs/mock"
	"gitlab.com/gitlab-org/gitlab-dirindex/metrics"
)

var testModTime = time.Date(1994, time.November, 15, 8, 12, 31, 0, time.UTC)

const testModTimeLabel = "Tue, 15 Nov 1994 08:12:31 GMT"

func testResponder(t *testing.T, tree map[string]string, opts ...Option) (*Responder, string) {
	t.Helper()

	root, dir := testhelpers.TmpDir(t)
	testhelpers.Tree(t, dir, tree)

	for name, value := range tree {
		if strings.HasPrefix(value, "->") {
			continue
		}

		require.NoError(t, os.Chtimes(filepath.Join(dir, name), testModTime, testModTime))
	}

	return New(root, opts...), dir
}

func get(t *testing.T, h http.Handler, method, url string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, url, nil))

	return w
}

func TestServeHTTPRejectsTraversal(t *testing.T) {
	mockCtrl := gomock.NewController(t)

	// no expectations: any filesystem access fails the test
	d := New(mock.NewMockRoot(mockCtrl), WithDelegate(http.NotFoundHandler()))

	tests := map[string]string{
		"parent of root":       "/..",
		"in the middle":        "/sub/../file.txt",
		"at the end":           "/sub/..",
		"escaped dots":         "/%2e%2e/etc/passwd",
		"escaped separator":    "/..%2fetc",
		"part of a file name":  "/file..txt",
		"mixed escaped dots":   "/sub/.%2e/file.txt",
		"several times around": "/../../../../etc/passwd",
	}

	for name, url := range tests {
		t.Run(name, func(t *testing.T) {
			before := testutil.ToFloat64(metrics.Responses.WithLabelValues(outcomeForbidden))

			w := get(t, d, http.MethodGet, url)

			require.Equal(t, http.StatusForbidden, w.Code)
			require.Equal(t, "text/plain", w.Header().Get("Content-Type"))
			require.Equal(t, "10", w.Header().Get("Content-Length"))
			require.Equal(t, "Forbidden\n", w.Body.String())
			require.Equal(t, before+1, testutil.ToFloat64(metrics.Responses.WithLabelValues(outcomeForbidden)))
		})
	}
}

func TestServeHTTPDelegatesRegularFiles(t *testing.T) {
	delegate := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Delegate", "yes")
		w.WriteHeader(http.StatusTeapot)
		fmt.Fprintf(w, "delegated %s", r.URL.EscapedPath())
	})

	d, _ := testResponder(t, map[string]string{
		"file.txt":       "content",
		"with space.txt": "content",
		"sub/":           "",
		"sub/link.txt":   "->../file.txt",
	}, WithDelegate(delegate))

	for _, url := range []string{"/file.txt", "/with%20space.txt", "/sub/link.txt"} {
		t.Run(url, func(t *testing.T) {
			got := get(t, d, http.MethodGet, url)
			expected := get(t, delegate, http.MethodGet, url)

			require.Equal(t, expected.Code, got.Code)
			require.Equal(t, expected.Header(), got.Header())
			require.Equal(t, expected.Body.String(), got.Body.String())
		})
	}
}

func TestServeHTTPDefaultDelegateServesFiles(t *testing.T) {
	d, _ := testResponder(t, map[string]string{
		"file.txt": "content",
	})

	w := get(t, d, http.MethodGet, "/file.txt")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	require.Equal(t, "max-age=600", w.Header().Get("Cache-Control"))
	require.Equal(t, "content", w.Body.String())
}

func TestServeHTTPNotFound(t *testing.T) {
	d, _ := testResponder(t, map[string]string{
		"file.txt": "content",
		"dangling": "->missing",
	})

	tests := map[string]string{
		"a missing file":          "/missing.txt",
		"an escaped missing file": "/missing%20file.txt",
		"a file below a file":     "/file.txt/below",
		"a dangling symlink":      "/dangling",
	}

	for name, url := range tests {
		t.Run(name, func(t *testing.T) {
			w := get(t, d, http.MethodGet, url)
			body := "Entity not found: " + url + "\n"

			require.Equal(t, http.StatusNotFound, w.Code)
			require.Equal(t, "text/plain", w.Header().Get("Content-Type"))
			require.Equal(t, fmt.Sprint(len(body)), w.Header().Get("Content-Length"))
			require.Equal(t, body, w.Body.String())
		})
	}
}

func TestServeHTTPUnreadableIsNotFound(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root can read files without read permission")
	}

	var delegateCalled bool
	delegate := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delegateCalled = true
		w.WriteHeader(http.StatusTeapot)
	})

	d, dir := testResponder(t, map[string]string{
		"secret.txt":   "do not serve",
		"locked/":      "",
		"locked/a.txt": "hello",
		"secret-link":  "->secret.txt",
		"readable.txt": "fine",
	}, WithDelegate(delegate))

	require.NoError(t, os.Chmod(filepath.Join(dir, "secret.txt"), 0000))
	require.NoError(t, os.Chmod(filepath.Join(dir, "locked"), 0000))
	t.Cleanup(func() {
		os.Chmod(filepath.Join(dir, "locked"), 0755)
	})

	for _, url := range []string{"/secret.txt", "/secret-link", "/locked/"} {
		t.Run(url, func(t *testing.T) {
			delegateCalled = false

			w := get(t, d, http.MethodGet, url)

			require.Equal(t, http.StatusNotFound, w.Code)
			require.Equal(t, "Entity not found: "+url+"\n", w.Body.String())
			require.False(t, delegateCalled)
		})
	}

	w := get(t, d, http.MethodGet, "/readable.txt")
	require.Equal(t, http.StatusTeapot, w.Code)
	require.True(t, delegateCalled)
}

func TestServeHTTPChecksReadabilityBeforeDelegating(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	root := mock.NewMockRoot(mockCtrl)

	regular := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(regular, []byte("content"), 0644))
	fi, err := os.Stat(regular)
	require.NoError(t, err)

	root.EXPECT().Stat(gomock.Any(), "/file.txt").Return(fi, nil)
	root.EXPECT().Readable(gomock.Any(), "/file.txt").Return(fs.ErrPermission)

	delegate := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("delegate must not be called for an unreadable file")
	})

	before := testutil.ToFloat64(metrics.Responses.WithLabelValues(outcomeNotFound))

	w := get(t, New(root, WithDelegate(delegate)), http.MethodGet, "/file.txt")

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Entity not found: /file.txt\n", w.Body.String())
	require.Equal(t, before+1, testutil.ToFloat64(metrics.Responses.WithLabelValues(outcomeNotFound)))
}

func TestServeHTTPFollowsDirectoryLinksOutOfRoot(t *testing.T) {
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "shared.txt"), []byte("shared"), 0644))

	d, _ := testResponder(t, map[string]string{
		"out": "->" + outside,
	})

	w := get(t, d, http.MethodGet, "/out/")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "<a href='/out/shared.txt'>shared.txt</a>")

	w = get(t, d, http.MethodGet, "/out/shared.txt")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "shared", w.Body.String())
}

func TestListSortsChildren(t *testing.T) {
	d, _ := testResponder(t, map[string]string{
		"sub/":  "",
		"b.css": "body{}",
		"a.txt": "hello",
		"B.txt": "upper case sorts first",
	})

	listing, err := d.List(context.Background(), Request{PathInfo: "/"})
	require.NoError(t, err)

	require.Equal(t, "/", listing.Title())
	require.Equal(t, []Entry{
		{Href: "../", Name: "Parent Directory"},
		{Href: "/B.txt", Name: "B.txt", Size: "22B", Type: "text/plain; charset=utf-8", ModTime: testModTimeLabel},
		{Href: "/a.txt", Name: "a.txt", Size: "5B", Type: "text/plain; charset=utf-8", ModTime: testModTimeLabel},
		{Href: "/b.css", Name: "b.css", Size: "6B", Type: "text/css; charset=utf-8", ModTime: testModTimeLabel},
		{Href: "/sub", Name: "sub", Size: "-", Type: "directory", ModTime: testModTimeLabel},
	}, listing.Entries())
}

func TestListHidesDotfiles(t *testing.T) {
	d, _ := testResponder(t, map[string]string{
		".env":          "SECRET=1",
		".git/":         "",
		".git/HEAD":     "ref: refs/heads/main",
		"a.txt":         "hello",
		"sub/":          "",
		"sub/.htaccess": "deny from all",
	})

	listing, err := d.List(context.Background(), Request{PathInfo: "/"})
	require.NoError(t, err)

	var names []string
	for _, entry := range listing.Entries() {
		names = append(names, entry.Name)
	}
	require.Equal(t, []string{"Parent Directory", "a.txt", "sub"}, names)

	listing, err = d.List(context.Background(), Request{PathInfo: "/sub/"})
	require.NoError(t, err)
	require.Equal(t, []Entry{parentEntry}, listing.Entries())

	// hidden entries are left out of the index only, requesting them directly still works
	w := get(t, d, http.MethodGet, "/.git/")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), ">HEAD</a>")
}

func TestListSkipsUnresolvableChildren(t *testing.T) {
	d, _ := testResponder(t, map[string]string{
		"file.txt": "content",
		"dangling": "->missing",
		"escape":   "->../../etc/passwd",
		"loop_a":   "->loop_b",
		"loop_b":   "->loop_a",
		"link.txt": "->file.txt",
	})

	listing, err := d.List(context.Background(), Request{PathInfo: "/"})
	require.NoError(t, err)

	var names []string
	for _, entry := range listing.Entries() {
		names = append(names, entry.Name)
	}

	require.Equal(t, []string{"Parent Directory", "file.txt", "link.txt"}, names)
}

func TestListFollowsLongSymlinkChains(t *testing.T) {
	tree := map[string]string{"file.txt": "content"}
	for i := 1; i <= 11; i++ {
		target := fmt.Sprintf("link%d", i+1)
		if i == 11 {
			target = "file.txt"
		}

		tree[fmt.Sprintf("link%d", i)] = "->" + target
	}

	d, _ := testResponder(t, tree)

	listing, err := d.List(context.Background(), Request{PathInfo: "/"})
	require.NoError(t, err)

	entries := map[string]Entry{}
	for _, entry := range listing.Entries() {
		entries[entry.Name] = entry
	}

	require.Len(t, entries, 13)

	// link1 runs out of hops on link11 and is stat'ed from there, so no
	// extension is left to derive a type from
	require.Equal(t, "7B", entries["link1"].Size)
	require.Equal(t, "application/octet-stream", entries["link1"].Type)

	require.Equal(t, "7B", entries["link2"].Size)
	require.Equal(t, "text/plain; charset=utf-8", entries["link2"].Type)
}

func TestListUsesMIMELookup(t *testing.T) {
	var exts []string
	lookup := func(ext string) string {
		exts = append(exts, ext)
		return "custom/" + strings.TrimPrefix(ext, ".")
	}

	d, _ := testResponder(t, map[string]string{
		"page.html": "<html></html>",
		"noext":     "x",
		"link.md":   "->page.html",
	}, WithMIMELookup(lookup))

	listing, err := d.List(context.Background(), Request{PathInfo: "/"})
	require.NoError(t, err)

	types := map[string]string{}
	for _, entry := range listing.Entries()[1:] {
		types[entry.Name] = entry.Type
	}

	require.Equal(t, map[string]string{
		"link.md":   "custom/html",
		"noext":     "custom/",
		"page.html": "custom/html",
	}, types)
	require.ElementsMatch(t, []string{".html", "", ".html"}, exts)
}

func TestListRejectsTraversal(t *testing.T) {
	d := New(mock.NewMockRoot(gomock.NewController(t)))

	_, err := d.List(context.Background(), Request{PathInfo: "/%2E%2E/"})
	require.ErrorIs(t, err, ErrTraversal)
}

func TestServeHTTPListing(t *testing.T) {
	d, _ := testResponder(t, map[string]string{
		"sub/":      "",
		"sub/a.txt": "hello",
		"sub/dir/":  "",
	})

	w := get(t, d, http.MethodGet, "/sub/")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	body := w.Body.String()
	require.Contains(t, body, "<title>/sub/</title>")
	require.Contains(t, body, "<h1>/sub/</h1>")

	rows := []string{
		"<tr><td class='name'><a href='../'>Parent Directory</a></td><td class='size'></td><td class='type'></td><td class='mtime'></td></tr>\n",
		"<tr><td class='name'><a href='/sub/a.txt'>a.txt</a></td><td class='size'>5B</td><td class='type'>text/plain; charset=utf-8</td><td class='mtime'>" + testModTimeLabel + "</td></tr>\n",
		"<tr><td class='name'><a href='/sub/dir'>dir</a></td><td class='size'>-</td><td class='type'>directory</td><td class='mtime'>" + testModTimeLabel + "</td></tr>\n",
	}

	last := -1
	for _, row := range rows {
		idx := strings.Index(body, row)
		require.Greater(t, idx, last, "row %q out of order", row)
		last = idx
	}

	require.True(t, strings.HasSuffix(body, "</body></html>\n"))
}

func TestServeHTTPListingHead(t *testing.T) {
	d, _ := testResponder(t, map[string]string{"a.txt": "hello"})

	w := get(t, d, http.MethodHead, "/")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	require.Empty(t, w.Body.String())
}

func TestServeHTTPListingUnderMountPrefix(t *testing.T) {
	d, _ := testResponder(t, map[string]string{
		"sub/":            "",
		"sub/a b.txt":     "hello",
		"sub/nested/":     "",
		"sub/nested/c.md": "# c",
	})

	h := request.Mount("/files/", d)

	w := get(t, h, http.MethodGet, "/files/sub/")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "<h1>/sub/</h1>")
	require.Contains(t, w.Body.String(), "<a href='/files/sub/a%20b.txt'>a b.txt</a>")
	require.Contains(t, w.Body.String(), "<a href='/files/sub/nested'>nested</a>")

	w = get(t, h, http.MethodGet, "/files/sub/a%20b.txt")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "hello", w.Body.String())

	w = get(t, h, http.MethodGet, "/files/missing")
	require.Equal(t, "Entity not found: /missing\n", w.Body.String())
}

func TestServeHTTPListingEscapesNames(t *testing.T) {
	d, _ := testResponder(t, map[string]string{
		"<b>&'.txt": "x",
	})

	w := get(t, d, http.MethodGet, "/")
	body := w.Body.String()

	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, body, "<b>")
	require.Contains(t, body, "<a href='/%3Cb%3E&amp;%27.txt'>&lt;b&gt;&amp;&#39;.txt</a>")
}

func TestServeHTTPIsolatesConcurrentRequests(t *testing.T) {
	tree := map[string]string{"one/": "", "two/": ""}
	for i := 0; i < 20; i++ {
		tree[fmt.Sprintf("one/one_%02d.txt", i)] = "1"
		tree[fmt.Sprintf("two/two_%02d.txt", i)] = "2"
	}

	d, _ := testResponder(t, tree)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		dir, other := "one", "two"
		if i%2 == 1 {
			dir, other = other, dir
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			w := httptest.NewRecorder()
			d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+dir+"/", nil))

			body := w.Body.String()
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, body, "<h1>/"+dir+"/</h1>")
			assert.Equal(t, 20, strings.Count(body, ">"+dir+"_"))
			assert.NotContains(t, body, other+"_")
		}()
	}

	wg.Wait()
}

func TestListingEachLineStopsOnError(t *testing.T) {
	d, _ := testResponder(t, map[string]string{"a.txt": "a", "b.txt": "b"})

	listing, err := d.List(context.Background(), Request{PathInfo: "/"})
	require.NoError(t, err)

	var lines []string
	require.NoError(t, listing.EachLine(func(line string) error {
		lines = append(lines, line)
		return nil
	}))

	// header, parent, two files, footer
	require.Len(t, lines, 5)

	errStop := errors.New("stop")
	calls := 0
	err = listing.EachLine(func(string) error {
		calls++
		if calls == 2 {
			return errStop
		}
		return nil
	})
	require.ErrorIs(t, err, errStop)
	require.Equal(t, 2, calls)

	var sb strings.Builder
	n, err := listing.WriteTo(&sb)
	require.NoError(t, err)
	require.Equal(t, int64(len(strings.Join(lines, ""))), n)
	require.Equal(t, strings.Join(lines, ""), sb.String())
}

func TestListingEntriesIsACopy(t *testing.T) {
	d, _ := testResponder(t, map[string]string{"a.txt": "a"})

	listing, err := d.List(context.Background(), Request{PathInfo: "/"})
	require.NoError(t, err)

	entries := listing.Entries()
	entries[1].Name = "changed"

	require.Equal(t, "a.txt", listing.Entries()[1].Name)
}
