package builtin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<html><head><title>Doc</title><script>var tracking = 1;</script></head>
<body>
<nav><a href="/home">Home</a></nav>
<article>
<h1>Release notes</h1>
<p>The new version is out. Read the <a href="/docs">docs</a>.</p>
</article>
<footer>Copyright</footer>
</body></html>`

func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(testPage))
	})
	mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("  just text \n"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestScrapeExtractsMainContent(t *testing.T) {
	server := newPageServer(t)

	text, err := NewWebScraper(WithHTTPClient(server.Client())).Scrape(context.Background(), server.URL+"/page")
	require.NoError(t, err)

	assert.Contains(t, text, "Release notes")
	assert.Contains(t, text, "The new version is out.")
	assert.Contains(t, text, "[docs](")
	assert.Contains(t, text, "/docs)")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "Home")
	assert.NotContains(t, text, "Copyright")
}

func TestScrapePlainText(t *testing.T) {
	server := newPageServer(t)

	text, err := NewWebScraper(WithHTTPClient(server.Client())).Scrape(context.Background(), server.URL+"/plain")
	require.NoError(t, err)
	assert.Equal(t, "just text", text)
}

func TestScrapeErrors(t *testing.T) {
	server := newPageServer(t)
	scraper := NewWebScraper(WithHTTPClient(server.Client()))

	_, err := scraper.Scrape(context.Background(), server.URL+"/missing")
	assert.ErrorContains(t, err, "status 404")

	for _, raw := range []string{"", "ftp://example.com", "not a url", "/relative"} {
		_, err := scraper.Scrape(context.Background(), raw)
		assert.ErrorContains(t, err, "invalid url", raw)
	}
}

func TestWebScraperTool(t *testing.T) {
	server := newPageServer(t)
	tool := NewWebScraper(WithHTTPClient(server.Client())).Tool()

	assert.Equal(t, "tool_web_scraper", tool.Descriptor().Name())
	assert.Equal(t, []string{"url"}, tool.Descriptor().ParameterNames())

	out, err := tool.Invoke(context.Background(), map[string]any{"url": server.URL + "/plain"})
	require.NoError(t, err)
	assert.Equal(t, "just text", out)
}
