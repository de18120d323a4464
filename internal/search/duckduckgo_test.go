package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge/internal/types"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/duckduckgo.html")
	require.NoError(t, err)
	return string(data)
}

func TestParseDuckDuckGoResults(t *testing.T) {
	hits, err := parseDuckDuckGoResults(loadFixture(t), 10)
	require.NoError(t, err)
	require.Len(t, hits, 3, "hits without a link and ads are skipped")

	assert.Equal(t, types.SearchHit{
		Title:   "Trade Coffee Subscription",
		Snippet: "Personalized coffee subscription from 50+ roasters.",
		Link:    "https://www.trade-coffee.com/",
	}, hits[0])
	assert.Equal(t, "https://www.atlascoffeeclub.com/", hits[1].Link)
	assert.Equal(t, "Bean Box", hits[2].Title)
	assert.Empty(t, hits[2].Snippet)
}

func TestParseDuckDuckGoResults_MaxResults(t *testing.T) {
	hits, err := parseDuckDuckGoResults(loadFixture(t), 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestUnwrapRedirect(t *testing.T) {
	assert.Equal(t, "https://a.example/x?y=1", unwrapRedirect("//duckduckgo.com/l/?uddg=https%3A%2F%2Fa.example%2Fx%3Fy%3D1&rut=z"))
	assert.Equal(t, "https://b.example", unwrapRedirect("https://duckduckgo.com/l/?uddg=https%3A%2F%2Fb.example"))
	assert.Equal(t, "https://c.example", unwrapRedirect("https://c.example"))
}

func TestDuckDuckGo_Query(t *testing.T) {
	fixture := loadFixture(t)
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	d := NewDuckDuckGo(srv.URL, "ideaforge-test", srv.Client())
	hits, err := d.Query(context.Background(), "coffee subscription", 5)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
	assert.Equal(t, "coffee subscription", gotQuery)
	assert.Equal(t, "ideaforge-test", gotUA)
}

func TestDuckDuckGo_QueryHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewDuckDuckGo(srv.URL, "", srv.Client()).Query(context.Background(), "x", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
