// internal/github/client_test.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"starsync/internal/model"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestClient creates a httptest server and a client pointing to it.
// WithEnterpriseURLs appends /api/v3/ to the base URL, so handlers are
// mounted under that prefix and see unprefixed paths.
func setupTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.Handle("/api/v3/", http.StripPrefix("/api/v3", handler))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	// We can pass an empty token because we never talk to the real GitHub.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client, err := NewClient("", server.URL, 5*time.Second, logger)
	require.NoError(t, err)

	return client
}

func TestClient_ListStarredRepos(t *testing.T) {
	t.Run("follows pagination and deduplicates by name", func(t *testing.T) {
		var requestCount int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
			assert.Equal(t, "/user/starred", r.URL.Path)

			switch page := r.URL.Query().Get("page"); page {
			case "", "1":
				w.Header().Set("Link", fmt.Sprintf(`<http://%s/api/v3/user/starred?page=2>; rel="next"`, r.Host))
				fmt.Fprintln(w, `[
					{"starred_at": "2024-05-01T00:00:00Z", "repo": {"name": "alpha", "owner": {"login": "ann"}, "html_url": "https://github.com/ann/alpha"}},
					{"starred_at": "2024-05-02T00:00:00Z", "repo": {"name": "beta", "owner": {"login": "bob"}, "html_url": "https://github.com/bob/beta"}}
				]`)
			case "2":
				fmt.Fprintln(w, `[
					{"starred_at": "2024-05-03T00:00:00Z", "repo": {"name": "alpha", "owner": {"login": "zoe"}, "html_url": "https://github.com/zoe/alpha"}},
					{"starred_at": "2024-05-04T00:00:00Z", "repo": {"owner": {"login": "ghost"}}},
					{"starred_at": "2024-05-05T00:00:00Z", "repo": {"name": "gamma", "owner": {"login": "gil"}, "html_url": "https://github.com/gil/gamma"}}
				]`)
			default:
				t.Errorf("unexpected page %q", page)
			}
		})
		client := setupTestClient(t, handler)

		repos, err := client.ListStarredRepos(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int32(2), atomic.LoadInt32(&requestCount))
		require.Len(t, repos, 3, "duplicate and nameless entries are dropped")
		assert.Equal(t, "alpha", repos[0].Name)
		assert.Equal(t, "ann", repos[0].Owner, "first occurrence wins on duplicate names")
		assert.Equal(t, "https://github.com/ann/alpha", repos[0].URL)
		assert.Equal(t, "beta", repos[1].Name)
		assert.Equal(t, "gamma", repos[2].Name)
	})

	t.Run("fails the whole fetch on a page error", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "2" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/api/v3/user/starred?page=2>; rel="next"`, r.Host))
			fmt.Fprintln(w, `[{"starred_at": "2024-05-01T00:00:00Z", "repo": {"name": "alpha", "owner": {"login": "ann"}}}]`)
		})
		client := setupTestClient(t, handler)

		repos, err := client.ListStarredRepos(context.Background())

		require.Error(t, err)
		assert.Nil(t, repos)
	})
}

func TestClient_LatestRelease(t *testing.T) {
	t.Run("returns the publication date", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/ann/alpha/releases/latest", r.URL.Path)
			fmt.Fprintln(w, `{"id": 1, "tag_name": "v1.2.0", "published_at": "2024-03-01T20:30:00Z"}`)
		})
		client := setupTestClient(t, handler)

		date, err := client.LatestRelease(context.Background(), "ann", "alpha")

		require.NoError(t, err)
		require.NotNil(t, date)
		assert.Equal(t, model.Date{Year: 2024, Month: time.March, Day: 1}, *date)
	})

	t.Run("returns nil for a release without a publication date", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `{"id": 1, "tag_name": "v0.0.1-draft"}`)
		})
		client := setupTestClient(t, handler)

		date, err := client.LatestRelease(context.Background(), "ann", "alpha")

		require.NoError(t, err)
		assert.Nil(t, date)
	})

	t.Run("surfaces lookup errors", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintln(w, `{"message": "Not Found"}`)
		})
		client := setupTestClient(t, handler)

		date, err := client.LatestRelease(context.Background(), "ann", "norelease")

		require.Error(t, err)
		var ghErr *github.ErrorResponse
		assert.ErrorAs(t, err, &ghErr)
		assert.Nil(t, date)
	})
}

func TestClient_LatestCommit(t *testing.T) {
	t.Run("returns the committer date of the newest commit", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/ann/alpha/commits", r.URL.Path)
			assert.Equal(t, "1", r.URL.Query().Get("per_page"))
			fmt.Fprintln(w, `[{
				"sha": "abc123",
				"commit": {
					"author": {"name": "Ann", "date": "2024-04-04T23:00:00Z"},
					"committer": {"name": "Merge Bot", "date": "2024-04-05T07:00:00Z"}
				}
			}]`)
		})
		client := setupTestClient(t, handler)

		date, err := client.LatestCommit(context.Background(), "ann", "alpha")

		require.NoError(t, err)
		require.NotNil(t, date)
		assert.Equal(t, model.Date{Year: 2024, Month: time.April, Day: 5}, *date, "committer date, not author date")
	})

	t.Run("returns nil for an empty history", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `[]`)
		})
		client := setupTestClient(t, handler)

		date, err := client.LatestCommit(context.Background(), "ann", "empty")

		require.NoError(t, err)
		assert.Nil(t, date)
	})

	t.Run("returns nil when the committer date is missing", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `[{"sha": "abc123", "commit": {"message": "initial"}}]`)
		})
		client := setupTestClient(t, handler)

		date, err := client.LatestCommit(context.Background(), "ann", "alpha")

		require.NoError(t, err)
		assert.Nil(t, date)
	})
}
