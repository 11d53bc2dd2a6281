package github_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/frankie/internal/adapter/github"
	"github.com/leynos/frankie/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) (*github.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	token, err := github.NewPersonalAccessToken("test-token")
	require.NoError(t, err)

	client := github.NewClient(token, server.URL)
	return client, server
}

func testLocator(t *testing.T) github.PullRequestLocator {
	t.Helper()
	locator, err := github.ParsePullRequestURL("https://github.com/octo/repo/pull/12")
	require.NoError(t, err)
	return locator
}

func TestClient_PullRequest_Success(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/repos/octo/repo/pulls/12", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"number":12,"title":"Add parser","state":"open","html_url":"https://github.com/octo/repo/pull/12","user":{"login":"alice"}}`)
	}))

	metadata, err := client.PullRequest(context.Background(), testLocator(t))
	require.NoError(t, err)

	assert.Equal(t, 12, metadata.Number)
	assert.Equal(t, "Add parser", *metadata.Title)
	assert.Equal(t, "alice", *metadata.Author)
}

func TestClient_ListReviewComments_FollowsNextLinks(t *testing.T) {
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/repo/pulls/12/comments", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"id":3,"body":"third","user":{"login":"bob"}}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/repo/pulls/12/comments?page=2>; rel="next"`, server.URL))
		fmt.Fprint(w, `[{"id":1,"body":"first","path":"main.go","line":3,"user":{"login":"alice"}},{"id":2,"body":"second","in_reply_to_id":1}]`)
	})

	client, srv := newTestClient(t, mux)
	server = srv

	comments, err := client.ListReviewComments(context.Background(), testLocator(t))
	require.NoError(t, err)

	require.Len(t, comments, 3)
	assert.Equal(t, int64(1), comments[0].ID)
	assert.Equal(t, "main.go", *comments[0].FilePath)
	assert.Equal(t, int64(1), *comments[1].InReplyToID)
	assert.Equal(t, "bob", *comments[2].Author)
}

func TestClient_PullRequestComments_SinglePage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/repo/issues/12/comments", r.URL.Path)
		fmt.Fprint(w, `[{"id":7,"body":"looks good","user":{"login":"carol"}}]`)
	}))

	comments, err := client.PullRequestComments(context.Background(), testLocator(t))
	require.NoError(t, err)

	require.Len(t, comments, 1)
	assert.Equal(t, "looks good", *comments[0].Body)
}

func TestClient_ListPullRequests_PageInfoFromLinkHeader(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/repo/pulls", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))

		w.Header().Set("Link",
			`<https://api.github.com/repos/octo/repo/pulls?page=3&per_page=50>; rel="next", `+
				`<https://api.github.com/repos/octo/repo/pulls?page=1&per_page=50>; rel="prev", `+
				`<https://api.github.com/repos/octo/repo/pulls?page=3&per_page=50>; rel="last"`)
		fmt.Fprint(w, `[{"number":31,"title":"One","state":"open","user":{"login":"alice"}}]`)
	}))

	locator := testLocator(t).Repository()
	page, err := client.ListPullRequests(context.Background(), locator,
		github.ListPullRequestsParams{State: "all", Page: 2, PerPage: 50})
	require.NoError(t, err)

	assert.Equal(t, 2, page.PageInfo.CurrentPage)
	assert.Equal(t, 50, page.PageInfo.PerPage)
	require.NotNil(t, page.PageInfo.TotalPages)
	assert.Equal(t, 3, *page.PageInfo.TotalPages)
	assert.True(t, page.PageInfo.HasNext)
	assert.True(t, page.PageInfo.HasPrev)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 31, page.Items[0].Number)
}

func TestClient_ListPullRequests_InvalidParamsNeverDispatch(t *testing.T) {
	requested := false
	client, _ := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		requested = true
	}))

	_, err := client.ListPullRequests(context.Background(), testLocator(t).Repository(),
		github.ListPullRequestsParams{State: "open", Page: 1, PerPage: 500})

	assert.True(t, domain.IsKind(err, domain.ErrInvalidPagination))
	assert.False(t, requested)
}

func TestClient_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		wantKind domain.ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Bad credentials"}`, domain.ErrAuthentication},
		{"forbidden", http.StatusForbidden, `{"message":"Must have admin rights"}`, domain.ErrAuthentication},
		{"primary rate limit", http.StatusForbidden,
			`{"message":"API rate limit exceeded for user","documentation_url":"https://docs.github.com/rest/rate-limit"}`,
			domain.ErrRateLimitExceeded},
		{"secondary rate limit", http.StatusTooManyRequests,
			`{"message":"You have exceeded a secondary rate limit"}`,
			domain.ErrRateLimitExceeded},
		{"not found", http.StatusNotFound, `{"message":"Not Found"}`, domain.ErrAPI},
		{"server error", http.StatusBadGateway, ``, domain.ErrAPI},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/rate_limit" {
					fmt.Fprint(w, `{"rate":{"limit":5000,"remaining":0,"reset":1700000000}}`)
					return
				}
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))

			_, err := client.PullRequest(context.Background(), testLocator(t))
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, tc.wantKind), "got %v", err)
		})
	}
}

func TestClient_RateLimitRefusalEnrichedFromRateLimitEndpoint(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rate_limit" {
			fmt.Fprint(w, `{"rate":{"limit":5000,"remaining":0,"reset":1700000000}}`)
			return
		}
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
	}))

	_, err := client.PullRequest(context.Background(), testLocator(t))
	require.Error(t, err)

	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	require.NotNil(t, domainErr.RateLimit)
	assert.Equal(t, 5000, domainErr.RateLimit.Limit)
	assert.True(t, domainErr.RateLimit.IsExhausted())
	assert.Equal(t, int64(1700000000), domainErr.RateLimit.ResetAt)
}

func TestClient_RateLimitFromResponseHeaders(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "1700000001")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"message":"rate limit exceeded"}`)
	}))

	_, err := client.PullRequest(context.Background(), testLocator(t))

	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	require.NotNil(t, domainErr.RateLimit)
	assert.Equal(t, 60, domainErr.RateLimit.Limit)
}

func TestClient_NetworkFailure(t *testing.T) {
	token, err := github.NewPersonalAccessToken("test-token")
	require.NoError(t, err)

	// A closed server yields a transport-level failure.
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := github.NewClient(token, server.URL)
	_, err = client.PullRequest(context.Background(), testLocator(t))

	assert.True(t, domain.IsKind(err, domain.ErrNetwork), "got %v", err)
}

func TestClient_MalformedBodyIsAPIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"number": "not a number"`)
	}))

	_, err := client.PullRequest(context.Background(), testLocator(t))
	assert.True(t, domain.IsKind(err, domain.ErrAPI), "got %v", err)
}

func TestClient_PullRequestSummariesDecode(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		summaries := []map[string]any{
			{"number": 1, "title": "first", "state": "open", "user": map[string]string{"login": "alice"}},
			{"number": 2, "state": "closed"},
		}
		json.NewEncoder(w).Encode(summaries)
	}))

	page, err := client.ListPullRequests(context.Background(), testLocator(t).Repository(),
		github.DefaultListPullRequestsParams())
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	assert.Nil(t, page.Items[1].Author)
	require.NotNil(t, page.PageInfo.TotalPages)
	assert.Equal(t, 1, *page.PageInfo.TotalPages)
	assert.False(t, page.PageInfo.HasNext)
}
