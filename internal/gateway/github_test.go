package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/itsmeyessir/itsmeyessir/internal/domain"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler, opts Options) *GitHubGateway {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	// NewEnterpriseClient points the GraphQL client at the mock server's URL.
	graphqlClient := githubv4.NewEnterpriseClient(server.URL, server.Client())
	return newGateway(restClient, graphqlClient, opts, zaptest.NewLogger(t))
}

// graphqlHandler answers every request with the next body in responses.
func graphqlHandler(t *testing.T, bodies *[]string, responses ...string) http.HandlerFunc {
	var calls int32
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if bodies != nil {
			*bodies = append(*bodies, string(body))
		}
		i := int(atomic.AddInt32(&calls, 1)) - 1
		require.Less(t, i, len(responses), "unexpected request %d", i)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, responses[i])
	}
}

func TestNewGitHubGateway_MissingToken(t *testing.T) {
	_, err := NewGitHubGateway("", Options{}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestGitHubGateway_FetchAccount(t *testing.T) {
	testCases := []struct {
		name        string
		handlerFunc func(w http.ResponseWriter, r *http.Request)
		expected    *domain.Account
		expectError bool
	}{
		{
			name: "happy path - resolves node id and creation date",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/users/any-user", r.URL.Path)
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `{"login":"any-user","node_id":"U_1","created_at":"2021-03-05T12:00:00Z"}`)
			},
			expected: &domain.Account{
				Login:     "any-user",
				NodeID:    "U_1",
				CreatedAt: time.Date(2021, time.March, 5, 12, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "error case - GitHub API returns an error",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message": "Not Found"}`)
			},
			expectError: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc), Options{})
			account, err := gateway.FetchAccount(context.Background(), "any-user")
			if tc.expectError {
				assert.ErrorIs(t, err, domain.ErrRemote)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected.Login, account.Login)
			assert.Equal(t, tc.expected.NodeID, account.NodeID)
			assert.True(t, tc.expected.CreatedAt.Equal(account.CreatedAt))
		})
	}
}

func TestGitHubGateway_QueryUserStats(t *testing.T) {
	window := domain.Window{
		From: time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	testCases := []struct {
		name           string
		responseBody   string
		expected       *domain.WindowStats
		expectedErrMsg string
	}{
		{
			name: "happy path",
			responseBody: `{"data":{"user":{
				"repositories":{"totalCount":12},
				"followers":{"totalCount":3},
				"starredRepositories":{"totalCount":40},
				"contributionsCollection":{
					"totalCommitContributions":100,
					"totalPullRequestContributions":7,
					"totalIssueContributions":2,
					"totalPullRequestReviewContributions":5,
					"commitContributionsByRepository":[{"repository":{"nameWithOwner":"me/a"}},{"repository":{"nameWithOwner":"me/b"}}]
				}}}}`,
			expected: &domain.WindowStats{
				Window:           window,
				RepoCount:        12,
				FollowerCount:    3,
				StarCount:        40,
				Commits:          100,
				PullRequests:     7,
				Issues:           2,
				Reviews:          5,
				ContributedRepos: []string{"me/a", "me/b"},
			},
		},
		{
			name:           "missing user payload",
			responseBody:   `{"data":{"user":null}}`,
			expectedErrMsg: "no user payload",
		},
		{
			name:           "GraphQL errors",
			responseBody:   `{"errors":[{"message":"Something went wrong"}]}`,
			expectedErrMsg: "failed to execute GraphQL query",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var bodies []string
			gateway := setupTestGateway(t, graphqlHandler(t, &bodies, tc.responseBody), Options{})

			stats, err := gateway.QueryUserStats(context.Background(), "any-user", window)

			require.Len(t, bodies, 1)
			assert.Contains(t, bodies[0], "contributionsCollection(from: $from, to: $to)")
			assert.Contains(t, bodies[0], `"login":"any-user"`)
			assert.Contains(t, bodies[0], fmt.Sprintf("maxRepositories: %d", domain.MaxContributedRepos))
			if tc.expectedErrMsg != "" {
				assert.ErrorIs(t, err, domain.ErrRemote)
				assert.ErrorContains(t, err, tc.expectedErrMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, stats)
		})
	}
}

func TestGitHubGateway_ListRepositories(t *testing.T) {
	var bodies []string
	gateway := setupTestGateway(t, graphqlHandler(t, &bodies,
		`{"data":{"user":{"repositories":{"pageInfo":{"hasNextPage":true,"endCursor":"c1"},"nodes":[{"name":"a","owner":{"login":"me"}}]}}}}`,
		`{"data":{"user":{"repositories":{"pageInfo":{"hasNextPage":false,"endCursor":"c2"},"nodes":[{"name":"b","owner":{"login":"me"}}]}}}}`,
	), Options{})

	repos, err := gateway.ListRepositories(context.Background(), "me")

	require.NoError(t, err)
	assert.Equal(t, []domain.Repository{{Owner: "me", Name: "a"}, {Owner: "me", Name: "b"}}, repos)
	require.Len(t, bodies, 2)
	assert.Contains(t, bodies[0], `"cursor":null`)
	assert.Contains(t, bodies[1], `"cursor":"c1"`)
}

func TestGitHubGateway_QueryRepositoryCommitHistory(t *testing.T) {
	testCases := []struct {
		name           string
		cursor         string
		responseBody   string
		expected       *domain.CommitPage
		expectedErrMsg string
	}{
		{
			name:   "page with attributed and anonymous commits",
			cursor: "abc",
			responseBody: `{"data":{"repository":{"defaultBranchRef":{"target":{"history":{
				"pageInfo":{"hasNextPage":true,"endCursor":"next"},
				"nodes":[
					{"additions":10,"deletions":2,"author":{"user":{"id":"U_1","login":"me"}}},
					{"additions":4,"deletions":1,"author":{"user":null}}
				]}}}}}}`,
			expected: &domain.CommitPage{
				Commits: []domain.Commit{
					{Additions: 10, Deletions: 2, AuthorID: "U_1", AuthorLogin: "me"},
					{Additions: 4, Deletions: 1},
				},
				HasNextPage: true,
				EndCursor:   "next",
			},
		},
		{
			name:         "empty repository has no default branch",
			responseBody: `{"data":{"repository":{"defaultBranchRef":null}}}`,
			expected:     &domain.CommitPage{},
		},
		{
			name:           "repository not found",
			responseBody:   `{"data":{"repository":null}}`,
			expectedErrMsg: "not found",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var bodies []string
			gateway := setupTestGateway(t, graphqlHandler(t, &bodies, tc.responseBody), Options{})

			page, err := gateway.QueryRepositoryCommitHistory(context.Background(), "me", "repo", tc.cursor)

			require.Len(t, bodies, 1)
			assert.Contains(t, bodies[0], `"pageSize":100`)
			if tc.cursor != "" {
				assert.Contains(t, bodies[0], `"cursor":"`+tc.cursor+`"`)
			}
			if tc.expectedErrMsg != "" {
				assert.ErrorIs(t, err, domain.ErrRemote)
				assert.ErrorContains(t, err, tc.expectedErrMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, page)
		})
	}
}

func TestGitHubGateway_RequestTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	gateway := setupTestGateway(t, handler, Options{Timeout: 20 * time.Millisecond})

	_, err := gateway.QueryRepositoryCommitHistory(context.Background(), "me", "repo", "")

	assert.ErrorIs(t, err, domain.ErrRemote)
	assert.True(t, errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "deadline"))
}
