// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/itsmeyessir/itsmeyessir/internal/domain"
)

// HistoryPageSize is the number of commits requested per history page.
const HistoryPageSize = 100

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchAccount(ctx context.Context, login string) (*domain.Account, error)
	QueryUserStats(ctx context.Context, login string, window domain.Window) (*domain.WindowStats, error)
	ListRepositories(ctx context.Context, login string) ([]domain.Repository, error)
	// QueryRepositoryCommitHistory returns the default branch history page after cursor.
	// An empty cursor requests the first page.
	QueryRepositoryCommitHistory(ctx context.Context, owner, name, cursor string) (*domain.CommitPage, error)
}

// Options tunes request pacing.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	limiter       *rate.Limiter
	timeout       time.Duration
	logger        *zap.Logger
}

// userStatsQuery reads the counters of one contribution window.
type userStatsQuery struct {
	User *struct {
		Repositories struct {
			TotalCount int
		} `graphql:"repositories(ownerAffiliations: [OWNER], privacy: PUBLIC)"`
		Followers struct {
			TotalCount int
		}
		StarredRepositories struct {
			TotalCount int
		}
		ContributionsCollection struct {
			TotalCommitContributions            int
			TotalPullRequestContributions       int
			TotalIssueContributions             int
			TotalPullRequestReviewContributions int
			// Limit matches domain.MaxContributedRepos.
			CommitContributionsByRepository     []struct {
				Repository struct {
					NameWithOwner string
				}
			} `graphql:"commitContributionsByRepository(maxRepositories: 100)"`
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	} `graphql:"user(login: $login)"`
}

// repositoriesQuery pages through the public repositories owned by the user.
type repositoriesQuery struct {
	User *struct {
		Repositories struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				Name  string
				Owner struct {
					Login string
				}
			}
		} `graphql:"repositories(first: 100, after: $cursor, ownerAffiliations: [OWNER], privacy: PUBLIC)"`
	} `graphql:"user(login: $login)"`
}

// commitHistoryQuery reads one page of the default branch history.
type commitHistoryQuery struct {
	Repository *struct {
		DefaultBranchRef *struct {
			Target struct {
				Commit struct {
					History struct {
						PageInfo struct {
							HasNextPage bool
							EndCursor   githubv4.String
						}
						Nodes []struct {
							Additions int
							Deletions int
							Author    struct {
								User *struct {
									ID    string
									Login string
								}
							}
						}
					} `graphql:"history(first: $pageSize, after: $cursor)"`
				} `graphql:"... on Commit"`
			}
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, opts Options, logger *zap.Logger) (Fetcher, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: GITHUB_TOKEN is not set", domain.ErrAuth)
	}
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return newGateway(github.NewClient(httpClient), githubv4.NewClient(httpClient), opts, logger), nil
}

func newGateway(restClient *github.Client, graphqlClient *githubv4.Client, opts Options, logger *zap.Logger) *GitHubGateway {
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		limiter:       rate.NewLimiter(limit, 1),
		timeout:       timeout,
		logger:        logger,
	}
}

// FetchAccount resolves the account's node ID and creation date over REST.
func (g *GitHubGateway) FetchAccount(ctx context.Context, login string) (*domain.Account, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemote, err)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	user, _, err := g.restClient.Users.Get(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get user %s with REST API: %w", domain.ErrRemote, login, err)
	}
	if user.CreatedAt == nil {
		return nil, fmt.Errorf("%w: user %s has no creation date", domain.ErrRemote, login)
	}
	g.logger.Debug("Fetched account", zap.String("login", user.GetLogin()), zap.Time("created_at", user.GetCreatedAt().Time))
	return &domain.Account{
		Login:     user.GetLogin(),
		NodeID:    user.GetNodeID(),
		CreatedAt: user.GetCreatedAt().Time,
	}, nil
}

// QueryUserStats fetches the counters for a single contribution window.
func (g *GitHubGateway) QueryUserStats(ctx context.Context, login string, window domain.Window) (*domain.WindowStats, error) {
	// contributionsCollection treats "to" as inclusive.
	variables := map[string]interface{}{
		"login": githubv4.String(login),
		"from":  githubv4.DateTime{Time: window.From},
		"to":    githubv4.DateTime{Time: window.To.Add(-time.Second)},
	}
	var q userStatsQuery
	if err := g.query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("%w: failed to execute GraphQL query for user stats: %w", domain.ErrRemote, err)
	}
	if q.User == nil {
		return nil, fmt.Errorf("%w: no user payload for %s", domain.ErrRemote, login)
	}

	cc := q.User.ContributionsCollection
	stats := &domain.WindowStats{
		Window:        window,
		RepoCount:     q.User.Repositories.TotalCount,
		FollowerCount: q.User.Followers.TotalCount,
		StarCount:     q.User.StarredRepositories.TotalCount,
		Commits:       cc.TotalCommitContributions,
		PullRequests:  cc.TotalPullRequestContributions,
		Issues:        cc.TotalIssueContributions,
		Reviews:       cc.TotalPullRequestReviewContributions,
	}
	for _, c := range cc.CommitContributionsByRepository {
		stats.ContributedRepos = append(stats.ContributedRepos, c.Repository.NameWithOwner)
	}
	g.logger.Debug("Fetched contribution window",
		zap.Time("from", window.From),
		zap.Time("to", window.To),
		zap.Int("commits", stats.Commits))
	return stats, nil
}

// ListRepositories returns every public repository owned by the user.
func (g *GitHubGateway) ListRepositories(ctx context.Context, login string) ([]domain.Repository, error) {
	variables := map[string]interface{}{
		"login":  githubv4.String(login),
		"cursor": (*githubv4.String)(nil),
	}
	var repos []domain.Repository
	for {
		var q repositoriesQuery
		if err := g.query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("%w: failed to execute GraphQL query for repositories: %w", domain.ErrRemote, err)
		}
		if q.User == nil {
			return nil, fmt.Errorf("%w: no user payload for %s", domain.ErrRemote, login)
		}
		for _, node := range q.User.Repositories.Nodes {
			repos = append(repos, domain.Repository{Owner: node.Owner.Login, Name: node.Name})
		}
		if !q.User.Repositories.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.User.Repositories.PageInfo.EndCursor)
		g.logger.Debug("Fetching next page of repositories...")
	}
	g.logger.Debug("Completed fetching repositories", zap.Int("count", len(repos)))
	return repos, nil
}

// QueryRepositoryCommitHistory fetches one page of a repository's default branch history.
// A repository without a default branch yields an empty final page.
func (g *GitHubGateway) QueryRepositoryCommitHistory(ctx context.Context, owner, name, cursor string) (*domain.CommitPage, error) {
	variables := map[string]interface{}{
		"owner":    githubv4.String(owner),
		"name":     githubv4.String(name),
		"pageSize": githubv4.Int(HistoryPageSize),
		"cursor":   (*githubv4.String)(nil),
	}
	if cursor != "" {
		variables["cursor"] = githubv4.NewString(githubv4.String(cursor))
	}
	var q commitHistoryQuery
	if err := g.query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("%w: failed to execute GraphQL query for %s/%s history: %w", domain.ErrRemote, owner, name, err)
	}
	if q.Repository == nil {
		return nil, fmt.Errorf("%w: repository %s/%s not found", domain.ErrRemote, owner, name)
	}
	if q.Repository.DefaultBranchRef == nil {
		return &domain.CommitPage{}, nil
	}

	history := q.Repository.DefaultBranchRef.Target.Commit.History
	page := &domain.CommitPage{
		Commits:     make([]domain.Commit, 0, len(history.Nodes)),
		HasNextPage: history.PageInfo.HasNextPage,
		EndCursor:   string(history.PageInfo.EndCursor),
	}
	for _, node := range history.Nodes {
		c := domain.Commit{Additions: node.Additions, Deletions: node.Deletions}
		if u := node.Author.User; u != nil {
			c.AuthorID = u.ID
			c.AuthorLogin = u.Login
		}
		page.Commits = append(page.Commits, c)
	}
	return page, nil
}

// query waits for the limiter and runs q with the per-request timeout.
func (g *GitHubGateway) query(ctx context.Context, q interface{}, variables map[string]interface{}) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.graphqlClient.Query(ctx, q, variables)
}
