// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"strings"
	"time"
)

// Display field names. Each one matches an id="..." marker in the target SVGs.
const (
	FieldRepoCount          = "repo_count"
	FieldCommitCount        = "commit_count"
	FieldContribCount       = "contrib_count"
	FieldStarCount          = "star_count"
	FieldFollowerCount      = "follower_count"
	FieldPRCount            = "pr_count"
	FieldIssueCount         = "issue_count"
	FieldReviewCount        = "review_count"
	FieldTotalContributions = "total_contributions"
	FieldLocCount           = "loc_count"
	FieldLocAdd             = "loc_add"
	FieldLocDel             = "loc_del"
	FieldUptime             = "uptime"
)

// MaxContributedRepos caps the contributed repositories returned per window.
const MaxContributedRepos = 100

// Account identifies the tracked GitHub user.
type Account struct {
	Login     string
	NodeID    string
	CreatedAt time.Time
}

// Authored reports whether c was written by the account. Node IDs decide when
// both are known; the login is compared case-insensitively only otherwise.
// Commits without a resolvable author user never match.
func (a Account) Authored(c Commit) bool {
	if c.AuthorID != "" && a.NodeID != "" {
		return c.AuthorID == a.NodeID
	}
	return c.AuthorLogin != "" && strings.EqualFold(c.AuthorLogin, a.Login)
}

// Repository is a repository owned by the account.
type Repository struct {
	Owner string
	Name  string
}

// Key is the LOC cache key of the repository: its bare name. Every listed
// repository is owned by the tracked account, so names are unique.
func (r Repository) Key() string {
	return r.Name
}

// Commit carries the line counts of a single commit and its author identity.
type Commit struct {
	Additions   int
	Deletions   int
	AuthorID    string
	AuthorLogin string
}

// CommitPage is one page of a repository's default branch history.
type CommitPage struct {
	Commits     []Commit
	HasNextPage bool
	EndCursor   string
}

// WindowStats holds the response of a single contribution window query.
// RepoCount, FollowerCount and StarCount are not time scoped.
type WindowStats struct {
	Window           Window
	RepoCount        int
	FollowerCount    int
	StarCount        int
	Commits          int
	PullRequests     int
	Issues           int
	Reviews          int
	ContributedRepos []string
}

// AccountStats is the aggregate record for the account, recomputed on every run.
type AccountStats struct {
	RepoCount          int `json:"repo_count"`
	CommitCount        int `json:"commit_count"`
	ContribCount       int `json:"contrib_count"`
	StarCount          int `json:"star_count"`
	FollowerCount      int `json:"follower_count"`
	PRCount            int `json:"pr_count"`
	IssueCount         int `json:"issue_count"`
	ReviewCount        int `json:"review_count"`
	TotalContributions int `json:"total_contributions"`
}

// SumWindows combines per-window results into one record.
//
// Contribution counters are summed. The non time scoped counters are read from the
// window with the latest end, whatever order the slice is in. ContribCount is the
// number of distinct repositories across all windows. Each window reports at most
// MaxContributedRepos of them, so ContribCount undercounts for a year spread over
// more repositories than that.
func SumWindows(windows []WindowStats) AccountStats {
	var (
		out      AccountStats
		baseline *WindowStats
		repos    = make(map[string]struct{})
	)
	for i := range windows {
		w := &windows[i]
		out.CommitCount += w.Commits
		out.PRCount += w.PullRequests
		out.IssueCount += w.Issues
		out.ReviewCount += w.Reviews
		for _, name := range w.ContributedRepos {
			repos[name] = struct{}{}
		}
		if baseline == nil || w.Window.To.After(baseline.Window.To) {
			baseline = w
		}
	}
	if baseline != nil {
		out.RepoCount = baseline.RepoCount
		out.FollowerCount = baseline.FollowerCount
		out.StarCount = baseline.StarCount
	}
	out.ContribCount = len(repos)
	out.TotalContributions = out.CommitCount + out.PRCount + out.IssueCount + out.ReviewCount
	return out
}

// Profile is everything the stats query yields for the account.
type Profile struct {
	Account      Account
	Stats        AccountStats
	Repositories []Repository
}

// DisplayStats maps a marker field name to the integer rendered into it.
type DisplayStats map[string]int64

// Display builds the values patched into the target files.
func (s AccountStats) Display(loc LocTotals) DisplayStats {
	return DisplayStats{
		FieldRepoCount:          int64(s.RepoCount),
		FieldCommitCount:        int64(s.CommitCount),
		FieldContribCount:       int64(s.ContribCount),
		FieldStarCount:          int64(s.StarCount),
		FieldFollowerCount:      int64(s.FollowerCount),
		FieldPRCount:            int64(s.PRCount),
		FieldIssueCount:         int64(s.IssueCount),
		FieldReviewCount:        int64(s.ReviewCount),
		FieldTotalContributions: int64(s.TotalContributions),
		FieldLocCount:           loc.Net(),
		FieldLocAdd:             loc.Additions,
		FieldLocDel:             loc.Deletions,
	}
}
