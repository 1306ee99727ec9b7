// internal/github/client.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"starsync/internal/model"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// Client is a wrapper around the go-github client.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance.
// The provided token is used to create an authenticated http.Client. A
// non-empty baseURL points the client at an Enterprise-style deployment.
func NewClient(token, baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = timeout

	gh := github.NewClient(tc)
	if baseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("configuring GitHub base URL %q: %w", baseURL, err)
		}
	}

	return &Client{
		gh:     gh,
		logger: logger,
	}, nil
}

// ListStarredRepos fetches the authenticated user's complete starred set.
// It handles API pagination transparently and deduplicates by repository
// name; the first occurrence wins.
func (c *Client) ListStarredRepos(ctx context.Context) ([]model.StarredRepo, error) {
	var repos []model.StarredRepo
	seen := make(map[string]struct{})

	opts := &github.ActivityListStarredOptions{
		ListOptions: github.ListOptions{
			PerPage: 100, // Max per page
		},
	}

	for {
		c.logger.Debug("Fetching starred page", "page", opts.Page)

		starred, resp, err := c.gh.Activity.ListStarred(ctx, "", opts)
		if err != nil {
			return nil, err
		}

		for _, star := range starred {
			repo := toStarredRepo(star.GetRepository())
			if repo.Name == "" {
				continue
			}
			if _, ok := seen[repo.Name]; ok {
				continue
			}
			seen[repo.Name] = struct{}{}
			repos = append(repos, repo)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return repos, nil
}

// LatestRelease fetches the publication date of a repository's latest
// release. It returns nil without error when the release carries no
// publication timestamp; lookup failures go back to the caller.
func (c *Client) LatestRelease(ctx context.Context, owner, name string) (*model.Date, error) {
	release, _, err := c.gh.Repositories.GetLatestRelease(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	if release.PublishedAt == nil {
		return nil, nil
	}

	d := model.DateOf(release.PublishedAt.Time)
	return &d, nil
}

// LatestCommit fetches the committer date of the newest commit on the
// default branch. It returns nil without error for an empty history.
func (c *Client) LatestCommit(ctx context.Context, owner, name string) (*model.Date, error) {
	commits, _, err := c.gh.Repositories.ListCommits(ctx, owner, name, &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, nil
	}

	committer := commits[0].GetCommit().GetCommitter()
	if committer == nil || committer.Date == nil {
		return nil, nil
	}

	d := model.DateOf(committer.Date.Time)
	return &d, nil
}

// toStarredRepo translates a github.Repository object to our internal model.StarredRepo.
func toStarredRepo(r *github.Repository) model.StarredRepo {
	return model.StarredRepo{
		Name:  r.GetName(),
		Owner: r.GetOwner().GetLogin(),
		URL:   r.GetHTMLURL(),
	}
}
