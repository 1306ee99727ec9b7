// internal/notion/client.go
package notion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"starsync/internal/model"
	"time"

	"github.com/jomei/notionapi"
)

// Client is a wrapper around the notionapi client, bound to one mirror
// database.
type Client struct {
	api        *notionapi.Client
	databaseID notionapi.DatabaseID
	logger     *slog.Logger
}

// NewClient creates and configures a new Client instance.
// A non-empty baseURL reroutes API traffic to an alternate host; the SDK
// has no endpoint option of its own.
func NewClient(token, databaseID, baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	hc := &http.Client{Timeout: timeout}
	if baseURL != "" {
		target, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("configuring Notion base URL %q: %w", baseURL, err)
		}
		hc.Transport = &rewriteTransport{target: target}
	}

	return &Client{
		api:        notionapi.NewClient(notionapi.Token(token), notionapi.WithHTTPClient(hc)),
		databaseID: notionapi.DatabaseID(databaseID),
		logger:     logger,
	}, nil
}

// QueryAllRecords fetches the live records of the mirror database. It
// handles cursor pagination transparently; archived pages are dropped from
// the working set.
func (c *Client) QueryAllRecords(ctx context.Context) ([]model.MirrorRecord, error) {
	var records []model.MirrorRecord

	req := &notionapi.DatabaseQueryRequest{
		PageSize: 100, // Max per page
	}

	for {
		c.logger.Debug("Fetching mirror page", "cursor", string(req.StartCursor))

		resp, err := c.api.Database.Query(ctx, c.databaseID, req)
		if err != nil {
			return nil, err
		}

		for _, page := range resp.Results {
			if page.Archived {
				continue
			}
			records = append(records, toMirrorRecord(page))
		}

		if !resp.HasMore {
			break
		}
		req.StartCursor = resp.NextCursor
	}

	return records, nil
}

// CreateRecord inserts a page for the repository into the mirror database.
// Date properties are written only when the repository carries that
// observed signal.
func (c *Client) CreateRecord(ctx context.Context, repo model.StarredRepo) (model.MirrorRecord, error) {
	props := notionapi.Properties{
		propName: notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: repo.Name}}},
		},
		propOwner: notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: repo.Owner}}},
		},
	}
	if repo.URL != "" {
		props[propURL] = notionapi.URLProperty{URL: repo.URL}
	}
	if repo.LatestRelease != nil {
		props[propRelease] = dateProperty(*repo.LatestRelease)
	}
	if repo.LatestCommit != nil {
		props[propCommit] = dateProperty(*repo.LatestCommit)
	}

	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: c.databaseID,
		},
		Properties: props,
	})
	if err != nil {
		return model.MirrorRecord{}, err
	}

	return toMirrorRecord(*page), nil
}

// ArchiveRecord flags a page as archived, removing it from the live set.
// Archiving an already-archived page is a no-op on the service side.
func (c *Client) ArchiveRecord(ctx context.Context, id string) error {
	_, err := c.api.Page.Update(ctx, notionapi.PageID(id), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{},
		Archived:   true,
	})
	return err
}

// PatchRecord updates the stored date properties of a page, writing only
// the non-nil fields so the others keep their current values.
func (c *Client) PatchRecord(ctx context.Context, id string, release, commit *model.Date) error {
	if release == nil && commit == nil {
		return errors.New("patch carries no fields")
	}

	props := notionapi.Properties{}
	if release != nil {
		props[propRelease] = dateProperty(*release)
	}
	if commit != nil {
		props[propCommit] = dateProperty(*commit)
	}

	_, err := c.api.Page.Update(ctx, notionapi.PageID(id), &notionapi.PageUpdateRequest{
		Properties: props,
	})
	return err
}

// rewriteTransport redirects requests to an alternate host, preserving
// path and body.
type rewriteTransport struct {
	target *url.URL
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}
