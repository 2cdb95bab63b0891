package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"git.home.luguber.info/inful/ncms/internal/config"
	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
	"git.home.luguber.info/inful/ncms/internal/logfields"
	"git.home.luguber.info/inful/ncms/internal/retry"
)

// PageSize is the number of results requested per paginated call.
const PageSize = 100

// Client talks to the Notion REST API. Every call is synchronous and
// issued in caller order.
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
	version    string
	policy     retry.Policy
}

// NewClient creates a client from the notion section of the configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		apiURL:     cfg.Notion.APIURL,
		token:      cfg.Notion.APIKey,
		version:    cfg.Notion.Version,
		policy:     retry.FromConfig(cfg),
	}
}

// SetHTTPClient replaces the transport, mainly for tests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// SetRetryPolicy overrides the policy derived from configuration.
func (c *Client) SetRetryPolicy(p retry.Policy) {
	c.policy = p
}

// QueryDatabase returns every page of the database matching filter, in
// server order, following cursors until the result set is exhausted.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter *Filter) ([]Page, error) {
	endpoint := "databases/" + url.PathEscape(databaseID) + "/query"

	var pages []Page
	cursor := ""
	for {
		var resp list[Page]
		body := queryRequest{Filter: filter, StartCursor: cursor, PageSize: PageSize}
		if err := c.call(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)

		if cursor = resp.cursor(); cursor == "" {
			break
		}
	}

	slog.Debug("Queried database", logfields.DatabaseID(databaseID), logfields.Count(len(pages)))
	return pages, nil
}

// ListBlockChildren returns the direct children of a block or page. Nested
// children are not fetched.
func (c *Client) ListBlockChildren(ctx context.Context, blockID string) ([]Block, error) {
	base := "blocks/" + url.PathEscape(blockID) + "/children"

	var blocks []Block
	cursor := ""
	for {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(PageSize))
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}

		var resp list[Block]
		if err := c.call(ctx, http.MethodGet, base+"?"+q.Encode(), nil, &resp); err != nil {
			return nil, err
		}
		blocks = append(blocks, resp.Results...)

		if cursor = resp.cursor(); cursor == "" {
			break
		}
	}
	return blocks, nil
}

// UpdateSelect sets a select property of a page to the named option.
func (c *Client) UpdateSelect(ctx context.Context, pageID, property, value string) error {
	body := updatePageRequest{Properties: map[string]Property{
		property: {Select: &SelectOption{Name: value}},
	}}
	return c.call(ctx, http.MethodPatch, "pages/"+url.PathEscape(pageID), body, nil)
}

func (c *Client) call(ctx context.Context, method, endpoint string, body, result any) error {
	return c.policy.Do(ctx, method+" "+endpoint, func() error {
		req, err := c.newRequest(ctx, method, endpoint, body)
		if err != nil {
			return err
		}
		return c.doRequest(req, result)
	}, errors.IsTransient)
}

// newRequest builds the request URL relative to the API base, encodes the
// JSON body and sets the auth and version headers.
func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	cleanEndpoint := strings.TrimPrefix(endpoint, "/")

	var rawQuery string
	if idx := strings.Index(cleanEndpoint, "?"); idx != -1 {
		rawQuery = cleanEndpoint[idx+1:]
		cleanEndpoint = cleanEndpoint[:idx]
	}

	u, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, errors.ConfigError("failed to parse Notion API URL").
			WithCause(err).
			WithContext("api_url", c.apiURL).
			Build()
	}
	u.Path = path.Join(strings.TrimSuffix(u.Path, "/"), cleanEndpoint)
	u.RawQuery = rawQuery

	reqBody := io.Reader(http.NoBody)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.InternalError("failed to marshal request body").WithCause(err).Build()
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, errors.SourceError("failed to create request").
			WithCause(err).
			WithContext("method", method).
			WithContext("url", u.String()).
			Build()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("User-Agent", "ncms/1.0")
	return req, nil
}

// doRequest executes req and decodes a JSON response into result when non-nil.
func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NetworkError("failed to execute Notion request").
			WithCause(err).
			WithContext("method", req.Method).
			WithContext("url", req.URL.String()).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		limitedBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		bodyStr := strings.ReplaceAll(string(limitedBody), "\n", " ")

		b := errors.SourceError(fmt.Sprintf("Notion API error: %s", resp.Status))
		switch {
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			b = errors.AuthError(fmt.Sprintf("Notion API rejected credentials: %s", resp.Status))
		case resp.StatusCode == http.StatusNotFound:
			b = errors.NewError(errors.CategoryNotFound, fmt.Sprintf("Notion object not found: %s", resp.Status)).Fatal()
		case resp.StatusCode == http.StatusTooManyRequests:
			b = errors.NetworkError(fmt.Sprintf("Notion API rate limited: %s", resp.Status)).RateLimit()
		case resp.StatusCode >= 500:
			b = errors.NetworkError(fmt.Sprintf("Notion API unavailable: %s", resp.Status))
		}

		return b.WithContext("status", resp.Status).
			WithContext("code", resp.StatusCode).
			WithContext("url", req.URL.String()).
			WithContext("response", bodyStr).
			Build()
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return errors.SourceError("failed to decode Notion response").
				WithCause(err).
				WithContext("url", req.URL.String()).
				Build()
		}
	}
	return nil
}
