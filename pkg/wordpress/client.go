// Package wordpress publishes generated posts through the WordPress REST API v2
// using application-password basic auth.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/umputun/feedrewriter/pkg/domain"
)

// post meta keys
const (
	MetaGenerated  = "_frp_generated"
	MetaSourceFeed = "_frp_source_feed"
	MetaSourceLink = "_frp_source_link"
	MetaConfigNum  = "_frp_config_num"
)

const apiPrefix = "/wp-json/wp/v2"

// APIError is a non-2xx answer of the REST API
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wordpress api error %d: %s %s", e.Status, e.Code, e.Message)
}

// Opts configures Client
type Opts struct {
	URL         string
	Username    string
	AppPassword string
	Status      string // status of created posts, publish by default
	Timeout     time.Duration
}

// Client talks to a WordPress site
type Client struct {
	baseURL  string
	username string
	password string
	status   string
	client   *http.Client
}

type rendered struct {
	Rendered string `json:"rendered"`
}

type term struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// New makes a WordPress client
func New(opts Opts) *Client {
	if opts.Status == "" {
		opts.Status = "publish"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.URL, "/") + apiPrefix,
		username: opts.Username,
		password: strings.ReplaceAll(opts.AppPassword, " ", ""), // wp shows app passwords in groups
		status:   opts.Status,
		client:   &http.Client{Timeout: opts.Timeout},
	}
}

// PostExists checks for a post with exactly the same title in any status
func (c *Client) PostExists(ctx context.Context, title string) (bool, error) {
	var posts []struct {
		ID    int64    `json:"id"`
		Title rendered `json:"title"`
	}
	q := url.Values{"search": {title}, "status": {"any"}, "per_page": {"20"}, "_fields": {"id,title"}}
	if err := c.call(ctx, http.MethodGet, "/posts", q, nil, &posts); err != nil {
		return false, fmt.Errorf("search posts: %w", err)
	}
	for _, p := range posts {
		if html.UnescapeString(p.Title.Rendered) == title {
			return true, nil
		}
	}
	return false, nil
}

// EnsureCategory returns category id by name, creating the category if absent
func (c *Client) EnsureCategory(ctx context.Context, name string) (int64, error) {
	id, err := c.ensureTerm(ctx, "/categories", name)
	if err != nil {
		return 0, fmt.Errorf("ensure category %q: %w", name, err)
	}
	return id, nil
}

// CreatePost creates a post and returns its id
func (c *Client) CreatePost(ctx context.Context, post domain.Post) (int64, error) {
	req := map[string]any{
		"title":   post.Title,
		"content": post.HTMLBody,
		"status":  c.status,
		"meta": map[string]any{
			MetaGenerated:  post.Meta.Generated,
			MetaSourceFeed: post.Meta.SourceFeed,
			MetaSourceLink: post.Meta.SourceURL,
			MetaConfigNum:  post.Meta.FeedNum,
		},
	}
	if post.CategoryID > 0 {
		req["categories"] = []int64{post.CategoryID}
	}
	if !post.PublishedAt.IsZero() {
		req["date_gmt"] = post.PublishedAt.UTC().Format("2006-01-02T15:04:05")
	}

	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/posts", nil, req, &resp); err != nil {
		return 0, fmt.Errorf("create post: %w", err)
	}
	return resp.ID, nil
}

// AttachImage uploads image to the media library and sets it as the featured image of the post
func (c *Client) AttachImage(ctx context.Context, postID int64, image []byte, filename, alt string) error {
	ctype := mime.TypeByExtension(path.Ext(filename))
	if ctype == "" {
		ctype = http.DetectContentType(image)
	}

	req, err := c.request(ctx, http.MethodPost, "/media", nil, bytes.NewReader(image))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", ctype)
	req.Header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))

	var media struct {
		ID int64 `json:"id"`
	}
	if err = c.send(req, &media); err != nil {
		return fmt.Errorf("upload image %s: %w", filename, err)
	}

	if alt != "" {
		if err = c.call(ctx, http.MethodPost, "/media/"+strconv.FormatInt(media.ID, 10), nil,
			map[string]any{"alt_text": alt}, nil); err != nil {
			return fmt.Errorf("set image alt: %w", err)
		}
	}

	if err = c.call(ctx, http.MethodPost, "/posts/"+strconv.FormatInt(postID, 10), nil,
		map[string]any{"featured_media": media.ID}, nil); err != nil {
		return fmt.Errorf("set featured image: %w", err)
	}
	return nil
}

// SetTags creates missing tags and assigns them to the post
func (c *Client) SetTags(ctx context.Context, postID int64, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(tags))
	for _, t := range tags {
		id, err := c.ensureTerm(ctx, "/tags", t)
		if err != nil {
			return fmt.Errorf("ensure tag %q: %w", t, err)
		}
		ids = append(ids, id)
	}
	if err := c.call(ctx, http.MethodPost, "/posts/"+strconv.FormatInt(postID, 10), nil,
		map[string]any{"tags": ids}, nil); err != nil {
		return fmt.Errorf("set tags: %w", err)
	}
	return nil
}

// ensureTerm finds a category or tag by name (case-insensitive) or creates it
func (c *Client) ensureTerm(ctx context.Context, endpoint, name string) (int64, error) {
	var terms []term
	q := url.Values{"search": {name}, "per_page": {"100"}, "_fields": {"id,name"}}
	if err := c.call(ctx, http.MethodGet, endpoint, q, nil, &terms); err != nil {
		return 0, err
	}
	for _, t := range terms {
		if strings.EqualFold(html.UnescapeString(t.Name), name) {
			return t.ID, nil
		}
	}

	var created term
	if err := c.call(ctx, http.MethodPost, endpoint, nil, map[string]any{"name": name}, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// call sends json body (if any) and decodes json response into out (if not nil)
func (c *Client) call(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := c.request(ctx, method, endpoint, query, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) request(ctx context.Context, method, endpoint string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jerr := json.Unmarshal(data, apiErr); jerr != nil || apiErr.Code == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
