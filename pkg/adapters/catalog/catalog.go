// Package catalog lists and fetches flow documents published in a remote
// directory, such as a GitHub repository folder exposed through the contents API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/wayfinder/pkg/document"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
)

var (
	// ErrNotFound is returned by Fetch when no entry matches the requested name.
	ErrNotFound = errors.New("flow not found in catalog")

	// ErrHTTP wraps non-2xx responses.
	ErrHTTP = errors.New("catalog request failed")
)

// Entry is one item of a catalog listing.
// The JSON shape follows the GitHub contents API.
type Entry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// Client talks to a catalog listing endpoint.
type Client struct {
	listURL string
	http    *http.Client
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithToken sends a bearer token (e.g. a GitHub token for private repos or rate limits).
func WithToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

// NewClient creates a client for the listing at listURL.
func NewClient(listURL string, opts ...Option) *Client {
	c := &Client{
		listURL: listURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns the flow documents of the listing, sorted by name.
// Directories and files without a .json/.yaml/.yml extension are skipped.
func (c *Client) List(ctx context.Context) ([]Entry, error) {
	body, err := c.get(ctx, c.listURL, "application/json")
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode catalog listing: %w", err)
	}

	flows := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Type != "file" || e.DownloadURL == "" || document.FormatFromPath(e.Name) == "" {
			continue
		}
		flows = append(flows, e)
	}
	slices.SortFunc(flows, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return flows, nil
}

// Fetch downloads the entry whose name or path equals name.
func (c *Client) Fetch(ctx context.Context, name string) (*document.Document, Entry, error) {
	entries, err := c.List(ctx)
	if err != nil {
		return nil, Entry{}, err
	}
	idx := slices.IndexFunc(entries, func(e Entry) bool {
		return e.Name == name || e.Path == name
	})
	if idx < 0 {
		return nil, Entry{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	entry := entries[idx]

	doc, err := c.download(ctx, entry.DownloadURL)
	if err != nil {
		return nil, entry, err
	}
	return doc, entry, nil
}

func (c *Client) download(ctx context.Context, url string) (*document.Document, error) {
	body, err := c.get(ctx, url, "")
	if err != nil {
		return nil, err
	}
	doc, err := document.DecodeBytes(body, document.FormatFromPath(url))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTTP, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s: HTTP %d", ErrHTTP, url, resp.StatusCode)
	}
	return body, nil
}

// URLLoader implements ports.FlowLoader for a single document URL.
type URLLoader struct {
	client *Client
	url    string
}

// NewURLLoader creates a loader for url, sharing the client's HTTP settings.
func (c *Client) NewURLLoader(url string) *URLLoader {
	return &URLLoader{client: c, url: url}
}

// NewURLLoader creates a loader for url with default settings.
func NewURLLoader(url string, opts ...Option) *URLLoader {
	return NewClient("", opts...).NewURLLoader(url)
}

// Load downloads and decodes the document.
func (l *URLLoader) Load(ctx context.Context) (*document.Document, error) {
	return l.client.download(ctx, l.url)
}

// Source implements ports.FlowLoader.
func (l *URLLoader) Source() string { return l.url }
