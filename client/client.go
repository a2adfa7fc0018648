// Package client wraps the bookstore HTTP API for front-end code. Each method
// sends exactly one request and hands back the raw response; the caller owns
// and must close its body.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bookstore/registry"
)

// Client wraps the HTTP API. Each method sends one request and returns the raw response.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Token is sent as a bearer credential when set.
	Token string

	Books   *BookService
	Authors *AuthorService
	Users   *UserService
	Account *AccountService
}

// New creates a Client for baseURL. A nil httpClient means http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTPClient: httpClient}
	c.Books = &BookService{c: c}
	c.Authors = &AuthorService{c: c}
	c.Users = &UserService{c: c}
	c.Account = &AccountService{c: c}
	return c
}

// NewDiscovered points a client at the first healthy instance of serviceName.
func NewDiscovered(r registry.ServiceRegistry, serviceName string, httpClient *http.Client) (*Client, error) {
	addrs, err := r.Discover(serviceName, "http")
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("service '%s': %w", serviceName, registry.ErrNoInstances)
	}
	return New("http://"+addrs[0], httpClient), nil
}

// WithToken returns a copy of c that authenticates as token.
func (c *Client) WithToken(token string) *Client {
	cp := New(c.BaseURL, c.HTTPClient)
	cp.Token = token
	return cp
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.HTTPClient.Do(req)
}

func pageQuery(search string, page, pageSize int) url.Values {
	q := url.Values{}
	if search != "" {
		q.Set("q", search)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	return q
}

func idPath(prefix string, id uint, rest ...string) string {
	p := prefix + "/" + strconv.FormatUint(uint64(id), 10)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// DecodeJSON reads resp's body into v and closes it.
func DecodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}
