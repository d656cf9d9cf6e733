// Package client is a typed HTTP client for the inventory API.
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
	"time"

	"github.com/sirupsen/logrus"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, opts ...Option) *Client {
	silent := logrus.New()
	silent.SetOutput(io.Discard)

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     silent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Products ---------------------------------------------------------------

func (c *Client) ListProducts(ctx context.Context, filters Filters) ([]Product, error) {
	products := []Product{}
	if err := c.do(ctx, http.MethodGet, "/products", filters.query(), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, productPath(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodPost, "/products", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodPut, productPath(id), nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, productPath(id), nil, nil, nil)
}

// Categories -------------------------------------------------------------

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	categories := []Category{}
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, name string) (*Category, error) {
	var cat Category
	if err := c.do(ctx, http.MethodPost, "/categories", nil, categoryInput{Name: name}, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id uint, name string) (*Category, error) {
	var cat Category
	if err := c.do(ctx, http.MethodPut, categoryPath(id), nil, categoryInput{Name: name}, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, categoryPath(id), nil, nil, nil)
}

// Statistics -------------------------------------------------------------

func (c *Client) GetStatistics(ctx context.Context) (*Statistics, error) {
	var s Statistics
	if err := c.do(ctx, http.MethodGet, "/statistics", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.WithFields(logrus.Fields{"method": method, "url": target}).Debug("Sending request")
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("url", target).Warn("Inventory service unreachable")
		return &Error{Kind: KindConnectivity, Message: "Cannot reach the inventory service", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := errorFromResponse(resp)
		c.log.WithFields(logrus.Fields{
			"method": method,
			"url":    target,
			"status": resp.StatusCode,
		}).Debug(apiErr.Message)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func productPath(id uint) string {
	return "/products/" + strconv.FormatUint(uint64(id), 10)
}

func categoryPath(id uint) string {
	return "/categories/" + strconv.FormatUint(uint64(id), 10)
}
