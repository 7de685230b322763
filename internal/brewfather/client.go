// Package brewfather is a thin client for the Brewfather v2 REST API.
//
// Responses are decoded into wire documents, validated, and converted into
// inventory records. A payload that fails validation is rejected as a whole
// with apperr.ErrInvalidPayload.
package brewfather

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/starford/brewstock/internal/apperr"
	"github.com/starford/brewstock/internal/credentials"
	"github.com/starford/brewstock/internal/inventory"
	"github.com/starford/brewstock/internal/metrics"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultBaseURL        = "https://api.brewfather.app/v2"
	DefaultPageSize       = 50
	DefaultBatchStatus    = "Planning"
	DefaultMaxBatchNumber = 1000
	DefaultTimeout        = 15 * time.Second
)

const batchIncludes = "recipe,measuredOg,measuredFg,measuredAbv,estimatedIbu,bottlingDate,notes"

// Options configures a Client.
type Options struct {
	BaseURL        string
	PageSize       int
	BatchStatus    string
	MaxBatchNumber int
	HTTPClient     *http.Client
	Metrics        *metrics.Metrics
}

// Client talks to Brewfather on behalf of one user.
type Client struct {
	baseURL   string
	creds     credentials.Credentials
	pageSize  int
	status    string
	maxNumber int
	http      *http.Client
	metrics   *metrics.Metrics
}

// New creates a client for creds.
func New(creds credentials.Credentials, opts Options) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(cmp.Or(opts.BaseURL, DefaultBaseURL), "/"),
		creds:     creds,
		pageSize:  cmp.Or(opts.PageSize, DefaultPageSize),
		status:    cmp.Or(opts.BatchStatus, DefaultBatchStatus),
		maxNumber: cmp.Or(opts.MaxBatchNumber, DefaultMaxBatchNumber),
		http:      opts.HTTPClient,
		metrics:   opts.Metrics,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: DefaultTimeout}
	}
	return c
}

// Fermentables returns the fermentables currently in stock.
func (c *Client) Fermentables(ctx context.Context) ([]inventory.RawItem, error) {
	q := url.Values{}
	q.Set("inventory_exists", "True")
	q.Set("limit", strconv.Itoa(c.pageSize))

	var docs []fermentableDoc
	if err := c.get(ctx, "fermentables", "/inventory/fermentables", q, &docs); err != nil {
		return nil, err
	}
	out := make([]inventory.RawItem, 0, len(docs))
	for i, d := range docs {
		if err := d.Validate(); err != nil {
			return nil, invalid("fermentable", i, err)
		}
		out = append(out, d.raw())
	}
	return out, nil
}

// Hops returns the hops currently in stock.
func (c *Client) Hops(ctx context.Context) ([]inventory.RawItem, error) {
	q := url.Values{}
	q.Set("inventory_exists", "True")
	q.Set("limit", strconv.Itoa(c.pageSize))
	q.Set("include", "origin,year,userNotes")

	var docs []hopDoc
	if err := c.get(ctx, "hops", "/inventory/hops", q, &docs); err != nil {
		return nil, err
	}
	out := make([]inventory.RawItem, 0, len(docs))
	for i, d := range docs {
		if err := d.Validate(); err != nil {
			return nil, invalid("hop", i, err)
		}
		out = append(out, d.raw())
	}
	return out, nil
}

// Batches returns the in-scope batches with the configured status, sorted
// ascending by batch number.
func (c *Client) Batches(ctx context.Context) ([]inventory.RawBatch, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.pageSize))
	q.Set("order_by", "brewDate")
	q.Set("order_by_direction", "desc")
	q.Set("status", c.status)
	q.Set("include", batchIncludes)

	var docs []batchDoc
	if err := c.get(ctx, "batches", "/batches", q, &docs); err != nil {
		return nil, err
	}
	out := make([]inventory.RawBatch, 0, len(docs))
	for i, d := range docs {
		if err := d.Validate(); err != nil {
			return nil, invalid("batch", i, err)
		}
		out = append(out, d.raw())
	}
	return InScope(out, c.maxNumber), nil
}

// Batch returns brewing details of a single batch.
func (c *Client) Batch(ctx context.Context, id string) (*BatchDetail, error) {
	if id == "" {
		return nil, apperr.ErrNotFound
	}
	var doc batchDoc
	if err := c.get(ctx, "batch", "/batches/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, invalid("batch", 0, err)
	}
	return newBatchDetail(id, doc), nil
}

// InScope drops batches numbered limit or above and sorts the rest ascending
// by number. Batches sharing a number keep their relative order.
func InScope(batches []inventory.RawBatch, limit int) []inventory.RawBatch {
	out := make([]inventory.RawBatch, 0, len(batches))
	for _, b := range batches {
		if b.Number < limit {
			out = append(out, b)
		}
	}
	slices.SortStableFunc(out, func(a, b inventory.RawBatch) int {
		return cmp.Compare(a.Number, b.Number)
	})
	return out
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("brewfather: build request: %w", err)
	}
	req.SetBasicAuth(c.creds.UserID, c.creds.APIKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, 0, time.Since(start))
		return fmt.Errorf("%w: %s: %w", apperr.ErrUpstream, endpoint, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveUpstream(endpoint, resp.StatusCode, time.Since(start))

	if err := statusError(endpoint, resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode: %w", apperr.ErrInvalidPayload, endpoint, err)
	}
	return nil
}

func statusError(endpoint string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(body))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s: status %d", apperr.ErrUnauthorized, endpoint, resp.StatusCode)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, endpoint)
	}
	return fmt.Errorf("%w: %s: status %d: %s", apperr.ErrUpstream, endpoint, resp.StatusCode, msg)
}

func invalid(what string, i int, err error) error {
	return fmt.Errorf("%w: %s %d: %w", apperr.ErrInvalidPayload, what, i, err)
}

// IsUpstream reports whether err originated from the remote API.
func IsUpstream(err error) bool {
	return errors.Is(err, apperr.ErrUpstream) ||
		errors.Is(err, apperr.ErrUnauthorized) ||
		errors.Is(err, apperr.ErrInvalidPayload)
}
