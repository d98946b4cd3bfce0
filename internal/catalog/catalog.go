// Package catalog is the read-only client for the vehicle catalog HTTP API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// ErrStatus is returned for non-2xx responses.
var ErrStatus = errors.New("unexpected status")

type (
	// Item is one selectable entry: a brand, a year or a model.
	Item struct {
		Name string `json:"name"`
		ID   string `json:"_id"`
	}

	// Vehicle is the record returned for a model. Files holds the reference
	// images, served either as an object keyed by view or as an array.
	Vehicle struct {
		ID    string          `json:"_id"`
		Brand string          `json:"brand,omitempty"`
		Model string          `json:"model,omitempty"`
		Files json.RawMessage `json:"files,omitempty"`
	}

	modelRecord struct {
		Model string `json:"model"`
		ID    string `json:"_id"`
	}

	envelope[T any] struct {
		Data T `json:"data"`
	}
)

// ImageSources returns the vehicle's image URLs. Object-form files are
// returned in key order; array-form files in array order. Non-string values
// are skipped.
func (v *Vehicle) ImageSources() ([]string, error) {
	raw := strings.TrimSpace(string(v.Files))
	if raw == "" || raw == "null" {
		return nil, nil
	}

	var values []json.RawMessage
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal(v.Files, &values); err != nil {
			return nil, fmt.Errorf("decode files: %w", err)
		}
	} else {
		var byKey map[string]json.RawMessage
		if err := json.Unmarshal(v.Files, &byKey); err != nil {
			return nil, fmt.Errorf("decode files: %w", err)
		}
		keys := make([]string, 0, len(byKey))
		for k := range byKey {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			values = append(values, byKey[k])
		}
	}

	sources := make([]string, 0, len(values))
	for _, value := range values {
		var s string
		if err := json.Unmarshal(value, &s); err != nil || s == "" {
			continue
		}
		sources = append(sources, s)
	}
	return sources, nil
}

// Client issues catalog requests. It keeps no state beyond the in-flight request.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// ListBrands returns all brands.
func (c *Client) ListBrands(ctx context.Context) ([]Item, error) {
	var out envelope[[]Item]
	if err := c.get(ctx, "/vehicle/brand", &out); err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return out.Data, nil
}

// ListModels returns the models of a brand.
func (c *Client) ListModels(ctx context.Context, brand string) ([]Item, error) {
	var out envelope[[]modelRecord]
	path := "/vehicle/get-with-brand?brand=" + url.QueryEscape(brand)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("list models of %q: %w", brand, err)
	}

	items := make([]Item, len(out.Data))
	for i, m := range out.Data {
		items[i] = Item{Name: m.Model, ID: m.ID}
	}
	return items, nil
}

// GetVehicle returns the vehicle record of a model.
func (c *Client) GetVehicle(ctx context.Context, model string) (*Vehicle, error) {
	var out envelope[Vehicle]
	if err := c.get(ctx, "/vehicle/"+url.PathEscape(model), &out); err != nil {
		return nil, fmt.Errorf("get vehicle %q: %w", model, err)
	}
	return &out.Data, nil
}

// Fetch downloads the resource at rawURL, typically a reference image.
// The caller closes the returned body.
func (c *Client) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, rawURL, "*/*")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, c.baseURL+path, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := render.DecodeJSON(resp.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"url":     rawURL,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start),
	}).Debug("catalog request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	return resp, nil
}

// Years returns the selectable years from first to last inclusive. The
// year is a client-side filter only and is never sent to the server.
func Years(first, last int) []Item {
	if last < first {
		return nil
	}
	years := make([]Item, 0, last-first+1)
	for y := first; y <= last; y++ {
		s := strconv.Itoa(y)
		years = append(years, Item{Name: s, ID: s})
	}
	return years
}
