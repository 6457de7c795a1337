// Package remote is a client for the students REST resource.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"studentresults/internal/model"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(opts ...Option) *Client {
	options := NewOptions(opts...)

	hc := options.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: options.Timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(options.BaseURL, "/"),
		http:    hc,
	}
}

// Probe issues a HEAD against the resource; any non-2xx status is a failure.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return &model.Error{Kind: model.KindProbeFailure, Op: "probe", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &model.Error{Kind: model.KindProbeFailure, Op: "probe", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &model.Error{Kind: model.KindProbeFailure, Op: "probe", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return nil
}

func (c *Client) List(ctx context.Context) ([]model.StudentRecord, error) {
	records := []model.StudentRecord{}
	if err := c.do(ctx, "list", 0, http.MethodGet, c.baseURL, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) Get(ctx context.Context, id int) (model.StudentRecord, error) {
	var rec model.StudentRecord
	err := c.do(ctx, "get", id, http.MethodGet, c.itemURL(id), nil, &rec)
	return rec, err
}

func (c *Client) Create(ctx context.Context, data model.StudentData) (model.StudentRecord, error) {
	var rec model.StudentRecord
	err := c.do(ctx, "create", 0, http.MethodPost, c.baseURL, data, &rec)
	return rec, err
}

func (c *Client) Update(ctx context.Context, id int, data model.StudentData) (model.StudentRecord, error) {
	var rec model.StudentRecord
	err := c.do(ctx, "update", id, http.MethodPut, c.itemURL(id), data, &rec)
	return rec, err
}

func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, "delete", id, http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) itemURL(id int) string {
	return c.baseURL + "/" + strconv.Itoa(id)
}

func (c *Client) do(ctx context.Context, op string, id int, method, url string, in, out any) error {
	fail := func(err error) error {
		return &model.Error{Kind: model.KindRemoteFailure, Op: op, ID: id, Err: err}
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fail(fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fail(err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fail(fmt.Errorf("%s %s: status %d", method, url, resp.StatusCode))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail(fmt.Errorf("decode response: %w", err))
	}
	return nil
}
