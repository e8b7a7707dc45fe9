// Package crm provides a thin client for the external CRM's contact API.
// Contacts are addressed by canonical phone embedded into configured URL
// templates.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/talentops/creator-sync/internal/resilience"
)

const (
	// ContactPlaceholder is replaced in each endpoint template with the
	// "phone:<canonical phone>" contact identifier.
	ContactPlaceholder = "{contact}"

	// StatusRetryWith is the backend's "request is in the queue, retry
	// later" status. There is no net/http constant for it.
	StatusRetryWith = 449

	// queueBusyMarker must appear in a 449 body for the response to be
	// treated as a congestion signal rather than a hard failure.
	queueBusyMarker = "in the queue"

	// maxTagsPerCall caps how many tags one add/delete call may carry.
	maxTagsPerCall = 10
)

// Response is the outcome of a single CRM operation. OK is true for 2xx
// statuses (and for delete, the expected-absent statuses 400 and 404).
type Response struct {
	OK     bool   `json:"ok"`
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// QueueBusy reports whether the response is the backend's cooperative
// rate-limit signal.
func (r Response) QueueBusy() bool {
	return r.Status == StatusRetryWith && strings.Contains(r.Body, queueBusyMarker)
}

// Endpoints holds the five CRM URL templates. Each must contain
// ContactPlaceholder.
type Endpoints struct {
	UpsertContact   string
	DeleteContact   string
	AddTags         string
	DeleteTags      string
	UpdateLifecycle string
}

// UpsertRequest is the body for the contact create-or-update call.
type UpsertRequest struct {
	FirstName    string            `json:"firstName"`
	Phone        string            `json:"phone"`
	CustomFields map[string]string `json:"custom_fields"`
	ProfilePic   string            `json:"profilePic,omitempty"`
}

type tagsRequest struct {
	Tags []string `json:"tags"`
}

type lifecycleRequest struct {
	Name string `json:"name"`
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRetryPolicy overrides the default queue retry policy.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// Client performs contact operations against the CRM API.
type Client struct {
	token     string
	endpoints Endpoints
	policy    resilience.Policy
	http      *http.Client
}

// NewClient creates a CRM client with bearer-token auth.
func NewClient(token string, endpoints Endpoints, opts ...Option) *Client {
	c := &Client{
		token:     token,
		endpoints: endpoints,
		policy:    resilience.DefaultPolicy(),
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// contactURL substitutes the canonical phone into an endpoint template.
func contactURL(template, phone string) string {
	return strings.ReplaceAll(template, ContactPlaceholder, "phone:"+phone)
}

// do performs one JSON call and reads the whole body. Transport-level
// failures surface as errors; HTTP-level failures as Response{OK: false}.
func (c *Client) do(ctx context.Context, method, url string, payload any) (Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Response{}, eris.Wrap(err, "crm: marshal request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return Response{}, eris.Wrap(err, "crm: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, eris.Wrap(err, "crm: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, eris.Wrap(err, "crm: read response")
	}

	return Response{
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status: resp.StatusCode,
		Body:   string(text),
	}, nil
}

// doRetry wraps do with the queue retry policy: 449 responses carrying the
// queue marker are retried with exponential backoff; anything else, success
// or failure, returns immediately. Exhausting the attempt cap returns the
// last 449 response as an ordinary failure.
func (c *Client) doRetry(ctx context.Context, operation, method, url, phone string, payload any) (Response, error) {
	p := c.policy
	p.OnRetry = resilience.RetryLogger(operation, phone)
	return resilience.Do(ctx, p, Response.QueueBusy, func(ctx context.Context) (Response, error) {
		return c.do(ctx, method, url, payload)
	})
}

// UpsertContact creates or updates the contact identified by phone.
func (c *Client) UpsertContact(ctx context.Context, phone string, req UpsertRequest) (Response, error) {
	url := contactURL(c.endpoints.UpsertContact, phone)
	return c.doRetry(ctx, "upsert_contact", http.MethodPost, url, phone, req)
}

// DeleteContact removes the contact identified by phone. The call is not
// retried; 400 and 404 mean the contact is already absent, which is the
// desired end state, so both count as success.
func (c *Client) DeleteContact(ctx context.Context, phone string) (Response, error) {
	url := contactURL(c.endpoints.DeleteContact, phone)
	resp, err := c.do(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return resp, err
	}
	if resp.Status == http.StatusBadRequest || resp.Status == http.StatusNotFound {
		resp.OK = true
	}
	return resp, nil
}

// AddTags attaches tags to the contact. Tags are deduplicated preserving
// first-seen order, blanks dropped, and sent in batches of at most
// maxTagsPerCall. The first failed batch aborts the rest.
func (c *Client) AddTags(ctx context.Context, phone string, tags []string) (Response, error) {
	url := contactURL(c.endpoints.AddTags, phone)
	return c.tagBatches(ctx, "add_tags", http.MethodPost, url, phone, tags)
}

// DeleteTags removes tags from the contact with the same batching and
// abort semantics as AddTags.
func (c *Client) DeleteTags(ctx context.Context, phone string, tags []string) (Response, error) {
	url := contactURL(c.endpoints.DeleteTags, phone)
	return c.tagBatches(ctx, "delete_tags", http.MethodDelete, url, phone, tags)
}

// UpdateLifecycle sets the contact's lifecycle stage. An empty name is
// allowed and clears the stage.
func (c *Client) UpdateLifecycle(ctx context.Context, phone, name string) (Response, error) {
	url := contactURL(c.endpoints.UpdateLifecycle, phone)
	return c.doRetry(ctx, "update_lifecycle", http.MethodPut, url, phone, lifecycleRequest{Name: name})
}

func (c *Client) tagBatches(ctx context.Context, operation, method, url, phone string, tags []string) (Response, error) {
	deduped := dedupeTags(tags)
	if len(deduped) == 0 {
		return Response{OK: true, Status: http.StatusOK}, nil
	}

	last := Response{OK: true, Status: http.StatusOK}
	for start := 0; start < len(deduped); start += maxTagsPerCall {
		end := min(start+maxTagsPerCall, len(deduped))
		resp, err := c.doRetry(ctx, operation, method, url, phone, tagsRequest{Tags: deduped[start:end]})
		if err != nil {
			return resp, err
		}
		if !resp.OK {
			return resp, nil
		}
		last = resp
	}
	return last, nil
}

// dedupeTags drops blank entries and duplicates, preserving the first-seen
// order of the remainder.
func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
