// Package crmclient provides a client for the Freshworks CRM sales REST API.
//
// Example usage:
//
//	client, err := crmclient.New("https://acme.myfreshworks.com",
//		crmclient.WithAPIKey(apiKey),
//		crmclient.WithLogger(logger),
//	)
//	types, err := client.ListSalesActivityTypes(ctx)
package crmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nomis52/gocti/buildinfo"
)

const (
	defaultTimeout = 30 * time.Second
	apiPrefix      = "/crm/sales/api"

	// maxErrorBody caps how much of an error response is kept in StatusError.
	maxErrorBody = 4096
)

// ErrMissingID is returned when a create call succeeds without the CRM
// reporting the id of the new record.
var ErrMissingID = errors.New("response did not include a record id")

// StatusError is returned when the CRM responds with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.StatusCode, e.Body)
}

// Client talks to a single CRM account.
type Client struct {
	// Host is the account base URL including the scheme.
	Host   string
	Logger *slog.Logger

	apiKey string
	client *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the API key sent in the Authorization header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.Logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout sets the overall timeout of each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client = &http.Client{Timeout: d}
	}
}

// New creates a Client for the given account URL, e.g. "https://acme.myfreshworks.com".
func New(host string, opts ...Option) (*Client, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid host URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("host URL must include scheme and host: %q", host)
	}

	c := &Client{
		Host:   host,
		Logger: slog.Default(),
		client: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Logger = c.Logger.With("component", "crmclient")
	return c, nil
}

// ListOwners returns the users that can own records in the account.
func (c *Client) ListOwners(ctx context.Context) ([]Owner, error) {
	var resp ownersResponse
	if err := c.getJSON(ctx, "/selector/owners", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// ListSalesActivityTypes returns all sales activity types in the account.
func (c *Client) ListSalesActivityTypes(ctx context.Context) ([]SalesActivityType, error) {
	var resp salesActivityTypesResponse
	if err := c.getJSON(ctx, "/selector/sales_activity_types", nil, &resp); err != nil {
		return nil, err
	}
	return resp.SalesActivityTypes, nil
}

// ListSalesActivityOutcomes returns the outcomes defined for one sales activity type.
func (c *Client) ListSalesActivityOutcomes(ctx context.Context, typeID ID) ([]SalesActivityOutcome, error) {
	path := fmt.Sprintf("/selector/sales_activity_types/%d/sales_activity_outcomes", typeID)
	var resp salesActivityOutcomesResponse
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.SalesActivityOutcomes, nil
}

// CreateSalesActivity creates a sales activity and returns it with the id assigned by the CRM.
func (c *Client) CreateSalesActivity(ctx context.Context, activity SalesActivity) (*SalesActivity, error) {
	var resp salesActivityCreated
	if err := c.postJSON(ctx, "/sales_activities", salesActivityEnvelope{SalesActivity: activity}, &resp); err != nil {
		return nil, err
	}
	if resp.SalesActivity.ID == 0 {
		return nil, ErrMissingID
	}
	activity.ID = resp.SalesActivity.ID
	return &activity, nil
}

// CreatePhoneCall logs a phone call against a contact and returns the call id.
func (c *Client) CreatePhoneCall(ctx context.Context, call PhoneCall) (ID, error) {
	fields := [][2]string{
		{"phone_call[call_direction]", string(call.Direction)},
		{"phone_call[targetable_type]", call.TargetableType},
		{"phone_call[targetable][id]", strconv.FormatInt(int64(call.Targetable.ID), 10)},
		{"phone_call[targetable][first_name]", call.Targetable.FirstName},
		{"phone_call[targetable][last_name]", call.Targetable.LastName},
		{"phone_call[targetable][mobile_number]", call.Targetable.MobileNumber},
		{"phone_call[note][description]", call.Note},
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return 0, fmt.Errorf("failed to encode form field %s: %w", f[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("failed to encode form: %w", err)
	}

	var resp phoneCallEnvelope
	if err := c.do(ctx, http.MethodPost, "/phone_calls", nil, &buf, w.FormDataContentType(), &resp); err != nil {
		return 0, err
	}
	if resp.PhoneCall.ID == 0 {
		return 0, ErrMissingID
	}
	return resp.PhoneCall.ID, nil
}

// ListContactFilters returns the saved contact views.
func (c *Client) ListContactFilters(ctx context.Context) ([]ContactFilter, error) {
	var resp contactFiltersResponse
	if err := c.getJSON(ctx, "/contacts/filters", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Filters, nil
}

// ListContacts returns one page (1-based) of the contacts in a view.
func (c *Client) ListContacts(ctx context.Context, viewID ID, page int) (*ContactPage, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{"page": []string{strconv.Itoa(page)}}
	var resp ContactPage
	if err := c.getJSON(ctx, fmt.Sprintf("/contacts/view/%d", viewID), query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateContact creates a contact.
func (c *Client) CreateContact(ctx context.Context, contact Contact) (*Contact, error) {
	var resp contactEnvelope
	if err := c.postJSON(ctx, "/contacts", contactEnvelope{Contact: contact}, &resp); err != nil {
		return nil, err
	}
	if resp.Contact.ID == 0 {
		return nil, ErrMissingID
	}
	return &resp.Contact, nil
}

// LookupContacts searches contacts whose field matches the query exactly.
func (c *Client) LookupContacts(ctx context.Context, field, value string) ([]Contact, error) {
	query := url.Values{
		"q":        []string{value},
		"f":        []string{field},
		"entities": []string{"contact"},
	}
	var resp lookupResponse
	if err := c.getJSON(ctx, "/lookup", query, &resp); err != nil {
		return nil, err
	}
	return resp.Contacts.Contacts, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(body), "application/json", out)
}

// do sends one request and decodes a 2xx JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.Host + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Token token="+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("X-Request-Id", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	logger := c.Logger.With("method", method, "path", path, "request_id", requestID)
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		logger.Debug("CRM request failed", "error", err)
		return fmt.Errorf("failed to %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	logger.Debug("CRM request completed", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
