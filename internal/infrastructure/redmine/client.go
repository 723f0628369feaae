// Package redmine implements the HTTP gateway to the remote ticketing
// service. The gateway maps wire failures onto the domain error taxonomy and
// performs no retries of its own.
package redmine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cvbridge/ticketing/internal/core/domain"
	"github.com/cvbridge/ticketing/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

// Config captures the settings for the remote ticketing service.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the remote service over HTTP. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// --- Wire types ---

type nameRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type issueJSON struct {
	ID         int       `json:"id"`
	Subject    string    `json:"subject"`
	Status     nameRef   `json:"status"`
	Author     nameRef   `json:"author"`
	AssignedTo *nameRef  `json:"assigned_to"`
	CreatedOn  time.Time `json:"created_on"`
	UpdatedOn  time.Time `json:"updated_on"`
}

type customFieldJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type userJSON struct {
	ID           int               `json:"id"`
	Login        string            `json:"login"`
	CustomFields []customFieldJSON `json:"custom_fields"`
}

// CurrentUser validates a credential against GET /users/current.json.
// A 401/403 means the credential itself is bad and is never retried.
func (c *Client) CurrentUser(ctx context.Context, cred domain.Credential) (*domain.Identity, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/users/current.json", nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(cred.Username, cred.Password)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp.StatusCode, domain.ErrInvalidCredentials)
	}

	var body struct {
		User userJSON `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode current user: %w", err)
	}
	if body.User.ID == 0 {
		return nil, fmt.Errorf("%w: remote returned no user id", domain.ErrInvalidCredentials)
	}
	return identityFrom(body.User), nil
}

// Search runs GET /projects/{id}/issues.json with the resolved filter
// parameters, ordered by most-recently-updated first.
func (c *Client) Search(ctx context.Context, auth domain.Authority, q ports.SearchQuery) (*ports.SearchResult, error) {
	params := url.Values{}
	params.Set("offset", strconv.Itoa(q.Offset))
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("sort", "updated_on:desc")

	switch {
	case q.AssigneeMe:
		params.Set("assigned_to_id", "me")
	case q.AssigneeID != 0:
		params.Set("assigned_to_id", strconv.Itoa(q.AssigneeID))
	}

	switch q.Status {
	case domain.StatusOpen:
		params.Set("status_id", "open")
	case domain.StatusClosed:
		params.Set("status_id", "closed")
	}

	if q.Window.Bounded() {
		params.Add("f[]", "created_on")
		params.Set("op[created_on]", "><")
		params.Add("v[created_on][]", q.Window.Start.Format("2006-01-02"))
		params.Add("v[created_on][]", q.Window.End.Format("2006-01-02"))
	}

	if q.Search != "" {
		params.Set("search", q.Search)
	}

	path := fmt.Sprintf("/projects/%s/issues.json?%s", url.PathEscape(q.ProjectID), params.Encode())
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	applyAuthority(req, auth)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp.StatusCode, domain.ErrPermission)
	}

	var body struct {
		Issues     []issueJSON `json:"issues"`
		TotalCount int         `json:"total_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}

	records := make([]domain.TicketRecord, 0, len(body.Issues))
	for _, issue := range body.Issues {
		records = append(records, recordFrom(issue))
	}
	return &ports.SearchResult{Records: records, Total: body.TotalCount}, nil
}

// CreateIssue runs POST /issues.json with the service's default tracker,
// status, and priority.
func (c *Client) CreateIssue(ctx context.Context, auth domain.Authority, in ports.CreateIssueInput) (*domain.TicketRecord, error) {
	issue := map[string]any{
		"project_id":  in.ProjectID,
		"subject":     in.Subject,
		"description": in.Description,
		"tracker_id":  1,
		"status_id":   1,
		"priority_id": 2,
	}
	switch {
	case in.AssigneeMe:
		issue["assigned_to_id"] = "me"
	case in.AssigneeID != 0:
		issue["assigned_to_id"] = in.AssigneeID
	}

	payload, err := json.Marshal(map[string]any{"issue": issue})
	if err != nil {
		return nil, fmt.Errorf("encode issue: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/issues.json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	applyAuthority(req, auth)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, c.statusError(resp.StatusCode, domain.ErrPermission)
	}

	var body struct {
		Issue issueJSON `json:"issue"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode created issue: %w", err)
	}
	record := recordFrom(body.Issue)
	return &record, nil
}

// FindUserByLogin runs GET /users.json?name= and returns the exact login
// match, or domain.ErrNotFound.
func (c *Client) FindUserByLogin(ctx context.Context, auth domain.Authority, login string) (*domain.Identity, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/users.json?name="+url.QueryEscape(login), nil)
	if err != nil {
		return nil, err
	}
	applyAuthority(req, auth)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp.StatusCode, domain.ErrPermission)
	}

	var body struct {
		Users []userJSON `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	// The name parameter is a substring match; require the exact login.
	for _, u := range body.Users {
		if u.Login == login {
			return identityFrom(u), nil
		}
	}
	return nil, fmt.Errorf("%w: user %q", domain.ErrNotFound, login)
}

// Ping reports remote reachability. Any HTTP response counts as reachable;
// only transport-level failures count against it.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/projects.json", nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// --- Helpers ---

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return req, nil
}

// do executes the request and maps transport failures onto the taxonomy:
// deadline overruns become Timeout, everything else ServiceUnavailable.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	return resp, nil
}

// statusError maps a non-success HTTP status onto the taxonomy. authErr is
// the error used for authorization rejections, which depends on whether the
// call was a credential check or a ticket operation.
func (c *Client) statusError(code int, authErr error) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return authErr
	case code == http.StatusNotFound:
		return domain.ErrNotFound
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w (status %d)", domain.ErrRateLimited, code)
	case code >= 500:
		return fmt.Errorf("%w (status %d)", domain.ErrRemoteServer, code)
	default:
		return fmt.Errorf("unexpected remote status %d", code)
	}
}

// applyAuthority signs the request: personal credentials use basic auth, the
// fallback credential uses the API-key header.
func applyAuthority(req *http.Request, auth domain.Authority) {
	switch auth.Source {
	case domain.SourceSession:
		if auth.Credential != nil {
			req.SetBasicAuth(auth.Credential.Username, auth.Credential.Password)
		}
	case domain.SourceFallback:
		req.Header.Set("X-Redmine-API-Key", auth.APIKey)
	}
}

func identityFrom(u userJSON) *domain.Identity {
	identity := &domain.Identity{RemoteID: u.ID, Username: u.Login}
	if len(u.CustomFields) > 0 {
		identity.CustomFields = make(map[string]string, len(u.CustomFields))
		for _, f := range u.CustomFields {
			identity.CustomFields[f.Name] = f.Value
		}
	}
	return identity
}

func recordFrom(issue issueJSON) domain.TicketRecord {
	record := domain.TicketRecord{
		ID:        issue.ID,
		Subject:   issue.Subject,
		Status:    issue.Status.Name,
		Author:    issue.Author.Name,
		CreatedOn: issue.CreatedOn,
		UpdatedOn: issue.UpdatedOn,
	}
	if issue.AssignedTo != nil {
		record.Assignee = issue.AssignedTo.Name
	}
	return record
}
