// Package siteclient is the presentation and submission side of the marketing
// site: a typed API client, the view state it feeds, form submission and
// transient notifications.
package siteclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every request made by API
const DefaultTimeout = 10 * time.Second

// ErrNetwork wraps transport failures and timeouts
var ErrNetwork = errors.New("network error")

// APIError is a non-2xx response from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// API talks to the REST backend
type API struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type Option func(*API)

// WithHTTPClient replaces the underlying client; its Timeout is used as-is
func WithHTTPClient(c *http.Client) Option {
	return func(a *API) { a.httpClient = c }
}

// WithTimeout sets the request timeout on a copy of the current client
func WithTimeout(d time.Duration) Option {
	return func(a *API) {
		c := *a.httpClient
		c.Timeout = d
		a.httpClient = &c
	}
}

// WithToken sends an admin bearer token on every request
func WithToken(token string) Option {
	return func(a *API) { a.token = token }
}

// NewAPI creates a client for the server at baseURL (e.g. http://localhost:5000)
func NewAPI(baseURL string, opts ...Option) *API {
	a := &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetToken changes the bearer token used by later requests
func (a *API) SetToken(token string) { a.token = token }

func (a *API) ListProjects(ctx context.Context) ([]Project, error) {
	return list[Project](ctx, a, "projects")
}

func (a *API) ListClients(ctx context.Context) ([]Client, error) {
	return list[Client](ctx, a, "clients")
}

func (a *API) ListContacts(ctx context.Context) ([]Contact, error) {
	return list[Contact](ctx, a, "contacts")
}

func (a *API) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	return list[Subscription](ctx, a, "newsletters")
}

func (a *API) CreateProject(ctx context.Context, in ProjectForm) (*Project, error) {
	return create[Project](ctx, a, "projects", in)
}

func (a *API) CreateClient(ctx context.Context, in ClientForm) (*Client, error) {
	return create[Client](ctx, a, "clients", in)
}

func (a *API) CreateContact(ctx context.Context, in ContactForm) (*Contact, error) {
	return create[Contact](ctx, a, "contacts", in)
}

func (a *API) Subscribe(ctx context.Context, in NewsletterForm) (*Subscription, error) {
	return create[Subscription](ctx, a, "newsletters", in)
}

// Login exchanges the admin password for a token and keeps it for later requests
func (a *API) Login(ctx context.Context, password string) (*LoginResult, error) {
	var out LoginResult
	if err := a.do(ctx, http.MethodPost, "/api/admin/login", map[string]string{"password": password}, &out); err != nil {
		return nil, err
	}
	a.token = out.Token
	return &out, nil
}

func (a *API) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := a.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func list[T any](ctx context.Context, a *API, kind string) ([]T, error) {
	out := []T{}
	if err := a.do(ctx, http.MethodGet, "/api/"+kind, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func create[T any](ctx context.Context, a *API, kind string, in any) (*T, error) {
	var out T
	if err := a.do(ctx, http.MethodPost, "/api/"+kind, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrNetwork, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &e) == nil {
			apiErr.Message = e.Message
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
