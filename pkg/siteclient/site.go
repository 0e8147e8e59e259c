package siteclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrRefreshFailed is returned by a submit handler whose create succeeded
// but whose refetch did not. The view keeps the previous list.
var ErrRefreshFailed = errors.New("record saved but the list could not be refreshed")

const (
	MsgProjectAdded    = "Project added successfully!"
	MsgClientAdded     = "Client added successfully!"
	MsgContactReceived = "Thank you! Your message has been received."
	MsgSubscribed      = "Successfully subscribed to our newsletter!"

	MsgProjectFailed   = "Error adding project"
	MsgClientFailed    = "Error adding client"
	MsgContactFailed   = "Error submitting form"
	MsgSubscribeFailed = "Error subscribing to newsletter"
)

// Site is the in-memory view state of the marketing site.
// Each collection is its own slice and is only written by its own fetch.
type Site struct {
	api      *API
	notifier *Notifier

	mu            sync.RWMutex
	projects      []Project
	clients       []Client
	contacts      []Contact
	subscriptions []Subscription
	adminOpen     bool

	// Forms is edited by the caller and read on submit; edit and submit from one goroutine
	Forms Forms
}

func NewSite(api *API, notifier *Notifier) *Site {
	if notifier == nil {
		notifier = NewNotifier(DefaultNotificationDuration)
	}
	return &Site{api: api, notifier: notifier}
}

func (s *Site) Notifier() *Notifier { return s.notifier }

// Load fetches every collection in parallel. A failed kind keeps its previous
// slice; the other kinds still update. Every per-kind error is returned joined.
func (s *Site) Load(ctx context.Context) error {
	refreshers := map[string]func(context.Context) error{
		"projects":    s.RefreshProjects,
		"clients":     s.RefreshClients,
		"contacts":    s.RefreshContacts,
		"newsletters": s.RefreshSubscriptions,
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for kind, refresh := range refreshers {
		g.Go(func() error {
			err := refresh(ctx)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("load %s: %w", kind, err))
				mu.Unlock()
			}
			return err
		})
	}

	// Wait reports only the first failure; the rest are in errs
	if err := g.Wait(); err == nil {
		return nil
	}
	return errors.Join(errs...)
}

func (s *Site) RefreshProjects(ctx context.Context) error {
	items, err := s.api.ListProjects(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.projects = items
	s.mu.Unlock()
	return nil
}

func (s *Site) RefreshClients(ctx context.Context) error {
	items, err := s.api.ListClients(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.clients = items
	s.mu.Unlock()
	return nil
}

func (s *Site) RefreshContacts(ctx context.Context) error {
	items, err := s.api.ListContacts(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.contacts = items
	s.mu.Unlock()
	return nil
}

func (s *Site) RefreshSubscriptions(ctx context.Context) error {
	items, err := s.api.ListSubscriptions(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.subscriptions = items
	s.mu.Unlock()
	return nil
}

func (s *Site) Projects() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Project(nil), s.projects...)
}

func (s *Site) Clients() []Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Client(nil), s.clients...)
}

func (s *Site) Contacts() []Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Contact(nil), s.contacts...)
}

func (s *Site) Subscriptions() []Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Subscription(nil), s.subscriptions...)
}

// ========================================
// ADMIN TOGGLE
// ========================================
// Visibility only. Writes are authorized by the server's admin token.

func (s *Site) OpenAdmin()  { s.setAdmin(true) }
func (s *Site) CloseAdmin() { s.setAdmin(false) }

func (s *Site) AdminOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminOpen
}

func (s *Site) setAdmin(open bool) {
	s.mu.Lock()
	s.adminOpen = open
	s.mu.Unlock()
}

// ========================================
// SUBMIT HANDLERS
// ========================================
// Each one creates, then refetches that kind, then clears the form and notifies.
// On failure the view state and the form are left as they were.

func (s *Site) AddProject(ctx context.Context) error {
	if _, err := s.api.CreateProject(ctx, s.Forms.Project); err != nil {
		s.fail(err, MsgProjectFailed)
		return err
	}
	return s.created(ctx, "projects", s.RefreshProjects, s.Forms.Project.Reset, MsgProjectAdded)
}

func (s *Site) AddClient(ctx context.Context) error {
	if _, err := s.api.CreateClient(ctx, s.Forms.Client); err != nil {
		s.fail(err, MsgClientFailed)
		return err
	}
	return s.created(ctx, "clients", s.RefreshClients, s.Forms.Client.Reset, MsgClientAdded)
}

func (s *Site) SubmitContact(ctx context.Context) error {
	if _, err := s.api.CreateContact(ctx, s.Forms.Contact); err != nil {
		s.fail(err, MsgContactFailed)
		return err
	}
	return s.created(ctx, "contacts", s.RefreshContacts, s.Forms.Contact.Reset, MsgContactReceived)
}

func (s *Site) Subscribe(ctx context.Context) error {
	if _, err := s.api.Subscribe(ctx, s.Forms.Newsletter); err != nil {
		s.fail(err, MsgSubscribeFailed)
		return err
	}
	return s.created(ctx, "newsletters", s.RefreshSubscriptions, s.Forms.Newsletter.Reset, MsgSubscribed)
}

// created finishes a successful submit. The record is saved either way, so the
// form is cleared and the success shown; a failed refetch is returned as ErrRefreshFailed.
func (s *Site) created(ctx context.Context, kind string, refresh func(context.Context) error, reset func(), msg string) error {
	refreshErr := refresh(ctx)
	reset()
	s.notifier.Success(msg)

	if refreshErr != nil {
		log.Warn().Err(refreshErr).Str("kind", kind).Msg("refetch after create failed")
		return fmt.Errorf("%w: %w", ErrRefreshFailed, refreshErr)
	}
	return nil
}

// fail surfaces the server's reason when it sent one
func (s *Site) fail(err error, fallback string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && apiErr.Status < 500 {
		s.notifier.Failure(apiErr.Message)
		return
	}
	s.notifier.Failure(fallback)
}
