package lioncard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"lioncard-backend/lib/scrapers/campuscard"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/lioncard")

// ErrEmptyCredentials is returned before any network or storage access
// when a login is attempted with a blank username or password.
var ErrEmptyCredentials = fmt.Errorf("username and password are required")

// Authenticator performs the login exchange against the portal and
// yields a handle the account page can be fetched through.
//
// note: fault injection point
type Authenticator interface {
	Login(ctx context.Context, username, password string) (Fetcher, error)
}

// Fetcher retrieves the raw account page over a logged-in session.
type Fetcher interface {
	AccountPage(ctx context.Context) (string, error)
}

// PortalAuthenticator adapts the campuscard client to the
// Authenticator interface.
type PortalAuthenticator struct {
	Client *campuscard.Client
}

func (a PortalAuthenticator) Login(ctx context.Context, username, password string) (Fetcher, error) {
	session, err := a.Client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// State is the observable service state handed to presentation layers.
// Snapshot stays populated across failed refreshes: stale data with an
// error beats no data.
type State struct {
	Snapshot        *campuscard.Snapshot
	Credentials     *Credentials
	IsLoading       bool
	IsAuthenticated bool
	LastError       error
}

// Service owns the login -> fetch -> parse pipeline and the in-memory
// account state. One instance serves one account.
type Service struct {
	auth  Authenticator
	parse func(page string) (campuscard.Snapshot, error)
	store *CredentialStore

	// serializes the pipeline and every credential store access: at
	// most one portal round trip or login/logout transition runs per
	// service instance, later calls queue behind the active one
	fetchMu sync.Mutex

	stateMu sync.RWMutex
	state   State
}

type ServiceOption func(s *Service)

func WithParser(parse func(page string) (campuscard.Snapshot, error)) ServiceOption {
	return func(s *Service) {
		s.parse = parse
	}
}

func NewService(auth Authenticator, store *CredentialStore, options ...ServiceOption) *Service {
	s := &Service{
		auth:  auth,
		store: store,
		parse: campuscard.ParseAccountPage,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Login validates and persists the credentials, then runs the fetch
// pipeline. It reports true only when a usable snapshot was obtained.
//
// Credentials deliberately stay persisted when the pipeline fails:
// a transient portal outage should not force the user to type them
// in again, Logout is the explicit way to remove them.
func (s *Service) Login(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, ErrEmptyCredentials
	}

	ctx, span := tracer.Start(ctx, "service:Login")
	defer span.End()

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	creds := Credentials{Username: username, Password: password}
	if err := s.store.Save(ctx, creds); err != nil {
		span.SetStatus(codes.Error, "failed to save credentials")
		return false, fmt.Errorf("save credentials: %w", err)
	}

	s.stateMu.Lock()
	s.state.Credentials = &creds
	s.stateMu.Unlock()

	if err := s.fetchLocked(ctx, creds); err != nil {
		return false, err
	}
	return true, nil
}

// Logout clears the stored and in-memory credentials along with the
// current snapshot. Logging out with no active session is a no-op.
// A logout issued during an in-flight fetch waits for it, then resets,
// so the logged-out state is what remains.
func (s *Service) Logout(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "service:Logout")
	defer span.End()

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		span.SetStatus(codes.Error, "failed to clear credentials")
		return fmt.Errorf("clear credentials: %w", err)
	}

	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state = State{}
	return nil
}

// Refresh re-runs the fetch pipeline with the cached credentials. It
// is a no-op when no login happened yet. On failure the previous
// snapshot stays in place and only LastError changes.
func (s *Service) Refresh(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "service:Refresh")
	defer span.End()

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	// read the credentials only after the lock is held, a logout that
	// won the race must turn this refresh into a no-op
	s.stateMu.RLock()
	creds := s.state.Credentials
	s.stateMu.RUnlock()

	if creds == nil {
		return nil
	}

	return s.fetchLocked(ctx, *creds)
}

// Bootstrap restores the session of a previous run: when credentials
// were saved by an earlier login they are loaded and the account data
// fetched, so a restarted process comes back authenticated without
// user input. With nothing stored it does nothing.
func (s *Service) Bootstrap(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "service:Bootstrap")
	defer span.End()

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	creds, err := s.store.Load(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "failed to load credentials")
		return fmt.Errorf("load credentials: %w", err)
	}
	if creds == nil {
		return nil
	}

	s.stateMu.Lock()
	s.state.Credentials = creds
	s.stateMu.Unlock()

	return s.fetchLocked(ctx, *creds)
}

func (s *Service) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Service) setLoading(loading bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state.IsLoading = loading
}

// fetchLocked runs the fetch pipeline and folds the result into state.
// The caller must hold fetchMu.
func (s *Service) fetchLocked(ctx context.Context, creds Credentials) error {
	ctx, span := tracer.Start(ctx, "service:fetch")
	defer span.End()

	s.setLoading(true)
	defer s.setLoading(false)

	snapshot, err := s.runPipeline(ctx, creds)

	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if err != nil {
		span.SetStatus(codes.Error, "fetch pipeline failed")
		span.RecordError(err)
		slog.WarnContext(ctx, "account fetch failed", "err", err)

		s.state.LastError = err
		s.state.IsAuthenticated = s.state.Snapshot != nil
		return err
	}

	s.state.Snapshot = &snapshot
	s.state.LastError = nil
	s.state.IsAuthenticated = true
	return nil
}

func (s *Service) runPipeline(ctx context.Context, creds Credentials) (campuscard.Snapshot, error) {
	session, err := s.auth.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		return campuscard.Snapshot{}, fmt.Errorf("login: %w", err)
	}

	page, err := session.AccountPage(ctx)
	if err != nil {
		return campuscard.Snapshot{}, fmt.Errorf("account page: %w", err)
	}

	snapshot, err := s.parse(page)
	if err != nil {
		return campuscard.Snapshot{}, fmt.Errorf("parse account page: %w", err)
	}
	return snapshot, nil
}
