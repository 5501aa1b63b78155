// Package session holds the signed-in state of one browser: the API token and
// the cached profile, with explicit initialize, login, logout and close steps.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"oyna-console/internal/apiclient"
	"oyna-console/internal/logging"
	"oyna-console/internal/model"
	"oyna-console/internal/storage"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("session: closed")
	// ErrNoToken means the login response carried no token.
	ErrNoToken = errors.New("session: login response has no token")
)

// Session is one browser's signed-in state. It is built per request from
// the browser's storage and passed to whoever needs it.
type Session struct {
	base  *apiclient.Client
	store storage.Storage
	log   logging.Logger

	mu          sync.Mutex
	token       string
	profile     *model.Profile
	initialized bool
	closed      bool
}

// New creates a session over api and store. Nothing is read until Initialize.
func New(api *apiclient.Client, store storage.Storage, log logging.Logger) *Session {
	if store == nil {
		store = storage.Nop{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Session{
		base:  api,
		store: store,
		log:   log.With("component", "session"),
	}
}

// Initialize loads the token and cached profile from storage. Calling it
// again is a no-op. A cached profile that does not decode is dropped.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.initialized {
		return nil
	}

	token, ok, err := s.store.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if ok {
		s.token = token
	}

	var profile model.Profile
	found, err := storage.GetJSON(ctx, s.store, storage.KeyUserProfile, &profile)
	if err != nil {
		s.log.Warn(ctx, "dropping unreadable profile", "error", err)
		_ = s.store.Remove(ctx, storage.KeyUserProfile)
	} else if found {
		s.profile = &profile
	}

	s.initialized = true
	return nil
}

type authPayload struct {
	Token       string         `json:"token"`
	AccessToken string         `json:"access_token"`
	User        *model.Profile `json:"user"`
}

func (p *authPayload) bearer() string {
	if p == nil {
		return ""
	}
	if p.Token != "" {
		return p.Token
	}
	return p.AccessToken
}

type loginResponse struct {
	authPayload
	Data *authPayload `json:"data"`
}

// LoginRequest is the body sent to /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against the API and stores the token and profile.
// API failures are returned unchanged so callers can show the remote message.
func (s *Session) Login(ctx context.Context, email, password string) (*model.Profile, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}

	var resp loginResponse
	req := LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := s.base.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}

	payload := &resp.authPayload
	if payload.bearer() == "" && resp.Data != nil {
		payload = resp.Data
	}
	token := payload.bearer()
	if token == "" {
		return nil, ErrNoToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	if err := s.store.Set(ctx, storage.KeyAuthToken, token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	s.token = token
	s.profile = payload.User
	if s.profile != nil {
		if err := storage.SetJSON(ctx, s.store, storage.KeyUserProfile, s.profile); err != nil {
			return nil, fmt.Errorf("store profile: %w", err)
		}
	}

	s.log.Info(ctx, "signed in", "user_id", profileID(s.profile))
	return s.profile, nil
}

// Refresh reloads the profile from /auth/me and caches it.
func (s *Session) Refresh(ctx context.Context) (*model.Profile, error) {
	client, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}

	var resp struct {
		model.Profile
		Data *model.Profile `json:"data"`
	}
	if err := client.Get(ctx, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	profile := resp.Profile
	if resp.Data != nil {
		profile = *resp.Data
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if err := storage.SetJSON(ctx, s.store, storage.KeyUserProfile, profile); err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}
	s.profile = &profile
	return s.profile, nil
}

// Logout tells the API the token is no longer used and clears local state.
// The remote call is best effort; local state is cleared regardless.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.Initialize(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token != "" {
		if err := s.base.WithToken(token).Post(ctx, "/auth/logout", nil, nil); err != nil {
			s.log.Warn(ctx, "remote logout failed", "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.profile = nil

	var errs []error
	for _, key := range []string{storage.KeyAuthToken, storage.KeyUserProfile} {
		if err := s.store.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Close ends the session. Every later call returns ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.token = ""
	s.profile = nil
	return nil
}

// Client returns the API client carrying this session's token.
func (s *Session) Client(ctx context.Context) (*apiclient.Client, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.base.WithToken(s.token), nil
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.token != ""
}

// Profile returns the cached profile, if any.
func (s *Session) Profile() (*model.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.profile == nil {
		return nil, false
	}
	p := *s.profile
	return &p, true
}

// Storage returns the browser storage the session was built over.
func (s *Session) Storage() storage.Storage {
	return s.store
}

func profileID(p *model.Profile) int64 {
	if p == nil {
		return 0
	}
	return p.UserID
}

type ctxKey struct{}

// NewContext returns ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by NewContext.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
