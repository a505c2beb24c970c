// Package session holds the current credential and user profile and
// bridges them to durable storage.
package session

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"todoctl/internal/credstore"
	"todoctl/internal/service"
)

// State owns the credential and the cached profile.
// It is not safe for concurrent use.
type State struct {
	token   string
	profile *service.Profile

	store credstore.Store
	users service.Users
	log   *zap.Logger
}

// New reads the persisted credential from store and returns a State holding
// it. No network call is made. An unreadable store yields an empty credential.
func New(store credstore.Store, users service.Users, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	s := &State{
		store: store,
		users: users,
		log:   log.Named("session"),
	}
	token, err := store.Get()
	if err != nil {
		s.log.Warn("failed to read stored credential", zap.Error(err))
		token = ""
	}
	s.token = token
	return s
}

// Credential returns the current bearer token, empty when anonymous.
func (s *State) Credential() string {
	return s.token
}

// Authenticated reports whether a credential is held.
func (s *State) Authenticated() bool {
	return s.token != ""
}

// Profile returns the cached profile and whether one has been fetched.
func (s *State) Profile() (service.Profile, bool) {
	if s.profile == nil {
		return service.Profile{}, false
	}
	return *s.profile, true
}

// Token implements oauth2.TokenSource over the current credential.
// It never fails; an anonymous session yields a token with an empty value.
func (s *State) Token() (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}, nil
}

// Login exchanges username and password for a credential, persists it and
// makes it current. On failure the session is left as it was.
func (s *State) Login(ctx context.Context, username, password string) bool {
	token, err := s.users.Login(ctx, username, password)
	if err != nil {
		s.log.Warn("login failed", zap.String("username", username), zap.Error(err))
		return false
	}
	if err := s.store.Set(token); err != nil {
		s.log.Warn("failed to persist credential", zap.Error(err))
		return false
	}
	s.token = token
	s.log.Debug("logged in", zap.String("username", username))
	return true
}

// Register creates an account. Local state is never touched.
func (s *State) Register(ctx context.Context, username, password string) bool {
	if err := s.users.Register(ctx, username, password); err != nil {
		s.log.Warn("registration failed", zap.String("username", username), zap.Error(err))
		return false
	}
	return true
}

// FetchProfile replaces the cached profile with the server's copy.
// An empty credential is sent as is; the server's rejection is an ordinary
// failure. On failure the previous profile is kept.
func (s *State) FetchProfile(ctx context.Context) bool {
	profile, err := s.users.Profile(ctx, s.token)
	if err != nil {
		s.log.Warn("failed to get user info", zap.Error(err))
		return false
	}
	s.profile = &profile
	return true
}

// Logout forgets the credential and profile and removes the persisted
// credential. A storage error is logged; the in-memory session is cleared
// regardless.
func (s *State) Logout() {
	s.token = ""
	s.profile = nil
	if err := s.store.Remove(); err != nil {
		s.log.Warn("failed to remove stored credential", zap.Error(err))
	}
}

var _ oauth2.TokenSource = (*State)(nil)
