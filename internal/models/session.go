package models

import (
	"sync"

	"github.com/desertthunder/statify/internal/shared"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*Session)(nil)

// Session is the process-wide authenticated state: bearer token, derived user identity and the current recommendation set.
//
// It is created empty, filled by a successful token exchange and emptied by [Session.Clear] on a 401 or logout.
// There is no renewal.
type Session struct {
	mu              sync.RWMutex
	token           *oauth2.Token
	user            *User
	recommendations []Track
}

// NewSession returns an unauthenticated session.
func NewSession() *Session {
	return &Session{}
}

// SetToken stores the access token obtained from the token exchange (or the implicit grant fragment).
func (s *Session) SetToken(token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token implements [oauth2.TokenSource]. Without a token it returns [shared.ErrNotAuthenticated].
//
// The token is returned as is: expiry is detected by the API answering 401, not by the clock.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil || s.token.AccessToken == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: s.token.AccessToken, TokenType: "Bearer"}, nil
}

// Authenticated reports whether a bearer token is held.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != nil && s.token.AccessToken != ""
}

// SetUser records the identity derived from the profile endpoint.
func (s *Session) SetUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

// User returns the current user, if known.
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// UserID returns the current user's id or "".
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// SetRecommendations replaces the current recommendation set.
func (s *Session) SetRecommendations(tracks []Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendations = append([]Track(nil), tracks...)
}

// Recommendations returns a copy of the current recommendation set.
func (s *Session) Recommendations() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Track(nil), s.recommendations...)
}

// Clear drops the token, identity and recommendations.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
	s.user = nil
	s.recommendations = nil
}
